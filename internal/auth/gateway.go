package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gabriel-reiss/guildtickets/internal/config"
	"github.com/gabriel-reiss/guildtickets/internal/domain"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// GatewayAuth authenticates the chat-platform gateway and issues actor
// tokens on its behalf.
type GatewayAuth struct {
	keyHash string
	tokens  *TokenManager
}

// NewGatewayAuth constructs the authenticator.
func NewGatewayAuth(cfg config.AuthConfig) *GatewayAuth {
	return &GatewayAuth{
		keyHash: cfg.GatewayKeyHash,
		tokens:  NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the manager for middleware wiring.
func (g *GatewayAuth) TokenManager() *TokenManager {
	return g.tokens
}

// IssueActorToken verifies the gateway API key and returns a signed token
// carrying the acting user.
func (g *GatewayAuth) IssueActorToken(apiKey string, actor domain.Actor) (string, time.Time, error) {
	if g.keyHash == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("gateway authentication not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(g.keyHash), []byte(apiKey)); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid gateway key")
	}
	if actor.ID == "" {
		return "", time.Time{}, apperrors.NewValidationError("actor id required", nil)
	}
	return g.tokens.GenerateToken(actor)
}

// HashKey hashes a plaintext gateway key with the configured cost. Used by
// operators to produce AUTH_GATEWAY_KEY_HASH.
func HashKey(key string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
