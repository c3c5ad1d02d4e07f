package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// ActorClaims carries the acting platform user inside a gateway token.
type ActorClaims struct {
	ActorID       string   `json:"actor_id"`
	DisplayName   string   `json:"display_name"`
	Administrator bool     `json:"administrator"`
	Roles         []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts claims into the domain actor.
func (c *ActorClaims) Actor() domain.Actor {
	return domain.Actor{
		ID:            c.ActorID,
		DisplayName:   c.DisplayName,
		Administrator: c.Administrator,
		RoleIDs:       c.Roles,
	}
}

// GenerateToken builds and signs a JWT for the acting user.
func (tm *TokenManager) GenerateToken(actor domain.Actor) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims := &ActorClaims{
		ActorID:       actor.ID,
		DisplayName:   actor.DisplayName,
		Administrator: actor.Administrator,
		Roles:         actor.RoleIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*ActorClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*ActorClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
