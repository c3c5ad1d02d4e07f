package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gabriel-reiss/guildtickets/internal/config"
)

// GatewayClient talks to the chat-platform gateway over HTTP. The gateway
// is the process that holds the platform session; this service only asks
// it to act.
type GatewayClient struct {
	baseURL string
	token   string
	cfg     config.PlatformConfig
	logger  *zap.Logger
}

// NewGatewayClient constructs the client.
func NewGatewayClient(cfg config.PlatformConfig, logger *zap.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL: cfg.GatewayBaseURL,
		token:   cfg.GatewayToken,
		cfg:     cfg,
		logger:  logger,
	}
}

type createChannelRequest struct {
	GuildID     string `json:"guild_id"`
	ParentID    string `json:"parent_id,omitempty"`
	Name        string `json:"name"`
	RequesterID string `json:"requester_id"`
	StaffID     string `json:"staff_id"`
}

type createChannelResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateTicketChannel provisions a private channel visible to the
// requester and staff.
func (g *GatewayClient) CreateTicketChannel(ctx context.Context, spec ChannelSpec) (ProvisionedChannel, error) {
	var out createChannelResponse
	req := createChannelRequest{
		GuildID:     spec.GuildID,
		ParentID:    spec.ParentID,
		Name:        spec.Name,
		RequesterID: spec.RequesterID,
		StaffID:     spec.StaffID,
	}
	if err := g.call(ctx, fiber.MethodPost, "/channels", req, &out); err != nil {
		return ProvisionedChannel{}, err
	}
	return ProvisionedChannel{ID: out.ID, Name: out.Name}, nil
}

// GrantAccess adds a member to an existing channel.
func (g *GatewayClient) GrantAccess(ctx context.Context, channelID, userID string) error {
	body := fiber.Map{"user_id": userID}
	return g.call(ctx, fiber.MethodPost, fmt.Sprintf("/channels/%s/grants", channelID), body, nil)
}

// DeleteChannel removes a channel.
func (g *GatewayClient) DeleteChannel(ctx context.Context, channelID, reason string) error {
	body := fiber.Map{"reason": reason}
	return g.call(ctx, fiber.MethodDelete, fmt.Sprintf("/channels/%s", channelID), body, nil)
}

// SendDirect delivers a direct message to a user.
func (g *GatewayClient) SendDirect(ctx context.Context, userID string, msg Message) error {
	body := fiber.Map{"user_id": userID, "title": msg.Title, "body": msg.Body}
	return g.call(ctx, fiber.MethodPost, "/messages/direct", body, nil)
}

// SendChannel delivers a message to a channel.
func (g *GatewayClient) SendChannel(ctx context.Context, channelID string, msg Message) error {
	body := fiber.Map{"channel_id": channelID, "title": msg.Title, "body": msg.Body}
	return g.call(ctx, fiber.MethodPost, "/messages/channel", body, nil)
}

func (g *GatewayClient) call(ctx context.Context, method, path string, body, out any) error {
	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)

	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(g.baseURL + path)
	if g.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+g.token)
	}
	if body != nil {
		agent.JSON(body)
	}
	timeout := g.cfg.Timeout()
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)

	if err := agent.Parse(); err != nil {
		return fmt.Errorf("gateway %s %s: %w", method, path, err)
	}
	g.logger.Debug("gateway call", zap.String("method", method), zap.String("path", path))

	var (
		code int
		errs []error
	)
	if out != nil {
		code, _, errs = agent.Struct(out)
	} else {
		code, _, errs = agent.Bytes()
	}
	if len(errs) > 0 {
		return fmt.Errorf("gateway %s %s: %w", method, path, errs[0])
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("gateway %s %s: status %d", method, path, code)
	}
	return nil
}
