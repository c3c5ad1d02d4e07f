package command

import (
	"context"
	"fmt"

	"github.com/gabriel-reiss/guildtickets/internal/service"
)

// SuggestCommand records a community suggestion.
type SuggestCommand struct {
	Suggestions *service.SuggestionService
}

func (c *SuggestCommand) Name() string { return "suggest" }

func (c *SuggestCommand) Execute(ctx context.Context, req Request) (Response, error) {
	suggestion, err := c.Suggestions.Submit(ctx, req.Actor, req.GuildID, req.Arg("marker"), req.Arg("content"))
	if err != nil {
		return Response{}, err
	}
	return Response{
		Content: fmt.Sprintf("Suggestion recorded (ref %s).", suggestion.Marker),
		Private: true,
	}, nil
}

// ApproveCommand approves a suggestion by its marker.
type ApproveCommand struct {
	Suggestions *service.SuggestionService
}

func (c *ApproveCommand) Name() string { return "approve" }

func (c *ApproveCommand) Execute(ctx context.Context, req Request) (Response, error) {
	suggestion, err := c.Suggestions.Approve(ctx, req.Actor, req.GuildID, req.Arg("marker"))
	if err != nil {
		return Response{}, err
	}
	return Response{
		Content: fmt.Sprintf("Approved %s's suggestion.", suggestion.AuthorName),
		Private: true,
	}, nil
}

// TemplateCommand posts a canned staff reply into the invoking channel.
type TemplateCommand struct {
	Templates *service.TemplateService
}

func (c *TemplateCommand) Name() string { return "template" }

func (c *TemplateCommand) Execute(ctx context.Context, req Request) (Response, error) {
	template, err := c.Templates.Get(ctx, req.Actor, req.GuildID, req.Arg("name"))
	if err != nil {
		return Response{}, err
	}
	return Response{Content: template.Content}, nil
}

// PanelCommand posts a configured informational panel.
type PanelCommand struct {
	Panels *service.PanelService
}

func (c *PanelCommand) Name() string { return "panel" }

func (c *PanelCommand) Execute(ctx context.Context, req Request) (Response, error) {
	if err := c.Panels.Post(ctx, req.Actor, req.GuildID, req.Arg("name"), req.ChannelID); err != nil {
		return Response{}, err
	}
	return Response{Content: "Panel posted.", Private: true}, nil
}
