package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/service"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// SubmitCommand queues a new support request.
type SubmitCommand struct {
	Admission *service.AdmissionService
}

func (c *SubmitCommand) Name() string { return "ticket" }

func (c *SubmitCommand) Execute(ctx context.Context, req Request) (Response, error) {
	input := service.SubmitInput{
		GuildID:     req.GuildID,
		Category:    domain.Category(req.Arg("category")),
		Title:       req.Arg("title"),
		Description: req.Arg("description"),
	}
	if input.Category == domain.CategoryRecruitment {
		input.Recruitment = &service.RecruitmentInput{
			Nick:     req.Arg("nick"),
			Strength: req.Arg("strength"),
			Economy:  req.Arg("economy"),
		}
	}
	entry, err := c.Admission.Submit(ctx, req.Actor, input)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Content: fmt.Sprintf("Your %s request is queued. A staff member will open a channel for you shortly.", entry.Category.Label()),
		Private: true,
	}, nil
}

// ClaimCommand takes the oldest waiting request.
type ClaimCommand struct {
	Dispatch *service.DispatchService
}

func (c *ClaimCommand) Name() string { return "claim" }

func (c *ClaimCommand) Execute(ctx context.Context, req Request) (Response, error) {
	claim, ok, err := c.Dispatch.ClaimNext(ctx, req.GuildID, req.Actor)
	if err != nil {
		return Response{}, err
	}
	if !ok {
		return Response{Content: "The queue is empty.", Private: true}, nil
	}
	return Response{
		Content: fmt.Sprintf("Opened ticket #%d for %s in #%s.", claim.Ticket.ID, claim.Ticket.RequesterName, claim.Channel.Name),
		Private: true,
	}, nil
}

// CloseCommand closes the ticket bound to the invoking channel.
type CloseCommand struct {
	Lifecycle *service.LifecycleService
}

func (c *CloseCommand) Name() string { return "close" }

func (c *CloseCommand) Execute(ctx context.Context, req Request) (Response, error) {
	ticket, err := c.Lifecycle.CloseByChannel(ctx, req.Actor, req.ChannelID, req.Arg("reason"))
	if err != nil {
		return Response{}, err
	}
	return Response{Content: fmt.Sprintf("Ticket #%d closed.", ticket.ID)}, nil
}

// AssignCommand re-points a ticket at another staff member.
type AssignCommand struct {
	Lifecycle *service.LifecycleService
}

func (c *AssignCommand) Name() string { return "assign" }

func (c *AssignCommand) Execute(ctx context.Context, req Request) (Response, error) {
	ticketID, err := strconv.ParseInt(req.Arg("ticket"), 10, 64)
	if err != nil {
		return Response{}, apperrors.NewValidationError("ticket must be a number", nil)
	}
	assignee := domain.Actor{ID: req.Arg("member"), DisplayName: req.Arg("member_name")}
	if assignee.ID == "" {
		return Response{}, apperrors.NewValidationError("member required", nil)
	}
	ticket, err := c.Lifecycle.Assign(ctx, req.Actor, ticketID, assignee)
	if err != nil {
		return Response{}, err
	}
	return Response{Content: fmt.Sprintf("Ticket #%d assigned to %s.", ticket.ID, assignee.DisplayName), Private: true}, nil
}

// AddCommand grants another member access to a ticket channel.
type AddCommand struct {
	Lifecycle *service.LifecycleService
}

func (c *AddCommand) Name() string { return "add" }

func (c *AddCommand) Execute(ctx context.Context, req Request) (Response, error) {
	ticketID, err := strconv.ParseInt(req.Arg("ticket"), 10, 64)
	if err != nil {
		return Response{}, apperrors.NewValidationError("ticket must be a number", nil)
	}
	member := domain.Actor{ID: req.Arg("member"), DisplayName: req.Arg("member_name")}
	if member.ID == "" {
		return Response{}, apperrors.NewValidationError("member required", nil)
	}
	if err := c.Lifecycle.AddParticipant(ctx, req.Actor, ticketID, member); err != nil {
		return Response{}, err
	}
	return Response{Content: fmt.Sprintf("%s added to ticket #%d.", member.DisplayName, ticketID)}, nil
}

// PendingCommand reports queue depth.
type PendingCommand struct {
	Dispatch *service.DispatchService
}

func (c *PendingCommand) Name() string { return "pending" }

func (c *PendingCommand) Execute(ctx context.Context, req Request) (Response, error) {
	count, err := c.Dispatch.Pending(ctx, req.GuildID, req.Actor)
	if err != nil {
		return Response{}, err
	}
	return Response{Content: fmt.Sprintf("%d request(s) waiting.", count), Private: true}, nil
}

// MineCommand lists the invoker's own tickets.
type MineCommand struct {
	Lifecycle *service.LifecycleService
}

func (c *MineCommand) Name() string { return "mytickets" }

func (c *MineCommand) Execute(ctx context.Context, req Request) (Response, error) {
	tickets, err := c.Lifecycle.ListMine(ctx, req.Actor, req.GuildID)
	if err != nil {
		return Response{}, err
	}
	if len(tickets) == 0 {
		return Response{Content: "You have no tickets.", Private: true}, nil
	}
	var b strings.Builder
	for _, t := range tickets {
		fmt.Fprintf(&b, "#%d [%s] %s (%s)\n", t.ID, t.Status, t.Title, t.Category)
	}
	return Response{Content: strings.TrimRight(b.String(), "\n"), Private: true}, nil
}
