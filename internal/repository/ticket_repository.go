package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// TicketFilter captures staff listing parameters.
type TicketFilter struct {
	GuildID     string
	RequesterID *string
	Status      *domain.TicketStatus
	Category    *domain.Category
	Limit       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetOpenByChannel(ctx context.Context, channelID string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Close transitions the ticket to closed only if it is still open.
	// Returns false when the conditional update matched no row.
	Close(ctx context.Context, id int64, closedBy string, at time.Time) (bool, error)
	// SetAssignee records the assignee while the ticket is open.
	SetAssignee(ctx context.Context, id int64, assigneeID string) (bool, error)
	Stats(ctx context.Context, guildID string) (*domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, guild_id, requester_id, requester_name, category, title, description,
       status, assignee_id, channel_id, created_at, updated_at, closed_by, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (guild_id, requester_id, requester_name, category, title, description, status, assignee_id, channel_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.GuildID,
		ticket.RequesterID,
		ticket.RequesterName,
		ticket.Category,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.AssigneeID,
		ticket.ChannelID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetOpenByChannel(ctx context.Context, channelID string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE channel_id=$1 AND status='open'`, ticketColumns)
	return r.fetchSingle(ctx, query, channelID)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.GuildID,
		&ticket.RequesterID,
		&ticket.RequesterName,
		&ticket.Category,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.AssigneeID,
		&ticket.ChannelID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedBy,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"guild_id=$1"}
	args := []any{filter.GuildID}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Close(ctx context.Context, id int64, closedBy string, at time.Time) (bool, error) {
	const query = `
        UPDATE tickets SET status='closed', closed_by=$1, closed_at=$2, updated_at=NOW()
        WHERE id=$3 AND status='open'`
	cmd, err := r.pool.Exec(ctx, query, closedBy, at, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) SetAssignee(ctx context.Context, id int64, assigneeID string) (bool, error) {
	const query = `
        UPDATE tickets SET assignee_id=$1, updated_at=NOW()
        WHERE id=$2 AND status='open'`
	cmd, err := r.pool.Exec(ctx, query, assigneeID, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) Stats(ctx context.Context, guildID string) (*domain.TicketStats, error) {
	stats := &domain.TicketStats{ByCategory: make(map[domain.Category]int64)}

	const totals = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='open'),
               COUNT(*) FILTER (WHERE status='closed'),
               COUNT(DISTINCT requester_id),
               COUNT(*) FILTER (WHERE created_at::date = NOW()::date)
        FROM tickets WHERE guild_id=$1`
	if err := r.pool.QueryRow(ctx, totals, guildID).Scan(
		&stats.Total,
		&stats.Open,
		&stats.Closed,
		&stats.UniqueRequesters,
		&stats.CreatedToday,
	); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM tickets WHERE guild_id=$1 GROUP BY category`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category domain.Category
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = count
	}
	return stats, rows.Err()
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.GuildID,
			&ticket.RequesterID,
			&ticket.RequesterName,
			&ticket.Category,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.AssigneeID,
			&ticket.ChannelID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ClosedBy,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// IsNotFound reports whether err is the driver's no-rows result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
