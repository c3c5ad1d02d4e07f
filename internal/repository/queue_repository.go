package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// Sentinel admission rejections. The service layer maps these onto the
// user-facing error taxonomy.
var (
	ErrDuplicateQueueEntry = errors.New("queue entry already exists for requester and category")
	ErrDuplicateOpenTicket = errors.New("requester already has an open ticket")
)

// QueueRepository persists the waiting queue.
type QueueRepository interface {
	// Admit runs the duplicate checks and the insert as one atomic unit
	// per requester. On rejection it returns ErrDuplicateQueueEntry or
	// ErrDuplicateOpenTicket; DuplicateTicketID carries the blocking
	// ticket for the latter.
	Admit(ctx context.Context, entry *domain.QueueEntry) (duplicateTicketID int64, err error)
	// ClaimOldest atomically removes and returns the oldest entry for the
	// guild. ok is false when the queue is empty; that is not an error.
	ClaimOldest(ctx context.Context, guildID string) (entry *domain.QueueEntry, ok bool, err error)
	// Restore puts a claimed entry back, keeping its original enqueue
	// timestamp so it stays at the head of the queue.
	Restore(ctx context.Context, entry *domain.QueueEntry) error
	PendingCount(ctx context.Context, guildID string) (int64, error)
}

type queueRepository struct {
	pool *pgxpool.Pool
}

// NewQueueRepository instantiates repository.
func NewQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &queueRepository{pool: pool}
}

func (r *queueRepository) Admit(ctx context.Context, entry *domain.QueueEntry) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Serialize concurrent submissions from the same requester. The lock is
	// released at commit/rollback.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`,
		entry.GuildID, entry.RequesterID,
	); err != nil {
		return 0, err
	}

	var existing int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM queue_entries WHERE guild_id=$1 AND requester_id=$2 AND category=$3`,
		entry.GuildID, entry.RequesterID, entry.Category,
	).Scan(&existing)
	if err == nil {
		return 0, ErrDuplicateQueueEntry
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// One open ticket per requester, regardless of category.
	var openTicket int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM tickets WHERE guild_id=$1 AND requester_id=$2 AND status='open' LIMIT 1`,
		entry.GuildID, entry.RequesterID,
	).Scan(&openTicket)
	if err == nil {
		return openTicket, ErrDuplicateOpenTicket
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO queue_entries (guild_id, requester_id, requester_name, category, title, description)
         VALUES ($1,$2,$3,$4,$5,$6)
         RETURNING id, created_at`,
		entry.GuildID, entry.RequesterID, entry.RequesterName, entry.Category, entry.Title, entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return 0, err
	}

	return 0, tx.Commit(ctx)
}

func (r *queueRepository) ClaimOldest(ctx context.Context, guildID string) (*domain.QueueEntry, bool, error) {
	// Single-statement pop: two concurrent claimers can never delete the
	// same row, and SKIP LOCKED keeps them from serializing on it.
	const query = `
        DELETE FROM queue_entries
        WHERE id = (
            SELECT id FROM queue_entries
            WHERE guild_id = $1
            ORDER BY created_at ASC, id ASC
            LIMIT 1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING id, guild_id, requester_id, requester_name, category, title, description, created_at`

	var entry domain.QueueEntry
	err := r.pool.QueryRow(ctx, query, guildID).Scan(
		&entry.ID,
		&entry.GuildID,
		&entry.RequesterID,
		&entry.RequesterName,
		&entry.Category,
		&entry.Title,
		&entry.Description,
		&entry.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

func (r *queueRepository) Restore(ctx context.Context, entry *domain.QueueEntry) error {
	// The requester may have re-submitted the same category between the
	// claim and the failure that triggered the restore. That newer entry
	// already represents the request, so a conflict is not a failure.
	const query = `
        INSERT INTO queue_entries (guild_id, requester_id, requester_name, category, title, description, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (guild_id, requester_id, category) DO NOTHING
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		entry.GuildID,
		entry.RequesterID,
		entry.RequesterName,
		entry.Category,
		entry.Title,
		entry.Description,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

func (r *queueRepository) PendingCount(ctx context.Context, guildID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM queue_entries WHERE guild_id=$1`, guildID,
	).Scan(&count)
	return count, err
}
