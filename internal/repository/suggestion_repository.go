package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// SuggestionRepository persists community suggestions keyed by their
// platform marker.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) error
	GetByMarker(ctx context.Context, guildID, marker string) (*domain.Suggestion, error)
	// MarkApproved flips the approved flag only if it is still unset.
	MarkApproved(ctx context.Context, guildID, marker, approvedBy string, at time.Time) (bool, error)
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository builds repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	const query = `
        INSERT INTO suggestions (guild_id, marker, author_id, author_name, content)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		suggestion.GuildID,
		suggestion.Marker,
		suggestion.AuthorID,
		suggestion.AuthorName,
		suggestion.Content,
	).Scan(&suggestion.ID, &suggestion.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

func (r *suggestionRepository) GetByMarker(ctx context.Context, guildID, marker string) (*domain.Suggestion, error) {
	const query = `
        SELECT id, guild_id, marker, author_id, author_name, content, approved, approved_by, created_at, approved_at
        FROM suggestions WHERE guild_id=$1 AND marker=$2`
	var suggestion domain.Suggestion
	if err := r.pool.QueryRow(ctx, query, guildID, marker).Scan(
		&suggestion.ID,
		&suggestion.GuildID,
		&suggestion.Marker,
		&suggestion.AuthorID,
		&suggestion.AuthorName,
		&suggestion.Content,
		&suggestion.Approved,
		&suggestion.ApprovedBy,
		&suggestion.CreatedAt,
		&suggestion.ApprovedAt,
	); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *suggestionRepository) MarkApproved(ctx context.Context, guildID, marker, approvedBy string, at time.Time) (bool, error) {
	const query = `
        UPDATE suggestions SET approved=TRUE, approved_by=$1, approved_at=$2
        WHERE guild_id=$3 AND marker=$4 AND approved=FALSE`
	cmd, err := r.pool.Exec(ctx, query, approvedBy, at, guildID, marker)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
