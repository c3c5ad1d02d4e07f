package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// GuildConfigRepository persists per-guild configuration.
type GuildConfigRepository interface {
	// Get returns the config for the guild, or a zero-value config when
	// none has been stored yet.
	Get(ctx context.Context, guildID string) (*domain.GuildConfig, error)
	Upsert(ctx context.Context, cfg *domain.GuildConfig) error
}

type guildConfigRepository struct {
	pool *pgxpool.Pool
}

// NewGuildConfigRepository builds repository.
func NewGuildConfigRepository(pool *pgxpool.Pool) GuildConfigRepository {
	return &guildConfigRepository{pool: pool}
}

func (r *guildConfigRepository) Get(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	const query = `
        SELECT guild_id, ticket_category_id, log_channel_id, staff_role_id,
               queue_channel_id, suggestion_channel_id, approved_suggestion_channel_id
        FROM guild_config WHERE guild_id=$1`
	var cfg domain.GuildConfig
	err := r.pool.QueryRow(ctx, query, guildID).Scan(
		&cfg.GuildID,
		&cfg.TicketCategoryID,
		&cfg.LogChannelID,
		&cfg.StaffRoleID,
		&cfg.QueueChannelID,
		&cfg.SuggestionChannelID,
		&cfg.ApprovedSuggestionChannelID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.GuildConfig{GuildID: guildID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *guildConfigRepository) Upsert(ctx context.Context, cfg *domain.GuildConfig) error {
	const query = `
        INSERT INTO guild_config (guild_id, ticket_category_id, log_channel_id, staff_role_id,
                                  queue_channel_id, suggestion_channel_id, approved_suggestion_channel_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (guild_id) DO UPDATE SET
            ticket_category_id = EXCLUDED.ticket_category_id,
            log_channel_id = EXCLUDED.log_channel_id,
            staff_role_id = EXCLUDED.staff_role_id,
            queue_channel_id = EXCLUDED.queue_channel_id,
            suggestion_channel_id = EXCLUDED.suggestion_channel_id,
            approved_suggestion_channel_id = EXCLUDED.approved_suggestion_channel_id`
	_, err := r.pool.Exec(ctx, query,
		cfg.GuildID,
		cfg.TicketCategoryID,
		cfg.LogChannelID,
		cfg.StaffRoleID,
		cfg.QueueChannelID,
		cfg.SuggestionChannelID,
		cfg.ApprovedSuggestionChannelID,
	)
	return err
}
