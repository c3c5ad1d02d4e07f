package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// StreamRepository persists go-live announcement configuration.
type StreamRepository interface {
	Upsert(ctx context.Context, notification *domain.StreamNotification) error
	GetByStreamer(ctx context.Context, streamerID string) (*domain.StreamNotification, error)
	Delete(ctx context.Context, streamerID string) (bool, error)
}

type streamRepository struct {
	pool *pgxpool.Pool
}

// NewStreamRepository builds repository.
func NewStreamRepository(pool *pgxpool.Pool) StreamRepository {
	return &streamRepository{pool: pool}
}

func (r *streamRepository) Upsert(ctx context.Context, notification *domain.StreamNotification) error {
	const query = `
        INSERT INTO stream_notifications (streamer_id, guild_id, channel_id, custom_message)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (streamer_id) DO UPDATE SET
            channel_id = EXCLUDED.channel_id,
            custom_message = EXCLUDED.custom_message`
	_, err := r.pool.Exec(ctx, query,
		notification.StreamerID,
		notification.GuildID,
		notification.ChannelID,
		notification.CustomMessage,
	)
	return err
}

func (r *streamRepository) GetByStreamer(ctx context.Context, streamerID string) (*domain.StreamNotification, error) {
	const query = `
        SELECT streamer_id, guild_id, channel_id, custom_message
        FROM stream_notifications WHERE streamer_id=$1`
	var notification domain.StreamNotification
	if err := r.pool.QueryRow(ctx, query, streamerID).Scan(
		&notification.StreamerID,
		&notification.GuildID,
		&notification.ChannelID,
		&notification.CustomMessage,
	); err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *streamRepository) Delete(ctx context.Context, streamerID string) (bool, error) {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM stream_notifications WHERE streamer_id=$1`, streamerID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
