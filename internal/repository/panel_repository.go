package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// PanelRepository persists named informational panels.
type PanelRepository interface {
	Upsert(ctx context.Context, panel *domain.InfoPanel) error
	GetByName(ctx context.Context, guildID, name string) (*domain.InfoPanel, error)
	ListNames(ctx context.Context, guildID string) ([]string, error)
}

type panelRepository struct {
	pool *pgxpool.Pool
}

// NewPanelRepository builds repository.
func NewPanelRepository(pool *pgxpool.Pool) PanelRepository {
	return &panelRepository{pool: pool}
}

func (r *panelRepository) Upsert(ctx context.Context, panel *domain.InfoPanel) error {
	const query = `
        INSERT INTO info_panels (guild_id, name, title, content)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (guild_id, name) DO UPDATE SET
            title = EXCLUDED.title,
            content = EXCLUDED.content
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		panel.GuildID, panel.Name, panel.Title, panel.Content,
	).Scan(&panel.ID)
}

func (r *panelRepository) GetByName(ctx context.Context, guildID, name string) (*domain.InfoPanel, error) {
	const query = `
        SELECT id, guild_id, name, title, content
        FROM info_panels WHERE guild_id=$1 AND name=$2`
	var panel domain.InfoPanel
	if err := r.pool.QueryRow(ctx, query, guildID, name).Scan(
		&panel.ID,
		&panel.GuildID,
		&panel.Name,
		&panel.Title,
		&panel.Content,
	); err != nil {
		return nil, err
	}
	return &panel, nil
}

func (r *panelRepository) ListNames(ctx context.Context, guildID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name FROM info_panels WHERE guild_id=$1 ORDER BY name ASC`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
