package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// ErrDuplicateName signals a unique-name violation within a guild.
var ErrDuplicateName = errors.New("name already exists for guild")

// TemplateRepository persists canned staff replies.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.ResponseTemplate) error
	GetByName(ctx context.Context, guildID, name string) (*domain.ResponseTemplate, error)
	ListNames(ctx context.Context, guildID string) ([]string, error)
	Delete(ctx context.Context, guildID, name string) (bool, error)
}

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository builds repository.
func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) Create(ctx context.Context, template *domain.ResponseTemplate) error {
	const query = `
        INSERT INTO response_templates (guild_id, name, content)
        VALUES ($1,$2,$3)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		template.GuildID, template.Name, template.Content,
	).Scan(&template.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

func (r *templateRepository) GetByName(ctx context.Context, guildID, name string) (*domain.ResponseTemplate, error) {
	const query = `
        SELECT id, guild_id, name, content
        FROM response_templates WHERE guild_id=$1 AND name=$2`
	var template domain.ResponseTemplate
	if err := r.pool.QueryRow(ctx, query, guildID, name).Scan(
		&template.ID,
		&template.GuildID,
		&template.Name,
		&template.Content,
	); err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListNames(ctx context.Context, guildID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name FROM response_templates WHERE guild_id=$1 ORDER BY name ASC`, guildID)
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

func (r *templateRepository) Delete(ctx context.Context, guildID, name string) (bool, error) {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM response_templates WHERE guild_id=$1 AND name=$2`, guildID, name)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
