package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepo: site-wide настройки хоста в таблице site_options.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM site_options WHERE name = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("postgres: failed to read option %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO site_options (name, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("postgres: failed to write option %s: %w", key, err)
	}
	return nil
}

// Add вставляет значение только при отсутствии ключа.
func (r *SettingsRepo) Add(ctx context.Context, key, value string) (bool, error) {
	query := `
		INSERT INTO site_options (name, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, key, value)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to add option %s: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM site_options WHERE name = $1`, key); err != nil {
		return fmt.Errorf("postgres: failed to delete option %s: %w", key, err)
	}
	return nil
}
