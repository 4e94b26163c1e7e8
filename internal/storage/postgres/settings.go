package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wickandwax/storefront/internal/domain/settings"
)

const (
	getSettingSQL  = `SELECT value FROM settings WHERE key = $1`
	getSettingsSQL = `SELECT key, value FROM settings WHERE key = ANY($1)`

	upsertSettingSQL = `INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns a single setting value.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, getSettingSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", settings.ErrNotFound
		}
		return "", fmt.Errorf("getting setting %q: %w", key, err)
	}
	return value, nil
}

// GetAll returns the stored values for the given keys. Missing keys are
// simply absent from the result.
func (r *SettingsRepository) GetAll(ctx context.Context, keys []string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, getSettingsSQL, keys)
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return out, nil
}

// SetAll upserts every given key-value pair in one transaction.
func (r *SettingsRepository) SetAll(ctx context.Context, values map[string]string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning settings tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for k, v := range values {
		if _, err := tx.Exec(ctx, upsertSettingSQL, k, v); err != nil {
			return fmt.Errorf("upserting setting %q: %w", k, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	return nil
}
