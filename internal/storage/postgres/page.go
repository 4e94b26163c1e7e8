package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wickandwax/storefront/internal/domain/page"
)

const (
	getPageSQL = `SELECT type, title, content, updated_at FROM pages WHERE type = $1`

	upsertPageSQL = `INSERT INTO pages (type, title, content, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (type) DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content, updated_at = now()`
)

var _ page.Repository = (*PageRepository)(nil)

// PageRepository implements page.Repository backed by PostgreSQL.
type PageRepository struct {
	pool *pgxpool.Pool
}

// NewPageRepository returns a PageRepository that uses the given pool.
func NewPageRepository(pool *pgxpool.Pool) *PageRepository {
	return &PageRepository{pool: pool}
}

// GetByType returns the content block for a page type.
func (r *PageRepository) GetByType(ctx context.Context, pageType string) (*page.Page, error) {
	var p page.Page
	err := r.pool.QueryRow(ctx, getPageSQL, pageType).Scan(&p.Type, &p.Title, &p.Content, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, page.ErrNotFound
		}
		return nil, fmt.Errorf("getting page %q: %w", pageType, err)
	}
	return &p, nil
}

// Upsert creates or replaces a page's content.
func (r *PageRepository) Upsert(ctx context.Context, p *page.Page) error {
	if _, err := r.pool.Exec(ctx, upsertPageSQL, p.Type, p.Title, p.Content); err != nil {
		return fmt.Errorf("upserting page %q: %w", p.Type, err)
	}
	return nil
}
