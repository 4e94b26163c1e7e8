package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/wickandwax/storefront/internal/domain/catalog"
)

const (
	listScentsSQL  = `SELECT id, product_id, name FROM scents WHERE product_id = $1 ORDER BY name`
	getScentSQL    = `SELECT id, product_id, name FROM scents WHERE id = $1`
	insertScentSQL = `INSERT INTO scents (id, product_id, name) VALUES ($1, $2, $3)`
	deleteScentSQL = `DELETE FROM scents WHERE id = $1`

	listColorsSQL  = `SELECT id, product_id, name, hex FROM colors WHERE product_id = $1 ORDER BY name`
	getColorSQL    = `SELECT id, product_id, name, hex FROM colors WHERE id = $1`
	insertColorSQL = `INSERT INTO colors (id, product_id, name, hex) VALUES ($1, $2, $3, $4)`
	deleteColorSQL = `DELETE FROM colors WHERE id = $1`
)

// ListScents returns a product's scent variants.
func (r *ProductRepository) ListScents(ctx context.Context, productID string) ([]catalog.Scent, error) {
	rows, err := r.pool.Query(ctx, listScentsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing scents for product %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanScent)
}

// GetScent returns a single scent variant.
func (r *ProductRepository) GetScent(ctx context.Context, id string) (*catalog.Scent, error) {
	rows, err := r.pool.Query(ctx, getScentSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting scent %q: %w", id, err)
	}
	s, err := pgx.CollectExactlyOneRow(rows, scanScent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, fmt.Errorf("getting scent %q: %w", id, err)
	}
	return &s, nil
}

// CreateScent inserts a scent variant.
func (r *ProductRepository) CreateScent(ctx context.Context, s *catalog.Scent) error {
	if _, err := r.pool.Exec(ctx, insertScentSQL, s.ID, s.ProductID, s.Name); err != nil {
		return fmt.Errorf("creating scent %q: %w", s.ID, err)
	}
	return nil
}

// DeleteScent removes a scent variant.
func (r *ProductRepository) DeleteScent(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, deleteScentSQL, id)
	if err != nil {
		return fmt.Errorf("deleting scent %q: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return catalog.ErrVariantNotFound
	}
	return nil
}

// ListColors returns a product's color variants.
func (r *ProductRepository) ListColors(ctx context.Context, productID string) ([]catalog.Color, error) {
	rows, err := r.pool.Query(ctx, listColorsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing colors for product %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanColor)
}

// GetColor returns a single color variant.
func (r *ProductRepository) GetColor(ctx context.Context, id string) (*catalog.Color, error) {
	rows, err := r.pool.Query(ctx, getColorSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting color %q: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanColor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, fmt.Errorf("getting color %q: %w", id, err)
	}
	return &c, nil
}

// CreateColor inserts a color variant.
func (r *ProductRepository) CreateColor(ctx context.Context, c *catalog.Color) error {
	if _, err := r.pool.Exec(ctx, insertColorSQL, c.ID, c.ProductID, c.Name, c.Hex); err != nil {
		return fmt.Errorf("creating color %q: %w", c.ID, err)
	}
	return nil
}

// DeleteColor removes a color variant.
func (r *ProductRepository) DeleteColor(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, deleteColorSQL, id)
	if err != nil {
		return fmt.Errorf("deleting color %q: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return catalog.ErrVariantNotFound
	}
	return nil
}

func scanScent(row pgx.CollectableRow) (catalog.Scent, error) {
	var s catalog.Scent
	err := row.Scan(&s.ID, &s.ProductID, &s.Name)
	return s, err
}

func scanColor(row pgx.CollectableRow) (catalog.Color, error) {
	var c catalog.Color
	err := row.Scan(&c.ID, &c.ProductID, &c.Name, &c.Hex)
	return c, err
}
