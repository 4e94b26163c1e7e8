package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog lookups.
var (
	ErrNotFound         = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrVariantNotFound  = errors.New("variant not found")
)

// Product is a catalog item available for purchase. Prices are exact
// decimals; they are serialized as decimal strings on the wire.
type Product struct {
	ID              string
	Name            string
	Description     string
	Price           decimal.Decimal
	Stock           int
	HasScentOptions bool
	HasColorOptions bool
	ImageURL        string
	CategoryID      string
	Featured        bool
	CreatedAt       time.Time
}

// Scent is a per-product scent variant.
type Scent struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
}

// Color is a per-product color variant.
type Color struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Hex       string `json:"hex,omitempty"`
}

// Category groups products for browsing.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Repository defines persistence operations for products and their variants.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	ListFeatured(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error

	ListScents(ctx context.Context, productID string) ([]Scent, error)
	GetScent(ctx context.Context, id string) (*Scent, error)
	CreateScent(ctx context.Context, s *Scent) error
	DeleteScent(ctx context.Context, id string) error

	ListColors(ctx context.Context, productID string) ([]Color, error)
	GetColor(ctx context.Context, id string) (*Color, error)
	CreateColor(ctx context.Context, c *Color) error
	DeleteColor(ctx context.Context, id string) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}
