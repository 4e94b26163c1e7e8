// Package page models the editable site content blocks: about, contact,
// blog, and shipping-returns.
package page

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for page lookups.
var (
	ErrNotFound    = errors.New("page not found")
	ErrUnknownType = errors.New("unknown page type")
)

// Known page types; requests for anything else are rejected up front.
var knownTypes = map[string]bool{
	"about":            true,
	"contact":          true,
	"blog":             true,
	"shipping-returns": true,
}

// ValidType reports whether t names an editable page.
func ValidType(t string) bool {
	return knownTypes[t]
}

// Page is one editable content block, keyed by its type.
type Page struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository defines persistence operations for pages.
type Repository interface {
	GetByType(ctx context.Context, pageType string) (*Page, error)
	Upsert(ctx context.Context, p *Page) error
}
