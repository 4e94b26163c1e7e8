// Package cart holds a customer's in-progress order: line items with
// optional scent/color selections, validated against the live catalog.
//
// The authoritative cart lives in Redis. Quantity updates pass through a
// write-behind coalescer so rapid increment/decrement bursts settle into a
// single store write per item.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart operations.
var (
	ErrQuantityRange = errors.New("quantity must be at least 1")
	ErrItemNotFound  = errors.New("cart item not found")
)

// InsufficientStockError indicates a requested quantity exceeds the
// product's current stock.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Stock     int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("requested quantity %d exceeds stock %d for product %s",
		e.Requested, e.Stock, e.ProductID)
}

// MissingVariantError indicates a product defines variants of the given kind
// but the request did not select one.
type MissingVariantError struct {
	ProductID string
	Kind      string // "scent" or "color"
}

func (e *MissingVariantError) Error() string {
	return fmt.Sprintf("product %s requires a %s selection", e.ProductID, e.Kind)
}

// InvalidVariantError indicates the selected variant does not belong to the
// product being added.
type InvalidVariantError struct {
	ProductID string
	VariantID string
	Kind      string
}

func (e *InvalidVariantError) Error() string {
	return fmt.Sprintf("%s %s does not belong to product %s", e.Kind, e.VariantID, e.ProductID)
}

// Item is one line of a cart: a product selection with its quantity and
// optional variant choices.
type Item struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	ScentID   string `json:"scentId,omitempty"`
	ColorID   string `json:"colorId,omitempty"`
}

// Cart is the full cart state for one user.
type Cart struct {
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// find returns the index of the item with the given id, or -1.
func (c *Cart) find(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// findSelection returns the index of the item with the same product and
// variant selection, or -1. Adding a duplicate selection merges quantities.
func (c *Cart) findSelection(productID, scentID, colorID string) int {
	for i := range c.Items {
		it := &c.Items[i]
		if it.ProductID == productID && it.ScentID == scentID && it.ColorID == colorID {
			return i
		}
	}
	return -1
}

// clone returns a deep copy safe to hand out while the original keeps
// mutating under the coalescer.
func (c *Cart) clone() *Cart {
	cp := *c
	cp.Items = make([]Item, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

// Repository defines the authoritative cart store.
// Get returns (nil, nil) when the user has no cart.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, userID string) error
}

// Subtotal computes Σ price×quantity for the cart given a product price
// lookup. The result is independent of item order.
func Subtotal(items []Item, prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(prices[it.ProductID].Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
