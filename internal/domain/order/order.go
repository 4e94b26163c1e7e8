package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order operations.
var (
	ErrNotFound         = errors.New("order not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCheckoutInFlight = errors.New("checkout already in progress")
)

// Status is the lifecycle state of an order. Transitions are admin-driven.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the allowed status graph.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusCompleted},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError indicates a disallowed status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ReconciliationError indicates the client-computed subtotal does not match
// the server-computed one; checkout is blocked until the client refreshes.
type ReconciliationError struct {
	ClientSubtotal decimal.Decimal
	ServerSubtotal decimal.Decimal
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("cart subtotal mismatch: client %s, server %s",
		e.ClientSubtotal.StringFixed(2), e.ServerSubtotal.StringFixed(2))
}

// OutOfStockError indicates stock was depleted between carting and checkout.
type OutOfStockError struct {
	ProductID string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// Address is the shipping destination collected at checkout.
type Address struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Item is a point-in-time snapshot of one cart line: product name, unit
// price, and variant names are captured so later catalog edits do not
// rewrite order history.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Scent     string          `json:"scent,omitempty"`
	Color     string          `json:"color,omitempty"`
}

// Order is a placed order: the materialized cart plus computed pricing.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress Address         `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Repository defines persistence operations for orders. Create must
// atomically decrement product stock and fail with OutOfStockError when any
// line exceeds the remaining stock.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// IdempotencyStore maps a client-supplied idempotency key to the order it
// produced, preventing double-submission from creating duplicate orders.
// Reserve must be atomic across concurrent callers.
type IdempotencyStore interface {
	// Reserve claims the key for an in-flight checkout. It returns false
	// when the key is already reserved or recorded.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Get returns the order id recorded for the key. It returns "" when
	// the key is unseen or only reserved.
	Get(ctx context.Context, key string) (orderID string, err error)
	// Set records the order created under the key, replacing any
	// reservation.
	Set(ctx context.Context, key, orderID string, ttl time.Duration) error
	// Release frees an unrecorded reservation so the client can retry.
	Release(ctx context.Context, key string) error
}
