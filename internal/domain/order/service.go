package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wickandwax/storefront/internal/domain/cart"
	"github.com/wickandwax/storefront/internal/domain/catalog"
	"github.com/wickandwax/storefront/internal/domain/settings"
	"github.com/wickandwax/storefront/internal/domain/shipping"
)

// idempotencyTTL is how long a checkout idempotency key keeps returning the
// original order.
const idempotencyTTL = 24 * time.Hour

// reservationTTL bounds how long an in-flight checkout holds its
// idempotency key. A crashed checkout frees the key when this expires.
const reservationTTL = 2 * time.Minute

// CheckoutRequest is the input for placing an order.
type CheckoutRequest struct {
	UserID          string
	PaymentMethod   string
	ShippingAddress Address
	// ClientSubtotal is the subtotal the storefront displayed. It must match
	// the server-computed subtotal or checkout is blocked.
	ClientSubtotal decimal.Decimal
	// IdempotencyKey dedupes double-submits; empty disables the check.
	IdempotencyKey string
}

// Service encapsulates checkout and order management.
type Service struct {
	carts    *cart.Service
	products catalog.Repository
	settings *settings.Service
	orders   Repository
	idem     IdempotencyStore
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	carts *cart.Service,
	products catalog.Repository,
	settingsSvc *settings.Service,
	orders Repository,
	idem IdempotencyStore,
) *Service {
	return &Service{
		carts:    carts,
		products: products,
		settings: settingsSvc,
		orders:   orders,
		idem:     idem,
	}
}

// Checkout materializes the user's cart into an order: flushes pending cart
// writes, reconciles the client subtotal against the authoritative one,
// prices shipping from the store settings, snapshots the items, persists
// the order with a stock decrement, and clears the cart. A repeated submit
// with the same idempotency key returns the original order; a concurrent
// one fails with ErrCheckoutInFlight.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.IdempotencyKey == "" {
		return s.checkout(ctx, req)
	}

	// Reserving the key before creating anything keeps two concurrent
	// submits with the same key from both passing the lookup.
	reserved, err := s.idem.Reserve(ctx, req.IdempotencyKey, reservationTTL)
	if err != nil {
		return nil, errors.Wrap(err, "idempotency reserve")
	}
	if !reserved {
		existingID, err := s.idem.Get(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, errors.Wrap(err, "idempotency lookup")
		}
		if existingID == "" {
			return nil, ErrCheckoutInFlight
		}
		return s.orders.GetByID(ctx, existingID)
	}

	o, err := s.checkout(ctx, req)
	if err != nil {
		// Best effort; an orphaned reservation expires with its TTL.
		_ = s.idem.Release(ctx, req.IdempotencyKey)
		return nil, err
	}
	if err := s.idem.Set(ctx, req.IdempotencyKey, o.ID, idempotencyTTL); err != nil {
		// The order exists; a lost idempotency record only weakens
		// double-submit protection.
		return o, nil
	}
	return o, nil
}

func (s *Service) checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	// Make the store authoritative before reconciling anything.
	if err := s.carts.Flush(ctx, req.UserID); err != nil {
		return nil, errors.Wrap(err, "flush cart")
	}

	sum, err := s.carts.Summary(ctx, req.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(sum.Items) == 0 {
		return nil, ErrEmptyCart
	}

	serverSubtotal := sum.Subtotal.Round(2)
	if !req.ClientSubtotal.Round(2).Equal(serverSubtotal) {
		return nil, &ReconciliationError{
			ClientSubtotal: req.ClientSubtotal,
			ServerSubtotal: serverSubtotal,
		}
	}

	rates, err := s.settings.ShippingRates(ctx)
	if err != nil {
		return nil, err
	}
	quote := shipping.Compute(serverSubtotal, rates)

	items, err := s.snapshotItems(ctx, sum.Items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Items:           items,
		Subtotal:        serverSubtotal,
		ShippingCost:    quote.Cost.Round(2),
		Total:           serverSubtotal.Add(quote.Cost).Round(2),
		Status:          StatusPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       time.Now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if err := s.carts.Clear(ctx, req.UserID); err != nil {
		return o, nil
	}
	return o, nil
}

// GetByID returns a single order.
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// List returns all orders for the admin panel.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus applies an admin-driven status transition, validating it
// against the allowed graph.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}
	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	o.Status = next
	return o, nil
}

// snapshotItems freezes cart lines into order items, resolving variant
// names so the order reads correctly after catalog edits.
func (s *Service) snapshotItems(ctx context.Context, lines []cart.SummaryItem) ([]Item, error) {
	items := make([]Item, len(lines))
	for i, line := range lines {
		item := Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
		if line.ScentID != "" {
			sc, err := s.products.GetScent(ctx, line.ScentID)
			if err != nil {
				return nil, errors.Wrap(err, "resolve scent")
			}
			item.Scent = sc.Name
		}
		if line.ColorID != "" {
			co, err := s.products.GetColor(ctx, line.ColorID)
			if err != nil {
				return nil, errors.Wrap(err, "resolve color")
			}
			item.Color = co.Name
		}
		items[i] = item
	}
	return items, nil
}
