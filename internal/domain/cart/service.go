package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wickandwax/storefront/internal/domain/catalog"
)

// AddItemRequest holds the input for adding a product to a cart.
type AddItemRequest struct {
	ProductID string
	Quantity  int
	ScentID   string
	ColorID   string
}

// SummaryItem is a cart line enriched with product data for display.
type SummaryItem struct {
	Item
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	ImageURL  string          `json:"imageUrl"`
}

// Summary is the cart plus its computed subtotal. Pending reports whether a
// coalesced write has not yet reached the authoritative store, in which
// case the subtotal is optimistic.
type Summary struct {
	UserID   string          `json:"userId"`
	Items    []SummaryItem   `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Pending  bool            `json:"pending"`
}

// Service implements cart operations: add, update quantity, remove, and
// summary with subtotal. All mutations are validated against the catalog.
type Service struct {
	products catalog.Repository
	store    *Coalescer
}

// NewService creates a cart Service.
func NewService(products catalog.Repository, store *Coalescer) *Service {
	return &Service{products: products, store: store}
}

// AddItem validates the request against the catalog and appends (or merges)
// a line item. The write is immediate: adds are structural, only quantity
// updates coalesce.
func (s *Service) AddItem(ctx context.Context, userID string, req AddItemRequest) (*Item, error) {
	if req.Quantity < 1 {
		return nil, ErrQuantityRange
	}

	p, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := s.validateVariants(ctx, p, req.ScentID, req.ColorID); err != nil {
		return nil, err
	}

	current, _, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if current == nil {
		current = &Cart{UserID: userID}
	}

	var item *Item
	if i := current.findSelection(req.ProductID, req.ScentID, req.ColorID); i >= 0 {
		merged := current.Items[i].Quantity + req.Quantity
		if merged > p.Stock {
			return nil, &InsufficientStockError{ProductID: p.ID, Requested: merged, Stock: p.Stock}
		}
		current.Items[i].Quantity = merged
		item = &current.Items[i]
	} else {
		if req.Quantity > p.Stock {
			return nil, &InsufficientStockError{ProductID: p.ID, Requested: req.Quantity, Stock: p.Stock}
		}
		current.Items = append(current.Items, Item{
			ID:        uuid.New().String(),
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			ScentID:   req.ScentID,
			ColorID:   req.ColorID,
		})
		item = &current.Items[len(current.Items)-1]
	}
	current.UpdatedAt = time.Now()

	if err := s.store.Put(ctx, current); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	out := *item
	return &out, nil
}

// UpdateQuantity sets a line item's quantity. An unchanged quantity is a
// no-op. The write is deferred through the coalescer: the returned item
// reflects the optimistic state.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, ErrQuantityRange
	}

	current, _, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if current == nil {
		return nil, ErrItemNotFound
	}
	i := current.find(itemID)
	if i < 0 {
		return nil, ErrItemNotFound
	}
	if current.Items[i].Quantity == quantity {
		out := current.Items[i]
		return &out, nil
	}

	p, err := s.products.GetByID(ctx, current.Items[i].ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > p.Stock {
		return nil, &InsufficientStockError{ProductID: p.ID, Requested: quantity, Stock: p.Stock}
	}

	current.Items[i].Quantity = quantity
	current.UpdatedAt = time.Now()
	s.store.PutDeferred(current, itemID)

	out := current.Items[i]
	return &out, nil
}

// RemoveItem deletes a line item. Removing an item that is not present is a
// no-op success.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	current, _, err := s.store.Load(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "load cart")
	}
	if current == nil {
		return nil
	}
	i := current.find(itemID)
	if i < 0 {
		return nil
	}

	current.Items = append(current.Items[:i], current.Items[i+1:]...)
	current.UpdatedAt = time.Now()
	return errors.Wrap(s.store.Put(ctx, current), "save cart")
}

// Clear deletes the whole cart. Used after a successful checkout.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, userID)
}

// Flush forces any coalesced writes to the store. Checkout calls this
// before reconciling totals.
func (s *Service) Flush(ctx context.Context, userID string) error {
	return s.store.Flush(ctx, userID)
}

// Summary returns the cart with product data and the computed subtotal.
// An absent cart yields an empty summary, not an error.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	current, pending, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if current == nil {
		return &Summary{UserID: userID, Items: []SummaryItem{}, Subtotal: decimal.Zero}, nil
	}

	ids := make([]string, len(current.Items))
	for i, it := range current.Items {
		ids[i] = it.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "load cart products")
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	sum := &Summary{
		UserID:   userID,
		Items:    make([]SummaryItem, 0, len(current.Items)),
		Subtotal: decimal.Zero,
		Pending:  pending,
	}
	for _, it := range current.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			// Product removed from the catalog after it was carted: drop the
			// line rather than failing the whole summary.
			continue
		}
		line := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum.Items = append(sum.Items, SummaryItem{
			Item:      it,
			Name:      p.Name,
			UnitPrice: p.Price,
			LineTotal: line,
			ImageURL:  p.ImageURL,
		})
		sum.Subtotal = sum.Subtotal.Add(line)
	}
	return sum, nil
}

// validateVariants enforces that products with variant options get a valid
// selection and products without them get none.
func (s *Service) validateVariants(ctx context.Context, p *catalog.Product, scentID, colorID string) error {
	if p.HasScentOptions && scentID == "" {
		return &MissingVariantError{ProductID: p.ID, Kind: "scent"}
	}
	if p.HasColorOptions && colorID == "" {
		return &MissingVariantError{ProductID: p.ID, Kind: "color"}
	}

	if scentID != "" {
		sc, err := s.products.GetScent(ctx, scentID)
		if err != nil {
			return err
		}
		if sc.ProductID != p.ID {
			return &InvalidVariantError{ProductID: p.ID, VariantID: scentID, Kind: "scent"}
		}
	}
	if colorID != "" {
		co, err := s.products.GetColor(ctx, colorID)
		if err != nil {
			return err
		}
		if co.ProductID != p.ID {
			return &InvalidVariantError{ProductID: p.ID, VariantID: colorID, Kind: "color"}
		}
	}
	return nil
}
