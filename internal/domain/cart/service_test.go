package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wickandwax/storefront/internal/domain/catalog"
)

// --- Mock implementations ---

type mockCatalog struct {
	products map[string]*catalog.Product
	scents   map[string]*catalog.Scent
	colors   map[string]*catalog.Color
}

func (m *mockCatalog) List(_ context.Context) ([]catalog.Product, error)         { return nil, nil }
func (m *mockCatalog) ListFeatured(_ context.Context) ([]catalog.Product, error) { return nil, nil }

func (m *mockCatalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalog) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	var out []catalog.Product
	seen := make(map[string]bool)
	for _, id := range ids {
		if p, ok := m.products[id]; ok && !seen[id] {
			out = append(out, *p)
			seen[id] = true
		}
	}
	return out, nil
}

func (m *mockCatalog) Create(_ context.Context, _ *catalog.Product) error { return nil }
func (m *mockCatalog) Update(_ context.Context, _ *catalog.Product) error { return nil }
func (m *mockCatalog) Delete(_ context.Context, _ string) error           { return nil }

func (m *mockCatalog) ListScents(_ context.Context, _ string) ([]catalog.Scent, error) {
	return nil, nil
}

func (m *mockCatalog) GetScent(_ context.Context, id string) (*catalog.Scent, error) {
	s, ok := m.scents[id]
	if !ok {
		return nil, catalog.ErrVariantNotFound
	}
	return s, nil
}

func (m *mockCatalog) CreateScent(_ context.Context, _ *catalog.Scent) error { return nil }
func (m *mockCatalog) DeleteScent(_ context.Context, _ string) error         { return nil }

func (m *mockCatalog) ListColors(_ context.Context, _ string) ([]catalog.Color, error) {
	return nil, nil
}

func (m *mockCatalog) GetColor(_ context.Context, id string) (*catalog.Color, error) {
	c, ok := m.colors[id]
	if !ok {
		return nil, catalog.ErrVariantNotFound
	}
	return c, nil
}

func (m *mockCatalog) CreateColor(_ context.Context, _ *catalog.Color) error { return nil }
func (m *mockCatalog) DeleteColor(_ context.Context, _ string) error         { return nil }

type memCartRepo struct {
	mu     sync.Mutex
	carts  map[string]*Cart
	saves  int
	failed bool
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string]*Cart)}
}

func (m *memCartRepo) Get(_ context.Context, userID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]Item(nil), c.Items...)
	return &cp, nil
}

func (m *memCartRepo) Save(_ context.Context, c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed {
		return errSaveFailed
	}
	m.saves++
	cp := *c
	cp.Items = append([]Item(nil), c.Items...)
	m.carts[c.UserID] = &cp
	return nil
}

func (m *memCartRepo) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

func (m *memCartRepo) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

var errSaveFailed = errors.New("save failed")

// --- Helpers ---

func newTestCatalog() *mockCatalog {
	return &mockCatalog{
		products: map[string]*catalog.Product{
			"candle-1": {
				ID: "candle-1", Name: "Lavender Pillar",
				Price: decimal.RequireFromString("12.50"), Stock: 10,
			},
			"candle-2": {
				ID: "candle-2", Name: "Vanilla Jar",
				Price: decimal.RequireFromString("8.00"), Stock: 3,
				HasScentOptions: true,
			},
			"candle-3": {
				ID: "candle-3", Name: "Dipped Taper",
				Price: decimal.RequireFromString("4.25"), Stock: 20,
				HasColorOptions: true,
			},
		},
		scents: map[string]*catalog.Scent{
			"sc-van": {ID: "sc-van", ProductID: "candle-2", Name: "Vanilla Bean"},
			"sc-oak": {ID: "sc-oak", ProductID: "candle-1", Name: "Oakmoss"},
		},
		colors: map[string]*catalog.Color{
			"co-red": {ID: "co-red", ProductID: "candle-3", Name: "Crimson", Hex: "#dc2626"},
		},
	}
}

func newTestService(t *testing.T, repo Repository, window time.Duration) *Service {
	t.Helper()
	co := NewCoalescer(repo, window, zap.NewNop())
	t.Cleanup(func() {
		_ = co.Close(context.Background())
	})
	return NewService(newTestCatalog(), co)
}

// --- Tests ---

func TestAddItem_Simple(t *testing.T) {
	repo := newMemCartRepo()
	svc := newTestService(t, repo, time.Minute)

	item, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-1", Quantity: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 2, item.Quantity)

	stored, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
}

func TestAddItem_QuantityBelowOne(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), time.Minute)

	_, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-1", Quantity: 0})
	require.ErrorIs(t, err, ErrQuantityRange)
}

func TestAddItem_ExceedsStock(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), time.Minute)

	_, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-2", Quantity: 4, ScentID: "sc-van"})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "candle-2", stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Stock)
}

func TestAddItem_MissingRequiredScent(t *testing.T) {
	repo := newMemCartRepo()
	svc := newTestService(t, repo, time.Minute)

	_, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-2", Quantity: 1})

	var mvErr *MissingVariantError
	require.ErrorAs(t, err, &mvErr)
	assert.Equal(t, "scent", mvErr.Kind)

	// Cart unchanged.
	stored, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAddItem_MissingRequiredColor(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), time.Minute)

	_, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-3", Quantity: 1})

	var mvErr *MissingVariantError
	require.ErrorAs(t, err, &mvErr)
	assert.Equal(t, "color", mvErr.Kind)
}

func TestAddItem_ScentFromAnotherProduct(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), time.Minute)

	_, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-2", Quantity: 1, ScentID: "sc-oak"})

	var ivErr *InvalidVariantError
	require.ErrorAs(t, err, &ivErr)
	assert.Equal(t, "sc-oak", ivErr.VariantID)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), time.Minute)

	_, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "nope", Quantity: 1})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestAddItem_MergesSameSelection(t *testing.T) {
	repo := newMemCartRepo()
	svc := newTestService(t, repo, time.Minute)

	first, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-1", Quantity: 2})
	require.NoError(t, err)
	second, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-1", Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	stored, _ := repo.Get(context.Background(), "u1")
	require.Len(t, stored.Items, 1)
}

func TestAddItem_MergeBoundedByStock(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), time.Minute)

	_, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-2", Quantity: 2, ScentID: "sc-van"})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-2", Quantity: 2, ScentID: "sc-van"})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)
}

func TestUpdateQuantity_NoOpWhenUnchanged(t *testing.T) {
	repo := newMemCartRepo()
	svc := newTestService(t, repo, time.Minute)

	item, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-1", Quantity: 2})
	require.NoError(t, err)
	before := repo.saveCount()

	got, err := svc.UpdateQuantity(context.Background(), "u1", item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, before, repo.saveCount())
}

func TestUpdateQuantity_Rejections(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), time.Minute)

	item, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-1", Quantity: 2})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(context.Background(), "u1", item.ID, 0)
	require.ErrorIs(t, err, ErrQuantityRange)

	_, err = svc.UpdateQuantity(context.Background(), "u1", item.ID, 11)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	_, err = svc.UpdateQuantity(context.Background(), "u1", "ghost", 2)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateQuantity_CoalescesRapidUpdates(t *testing.T) {
	repo := newMemCartRepo()
	svc := newTestService(t, repo, 30*time.Millisecond)

	item, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-1", Quantity: 1})
	require.NoError(t, err)
	savesAfterAdd := repo.saveCount()

	// Burst of increments: view updates immediately, one store write total.
	for q := 2; q <= 6; q++ {
		got, err := svc.UpdateQuantity(context.Background(), "u1", item.ID, q)
		require.NoError(t, err)
		assert.Equal(t, q, got.Quantity)
	}

	sum, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, sum.Pending)
	require.Len(t, sum.Items, 1)
	assert.Equal(t, 6, sum.Items[0].Quantity)

	require.Eventually(t, func() bool {
		stored, err := repo.Get(context.Background(), "u1")
		return err == nil && stored != nil && stored.Items[0].Quantity == 6
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, savesAfterAdd+1, repo.saveCount())
}

func TestRemoveItem_Idempotent(t *testing.T) {
	repo := newMemCartRepo()
	svc := newTestService(t, repo, time.Minute)

	item, err := svc.AddItem(context.Background(), "u1", AddItemRequest{ProductID: "candle-1", Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(context.Background(), "u1", item.ID))
	// Removing again, and removing from an absent cart, are both no-ops.
	require.NoError(t, svc.RemoveItem(context.Background(), "u1", item.ID))
	require.NoError(t, svc.RemoveItem(context.Background(), "nobody", item.ID))

	stored, _ := repo.Get(context.Background(), "u1")
	assert.Empty(t, stored.Items)
}

func TestSummary_SubtotalCommutative(t *testing.T) {
	ctx := context.Background()

	addAll := func(order []AddItemRequest) decimal.Decimal {
		svc := newTestService(t, newMemCartRepo(), time.Minute)
		for _, req := range order {
			_, err := svc.AddItem(ctx, "u1", req)
			require.NoError(t, err)
		}
		sum, err := svc.Summary(ctx, "u1")
		require.NoError(t, err)
		return sum.Subtotal
	}

	a := AddItemRequest{ProductID: "candle-1", Quantity: 2}
	b := AddItemRequest{ProductID: "candle-2", Quantity: 1, ScentID: "sc-van"}
	c := AddItemRequest{ProductID: "candle-3", Quantity: 4, ColorID: "co-red"}

	want := decimal.RequireFromString("50.00") // 2*12.50 + 8.00 + 4*4.25
	assert.True(t, want.Equal(addAll([]AddItemRequest{a, b, c})))
	assert.True(t, want.Equal(addAll([]AddItemRequest{c, a, b})))
	assert.True(t, want.Equal(addAll([]AddItemRequest{b, c, a})))
}

func TestSummary_EmptyCart(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), time.Minute)

	sum, err := svc.Summary(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, sum.Items)
	assert.True(t, sum.Subtotal.IsZero())
	assert.False(t, sum.Pending)
}
