package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCart(userID string, items ...Item) *Cart {
	return &Cart{UserID: userID, Items: items, UpdatedAt: time.Now()}
}

func TestCoalescer_DeferredWriteLandsOnce(t *testing.T) {
	repo := newMemCartRepo()
	co := NewCoalescer(repo, 25*time.Millisecond, zap.NewNop())
	defer co.Close(context.Background())

	item := Item{ID: "i1", ProductID: "p1", Quantity: 1}
	for q := 1; q <= 5; q++ {
		item.Quantity = q
		co.PutDeferred(testCart("u1", item), "i1")
	}

	// Nothing written yet within the window.
	stored, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, stored)

	require.Eventually(t, func() bool {
		stored, err := repo.Get(context.Background(), "u1")
		return err == nil && stored != nil
	}, time.Second, 5*time.Millisecond)

	stored, _ = repo.Get(context.Background(), "u1")
	assert.Equal(t, 5, stored.Items[0].Quantity)
	assert.Equal(t, 1, repo.saveCount())
}

func TestCoalescer_LoadServesOptimisticView(t *testing.T) {
	repo := newMemCartRepo()
	co := NewCoalescer(repo, time.Minute, zap.NewNop())
	defer co.Close(context.Background())

	co.PutDeferred(testCart("u1", Item{ID: "i1", ProductID: "p1", Quantity: 3}), "i1")

	view, pending, err := co.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, pending)
	require.NotNil(t, view)
	assert.Equal(t, 3, view.Items[0].Quantity)
}

func TestCoalescer_PerItemLastWriteWins(t *testing.T) {
	repo := newMemCartRepo()
	co := NewCoalescer(repo, 20*time.Millisecond, zap.NewNop())
	defer co.Close(context.Background())

	a := Item{ID: "a", ProductID: "p1", Quantity: 1}
	b := Item{ID: "b", ProductID: "p2", Quantity: 1}
	co.PutDeferred(testCart("u1", a, b), "a")
	b.Quantity = 7
	co.PutDeferred(testCart("u1", a, b), "b")

	require.Eventually(t, func() bool {
		stored, err := repo.Get(context.Background(), "u1")
		return err == nil && stored != nil && len(stored.Items) == 2
	}, time.Second, 5*time.Millisecond)

	stored, _ := repo.Get(context.Background(), "u1")
	assert.Equal(t, 7, stored.Items[1].Quantity)
}

func TestCoalescer_FlushWritesSynchronously(t *testing.T) {
	repo := newMemCartRepo()
	co := NewCoalescer(repo, time.Hour, zap.NewNop())
	defer co.Close(context.Background())

	co.PutDeferred(testCart("u1", Item{ID: "i1", ProductID: "p1", Quantity: 4}), "i1")
	require.NoError(t, co.Flush(context.Background(), "u1"))

	stored, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 4, stored.Items[0].Quantity)

	// Flush with nothing pending is a no-op.
	require.NoError(t, co.Flush(context.Background(), "u1"))
	assert.Equal(t, 1, repo.saveCount())
}

func TestCoalescer_PutCancelsPendingTimers(t *testing.T) {
	repo := newMemCartRepo()
	co := NewCoalescer(repo, 20*time.Millisecond, zap.NewNop())
	defer co.Close(context.Background())

	co.PutDeferred(testCart("u1", Item{ID: "i1", ProductID: "p1", Quantity: 2}), "i1")
	require.NoError(t, co.Put(context.Background(), testCart("u1")))

	time.Sleep(60 * time.Millisecond)
	stored, _ := repo.Get(context.Background(), "u1")
	assert.Empty(t, stored.Items)
	assert.Equal(t, 1, repo.saveCount())
}

func TestCoalescer_DirtyViewReloadsFromStore(t *testing.T) {
	repo := newMemCartRepo()
	authoritative := testCart("u1", Item{ID: "i1", ProductID: "p1", Quantity: 1})
	require.NoError(t, repo.Save(context.Background(), authoritative))

	co := NewCoalescer(repo, 10*time.Millisecond, zap.NewNop())
	defer co.Close(context.Background())

	repo.mu.Lock()
	repo.failed = true
	repo.mu.Unlock()

	optimistic := testCart("u1", Item{ID: "i1", ProductID: "p1", Quantity: 9})
	co.PutDeferred(optimistic, "i1")

	// Wait for the flush attempt to fail and flag the view dirty.
	require.Eventually(t, func() bool {
		co.mu.Lock()
		defer co.mu.Unlock()
		st, ok := co.states["u1"]
		return ok && st.dirty
	}, time.Second, 5*time.Millisecond)

	repo.mu.Lock()
	repo.failed = false
	repo.mu.Unlock()

	view, pending, err := co.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, pending)
	assert.Equal(t, 1, view.Items[0].Quantity, "dirty view must be discarded for store state")
}

func TestCoalescer_CloseFlushesPending(t *testing.T) {
	repo := newMemCartRepo()
	co := NewCoalescer(repo, time.Hour, zap.NewNop())

	co.PutDeferred(testCart("u1", Item{ID: "i1", ProductID: "p1", Quantity: 2}), "i1")
	co.PutDeferred(testCart("u2", Item{ID: "i2", ProductID: "p2", Quantity: 3}), "i2")

	require.NoError(t, co.Close(context.Background()))

	for _, userID := range []string{"u1", "u2"} {
		stored, err := repo.Get(context.Background(), userID)
		require.NoError(t, err)
		require.NotNil(t, stored, userID)
	}
}

// gatedCartRepo parks its first Save on a channel so a test can interleave
// an authoritative write with an in-flight timer flush.
type gatedCartRepo struct {
	*memCartRepo
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCartRepo) Save(ctx context.Context, c *Cart) error {
	var gated bool
	g.once.Do(func() { gated = true })
	if gated {
		close(g.entered)
		<-g.release
	}
	return g.memCartRepo.Save(ctx, c)
}

func TestCoalescer_PutSupersedesInFlightFlush(t *testing.T) {
	repo := &gatedCartRepo{
		memCartRepo: newMemCartRepo(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	co := NewCoalescer(repo, 10*time.Millisecond, zap.NewNop())
	defer co.Close(context.Background())

	a := Item{ID: "a", ProductID: "p1", Quantity: 5}
	co.PutDeferred(testCart("u1", a), "a")

	// The timer flush is now inside Save with its pre-Put snapshot.
	<-repo.entered

	b := Item{ID: "b", ProductID: "p2", Quantity: 1}
	done := make(chan error, 1)
	go func() {
		done <- co.Put(context.Background(), testCart("u1", a, b))
	}()

	close(repo.release)
	require.NoError(t, <-done)

	// Any straggling stale write would land within the window.
	time.Sleep(50 * time.Millisecond)

	stored, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 2, "item added during an in-flight flush must survive")
	assert.Equal(t, "b", stored.Items[1].ID)
}

func TestCoalescer_StaleSnapshotAbandonedAfterPut(t *testing.T) {
	repo := &gatedCartRepo{
		memCartRepo: newMemCartRepo(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	co := NewCoalescer(repo, 10*time.Millisecond, zap.NewNop())
	defer co.Close(context.Background())

	a := Item{ID: "a", ProductID: "p1", Quantity: 5}
	b := Item{ID: "b", ProductID: "p2", Quantity: 1}
	co.PutDeferred(testCart("u1", a), "a")
	co.PutDeferred(testCart("u1", a, b), "b")

	// One timer flush holds the write lock inside Save; the other timer
	// fires, snapshots, and queues behind it.
	<-repo.entered
	time.Sleep(50 * time.Millisecond)

	c := Item{ID: "c", ProductID: "p3", Quantity: 2}
	done := make(chan error, 1)
	go func() {
		done <- co.Put(context.Background(), testCart("u1", a, b, c))
	}()

	close(repo.release)
	require.NoError(t, <-done)

	// The queued flush snapshotted an older generation: it must be
	// abandoned, not written over the three-item cart.
	require.Eventually(t, func() bool {
		stored, err := repo.Get(context.Background(), "u1")
		return err == nil && stored != nil && len(stored.Items) == 3
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	stored, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stored.Items, 3)
}
