package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultWindow is how long a quantity update may sit in the coalescer
// before the authoritative store write happens.
const DefaultWindow = 500 * time.Millisecond

const flushTimeout = 5 * time.Second

// Coalescer is a write-behind cache in front of the cart Repository.
//
// Reads see the optimistic in-memory view immediately. Deferred writes are
// scheduled per (user, item) and coalesce: every update within the window
// resets the item's timer, so a burst of increments produces one store
// write carrying the final state. Last write wins per item; there is no
// ordering guarantee across items.
//
// Store writes for a user are serialized through a per-user write lock,
// and every authoritative write advances the user's generation. A deferred
// flush that snapshotted the view under an older generation is abandoned,
// so a timer that fires across an add, remove or clear can never overwrite
// the result with its stale snapshot.
//
// A failed flush flags the user's view dirty. A dirty view is discarded on
// the next read and the authoritative store state is served instead.
type Coalescer struct {
	repo   Repository
	window time.Duration
	lg     *zap.Logger

	mu     sync.Mutex
	states map[string]*userState
}

// userState entries persist after the view is dropped: gen and writeMu
// must outlive the view they guard.
type userState struct {
	cart  *Cart
	dirty bool
	// gen counts authoritative writes for the user. A flush snapshot taken
	// under an older generation must not reach the store.
	gen    uint64
	timers map[string]*time.Timer // keyed by item ID

	// writeMu serializes repo writes for the user. Never acquired while
	// holding mu; flushItem takes mu while holding writeMu.
	writeMu sync.Mutex
}

// NewCoalescer wraps repo with a write-behind cache. A non-positive window
// falls back to DefaultWindow.
func NewCoalescer(repo Repository, window time.Duration, lg *zap.Logger) *Coalescer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Coalescer{
		repo:   repo,
		window: window,
		lg:     lg,
		states: make(map[string]*userState),
	}
}

// Load returns the user's cart and whether a deferred write is pending.
// With a clean pending view the optimistic state is served; otherwise the
// authoritative store is read and any stale view discarded.
func (c *Coalescer) Load(ctx context.Context, userID string) (*Cart, bool, error) {
	c.mu.Lock()
	st, ok := c.states[userID]
	if ok && !st.dirty && len(st.timers) > 0 {
		view := st.cart.clone()
		c.mu.Unlock()
		return view, true, nil
	}
	if ok {
		// No pending writes (or a failed one): the store is authoritative.
		c.dropLocked(st)
	}
	c.mu.Unlock()

	stored, err := c.repo.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// Put writes the cart to the store immediately, cancelling any deferred
// writes for the user. Used for structural mutations (add, remove, clear)
// where the caller needs the authoritative state settled. A flush already
// past its snapshot either finishes before this write or is abandoned.
func (c *Coalescer) Put(ctx context.Context, cart *Cart) error {
	c.mu.Lock()
	st := c.stateLocked(cart.UserID)
	c.dropLocked(st)
	c.mu.Unlock()

	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	return c.repo.Save(ctx, cart)
}

// PutDeferred installs cart as the user's optimistic view and schedules a
// store write for itemID after the coalescing window. A timer already
// pending for the same item is reset, so the last update within the window
// is the one that gets written.
func (c *Coalescer) PutDeferred(cart *Cart, itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stateLocked(cart.UserID)
	st.cart = cart.clone()
	st.dirty = false

	if t, ok := st.timers[itemID]; ok {
		t.Stop()
	}
	userID := cart.UserID
	st.timers[itemID] = time.AfterFunc(c.window, func() {
		c.flushItem(userID, itemID)
	})
}

// flushItem runs on timer expiry: it writes the user's current view to the
// store and retires the item's timer. The snapshot is re-validated against
// the user's generation once the write lock is held, so an authoritative
// write that raced the timer wins. Flush errors flag the view dirty.
func (c *Coalescer) flushItem(userID, itemID string) {
	c.mu.Lock()
	st, ok := c.states[userID]
	if !ok || st.cart == nil {
		c.mu.Unlock()
		return
	}
	delete(st.timers, itemID)
	snapshot := st.cart.clone()
	gen := st.gen
	c.mu.Unlock()

	st.writeMu.Lock()
	defer st.writeMu.Unlock()

	c.mu.Lock()
	stale := st.gen != gen
	c.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := c.repo.Save(ctx, snapshot); err != nil {
		c.lg.Error("cart flush failed",
			zap.String("user_id", userID),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		c.mu.Lock()
		if st.gen == gen {
			st.dirty = true
		}
		c.mu.Unlock()
	}
}

// Flush synchronously writes any pending view for the user. Checkout calls
// this so reconciliation runs against the authoritative cart.
func (c *Coalescer) Flush(ctx context.Context, userID string) error {
	c.mu.Lock()
	st, ok := c.states[userID]
	if !ok || len(st.timers) == 0 {
		c.mu.Unlock()
		return nil
	}
	snapshot := st.cart.clone()
	c.dropLocked(st)
	c.mu.Unlock()

	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	return c.repo.Save(ctx, snapshot)
}

// Delete removes the user's cart from both the view cache and the store.
func (c *Coalescer) Delete(ctx context.Context, userID string) error {
	c.mu.Lock()
	st := c.stateLocked(userID)
	c.dropLocked(st)
	c.mu.Unlock()

	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	return c.repo.Delete(ctx, userID)
}

// Close flushes every pending view. Called on shutdown so debounced writes
// are not lost.
func (c *Coalescer) Close(ctx context.Context) error {
	type pendingWrite struct {
		st   *userState
		cart *Cart
	}

	c.mu.Lock()
	pending := make([]pendingWrite, 0, len(c.states))
	for _, st := range c.states {
		if len(st.timers) > 0 && !st.dirty {
			pending = append(pending, pendingWrite{st: st, cart: st.cart.clone()})
		}
		c.dropLocked(st)
	}
	c.mu.Unlock()

	var firstErr error
	for _, w := range pending {
		w.st.writeMu.Lock()
		err := c.repo.Save(ctx, w.cart)
		w.st.writeMu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// stateLocked returns the user's state, creating it on first use.
// Caller must hold c.mu.
func (c *Coalescer) stateLocked(userID string) *userState {
	st, ok := c.states[userID]
	if !ok {
		st = &userState{timers: make(map[string]*time.Timer)}
		c.states[userID] = st
	}
	return st
}

// dropLocked cancels the user's timers, forgets the view and advances the
// generation, invalidating any flush snapshot taken before the call.
// Caller must hold c.mu.
func (c *Coalescer) dropLocked(st *userState) {
	for id, t := range st.timers {
		t.Stop()
		delete(st.timers, id)
	}
	st.cart = nil
	st.dirty = false
	st.gen++
}
