// Package cart implements quantity bookkeeping for the user's cart and
// its best-effort write-behind persistence.
package cart

import (
	"context"
	"sync"

	"github.com/tmaulida/flashstore/internal/obs"
)

// Persister saves and restores cart snapshots. Implementations are
// best-effort: failures are logged at this boundary and never propagate
// into cart mutation.
type Persister interface {
	Save(ctx context.Context, items map[string]int) error
	Load(ctx context.Context) (map[string]int, error)
}

// Store maps product ids to requested quantities. It knows nothing
// about products; validity against the catalog is the reconciliation
// engine's job. Entries always carry qty >= 1.
type Store struct {
	mu    sync.Mutex
	items map[string]int
	w     *writeBehind
}

// New creates a Store. p may be nil, in which case the cart is purely
// in-memory. With a persister, call Start to begin write-behind saves.
func New(p Persister) *Store {
	s := &Store{items: make(map[string]int)}
	if p != nil {
		s.w = newWriteBehind(p)
	}
	return s
}

// Start launches the write-behind loop. No-op without a persister.
func (s *Store) Start(ctx context.Context) {
	if s.w != nil {
		s.w.Start(ctx)
	}
}

// RestoreSaved loads the last persisted snapshot into the cart. Errors
// are logged and swallowed: a missing or unreadable saved cart just
// means starting empty. The restored entries may reference expired or
// depleted products; they are revalidated on first use.
func (s *Store) RestoreSaved(ctx context.Context) {
	if s.w == nil {
		return
	}
	items, err := s.w.p.Load(ctx)
	if err != nil {
		obs.Logger.Warn("cart_restore_failed", "error", err)
		return
	}
	s.Restore(items)
}

// Add increments the quantity for id by one.
func (s *Store) Add(id string) {
	s.mu.Lock()
	s.items[id]++
	s.mu.Unlock()
	s.scheduleSave()
}

// SetQuantity sets the quantity for id exactly. Quantities below one
// remove the entry; zero-quantity entries are never stored.
func (s *Store) SetQuantity(id string, qty int) {
	s.mu.Lock()
	if qty < 1 {
		delete(s.items, id)
	} else {
		s.items[id] = qty
	}
	s.mu.Unlock()
	s.scheduleSave()
}

// Deduct subtracts qty from the entry for id, removing it when nothing
// is left. Checkout uses this to take exactly the committed quantities
// out of the cart, leaving anything added in the meantime alone.
func (s *Store) Deduct(id string, qty int) {
	s.mu.Lock()
	rest := s.items[id] - qty
	if rest < 1 {
		delete(s.items, id)
	} else {
		s.items[id] = rest
	}
	s.mu.Unlock()
	s.scheduleSave()
}

// Remove drops the entry for id.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	s.scheduleSave()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = make(map[string]int)
	s.mu.Unlock()
	s.scheduleSave()
}

// Restore replaces the cart contents with the given mapping, filtering
// out non-positive quantities.
func (s *Store) Restore(items map[string]int) {
	m := make(map[string]int, len(items))
	for id, qty := range items {
		if id == "" || qty < 1 {
			continue
		}
		m[id] = qty
	}
	s.mu.Lock()
	s.items = m
	s.mu.Unlock()
	s.scheduleSave()
}

// Quantity returns the stored quantity for id, zero when absent.
func (s *Store) Quantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

// Snapshot returns a copy of the current mapping.
func (s *Store) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.items))
	for id, qty := range s.items {
		out[id] = qty
	}
	return out
}

// Len reports the number of distinct entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// DrainUntil blocks until the last scheduled save has been attempted or
// the context is done. Used on shutdown.
func (s *Store) DrainUntil(ctx context.Context) bool {
	if s.w == nil {
		return true
	}
	return s.w.DrainUntil(ctx)
}

// SaveMetrics exposes write-behind counters for observability.
func (s *Store) SaveMetrics() (scheduled, saved, failed uint64) {
	if s.w == nil {
		return 0, 0, 0
	}
	return s.w.Metrics()
}

func (s *Store) scheduleSave() {
	if s.w == nil {
		return
	}
	s.w.Schedule(s.Snapshot())
}
