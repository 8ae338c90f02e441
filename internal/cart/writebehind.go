package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tmaulida/flashstore/internal/obs"
)

// writeBehind pushes cart snapshots to a Persister from a single
// background goroutine. Only the latest snapshot matters: scheduling a
// new one while a save is pending replaces the pending value. The last
// successful save always reflects the last mutation at the time it ran.
type writeBehind struct {
	p      Persister
	notify chan struct{}

	mu      sync.Mutex
	pending map[string]int
	dirty   bool

	scheduled atomic.Uint64
	saved     atomic.Uint64
	failed    atomic.Uint64
}

const saveTimeout = 3 * time.Second

func newWriteBehind(p Persister) *writeBehind {
	return &writeBehind{
		p:      p,
		notify: make(chan struct{}, 1),
	}
}

// Start runs the save loop until ctx is done.
func (w *writeBehind) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Schedule records items as the next snapshot to persist and wakes the
// loop. Never blocks.
func (w *writeBehind) Schedule(items map[string]int) {
	w.scheduled.Add(1)
	w.mu.Lock()
	w.pending = items
	w.dirty = true
	w.mu.Unlock()
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *writeBehind) loop(ctx context.Context) {
	t := time.NewTicker(250 * time.Millisecond)
	defer t.Stop()
	for {
		w.flushOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-w.notify:
		case <-t.C:
		}
	}
}

// flushOnce saves the pending snapshot, if any. A failed save is logged
// and dropped; the next mutation schedules a fresh snapshot anyway.
func (w *writeBehind) flushOnce(ctx context.Context) {
	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return
	}
	items := w.pending
	w.dirty = false
	w.mu.Unlock()

	sctx, cancel := context.WithTimeout(ctx, saveTimeout)
	err := w.p.Save(sctx, items)
	cancel()
	if err != nil {
		w.failed.Add(1)
		obs.Logger.Warn("cart_save_failed", "error", err, "entries", len(items))
		return
	}
	w.saved.Add(1)
}

// DrainUntil blocks until no snapshot is pending or ctx is done.
func (w *writeBehind) DrainUntil(ctx context.Context) bool {
	for {
		w.mu.Lock()
		dirty := w.dirty
		w.mu.Unlock()
		if !dirty {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Metrics returns counters for scheduled, saved, and failed snapshots.
func (w *writeBehind) Metrics() (scheduled, saved, failed uint64) {
	return w.scheduled.Load(), w.saved.Load(), w.failed.Load()
}
