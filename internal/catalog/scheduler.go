package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/tmaulida/flashstore/internal/obs"
)

// Scheduler owns the periodic drivers that mutate the Store: one coarse
// ticker for stock decay and one fine ticker per product for the
// displayed countdown. The two rates are deliberately independent so
// the visible countdown refreshes smoothly regardless of how often the
// decay randomness fires.
type Scheduler struct {
	st             *Store
	decayEvery     time.Duration
	countdownEvery time.Duration

	mu         sync.Mutex
	cancel     context.CancelFunc
	countdowns map[string]context.CancelFunc
	wg         sync.WaitGroup
}

// NewScheduler constructs a Scheduler for the given store and tick
// periods.
func NewScheduler(st *Store, decayEvery, countdownEvery time.Duration) *Scheduler {
	if decayEvery <= 0 {
		decayEvery = 5 * time.Second
	}
	if countdownEvery <= 0 {
		countdownEvery = time.Second
	}
	return &Scheduler{
		st:             st,
		decayEvery:     decayEvery,
		countdownEvery: countdownEvery,
		countdowns:     make(map[string]context.CancelFunc),
	}
}

// Start launches the decay loop and one countdown loop per loaded
// product. Call after Store.Load.
func (s *Scheduler) Start(parent context.Context) {
	s.mu.Lock()
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.decayLoop(ctx)
	for _, p := range s.st.List() {
		s.watch(ctx, p.ID)
	}
	obs.Logger.Info("scheduler_started",
		"products", s.st.Len(),
		"decay_every", s.decayEvery.String(),
		"countdown_every", s.countdownEvery.String(),
	)
}

// Stop cancels every ticker and waits for the loops to exit, so the
// store stops mutating the moment Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	for _, c := range s.countdowns {
		c()
	}
	s.countdowns = make(map[string]context.CancelFunc)
	s.mu.Unlock()
	s.wg.Wait()
	obs.Logger.Info("scheduler_stopped")
}

// watch registers a per-product countdown handle keyed by product id.
func (s *Scheduler) watch(ctx context.Context, id string) {
	cctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.countdowns[id] = cancel
	s.mu.Unlock()
	s.wg.Add(1)
	go s.countdownLoop(cctx, id)
}

func (s *Scheduler) decayLoop(ctx context.Context) {
	defer s.wg.Done()
	t := time.NewTicker(s.decayEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.st.DecayTick()
		}
	}
}

func (s *Scheduler) countdownLoop(ctx context.Context, id string) {
	defer s.wg.Done()
	t := time.NewTicker(s.countdownEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.st.RefreshCountdown(id)
		}
	}
}
