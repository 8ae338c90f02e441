// Package catalog holds the in-memory product catalog and the timer
// drivers that decay stock and refresh sale countdowns.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/tmaulida/flashstore/internal/model"
)

// Options configures a Store. Zero values fall back to production
// defaults; tests inject a fixed clock and a seeded random source.
type Options struct {
	Now              func() time.Time
	Rand             *rand.Rand
	DecayProbability float64
	SaleDurationMin  time.Duration
	SaleDurationMax  time.Duration
}

// Store is the authoritative in-memory product state. Every read and
// mutation takes the store lock, so timer ticks and user operations
// never observe each other mid-flight.
type Store struct {
	mu    sync.RWMutex
	m     map[string]*model.Product
	order []string

	now func() time.Time
	rng *rand.Rand

	decayProbability float64
	saleMin, saleMax time.Duration
}

// New creates an empty Store.
func New(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.DecayProbability <= 0 {
		opts.DecayProbability = 0.3
	}
	if opts.SaleDurationMin <= 0 {
		opts.SaleDurationMin = time.Minute
	}
	if opts.SaleDurationMax < opts.SaleDurationMin {
		opts.SaleDurationMax = 10 * time.Minute
	}
	return &Store{
		m:                make(map[string]*model.Product),
		now:              opts.Now,
		rng:              opts.Rand,
		decayProbability: opts.DecayProbability,
		saleMin:          opts.SaleDurationMin,
		saleMax:          opts.SaleDurationMax,
	}
}

// Load seeds the store from the upstream catalog. Each product starts
// with CurrentStock = InitialStock and a randomized sale window. Any
// malformed item fails the whole load; the store is left empty so the
// caller never proceeds on partial state.
func (s *Store) Load(items []model.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := make(map[string]*model.Product, len(items))
	order := make([]string, 0, len(items))
	now := s.now()
	for _, it := range items {
		if it.ID == "" {
			return errors.New("catalog item missing id")
		}
		if _, dup := m[it.ID]; dup {
			return fmt.Errorf("duplicate catalog id %q", it.ID)
		}
		if it.Stock < 0 {
			return fmt.Errorf("catalog item %q has negative stock", it.ID)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("catalog item %q has negative price", it.ID)
		}
		end := now.Add(s.saleDuration())
		m[it.ID] = &model.Product{
			ID:           it.ID,
			Name:         it.Name,
			Image:        it.Image,
			Price:        it.Price,
			InitialStock: it.Stock,
			CurrentStock: it.Stock,
			SaleEndTime:  end,
			Remaining:    end.Sub(now),
		}
		order = append(order, it.ID)
	}
	s.m = m
	s.order = order
	return nil
}

// saleDuration picks a whole number of minutes in [saleMin, saleMax].
// Callers hold the write lock.
func (s *Store) saleDuration() time.Duration {
	minM := int(s.saleMin / time.Minute)
	maxM := int(s.saleMax / time.Minute)
	if maxM <= minM {
		return s.saleMin
	}
	return time.Duration(minM+s.rng.Intn(maxM-minM+1)) * time.Minute
}

// DecayTick applies one round of stochastic stock depletion. Products
// whose sale has already ended are untouched. An active product that
// sits at zero stock has its sale end forced into the past, so it can
// never be sold again this session.
func (s *Store) DecayTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, id := range s.order {
		p := s.m[id]
		if !now.Before(p.SaleEndTime) {
			continue
		}
		if p.CurrentStock > 0 {
			if s.rng.Float64() < s.decayProbability {
				p.CurrentStock--
			}
			continue
		}
		p.SaleEndTime = now.Add(-time.Millisecond)
		p.Remaining = 0
	}
}

// RefreshCountdown recomputes the displayed remaining sale time for a
// single product, floored at zero. Stock is not touched.
func (s *Store) RefreshCountdown(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return
	}
	rem := p.SaleEndTime.Sub(s.now())
	if rem < 0 {
		rem = 0
	}
	p.Remaining = rem
}

// CommitSale decrements stock by qty, clamped at zero. The checkout
// orchestrator calls this only after revalidating the cart, so the
// clamp is a floor, not an availability check.
func (s *Store) CommitSale(id string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok || qty <= 0 {
		return
	}
	p.CurrentStock -= qty
	if p.CurrentStock < 0 {
		p.CurrentStock = 0
	}
}

// Get returns a copy of the product with the given id.
func (s *Store) Get(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, false
	}
	return *p, true
}

// List returns copies of all products in catalog order.
func (s *Store) List() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.m[id])
	}
	return out
}

// Len reports the number of loaded products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
