package catalog

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmaulida/flashstore/internal/model"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func item(id, name string, stock int) model.CatalogItem {
	return model.CatalogItem{ID: id, Name: name, Price: decimal.NewFromFloat(9.99), Stock: stock}
}

func newTestStore(clk *fakeClock, decayP float64) *Store {
	return New(Options{
		Now:              clk.Now,
		Rand:             rand.New(rand.NewSource(42)),
		DecayProbability: decayP,
		SaleDurationMin:  time.Minute,
		SaleDurationMax:  10 * time.Minute,
	})
}

func TestLoadInitialState(t *testing.T) {
	clk := newFakeClock()
	s := newTestStore(clk, 0.3)
	if err := s.Load([]model.CatalogItem{item("p1", "Watch", 10), item("p2", "Shoes", 4)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	p, ok := s.Get("p1")
	if !ok {
		t.Fatalf("p1 not found")
	}
	if p.CurrentStock != 10 || p.InitialStock != 10 {
		t.Fatalf("unexpected stock: %+v", p)
	}
	end := p.SaleEndTime.Sub(clk.Now())
	if end < time.Minute || end > 10*time.Minute {
		t.Fatalf("sale window out of bounds: %v", end)
	}
	if p.Remaining != end {
		t.Fatalf("remaining %v != window %v", p.Remaining, end)
	}
	if got := s.Len(); got != 2 {
		t.Fatalf("expected 2 products, got %d", got)
	}
}

func TestLoadRejectsMalformedItems(t *testing.T) {
	clk := newFakeClock()
	cases := []struct {
		name  string
		items []model.CatalogItem
	}{
		{"missing id", []model.CatalogItem{{Name: "x", Stock: 1}}},
		{"duplicate id", []model.CatalogItem{item("p1", "a", 1), item("p1", "b", 1)}},
		{"negative stock", []model.CatalogItem{item("p1", "a", -1)}},
		{"negative price", []model.CatalogItem{{ID: "p1", Name: "a", Price: decimal.NewFromFloat(-0.01), Stock: 1}}},
	}
	for _, tc := range cases {
		s := newTestStore(clk, 0.3)
		if err := s.Load(tc.items); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if s.Len() != 0 {
			t.Fatalf("%s: store must stay empty on failed load", tc.name)
		}
	}
}

func TestDecayTickKeepsStockInBounds(t *testing.T) {
	clk := newFakeClock()
	s := newTestStore(clk, 0.5)
	if err := s.Load([]model.CatalogItem{item("p1", "a", 5), item("p2", "b", 3)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 0; i < 200; i++ {
		s.DecayTick()
		for _, p := range s.List() {
			if p.CurrentStock < 0 || p.CurrentStock > p.InitialStock {
				t.Fatalf("stock out of bounds: %+v", p)
			}
		}
	}
}

func TestDecayTickForceExpiresExhaustedSale(t *testing.T) {
	clk := newFakeClock()
	s := newTestStore(clk, 1.0)
	if err := s.Load([]model.CatalogItem{item("p1", "a", 1)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	s.DecayTick() // 1 -> 0, sale still open
	p, _ := s.Get("p1")
	if p.CurrentStock != 0 {
		t.Fatalf("expected 0 stock, got %d", p.CurrentStock)
	}
	if !p.SaleActive(clk.Now()) {
		t.Fatalf("sale must still be active right after depletion")
	}
	s.DecayTick() // exhausted while active: force-expire
	p, _ = s.Get("p1")
	if p.SaleActive(clk.Now()) {
		t.Fatalf("expected forced expiry, end=%v now=%v", p.SaleEndTime, clk.Now())
	}
	if p.Remaining != 0 {
		t.Fatalf("expected zero remaining, got %v", p.Remaining)
	}
}

func TestDecayTickIgnoresEndedSales(t *testing.T) {
	clk := newFakeClock()
	s := newTestStore(clk, 1.0)
	if err := s.Load([]model.CatalogItem{item("p1", "a", 5)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	clk.Advance(11 * time.Minute)
	s.DecayTick()
	p, _ := s.Get("p1")
	if p.CurrentStock != 5 {
		t.Fatalf("ended sale must not decay, got %d", p.CurrentStock)
	}
}

func TestRefreshCountdownFloorsAtZero(t *testing.T) {
	clk := newFakeClock()
	s := newTestStore(clk, 0.3)
	if err := s.Load([]model.CatalogItem{item("p1", "a", 5)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	before, _ := s.Get("p1")
	clk.Advance(30 * time.Second)
	s.RefreshCountdown("p1")
	after, _ := s.Get("p1")
	if after.Remaining != before.Remaining-30*time.Second {
		t.Fatalf("expected remaining to shrink by 30s: before=%v after=%v", before.Remaining, after.Remaining)
	}
	if after.CurrentStock != before.CurrentStock {
		t.Fatalf("countdown must not touch stock")
	}
	clk.Advance(time.Hour)
	s.RefreshCountdown("p1")
	after, _ = s.Get("p1")
	if after.Remaining != 0 {
		t.Fatalf("expected floor at zero, got %v", after.Remaining)
	}
}

func TestCommitSaleClampsAtZero(t *testing.T) {
	clk := newFakeClock()
	s := newTestStore(clk, 0.3)
	if err := s.Load([]model.CatalogItem{item("p1", "a", 3)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	s.CommitSale("p1", 2)
	p, _ := s.Get("p1")
	if p.CurrentStock != 1 {
		t.Fatalf("expected 1, got %d", p.CurrentStock)
	}
	s.CommitSale("p1", 5)
	p, _ = s.Get("p1")
	if p.CurrentStock != 0 {
		t.Fatalf("expected clamp at 0, got %d", p.CurrentStock)
	}
	s.CommitSale("missing", 1) // no-op
}

func TestListPreservesCatalogOrder(t *testing.T) {
	clk := newFakeClock()
	s := newTestStore(clk, 0.3)
	items := []model.CatalogItem{item("c", "c", 1), item("a", "a", 1), item("b", "b", 1)}
	if err := s.Load(items); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := s.List()
	for i, it := range items {
		if got[i].ID != it.ID {
			t.Fatalf("order mismatch at %d: %s != %s", i, got[i].ID, it.ID)
		}
	}
}
