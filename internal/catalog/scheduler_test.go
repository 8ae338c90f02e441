package catalog

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/tmaulida/flashstore/internal/model"
)

func TestSchedulerDrivesDecay(t *testing.T) {
	s := New(Options{
		Rand:             rand.New(rand.NewSource(7)),
		DecayProbability: 1.0,
		SaleDurationMin:  time.Minute,
		SaleDurationMax:  time.Minute,
	})
	if err := s.Load([]model.CatalogItem{item("p1", "a", 100)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	sched := NewScheduler(s, 5*time.Millisecond, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p, _ := s.Get("p1")
		if p.CurrentStock < 100 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("decay ticks never fired")
}

func TestSchedulerStopHaltsMutation(t *testing.T) {
	s := New(Options{
		Rand:             rand.New(rand.NewSource(7)),
		DecayProbability: 1.0,
		SaleDurationMin:  time.Minute,
		SaleDurationMax:  time.Minute,
	})
	if err := s.Load([]model.CatalogItem{item("p1", "a", 1000)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	sched := NewScheduler(s, time.Millisecond, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	sched.Stop()

	p1, _ := s.Get("p1")
	time.Sleep(30 * time.Millisecond)
	p2, _ := s.Get("p1")
	if p1.CurrentStock != p2.CurrentStock || !p1.SaleEndTime.Equal(p2.SaleEndTime) {
		t.Fatalf("store mutated after Stop: %+v vs %+v", p1, p2)
	}
}

func TestSchedulerStopIsIdempotentWithoutStart(t *testing.T) {
	s := New(Options{})
	sched := NewScheduler(s, 0, 0)
	sched.Stop()
}
