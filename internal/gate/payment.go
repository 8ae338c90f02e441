package gate

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmaulida/flashstore/internal/checkout"
	"github.com/tmaulida/flashstore/internal/obs"
)

// SimulatedPayment settles after a fixed delay and succeeds with a
// configurable probability. The random source is injectable so tests
// can pin the outcome.
type SimulatedPayment struct {
	successRate float64
	delay       time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedPayment builds a SimulatedPayment. rng may be nil for a
// time-seeded source.
func NewSimulatedPayment(successRate float64, delay time.Duration, rng *rand.Rand) *SimulatedPayment {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SimulatedPayment{successRate: successRate, delay: delay, rng: rng}
}

// Pay suspends for the processing delay and then settles or declines.
func (g *SimulatedPayment) Pay(ctx context.Context, amount decimal.Decimal) error {
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.delay):
		}
	}
	g.mu.Lock()
	ok := g.rng.Float64() < g.successRate
	g.mu.Unlock()
	if !ok {
		return checkout.ErrPaymentDeclined
	}
	obs.Logger.Info("payment_settled", "amount", amount.StringFixed(2))
	return nil
}
