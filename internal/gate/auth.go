// Package gate provides simulated implementations of the credential and
// payment collaborators. Real platform-backed gates live outside this
// repository; the checkout orchestrator only sees the interfaces.
package gate

import (
	"context"
	"time"

	"github.com/tmaulida/flashstore/internal/checkout"
)

// SimulatedAuth stands in for a biometric credential gate. Availability
// mirrors whether the device has an enrolled credential; approve is the
// simulated user decision after the prompt delay.
type SimulatedAuth struct {
	available bool
	approve   bool
	delay     time.Duration
}

// NewSimulatedAuth builds a SimulatedAuth with the given behavior.
func NewSimulatedAuth(available, approve bool, delay time.Duration) *SimulatedAuth {
	return &SimulatedAuth{available: available, approve: approve, delay: delay}
}

// Authenticate reports the configured outcome. A missing capability is
// detected before the prompt, so it returns without suspending.
func (a *SimulatedAuth) Authenticate(ctx context.Context) error {
	if !a.available {
		return checkout.ErrAuthUnavailable
	}
	if a.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.delay):
		}
	}
	if !a.approve {
		return checkout.ErrAuthFailed
	}
	return nil
}
