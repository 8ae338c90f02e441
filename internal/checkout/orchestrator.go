// Package checkout sequences the terminal purchase flow: credential
// gate, cart revalidation, simulated payment, then stock commit.
package checkout

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmaulida/flashstore/internal/cart"
	"github.com/tmaulida/flashstore/internal/catalog"
	"github.com/tmaulida/flashstore/internal/obs"
)

// State is the phase of a checkout attempt.
type State string

const (
	StateIdle            State = "idle"
	StateAuthenticating  State = "authenticating"
	StateValidating      State = "validating"
	StateAwaitingPayment State = "awaiting_payment"
	StateSettled         State = "settled"
	StateAborted         State = "aborted"
)

// Authenticator is the device credential gate. Authenticate returns nil
// on approval, ErrAuthUnavailable when the device has no usable
// credential, and ErrAuthFailed on an active decline. It may suspend on
// hardware interaction.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// PaymentGate settles the given amount, suspending for as long as the
// underlying processor needs.
type PaymentGate interface {
	Pay(ctx context.Context, amount decimal.Decimal) error
}

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrAuthUnavailable = errors.New("authentication unavailable")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrPaymentDeclined = errors.New("payment declined")
)

// UnavailableItemsError reports cart entries that no longer survive
// validation against the live catalog.
type UnavailableItemsError struct {
	Names []string
}

func (e *UnavailableItemsError) Error() string {
	return "unavailable items: " + strings.Join(e.Names, ", ")
}

// Result describes one finished checkout attempt.
type Result struct {
	SessionID string          `json:"session_id"`
	State     State           `json:"state"`
	Total     decimal.Decimal `json:"total"`
	Message   string          `json:"message"`
	Err       error           `json:"-"`
}

// Orchestrator drives checkout attempts one at a time. Every abort path
// leaves both stores exactly as they were; stock and cart mutate only
// after the payment gate settles.
type Orchestrator struct {
	catalog *catalog.Store
	cart    *cart.Store
	auth    Authenticator
	payment PaymentGate
	now     func() time.Time

	mu sync.Mutex

	stateMu sync.RWMutex
	state   State
}

// New wires an Orchestrator. now may be nil for the wall clock.
func New(cat *catalog.Store, crt *cart.Store, auth Authenticator, pay PaymentGate, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		catalog: cat,
		cart:    crt,
		auth:    auth,
		payment: pay,
		now:     now,
		state:   StateIdle,
	}
}

// State returns the current checkout phase.
func (o *Orchestrator) State() State {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.stateMu.Lock()
	o.state = s
	o.stateMu.Unlock()
}

// Checkout runs one attempt end to end. The catalog keeps ticking while
// the gates suspend, which is exactly why validation happens after
// authentication and immediately before payment rather than trusting
// any earlier snapshot. The validated snapshot is the transaction: the
// charged total, the committed stock, and the quantities removed from
// the cart all derive from it, so cart edits made while payment
// suspends are neither charged nor lost. The orchestrator returns to
// idle afterwards regardless of outcome.
func (o *Orchestrator) Checkout(ctx context.Context) *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.setState(StateIdle)

	res := &Result{
		SessionID: uuid.NewString(),
		State:     StateIdle,
		Total:     decimal.Zero,
	}

	if o.cart.Len() == 0 {
		res.Err = ErrCartEmpty
		res.Message = "Cart is empty."
		return res
	}

	o.setState(StateAuthenticating)
	if err := o.auth.Authenticate(ctx); err != nil {
		return o.abort(res, err)
	}

	o.setState(StateValidating)
	snapshot := o.cart.Snapshot()
	if offending := o.invalidEntries(snapshot); len(offending) > 0 {
		return o.abort(res, &UnavailableItemsError{Names: offending})
	}
	res.Total = o.totalOf(snapshot)

	o.setState(StateAwaitingPayment)
	if err := o.payment.Pay(ctx, res.Total); err != nil {
		return o.abort(res, err)
	}

	for id, qty := range snapshot {
		o.catalog.CommitSale(id, qty)
		o.cart.Deduct(id, qty)
	}
	o.setState(StateSettled)
	res.State = StateSettled
	res.Message = "Order placed. Thank you!"
	obs.Logger.Info("checkout_settled",
		"session_id", res.SessionID,
		"entries", len(snapshot),
		"total", res.Total.StringFixed(2),
	)
	return res
}

// totalOf prices the validated snapshot. Every id resolves: the caller
// has just validated the same snapshot against the catalog.
func (o *Orchestrator) totalOf(snapshot map[string]int) decimal.Decimal {
	total := decimal.Zero
	for id, qty := range snapshot {
		p, ok := o.catalog.Get(id)
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// invalidEntries returns display names (falling back to ids) of cart
// entries that fail existence, stock, or sale-window checks right now.
func (o *Orchestrator) invalidEntries(snapshot map[string]int) []string {
	now := o.now()
	var names []string
	for id, qty := range snapshot {
		p, ok := o.catalog.Get(id)
		if !ok {
			names = append(names, id)
			continue
		}
		if p.CurrentStock < qty || !p.SaleActive(now) {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (o *Orchestrator) abort(res *Result, err error) *Result {
	o.setState(StateAborted)
	res.State = StateAborted
	res.Err = err
	res.Message = messageFor(err)
	obs.Logger.Warn("checkout_aborted", "session_id", res.SessionID, "reason", err.Error())
	return res
}

// messageFor maps abort reasons to the user-facing phrasing.
func messageFor(err error) string {
	var ua *UnavailableItemsError
	switch {
	case errors.Is(err, ErrAuthUnavailable):
		return "Setup required: enable biometrics in settings."
	case errors.Is(err, ErrAuthFailed):
		return "Authentication failed. Cannot proceed."
	case errors.Is(err, ErrPaymentDeclined):
		return "Payment failed."
	case errors.As(err, &ua):
		return "Unavailable: " + strings.Join(ua.Names, ", ")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "Checkout cancelled."
	}
	return err.Error()
}
