// Package reconcile binds the cart to the live catalog: it owns the
// rules for adding, updating, and pricing cart entries against stock
// that mutates underneath them.
package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmaulida/flashstore/internal/cart"
	"github.com/tmaulida/flashstore/internal/catalog"
	"github.com/tmaulida/flashstore/internal/model"
)

// Code classifies the outcome of a cart interaction.
type Code string

const (
	CodeAdded           Code = "added"
	CodeUpdated         Code = "updated"
	CodeRemoved         Code = "removed"
	CodeClamped         Code = "clamped"
	CodeUnavailable     Code = "unavailable"
	CodeStockLimit      Code = "stock_limit"
	CodeInvalidQuantity Code = "invalid_quantity"
)

// Outcome is the advisory result of a cart interaction. Failures here
// are user messages, never control-flow errors: the stores are always
// left in a consistent state.
type Outcome struct {
	Code    Code   `json:"code"`
	Message string `json:"message,omitempty"`
}

// Line is one cart entry joined with its live catalog state, for
// display.
type Line struct {
	Product  model.Product
	Quantity int
	Subtotal decimal.Decimal
}

// Engine applies the reconciliation rules. Availability is always
// judged against the clock at call time, never a cached instant,
// because the catalog keeps ticking between interactions.
type Engine struct {
	catalog *catalog.Store
	cart    *cart.Store
	now     func() time.Time
}

// New creates an Engine. now may be nil for the wall clock.
func New(cat *catalog.Store, crt *cart.Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{catalog: cat, cart: crt, now: now}
}

// TryAdd attempts to add one unit of the product to the cart. Missing,
// depleted, or expired products fail softly; quantities never climb
// past the product's current stock.
func (e *Engine) TryAdd(id string) Outcome {
	p, ok := e.catalog.Get(id)
	if !ok || p.CurrentStock <= 0 || !p.SaleActive(e.now()) {
		return Outcome{CodeUnavailable, "This item is currently unavailable."}
	}
	if e.cart.Quantity(id) >= p.CurrentStock {
		return Outcome{CodeStockLimit, "Stock limit reached"}
	}
	e.cart.Add(id)
	return Outcome{CodeAdded, fmt.Sprintf("%s added to cart.", p.Name)}
}

// TryUpdate sets the quantity for id from raw user input. Unparseable
// or sub-one quantities remove the entry; quantities above current
// stock are clamped to it.
func (e *Engine) TryUpdate(id, raw string) Outcome {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		e.cart.Remove(id)
		return Outcome{CodeInvalidQuantity, "Invalid quantity. Removed."}
	}
	p, ok := e.catalog.Get(id)
	if !ok {
		e.cart.Remove(id)
		return Outcome{CodeUnavailable, "This item is currently unavailable."}
	}
	if qty > p.CurrentStock {
		e.cart.SetQuantity(id, p.CurrentStock)
		return Outcome{CodeClamped, fmt.Sprintf("You can only add up to %d.", p.CurrentStock)}
	}
	e.cart.SetQuantity(id, qty)
	return Outcome{Code: CodeUpdated}
}

// Remove drops the entry unconditionally.
func (e *Engine) Remove(id string) Outcome {
	e.cart.Remove(id)
	return Outcome{CodeRemoved, "Item removed."}
}

// Total sums price times quantity over cart entries that still resolve
// in the catalog. Stale ids contribute zero rather than failing: a
// restored cart may outlive its products.
func (e *Engine) Total() decimal.Decimal {
	total := decimal.Zero
	for id, qty := range e.cart.Snapshot() {
		p, ok := e.catalog.Get(id)
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// Lines joins the cart against the catalog for display, in catalog
// order. Entries whose product no longer resolves are skipped.
func (e *Engine) Lines() []Line {
	snap := e.cart.Snapshot()
	out := make([]Line, 0, len(snap))
	for _, p := range e.catalog.List() {
		qty, ok := snap[p.ID]
		if !ok {
			continue
		}
		out = append(out, Line{
			Product:  p,
			Quantity: qty,
			Subtotal: p.Price.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return out
}
