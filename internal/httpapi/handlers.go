package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tmaulida/flashstore/internal/checkout"
	"github.com/tmaulida/flashstore/internal/model"
	"github.com/tmaulida/flashstore/internal/obs"
)

// productView is the wire shape of a product listing entry.
type productView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	Price        string `json:"price"`
	InitialStock int    `json:"initial_stock"`
	CurrentStock int    `json:"current_stock"`
	SaleEndTime  string `json:"sale_end_time"`
	RemainingMS  int64  `json:"remaining_ms"`
	SaleActive   bool   `json:"sale_active"`
}

func toProductView(p model.Product, now time.Time) productView {
	return productView{
		ID:           p.ID,
		Name:         p.Name,
		Image:        p.Image,
		Price:        p.Price.StringFixed(2),
		InitialStock: p.InitialStock,
		CurrentStock: p.CurrentStock,
		SaleEndTime:  p.SaleEndTime.UTC().Format(time.RFC3339),
		RemainingMS:  p.Remaining.Milliseconds(),
		SaleActive:   p.SaleActive(now),
	}
}

type cartLineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type cartView struct {
	Items []cartLineView `json:"items"`
	Total string         `json:"total"`
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	products := a.Catalog.List()
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p, now))
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := a.Catalog.Get(id)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, toProductView(p, time.Now()))
}

func (a *App) getCartHandler(w http.ResponseWriter, r *http.Request) {
	lines := a.Engine.Lines()
	views := make([]cartLineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, cartLineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, cartView{Items: views, Total: a.Engine.Total().StringFixed(2)})
}

func (a *App) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"product_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if body.ProductID == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "product_id is required")
		return
	}
	out := a.Engine.TryAdd(body.ProductID)
	obs.Logger.Info("cart_add", "product_id", body.ProductID, "code", string(out.Code))
	writeJSON(w, http.StatusOK, out)
}

func (a *App) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Quantity string `json:"quantity"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	out := a.Engine.TryUpdate(id, body.Quantity)
	obs.Logger.Info("cart_update", "product_id", id, "raw_quantity", body.Quantity, "code", string(out.Code))
	writeJSON(w, http.StatusOK, out)
}

func (a *App) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out := a.Engine.Remove(id)
	writeJSON(w, http.StatusOK, out)
}

type checkoutResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Total     string `json:"total"`
	Message   string `json:"message"`
}

func (a *App) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	res := a.Orchestrator.Checkout(r.Context())
	resp := checkoutResponse{
		SessionID: res.SessionID,
		State:     string(res.State),
		Total:     res.Total.StringFixed(2),
		Message:   res.Message,
	}
	switch {
	case res.Err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(res.Err, checkout.ErrCartEmpty):
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(res.Err, checkout.ErrAuthUnavailable), errors.Is(res.Err, checkout.ErrAuthFailed):
		writeJSON(w, http.StatusUnauthorized, resp)
	case errors.Is(res.Err, checkout.ErrPaymentDeclined):
		writeJSON(w, http.StatusPaymentRequired, resp)
	default:
		writeJSON(w, http.StatusConflict, resp)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	scheduled, saved, failed := a.Cart.SaveMetrics()
	active := 0
	now := time.Now()
	for _, p := range a.Catalog.List() {
		if p.SaleActive(now) && p.CurrentStock > 0 {
			active++
		}
	}
	m := map[string]any{
		"products":             a.Catalog.Len(),
		"active_sales":         active,
		"cart_entries":         a.Cart.Len(),
		"cart_saves_scheduled": scheduled,
		"cart_saves_ok":        saved,
		"cart_saves_failed":    failed,
		"checkout_state":       string(a.Orchestrator.State()),
		"uptime_sec":           time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func decodeJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return errors.New("expected application/json")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
