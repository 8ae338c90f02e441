package httpapi

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmaulida/flashstore/internal/cart"
	"github.com/tmaulida/flashstore/internal/catalog"
	"github.com/tmaulida/flashstore/internal/checkout"
	"github.com/tmaulida/flashstore/internal/config"
	"github.com/tmaulida/flashstore/internal/gate"
	"github.com/tmaulida/flashstore/internal/model"
	"github.com/tmaulida/flashstore/internal/reconcile"
)

func setupApp(t *testing.T) (*App, http.Handler) {
	t.Helper()
	cat := catalog.New(catalog.Options{
		Rand:             rand.New(rand.NewSource(9)),
		DecayProbability: 0.3,
		SaleDurationMin:  5 * time.Minute,
		SaleDurationMax:  5 * time.Minute,
	})
	items := []model.CatalogItem{
		{ID: "p1", Name: "Limited Edition Smartwatch", Price: decimal.NewFromFloat(299.99), Stock: 10},
		{ID: "p2", Name: "Sneakers", Price: decimal.NewFromFloat(89.50), Stock: 5},
	}
	if err := cat.Load(items); err != nil {
		t.Fatalf("load: %v", err)
	}
	crt := cart.New(nil)
	eng := reconcile.New(cat, crt, nil)
	auth := gate.NewSimulatedAuth(true, true, 0)
	pay := gate.NewSimulatedPayment(1.0, 0, rand.New(rand.NewSource(9)))
	orch := checkout.New(cat, crt, auth, pay, nil)
	app := NewApp(config.Load(), cat, crt, eng, orch)
	return app, NewRouter(app)
}

func doJSON(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Buffer
	if body == "" {
		rd = bytes.NewBuffer(nil)
	} else {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestListProducts(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/products", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var views []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 products, got %d", len(views))
	}
	if views[0]["id"] != "p1" || views[0]["price"] != "299.99" {
		t.Fatalf("unexpected first product: %v", views[0])
	}
	if views[0]["sale_active"] != true {
		t.Fatalf("expected active sale")
	}
}

func TestGetProductNotFound(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/products/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAddToCartAndTotal(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"p1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out reconcile.Outcome
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Code != reconcile.CodeAdded {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	rr = doJSON(t, mux, http.MethodGet, "/cart/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var cv struct {
		Items []map[string]any `json:"items"`
		Total string           `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &cv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cv.Items) != 1 || cv.Total != "299.99" {
		t.Fatalf("unexpected cart: %+v", cv)
	}
}

func TestAddToCartValidation(t *testing.T) {
	_, mux := setupApp(t)
	if rr := doJSON(t, mux, http.MethodPost, "/cart/items", `{}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing product_id: expected 400, got %d", rr.Code)
	}
	if rr := doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"ghost"}`); rr.Code != http.StatusOK {
		t.Fatalf("unknown product is advisory: expected 200, got %d", rr.Code)
	}
}

func TestUpdateClampsQuantity(t *testing.T) {
	app, mux := setupApp(t)
	app.Cart.Add("p2")
	rr := doJSON(t, mux, http.MethodPut, "/cart/items/p2", `{"quantity":"10"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out reconcile.Outcome
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Code != reconcile.CodeClamped || !strings.Contains(out.Message, "5") {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if got := app.Cart.Quantity("p2"); got != 5 {
		t.Fatalf("expected clamp to 5, got %d", got)
	}
}

func TestRemoveCartItem(t *testing.T) {
	app, mux := setupApp(t)
	app.Cart.Add("p1")
	rr := doJSON(t, mux, http.MethodDelete, "/cart/items/p1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if app.Cart.Len() != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPost, "/checkout", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCheckoutSettles(t *testing.T) {
	app, mux := setupApp(t)
	app.Cart.SetQuantity("p1", 2)
	rr := doJSON(t, mux, http.MethodPost, "/checkout", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp checkoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != string(checkout.StateSettled) || resp.Total != "599.98" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if app.Cart.Len() != 0 {
		t.Fatalf("cart must be cleared")
	}
	p, _ := app.Catalog.Get("p1")
	if p.CurrentStock != 8 {
		t.Fatalf("expected committed stock 8, got %d", p.CurrentStock)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	_, mux := setupApp(t)
	if rr := doJSON(t, mux, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}
	rr := doJSON(t, mux, http.MethodGet, "/debug/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rr.Code)
	}
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"products", "active_sales", "cart_entries", "checkout_state"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing %s", k)
		}
	}
}

func TestRequestIDPropagated(t *testing.T) {
	_, mux := setupApp(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-Id"); got != "fixed-id" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}

func TestOpenAPIServed(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/openapi.yaml", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("openapi:")) {
		t.Fatalf("expected openapi content")
	}
}
