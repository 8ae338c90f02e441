// Package httpapi exposes the HTTP surface of the storefront. It stands
// in for the visual layer: every handler is a thin translation onto the
// reconciliation engine and the checkout orchestrator.
package httpapi

import (
	"time"

	"github.com/tmaulida/flashstore/internal/cart"
	"github.com/tmaulida/flashstore/internal/catalog"
	"github.com/tmaulida/flashstore/internal/checkout"
	"github.com/tmaulida/flashstore/internal/config"
	"github.com/tmaulida/flashstore/internal/reconcile"
)

// App bundles the wired storefront components for the handlers.
type App struct {
	Cfg          config.Config
	Catalog      *catalog.Store
	Cart         *cart.Store
	Engine       *reconcile.Engine
	Orchestrator *checkout.Orchestrator

	started time.Time
}

// NewApp constructs the handler bundle.
func NewApp(cfg config.Config, cat *catalog.Store, crt *cart.Store, eng *reconcile.Engine, orch *checkout.Orchestrator) *App {
	return &App{
		Cfg:          cfg,
		Catalog:      cat,
		Cart:         crt,
		Engine:       eng,
		Orchestrator: orch,
		started:      time.Now(),
	}
}
