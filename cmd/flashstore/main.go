// Package main boots the flash-sale storefront.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tmaulida/flashstore/internal/cart"
	"github.com/tmaulida/flashstore/internal/catalog"
	"github.com/tmaulida/flashstore/internal/checkout"
	"github.com/tmaulida/flashstore/internal/config"
	"github.com/tmaulida/flashstore/internal/gate"
	"github.com/tmaulida/flashstore/internal/httpapi"
	"github.com/tmaulida/flashstore/internal/obs"
	"github.com/tmaulida/flashstore/internal/reconcile"
	"github.com/tmaulida/flashstore/internal/redisx"
	"github.com/tmaulida/flashstore/internal/upstream"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("storefront_starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	carts := cart.New(redisx.NewCartRepo(rdb))
	carts.Start(ctx)

	cat := catalog.New(catalog.Options{
		DecayProbability: cfg.DecayProbability,
		SaleDurationMin:  cfg.SaleDurationMin,
		SaleDurationMax:  cfg.SaleDurationMax,
	})

	// Catalog load failure is the one unrecoverable startup error: the
	// storefront never opens partially loaded.
	client := upstream.NewCatalogClient(cfg.CatalogURL, cfg.CatalogTimeout)
	fetchCtx, fetchCancel := context.WithTimeout(ctx, cfg.CatalogTimeout)
	items, err := client.FetchCatalog(fetchCtx)
	fetchCancel()
	if err != nil {
		obs.Logger.Error("catalog_load_failed", "error", err)
		os.Exit(1)
	}
	if err := cat.Load(items); err != nil {
		obs.Logger.Error("catalog_load_failed", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("catalog_loaded", "products", cat.Len())

	sched := catalog.NewScheduler(cat, cfg.StockTickInterval, cfg.CountdownTickInterval)
	sched.Start(ctx)

	// A restored cart may reference expired or depleted products; the
	// reconciliation engine revalidates it on first use.
	carts.RestoreSaved(ctx)

	engine := reconcile.New(cat, carts, nil)
	auth := gate.NewSimulatedAuth(cfg.AuthAvailable, cfg.AuthApprove, cfg.AuthDelay)
	pay := gate.NewSimulatedPayment(cfg.PaymentSuccessRate, cfg.PaymentDelay, nil)
	orch := checkout.New(cat, carts, auth, pay, nil)

	app := httpapi.NewApp(cfg, cat, carts, engine, orch)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	// Stop the timers first so state stops mutating, then flush the last
	// cart snapshot before tearing the rest down.
	sched.Stop()

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := carts.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_cart_flush_timeout")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	cancel()
	if err := rdb.Close(); err != nil {
		obs.Logger.Warn("redis_close_error", "error", err)
	}
	obs.Logger.Info("storefront_stopped")
}
