// Package config provides runtime configuration values for the storefront.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP surface, the catalog
// timers, and the external collaborators.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	CatalogURL     string
	CatalogTimeout time.Duration

	RedisAddr string

	StockTickInterval     time.Duration
	CountdownTickInterval time.Duration
	DecayProbability      float64
	SaleDurationMin       time.Duration
	SaleDurationMax       time.Duration

	AuthAvailable bool
	AuthApprove   bool
	AuthDelay     time.Duration

	PaymentSuccessRate float64
	PaymentDelay       time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

func durenvmin(key string, defMin int) time.Duration {
	min := atoienv(key, defMin)
	return time.Duration(min) * time.Minute
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),

		CatalogURL:     getenv("CATALOG_URL", "https://686c0f4e14219674dcc71add.mockapi.io/products/products"),
		CatalogTimeout: durenvs("CATALOG_TIMEOUT", 10),

		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),

		StockTickInterval:     durenvms("STOCK_TICK_MS", 5000),
		CountdownTickInterval: durenvms("COUNTDOWN_TICK_MS", 1000),
		DecayProbability:      floatenv("DECAY_PROBABILITY", 0.3),
		SaleDurationMin:       durenvmin("SALE_MIN_MINUTES", 1),
		SaleDurationMax:       durenvmin("SALE_MAX_MINUTES", 10),

		AuthAvailable: boolenv("AUTH_AVAILABLE", true),
		AuthApprove:   boolenv("AUTH_APPROVE", true),
		AuthDelay:     durenvms("AUTH_DELAY_MS", 500),

		PaymentSuccessRate: floatenv("PAYMENT_SUCCESS_RATE", 0.8),
		PaymentDelay:       durenvms("PAYMENT_DELAY_MS", 2000),
	}
}
