// Package model defines domain types shared across the storefront core.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is the upstream shape of a product as delivered by the
// catalog source, before any sale state is attached.
type CatalogItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Image string          `json:"image"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Product is the live sale state of one catalog item.
//
// CurrentStock stays within [0, InitialStock] at all times. Remaining is
// the displayed time left on the sale; it is refreshed by the countdown
// ticker and never influences stock.
type Product struct {
	ID           string
	Name         string
	Image        string
	Price        decimal.Decimal
	InitialStock int
	CurrentStock int
	SaleEndTime  time.Time
	Remaining    time.Duration
}

// SaleActive reports whether the sale window is still open at now.
func (p Product) SaleActive(now time.Time) bool {
	return now.Before(p.SaleEndTime)
}
