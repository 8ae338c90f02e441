package redisx

import "time"

const (
	// Saved cart blob: flashstore:cart -> {"<product_id>": qty, ...}
	KeyCart = "flashstore:cart"
)

var (
	// TTLCart bounds how long an abandoned cart survives.
	TTLCart = 7 * 24 * time.Hour
)
