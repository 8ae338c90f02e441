// Package redisx wires the Redis-backed cart persistence collaborator.
package redisx

import (
	"github.com/redis/go-redis/v9"
)

// New creates a Redis client for the given address.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
