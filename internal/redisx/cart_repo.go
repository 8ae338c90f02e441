package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CartRepo persists the cart as a single JSON blob. It satisfies
// cart.Persister; callers treat every error as advisory.
type CartRepo struct {
	rdb *redis.Client
}

// NewCartRepo wraps the given client.
func NewCartRepo(rdb *redis.Client) *CartRepo {
	return &CartRepo{rdb: rdb}
}

// Save overwrites the stored cart snapshot.
func (r *CartRepo) Save(ctx context.Context, items map[string]int) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.rdb.Set(ctx, KeyCart, data, TTLCart).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Load returns the stored snapshot. A missing key is an empty cart, not
// an error.
func (r *CartRepo) Load(ctx context.Context) (map[string]int, error) {
	data, err := r.rdb.Get(ctx, KeyCart).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	items := map[string]int{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}
