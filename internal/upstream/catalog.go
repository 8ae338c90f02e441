// Package upstream fetches the initial product catalog from the remote
// source. A failure here is fatal to startup: the storefront never
// opens on a partially loaded catalog.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tmaulida/flashstore/internal/model"
)

// CatalogClient fetches the product list once at startup.
type CatalogClient struct {
	url string
	hc  *http.Client
}

// NewCatalogClient builds a client for the given endpoint.
func NewCatalogClient(url string, timeout time.Duration) *CatalogClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CatalogClient{
		url: url,
		hc:  &http.Client{Timeout: timeout},
	}
}

// FetchCatalog retrieves and decodes the catalog items.
func (c *CatalogClient) FetchCatalog(ctx context.Context) ([]model.CatalogItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d", resp.StatusCode)
	}
	var items []model.CatalogItem
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return items, nil
}
