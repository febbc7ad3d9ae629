package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"swiftmart/internal/cache"
	"swiftmart/internal/model"

	"github.com/rs/zerolog"
)

// ProductClient reads product details from the product catalogue service
// through a read-through cache. Cached entries expire by TTL only; a cache
// outage degrades to a direct fetch.
type ProductClient struct {
	baseClient
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewProductClient creates a product catalogue client.
func NewProductClient(baseURL string, timeout time.Duration, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *ProductClient {
	return &ProductClient{
		baseClient: newBaseClient(baseURL, timeout),
		cache:      c,
		ttl:        ttl,
		logger:     logger.With().Str("client", "product").Logger(),
	}
}

// GetProduct fetches one product by ID. Returns ErrProductNotFound when the
// catalogue has no such product.
func (c *ProductClient) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	key := c.cache.Key("product", productID)

	if cached, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("product_id", productID).Msg("cache read failed, fetching directly")
	} else if ok {
		var product model.Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			return &product, nil
		}
		c.logger.Warn().Str("product_id", productID).Msg("corrupt cache entry ignored")
	}

	var product model.Product
	resp, raw, err := c.doJSON(ctx, http.MethodGet, "/products/"+productID, nil, nil, &product)
	if err != nil {
		return nil, model.UpstreamServiceError("product catalog")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.ErrProductNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("product_id", productID).
			Str("body", errorMessage(raw, "")).
			Msg("product catalog returned error")
		return nil, model.UpstreamServiceError("product catalog")
	}

	if encoded, err := json.Marshal(product); err == nil {
		if err := c.cache.Set(ctx, key, string(encoded), c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("product_id", productID).Msg("cache write failed")
		}
	}

	return &product, nil
}
