package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"swiftmart/internal/model"

	"github.com/rs/zerolog"
)

// InventoryClient talks to the inventory service to deduct stock when an
// order is placed.
type InventoryClient struct {
	baseClient
	internalAPIKey string
	logger         zerolog.Logger
}

// NewInventoryClient creates an inventory service client.
func NewInventoryClient(baseURL string, timeout time.Duration, internalAPIKey string, logger zerolog.Logger) *InventoryClient {
	return &InventoryClient{
		baseClient:     newBaseClient(baseURL, timeout),
		internalAPIKey: internalAPIKey,
		logger:         logger.With().Str("client", "inventory").Logger(),
	}
}

// DeductStock deducts the given lines atomically on the inventory side.
// Insufficient stock surfaces as an InsufficientStockError; the failing
// product IDs are logged.
func (c *InventoryClient) DeductStock(ctx context.Context, req model.DeductStockRequest) error {
	resp, raw, err := c.doJSON(ctx, http.MethodPost, "/inventory/internal/deduct", internalHeader(c.internalAPIKey), req, nil)
	if err != nil {
		return model.UpstreamServiceError("inventory")
	}

	if resp.StatusCode == http.StatusConflict {
		var body model.DeductStockResponse
		if err := json.Unmarshal(raw, &body); err == nil && len(body.OutOfStockItems) > 0 {
			c.logger.Warn().Strs("out_of_stock", body.OutOfStockItems).Msg("stock deduction rejected")
		}
		return model.InsufficientStockError(errorMessage(raw, "Insufficient stock."))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error().Int("status", resp.StatusCode).Msg("inventory service returned error")
		return model.UpstreamServiceError("inventory")
	}

	return nil
}
