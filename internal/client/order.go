package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderClient applies payment-driven status updates on the order service.
// Used by the payment outbox worker, so failures must be distinguishable:
// a retryable transport problem versus a definitive rejection.
type OrderClient struct {
	baseClient
	internalAPIKey string
	logger         zerolog.Logger
}

// NewOrderClient creates an order service client.
func NewOrderClient(baseURL string, timeout time.Duration, internalAPIKey string, logger zerolog.Logger) *OrderClient {
	return &OrderClient{
		baseClient:     newBaseClient(baseURL, timeout),
		internalAPIKey: internalAPIKey,
		logger:         logger.With().Str("client", "order").Logger(),
	}
}

// UpdateOrderStatus applies a status on the order service's internal
// endpoint. 4xx responses are permanent (retrying cannot help); anything
// else is retryable.
func (c *OrderClient) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
	req := model.UpdateStatusRequest{Status: status}
	path := "/orders/internal/status/" + orderID.String()

	resp, raw, err := c.doJSON(ctx, http.MethodPut, path, internalHeader(c.internalAPIKey), req, nil)
	if err != nil {
		return fmt.Errorf("order status update failed: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("order_id", orderID.String()).
			Str("body", errorMessage(raw, "")).
			Msg("order status update permanently rejected")
		return &PermanentError{Message: errorMessage(raw, "order status update rejected")}
	default:
		return fmt.Errorf("order service returned status %d", resp.StatusCode)
	}
}

// PermanentError marks a delivery failure that retrying cannot fix.
type PermanentError struct {
	Message string
}

func (e *PermanentError) Error() string {
	return e.Message
}
