package client

import (
	"context"
	"net/http"
	"time"

	"swiftmart/internal/model"

	"github.com/rs/zerolog"
)

// NotificationClient sends fire-and-forget notifications. Failures are
// logged and swallowed: a missed notification never fails the operation
// that triggered it.
type NotificationClient struct {
	baseClient
	internalAPIKey string
	logger         zerolog.Logger
}

// NewNotificationClient creates a notification service client.
func NewNotificationClient(baseURL string, timeout time.Duration, internalAPIKey string, logger zerolog.Logger) *NotificationClient {
	return &NotificationClient{
		baseClient:     newBaseClient(baseURL, timeout),
		internalAPIKey: internalAPIKey,
		logger:         logger.With().Str("client", "notification").Logger(),
	}
}

// Send routes a notification to a user if they are connected.
func (c *NotificationClient) Send(ctx context.Context, notification model.Notification) {
	resp, _, err := c.doJSON(ctx, http.MethodPost, "/notifications/send", internalHeader(c.internalAPIKey), notification, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", notification.UserID.String()).Msg("failed to send notification")
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("user_id", notification.UserID.String()).
			Msg("notification service rejected send")
	}
}

// Broadcast announces an order status change to the order's owner.
func (c *NotificationClient) Broadcast(ctx context.Context, broadcast model.StatusBroadcast) {
	resp, _, err := c.doJSON(ctx, http.MethodPost, "/notifications/broadcast", internalHeader(c.internalAPIKey), broadcast, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("order_id", broadcast.OrderID.String()).Msg("failed to broadcast status update")
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("order_id", broadcast.OrderID.String()).
			Msg("notification service rejected broadcast")
	}
}
