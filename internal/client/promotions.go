package client

import (
	"context"
	"net/http"
	"time"

	"swiftmart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PromotionsClient talks to the promotions service for coupon validation and
// redemption.
type PromotionsClient struct {
	baseClient
	internalAPIKey string
	logger         zerolog.Logger
}

// NewPromotionsClient creates a promotions service client.
func NewPromotionsClient(baseURL string, timeout time.Duration, internalAPIKey string, logger zerolog.Logger) *PromotionsClient {
	return &PromotionsClient{
		baseClient:     newBaseClient(baseURL, timeout),
		internalAPIKey: internalAPIKey,
		logger:         logger.With().Str("client", "promotions").Logger(),
	}
}

// ValidateCoupon validates a coupon against the current cart subtotal,
// forwarding the end user's bearer token. A rejected coupon surfaces as a
// CouponInvalidError carrying the promotion service's reason.
func (c *PromotionsClient) ValidateCoupon(ctx context.Context, token, code string, orderTotal decimal.Decimal, itemIDs []string) (*model.ValidateCouponResponse, error) {
	req := model.ValidateCouponRequest{
		Code:       code,
		OrderTotal: orderTotal,
		ItemIDs:    itemIDs,
	}

	var result model.ValidateCouponResponse
	resp, raw, err := c.doJSON(ctx, http.MethodPost, "/promotions/validate", bearerHeader(token), req, &result)
	if err != nil {
		return nil, model.UpstreamServiceError("promotions")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.ErrCouponNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return nil, model.CouponInvalidError(errorMessage(raw, "Coupon is not valid."))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error().Int("status", resp.StatusCode).Str("code", code).Msg("promotions service returned error")
		return nil, model.UpstreamServiceError("promotions")
	}

	return &result, nil
}

// MarkCouponUsed records a coupon redemption after a completed order.
func (c *PromotionsClient) MarkCouponUsed(ctx context.Context, code string) error {
	req := model.MarkCouponUsedRequest{Code: code}

	resp, raw, err := c.doJSON(ctx, http.MethodPut, "/promotions/internal/use", internalHeader(c.internalAPIKey), req, nil)
	if err != nil {
		return model.UpstreamServiceError("promotions")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.ErrCouponNotFound
	case resp.StatusCode == http.StatusConflict:
		return model.ErrCouponExhausted
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("code", code).
			Str("body", errorMessage(raw, "")).
			Msg("failed to mark coupon as used")
		return model.UpstreamServiceError("promotions")
	}

	return nil
}
