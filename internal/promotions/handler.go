package promotions

import (
	"encoding/json"
	"net/http"

	"swiftmart/internal/api"
	"swiftmart/internal/model"

	"github.com/rs/zerolog"
)

// Handler handles coupon-related HTTP requests.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

// NewHandler creates a new promotions handler.
func NewHandler(service Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With().Str("handler", "promotions").Logger(),
	}
}

// Validate handles POST /api/promotions/validate requests.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req model.ValidateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	result, err := h.service.ValidateCoupon(r.Context(), &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, result)
}

// CreateCoupon handles POST /api/promotions/admin/coupons requests.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	coupon, err := h.service.CreateCoupon(r.Context(), &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Coupon created successfully.",
		"coupon":  coupon,
	})
}

// MarkUsed handles PUT /api/promotions/internal/use requests.
func (h *Handler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	var req model.MarkCouponUsedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	newCount, err := h.service.MarkCouponUsed(r.Context(), req.Code)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message":      "Coupon marked as used.",
		"newUsesCount": newCount,
	})
}
