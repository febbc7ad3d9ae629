package payment

import (
	"encoding/json"
	"net/http"

	"swiftmart/internal/api"
	"swiftmart/internal/middleware"
	"swiftmart/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler handles payment HTTP requests.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// CreateIntent handles POST /api/payments/intent requests.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	var req model.CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	resp, err := h.service.CreateIntent(r.Context(), user.ID, &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusCreated, resp)
}

// Finalize handles POST /api/payments/finalize requests.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req model.FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	resp, err := h.service.Finalize(r.Context(), &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, resp)
}

// ListByOrder handles GET /api/payments/order/{orderId} requests.
func (h *Handler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeValidation, "Invalid order ID.", h.logger)
		return
	}

	transactions, err := h.service.GetTransactions(r.Context(), orderID)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, transactions)
}
