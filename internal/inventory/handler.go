package inventory

import (
	"encoding/json"
	"net/http"

	"swiftmart/internal/api"
	"swiftmart/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler handles inventory HTTP requests.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

// NewHandler creates a new inventory handler.
func NewHandler(service Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With().Str("handler", "inventory").Logger(),
	}
}

// ListItems handles GET /api/inventory requests.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetItems(r.Context())
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, items)
}

// GetItem handles GET /api/inventory/{id} requests.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeValidation, "Invalid inventory item ID.", h.logger)
		return
	}

	item, movements, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"item":      item,
		"movements": movements,
	})
}

// CreateItem handles POST /api/inventory requests.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req model.CreateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	item, err := h.service.CreateItem(r.Context(), &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/inventory/{id} requests.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeValidation, "Invalid inventory item ID.", h.logger)
		return
	}

	var req model.CreateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), id, &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, item)
}

// AdjustStock handles POST /api/inventory/{id}/adjust requests.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeValidation, "Invalid inventory item ID.", h.logger)
		return
	}

	var req model.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	item, err := h.service.AdjustStock(r.Context(), id, &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Stock adjusted successfully.",
		"item":    item,
	})
}

// DeductStock handles POST /api/inventory/internal/deduct requests. Called
// service-to-service when an order is placed.
func (h *Handler) DeductStock(w http.ResponseWriter, r *http.Request) {
	var req model.DeductStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	outOfStock, err := h.service.DeductStock(r.Context(), &req)
	if err != nil {
		if len(outOfStock) > 0 {
			api.WriteJSON(w, http.StatusConflict, model.DeductStockResponse{
				Message:         "Insufficient stock for one or more items.",
				OutOfStockItems: outOfStock,
			})
			return
		}
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Stock deducted successfully.",
	})
}

// GetMovements handles GET /api/inventory/{id}/movements requests.
func (h *Handler) GetMovements(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeValidation, "Invalid inventory item ID.", h.logger)
		return
	}

	movements, err := h.service.GetMovements(r.Context(), id)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, movements)
}

// GetAlerts handles GET /api/inventory/alerts requests.
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetLowStockAlerts(r.Context())
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, items)
}
