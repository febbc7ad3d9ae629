package order

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

// Handler handles order and cart HTTP requests.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

// NewHandler creates a new order handler.
func NewHandler(service Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// GetCart handles GET /api/orders/cart requests.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), user.ID)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/orders/cart/items requests.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	var req model.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	cart, err := h.service.AddItemToCart(r.Context(), user.ID, &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /api/orders/cart/item requests.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	var req model.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	cart, err := h.service.UpdateCartItemQuantity(r.Context(), user.ID, &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/orders/cart/item/{productId} requests.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	cart, err := h.service.RemoveItemFromCart(r.Context(), user.ID, chi.URLParam(r, "productId"))
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, cart)
}

// ApplyCoupon handles POST /api/orders/cart/coupon requests.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	var req model.ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	cart, err := h.service.ApplyCouponToCart(r.Context(), user.ID, user.Token, req.Code)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, cart)
}

// CreatePending handles POST /api/orders/create-pending requests.
func (h *Handler) CreatePending(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	var req model.CreatePendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	order, err := h.service.CreatePendingOrder(r.Context(), user.ID, &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, order)
}

// Place handles POST /api/orders/place requests.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	var req model.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), user.ID, &req)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Order placed successfully.",
		"order":   order,
	})
}

// History handles GET /api/orders requests.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	orders, err := h.service.GetOrderHistory(r.Context(), user.ID)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, orders)
}

// Details handles GET /api/orders/{orderId} requests.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required.", h.logger)
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeValidation, "Invalid order ID.", h.logger)
		return
	}

	order, err := h.service.GetOrderDetails(r.Context(), user.ID, orderID)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, order)
}

// AdminList handles GET /api/orders/admin/all requests.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetAllOrders(r.Context())
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PUT /api/orders/admin/{orderId}/status and
// PUT /api/orders/internal/status/{orderId} requests. Both enforce the
// lifecycle graph.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeValidation, "Invalid order ID.", h.logger)
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, order)
}

// BatchCandidates handles GET /api/orders/pending/batch requests.
func (h *Handler) BatchCandidates(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetPendingOrdersForBatching(r.Context())
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, orders)
}

// BatchRoute handles POST /api/orders/batch/route requests.
func (h *Handler) BatchRoute(w http.ResponseWriter, r *http.Request) {
	var req model.BatchRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	batches, err := h.service.BatchOrdersForRoute(r.Context(), req.MaxBatchSize)
	if err != nil {
		api.WriteDomainError(w, err, h.logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, batches)
}
