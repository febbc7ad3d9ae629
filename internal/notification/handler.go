package notification

import (
	"encoding/json"
	"net/http"

	"swiftmart/internal/api"
	"swiftmart/internal/middleware"
	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler exposes the WebSocket upgrade endpoint and the internal HTTP
// endpoints other services use to push notifications.
type Handler struct {
	registry  *Registry
	jwtSecret string
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
}

// NewHandler creates a notification handler bound to the given registry.
func NewHandler(registry *Registry, jwtSecret string, logger zerolog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With().Str("handler", "notification").Logger(),
	}
}

// ServeWS authenticates the token query parameter, upgrades the connection
// and registers it. The read loop only drains control frames; clients do not
// send application messages.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Missing token.", h.logger)
		return
	}

	user, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		api.WriteError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Invalid or expired token.", h.logger)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.registry.Register(user.ID, ws)

	go func() {
		defer h.registry.Unregister(user.ID, ws)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Send delivers a notification to a single user. Offline users are accepted
// and the message is dropped.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var notif model.Notification
	if err := json.NewDecoder(r.Body).Decode(&notif); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}
	if notif.UserID == uuid.Nil || notif.Type == "" {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeValidation, "userId and type are required.", h.logger)
		return
	}

	delivered := h.registry.Send(notif.UserID, notif)

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Notification accepted.",
		"delivered": delivered,
	})
}

// Broadcast delivers an order status announcement to every connected client.
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var broadcast model.StatusBroadcast
	if err := json.NewDecoder(r.Body).Decode(&broadcast); err != nil {
		api.WriteError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body.", h.logger)
		return
	}

	delivered := h.registry.Broadcast(broadcast)

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Broadcast accepted.",
		"delivered": delivered,
	})
}
