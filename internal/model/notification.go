package model

import "github.com/google/uuid"

// Notification is a message routed to a connected user. Delivery is at most
// once: if the user is not connected the message is accepted and dropped.
type Notification struct {
	UserID  uuid.UUID      `json:"userId"`
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Notification types emitted by the order service.
const (
	NotificationOrderPending      = "order_pending"
	NotificationOrderPlaced       = "order_placed"
	NotificationOrderStatusUpdate = "order_status_update"
)

// StatusBroadcast announces an order status change over the WebSocket
// channel of the order's owner.
type StatusBroadcast struct {
	UserID    uuid.UUID   `json:"userId"`
	OrderID   uuid.UUID   `json:"orderId"`
	NewStatus OrderStatus `json:"newStatus"`
}
