package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order. While an order is pending
// it doubles as the owning user's shopping cart.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPlaced     OrderStatus = "placed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the directed graph of allowed status transitions.
// cancelled is reachable from every non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPlaced, OrderStatusCancelled},
	OrderStatusPlaced:     {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order represents a customer's cart-then-purchase lifecycle.
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"userId" db:"user_id"`
	Status            OrderStatus     `json:"status" db:"status"`
	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CouponCode        *string         `json:"couponCode,omitempty" db:"coupon_code"`
	DiscountAmount    decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	FinalTotal        decimal.Decimal `json:"finalTotal" db:"final_total"`
	CouponRedeemed    bool            `json:"-" db:"coupon_redeemed"`
	ShippingAddressID *uuid.UUID      `json:"shippingAddressId,omitempty" db:"shipping_address_id"`
	PaymentMethod     *string         `json:"paymentMethod,omitempty" db:"payment_method"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line item owned exclusively by one order. Product name and
// unit price are snapshots taken at add-to-cart time so historical orders are
// unaffected by later catalogue edits.
type OrderItem struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID       string          `json:"productId" db:"product_id"`
	ProductName     string          `json:"name" db:"product_name"`
	ProductImageURL *string         `json:"imageUrl,omitempty" db:"product_image_url"`
	UnitPrice       decimal.Decimal `json:"price" db:"unit_price"`
	Quantity        int             `json:"quantity" db:"quantity"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// Subtotal returns unit price times quantity for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddItemRequest is the payload for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the payload for setting a cart item's quantity.
type UpdateItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ApplyCouponRequest is the payload for applying a coupon to the cart.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// CreatePendingRequest attaches a shipping address to the pending order.
type CreatePendingRequest struct {
	ShippingAddressID uuid.UUID `json:"shippingAddressId"`
}

// PlaceOrderRequest is the payload for placing the pending order.
type PlaceOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// UpdateStatusRequest is the payload for admin and internal status updates.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// CartResponse is the pending order presented as a shopping cart. An empty
// cart is represented by a zero OrderID and no items, not by an error.
type CartResponse struct {
	OrderID        uuid.UUID       `json:"orderId"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	CouponCode     *string         `json:"couponCode,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalTotal     decimal.Decimal `json:"finalTotal"`
}

// OrderResponse is an order with its items for API responses.
type OrderResponse struct {
	Order
	Items []OrderItem `json:"items"`
}

// RouteBatch groups placed orders headed to the same shipping address for
// downstream route optimisation.
type RouteBatch struct {
	ShippingAddressID uuid.UUID   `json:"shippingAddressId"`
	OrderIDs          []uuid.UUID `json:"orderIds"`
}

// BatchRouteRequest configures order batching for route optimisation.
type BatchRouteRequest struct {
	MaxBatchSize int `json:"maxBatchSize"`
}
