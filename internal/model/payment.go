package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a payment transaction.
// Transactions are immutable once succeeded or failed.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSucceeded TransactionStatus = "succeeded"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction records one payment attempt against an order.
type Transaction struct {
	ID                   uuid.UUID         `json:"id" db:"id"`
	OrderID              uuid.UUID         `json:"orderId" db:"order_id"`
	UserID               uuid.UUID         `json:"userId" db:"user_id"`
	Amount               decimal.Decimal   `json:"amount" db:"amount"`
	Currency             string            `json:"currency" db:"currency"`
	PaymentGateway       string            `json:"paymentGateway" db:"payment_gateway"`
	GatewayTransactionID string            `json:"gatewayTransactionId" db:"gateway_transaction_id"`
	Status               TransactionStatus `json:"status" db:"status"`
	CreatedAt            time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time         `json:"updatedAt" db:"updated_at"`
}

// CreateIntentRequest is the payload for creating a payment intent.
type CreateIntentRequest struct {
	OrderID  uuid.UUID       `json:"orderId"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// CreateIntentResponse returns the gateway handle for a pending payment.
type CreateIntentResponse struct {
	Message         string `json:"message"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
}

// FinalizeRequest confirms or rejects a pending payment. FinalStatus is the
// caller-supplied override hint forwarded to the mock gateway.
type FinalizeRequest struct {
	PaymentIntentID string            `json:"paymentIntentId"`
	OrderID         uuid.UUID         `json:"orderId"`
	FinalStatus     TransactionStatus `json:"finalStatus"`
}

// FinalizeResponse reports the payment outcome. It reflects the gateway
// confirmation only, never the order status sync.
type FinalizeResponse struct {
	Message string            `json:"message"`
	Status  TransactionStatus `json:"status"`
}

// OutboxStatus is the delivery state of an order status sync record.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusDelivered OutboxStatus = "delivered"
	OutboxStatusAbandoned OutboxStatus = "abandoned"
)

// OutboxRecord is a durable instruction to apply an order status. It is
// written in the same transaction as the payment outcome so the order
// eventually reflects the true result even across downstream failures.
type OutboxRecord struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	OrderID       uuid.UUID    `json:"orderId" db:"order_id"`
	TransactionID uuid.UUID    `json:"transactionId" db:"transaction_id"`
	TargetStatus  OrderStatus  `json:"targetStatus" db:"target_status"`
	Status        OutboxStatus `json:"status" db:"status"`
	Attempts      int          `json:"attempts" db:"attempts"`
	LastError     *string      `json:"lastError,omitempty" db:"last_error"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
}
