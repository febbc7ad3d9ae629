package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeCouponInvalid     = "COUPON_INVALID"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeUpstreamService   = "UPSTREAM_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure with a stable code. Handlers map
// codes to HTTP statuses; the message is safe to return to clients.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NotFoundError creates a NOT_FOUND domain error.
func NotFoundError(message string) *DomainError {
	return NewDomainError(ErrCodeNotFound, message)
}

// ValidationError creates a VALIDATION_ERROR domain error.
func ValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// CouponInvalidError creates a COUPON_INVALID domain error carrying the
// human-readable rejection reason.
func CouponInvalidError(reason string) *DomainError {
	return NewDomainError(ErrCodeCouponInvalid, reason)
}

// InsufficientStockError creates an INSUFFICIENT_STOCK domain error.
func InsufficientStockError(message string) *DomainError {
	return NewDomainError(ErrCodeInsufficientStock, message)
}

// InvalidTransitionError creates an INVALID_TRANSITION domain error.
func InvalidTransitionError(from, to OrderStatus) *DomainError {
	return NewDomainError(ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot transition order from %s to %s.", from, to))
}

// UpstreamServiceError creates an UPSTREAM_ERROR domain error.
func UpstreamServiceError(service string) *DomainError {
	return NewDomainError(ErrCodeUpstreamService,
		fmt.Sprintf("The %s service is unavailable.", service))
}

// Common domain errors
var (
	ErrEmptyCart          = NotFoundError("No pending order (cart) found.")
	ErrCartItemNotFound   = NotFoundError("Cart item not found.")
	ErrOrderNotFound      = NotFoundError("Order not found.")
	ErrCouponNotFound     = NotFoundError("Coupon not found.")
	ErrItemNotFound       = NotFoundError("Inventory item not found.")
	ErrTransactionMissing = NotFoundError("Transaction record not found.")
	ErrProductNotFound    = NotFoundError("Product not found or unavailable.")
	ErrInvalidQuantity    = ValidationError("Product ID and a positive quantity are required.")
	ErrEmptyOrder         = ValidationError("Cannot place an empty order.")
	ErrCouponExhausted    = NewDomainError(ErrCodeConflict, "Coupon usage limit already reached.")
	ErrDuplicateCoupon    = ValidationError("Coupon code already exists.")
)
