package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType determines how a coupon's value is applied.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

// ApplicableTo scopes a coupon to a category, a product, or the whole order.
// Declared on the model but not enforced by validation.
type ApplicableTo string

const (
	ApplicableToAll      ApplicableTo = "all"
	ApplicableToCategory ApplicableTo = "category"
	ApplicableToProduct  ApplicableTo = "product"
)

// Coupon is a promotional code owned by the promotions service and referenced
// by code (not by foreign key) from orders.
type Coupon struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Code               string          `json:"code" db:"code"`
	Description        *string         `json:"description,omitempty" db:"description"`
	DiscountType       DiscountType    `json:"discountType" db:"discount_type"`
	DiscountValue      decimal.Decimal `json:"discountValue" db:"discount_value"`
	MinimumOrderAmount decimal.Decimal `json:"minimumOrderAmount" db:"minimum_order_amount"`
	MaxUses            int             `json:"maxUses" db:"max_uses"`
	UsesCount          int             `json:"usesCount" db:"uses_count"`
	IsActive           bool            `json:"isActive" db:"is_active"`
	ValidFrom          time.Time       `json:"validFrom" db:"valid_from"`
	ValidUntil         time.Time       `json:"validUntil" db:"valid_until"`
	ApplicableTo       ApplicableTo    `json:"applicableTo" db:"applicable_to"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
}

// ValidateCouponRequest is the payload for coupon validation.
type ValidateCouponRequest struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
	ItemIDs    []string        `json:"itemIds,omitempty"`
}

// ValidateCouponResponse carries the calculated discount for a valid coupon.
type ValidateCouponResponse struct {
	Message        string          `json:"message"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	CouponDetails  CouponDetails   `json:"couponDetails"`
}

// CouponDetails is the subset of coupon fields exposed to the order service.
type CouponDetails struct {
	Code        string          `json:"code"`
	Description *string         `json:"description,omitempty"`
	Type        DiscountType    `json:"type"`
	Value       decimal.Decimal `json:"value"`
}

// CreateCouponRequest is the admin payload for creating a coupon.
type CreateCouponRequest struct {
	Code               string          `json:"code"`
	Description        *string         `json:"description,omitempty"`
	DiscountType       DiscountType    `json:"discountType"`
	DiscountValue      decimal.Decimal `json:"discountValue"`
	MinimumOrderAmount decimal.Decimal `json:"minimumOrderAmount"`
	MaxUses            int             `json:"maxUses"`
	ValidFrom          time.Time       `json:"validFrom"`
	ValidUntil         time.Time       `json:"validUntil"`
	ApplicableTo       ApplicableTo    `json:"applicableTo"`
}

// MarkCouponUsedRequest is the internal payload recording a redemption.
type MarkCouponUsedRequest struct {
	Code string `json:"code"`
}
