package promotions

import (
	"fmt"
	"time"

	"swiftmart/internal/model"

	"github.com/shopspring/decimal"
)

// Validate checks a coupon against an order total. Pure function, no side
// effects. The checks run in order: active flag, validity window, usage
// limit, minimum order amount. Per-item applicability (itemIDs) is declared
// on the model but intentionally not enforced.
func Validate(coupon model.Coupon, orderTotal decimal.Decimal, itemIDs []string, now time.Time) error {
	if !coupon.IsActive {
		return model.CouponInvalidError("Coupon is not active.")
	}

	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return model.CouponInvalidError("Coupon is expired or not yet valid.")
	}

	if coupon.UsesCount >= coupon.MaxUses {
		return model.CouponInvalidError("Coupon usage limit reached.")
	}

	if orderTotal.LessThan(coupon.MinimumOrderAmount) {
		return model.CouponInvalidError(fmt.Sprintf(
			"Minimum order of $%s required.", coupon.MinimumOrderAmount.StringFixed(2)))
	}

	return nil
}

// Discount calculates the discount a coupon grants against an order total,
// rounded to 2 decimal places. A fixed-amount discount is capped at the
// order total so the final total can never go negative.
func Discount(coupon model.Coupon, orderTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case model.DiscountTypePercentage:
		discount = orderTotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100))
	default: // fixed_amount
		discount = coupon.DiscountValue
	}

	if discount.GreaterThan(orderTotal) {
		discount = orderTotal
	}

	return discount.Round(2)
}
