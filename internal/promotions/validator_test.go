package promotions

import (
	"testing"
	"time"

	"swiftmart/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopspring/decimal"
)

func testCoupon(mutate func(*model.Coupon)) model.Coupon {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	c := model.Coupon{
		Code:               "SAVE10",
		DiscountType:       model.DiscountTypePercentage,
		DiscountValue:      decimal.NewFromInt(10),
		MinimumOrderAmount: decimal.NewFromInt(20),
		MaxUses:            100,
		UsesCount:          5,
		IsActive:           true,
		ValidFrom:          now.Add(-24 * time.Hour),
		ValidUntil:         now.Add(24 * time.Hour),
		ApplicableTo:       model.ApplicableToAll,
	}
	if mutate != nil {
		mutate(&c)
	}
	return c
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		mutate     func(*model.Coupon)
		orderTotal decimal.Decimal
		wantErr    string
	}{
		{
			name:       "valid coupon",
			orderTotal: decimal.NewFromInt(30),
		},
		{
			name:       "inactive coupon",
			mutate:     func(c *model.Coupon) { c.IsActive = false },
			orderTotal: decimal.NewFromInt(30),
			wantErr:    "Coupon is not active.",
		},
		{
			name:       "not yet valid",
			mutate:     func(c *model.Coupon) { c.ValidFrom = now.Add(time.Hour) },
			orderTotal: decimal.NewFromInt(30),
			wantErr:    "Coupon is expired or not yet valid.",
		},
		{
			name:       "expired",
			mutate:     func(c *model.Coupon) { c.ValidUntil = now.Add(-time.Hour) },
			orderTotal: decimal.NewFromInt(30),
			wantErr:    "Coupon is expired or not yet valid.",
		},
		{
			name:       "usage limit reached",
			mutate:     func(c *model.Coupon) { c.UsesCount = 100 },
			orderTotal: decimal.NewFromInt(30),
			wantErr:    "Coupon usage limit reached.",
		},
		{
			name:       "below minimum order",
			orderTotal: decimal.NewFromInt(15),
			wantErr:    "Minimum order of $20.00 required.",
		},
		{
			name:       "exactly minimum order",
			orderTotal: decimal.NewFromInt(20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := testCoupon(tt.mutate)

			err := Validate(coupon, tt.orderTotal, nil, now)

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.ErrCodeCouponInvalid, domainErr.Code)
		})
	}
}

func TestValidate_ChecksActiveBeforeWindow(t *testing.T) {
	// Both inactive and expired: the active check wins.
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	coupon := testCoupon(func(c *model.Coupon) {
		c.IsActive = false
		c.ValidUntil = now.Add(-time.Hour)
	})

	err := Validate(coupon, decimal.NewFromInt(30), nil, now)
	require.Error(t, err)
	assert.Equal(t, "Coupon is not active.", err.Error())
}

func TestDiscount_Percentage(t *testing.T) {
	// Cart of one item, unitPrice=10.00 qty=3, 10% off.
	coupon := testCoupon(nil)
	orderTotal := decimal.RequireFromString("30.00")

	discount := Discount(coupon, orderTotal)

	assert.True(t, discount.Equal(decimal.RequireFromString("3.00")), "got %s", discount)
	assert.True(t, orderTotal.Sub(discount).Equal(decimal.RequireFromString("27.00")))
}

func TestDiscount_PercentageRounding(t *testing.T) {
	coupon := testCoupon(func(c *model.Coupon) {
		c.DiscountValue = decimal.NewFromInt(15)
	})

	discount := Discount(coupon, decimal.RequireFromString("19.99"))

	// 19.99 * 0.15 = 2.9985 -> 3.00
	assert.True(t, discount.Equal(decimal.RequireFromString("3.00")), "got %s", discount)
}

func TestDiscount_FixedAmount(t *testing.T) {
	coupon := testCoupon(func(c *model.Coupon) {
		c.DiscountType = model.DiscountTypeFixedAmount
		c.DiscountValue = decimal.NewFromInt(5)
	})

	discount := Discount(coupon, decimal.NewFromInt(30))

	assert.True(t, discount.Equal(decimal.NewFromInt(5)))
}

func TestDiscount_FixedAmountCappedAtTotal(t *testing.T) {
	coupon := testCoupon(func(c *model.Coupon) {
		c.DiscountType = model.DiscountTypeFixedAmount
		c.DiscountValue = decimal.NewFromInt(50)
	})
	orderTotal := decimal.RequireFromString("12.34")

	discount := Discount(coupon, orderTotal)

	// Discount never exceeds the order total.
	assert.True(t, discount.Equal(orderTotal), "got %s", discount)
	assert.False(t, orderTotal.Sub(discount).IsNegative())
}
