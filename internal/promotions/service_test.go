package promotions

import (
	"context"
	"testing"
	"time"

	"swiftmart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockRepository) IncrementUses(ctx context.Context, code string) (int, error) {
	args := m.Called(ctx, code)
	return args.Int(0), args.Error(1)
}

func newTestService(repo Repository) *service {
	return &service{
		repo:   repo,
		now:    func() time.Time { return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC) },
		logger: zerolog.Nop(),
	}
}

func TestService_ValidateCoupon_Success(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	coupon := testCoupon(nil)
	repo.On("GetByCode", mock.Anything, "SAVE10").Return(&coupon, nil)

	result, err := svc.ValidateCoupon(context.Background(), &model.ValidateCouponRequest{
		Code:       "SAVE10",
		OrderTotal: decimal.RequireFromString("30.00"),
	})

	require.NoError(t, err)
	assert.True(t, result.DiscountAmount.Equal(decimal.RequireFromString("3.00")))
	assert.Equal(t, "SAVE10", result.CouponDetails.Code)
	assert.Equal(t, model.DiscountTypePercentage, result.CouponDetails.Type)
	repo.AssertExpectations(t)
}

func TestService_ValidateCoupon_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("GetByCode", mock.Anything, "MISSING").Return(nil, nil)

	_, err := svc.ValidateCoupon(context.Background(), &model.ValidateCouponRequest{
		Code:       "MISSING",
		OrderTotal: decimal.NewFromInt(30),
	})

	require.ErrorIs(t, err, model.ErrCouponNotFound)
}

func TestService_ValidateCoupon_BelowMinimum(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	coupon := testCoupon(nil)
	repo.On("GetByCode", mock.Anything, "SAVE10").Return(&coupon, nil)

	_, err := svc.ValidateCoupon(context.Background(), &model.ValidateCouponRequest{
		Code:       "SAVE10",
		OrderTotal: decimal.NewFromInt(15),
	})

	require.Error(t, err)
	assert.Equal(t, "Minimum order of $20.00 required.", err.Error())
}

func TestService_ValidateCoupon_MissingCode(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	_, err := svc.ValidateCoupon(context.Background(), &model.ValidateCouponRequest{
		OrderTotal: decimal.NewFromInt(30),
	})

	require.Error(t, err)
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
	repo.AssertNotCalled(t, "GetByCode")
}

func TestService_CreateCoupon_Success(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Coupon) bool {
		return c.Code == "WELCOME5" && c.IsActive && c.UsesCount == 0 &&
			c.ApplicableTo == model.ApplicableToAll
	})).Return(nil)

	coupon, err := svc.CreateCoupon(context.Background(), &model.CreateCouponRequest{
		Code:               "WELCOME5",
		DiscountType:       model.DiscountTypeFixedAmount,
		DiscountValue:      decimal.NewFromInt(5),
		MinimumOrderAmount: decimal.NewFromInt(10),
		MaxUses:            50,
		ValidFrom:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:         time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "WELCOME5", coupon.Code)
	repo.AssertExpectations(t)
}

func TestService_CreateCoupon_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CreateCouponRequest)
	}{
		{"missing code", func(r *model.CreateCouponRequest) { r.Code = "" }},
		{"bad discount type", func(r *model.CreateCouponRequest) { r.DiscountType = "bogus" }},
		{"zero discount value", func(r *model.CreateCouponRequest) { r.DiscountValue = decimal.Zero }},
		{"percentage over 100", func(r *model.CreateCouponRequest) {
			r.DiscountType = model.DiscountTypePercentage
			r.DiscountValue = decimal.NewFromInt(150)
		}},
		{"zero max uses", func(r *model.CreateCouponRequest) { r.MaxUses = 0 }},
		{"window inverted", func(r *model.CreateCouponRequest) {
			r.ValidFrom, r.ValidUntil = r.ValidUntil, r.ValidFrom
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := newTestService(repo)

			req := &model.CreateCouponRequest{
				Code:               "WELCOME5",
				DiscountType:       model.DiscountTypeFixedAmount,
				DiscountValue:      decimal.NewFromInt(5),
				MinimumOrderAmount: decimal.NewFromInt(10),
				MaxUses:            50,
				ValidFrom:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				ValidUntil:         time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			tt.mutate(req)

			_, err := svc.CreateCoupon(context.Background(), req)

			require.Error(t, err)
			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
			repo.AssertNotCalled(t, "Create")
		})
	}
}

func TestService_MarkCouponUsed(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("IncrementUses", mock.Anything, "SAVE10").Return(6, nil)

	newCount, err := svc.MarkCouponUsed(context.Background(), "SAVE10")

	require.NoError(t, err)
	assert.Equal(t, 6, newCount)
}

func TestService_MarkCouponUsed_Exhausted(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("IncrementUses", mock.Anything, "SAVE10").Return(0, model.ErrCouponExhausted)

	_, err := svc.MarkCouponUsed(context.Background(), "SAVE10")

	require.ErrorIs(t, err, model.ErrCouponExhausted)
}
