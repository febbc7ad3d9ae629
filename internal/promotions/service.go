package promotions

import (
	"context"
	"time"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service defines coupon operations.
type Service interface {
	// ValidateCoupon validates a coupon against an order total and returns
	// the calculated discount.
	ValidateCoupon(ctx context.Context, req *model.ValidateCouponRequest) (*model.ValidateCouponResponse, error)

	// CreateCoupon creates a new coupon (admin).
	CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)

	// MarkCouponUsed records one redemption, called after a completed order.
	// Returns the new usage count.
	MarkCouponUsed(ctx context.Context, code string) (int, error)
}

type service struct {
	repo   Repository
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a new coupon service.
func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("service", "promotions").Logger(),
	}
}

// ValidateCoupon validates a coupon and calculates its discount.
func (s *service) ValidateCoupon(ctx context.Context, req *model.ValidateCouponRequest) (*model.ValidateCouponResponse, error) {
	if req.Code == "" {
		return nil, model.ValidationError("Coupon code and order total are required.")
	}
	if req.OrderTotal.IsNegative() {
		return nil, model.ValidationError("Order total cannot be negative.")
	}

	coupon, err := s.repo.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}

	if err := Validate(*coupon, req.OrderTotal, req.ItemIDs, s.now()); err != nil {
		s.logger.Debug().Str("code", req.Code).Err(err).Msg("coupon rejected")
		return nil, err
	}

	discount := Discount(*coupon, req.OrderTotal)

	s.logger.Debug().
		Str("code", req.Code).
		Str("discount", discount.StringFixed(2)).
		Msg("coupon validated")

	return &model.ValidateCouponResponse{
		Message:        "Coupon validated and applied successfully.",
		DiscountAmount: discount,
		CouponDetails: model.CouponDetails{
			Code:        coupon.Code,
			Description: coupon.Description,
			Type:        coupon.DiscountType,
			Value:       coupon.DiscountValue,
		},
	}, nil
}

// CreateCoupon creates a new coupon.
func (s *service) CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	applicableTo := req.ApplicableTo
	if applicableTo == "" {
		applicableTo = model.ApplicableToAll
	}

	coupon := &model.Coupon{
		ID:                 uuid.New(),
		Code:               req.Code,
		Description:        req.Description,
		DiscountType:       req.DiscountType,
		DiscountValue:      req.DiscountValue,
		MinimumOrderAmount: req.MinimumOrderAmount,
		MaxUses:            req.MaxUses,
		UsesCount:          0,
		IsActive:           true,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		ApplicableTo:       applicableTo,
		CreatedAt:          s.now(),
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	s.logger.Info().Str("code", coupon.Code).Msg("coupon created")
	return coupon, nil
}

// MarkCouponUsed records one redemption. The repository performs the
// conditional increment atomically, so the usage count can never exceed
// max_uses under concurrent finalizations.
func (s *service) MarkCouponUsed(ctx context.Context, code string) (int, error) {
	if code == "" {
		return 0, model.ValidationError("Coupon code is required.")
	}

	newCount, err := s.repo.IncrementUses(ctx, code)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("code", code).Int("uses_count", newCount).Msg("coupon marked as used")
	return newCount, nil
}

func validateCreateRequest(req *model.CreateCouponRequest) error {
	if req.Code == "" {
		return model.ValidationError("Coupon code is required.")
	}
	if req.DiscountType != model.DiscountTypePercentage && req.DiscountType != model.DiscountTypeFixedAmount {
		return model.ValidationError("Discount type must be percentage or fixed_amount.")
	}
	if !req.DiscountValue.IsPositive() {
		return model.ValidationError("Discount value must be positive.")
	}
	if req.DiscountType == model.DiscountTypePercentage && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return model.ValidationError("Percentage discount cannot exceed 100.")
	}
	if req.MinimumOrderAmount.IsNegative() {
		return model.ValidationError("Minimum order amount cannot be negative.")
	}
	if req.MaxUses < 1 {
		return model.ValidationError("Max uses must be at least 1.")
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		return model.ValidationError("Valid-until must be after valid-from.")
	}
	return nil
}
