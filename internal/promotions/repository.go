package promotions

import (
	"context"
	"errors"
	"fmt"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Repository defines data access for coupons.
type Repository interface {
	// GetByCode retrieves a coupon by its unique code.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// Create inserts a new coupon. Duplicate codes fail with ErrDuplicateCoupon.
	Create(ctx context.Context, coupon *model.Coupon) error

	// IncrementUses atomically increments uses_count for an active coupon
	// that has not reached max_uses. Returns the new count, ErrCouponExhausted
	// when the limit is already reached, or ErrCouponNotFound when no active
	// coupon has that code.
	IncrementUses(ctx context.Context, code string) (int, error)
}

// repository implements Repository using PostgreSQL.
type repository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRepository creates a PostgreSQL-backed coupon repository.
func NewRepository(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &repository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

const couponColumns = `
	id, code, description, discount_type, discount_value, minimum_order_amount,
	max_uses, uses_count, is_active, valid_from, valid_until, applicable_to, created_at
`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinimumOrderAmount,
		&c.MaxUses,
		&c.UsesCount,
		&c.IsActive,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.ApplicableTo,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByCode retrieves a coupon by its unique code.
func (r *repository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return coupon, nil
}

// Create inserts a new coupon.
func (r *repository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (
			id, code, description, discount_type, discount_value, minimum_order_amount,
			max_uses, uses_count, is_active, valid_from, valid_until, applicable_to, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MinimumOrderAmount,
		coupon.MaxUses,
		coupon.UsesCount,
		coupon.IsActive,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.ApplicableTo,
		coupon.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn().Str("code", coupon.Code).Msg("duplicate coupon code")
			return model.ErrDuplicateCoupon
		}
		r.logger.Error().Err(err).Str("code", coupon.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().Str("code", coupon.Code).Msg("coupon created successfully")
	return nil
}

// IncrementUses atomically increments uses_count. The conditional UPDATE is
// the serialization point: two concurrent redemptions racing on the last use
// cannot both match uses_count < max_uses.
func (r *repository) IncrementUses(ctx context.Context, code string) (int, error) {
	query := `
		UPDATE coupons
		SET uses_count = uses_count + 1
		WHERE code = $1 AND is_active AND uses_count < max_uses
		RETURNING uses_count
	`

	var newCount int
	err := r.pool.QueryRow(ctx, query, code).Scan(&newCount)
	if err == nil {
		r.logger.Debug().Str("code", code).Int("uses_count", newCount).Msg("coupon usage incremented")
		return newCount, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to increment coupon usage")
		return 0, fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	// No row matched: either the coupon is missing/inactive or exhausted.
	var id uuid.UUID
	err = r.pool.QueryRow(ctx, `SELECT id FROM coupons WHERE code = $1 AND is_active`, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrCouponNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to check coupon existence")
		return 0, fmt.Errorf("failed to check coupon existence: %w", err)
	}

	r.logger.Warn().Str("code", code).Msg("coupon usage limit already reached")
	return 0, model.ErrCouponExhausted
}
