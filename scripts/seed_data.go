package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"swiftmart/internal/config"
	"swiftmart/internal/database"
	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// seed_data creates the SwiftMart schema and inserts sample coupons and
// inventory items for local development. Run with the same environment
// variables the services use.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	fmt.Println("schema created")

	if err := seedCoupons(ctx, pool); err != nil {
		return err
	}
	if err := seedInventory(ctx, pool); err != nil {
		return err
	}

	fmt.Println("sample data inserted")
	return nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		status VARCHAR(20) NOT NULL,
		total_amount NUMERIC(12, 2) NOT NULL DEFAULT 0,
		coupon_code VARCHAR(50),
		discount_amount NUMERIC(12, 2) NOT NULL DEFAULT 0,
		final_total NUMERIC(12, 2) NOT NULL DEFAULT 0,
		coupon_redeemed BOOLEAN NOT NULL DEFAULT FALSE,
		shipping_address_id UUID,
		payment_method VARCHAR(50),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_pending_per_user
		ON orders(user_id) WHERE status = 'pending';
	CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

	CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id VARCHAR(50) NOT NULL,
		product_name VARCHAR(255) NOT NULL,
		product_image_url TEXT,
		unit_price NUMERIC(12, 2) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

	CREATE TABLE IF NOT EXISTS coupons (
		id UUID PRIMARY KEY,
		code VARCHAR(50) NOT NULL UNIQUE,
		description TEXT,
		discount_type VARCHAR(20) NOT NULL,
		discount_value NUMERIC(12, 2) NOT NULL,
		minimum_order_amount NUMERIC(12, 2) NOT NULL DEFAULT 0,
		max_uses INTEGER NOT NULL,
		uses_count INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		valid_from TIMESTAMPTZ NOT NULL,
		valid_until TIMESTAMPTZ NOT NULL,
		applicable_to VARCHAR(20) NOT NULL DEFAULT 'all',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uses_within_limit CHECK (uses_count <= max_uses)
	);

	CREATE TABLE IF NOT EXISTS inventory_items (
		id UUID PRIMARY KEY,
		product_id VARCHAR(50) NOT NULL UNIQUE,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		min_stock_level INTEGER NOT NULL DEFAULT 0,
		max_stock_level INTEGER NOT NULL DEFAULT 0,
		location VARCHAR(100) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS stock_movements (
		id UUID PRIMARY KEY,
		inventory_item_id UUID NOT NULL REFERENCES inventory_items(id) ON DELETE CASCADE,
		quantity_change INTEGER NOT NULL,
		reason VARCHAR(50) NOT NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_stock_movements_item_id ON stock_movements(inventory_item_id);

	CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL,
		user_id UUID NOT NULL,
		amount NUMERIC(12, 2) NOT NULL,
		currency VARCHAR(10) NOT NULL,
		payment_gateway VARCHAR(50) NOT NULL,
		gateway_transaction_id VARCHAR(100) NOT NULL,
		status VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_order_id ON transactions(order_id);

	CREATE TABLE IF NOT EXISTS payment_outbox (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL,
		transaction_id UUID NOT NULL REFERENCES transactions(id),
		target_status VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_payment_outbox_status ON payment_outbox(status);
`

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	now := time.Now().UTC()
	welcome := "10% off your first order"
	summer := "5 dollars off orders over 20"

	coupons := []model.Coupon{
		{
			ID:                 uuid.New(),
			Code:               "WELCOME10",
			Description:        &welcome,
			DiscountType:       model.DiscountTypePercentage,
			DiscountValue:      decimal.NewFromInt(10),
			MinimumOrderAmount: decimal.Zero,
			MaxUses:            1000,
			IsActive:           true,
			ValidFrom:          now,
			ValidUntil:         now.AddDate(1, 0, 0),
			ApplicableTo:       model.ApplicableToAll,
			CreatedAt:          now,
		},
		{
			ID:                 uuid.New(),
			Code:               "SUMMER5",
			Description:        &summer,
			DiscountType:       model.DiscountTypeFixedAmount,
			DiscountValue:      decimal.NewFromInt(5),
			MinimumOrderAmount: decimal.NewFromInt(20),
			MaxUses:            500,
			IsActive:           true,
			ValidFrom:          now,
			ValidUntil:         now.AddDate(0, 3, 0),
			ApplicableTo:       model.ApplicableToAll,
			CreatedAt:          now,
		},
	}

	for _, c := range coupons {
		_, err := pool.Exec(ctx, `
			INSERT INTO coupons (
				id, code, description, discount_type, discount_value, minimum_order_amount,
				max_uses, uses_count, is_active, valid_from, valid_until, applicable_to, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (code) DO NOTHING
		`,
			c.ID, c.Code, c.Description, c.DiscountType, c.DiscountValue, c.MinimumOrderAmount,
			c.MaxUses, c.UsesCount, c.IsActive, c.ValidFrom, c.ValidUntil, c.ApplicableTo, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to seed coupon %s: %w", c.Code, err)
		}
	}
	return nil
}

func seedInventory(ctx context.Context, pool *pgxpool.Pool) error {
	items := []struct {
		productID string
		quantity  int
		minLevel  int
		maxLevel  int
	}{
		{"P001", 120, 10, 500},
		{"P002", 45, 10, 200},
		{"P003", 8, 10, 100},
		{"P004", 300, 20, 1000},
		{"P005", 0, 5, 50},
	}

	for _, item := range items {
		_, err := pool.Exec(ctx, `
			INSERT INTO inventory_items (
				id, product_id, quantity, min_stock_level, max_stock_level, location
			) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (product_id) DO NOTHING
		`,
			uuid.New(), item.productID, item.quantity, item.minLevel, item.maxLevel, "warehouse-a",
		)
		if err != nil {
			return fmt.Errorf("failed to seed inventory for %s: %w", item.productID, err)
		}
	}
	return nil
}
