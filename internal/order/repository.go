package order

import (
	"context"
	"errors"
	"fmt"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repository defines data access for orders and their line items. A user's
// cart is their single pending order; callers mutate cart contents inside a
// transaction so totals never drift from the items.
type Repository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetPendingByUser retrieves the user's pending order, nil when absent.
	GetPendingByUser(ctx context.Context, userID uuid.UUID) (*model.Order, error)

	// GetPendingByUserForUpdate locks and retrieves the user's pending order
	// within the transaction, nil when absent.
	GetPendingByUserForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Order, error)

	// CreateOrder inserts a new order within the transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves one order, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDForUpdate locks and retrieves one order within the transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetByUser retrieves the user's non-pending orders, newest first.
	GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// GetAll retrieves every order, newest first.
	GetAll(ctx context.Context) ([]model.Order, error)

	// GetForBatching retrieves placed and processing orders that carry a
	// shipping address, oldest first.
	GetForBatching(ctx context.Context) ([]model.Order, error)

	// GetItems retrieves the order's line items.
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// GetItemsTx retrieves the order's line items within the transaction.
	GetItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// GetItemByProduct retrieves the order's line for a product within the
	// transaction, nil when absent.
	GetItemByProduct(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, productID string) (*model.OrderItem, error)

	// InsertItem inserts a line item within the transaction.
	InsertItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error

	// UpdateItemQuantity sets a line item's quantity within the transaction.
	UpdateItemQuantity(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, quantity int) error

	// DeleteItem removes a line item within the transaction.
	DeleteItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error

	// UpdateTotals persists recomputed money fields within the transaction.
	UpdateTotals(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, total, discount, final decimal.Decimal, couponCode *string) error

	// SetShippingAddress attaches a shipping address to the order.
	SetShippingAddress(ctx context.Context, orderID, addressID uuid.UUID) error

	// UpdateStatus sets the order status within the transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus) error

	// SetPaymentMethod records the chosen payment method within the
	// transaction.
	SetPaymentMethod(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, method string) error

	// MarkCouponRedeemed flags the order's coupon as redeemed within the
	// transaction.
	MarkCouponRedeemed(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error
}

type repository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRepository creates a PostgreSQL-backed order repository.
func NewRepository(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &repository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func (r *repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const orderColumns = `
	id, user_id, status, total_amount, coupon_code, discount_amount, final_total,
	coupon_redeemed, shipping_address_id, payment_method, created_at, updated_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.TotalAmount,
		&o.CouponCode,
		&o.DiscountAmount,
		&o.FinalTotal,
		&o.CouponRedeemed,
		&o.ShippingAddressID,
		&o.PaymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *repository) GetPendingByUser(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND status = 'pending'`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get pending order")
		return nil, fmt.Errorf("failed to get pending order: %w", err)
	}
	return o, nil
}

func (r *repository) GetPendingByUserForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND status = 'pending' FOR UPDATE`

	o, err := scanOrder(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock pending order")
		return nil, fmt.Errorf("failed to lock pending order: %w", err)
	}
	return o, nil
}

func (r *repository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, status, total_amount, coupon_code, discount_amount,
			final_total, coupon_redeemed, shipping_address_id, payment_method,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Status,
		order.TotalAmount,
		order.CouponCode,
		order.DiscountAmount,
		order.FinalTotal,
		order.CouponRedeemed,
		order.ShippingAddressID,
		order.PaymentMethod,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (r *repository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	o, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return o, nil
}

func (r *repository) GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND status <> 'pending'
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query order history")
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}

	return r.collectOrders(rows)
}

func (r *repository) GetAll(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	return r.collectOrders(rows)
}

func (r *repository) GetForBatching(ctx context.Context) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status IN ('placed', 'processing') AND shipping_address_id IS NOT NULL
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders for batching")
		return nil, fmt.Errorf("failed to query orders for batching: %w", err)
	}

	return r.collectOrders(rows)
}

const itemColumns = `
	id, order_id, product_id, product_name, product_image_url, unit_price, quantity, created_at
`

func scanItem(row pgx.Row) (*model.OrderItem, error) {
	var item model.OrderItem
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.ProductName,
		&item.ProductImageURL,
		&item.UnitPrice,
		&item.Quantity,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) collectItems(rows pgx.Rows) ([]model.OrderItem, error) {
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

const itemsByOrderQuery = `
	SELECT` + itemColumns + `FROM order_items WHERE order_id = $1 ORDER BY created_at ASC
`

func (r *repository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx, itemsByOrderQuery, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	return r.collectItems(rows)
}

func (r *repository) GetItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := tx.Query(ctx, itemsByOrderQuery, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	return r.collectItems(rows)
}

func (r *repository) GetItemByProduct(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, productID string) (*model.OrderItem, error) {
	query := `SELECT` + itemColumns + `FROM order_items WHERE order_id = $1 AND product_id = $2`

	item, err := scanItem(tx.QueryRow(ctx, query, orderID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Str("product_id", productID).Msg("failed to get order item")
		return nil, fmt.Errorf("failed to get order item: %w", err)
	}
	return item, nil
}

func (r *repository) InsertItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	query := `
		INSERT INTO order_items (
			id, order_id, product_id, product_name, product_image_url,
			unit_price, quantity, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.ProductName,
		item.ProductImageURL,
		item.UnitPrice,
		item.Quantity,
		item.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", item.OrderID.String()).Msg("failed to insert order item")
		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

func (r *repository) UpdateItemQuantity(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, quantity int) error {
	query := `UPDATE order_items SET quantity = $2 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, itemID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to update item quantity")
		return fmt.Errorf("failed to update item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

func (r *repository) DeleteItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error {
	query := `DELETE FROM order_items WHERE id = $1`

	tag, err := tx.Exec(ctx, query, itemID)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to delete order item")
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

func (r *repository) UpdateTotals(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, total, discount, final decimal.Decimal, couponCode *string) error {
	query := `
		UPDATE orders
		SET total_amount = $2, discount_amount = $3, final_total = $4,
			coupon_code = $5, updated_at = NOW()
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, orderID, total, discount, final, couponCode)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order totals")
		return fmt.Errorf("failed to update order totals: %w", err)
	}

	return nil
}

func (r *repository) SetShippingAddress(ctx context.Context, orderID, addressID uuid.UUID) error {
	query := `UPDATE orders SET shipping_address_id = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, orderID, addressID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to set shipping address")
		return fmt.Errorf("failed to set shipping address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, orderID, status)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

func (r *repository) SetPaymentMethod(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, method string) error {
	query := `UPDATE orders SET payment_method = $2, updated_at = NOW() WHERE id = $1`

	_, err := tx.Exec(ctx, query, orderID, method)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to set payment method")
		return fmt.Errorf("failed to set payment method: %w", err)
	}

	return nil
}

func (r *repository) MarkCouponRedeemed(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	query := `UPDATE orders SET coupon_redeemed = TRUE, updated_at = NOW() WHERE id = $1`

	_, err := tx.Exec(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to mark coupon redeemed")
		return fmt.Errorf("failed to mark coupon redeemed: %w", err)
	}

	return nil
}
