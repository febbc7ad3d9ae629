package inventory

import (
	"context"
	"errors"
	"fmt"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Repository defines data access for inventory items and the stock ledger.
type Repository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetAll retrieves all inventory items.
	GetAll(ctx context.Context) ([]model.InventoryItem, error)

	// GetByID retrieves one inventory item, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)

	// GetByProductIDForUpdate locks and retrieves the item for a product
	// within the given transaction, nil when absent.
	GetByProductIDForUpdate(ctx context.Context, tx pgx.Tx, productID string) (*model.InventoryItem, error)

	// GetByIDForUpdate locks and retrieves one item within the transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.InventoryItem, error)

	// Create inserts a new inventory item.
	Create(ctx context.Context, item *model.InventoryItem) error

	// Update persists mutable item fields.
	Update(ctx context.Context, item *model.InventoryItem) error

	// SetQuantity updates the running quantity within the transaction.
	SetQuantity(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error

	// AppendMovement appends one ledger row within the transaction.
	AppendMovement(ctx context.Context, tx pgx.Tx, movement *model.StockMovement) error

	// GetMovements retrieves the ledger for an item, newest first.
	GetMovements(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error)

	// GetLowStock retrieves items at or below their minimum stock level.
	GetLowStock(ctx context.Context) ([]model.InventoryItem, error)
}

type repository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRepository creates a PostgreSQL-backed inventory repository.
func NewRepository(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &repository{
		pool:   pool,
		logger: logger.With().Str("repository", "inventory").Logger(),
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

const itemColumns = `
	id, product_id, quantity, min_stock_level, max_stock_level, location, created_at, updated_at
`

func scanItem(row pgx.Row) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := row.Scan(
		&item.ID,
		&item.ProductID,
		&item.Quantity,
		&item.MinStockLevel,
		&item.MaxStockLevel,
		&item.Location,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) collectItems(rows pgx.Rows) ([]model.InventoryItem, error) {
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan inventory item row")
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating inventory item rows")
		return nil, fmt.Errorf("error iterating inventory items: %w", err)
	}

	return items, nil
}

func (r *repository) GetAll(ctx context.Context) ([]model.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items ORDER BY product_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query inventory items")
		return nil, fmt.Errorf("failed to query inventory items: %w", err)
	}

	return r.collectItems(rows)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1`

	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("item_id", id.String()).Msg("inventory item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to query inventory item")
		return nil, fmt.Errorf("failed to query inventory item: %w", err)
	}

	return item, nil
}

// GetByIDForUpdate locks the item row for the lifetime of the transaction so
// concurrent adjustments serialise instead of racing on read-modify-write.
func (r *repository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1 FOR UPDATE`

	item, err := scanItem(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to lock inventory item")
		return nil, fmt.Errorf("failed to lock inventory item: %w", err)
	}

	return item, nil
}

func (r *repository) GetByProductIDForUpdate(ctx context.Context, tx pgx.Tx, productID string) (*model.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE product_id = $1 FOR UPDATE`

	item, err := scanItem(tx.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to lock inventory item")
		return nil, fmt.Errorf("failed to lock inventory item: %w", err)
	}

	return item, nil
}

func (r *repository) Create(ctx context.Context, item *model.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (
			id, product_id, quantity, min_stock_level, max_stock_level, location, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.ProductID,
		item.Quantity,
		item.MinStockLevel,
		item.MaxStockLevel,
		item.Location,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", item.ProductID).Msg("failed to create inventory item")
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	r.logger.Debug().Str("item_id", item.ID.String()).Msg("inventory item created")
	return nil
}

func (r *repository) Update(ctx context.Context, item *model.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET quantity = $2, min_stock_level = $3, max_stock_level = $4, location = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Quantity,
		item.MinStockLevel,
		item.MaxStockLevel,
		item.Location,
		item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("failed to update inventory item")
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}

	return nil
}

func (r *repository) SetQuantity(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	query := `UPDATE inventory_items SET quantity = $2, updated_at = now() WHERE id = $1`

	_, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to set quantity")
		return fmt.Errorf("failed to set quantity: %w", err)
	}

	return nil
}

func (r *repository) AppendMovement(ctx context.Context, tx pgx.Tx, movement *model.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, inventory_item_id, quantity_change, reason, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		movement.ID,
		movement.InventoryItemID,
		movement.QuantityChange,
		movement.Reason,
		movement.Notes,
		movement.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("item_id", movement.InventoryItemID.String()).
			Msg("failed to append stock movement")
		return fmt.Errorf("failed to append stock movement: %w", err)
	}

	return nil
}

func (r *repository) GetMovements(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error) {
	query := `
		SELECT id, inventory_item_id, quantity_change, reason, notes, created_at
		FROM stock_movements
		WHERE inventory_item_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to query stock movements")
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []model.StockMovement
	for rows.Next() {
		var m model.StockMovement
		err := rows.Scan(&m.ID, &m.InventoryItemID, &m.QuantityChange, &m.Reason, &m.Notes, &m.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock movement row")
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating stock movement rows")
		return nil, fmt.Errorf("error iterating stock movements: %w", err)
	}

	return movements, nil
}

func (r *repository) GetLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE quantity <= min_stock_level ORDER BY product_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query low stock items")
		return nil, fmt.Errorf("failed to query low stock items: %w", err)
	}

	return r.collectItems(rows)
}
