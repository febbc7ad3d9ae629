package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service defines inventory operations.
type Service interface {
	// GetItems retrieves all inventory items.
	GetItems(ctx context.Context) ([]model.InventoryItem, error)

	// GetItem retrieves one item with its movement ledger.
	GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, []model.StockMovement, error)

	// CreateItem creates a new inventory item (admin).
	CreateItem(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error)

	// UpdateItem updates mutable item fields (admin).
	UpdateItem(ctx context.Context, id uuid.UUID, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error)

	// AdjustStock applies one signed adjustment and appends a ledger row,
	// atomically. The running quantity never goes negative.
	AdjustStock(ctx context.Context, id uuid.UUID, req *model.AdjustStockRequest) (*model.InventoryItem, error)

	// DeductStock deducts the given lines in one transaction. The whole
	// batch succeeds or fails together; the failing product IDs are
	// reported on insufficient stock.
	DeductStock(ctx context.Context, req *model.DeductStockRequest) ([]string, error)

	// GetMovements retrieves the ledger for an item, newest first.
	GetMovements(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error)

	// GetLowStockAlerts retrieves items at or below their minimum level.
	GetLowStockAlerts(ctx context.Context) ([]model.InventoryItem, error)
}

type service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new inventory service.
func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With().Str("service", "inventory").Logger(),
	}
}

func (s *service) GetItems(ctx context.Context) ([]model.InventoryItem, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, []model.StockMovement, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, model.ErrItemNotFound
	}

	movements, err := s.repo.GetMovements(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return item, movements, nil
}

func (s *service) CreateItem(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	if req.ProductID == "" {
		return nil, model.ValidationError("Product ID is required.")
	}
	if req.Quantity < 0 {
		return nil, model.ValidationError("Quantity cannot be negative.")
	}
	if req.MinStockLevel < 0 || req.MaxStockLevel < req.MinStockLevel {
		return nil, model.ValidationError("Stock levels must satisfy 0 <= min <= max.")
	}

	now := time.Now()
	item := &model.InventoryItem{
		ID:            uuid.New(),
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		MinStockLevel: req.MinStockLevel,
		MaxStockLevel: req.MaxStockLevel,
		Location:      req.Location,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("item_id", item.ID.String()).
		Str("product_id", item.ProductID).
		Int("quantity", item.Quantity).
		Msg("inventory item created")

	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.ErrItemNotFound
	}

	if req.Quantity < 0 {
		return nil, model.ValidationError("Quantity cannot be negative.")
	}
	if req.MinStockLevel < 0 || req.MaxStockLevel < req.MinStockLevel {
		return nil, model.ValidationError("Stock levels must satisfy 0 <= min <= max.")
	}

	item.Quantity = req.Quantity
	item.MinStockLevel = req.MinStockLevel
	item.MaxStockLevel = req.MaxStockLevel
	item.Location = req.Location
	item.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// AdjustStock applies a signed delta and appends the ledger row in one
// transaction. A partial write would desynchronise the running total from
// the ledger sum, so neither side is persisted without the other.
func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, req *model.AdjustStockRequest) (*model.InventoryItem, error) {
	if req.Reason == "" {
		return nil, model.ValidationError("Adjustment reason is required.")
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	item, err := s.repo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		err = model.ErrItemNotFound
		return nil, err
	}

	newQuantity := item.Quantity + req.QuantityChange
	if newQuantity < 0 {
		s.logger.Warn().
			Str("item_id", id.String()).
			Int("quantity", item.Quantity).
			Int("change", req.QuantityChange).
			Msg("stock adjustment rejected")
		err = model.InsufficientStockError("Insufficient stock.")
		return nil, err
	}

	if err = s.repo.SetQuantity(ctx, tx, id, newQuantity); err != nil {
		return nil, err
	}

	movement := &model.StockMovement{
		ID:              uuid.New(),
		InventoryItemID: id,
		QuantityChange:  req.QuantityChange,
		Reason:          req.Reason,
		Notes:           req.Notes,
		CreatedAt:       time.Now(),
	}

	if err = s.repo.AppendMovement(ctx, tx, movement); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to commit adjustment")
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	item.Quantity = newQuantity

	s.logger.Info().
		Str("item_id", id.String()).
		Int("change", req.QuantityChange).
		Int("quantity", newQuantity).
		Str("reason", req.Reason).
		Msg("stock adjusted")

	return item, nil
}

// DeductStock deducts every line or nothing. Rows are locked in product ID
// order so two concurrent deductions cannot deadlock.
func (s *service) DeductStock(ctx context.Context, req *model.DeductStockRequest) ([]string, error) {
	if len(req.Items) == 0 {
		return nil, model.ValidationError("At least one item is required.")
	}
	for _, line := range req.Items {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = "order_placed"
	}

	lines := make([]model.DeductLine, len(req.Items))
	copy(lines, req.Items)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct stock: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var outOfStock []string
	type pendingWrite struct {
		item        *model.InventoryItem
		newQuantity int
		delta       int
	}
	var writes []pendingWrite

	for _, line := range lines {
		var item *model.InventoryItem
		item, err = s.repo.GetByProductIDForUpdate(ctx, tx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if item == nil || item.Quantity < line.Quantity {
			outOfStock = append(outOfStock, line.ProductID)
			continue
		}
		writes = append(writes, pendingWrite{
			item:        item,
			newQuantity: item.Quantity - line.Quantity,
			delta:       -line.Quantity,
		})
	}

	if len(outOfStock) > 0 {
		err = model.InsufficientStockError("Insufficient stock for one or more items.")
		return outOfStock, err
	}

	now := time.Now()
	for _, w := range writes {
		if err = s.repo.SetQuantity(ctx, tx, w.item.ID, w.newQuantity); err != nil {
			return nil, err
		}
		movement := &model.StockMovement{
			ID:              uuid.New(),
			InventoryItemID: w.item.ID,
			QuantityChange:  w.delta,
			Reason:          reason,
			Notes:           req.Notes,
			CreatedAt:       now,
		}
		if err = s.repo.AppendMovement(ctx, tx, movement); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit deduction")
		return nil, fmt.Errorf("failed to deduct stock: %w", err)
	}

	s.logger.Info().Int("line_count", len(lines)).Str("reason", reason).Msg("stock deducted")
	return nil, nil
}

func (s *service) GetMovements(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.ErrItemNotFound
	}
	return s.repo.GetMovements(ctx, itemID)
}

func (s *service) GetLowStockAlerts(ctx context.Context) ([]model.InventoryItem, error) {
	return s.repo.GetLowStock(ctx)
}
