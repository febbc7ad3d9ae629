package order

import (
	"context"
	"fmt"
	"sort"
	"time"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductCatalog fetches product details for cart snapshots.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
}

// PromotionsGateway validates and redeems coupons on the promotions service.
type PromotionsGateway interface {
	ValidateCoupon(ctx context.Context, token, code string, orderTotal decimal.Decimal, itemIDs []string) (*model.ValidateCouponResponse, error)
	MarkCouponUsed(ctx context.Context, code string) error
}

// InventoryGateway deducts stock on the inventory service.
type InventoryGateway interface {
	DeductStock(ctx context.Context, req model.DeductStockRequest) error
}

// Notifier pushes user notifications; failures are swallowed by the client.
type Notifier interface {
	Send(ctx context.Context, notification model.Notification)
	Broadcast(ctx context.Context, broadcast model.StatusBroadcast)
}

// Service defines order and cart operations.
type Service interface {
	// GetCart retrieves the user's pending order as a cart. A user with no
	// pending order gets an empty cart, not an error.
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)

	// AddItemToCart adds a product to the cart, creating the pending order
	// when absent. Quantities accumulate per product.
	AddItemToCart(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.CartResponse, error)

	// UpdateCartItemQuantity sets the quantity of an existing cart line.
	UpdateCartItemQuantity(ctx context.Context, userID uuid.UUID, req *model.UpdateItemRequest) (*model.CartResponse, error)

	// RemoveItemFromCart removes a cart line by product. Removing the last
	// line keeps the pending order with a zero total.
	RemoveItemFromCart(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error)

	// ApplyCouponToCart validates a coupon against the cart subtotal and
	// stores the discount. Applying a second code replaces the first.
	ApplyCouponToCart(ctx context.Context, userID uuid.UUID, token, code string) (*model.CartResponse, error)

	// CreatePendingOrder attaches the shipping address to the pending order
	// and notifies the user the order is ready for payment.
	CreatePendingOrder(ctx context.Context, userID uuid.UUID, req *model.CreatePendingRequest) (*model.OrderResponse, error)

	// PlaceOrder transitions the pending order to placed, deducting stock
	// for every line first.
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.PlaceOrderRequest) (*model.OrderResponse, error)

	// GetOrderHistory retrieves the user's non-pending orders, newest first.
	GetOrderHistory(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error)

	// GetOrderDetails retrieves one order with items, scoped to its owner.
	GetOrderDetails(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderResponse, error)

	// GetAllOrders retrieves every order (admin).
	GetAllOrders(ctx context.Context) ([]model.Order, error)

	// UpdateOrderStatus applies a status transition, rejecting moves the
	// lifecycle graph does not allow.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// GetPendingOrdersForBatching retrieves placed and processing orders
	// awaiting dispatch.
	GetPendingOrdersForBatching(ctx context.Context) ([]model.Order, error)

	// BatchOrdersForRoute groups dispatchable orders by shipping address
	// into batches of at most maxBatchSize.
	BatchOrdersForRoute(ctx context.Context, maxBatchSize int) ([]model.RouteBatch, error)
}

const defaultMaxBatchSize = 10

type service struct {
	repo       Repository
	products   ProductCatalog
	promotions PromotionsGateway
	inventory  InventoryGateway
	notifier   Notifier
	logger     zerolog.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, products ProductCatalog, promotions PromotionsGateway, inventory InventoryGateway, notifier Notifier, logger zerolog.Logger) Service {
	return &service{
		repo:       repo,
		products:   products,
		promotions: promotions,
		inventory:  inventory,
		notifier:   notifier,
		logger:     logger.With().Str("service", "order").Logger(),
	}
}

func cartResponse(order *model.Order, items []model.OrderItem) *model.CartResponse {
	if order == nil {
		return &model.CartResponse{
			Items:          []model.OrderItem{},
			TotalAmount:    decimal.Zero,
			DiscountAmount: decimal.Zero,
			FinalTotal:     decimal.Zero,
		}
	}
	if items == nil {
		items = []model.OrderItem{}
	}
	return &model.CartResponse{
		OrderID:        order.ID,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		CouponCode:     order.CouponCode,
		DiscountAmount: order.DiscountAmount,
		FinalTotal:     order.FinalTotal,
	}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	order, err := s.repo.GetPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return cartResponse(nil, nil), nil
	}

	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return cartResponse(order, items), nil
}

// recomputeTotals sums the cart lines and persists the money fields. The
// stored discount never exceeds the new subtotal, so the payable amount
// cannot go negative when items are removed after a coupon was applied.
func (s *service) recomputeTotals(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.OrderItem) error {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	discount := order.DiscountAmount
	if discount.GreaterThan(total) {
		discount = total
	}

	order.TotalAmount = total
	order.DiscountAmount = discount
	order.FinalTotal = total.Sub(discount)

	return s.repo.UpdateTotals(ctx, tx, order.ID, order.TotalAmount, order.DiscountAmount, order.FinalTotal, order.CouponCode)
}

func (s *service) AddItemToCart(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.CartResponse, error) {
	if req.ProductID == "" || req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsAvailable {
		return nil, model.ErrProductNotFound
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.repo.GetPendingByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if order == nil {
		order = &model.Order{
			ID:             uuid.New(),
			UserID:         userID,
			Status:         model.OrderStatusPending,
			TotalAmount:    decimal.Zero,
			DiscountAmount: decimal.Zero,
			FinalTotal:     decimal.Zero,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err = s.repo.CreateOrder(ctx, tx, order); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetItemByProduct(ctx, tx, order.ID, req.ProductID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err = s.repo.UpdateItemQuantity(ctx, tx, existing.ID, existing.Quantity+req.Quantity); err != nil {
			return nil, err
		}
	} else {
		item := &model.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductImageURL: product.ImageURL,
			UnitPrice:       product.Price,
			Quantity:        req.Quantity,
			CreatedAt:       now,
		}
		if err = s.repo.InsertItem(ctx, tx, item); err != nil {
			return nil, err
		}
	}

	items, err := s.repo.GetItemsTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	if err = s.recomputeTotals(ctx, tx, order, items); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit cart update")
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return cartResponse(order, items), nil
}

func (s *service) UpdateCartItemQuantity(ctx context.Context, userID uuid.UUID, req *model.UpdateItemRequest) (*model.CartResponse, error) {
	if req.ProductID == "" || req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.repo.GetPendingByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrEmptyCart
		return nil, err
	}

	item, err := s.repo.GetItemByProduct(ctx, tx, order.ID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		err = model.ErrCartItemNotFound
		return nil, err
	}

	if err = s.repo.UpdateItemQuantity(ctx, tx, item.ID, req.Quantity); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	if err = s.recomputeTotals(ctx, tx, order, items); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit cart update")
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return cartResponse(order, items), nil
}

func (s *service) RemoveItemFromCart(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	if productID == "" {
		return nil, model.ValidationError("Product ID is required.")
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.repo.GetPendingByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrEmptyCart
		return nil, err
	}

	item, err := s.repo.GetItemByProduct(ctx, tx, order.ID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		err = model.ErrCartItemNotFound
		return nil, err
	}

	if err = s.repo.DeleteItem(ctx, tx, item.ID); err != nil {
		return nil, err
	}

	// The pending order survives even when its last item goes; the user
	// keeps an empty cart.
	items, err := s.repo.GetItemsTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	if err = s.recomputeTotals(ctx, tx, order, items); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit cart update")
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return cartResponse(order, items), nil
}

func (s *service) ApplyCouponToCart(ctx context.Context, userID uuid.UUID, token, code string) (*model.CartResponse, error) {
	if code == "" {
		return nil, model.ValidationError("Coupon code is required.")
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.repo.GetPendingByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrEmptyCart
		return nil, err
	}

	items, err := s.repo.GetItemsTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		err = model.ErrEmptyOrder
		return nil, err
	}

	total := decimal.Zero
	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		total = total.Add(item.Subtotal())
		itemIDs = append(itemIDs, item.ProductID)
	}

	result, err := s.promotions.ValidateCoupon(ctx, token, code, total, itemIDs)
	if err != nil {
		return nil, err
	}

	order.CouponCode = &code
	order.TotalAmount = total
	order.DiscountAmount = result.DiscountAmount
	order.FinalTotal = total.Sub(result.DiscountAmount)

	if err = s.repo.UpdateTotals(ctx, tx, order.ID, order.TotalAmount, order.DiscountAmount, order.FinalTotal, order.CouponCode); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit coupon application")
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("coupon_code", code).
		Str("discount", result.DiscountAmount.String()).
		Msg("coupon applied to cart")

	return cartResponse(order, items), nil
}

func (s *service) CreatePendingOrder(ctx context.Context, userID uuid.UUID, req *model.CreatePendingRequest) (*model.OrderResponse, error) {
	if req.ShippingAddressID == uuid.Nil {
		return nil, model.ValidationError("Shipping address ID is required.")
	}

	order, err := s.repo.GetPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrEmptyCart
	}

	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, model.ErrEmptyOrder
	}

	if err := s.repo.SetShippingAddress(ctx, order.ID, req.ShippingAddressID); err != nil {
		return nil, err
	}
	order.ShippingAddressID = &req.ShippingAddressID

	s.notifier.Send(ctx, model.Notification{
		UserID:  userID,
		Type:    model.NotificationOrderPending,
		Message: "Your order is ready for payment.",
		Data:    map[string]any{"orderId": order.ID},
	})

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.PlaceOrderRequest) (*model.OrderResponse, error) {
	if req.PaymentMethod == "" {
		return nil, model.ValidationError("Payment method is required.")
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.repo.GetPendingByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrEmptyCart
		return nil, err
	}
	if order.ShippingAddressID == nil {
		err = model.ValidationError("Shipping address is required before placing the order.")
		return nil, err
	}

	items, err := s.repo.GetItemsTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		err = model.ErrEmptyOrder
		return nil, err
	}

	lines := make([]model.DeductLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, model.DeductLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	// Stock is deducted before the status flips; a deduction failure leaves
	// the order pending.
	if err = s.inventory.DeductStock(ctx, model.DeductStockRequest{
		Items:  lines,
		Reason: "order_placed",
	}); err != nil {
		return nil, err
	}

	if err = s.repo.SetPaymentMethod(ctx, tx, order.ID, req.PaymentMethod); err != nil {
		return nil, err
	}

	if err = s.repo.UpdateStatus(ctx, tx, order.ID, model.OrderStatusPlaced); err != nil {
		return nil, err
	}

	redeemCoupon := order.CouponCode != nil && !order.CouponRedeemed
	if redeemCoupon {
		if err = s.repo.MarkCouponRedeemed(ctx, tx, order.ID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit order placement")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	order.Status = model.OrderStatusPlaced
	order.PaymentMethod = &req.PaymentMethod

	if redeemCoupon {
		if markErr := s.promotions.MarkCouponUsed(ctx, *order.CouponCode); markErr != nil {
			s.logger.Error().Err(markErr).
				Str("order_id", order.ID.String()).
				Str("coupon_code", *order.CouponCode).
				Msg("failed to mark coupon used")
		}
		order.CouponRedeemed = true
	}

	s.notifier.Send(ctx, model.Notification{
		UserID:  userID,
		Type:    model.NotificationOrderPlaced,
		Message: "Your order has been placed.",
		Data:    map[string]any{"orderId": order.ID},
	})
	s.notifier.Broadcast(ctx, model.StatusBroadcast{
		UserID:    userID,
		OrderID:   order.ID,
		NewStatus: model.OrderStatusPlaced,
	})

	s.logger.Info().Str("order_id", order.ID.String()).Msg("order placed")

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

func (s *service) GetOrderHistory(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error) {
	orders, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := make([]model.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items, err := s.repo.GetItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		history = append(history, model.OrderResponse{Order: o, Items: items})
	}

	return history, nil
}

func (s *service) GetOrderDetails(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		// Hide other users' orders behind the same 404.
		return nil, model.ErrOrderNotFound
	}

	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

func (s *service) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ValidationError(fmt.Sprintf("Unknown order status %q.", status))
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.repo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		err = model.InvalidTransitionError(order.Status, status)
		return nil, err
	}

	// Leaving pending reserves stock exactly as PlaceOrder does, so a
	// payment-driven placement cannot skip the inventory check. A deduction
	// failure keeps the order pending.
	if order.Status == model.OrderStatusPending && status == model.OrderStatusPlaced {
		var items []model.OrderItem
		items, err = s.repo.GetItemsTx(ctx, tx, order.ID)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			err = model.ErrEmptyOrder
			return nil, err
		}

		lines := make([]model.DeductLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, model.DeductLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		if err = s.inventory.DeductStock(ctx, model.DeductStockRequest{
			Items:  lines,
			Reason: "order_placed",
		}); err != nil {
			return nil, err
		}
	}

	if err = s.repo.UpdateStatus(ctx, tx, order.ID, status); err != nil {
		return nil, err
	}

	redeemCoupon := status == model.OrderStatusPlaced && order.CouponCode != nil && !order.CouponRedeemed
	if redeemCoupon {
		if err = s.repo.MarkCouponRedeemed(ctx, tx, order.ID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit status update")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	previous := order.Status
	order.Status = status

	if redeemCoupon {
		if markErr := s.promotions.MarkCouponUsed(ctx, *order.CouponCode); markErr != nil {
			s.logger.Error().Err(markErr).
				Str("order_id", order.ID.String()).
				Str("coupon_code", *order.CouponCode).
				Msg("failed to mark coupon used")
		}
		order.CouponRedeemed = true
	}

	s.notifier.Send(ctx, model.Notification{
		UserID:  order.UserID,
		Type:    model.NotificationOrderStatusUpdate,
		Message: fmt.Sprintf("Your order is now %s.", status),
		Data:    map[string]any{"orderId": order.ID, "status": status},
	})
	s.notifier.Broadcast(ctx, model.StatusBroadcast{
		UserID:    order.UserID,
		OrderID:   order.ID,
		NewStatus: status,
	})

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("order status updated")

	return order, nil
}

func (s *service) GetPendingOrdersForBatching(ctx context.Context) ([]model.Order, error) {
	return s.repo.GetForBatching(ctx)
}

func (s *service) BatchOrdersForRoute(ctx context.Context, maxBatchSize int) ([]model.RouteBatch, error) {
	if maxBatchSize <= 0 {
		maxBatchSize = defaultMaxBatchSize
	}

	orders, err := s.repo.GetForBatching(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]uuid.UUID)
	for _, o := range orders {
		if o.ShippingAddressID == nil {
			continue
		}
		grouped[*o.ShippingAddressID] = append(grouped[*o.ShippingAddressID], o.ID)
	}

	addresses := make([]uuid.UUID, 0, len(grouped))
	for addr := range grouped {
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].String() < addresses[j].String() })

	var batches []model.RouteBatch
	for _, addr := range addresses {
		ids := grouped[addr]
		for start := 0; start < len(ids); start += maxBatchSize {
			end := start + maxBatchSize
			if end > len(ids) {
				end = len(ids)
			}
			batches = append(batches, model.RouteBatch{
				ShippingAddressID: addr,
				OrderIDs:          ids[start:end],
			})
		}
	}

	return batches, nil
}
