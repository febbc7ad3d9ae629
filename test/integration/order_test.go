package integration

import (
	"context"
	"testing"
	"time"

	"swiftmart/internal/model"
	"swiftmart/internal/order"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, repo order.Repository, userID uuid.UUID, status model.OrderStatus) *model.Order {
	t.Helper()

	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	now := time.Now().UTC()
	o := &model.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         status,
		TotalAmount:    decimal.Zero,
		DiscountAmount: decimal.Zero,
		FinalTotal:     decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repo.CreateOrder(ctx, tx, o))
	require.NoError(t, tx.Commit(ctx))
	return o
}

func seedItem(t *testing.T, repo order.Repository, orderID uuid.UUID, productID string, price string, quantity int) *model.OrderItem {
	t.Helper()

	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	item := &model.OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: "Product " + productID,
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    quantity,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.InsertItem(ctx, tx, item))
	require.NoError(t, tx.Commit(ctx))
	return item
}

func TestOrderRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	repo := order.NewRepository(db.Pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("one pending order per user", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		userID := uuid.New()
		seedOrder(t, repo, userID, model.OrderStatusPending)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		err = repo.CreateOrder(ctx, tx, &model.Order{
			ID:             uuid.New(),
			UserID:         userID,
			Status:         model.OrderStatusPending,
			TotalAmount:    decimal.Zero,
			DiscountAmount: decimal.Zero,
			FinalTotal:     decimal.Zero,
			CreatedAt:      time.Now().UTC(),
			UpdatedAt:      time.Now().UTC(),
		})
		assert.Error(t, err)
		tx.Rollback(ctx)

		// A second non-pending order for the same user is fine.
		seedOrder(t, repo, userID, model.OrderStatusPlaced)
	})

	t.Run("pending lookup returns nil when absent", func(t *testing.T) {
		got, err := repo.GetPendingByUser(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("totals round trip with items", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		userID := uuid.New()
		o := seedOrder(t, repo, userID, model.OrderStatusPending)
		seedItem(t, repo, o.ID, "P001", "10.00", 3)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		code := "SAVE10"
		require.NoError(t, repo.UpdateTotals(ctx, tx, o.ID,
			decimal.RequireFromString("30.00"),
			decimal.RequireFromString("3.00"),
			decimal.RequireFromString("27.00"),
			&code,
		))
		require.NoError(t, tx.Commit(ctx))

		got, err := repo.GetPendingByUser(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("30.00")))
		assert.True(t, got.DiscountAmount.Equal(decimal.RequireFromString("3.00")))
		assert.True(t, got.FinalTotal.Equal(decimal.RequireFromString("27.00")))
		require.NotNil(t, got.CouponCode)
		assert.Equal(t, "SAVE10", *got.CouponCode)

		items, err := repo.GetItems(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)
	})

	t.Run("status update and history ordering", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		userID := uuid.New()
		first := seedOrder(t, repo, userID, model.OrderStatusPlaced)
		second := seedOrder(t, repo, userID, model.OrderStatusDelivered)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, tx, first.ID, model.OrderStatusProcessing))
		require.NoError(t, tx.Commit(ctx))

		history, err := repo.GetByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		// Newest first.
		assert.Equal(t, second.ID, history[0].ID)
		assert.Equal(t, model.OrderStatusProcessing, history[1].Status)
	})

	t.Run("batching candidates need a shipping address", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		withAddress := seedOrder(t, repo, uuid.New(), model.OrderStatusPlaced)
		addrID := uuid.New()
		require.NoError(t, repo.SetShippingAddress(ctx, withAddress.ID, addrID))

		seedOrder(t, repo, uuid.New(), model.OrderStatusPlaced) // no address
		seedOrder(t, repo, uuid.New(), model.OrderStatusDelivered)

		candidates, err := repo.GetForBatching(ctx)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, withAddress.ID, candidates[0].ID)
		require.NotNil(t, candidates[0].ShippingAddressID)
		assert.Equal(t, addrID, *candidates[0].ShippingAddressID)
	})

	t.Run("coupon redeemed flag set once", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		o := seedOrder(t, repo, uuid.New(), model.OrderStatusPending)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.MarkCouponRedeemed(ctx, tx, o.ID))
		require.NoError(t, tx.Commit(ctx))

		got, err := repo.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, got.CouponRedeemed)
	})
}
