package integration

import (
	"context"
	"testing"
	"time"

	"swiftmart/internal/model"
	"swiftmart/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTransaction(t *testing.T, repo payment.Repository, orderID uuid.UUID, status model.TransactionStatus) *model.Transaction {
	t.Helper()

	now := time.Now().UTC()
	txn := &model.Transaction{
		ID:                   uuid.New(),
		OrderID:              orderID,
		UserID:               uuid.New(),
		Amount:               decimal.RequireFromString("27.00"),
		Currency:             "USD",
		PaymentGateway:       "mock",
		GatewayTransactionID: "pi_" + uuid.NewString()[:8],
		Status:               status,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	require.NoError(t, repo.Create(context.Background(), txn))
	return txn
}

func TestPaymentRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	repo := payment.NewRepository(db.Pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("pending transaction lookup", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		orderID := uuid.New()
		txn := seedTransaction(t, repo, orderID, model.TransactionStatusPending)

		got, err := repo.GetPendingByOrder(ctx, orderID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, txn.ID, got.ID)

		none, err := repo.GetPendingByOrder(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("status update and outbox written in one transaction", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		orderID := uuid.New()
		txn := seedTransaction(t, repo, orderID, model.TransactionStatusPending)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)

		require.NoError(t, repo.UpdateStatus(ctx, tx, txn.ID, model.TransactionStatusSucceeded))

		now := time.Now().UTC()
		require.NoError(t, repo.CreateOutbox(ctx, tx, &model.OutboxRecord{
			ID:            uuid.New(),
			OrderID:       orderID,
			TransactionID: txn.ID,
			TargetStatus:  model.OrderStatusPlaced,
			Status:        model.OutboxStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}))
		require.NoError(t, tx.Commit(ctx))

		transactions, err := repo.GetByOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, transactions, 1)
		assert.Equal(t, model.TransactionStatusSucceeded, transactions[0].Status)

		pending, err := repo.GetPendingOutbox(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, orderID, pending[0].OrderID)
		assert.Equal(t, model.OrderStatusPlaced, pending[0].TargetStatus)
	})

	t.Run("rolled back finalization leaves nothing behind", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		orderID := uuid.New()
		txn := seedTransaction(t, repo, orderID, model.TransactionStatusPending)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, tx, txn.ID, model.TransactionStatusSucceeded))
		require.NoError(t, tx.Rollback(ctx))

		transactions, err := repo.GetByOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, transactions, 1)
		assert.Equal(t, model.TransactionStatusPending, transactions[0].Status)

		pending, err := repo.GetPendingOutbox(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("outbox delivery lifecycle", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		orderID := uuid.New()
		txn := seedTransaction(t, repo, orderID, model.TransactionStatusSucceeded)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		rec := &model.OutboxRecord{
			ID:            uuid.New(),
			OrderID:       orderID,
			TransactionID: txn.ID,
			TargetStatus:  model.OrderStatusPlaced,
			Status:        model.OutboxStatusPending,
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		}
		require.NoError(t, repo.CreateOutbox(ctx, tx, rec))
		require.NoError(t, tx.Commit(ctx))

		require.NoError(t, repo.RecordOutboxFailure(ctx, rec.ID, "connection refused"))

		pending, err := repo.GetPendingOutbox(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 1, pending[0].Attempts)
		require.NotNil(t, pending[0].LastError)
		assert.Equal(t, "connection refused", *pending[0].LastError)

		require.NoError(t, repo.MarkOutboxDelivered(ctx, rec.ID))

		pending, err = repo.GetPendingOutbox(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("abandoned records are no longer picked up", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		orderID := uuid.New()
		txn := seedTransaction(t, repo, orderID, model.TransactionStatusSucceeded)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		rec := &model.OutboxRecord{
			ID:            uuid.New(),
			OrderID:       orderID,
			TransactionID: txn.ID,
			TargetStatus:  model.OrderStatusPlaced,
			Status:        model.OutboxStatusPending,
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		}
		require.NoError(t, repo.CreateOutbox(ctx, tx, rec))
		require.NoError(t, tx.Commit(ctx))

		require.NoError(t, repo.MarkOutboxAbandoned(ctx, rec.ID, "order rejected the transition"))

		pending, err := repo.GetPendingOutbox(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}
