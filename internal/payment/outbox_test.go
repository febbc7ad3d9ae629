package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"swiftmart/internal/client"
	"swiftmart/internal/config"
	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// MockStatusSyncer is a mock implementation of StatusSyncer.
type MockStatusSyncer struct {
	mock.Mock
}

func (m *MockStatusSyncer) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func outboxConfig() config.OutboxConfig {
	return config.OutboxConfig{
		PollInterval: time.Second,
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

func outboxRecord(attempts int) model.OutboxRecord {
	now := time.Now().Add(-time.Minute)
	return model.OutboxRecord{
		ID:            uuid.New(),
		OrderID:       uuid.New(),
		TransactionID: uuid.New(),
		TargetStatus:  model.OrderStatusPlaced,
		Status:        model.OutboxStatusPending,
		Attempts:      attempts,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOutboxWorker_DeliversPendingRecord(t *testing.T) {
	ctx := context.Background()
	rec := outboxRecord(0)

	mockRepo := new(MockRepository)
	mockOrders := new(MockStatusSyncer)
	worker := NewOutboxWorker(mockRepo, mockOrders, outboxConfig(), zerolog.Nop())

	mockRepo.On("GetPendingOutbox", ctx, outboxBatchSize).Return([]model.OutboxRecord{rec}, nil)
	mockOrders.On("UpdateOrderStatus", ctx, rec.OrderID, model.OrderStatusPlaced).Return(nil)
	mockRepo.On("MarkOutboxDelivered", ctx, rec.ID).Return(nil)

	worker.ProcessOnce(ctx)

	mockRepo.AssertExpectations(t)
	mockOrders.AssertExpectations(t)
}

func TestOutboxWorker_RecordsRetryableFailure(t *testing.T) {
	ctx := context.Background()
	rec := outboxRecord(0)

	mockRepo := new(MockRepository)
	mockOrders := new(MockStatusSyncer)
	worker := NewOutboxWorker(mockRepo, mockOrders, outboxConfig(), zerolog.Nop())

	mockRepo.On("GetPendingOutbox", ctx, outboxBatchSize).Return([]model.OutboxRecord{rec}, nil)
	mockOrders.On("UpdateOrderStatus", ctx, rec.OrderID, model.OrderStatusPlaced).
		Return(errors.New("connection refused"))
	mockRepo.On("RecordOutboxFailure", ctx, rec.ID, "connection refused").Return(nil)

	worker.ProcessOnce(ctx)

	mockRepo.AssertNotCalled(t, "MarkOutboxDelivered")
	mockRepo.AssertNotCalled(t, "MarkOutboxAbandoned")
	mockRepo.AssertExpectations(t)
}

func TestOutboxWorker_KeepsRetryingPastMaxAttempts(t *testing.T) {
	ctx := context.Background()
	// Far past MaxAttempts: a prolonged order service outage must not
	// lose the record, only keep it retrying at the capped delay.
	rec := outboxRecord(7)

	mockRepo := new(MockRepository)
	mockOrders := new(MockStatusSyncer)
	worker := NewOutboxWorker(mockRepo, mockOrders, outboxConfig(), zerolog.Nop())

	mockRepo.On("GetPendingOutbox", ctx, outboxBatchSize).Return([]model.OutboxRecord{rec}, nil)
	mockOrders.On("UpdateOrderStatus", ctx, rec.OrderID, model.OrderStatusPlaced).
		Return(errors.New("connection refused"))
	mockRepo.On("RecordOutboxFailure", ctx, rec.ID, "connection refused").Return(nil)

	worker.ProcessOnce(ctx)

	mockRepo.AssertNotCalled(t, "MarkOutboxAbandoned")
	mockRepo.AssertExpectations(t)
}

func TestOutboxWorker_AbandonsOnPermanentRejection(t *testing.T) {
	ctx := context.Background()
	rec := outboxRecord(0)

	mockRepo := new(MockRepository)
	mockOrders := new(MockStatusSyncer)
	worker := NewOutboxWorker(mockRepo, mockOrders, outboxConfig(), zerolog.Nop())

	rejection := &client.PermanentError{Message: "Cannot transition order from cancelled to placed."}

	mockRepo.On("GetPendingOutbox", ctx, outboxBatchSize).Return([]model.OutboxRecord{rec}, nil)
	mockOrders.On("UpdateOrderStatus", ctx, rec.OrderID, model.OrderStatusPlaced).Return(rejection)
	mockRepo.On("MarkOutboxAbandoned", ctx, rec.ID, rejection.Message).Return(nil)

	worker.ProcessOnce(ctx)

	// A definitive rejection is never retried.
	mockRepo.AssertNotCalled(t, "RecordOutboxFailure")
	mockRepo.AssertExpectations(t)
}

func TestOutboxWorker_RespectsBackoffWindow(t *testing.T) {
	ctx := context.Background()

	rec := outboxRecord(1)
	rec.UpdatedAt = time.Now()

	mockRepo := new(MockRepository)
	mockOrders := new(MockStatusSyncer)
	worker := NewOutboxWorker(mockRepo, mockOrders, outboxConfig(), zerolog.Nop())

	mockRepo.On("GetPendingOutbox", ctx, outboxBatchSize).Return([]model.OutboxRecord{rec}, nil)

	worker.ProcessOnce(ctx)

	// The record failed moments ago; its backoff delay has not elapsed.
	mockOrders.AssertNotCalled(t, "UpdateOrderStatus")

	// Once the clock moves past the delay the record is eligible again.
	worker.clock = func() time.Time { return time.Now().Add(time.Minute) }
	mockOrders.On("UpdateOrderStatus", ctx, rec.OrderID, model.OrderStatusPlaced).Return(nil)
	mockRepo.On("MarkOutboxDelivered", ctx, rec.ID).Return(nil)

	worker.ProcessOnce(ctx)

	mockOrders.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestOutboxWorker_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	mockRepo := new(MockRepository)
	mockOrders := new(MockStatusSyncer)

	cfg := outboxConfig()
	cfg.PollInterval = 10 * time.Millisecond
	worker := NewOutboxWorker(mockRepo, mockOrders, cfg, zerolog.Nop())

	mockRepo.On("GetPendingOutbox", mock.Anything, outboxBatchSize).Return([]model.OutboxRecord{}, nil).Maybe()

	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
