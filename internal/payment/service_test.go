package payment

import (
	"context"
	"testing"
	"time"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, t *model.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetPendingByOrder(ctx context.Context, orderID uuid.UUID) (*model.Transaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockRepository) GetByIntent(ctx context.Context, intentID string, orderID uuid.UUID) (*model.Transaction, error) {
	args := m.Called(ctx, intentID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Transaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.TransactionStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockRepository) CreateOutbox(ctx context.Context, tx pgx.Tx, rec *model.OutboxRecord) error {
	args := m.Called(ctx, tx, rec)
	return args.Error(0)
}

func (m *MockRepository) GetPendingOutbox(ctx context.Context, limit int) ([]model.OutboxRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OutboxRecord), args.Error(1)
}

func (m *MockRepository) MarkOutboxDelivered(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) RecordOutboxFailure(ctx context.Context, id uuid.UUID, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

func (m *MockRepository) MarkOutboxAbandoned(ctx context.Context, id uuid.UUID, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

// MockGateway is a mock implementation of Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, string, error) {
	args := m.Called(ctx, amount, currency)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockGateway) ClientSecret(intentID string) string {
	args := m.Called(intentID)
	return args.String(0)
}

func (m *MockGateway) Confirm(ctx context.Context, intentID string, hint model.TransactionStatus) (model.TransactionStatus, error) {
	args := m.Called(ctx, intentID, hint)
	return args.Get(0).(model.TransactionStatus), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func pendingTransaction(orderID uuid.UUID) *model.Transaction {
	return &model.Transaction{
		ID:                   uuid.New(),
		OrderID:              orderID,
		UserID:               uuid.New(),
		Amount:               decimal.RequireFromString("27.00"),
		Currency:             "USD",
		PaymentGateway:       "mock",
		GatewayTransactionID: "pi_abc123",
		Status:               model.TransactionStatusPending,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
}

func TestPaymentService_CreateIntent(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	service := NewService(mockRepo, mockGateway, zerolog.Nop())

	amount := decimal.RequireFromString("27.00")
	mockRepo.On("GetPendingByOrder", ctx, orderID).Return(nil, nil)
	mockGateway.On("CreateIntent", ctx, amount, "USD").Return("pi_abc123", "sec_abc123", nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Transaction")).Return(nil)

	resp, err := service.CreateIntent(ctx, userID, &model.CreateIntentRequest{
		OrderID: orderID,
		Amount:  amount,
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "pi_abc123", resp.PaymentIntentID)
	assert.Equal(t, "sec_abc123", resp.ClientSecret)

	created := mockRepo.Calls[1].Arguments.Get(1).(*model.Transaction)
	assert.Equal(t, orderID, created.OrderID)
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, model.TransactionStatusPending, created.Status)
	assert.Equal(t, "pi_abc123", created.GatewayTransactionID)

	mockRepo.AssertExpectations(t)
	mockGateway.AssertExpectations(t)
}

func TestPaymentService_CreateIntent_ReusesPendingTransaction(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	existing := pendingTransaction(orderID)

	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	service := NewService(mockRepo, mockGateway, zerolog.Nop())

	mockRepo.On("GetPendingByOrder", ctx, orderID).Return(existing, nil)
	mockGateway.On("ClientSecret", "pi_abc123").Return("sec_abc123")

	resp, err := service.CreateIntent(ctx, uuid.New(), &model.CreateIntentRequest{
		OrderID: orderID,
		Amount:  decimal.RequireFromString("27.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_abc123", resp.PaymentIntentID)
	assert.Equal(t, "sec_abc123", resp.ClientSecret)

	// No duplicate pending transaction is minted for the same order.
	mockRepo.AssertNotCalled(t, "Create")
	mockGateway.AssertNotCalled(t, "CreateIntent")
}

func TestPaymentService_CreateIntent_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	service := NewService(mockRepo, mockGateway, zerolog.Nop())

	tests := []struct {
		name string
		req  *model.CreateIntentRequest
	}{
		{
			name: "Missing order ID",
			req:  &model.CreateIntentRequest{Amount: decimal.RequireFromString("10.00")},
		},
		{
			name: "Zero amount",
			req:  &model.CreateIntentRequest{OrderID: uuid.New(), Amount: decimal.Zero},
		},
		{
			name: "Negative amount",
			req:  &model.CreateIntentRequest{OrderID: uuid.New(), Amount: decimal.RequireFromString("-5.00")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.CreateIntent(ctx, uuid.New(), tt.req)
			require.Error(t, err)
			assert.Nil(t, resp)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
		})
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestPaymentService_Finalize_Succeeded(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	transaction := pendingTransaction(orderID)

	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	mockTx := new(MockTx)
	service := NewService(mockRepo, mockGateway, zerolog.Nop())

	mockRepo.On("GetByIntent", ctx, "pi_abc123", orderID).Return(transaction, nil)
	mockGateway.On("Confirm", ctx, "pi_abc123", model.TransactionStatusSucceeded).
		Return(model.TransactionStatusSucceeded, nil)
	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("UpdateStatus", ctx, mockTx, transaction.ID, model.TransactionStatusSucceeded).Return(nil)
	mockRepo.On("CreateOutbox", ctx, mockTx, mock.AnythingOfType("*model.OutboxRecord")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Finalize(ctx, &model.FinalizeRequest{
		PaymentIntentID: "pi_abc123",
		OrderID:         orderID,
		FinalStatus:     model.TransactionStatusSucceeded,
	})

	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusSucceeded, resp.Status)

	// The sync obligation targets placed and rides in the same transaction.
	var rec *model.OutboxRecord
	for _, call := range mockRepo.Calls {
		if call.Method == "CreateOutbox" {
			rec = call.Arguments.Get(2).(*model.OutboxRecord)
		}
	}
	require.NotNil(t, rec)
	assert.Equal(t, orderID, rec.OrderID)
	assert.Equal(t, transaction.ID, rec.TransactionID)
	assert.Equal(t, model.OrderStatusPlaced, rec.TargetStatus)
	assert.Equal(t, model.OutboxStatusPending, rec.Status)

	mockRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestPaymentService_Finalize_Failed(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	transaction := pendingTransaction(orderID)

	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	mockTx := new(MockTx)
	service := NewService(mockRepo, mockGateway, zerolog.Nop())

	mockRepo.On("GetByIntent", ctx, "pi_abc123", orderID).Return(transaction, nil)
	mockGateway.On("Confirm", ctx, "pi_abc123", model.TransactionStatusFailed).
		Return(model.TransactionStatusFailed, nil)
	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("UpdateStatus", ctx, mockTx, transaction.ID, model.TransactionStatusFailed).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Finalize(ctx, &model.FinalizeRequest{
		PaymentIntentID: "pi_abc123",
		OrderID:         orderID,
		FinalStatus:     model.TransactionStatusFailed,
	})

	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusFailed, resp.Status)

	// A failed payment leaves the order pending; nothing to deliver.
	mockRepo.AssertNotCalled(t, "CreateOutbox")
	mockTx.AssertExpectations(t)
}

func TestPaymentService_Finalize_UnknownTransaction(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	service := NewService(mockRepo, mockGateway, zerolog.Nop())

	mockRepo.On("GetByIntent", ctx, "pi_missing", orderID).Return(nil, nil)

	resp, err := service.Finalize(ctx, &model.FinalizeRequest{
		PaymentIntentID: "pi_missing",
		OrderID:         orderID,
		FinalStatus:     model.TransactionStatusSucceeded,
	})

	require.Error(t, err)
	assert.Equal(t, model.ErrTransactionMissing, err)
	assert.Nil(t, resp)
	mockGateway.AssertNotCalled(t, "Confirm")
}

func TestPaymentService_Finalize_AlreadyFinalized(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	transaction := pendingTransaction(orderID)
	transaction.Status = model.TransactionStatusSucceeded

	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	service := NewService(mockRepo, mockGateway, zerolog.Nop())

	mockRepo.On("GetByIntent", ctx, "pi_abc123", orderID).Return(transaction, nil)

	resp, err := service.Finalize(ctx, &model.FinalizeRequest{
		PaymentIntentID: "pi_abc123",
		OrderID:         orderID,
		FinalStatus:     model.TransactionStatusSucceeded,
	})

	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusSucceeded, resp.Status)

	mockGateway.AssertNotCalled(t, "Confirm")
	mockRepo.AssertNotCalled(t, "BeginTx")
}

func TestMockGateway_Confirm_HonoursHint(t *testing.T) {
	ctx := context.Background()
	gateway := NewMockGateway()

	outcome, err := gateway.Confirm(ctx, "pi_x", model.TransactionStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusFailed, outcome)

	outcome, err = gateway.Confirm(ctx, "pi_x", model.TransactionStatusSucceeded)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusSucceeded, outcome)
}

func TestMockGateway_CreateIntent_Prefixes(t *testing.T) {
	ctx := context.Background()
	gateway := NewMockGateway()

	intentID, secret, err := gateway.CreateIntent(ctx, decimal.RequireFromString("10.00"), "USD")
	require.NoError(t, err)
	assert.True(t, len(intentID) > len(intentPrefix))
	assert.Contains(t, intentID, intentPrefix)
	assert.Contains(t, secret, secretPrefix)
	assert.Equal(t, secret, gateway.ClientSecret(intentID))
}
