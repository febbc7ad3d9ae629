package payment

import (
	"context"
	"fmt"
	"time"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service defines payment operations.
type Service interface {
	// CreateIntent records a pending transaction for the order and returns
	// the gateway intent. Retried calls for an order with a pending
	// transaction return the existing intent instead of minting a duplicate.
	CreateIntent(ctx context.Context, userID uuid.UUID, req *model.CreateIntentRequest) (*model.CreateIntentResponse, error)

	// Finalize settles a pending transaction. A succeeded payment enqueues
	// an order status sync targeting placed; the HTTP response reflects the
	// payment outcome only.
	Finalize(ctx context.Context, req *model.FinalizeRequest) (*model.FinalizeResponse, error)

	// GetTransactions retrieves the order's transactions, newest first.
	GetTransactions(ctx context.Context, orderID uuid.UUID) ([]model.Transaction, error)
}

type service struct {
	repo    Repository
	gateway Gateway
	logger  zerolog.Logger
}

// NewService creates a new payment service.
func NewService(repo Repository, gateway Gateway, logger zerolog.Logger) Service {
	return &service{
		repo:    repo,
		gateway: gateway,
		logger:  logger.With().Str("service", "payment").Logger(),
	}
}

func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID, req *model.CreateIntentRequest) (*model.CreateIntentResponse, error) {
	if req.OrderID == uuid.Nil {
		return nil, model.ValidationError("Order ID is required.")
	}
	if !req.Amount.IsPositive() {
		return nil, model.ValidationError("Amount must be greater than zero.")
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	existing, err := s.repo.GetPendingByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info().
			Str("order_id", req.OrderID.String()).
			Str("intent_id", existing.GatewayTransactionID).
			Msg("reusing pending payment intent")
		return &model.CreateIntentResponse{
			Message:         "Payment intent already exists for this order.",
			PaymentIntentID: existing.GatewayTransactionID,
			ClientSecret:    s.gateway.ClientSecret(existing.GatewayTransactionID),
		}, nil
	}

	intentID, clientSecret, err := s.gateway.CreateIntent(ctx, req.Amount, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	now := time.Now()
	transaction := &model.Transaction{
		ID:                   uuid.New(),
		OrderID:              req.OrderID,
		UserID:               userID,
		Amount:               req.Amount,
		Currency:             currency,
		PaymentGateway:       "mock",
		GatewayTransactionID: intentID,
		Status:               model.TransactionStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", req.OrderID.String()).
		Str("intent_id", intentID).
		Str("amount", req.Amount.String()).
		Msg("payment intent created")

	return &model.CreateIntentResponse{
		Message:         "Payment intent created.",
		PaymentIntentID: intentID,
		ClientSecret:    clientSecret,
	}, nil
}

func (s *service) Finalize(ctx context.Context, req *model.FinalizeRequest) (*model.FinalizeResponse, error) {
	if req.PaymentIntentID == "" || req.OrderID == uuid.Nil {
		return nil, model.ValidationError("Payment intent ID and order ID are required.")
	}

	transaction, err := s.repo.GetByIntent(ctx, req.PaymentIntentID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, model.ErrTransactionMissing
	}

	// Finalize is idempotent once the transaction is terminal.
	if transaction.Status != model.TransactionStatusPending {
		return &model.FinalizeResponse{
			Message: "Payment already finalized.",
			Status:  transaction.Status,
		}, nil
	}

	outcome, err := s.gateway.Confirm(ctx, req.PaymentIntentID, req.FinalStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.repo.UpdateStatus(ctx, tx, transaction.ID, outcome); err != nil {
		return nil, err
	}

	// The order status sync rides in the same transaction as the payment
	// outcome. The outbox worker delivers it; a failed payment leaves the
	// order pending so no record is needed.
	if outcome == model.TransactionStatusSucceeded {
		now := time.Now()
		rec := &model.OutboxRecord{
			ID:            uuid.New(),
			OrderID:       transaction.OrderID,
			TransactionID: transaction.ID,
			TargetStatus:  model.OrderStatusPlaced,
			Status:        model.OutboxStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err = s.repo.CreateOutbox(ctx, tx, rec); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", transaction.ID.String()).Msg("failed to commit finalization")
		return nil, fmt.Errorf("failed to finalize payment: %w", err)
	}

	s.logger.Info().
		Str("order_id", transaction.OrderID.String()).
		Str("transaction_id", transaction.ID.String()).
		Str("outcome", string(outcome)).
		Msg("payment finalized")

	return &model.FinalizeResponse{
		Message: fmt.Sprintf("Payment %s.", outcome),
		Status:  outcome,
	}, nil
}

func (s *service) GetTransactions(ctx context.Context, orderID uuid.UUID) ([]model.Transaction, error) {
	return s.repo.GetByOrder(ctx, orderID)
}
