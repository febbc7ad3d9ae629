package payment

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

// Repository defines data access for transactions and the status-sync
// outbox. Finalization writes both in one transaction so a payment outcome
// can never be recorded without its order-status delivery obligation.
type Repository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new transaction.
	Create(ctx context.Context, t *model.Transaction) error

	// GetPendingByOrder retrieves the order's pending transaction, nil when
	// absent.
	GetPendingByOrder(ctx context.Context, orderID uuid.UUID) (*model.Transaction, error)

	// GetByIntent retrieves the transaction for a gateway intent and order,
	// nil when absent.
	GetByIntent(ctx context.Context, intentID string, orderID uuid.UUID) (*model.Transaction, error)

	// GetByOrder retrieves the order's transactions, newest first.
	GetByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Transaction, error)

	// UpdateStatus sets the transaction status within the transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.TransactionStatus) error

	// CreateOutbox inserts an outbox record within the transaction.
	CreateOutbox(ctx context.Context, tx pgx.Tx, rec *model.OutboxRecord) error

	// GetPendingOutbox retrieves undelivered outbox records, oldest first.
	GetPendingOutbox(ctx context.Context, limit int) ([]model.OutboxRecord, error)

	// MarkOutboxDelivered marks a record as delivered.
	MarkOutboxDelivered(ctx context.Context, id uuid.UUID) error

	// RecordOutboxFailure increments the attempt count and stores the last
	// delivery error.
	RecordOutboxFailure(ctx context.Context, id uuid.UUID, lastError string) error

	// MarkOutboxAbandoned marks a record as abandoned with its final error.
	MarkOutboxAbandoned(ctx context.Context, id uuid.UUID, lastError string) error
}

type repository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRepository creates a PostgreSQL-backed payment repository.
func NewRepository(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &repository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
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

const transactionColumns = `
	id, order_id, user_id, amount, currency, payment_gateway,
	gateway_transaction_id, status, created_at, updated_at
`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID,
		&t.OrderID,
		&t.UserID,
		&t.Amount,
		&t.Currency,
		&t.PaymentGateway,
		&t.GatewayTransactionID,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) Create(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, order_id, user_id, amount, currency, payment_gateway,
			gateway_transaction_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.OrderID,
		t.UserID,
		t.Amount,
		t.Currency,
		t.PaymentGateway,
		t.GatewayTransactionID,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", t.OrderID.String()).Msg("failed to create transaction")
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *repository) GetPendingByOrder(ctx context.Context, orderID uuid.UUID) (*model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE order_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get pending transaction")
		return nil, fmt.Errorf("failed to get pending transaction: %w", err)
	}
	return t, nil
}

func (r *repository) GetByIntent(ctx context.Context, intentID string, orderID uuid.UUID) (*model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE gateway_transaction_id = $1 AND order_id = $2
	`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, intentID, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("intent_id", intentID).Msg("failed to get transaction")
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *repository) GetByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE order_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query transactions")
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan transaction row")
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating transaction rows")
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func (r *repository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.TransactionStatus) error {
	query := `UPDATE transactions SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("transaction_id", id.String()).Msg("failed to update transaction status")
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTransactionMissing
	}

	return nil
}

func (r *repository) CreateOutbox(ctx context.Context, tx pgx.Tx, rec *model.OutboxRecord) error {
	query := `
		INSERT INTO payment_outbox (
			id, order_id, transaction_id, target_status, status, attempts,
			last_error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		rec.ID,
		rec.OrderID,
		rec.TransactionID,
		rec.TargetStatus,
		rec.Status,
		rec.Attempts,
		rec.LastError,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", rec.OrderID.String()).Msg("failed to create outbox record")
		return fmt.Errorf("failed to create outbox record: %w", err)
	}

	return nil
}

func (r *repository) GetPendingOutbox(ctx context.Context, limit int) ([]model.OutboxRecord, error) {
	query := `
		SELECT id, order_id, transaction_id, target_status, status, attempts,
			last_error, created_at, updated_at
		FROM payment_outbox
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query pending outbox")
		return nil, fmt.Errorf("failed to query pending outbox: %w", err)
	}
	defer rows.Close()

	var records []model.OutboxRecord
	for rows.Next() {
		var rec model.OutboxRecord
		err := rows.Scan(
			&rec.ID,
			&rec.OrderID,
			&rec.TransactionID,
			&rec.TargetStatus,
			&rec.Status,
			&rec.Attempts,
			&rec.LastError,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan outbox row")
			return nil, fmt.Errorf("failed to scan outbox record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating outbox rows")
		return nil, fmt.Errorf("error iterating outbox records: %w", err)
	}

	return records, nil
}

func (r *repository) MarkOutboxDelivered(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE payment_outbox
		SET status = 'delivered', attempts = attempts + 1, last_error = NULL,
			updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("outbox_id", id.String()).Msg("failed to mark outbox record delivered")
		return fmt.Errorf("failed to mark outbox record delivered: %w", err)
	}

	return nil
}

func (r *repository) RecordOutboxFailure(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
		UPDATE payment_outbox
		SET attempts = attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, lastError)
	if err != nil {
		r.logger.Error().Err(err).Str("outbox_id", id.String()).Msg("failed to record outbox failure")
		return fmt.Errorf("failed to record outbox failure: %w", err)
	}

	return nil
}

func (r *repository) MarkOutboxAbandoned(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
		UPDATE payment_outbox
		SET status = 'abandoned', attempts = attempts + 1, last_error = $2,
			updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, lastError)
	if err != nil {
		r.logger.Error().Err(err).Str("outbox_id", id.String()).Msg("failed to mark outbox record abandoned")
		return fmt.Errorf("failed to mark outbox record abandoned: %w", err)
	}

	return nil
}
