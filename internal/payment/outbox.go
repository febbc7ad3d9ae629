package payment

import (
	"context"
	"errors"
	"time"

	"swiftmart/internal/client"
	"swiftmart/internal/config"
	"swiftmart/internal/model"
	"swiftmart/internal/retry"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const outboxBatchSize = 50

// StatusSyncer applies order status updates on the order service.
type StatusSyncer interface {
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error
}

// OutboxWorker polls pending outbox records and delivers them to the order
// service. Delivery failures back off exponentially across poll cycles using
// the persisted attempt count, capped at MaxDelay; transient failures retry
// indefinitely so an order service outage never loses an update. Only a
// permanent rejection from the order service abandons a record.
type OutboxWorker struct {
	repo    Repository
	orders  StatusSyncer
	backoff retry.Config
	poll    time.Duration
	clock   func() time.Time
	logger  zerolog.Logger
}

// NewOutboxWorker creates the delivery worker.
func NewOutboxWorker(repo Repository, orders StatusSyncer, cfg config.OutboxConfig, logger zerolog.Logger) *OutboxWorker {
	return &OutboxWorker{
		repo:   repo,
		orders: orders,
		backoff: retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      cfg.MaxDelay,
			BackoffFactor: 2.0,
		},
		poll:   cfg.PollInterval,
		clock:  time.Now,
		logger: logger.With().Str("worker", "payment_outbox").Logger(),
	}
}

// Run polls until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) {
	w.logger.Info().Dur("poll_interval", w.poll).Msg("outbox worker started")

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce runs a single poll cycle.
func (w *OutboxWorker) ProcessOnce(ctx context.Context) {
	records, err := w.repo.GetPendingOutbox(ctx, outboxBatchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load pending outbox records")
		return
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, rec)
	}
}

func (w *OutboxWorker) deliver(ctx context.Context, rec model.OutboxRecord) {
	// Respect the backoff window: the delay before attempt N is derived
	// from the persisted attempt count, so restarts keep their place in
	// the schedule.
	wait := w.backoff.Delay(rec.Attempts + 1)
	if w.clock().Before(rec.UpdatedAt.Add(wait)) {
		return
	}

	err := w.orders.UpdateOrderStatus(ctx, rec.OrderID, rec.TargetStatus)
	if err == nil {
		if markErr := w.repo.MarkOutboxDelivered(ctx, rec.ID); markErr != nil {
			w.logger.Error().Err(markErr).Str("outbox_id", rec.ID.String()).Msg("delivered but failed to mark outbox record")
		}
		w.logger.Info().
			Str("outbox_id", rec.ID.String()).
			Str("order_id", rec.OrderID.String()).
			Str("target_status", string(rec.TargetStatus)).
			Msg("order status sync delivered")
		return
	}

	var permanent *client.PermanentError
	if errors.As(err, &permanent) {
		w.logger.Error().
			Str("outbox_id", rec.ID.String()).
			Str("order_id", rec.OrderID.String()).
			Str("reason", permanent.Message).
			Msg("order status sync permanently rejected")
		w.abandon(ctx, rec, err)
		return
	}

	// Transient failures keep retrying at the capped delay. MaxAttempts
	// only escalates the log level so a prolonged outage shows up in
	// error monitoring.
	evt := w.logger.Warn()
	if rec.Attempts+1 >= w.backoff.MaxAttempts {
		evt = w.logger.Error()
	}
	evt.
		Err(err).
		Str("outbox_id", rec.ID.String()).
		Int("attempt", rec.Attempts+1).
		Msg("order status sync failed, will retry")

	if recErr := w.repo.RecordOutboxFailure(ctx, rec.ID, err.Error()); recErr != nil {
		w.logger.Error().Err(recErr).Str("outbox_id", rec.ID.String()).Msg("failed to record outbox failure")
	}
}

func (w *OutboxWorker) abandon(ctx context.Context, rec model.OutboxRecord, cause error) {
	if err := w.repo.MarkOutboxAbandoned(ctx, rec.ID, cause.Error()); err != nil {
		w.logger.Error().Err(err).Str("outbox_id", rec.ID.String()).Msg("failed to mark outbox record abandoned")
	}
}
