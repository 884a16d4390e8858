package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ScannerConfig bounds one sweep of the failed-payment scanner.
type ScannerConfig struct {
	MaxAttempts int
	BatchSize   int
	// ProcessingTimeout is how long a payment may sit in Processing before
	// the sweep assumes its worker died and fails it so the retry query can
	// see it again.
	ProcessingTimeout time.Duration
	// PendingGrace is how old a Pending payment must be before the sweep
	// re-enqueues it (covers a crash between commit and enqueue at
	// creation time).
	PendingGrace time.Duration
}

// Scanner periodically re-submits eligible failed payments to the queue. It
// holds no state of its own and is safe to run concurrently with itself:
// duplicate enqueues are absorbed by the pipeline's idempotent guard.
type Scanner struct {
	payments Repository
	queue    Queue
	cfg      ScannerConfig
	logger   zerolog.Logger
}

// NewScanner creates a new Scanner.
func NewScanner(payments Repository, queue Queue, cfg ScannerConfig, logger zerolog.Logger) *Scanner {
	return &Scanner{payments: payments, queue: queue, cfg: cfg, logger: logger}
}

// CollectRetryCandidates returns failed payments still under the attempt
// ceiling, oldest attempt first, capped at the batch size.
func (s *Scanner) CollectRetryCandidates(ctx context.Context) ([]uuid.UUID, error) {
	return s.payments.ListFailedForRetry(ctx, s.cfg.MaxAttempts, s.cfg.BatchSize)
}

// Sweep runs one scanner pass and returns how many payments were enqueued.
func (s *Scanner) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	// Payments stuck in Processing past the timeout are failed first so the
	// retry query below picks them up in the same pass.
	if s.cfg.ProcessingTimeout > 0 {
		swept, err := s.payments.FailStaleProcessing(ctx, now.Add(-s.cfg.ProcessingTimeout), "processing timed out")
		if err != nil {
			return 0, err
		}
		if swept > 0 {
			s.logger.Warn().Int("count", swept).Msg("failed stale processing payments")
		}
	}

	ids, err := s.CollectRetryCandidates(ctx)
	if err != nil {
		return 0, err
	}

	// Pending rows orphaned by a crash between create-commit and enqueue.
	if s.cfg.PendingGrace > 0 {
		pending, err := s.payments.ListStalePending(ctx, now.Add(-s.cfg.PendingGrace), s.cfg.BatchSize)
		if err != nil {
			return 0, err
		}
		ids = append(ids, pending...)
	}

	enqueued := 0
	for _, id := range ids {
		if err := s.queue.Enqueue(ctx, id); err != nil {
			s.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to enqueue retry candidate")
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// Run sweeps on a fixed cadence until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		n, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("scanner sweep failed")
			continue
		}
		if n > 0 {
			s.logger.Info().Int("enqueued", n).Msg("scanner re-queued payments")
		}
	}
}
