package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	"github.com/lucashq/payflow/internal/domain/payment"
)

// ProcessPaymentUseCase advances a payment through one processing attempt:
// attempt-increment, processing, provider call, completed/failed — all inside
// a single transaction. A failed business outcome is recorded on the payment
// and is not an error for the job runner; only infrastructure failures
// propagate, so the queue redelivers exactly those.
type ProcessPaymentUseCase struct {
	payments    Repository
	catalog     Catalog
	gateway     Gateway
	txManager   TransactionManager
	notifier    Notifier
	maxAttempts int
	logger      zerolog.Logger
}

// NewProcessPaymentUseCase creates a new ProcessPaymentUseCase.
func NewProcessPaymentUseCase(
	payments Repository,
	catalog Catalog,
	gateway Gateway,
	txManager TransactionManager,
	notifier Notifier,
	maxAttempts int,
	logger zerolog.Logger,
) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{
		payments:    payments,
		catalog:     catalog,
		gateway:     gateway,
		txManager:   txManager,
		notifier:    notifier,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Execute runs one attempt for the given payment id.
func (uc *ProcessPaymentUseCase) Execute(ctx context.Context, paymentID uuid.UUID) error {
	var (
		ownerID   uuid.UUID
		attempted bool
	)

	err := uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		p, err := uc.payments.Get(txCtx, paymentID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrPaymentNotFound) {
				return nil // duplicate delivery for a deleted id
			}
			return fmt.Errorf("load payment: %w", err)
		}
		if p.Status == payment.StatusCompleted {
			return nil // idempotent guard against re-delivery
		}

		// The attempt ledger is written first so a crash during the
		// provider call still counts the attempt.
		if err := uc.payments.IncrementAttempt(txCtx, paymentID); err != nil {
			return fmt.Errorf("increment attempt: %w", err)
		}

		// p is a snapshot read before the increment; adjust in memory
		// instead of re-reading the row.
		attempts := p.AttemptCount + 1
		ownerID = p.UserID
		attempted = true

		if attempts > uc.maxAttempts {
			return uc.payments.MarkFailed(txCtx, paymentID, payment.MaxAttemptsError)
		}

		if err := uc.payments.MarkProcessing(txCtx, paymentID, time.Now().UTC()); err != nil {
			return fmt.Errorf("mark processing: %w", err)
		}

		res, callErr := uc.callProvider(txCtx, p)
		switch {
		case callErr != nil:
			return uc.payments.MarkFailed(txCtx, paymentID, callErr.Error())
		case res.Success:
			return uc.payments.MarkCompleted(txCtx, paymentID)
		default:
			cause := res.Error
			if cause == "" {
				cause = "Provider failure."
			}
			return uc.payments.MarkFailed(txCtx, paymentID, cause)
		}
	})
	if err != nil {
		return err
	}

	// Best effort, after commit. A lost notification is not recoverable and
	// must never unwind the payment-state transaction.
	if attempted {
		if err := uc.notifier.Notify(ctx, paymentID, ownerID); err != nil {
			uc.logger.Warn().Err(err).
				Str("payment_id", paymentID.String()).
				Msg("payment notification dropped")
		}
	}
	return nil
}

// callProvider resolves the provider and makes the single gateway call for
// this attempt. Every failure path comes back as an error so the caller
// records it the same way, whether the provider vanished, is inactive, or
// the call itself blew up.
func (uc *ProcessPaymentUseCase) callProvider(ctx context.Context, p *payment.Payment) (*GatewayResult, error) {
	prov, err := uc.catalog.Get(ctx, p.ProviderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrProviderNotFound) {
			return nil, domainErrors.ErrProviderMissing
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if !prov.IsActive {
		return nil, domainErrors.ErrProviderInactive
	}

	return uc.gateway.Pay(ctx, GatewayRequest{
		Endpoint:    prov.Endpoint,
		PaymentID:   p.ID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Reference:   p.Reference,
	})
}
