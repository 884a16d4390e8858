package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lucashq/payflow/internal/domain/payment"
	"github.com/lucashq/payflow/internal/domain/provider"
)

// TransactionManager is the unit-of-work port: fn runs inside one database
// transaction, committed on nil return and rolled back otherwise.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository is the payment store port. The Mark* and IncrementAttempt
// mutators are atomic single-row statements; inside a transaction they
// operate against the transaction's connection.
type Repository interface {
	// Get loads a payment. Inside a transaction the row is locked
	// (SELECT ... FOR UPDATE), which is what serializes two concurrent
	// processing runs for the same id.
	Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	List(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*payment.Payment, error)
	// ListFailedForRetry returns ids of failed payments still under the
	// ceiling, oldest attempt first, at most limit.
	ListFailedForRetry(ctx context.Context, maxAttempts, limit int) ([]uuid.UUID, error)
	// ListStalePending returns ids of pending payments created before the
	// cutoff that never started an attempt.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	// FailStaleProcessing marks processing payments whose attempt started
	// before the cutoff as failed with the given cause. Returns the number
	// of rows swept.
	FailStaleProcessing(ctx context.Context, cutoff time.Time, cause string) (int, error)
	Create(ctx context.Context, p *payment.Payment) error
	MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) error
	IncrementAttempt(ctx context.Context, id uuid.UUID) error
}

// Catalog is the provider-catalog port, read-only from the pipeline's side.
type Catalog interface {
	Get(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
}

// Queue is the hand-off between producers (creation, retry, scanner) and the
// pipeline workers. At-least-once, no ordering, no payload beyond the id.
type Queue interface {
	Enqueue(ctx context.Context, paymentID uuid.UUID) error
}

// Notifier is informed after each processing attempt. Fire-and-forget: the
// pipeline logs failures and moves on.
type Notifier interface {
	Notify(ctx context.Context, paymentID, ownerID uuid.UUID) error
}

// GatewayResult is the provider's answer to one payment attempt.
type GatewayResult struct {
	Success     bool
	ProviderRef string
	Error       string
}

// GatewayRequest carries everything a single provider call needs. Endpoint
// comes from the provider catalog at attempt time.
type GatewayRequest struct {
	Endpoint    string
	PaymentID   uuid.UUID
	AmountCents int64
	Currency    string
	Reference   string
}

// Gateway makes exactly one network call per attempt. No retry logic of its
// own; any transport failure surfaces as an error, never a silent success.
type Gateway interface {
	Pay(ctx context.Context, req GatewayRequest) (*GatewayResult, error)
}
