package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
)

// Status represents the payment status in the state machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// MaxAttemptsError is the terminal error recorded when a payment is pushed
// past the attempt ceiling without a provider call being made.
const MaxAttemptsError = "Max attempts reached."

// Payment is the unit of work tracked by the processing pipeline. Everything
// except Status, AttemptCount, LastTriedAt and LastError is immutable after
// creation; only the pipeline mutates a payment once it exists.
type Payment struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ProviderID   uuid.UUID
	AmountCents  int64
	Currency     string
	Reference    string
	Status       Status
	AttemptCount int
	CreatedAt    time.Time
	LastTriedAt  *time.Time
	LastError    *string
}

// Amount returns the amount as a decimal string with two fractional digits.
func (p *Payment) Amount() string {
	sign := ""
	cents := p.AmountCents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// New creates a Pending payment. Currency is upper-cased and the reference
// trimmed here so every caller persists the same canonical form.
func New(userID, providerID uuid.UUID, amountCents int64, currency, reference string) (*Payment, error) {
	if amountCents <= 0 {
		return nil, domainErrors.NewValidationError("amount", "must be greater than 0")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, domainErrors.NewValidationError("currency", "must be a 3-letter ISO code")
	}

	return &Payment{
		ID:          uuid.New(),
		UserID:      userID,
		ProviderID:  providerID,
		AmountCents: amountCents,
		Currency:    currency,
		Reference:   strings.TrimSpace(reference),
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// CanTransitionTo checks if the payment can move to the given status.
func (p *Payment) CanTransitionTo(next Status) bool {
	transitions := map[Status][]Status{
		StatusPending: {
			StatusProcessing,
			StatusFailed, // ceiling exceeded before the provider call
		},
		StatusProcessing: {
			StatusCompleted,
			StatusFailed,
		},
		StatusFailed: {
			StatusProcessing, // retry
			StatusFailed,     // ceiling exceeded on re-enqueue
		},
		StatusCompleted: {}, // terminal
	}

	for _, allowed := range transitions[p.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the payment to a new status.
func (p *Payment) TransitionTo(next Status) error {
	if !p.CanTransitionTo(next) {
		return domainErrors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(p.Status)+" to "+string(next),
			domainErrors.ErrInvalidStateTransition,
		)
	}
	p.Status = next
	return nil
}

// MarkProcessing moves the payment to processing and stamps the attempt time.
func (p *Payment) MarkProcessing(at time.Time) error {
	if err := p.TransitionTo(StatusProcessing); err != nil {
		return err
	}
	t := at.UTC()
	p.LastTriedAt = &t
	return nil
}

// MarkCompleted moves the payment to completed and clears the last error.
func (p *Payment) MarkCompleted() error {
	if err := p.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	p.LastError = nil
	return nil
}

// MarkFailed moves the payment to failed and records the cause.
func (p *Payment) MarkFailed(cause string) error {
	if err := p.TransitionTo(StatusFailed); err != nil {
		return err
	}
	p.LastError = &cause
	return nil
}

// IncrementAttempt bumps the attempt ledger. The count is monotonic and is
// never reset, not even by a manual retry.
func (p *Payment) IncrementAttempt() {
	p.AttemptCount++
}

// CanRetry reports whether a manual retry is allowed under the given ceiling.
func (p *Payment) CanRetry(maxAttempts int) bool {
	return p.Status == StatusFailed && p.AttemptCount < maxAttempts
}

// IsTerminal reports whether no further transition is possible.
func (p *Payment) IsTerminal() bool {
	return p.Status == StatusCompleted
}
