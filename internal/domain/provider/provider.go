package provider

import (
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
)

// Provider is the configuration for one payment destination. It is mutated
// only by the admin flow; the processing pipeline reads it and treats a
// missing or inactive provider as a hard failure for that attempt.
type Provider struct {
	ID        uuid.UUID
	Name      string
	Endpoint  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an active provider.
func New(name, endpoint string) (*Provider, error) {
	name = strings.TrimSpace(name)
	endpoint = strings.TrimSpace(endpoint)
	if name == "" {
		return nil, domainErrors.NewValidationError("name", "cannot be empty")
	}
	if endpoint == "" {
		return nil, domainErrors.NewValidationError("endpoint", "cannot be empty")
	}

	now := time.Now().UTC()
	return &Provider{
		ID:        uuid.New(),
		Name:      name,
		Endpoint:  endpoint,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
