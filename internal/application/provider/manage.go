package provider

import (
	"context"

	"github.com/google/uuid"

	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	"github.com/lucashq/payflow/internal/domain/provider"
)

// Repository is the catalog's write-side port, used only by the admin flow.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
	List(ctx context.Context) ([]*provider.Provider, error)
	Create(ctx context.Context, p *provider.Provider) error
	Update(ctx context.Context, p *provider.Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ManageProvidersUseCase is the administrative flow that maintains the
// provider catalog. The processing pipeline never writes through here.
type ManageProvidersUseCase struct {
	providers Repository
}

// NewManageProvidersUseCase creates a new ManageProvidersUseCase.
func NewManageProvidersUseCase(providers Repository) *ManageProvidersUseCase {
	return &ManageProvidersUseCase{providers: providers}
}

// List returns all configured providers.
func (uc *ManageProvidersUseCase) List(ctx context.Context, isAdmin bool) ([]*provider.Provider, error) {
	if !isAdmin {
		return nil, domainErrors.ErrUnauthorized
	}
	return uc.providers.List(ctx)
}

// Create registers a new active provider.
func (uc *ManageProvidersUseCase) Create(ctx context.Context, isAdmin bool, name, endpoint string) (*provider.Provider, error) {
	if !isAdmin {
		return nil, domainErrors.ErrUnauthorized
	}
	p, err := provider.New(name, endpoint)
	if err != nil {
		return nil, err
	}
	if err := uc.providers.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update changes a provider's name, endpoint or active flag.
func (uc *ManageProvidersUseCase) Update(ctx context.Context, isAdmin bool, id uuid.UUID, name, endpoint string, isActive bool) (*provider.Provider, error) {
	if !isAdmin {
		return nil, domainErrors.ErrUnauthorized
	}
	p, err := uc.providers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		p.Name = name
	}
	if endpoint != "" {
		p.Endpoint = endpoint
	}
	p.IsActive = isActive
	if err := uc.providers.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a provider from the catalog. Payments that reference it
// keep their provider id and simply fail their next attempt.
func (uc *ManageProvidersUseCase) Delete(ctx context.Context, isAdmin bool, id uuid.UUID) error {
	if !isAdmin {
		return domainErrors.ErrUnauthorized
	}
	return uc.providers.Delete(ctx, id)
}
