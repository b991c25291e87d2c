// Package brands manages brand records.
package brands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/jonathan/voice-api/internal/types"
	"go.uber.org/zap"
)

// Registry creates and looks up brands. Brands are never updated or deleted.
type Registry struct {
	store  store.Store
	logger *zap.SugaredLogger
}

// NewRegistry creates a registry backed by s.
func NewRegistry(s store.Store, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Registry{store: s, logger: logger}
}

// Create stores a new brand. An empty canonicalURL is stored as null.
func (r *Registry) Create(ctx context.Context, name, canonicalURL string) (*types.Brand, error) {
	brand := &types.Brand{
		ID:   uuid.New(),
		Name: name,
	}
	if canonicalURL != "" {
		url := canonicalURL
		brand.CanonicalURL = &url
	}

	created, err := r.store.CreateBrand(ctx, brand)
	if err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}

	r.logger.Infow("brand created", "brand_id", created.ID, "name", created.Name)
	return created, nil
}

// List returns every brand in creation order.
func (r *Registry) List(ctx context.Context) ([]types.Brand, error) {
	brands, err := r.store.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	if brands == nil {
		brands = []types.Brand{}
	}
	return brands, nil
}

// Get returns the brand with id, or nil, nil when it does not exist.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*types.Brand, error) {
	brand, err := r.store.GetBrand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return brand, nil
}
