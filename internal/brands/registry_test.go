package brands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/jonathan/voice-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every brand write and read.
type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) CreateBrand(context.Context, *types.Brand) (*types.Brand, error) {
	return nil, f.err
}

func (f *failingStore) ListBrands(context.Context) ([]types.Brand, error) {
	return nil, f.err
}

func (f *failingStore) GetBrand(context.Context, uuid.UUID) (*types.Brand, error) {
	return nil, f.err
}

func TestRegistry_CreateAndGet(t *testing.T) {
	registry := NewRegistry(store.NewMemoryStore(), nil)
	ctx := context.Background()

	brand, err := registry.Create(ctx, "Acme", "https://acme.com")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, brand.ID)
	assert.Equal(t, "Acme", brand.Name)
	require.NotNil(t, brand.CanonicalURL)
	assert.Equal(t, "https://acme.com", *brand.CanonicalURL)
	assert.False(t, brand.CreatedAt.IsZero())
	assert.Equal(t, brand.CreatedAt, brand.UpdatedAt)

	got, err := registry.Get(ctx, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, brand, got)
}

func TestRegistry_CreateKeepsNameAsGiven(t *testing.T) {
	registry := NewRegistry(store.NewMemoryStore(), nil)
	ctx := context.Background()

	brand, err := registry.Create(ctx, "  Acme  ", "")
	require.NoError(t, err)
	assert.Equal(t, "  Acme  ", brand.Name)

	got, err := registry.Get(ctx, brand.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "  Acme  ", got.Name)
}

func TestRegistry_CreateWithoutURL(t *testing.T) {
	registry := NewRegistry(store.NewMemoryStore(), nil)

	brand, err := registry.Create(context.Background(), "Globex", "")
	require.NoError(t, err)
	assert.Nil(t, brand.CanonicalURL)
}

func TestRegistry_GetMissing(t *testing.T) {
	registry := NewRegistry(store.NewMemoryStore(), nil)

	brand, err := registry.Get(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, brand)
}

func TestRegistry_ListInCreationOrder(t *testing.T) {
	registry := NewRegistry(store.NewMemoryStore(), nil)
	ctx := context.Background()

	empty, err := registry.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := registry.Create(ctx, name, "")
		require.NoError(t, err)
	}

	brands, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 3)
	assert.Equal(t, "Zeta", brands[0].Name)
	assert.Equal(t, "Alpha", brands[1].Name)
	assert.Equal(t, "Mid", brands[2].Name)
}

func TestRegistry_StoreFailures(t *testing.T) {
	cause := errors.New("connection reset")
	registry := NewRegistry(&failingStore{err: cause}, nil)
	ctx := context.Background()

	_, err := registry.Create(ctx, "Acme", "")
	assert.ErrorIs(t, err, cause)

	_, err = registry.List(ctx)
	assert.ErrorIs(t, err, cause)

	_, err = registry.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, cause)
}
