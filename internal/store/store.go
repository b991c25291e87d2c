// Package store defines the storage port shared by the PostgreSQL and in-memory backends.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/types"
)

// Store persists brands, voice profiles and evaluations.
// Lookups return nil, nil when the record does not exist.
type Store interface {
	CreateBrand(ctx context.Context, brand *types.Brand) (*types.Brand, error)
	ListBrands(ctx context.Context) ([]types.Brand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (*types.Brand, error)

	// MaxVoiceVersion returns the highest profile version for a brand, or 0 if it has none.
	MaxVoiceVersion(ctx context.Context, brandID uuid.UUID) (int, error)
	CreateVoiceProfile(ctx context.Context, profile *types.VoiceProfile) (*types.VoiceProfile, error)
	LatestVoiceProfile(ctx context.Context, brandID uuid.UUID) (*types.VoiceProfile, error)
	VoiceProfileByVersion(ctx context.Context, brandID uuid.UUID, version int) (*types.VoiceProfile, error)

	CreateVoiceEvaluation(ctx context.Context, evaluation *types.VoiceEvaluation) (*types.VoiceEvaluation, error)
	ListVoiceEvaluations(ctx context.Context, profileID uuid.UUID) ([]types.VoiceEvaluation, error)

	Ping(ctx context.Context) error
	Close()
}

// VersionConflictError indicates another profile already holds (brand_id, version).
type VersionConflictError struct {
	BrandID uuid.UUID
	Version int
	Cause   error
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("voice profile version %d already exists for brand %s", e.Version, e.BrandID)
}

func (e *VersionConflictError) Unwrap() error {
	return e.Cause
}

// MissingBrandError indicates a write referenced a brand or profile that does not exist.
type MissingBrandError struct {
	BrandID uuid.UUID
	Cause   error
}

func (e *MissingBrandError) Error() string {
	return fmt.Sprintf("referenced record does not exist for brand %s", e.BrandID)
}

func (e *MissingBrandError) Unwrap() error {
	return e.Cause
}
