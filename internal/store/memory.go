package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/types"
)

type profileKey struct {
	brandID uuid.UUID
	version int
}

// MemoryStore is an in-process Store. It enforces the same uniqueness and
// reference rules as the PostgreSQL schema.
type MemoryStore struct {
	mu          sync.RWMutex
	brands      map[uuid.UUID]types.Brand
	brandOrder  []uuid.UUID
	profiles    map[profileKey]types.VoiceProfile
	profileByID map[uuid.UUID]profileKey
	evaluations []types.VoiceEvaluation
	now         func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		brands:      make(map[uuid.UUID]types.Brand),
		profiles:    make(map[profileKey]types.VoiceProfile),
		profileByID: make(map[uuid.UUID]profileKey),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateBrand stores a brand, assigning an id and timestamps when unset.
func (s *MemoryStore) CreateBrand(_ context.Context, brand *types.Brand) (*types.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := *brand
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := s.now()
	b.CreatedAt, b.UpdatedAt = now, now

	s.brands[b.ID] = b
	s.brandOrder = append(s.brandOrder, b.ID)
	return &b, nil
}

// ListBrands returns brands in creation order.
func (s *MemoryStore) ListBrands(_ context.Context) ([]types.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	brands := make([]types.Brand, 0, len(s.brandOrder))
	for _, id := range s.brandOrder {
		brands = append(brands, s.brands[id])
	}
	return brands, nil
}

// GetBrand returns the brand with the given id, or nil if absent.
func (s *MemoryStore) GetBrand(_ context.Context, id uuid.UUID) (*types.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.brands[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// MaxVoiceVersion returns the highest stored version for brandID, or 0.
func (s *MemoryStore) MaxVoiceVersion(_ context.Context, brandID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxVersion(brandID), nil
}

func (s *MemoryStore) maxVersion(brandID uuid.UUID) int {
	highest := 0
	for key := range s.profiles {
		if key.brandID == brandID && key.version > highest {
			highest = key.version
		}
	}
	return highest
}

// CreateVoiceProfile stores a profile. A duplicate (brand_id, version) returns
// *VersionConflictError and an unknown brand returns *MissingBrandError.
func (s *MemoryStore) CreateVoiceProfile(_ context.Context, profile *types.VoiceProfile) (*types.VoiceProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[profile.BrandID]; !ok {
		return nil, &MissingBrandError{BrandID: profile.BrandID}
	}

	key := profileKey{brandID: profile.BrandID, version: profile.Version}
	if _, exists := s.profiles[key]; exists {
		return nil, &VersionConflictError{BrandID: profile.BrandID, Version: profile.Version}
	}

	p := *profile
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Metrics = copyMetrics(p.Metrics)
	p.StyleGuide = append([]string(nil), p.StyleGuide...)

	s.profiles[key] = p
	s.profileByID[p.ID] = key
	return &p, nil
}

// LatestVoiceProfile returns the highest-version profile for brandID, or nil.
func (s *MemoryStore) LatestVoiceProfile(_ context.Context, brandID uuid.UUID) (*types.VoiceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	highest := s.maxVersion(brandID)
	if highest == 0 {
		return nil, nil
	}
	p := s.profiles[profileKey{brandID: brandID, version: highest}]
	return &p, nil
}

// VoiceProfileByVersion returns the exact (brandID, version) profile, or nil.
func (s *MemoryStore) VoiceProfileByVersion(_ context.Context, brandID uuid.UUID, version int) (*types.VoiceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[profileKey{brandID: brandID, version: version}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// CreateVoiceEvaluation appends an evaluation.
func (s *MemoryStore) CreateVoiceEvaluation(_ context.Context, evaluation *types.VoiceEvaluation) (*types.VoiceEvaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.profileByID[evaluation.VoiceProfileID]
	if !ok || key.brandID != evaluation.BrandID {
		return nil, &MissingBrandError{BrandID: evaluation.BrandID}
	}

	e := *evaluation
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	e.Scores = copyMetrics(e.Scores)
	e.Suggestions = append([]string(nil), e.Suggestions...)

	s.evaluations = append(s.evaluations, e)
	return &e, nil
}

// ListVoiceEvaluations returns evaluations for a profile in recording order.
func (s *MemoryStore) ListVoiceEvaluations(_ context.Context, profileID uuid.UUID) ([]types.VoiceEvaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.VoiceEvaluation
	for _, e := range s.evaluations {
		if e.VoiceProfileID == profileID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

func copyMetrics(m types.Metrics) types.Metrics {
	if m == nil {
		return nil
	}
	out := make(types.Metrics, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
