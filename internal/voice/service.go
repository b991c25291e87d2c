// Package voice generates versioned brand voice profiles and evaluates text
// against them.
package voice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/fetch"
	"github.com/jonathan/voice-api/internal/llm"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/jonathan/voice-api/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds parallel page fetches for one generation.
const maxConcurrentFetches = 4

// Service owns voice profile versioning.
//
// Versions are assigned as max(version)+1 at generation time with no lock. Two
// concurrent generations for one brand can pick the same number; the store's
// unique (brand_id, version) constraint rejects the second with
// *store.VersionConflictError and nothing is retried.
type Service struct {
	store    store.Store
	gateways llm.Factory
	fetcher  fetch.PageFetcher
	recorder *Recorder
	logger   *zap.SugaredLogger
}

// NewService creates a voice service.
func NewService(s store.Store, gateways llm.Factory, fetcher fetch.PageFetcher, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		store:    s,
		gateways: gateways,
		fetcher:  fetcher,
		recorder: NewRecorder(s, logger),
		logger:   logger,
	}
}

// Generate creates the next voice profile version for a brand.
func (s *Service) Generate(ctx context.Context, brandID uuid.UUID, req types.GenerateVoiceRequest) (*types.VoiceProfile, error) {
	brand, err := s.store.GetBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	if brand == nil {
		return nil, brandNotFound(brandID)
	}

	gateway, err := s.gateways.Gateway(ctx, req.LLMModel)
	if err != nil {
		return nil, err
	}

	highest, err := s.store.MaxVoiceVersion(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest version: %w", err)
	}
	next := highest + 1

	siteText, err := s.siteText(ctx, req.Inputs.URLs)
	if err != nil {
		return nil, err
	}

	profile, err := gateway.GenerateVoiceProfile(ctx, brand, siteText, req.Inputs.WritingSamples)
	if err != nil {
		s.logger.Warnw("voice generation failed", "brand_id", brandID, "model", req.LLMModel, "error", err)
		return nil, err
	}
	profile.Version = next
	profile.BrandID = brand.ID

	created, err := s.store.CreateVoiceProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to save voice profile: %w", err)
	}

	s.logger.Infow("voice profile created",
		"brand_id", brandID,
		"version", created.Version,
		"model", created.LLMModel,
		"source", created.Source)
	return created, nil
}

// siteText fetches every URL concurrently and joins the page texts in input order.
func (s *Service) siteText(ctx context.Context, urls []string) (string, error) {
	if len(urls) == 0 {
		return "", nil
	}
	if s.fetcher == nil {
		return "", fmt.Errorf("no page fetcher configured")
	}

	texts := make([]string, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, url := range urls {
		g.Go(func() error {
			text, err := s.fetcher.PageText(gctx, url)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	nonEmpty := texts[:0]
	for _, text := range texts {
		if text != "" {
			nonEmpty = append(nonEmpty, text)
		}
	}
	return strings.Join(nonEmpty, " "), nil
}

// GetLatest returns the highest-version profile for a brand.
func (s *Service) GetLatest(ctx context.Context, brandID uuid.UUID) (*types.VoiceProfile, error) {
	profile, err := s.store.LatestVoiceProfile(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest voice profile: %w", err)
	}
	if profile == nil {
		return nil, noProfile(brandID)
	}
	return profile, nil
}

// GetByVersion returns the profile with exactly version for a brand.
func (s *Service) GetByVersion(ctx context.Context, brandID uuid.UUID, version int) (*types.VoiceProfile, error) {
	profile, err := s.store.VoiceProfileByVersion(ctx, brandID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get voice profile: %w", err)
	}
	if profile == nil {
		return nil, versionNotFound(version)
	}
	return profile, nil
}

// Evaluate scores text against profile using the model that generated it.
// The result is not persisted.
func (s *Service) Evaluate(ctx context.Context, profile *types.VoiceProfile, text string) (*types.VoiceEvaluation, error) {
	gateway, err := s.gateways.Gateway(ctx, profile.LLMModel)
	if err != nil {
		return nil, err
	}

	evaluation, err := gateway.EvaluateText(ctx, profile, text)
	if err != nil {
		s.logger.Warnw("voice evaluation failed", "voice_profile_id", profile.ID, "model", profile.LLMModel, "error", err)
		return nil, err
	}
	evaluation.BrandID = profile.BrandID
	evaluation.VoiceProfileID = profile.ID
	evaluation.InputText = text
	return evaluation, nil
}

// RecordEvaluation appends evaluation to the evaluation log.
func (s *Service) RecordEvaluation(ctx context.Context, evaluation *types.VoiceEvaluation) (*types.VoiceEvaluation, error) {
	return s.recorder.Add(ctx, evaluation)
}

// EvaluateVersion looks up a profile version, evaluates text against it and
// records the result.
func (s *Service) EvaluateVersion(ctx context.Context, brandID uuid.UUID, version int, text string) (*types.VoiceEvaluation, error) {
	profile, err := s.GetByVersion(ctx, brandID, version)
	if err != nil {
		return nil, err
	}

	evaluation, err := s.Evaluate(ctx, profile, text)
	if err != nil {
		return nil, err
	}
	return s.RecordEvaluation(ctx, evaluation)
}

// ListEvaluations returns the evaluations recorded against a profile version.
func (s *Service) ListEvaluations(ctx context.Context, brandID uuid.UUID, version int) ([]types.VoiceEvaluation, error) {
	profile, err := s.GetByVersion(ctx, brandID, version)
	if err != nil {
		return nil, err
	}
	return s.recorder.List(ctx, profile.ID)
}
