package voice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/jonathan/voice-api/internal/types"
	"go.uber.org/zap"
)

// Recorder appends evaluations to the evaluation log. Records are never updated.
type Recorder struct {
	store  store.Store
	logger *zap.SugaredLogger
}

// NewRecorder creates a recorder backed by s.
func NewRecorder(s store.Store, logger *zap.SugaredLogger) *Recorder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Recorder{store: s, logger: logger}
}

// Add persists evaluation and returns the stored record with its timestamps.
func (r *Recorder) Add(ctx context.Context, evaluation *types.VoiceEvaluation) (*types.VoiceEvaluation, error) {
	if evaluation.ID == uuid.Nil {
		evaluation.ID = uuid.New()
	}

	stored, err := r.store.CreateVoiceEvaluation(ctx, evaluation)
	if err != nil {
		return nil, fmt.Errorf("failed to record voice evaluation: %w", err)
	}

	r.logger.Infow("voice evaluation recorded",
		"evaluation_id", stored.ID,
		"brand_id", stored.BrandID,
		"voice_profile_id", stored.VoiceProfileID)
	return stored, nil
}

// List returns the evaluations recorded against a profile, oldest first.
func (r *Recorder) List(ctx context.Context, profileID uuid.UUID) ([]types.VoiceEvaluation, error) {
	evaluations, err := r.store.ListVoiceEvaluations(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voice evaluations: %w", err)
	}
	if evaluations == nil {
		evaluations = []types.VoiceEvaluation{}
	}
	return evaluations, nil
}
