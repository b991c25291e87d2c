package llm

import (
	"context"

	"github.com/jonathan/voice-api/internal/types"
)

// Gateway generates voice profiles and evaluates text against them.
// Every implementation returns exactly the five named metrics, each in [0,1].
type Gateway interface {
	// GenerateVoiceProfile produces profile content for a brand from optional site text
	// and writing samples. The returned version is a placeholder the caller overwrites.
	GenerateVoiceProfile(ctx context.Context, brand *types.Brand, siteText string, samples []string) (*types.VoiceProfile, error)
	// EvaluateText scores text against an existing profile and suggests improvements.
	EvaluateText(ctx context.Context, profile *types.VoiceProfile, text string) (*types.VoiceEvaluation, error)
}

// Factory resolves the gateway serving a model name.
type Factory interface {
	Gateway(ctx context.Context, model string) (Gateway, error)
}
