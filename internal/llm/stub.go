package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/types"
)

// StubGateway is a deterministic, network-free Gateway. It never fails.
type StubGateway struct{}

var _ Gateway = StubGateway{}

// DeterministicScore maps a seed to a value in [0,1] rounded to two decimals:
// the first 8 hex digits of sha256(seed) divided by 0xFFFFFFFF.
func DeterministicScore(seed string) float64 {
	sum := sha256.Sum256([]byte(seed))
	prefix := hex.EncodeToString(sum[:])[:8]
	n, _ := strconv.ParseUint(prefix, 16, 32)
	return math.Round(float64(n)/float64(0xFFFFFFFF)*100) / 100
}

// GenerateVoiceProfile derives every metric from the concatenated inputs.
func (StubGateway) GenerateVoiceProfile(_ context.Context, brand *types.Brand, siteText string, samples []string) (*types.VoiceProfile, error) {
	seed := siteText + strings.Join(samples, " ")

	metrics := make(types.Metrics, len(types.MetricNames))
	for _, name := range types.MetricNames {
		metrics[name] = DeterministicScore(seed + name)
	}

	return &types.VoiceProfile{
		ID:                uuid.New(),
		BrandID:           brand.ID,
		Version:           1,
		Metrics:           metrics,
		TargetDemographic: fmt.Sprintf("Deterministic demographic for %s", brand.Name),
		StyleGuide: []string{
			fmt.Sprintf("Always mention %s", brand.Name),
			"Keep sentences short",
		},
		WritingExample: fmt.Sprintf("This is a sample writing style for %s.", brand.Name),
		LLMModel:       StubModel,
		Source:         types.SourceFor(siteText, samples),
	}, nil
}

// EvaluateText scores each metric from hash(text + metric) and suggests one
// adjustment per metric.
func (StubGateway) EvaluateText(_ context.Context, profile *types.VoiceProfile, text string) (*types.VoiceEvaluation, error) {
	scores := make(types.Metrics, len(types.MetricNames))
	suggestions := make([]string, 0, len(types.MetricNames))
	for _, name := range types.MetricNames {
		scores[name] = DeterministicScore(text + name)
		suggestions = append(suggestions, fmt.Sprintf("Consider adjusting %s tone.", name))
	}

	return &types.VoiceEvaluation{
		ID:             uuid.New(),
		BrandID:        profile.BrandID,
		VoiceProfileID: profile.ID,
		InputText:      text,
		Scores:         scores,
		Suggestions:    suggestions,
	}, nil
}
