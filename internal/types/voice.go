package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Metric names, in the order they are scored and reported.
const (
	MetricWarmth       = "warmth"
	MetricSeriousness  = "seriousness"
	MetricTechnicality = "technicality"
	MetricFormality    = "formality"
	MetricPlayfulness  = "playfulness"
)

// MetricNames lists the five voice metrics in canonical order.
var MetricNames = []string{
	MetricWarmth,
	MetricSeriousness,
	MetricTechnicality,
	MetricFormality,
	MetricPlayfulness,
}

// Metrics maps each metric name to a score in [0,1].
type Metrics map[string]float64

// Complete reports whether m holds exactly the five metrics, each within [0,1].
func (m Metrics) Complete() bool {
	if len(m) != len(MetricNames) {
		return false
	}
	for _, name := range MetricNames {
		v, ok := m[name]
		if !ok || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// VoiceSource records which input channels produced a voice profile.
type VoiceSource string

// Voice sources.
const (
	SourceSite   VoiceSource = "SITE"
	SourceManual VoiceSource = "MANUAL"
	SourceMixed  VoiceSource = "MIXED"
)

// SourceFor picks the source tag from which inputs were present.
func SourceFor(siteText string, samples []string) VoiceSource {
	switch {
	case siteText != "" && len(samples) > 0:
		return SourceMixed
	case siteText != "":
		return SourceSite
	default:
		return SourceManual
	}
}

// VoiceProfile is a versioned snapshot of a brand's communication style.
type VoiceProfile struct {
	ID                uuid.UUID   `json:"id"`
	BrandID           uuid.UUID   `json:"brand_id"`
	Version           int         `json:"version"`
	Metrics           Metrics     `json:"metrics"`
	TargetDemographic string      `json:"target_demographic"`
	StyleGuide        []string    `json:"style_guide"`
	WritingExample    string      `json:"writing_example"`
	LLMModel          string      `json:"llm_model"`
	Source            VoiceSource `json:"source"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// VoiceEvaluation is the result of scoring a text against one voice profile version.
type VoiceEvaluation struct {
	ID             uuid.UUID `json:"id"`
	BrandID        uuid.UUID `json:"brand_id"`
	VoiceProfileID uuid.UUID `json:"voice_profile_id"`
	InputText      string    `json:"input_text"`
	Scores         Metrics   `json:"scores"`
	Suggestions    []string  `json:"suggestions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// VoiceInputs carries the material a profile is generated from.
type VoiceInputs struct {
	URLs           []string `json:"urls,omitempty" validate:"omitempty,dive,url"`
	WritingSamples []string `json:"writing_samples,omitempty" validate:"omitempty,dive,nonul"`
}

// GenerateVoiceRequest is the body of POST /brands/{brand_id}/voices:generate.
type GenerateVoiceRequest struct {
	Inputs   VoiceInputs `json:"inputs"`
	LLMModel string      `json:"llm_model" validate:"required,nonul"`
}

// Validate validates the GenerateVoiceRequest using the validator.
func (r *GenerateVoiceRequest) Validate() error {
	return validate.Struct(r)
}

// EvaluateRequest is the body of POST /brands/{brand_id}/voices/{version}/evaluate.
type EvaluateRequest struct {
	Text string `json:"text" validate:"required,nonul"`
}

// Validate validates the EvaluateRequest using the validator.
func (r *EvaluateRequest) Validate() error {
	return validate.Struct(r)
}

// VoiceProfileResponse wraps a single voice profile.
type VoiceProfileResponse struct {
	Success      bool          `json:"success"`
	VoiceProfile *VoiceProfile `json:"voice_profile"`
	Message      string        `json:"message"`
}

// VoiceEvaluationResponse wraps a recorded evaluation.
type VoiceEvaluationResponse struct {
	Success         bool             `json:"success"`
	VoiceEvaluation *VoiceEvaluation `json:"voice_evaluation"`
	Message         string           `json:"message"`
}

// VoiceEvaluationListResponse wraps the evaluations recorded for one profile version.
type VoiceEvaluationListResponse struct {
	Success          bool              `json:"success"`
	VoiceEvaluations []VoiceEvaluation `json:"voice_evaluations"`
	Message          string            `json:"message"`
}

// voiceInputsStructLevel requires at least one url or writing sample.
func voiceInputsStructLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(VoiceInputs)
	if len(in.URLs) == 0 && len(in.WritingSamples) == 0 {
		sl.ReportError(in.URLs, "urls", "URLs", "urls_or_writing_samples", "")
	}
}
