package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/prompts"
	"github.com/jonathan/voice-api/internal/schemas"
	"github.com/jonathan/voice-api/internal/types"
)

// ProviderGateway implements Gateway on top of a real provider Client. Output
// that is not valid JSON, fails the schema, or is incomplete is an *Error.
type ProviderGateway struct {
	client Client
	model  string
}

var _ Gateway = (*ProviderGateway)(nil)

// NewProviderGateway creates a gateway that sends every request to model via client.
func NewProviderGateway(client Client, model string) *ProviderGateway {
	return &ProviderGateway{client: client, model: model}
}

type profileOutput struct {
	Metrics           types.Metrics `json:"metrics"`
	TargetDemographic string        `json:"target_demographic"`
	StyleGuide        []string      `json:"style_guide"`
	WritingExample    string        `json:"writing_example"`
}

type evaluationOutput struct {
	Scores      types.Metrics `json:"scores"`
	Suggestions []string      `json:"suggestions"`
}

// GenerateVoiceProfile asks the model for profile content and validates it.
func (g *ProviderGateway) GenerateVoiceProfile(ctx context.Context, brand *types.Brand, siteText string, samples []string) (*types.VoiceProfile, error) {
	prompt, err := prompts.Render(prompts.VoiceFile, prompts.GenerateVoiceProfile, map[string]string{
		"BrandName": brand.Name,
		"SiteText":  orNone(siteText),
		"Samples":   orNone(formatList(samples)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	var out profileOutput
	if err := g.call(ctx, prompt, profileResponseSchema(), schemas.VoiceProfileOutput, &out); err != nil {
		return nil, err
	}

	styleGuide := out.StyleGuide
	if styleGuide == nil {
		styleGuide = []string{}
	}

	return &types.VoiceProfile{
		ID:                uuid.New(),
		BrandID:           brand.ID,
		Version:           1,
		Metrics:           out.Metrics,
		TargetDemographic: out.TargetDemographic,
		StyleGuide:        styleGuide,
		WritingExample:    out.WritingExample,
		LLMModel:          g.model,
		Source:            types.SourceFor(siteText, samples),
	}, nil
}

// EvaluateText asks the model to score text against profile.
func (g *ProviderGateway) EvaluateText(ctx context.Context, profile *types.VoiceProfile, text string) (*types.VoiceEvaluation, error) {
	prompt, err := prompts.Render(prompts.VoiceFile, prompts.EvaluateText, map[string]string{
		"Metrics":           formatMetrics(profile.Metrics),
		"TargetDemographic": orNone(profile.TargetDemographic),
		"StyleGuide":        orNone(formatList(profile.StyleGuide)),
		"WritingExample":    orNone(profile.WritingExample),
		"Text":              text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	var out evaluationOutput
	if err := g.call(ctx, prompt, evaluationResponseSchema(), schemas.VoiceEvaluationOutput, &out); err != nil {
		return nil, err
	}

	suggestions := out.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return &types.VoiceEvaluation{
		ID:             uuid.New(),
		BrandID:        profile.BrandID,
		VoiceProfileID: profile.ID,
		InputText:      text,
		Scores:         out.Scores,
		Suggestions:    suggestions,
	}, nil
}

// call sends prompt to the model, then checks the reply is JSON, matches the
// schema, and decodes into dst without unknown fields.
func (g *ProviderGateway) call(ctx context.Context, prompt string, hint *genai.Schema, schemaName string, dst any) error {
	raw, err := g.client.GenerateJSON(ctx, Request{Model: g.model, Prompt: prompt, Schema: hint})
	if err != nil {
		return err
	}

	content := CleanJSONBlock(raw)
	if !json.Valid([]byte(content)) {
		return &Error{Kind: KindParse, Model: g.model, Message: "response is not valid JSON"}
	}

	if err := schemas.Validate(schemaName, content); err != nil {
		return &Error{Kind: KindSchema, Model: g.model, Message: "response does not match schema", Cause: err}
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(content)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return &Error{Kind: KindParse, Model: g.model, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func formatList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func formatMetrics(m types.Metrics) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %.2f", name, m[name]))
	}
	return strings.Join(lines, "\n")
}

func metricsResponseSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(types.MetricNames))
	for _, name := range types.MetricNames {
		props[name] = &genai.Schema{Type: genai.TypeNumber}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   append([]string(nil), types.MetricNames...),
	}
}

func profileResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"metrics":            metricsResponseSchema(),
			"target_demographic": {Type: genai.TypeString},
			"style_guide":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"writing_example":    {Type: genai.TypeString},
		},
		Required: []string{"metrics", "target_demographic", "style_guide", "writing_example"},
	}
}

func evaluationResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scores":      metricsResponseSchema(),
			"suggestions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"scores", "suggestions"},
	}
}
