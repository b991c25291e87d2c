package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/voice-api/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleMetrics() types.Metrics {
	return types.Metrics{
		types.MetricWarmth:       0.8,
		types.MetricSeriousness:  0.3,
		types.MetricTechnicality: 0.1,
		types.MetricFormality:    0.45,
		types.MetricPlayfulness:  1,
	}
}

func TestPrintVoiceProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	profile := &types.VoiceProfile{
		Version:           3,
		Metrics:           sampleMetrics(),
		TargetDemographic: "Young families shopping online",
		StyleGuide:        []string{"Always mention Acme", "Keep sentences short"},
		LLMModel:          "stub-llm",
		Source:            types.SourceMixed,
	}

	p.PrintVoiceProfile("Acme", profile)
	output := buf.String()

	assert.Contains(t, output, "BRAND VOICE PROFILE")
	assert.Contains(t, output, "Acme")
	assert.Contains(t, output, "Version:  3")
	assert.Contains(t, output, "MIXED")
	assert.Contains(t, output, "warmth")
	assert.Contains(t, output, "0.45")
	assert.Contains(t, output, "Keep sentences short")

	warmth := strings.Index(output, "warmth")
	playfulness := strings.Index(output, "playfulness")
	assert.Less(t, warmth, playfulness, "metrics print in canonical order")
}

func TestPrintVoiceProfile_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintVoiceProfile("Acme", nil)
	assert.Empty(t, buf.String())
}

func TestPrintVoiceProfile_TruncatesStyleGuide(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	profile := &types.VoiceProfile{
		Metrics:    sampleMetrics(),
		StyleGuide: []string{"one", "two", "three", "four", "five", "six", "seven"},
	}
	p.PrintVoiceProfile("Acme", profile)

	assert.Contains(t, buf.String(), "... and 2 more")
	assert.NotContains(t, buf.String(), "seven")
}

func TestPrintEvaluation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEvaluation(&types.VoiceEvaluation{
		InputText:   "Hello",
		Scores:      types.Metrics{types.MetricWarmth: 0.5},
		Suggestions: []string{"Consider adjusting warmth tone."},
	})
	output := buf.String()

	assert.Contains(t, output, "VOICE EVALUATION")
	assert.Contains(t, output, "Hello")
	assert.Contains(t, output, "Consider adjusting warmth tone.")
	assert.Contains(t, output, "missing", "absent metrics are flagged")
}

func TestPrintSources(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSources(nil, 0)
	assert.Contains(t, buf.String(), "NO INPUTS")

	buf.Reset()
	p.PrintSources([]string{"https://acme.com"}, 2)
	assert.Contains(t, buf.String(), "https://acme.com")
	assert.Contains(t, buf.String(), "2 writing sample(s)")
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVoiceProfile("A brand name that is far too long to fit inside the box at all", &types.VoiceProfile{Metrics: sampleMetrics()})

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestMetricBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", barWidth), metricBar(0))
	assert.Equal(t, strings.Repeat("█", barWidth), metricBar(1))
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), metricBar(0.5))
	assert.Equal(t, strings.Repeat("█", barWidth), metricBar(1.7))
}
