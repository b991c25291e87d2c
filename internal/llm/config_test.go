package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderForModel(t *testing.T) {
	tests := []struct {
		model    string
		expected Provider
	}{
		{model: "stub-llm", expected: ProviderStub},
		{model: " STUB-LLM ", expected: ProviderStub},
		{model: "gemini-2.5-flash", expected: ProviderGemini},
		{model: "gemini-2.5-pro", expected: ProviderGemini},
		{model: "gpt-4o", expected: ProviderOpenAI},
		{model: "gpt-4.1-mini", expected: ProviderOpenAI},
		{model: "o3-mini", expected: ProviderOpenAI},
		{model: "o4-mini", expected: ProviderOpenAI},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider, err := ProviderForModel(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, provider)
		})
	}
}

func TestProviderForModel_Unsupported(t *testing.T) {
	for _, model := range []string{"", "claude-x", "llama-3", "gemini"} {
		t.Run(model, func(t *testing.T) {
			_, err := ProviderForModel(model)
			require.Error(t, err)

			var unsupported *UnsupportedModelError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, model, unsupported.Model)
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Kind: KindAPICall, Model: "gpt-4o", Message: "failed", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "api_call")
	assert.Contains(t, err.Error(), "gpt-4o")

	bare := &Error{Kind: KindParse, Model: "m", Message: "bad"}
	assert.Equal(t, "llm parse error (m): bad", bare.Error())
}

func TestDefaultModel(t *testing.T) {
	tests := []struct {
		name     string
		cfg      FactoryConfig
		expected string
	}{
		{name: "no keys", cfg: FactoryConfig{}, expected: StubModel},
		{name: "stub forced", cfg: FactoryConfig{UseStub: true, GeminiAPIKey: "g"}, expected: StubModel},
		{name: "gemini preferred", cfg: FactoryConfig{GeminiAPIKey: "g", OpenAIAPIKey: "o"}, expected: DefaultGeminiModel},
		{name: "openai only", cfg: FactoryConfig{OpenAIAPIKey: "o"}, expected: DefaultOpenAIModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := DefaultModel(tt.cfg)
			assert.Equal(t, tt.expected, model)

			_, err := ProviderForModel(model)
			assert.NoError(t, err)
		})
	}
}
