// Package llm provides the voice gateway: a deterministic stub and real-provider
// adapters behind one interface, plus the provider clients they call.
package llm

import "strings"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderStub is the deterministic, network-free gateway
	ProviderStub Provider = "stub"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
)

// StubModel is the model name recorded on stub-generated profiles. Requesting it
// always selects the stub gateway.
const StubModel = "stub-llm"

// Default model names used by the CLI when --model is not given.
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o"
)

// DefaultModel picks a model the factory config can serve: the stub when forced,
// then Gemini, then OpenAI, and the stub when no key is set.
func DefaultModel(cfg FactoryConfig) string {
	switch {
	case cfg.UseStub:
		return StubModel
	case cfg.GeminiAPIKey != "":
		return DefaultGeminiModel
	case cfg.OpenAIAPIKey != "":
		return DefaultOpenAIModel
	default:
		return StubModel
	}
}

// generationTemperature keeps provider output close to deterministic.
const generationTemperature = 0.1

// openAIPrefixes are the model-name prefixes served by the OpenAI client.
var openAIPrefixes = []string{"gpt-", "o1", "o3", "o4", "chatgpt-"}

// ProviderForModel resolves which provider serves a model name.
func ProviderForModel(model string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(model))
	if name == StubModel {
		return ProviderStub, nil
	}
	if strings.HasPrefix(name, "gemini-") {
		return ProviderGemini, nil
	}
	for _, prefix := range openAIPrefixes {
		if strings.HasPrefix(name, prefix) {
			return ProviderOpenAI, nil
		}
	}
	return "", &UnsupportedModelError{Model: model}
}
