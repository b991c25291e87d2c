package llm

import (
	"context"

	"github.com/google/generative-ai-go/genai"
)

// Client is an abstraction over LLM providers that return JSON text.
type Client interface {
	// GenerateJSON sends the prompt to the requested model and returns its raw JSON output.
	// A response that did not run to completion is reported as *Error with KindIncomplete.
	GenerateJSON(ctx context.Context, req Request) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// Request is a single structured-output call.
type Request struct {
	Model  string
	Prompt string
	// Schema is a response schema hint; providers without native schema support ignore it.
	Schema *genai.Schema
}
