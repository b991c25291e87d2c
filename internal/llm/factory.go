package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// FactoryConfig selects and authenticates gateway backends.
type FactoryConfig struct {
	// UseStub forces the deterministic stub for every model name.
	UseStub      bool
	GeminiAPIKey string
	OpenAIAPIKey string
}

// ClientFactory resolves model names to gateways. Provider clients are created on
// first use and shared across requests.
type ClientFactory struct {
	cfg FactoryConfig

	mu      sync.Mutex
	clients map[Provider]Client

	newGemini func(ctx context.Context, apiKey string) (Client, error)
	newOpenAI func(apiKey string) (Client, error)
}

var _ Factory = (*ClientFactory)(nil)

// NewClientFactory creates a factory for cfg.
func NewClientFactory(cfg FactoryConfig) *ClientFactory {
	return &ClientFactory{
		cfg:     cfg,
		clients: make(map[Provider]Client),
		newGemini: func(ctx context.Context, apiKey string) (Client, error) {
			return NewGeminiClient(ctx, apiKey)
		},
		newOpenAI: func(apiKey string) (Client, error) {
			return NewOpenAIClient(apiKey)
		},
	}
}

// WithClient registers a prebuilt client for a provider, replacing lazy creation.
func (f *ClientFactory) WithClient(provider Provider, client Client) *ClientFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[provider] = client
	return f
}

// Gateway returns the gateway serving model.
func (f *ClientFactory) Gateway(ctx context.Context, model string) (Gateway, error) {
	if f.cfg.UseStub {
		return StubGateway{}, nil
	}

	provider, err := ProviderForModel(model)
	if err != nil {
		return nil, err
	}
	if provider == ProviderStub {
		return StubGateway{}, nil
	}

	client, err := f.client(ctx, provider)
	if err != nil {
		return nil, err
	}
	return NewProviderGateway(client, model), nil
}

func (f *ClientFactory) client(ctx context.Context, provider Provider) (Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[provider]; ok {
		return client, nil
	}

	var (
		client Client
		err    error
	)
	switch provider {
	case ProviderGemini:
		client, err = f.newGemini(ctx, f.cfg.GeminiAPIKey)
	case ProviderOpenAI:
		client, err = f.newOpenAI(f.cfg.OpenAIAPIKey)
	default:
		return nil, fmt.Errorf("no client for provider %q", provider)
	}
	if err != nil {
		return nil, &Error{Kind: KindAPICall, Model: string(provider), Message: "failed to create client", Cause: err}
	}

	f.clients[provider] = client
	return client, nil
}

// Close closes every client the factory created.
func (f *ClientFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for provider, client := range f.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s client: %w", provider, err))
		}
		delete(f.clients, provider)
	}
	return errors.Join(errs...)
}
