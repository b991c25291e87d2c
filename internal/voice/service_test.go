package voice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/voice-api/internal/fetch"
	"github.com/jonathan/voice-api/internal/llm"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/jonathan/voice-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapFetcher serves page text from a map; unknown URLs fail like an HTTP 404.
type mapFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	seen  []string
}

func (f *mapFetcher) PageText(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, url)
	text, ok := f.pages[url]
	if !ok {
		return "", &fetch.Error{URL: url, Message: "HTTP status 404"}
	}
	return text, nil
}

// recordingGateway wraps the stub and remembers what it was asked.
type recordingGateway struct {
	llm.StubGateway
	siteText string
	samples  []string
	err      error
}

func (g *recordingGateway) GenerateVoiceProfile(ctx context.Context, brand *types.Brand, siteText string, samples []string) (*types.VoiceProfile, error) {
	g.siteText, g.samples = siteText, samples
	if g.err != nil {
		return nil, g.err
	}
	return g.StubGateway.GenerateVoiceProfile(ctx, brand, siteText, samples)
}

func (g *recordingGateway) EvaluateText(ctx context.Context, profile *types.VoiceProfile, text string) (*types.VoiceEvaluation, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.StubGateway.EvaluateText(ctx, profile, text)
}

// fixedFactory returns the same gateway for every model.
type fixedFactory struct {
	gateway llm.Gateway
	models  []string
}

func (f *fixedFactory) Gateway(_ context.Context, model string) (llm.Gateway, error) {
	f.models = append(f.models, model)
	return f.gateway, nil
}

// staleMaxStore reports a stale highest version to force a version collision.
type staleMaxStore struct {
	*store.MemoryStore
	stale int
}

func (s *staleMaxStore) MaxVoiceVersion(context.Context, uuid.UUID) (int, error) {
	return s.stale, nil
}

func newStubService(t *testing.T) (*Service, *store.MemoryStore, *types.Brand) {
	t.Helper()
	mem := store.NewMemoryStore()
	brand, err := mem.CreateBrand(context.Background(), &types.Brand{Name: "Acme"})
	require.NoError(t, err)
	svc := NewService(mem, llm.NewClientFactory(llm.FactoryConfig{UseStub: true}), &mapFetcher{}, nil)
	return svc, mem, brand
}

func samplesRequest(samples ...string) types.GenerateVoiceRequest {
	return types.GenerateVoiceRequest{
		Inputs:   types.VoiceInputs{WritingSamples: samples},
		LLMModel: llm.StubModel,
	}
}

func TestService_AcmeScenario(t *testing.T) {
	svc, _, brand := newStubService(t)
	ctx := context.Background()

	first, err := svc.Generate(ctx, brand.ID, samplesRequest("Hi there, friend!"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.Len(t, first.Metrics, 5)
	assert.True(t, first.Metrics.Complete())
	assert.Equal(t, types.SourceManual, first.Source)
	assert.Equal(t, brand.ID, first.BrandID)

	second, err := svc.Generate(ctx, brand.ID, samplesRequest("Hi there, friend!"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, first.Metrics, second.Metrics, "stub output is deterministic")

	profile, err := svc.GetByVersion(ctx, brand.ID, 1)
	require.NoError(t, err)
	evaluation, err := svc.Evaluate(ctx, profile, "Hello")
	require.NoError(t, err)
	assert.Len(t, evaluation.Scores, 5)
	assert.NotEmpty(t, evaluation.Suggestions)

	recorded, err := svc.RecordEvaluation(ctx, evaluation)
	require.NoError(t, err)
	assert.Equal(t, first.ID, recorded.VoiceProfileID)
	assert.False(t, recorded.CreatedAt.IsZero())

	latest, err := svc.GetLatest(ctx, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)

	_, err = svc.GetByVersion(ctx, brand.ID, 99)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Voice profile version 99 not found for this brand", notFound.Message)
}

func TestService_Generate_ContinuesFromHighestVersion(t *testing.T) {
	svc, mem, brand := newStubService(t)
	ctx := context.Background()

	for v := 1; v <= 5; v++ {
		_, err := mem.CreateVoiceProfile(ctx, &types.VoiceProfile{
			BrandID: brand.ID, Version: v, Metrics: types.Metrics{}, LLMModel: llm.StubModel, Source: types.SourceManual,
		})
		require.NoError(t, err)
	}

	profile, err := svc.Generate(ctx, brand.ID, samplesRequest("More copy"))
	require.NoError(t, err)
	assert.Equal(t, 6, profile.Version)
}

func TestService_Generate_VersionsArePerBrand(t *testing.T) {
	svc, mem, acme := newStubService(t)
	ctx := context.Background()
	globex, err := mem.CreateBrand(ctx, &types.Brand{Name: "Globex"})
	require.NoError(t, err)

	_, err = svc.Generate(ctx, acme.ID, samplesRequest("a"))
	require.NoError(t, err)
	_, err = svc.Generate(ctx, acme.ID, samplesRequest("b"))
	require.NoError(t, err)

	profile, err := svc.Generate(ctx, globex.ID, samplesRequest("c"))
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Version)
}

func TestService_Generate_UnknownBrand(t *testing.T) {
	svc, _, _ := newStubService(t)
	missing := uuid.New()

	_, err := svc.Generate(context.Background(), missing, samplesRequest("x"))

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Brand with id "+missing.String()+" not found", notFound.Error())
}

func TestService_Generate_FetchesURLsInOrder(t *testing.T) {
	mem := store.NewMemoryStore()
	brand, err := mem.CreateBrand(context.Background(), &types.Brand{Name: "Acme"})
	require.NoError(t, err)

	fetcher := &mapFetcher{pages: map[string]string{
		"https://acme.com":       "We build rockets.",
		"https://acme.com/about": "Since 1949.",
		"https://acme.com/empty": "",
	}}
	gateway := &recordingGateway{}
	svc := NewService(mem, &fixedFactory{gateway: gateway}, fetcher, nil)

	req := types.GenerateVoiceRequest{
		Inputs: types.VoiceInputs{
			URLs:           []string{"https://acme.com", "https://acme.com/empty", "https://acme.com/about"},
			WritingSamples: []string{"Hello!"},
		},
		LLMModel: "gemini-2.5-flash",
	}
	profile, err := svc.Generate(context.Background(), brand.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "We build rockets. Since 1949.", gateway.siteText)
	assert.Equal(t, []string{"Hello!"}, gateway.samples)
	assert.Equal(t, types.SourceMixed, profile.Source)
	assert.ElementsMatch(t, req.Inputs.URLs, fetcher.seen)
}

func TestService_Generate_FetchFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	brand, err := mem.CreateBrand(context.Background(), &types.Brand{Name: "Acme"})
	require.NoError(t, err)
	svc := NewService(mem, llm.NewClientFactory(llm.FactoryConfig{UseStub: true}), &mapFetcher{}, nil)

	req := types.GenerateVoiceRequest{
		Inputs:   types.VoiceInputs{URLs: []string{"https://gone.example"}},
		LLMModel: llm.StubModel,
	}
	_, err = svc.Generate(context.Background(), brand.ID, req)

	var fetchErr *fetch.Error
	require.True(t, errors.As(err, &fetchErr))

	highest, err := mem.MaxVoiceVersion(context.Background(), brand.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, highest)
}

func TestService_Generate_LLMFailurePersistsNothing(t *testing.T) {
	mem := store.NewMemoryStore()
	brand, err := mem.CreateBrand(context.Background(), &types.Brand{Name: "Acme"})
	require.NoError(t, err)

	failure := &llm.Error{Kind: llm.KindIncomplete, Model: "gpt-4o", Message: "response status \"incomplete\""}
	svc := NewService(mem, &fixedFactory{gateway: &recordingGateway{err: failure}}, &mapFetcher{}, nil)

	_, err = svc.Generate(context.Background(), brand.ID, samplesRequest("x"))
	var llmErr *llm.Error
	require.True(t, errors.As(err, &llmErr))

	latest, err := mem.LatestVoiceProfile(context.Background(), brand.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestService_Generate_VersionConflict(t *testing.T) {
	mem := store.NewMemoryStore()
	brand, err := mem.CreateBrand(context.Background(), &types.Brand{Name: "Acme"})
	require.NoError(t, err)
	stale := &staleMaxStore{MemoryStore: mem}
	svc := NewService(stale, llm.NewClientFactory(llm.FactoryConfig{UseStub: true}), &mapFetcher{}, nil)

	_, err = svc.Generate(context.Background(), brand.ID, samplesRequest("first"))
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), brand.ID, samplesRequest("second"))
	var conflict *store.VersionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 1, conflict.Version)
}

func TestService_Generate_UnsupportedModel(t *testing.T) {
	mem := store.NewMemoryStore()
	brand, err := mem.CreateBrand(context.Background(), &types.Brand{Name: "Acme"})
	require.NoError(t, err)
	svc := NewService(mem, llm.NewClientFactory(llm.FactoryConfig{}), &mapFetcher{}, nil)

	req := samplesRequest("x")
	req.LLMModel = "mystery-9000"
	_, err = svc.Generate(context.Background(), brand.ID, req)

	var unsupported *llm.UnsupportedModelError
	assert.True(t, errors.As(err, &unsupported))
}

func TestService_GetLatest_NoProfile(t *testing.T) {
	svc, _, brand := newStubService(t)

	_, err := svc.GetLatest(context.Background(), brand.ID)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "No voice profile found for brand "+brand.ID.String(), notFound.Message)
}

func TestService_Evaluate_UsesProfileModel(t *testing.T) {
	mem := store.NewMemoryStore()
	brand, err := mem.CreateBrand(context.Background(), &types.Brand{Name: "Acme"})
	require.NoError(t, err)
	factory := &fixedFactory{gateway: &recordingGateway{}}
	svc := NewService(mem, factory, &mapFetcher{}, nil)

	profile := &types.VoiceProfile{ID: uuid.New(), BrandID: brand.ID, Version: 1, LLMModel: "gpt-4o"}
	evaluation, err := svc.Evaluate(context.Background(), profile, "Hello")
	require.NoError(t, err)

	assert.Equal(t, []string{"gpt-4o"}, factory.models)
	assert.Equal(t, profile.ID, evaluation.VoiceProfileID)
	assert.Equal(t, brand.ID, evaluation.BrandID)
	assert.Equal(t, "Hello", evaluation.InputText)
}

func TestService_EvaluateVersionAndList(t *testing.T) {
	svc, _, brand := newStubService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, brand.ID, samplesRequest("Hi there, friend!"))
	require.NoError(t, err)

	for _, text := range []string{"Hello", "Goodbye"} {
		_, err := svc.EvaluateVersion(ctx, brand.ID, 1, text)
		require.NoError(t, err)
	}

	evaluations, err := svc.ListEvaluations(ctx, brand.ID, 1)
	require.NoError(t, err)
	require.Len(t, evaluations, 2)
	assert.Equal(t, "Hello", evaluations[0].InputText)
	assert.Equal(t, "Goodbye", evaluations[1].InputText)

	_, err = svc.EvaluateVersion(ctx, brand.ID, 7, "Hello")
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))

	_, err = svc.ListEvaluations(ctx, brand.ID, 7)
	assert.True(t, errors.As(err, &notFound))
}
