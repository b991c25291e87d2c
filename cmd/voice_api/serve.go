package main

import (
	"context"
	"fmt"

	"github.com/jonathan/voice-api/internal/config"
	"github.com/jonathan/voice-api/internal/db"
	"github.com/jonathan/voice-api/internal/fetch"
	"github.com/jonathan/voice-api/internal/llm"
	"github.com/jonathan/voice-api/internal/server"
	"github.com/jonathan/voice-api/internal/server/ratelimit"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveHost    string
	serveMemory  bool
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for brands, voice profiles and voice evaluations.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT, default 8000)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind (overrides HOST, default 0.0.0.0)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Use the in-memory store instead of PostgreSQL")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the environment and applies serve flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = serveHost
	}
	if serveMemory {
		cfg.UseMemoryStore = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore connects the configured backing store.
func openStore(ctx context.Context, cfg *config.Config, migrate bool) (store.Store, error) {
	if cfg.UseMemoryStore {
		logger.Warnw("using in-memory store; data is lost on exit")
		return store.NewMemoryStore(), nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if migrate {
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		logger.Infow("database schema applied")
	}
	return database, nil
}

// newFetcher builds the page fetcher, fronted by Redis when REDIS_URL is set.
func newFetcher(cfg *config.Config) (fetch.PageFetcher, func(), error) {
	opts := fetch.DefaultOptions()
	opts.Timeout = cfg.FetchTimeout
	var fetcher fetch.PageFetcher = fetch.NewHTTPFetcher(opts, cfg.UseBrowser, logger)

	if cfg.RedisURL == "" {
		return fetcher, func() {}, nil
	}
	client, err := fetch.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	cached := fetch.NewCachedFetcher(client, fetcher, cfg.PageCacheTTL, logger)
	logger.Infow("page cache enabled", "ttl", cfg.PageCacheTTL)
	return cached, func() { _ = cached.Close() }, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	jwtCfg, err := config.OptionalJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}
	rateCfg, err := ratelimit.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load rate limit config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := openStore(ctx, cfg, serveMigrate)
	if err != nil {
		return err
	}

	fetcher, closeFetcher, err := newFetcher(cfg)
	if err != nil {
		st.Close()
		return err
	}
	defer closeFetcher()

	gateways := llm.NewClientFactory(llm.FactoryConfig{
		UseStub:      cfg.UseStubLLM,
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	})
	defer func() { _ = gateways.Close() }()
	if cfg.UseStubLLM {
		logger.Warnw("stub LLM enabled; voice profiles are deterministic placeholders")
	}

	srv, err := server.New(server.Deps{
		Config:    cfg,
		Store:     st,
		Gateways:  gateways,
		Fetcher:   fetcher,
		JWT:       jwtCfg,
		RateLimit: rateCfg,
		Logger:    logger,
	})
	if err != nil {
		st.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
