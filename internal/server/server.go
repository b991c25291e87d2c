// Package server provides the HTTP REST API for brand voice management.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/voice-api/internal/brands"
	"github.com/jonathan/voice-api/internal/config"
	"github.com/jonathan/voice-api/internal/fetch"
	"github.com/jonathan/voice-api/internal/llm"
	"github.com/jonathan/voice-api/internal/server/middleware"
	"github.com/jonathan/voice-api/internal/server/ratelimit"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/jonathan/voice-api/internal/voice"
	"go.uber.org/zap"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       store.Store
	brands      *brands.Registry
	voices      *voice.Service
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	logger      *zap.SugaredLogger
	appName     string
	version     string
}

// Deps holds everything the server is built from.
type Deps struct {
	Config   *config.Config
	Store    store.Store
	Gateways llm.Factory
	Fetcher  fetch.PageFetcher

	// JWT enables bearer auth when non-nil.
	JWT *config.JWTConfig
	// RateLimit defaults to ratelimit.NewLimiter's built-in config when nil.
	RateLimit *ratelimit.Config
	Logger    *zap.SugaredLogger
}

// New creates a new server instance
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if deps.Gateways == nil {
		return nil, fmt.Errorf("llm gateway factory is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Server{
		store:       deps.Store,
		brands:      brands.NewRegistry(deps.Store, logger),
		voices:      voice.NewService(deps.Store, deps.Gateways, deps.Fetcher, logger),
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		logger:      logger,
		appName:     deps.Config.AppName,
		version:     deps.Config.Version,
	}
	if deps.JWT != nil {
		s.jwtService = NewJWTService(deps.JWT)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Brands
	mux.HandleFunc("POST /brands", s.handleCreateBrand)
	mux.HandleFunc("POST /brands/{$}", s.handleCreateBrand)
	mux.HandleFunc("GET /brands", s.handleListBrands)
	mux.HandleFunc("GET /brands/{$}", s.handleListBrands)
	mux.HandleFunc("GET /brands/{brand_id}", s.handleGetBrand)

	// Voice profiles
	mux.HandleFunc("POST /brands/{brand_id}/voices:generate", s.handleGenerateVoice)
	mux.HandleFunc("GET /brands/{brand_id}/voices/latest", s.handleGetLatestVoice)
	mux.HandleFunc("GET /brands/{brand_id}/voices/{version}", s.handleGetVoiceVersion)
	mux.HandleFunc("POST /brands/{brand_id}/voices/{version}/evaluate", s.handleEvaluateVoice)
	mux.HandleFunc("GET /brands/{brand_id}/voices/{version}/evaluations", s.handleListEvaluations)

	s.httpServer = &http.Server{
		Addr:         deps.Config.Addr(),
		Handler:      s.withRateLimit(s.withAuth(s.withLogging(s.withCORS(mux)))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // LLM generation can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("server starting", "addr", s.httpServer.Addr, "auth", s.jwtService != nil)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) close() {
	s.rateLimiter.Stop()
	s.store.Close()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withAuth requires a bearer token when JWT is configured.
func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.jwtService == nil {
		return next
	}
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), authExempt)(next)
}

// authExempt lets the root, health and CORS preflight requests through.
func authExempt(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	return r.Method == http.MethodGet && (r.URL.Path == "/" || r.URL.Path == "/health")
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		}
		if subject, err := middleware.Subject(r); err == nil {
			fields = append(fields, "subject", subject)
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warnw("request failed", fields...)
			return
		}
		s.logger.Infow("request", fields...)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorw("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]any{"success": false, "error": message})
}

// handleError maps err to a status and writes it; unmapped errors are logged
// and hidden behind a generic message.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request error", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.errorResponse(w, status, errorMessage(err))
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"success":   false,
		"error":     "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warnw("rate limit exceeded",
		"client", s.extractClientID(r),
		"path", r.URL.Path,
		"tier", info.Tier,
		"limit", info.Limit)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
