package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

// RootResponse is the body of GET /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Health  string `json:"health"`
}

// handleRoot returns the service banner
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, RootResponse{
		Message: fmt.Sprintf("Welcome to %s - Brand Voice Management Service", s.appName),
		Version: s.version,
		Health:  "/health",
	})
}

// handleHealth reports whether the store is reachable
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warnw("health check failed", "error", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "error"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// decodeJSON strictly decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is required"}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	if dec.More() {
		return &ErrValidation{Field: "body", Message: "unexpected data after JSON object"}
	}
	return nil
}

// parseBrandID reads the brand_id path value.
func parseBrandID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("brand_id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "brand_id", Message: fmt.Sprintf("invalid UUID %q", raw)}
	}
	return id, nil
}

// parseVersion reads the version path value.
func parseVersion(r *http.Request) (int, error) {
	raw := r.PathValue("version")
	version, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrValidation{Field: "version", Message: fmt.Sprintf("invalid integer %q", raw)}
	}
	return version, nil
}
