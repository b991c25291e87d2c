package server

import (
	"fmt"
	"net/http"

	"github.com/jonathan/voice-api/internal/types"
)

// handleGenerateVoice generates the next voice profile version for a brand
func (s *Server) handleGenerateVoice(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseBrandID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req types.GenerateVoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}

	profile, err := s.voices.Generate(r.Context(), brandID, req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.VoiceProfileResponse{
		Success:      true,
		VoiceProfile: profile,
		Message:      fmt.Sprintf("Voice profile version %d created successfully", profile.Version),
	})
}

// handleGetLatestVoice retrieves the highest voice profile version
func (s *Server) handleGetLatestVoice(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseBrandID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	profile, err := s.voices.GetLatest(r.Context(), brandID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.VoiceProfileResponse{
		Success:      true,
		VoiceProfile: profile,
		Message:      "Latest voice profile retrieved successfully",
	})
}

// handleGetVoiceVersion retrieves one voice profile version
func (s *Server) handleGetVoiceVersion(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseBrandID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	version, err := parseVersion(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	profile, err := s.voices.GetByVersion(r.Context(), brandID, version)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.VoiceProfileResponse{
		Success:      true,
		VoiceProfile: profile,
		Message:      fmt.Sprintf("Voice profile version %d retrieved successfully", profile.Version),
	})
}

// handleEvaluateVoice scores text against a voice profile version and records the result
func (s *Server) handleEvaluateVoice(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseBrandID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	version, err := parseVersion(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req types.EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}

	evaluation, err := s.voices.EvaluateVersion(r.Context(), brandID, version, req.Text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.VoiceEvaluationResponse{
		Success:         true,
		VoiceEvaluation: evaluation,
		Message:         "Voice evaluation created successfully",
	})
}

// handleListEvaluations lists the evaluations recorded against a voice profile version
func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseBrandID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	version, err := parseVersion(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	evaluations, err := s.voices.ListEvaluations(r.Context(), brandID, version)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.VoiceEvaluationListResponse{
		Success:          true,
		VoiceEvaluations: evaluations,
		Message:          fmt.Sprintf("All %d voice evaluations retrieved successfully", len(evaluations)),
	})
}
