package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/voice-api/internal/types"
)

// handleCreateBrand creates a brand
func (s *Server) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var req types.CreateBrandRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.handleError(w, r, &ErrValidation{Field: "name", Message: "must not be blank"})
		return
	}

	brand, err := s.brands.Create(r.Context(), req.Name, req.CanonicalURL)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.BrandResponse{
		Success: true,
		Brand:   brand,
		Message: fmt.Sprintf("Brand '%s' created successfully", brand.Name),
	})
}

// handleListBrands lists every brand
func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.brands.List(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.BrandListResponse{
		Success: true,
		Brands:  brands,
		Message: fmt.Sprintf("All %d brands retrieved successfully", len(brands)),
	})
}

// handleGetBrand retrieves a brand by ID
func (s *Server) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseBrandID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	brand, err := s.brands.Get(r.Context(), brandID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if brand == nil {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("Brand with id: %s not found", brandID))
		return
	}

	s.jsonResponse(w, http.StatusOK, types.BrandResponse{
		Success: true,
		Brand:   brand,
		Message: fmt.Sprintf("Brand '%s' retrieved successfully", brand.Name),
	})
}
