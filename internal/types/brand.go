// Package types provides type definitions for brands, voice profiles and evaluations used throughout the voice API.
package types

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Brand is a stored brand record. Brands are immutable once created.
type Brand struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CanonicalURL *string   `json:"canonical_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateBrandRequest is the body of POST /brands/.
type CreateBrandRequest struct {
	Name         string `json:"name" validate:"required,min=1,nonul"`
	CanonicalURL string `json:"canonical_url,omitempty" validate:"omitempty,url"`
}

// Validate validates the CreateBrandRequest using the validator.
func (r *CreateBrandRequest) Validate() error {
	return validate.Struct(r)
}

// BrandResponse wraps a single brand.
type BrandResponse struct {
	Success bool   `json:"success"`
	Brand   *Brand `json:"brand"`
	Message string `json:"message"`
}

// BrandListResponse wraps every stored brand.
type BrandListResponse struct {
	Success bool    `json:"success"`
	Brands  []Brand `json:"brands"`
	Message string  `json:"message"`
}

// validate is shared by every request type; validator.Validate caches struct metadata
// and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// PostgreSQL text columns cannot hold NUL bytes.
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	v.RegisterStructValidation(voiceInputsStructLevel, VoiceInputs{})
	return v
}
