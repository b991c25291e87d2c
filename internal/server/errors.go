package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/voice-api/internal/fetch"
	"github.com/jonathan/voice-api/internal/llm"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/jonathan/voice-api/internal/voice"
)

// internalErrorMessage is returned for every unmapped error; the detail is logged.
const internalErrorMessage = "Internal server error"

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *voice.NotFoundError
		invalid     *ErrValidation
		fieldErrs   validator.ValidationErrors
		unsupported *llm.UnsupportedModelError
		fetchErr    *fetch.Error
		llmErr      *llm.Error
		conflict    *store.VersionConflictError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &fieldErrs):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unsupported), errors.As(err, &fetchErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &llmErr) && llmErr.Kind != llm.KindAPICall:
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing message for err.
func errorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return extractValidationErrors(fieldErrs)
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return internalErrorMessage
	}
	return err.Error()
}

// extractValidationErrors renders validator field errors as one message.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "validation error: invalid request"
	}

	parts := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s - %s", fieldPath(ve), describeTag(ve)))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must not be empty"
	case "nonul":
		return "must not contain NUL characters"
	case "urls_or_writing_samples":
		return "at least one of urls or writing_samples is required"
	default:
		return fe.Tag()
	}
}
