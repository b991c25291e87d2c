// Package schemas provides JSON Schema validation for language-model output and
// generated voice profile documents. Schemas are embedded at compile time.
package schemas

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Embedded schema names.
const (
	// VoiceProfileOutput validates the content a model returns for profile generation
	VoiceProfileOutput = "voice_profile_output.schema.json"
	// VoiceEvaluationOutput validates the content a model returns for text evaluation
	VoiceEvaluationOutput = "voice_evaluation_output.schema.json"
	// VoiceProfile validates a complete stored voice profile document
	VoiceProfile = "voice_profile.schema.json"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Get returns the content of an embedded schema.
func Get(name string) (string, error) {
	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		return "", &SchemaLoadError{Path: name, Message: "embedded schema not found", Cause: err}
	}
	return string(data), nil
}

// Validate checks JSON content against an embedded schema.
func Validate(name, jsonContent string) error {
	schema, err := Get(name)
	if err != nil {
		return err
	}
	return validate(name, gojsonschema.NewStringLoader(schema), gojsonschema.NewStringLoader(jsonContent))
}

// ValidateFile checks a JSON file on disk against an embedded schema.
func ValidateFile(name, jsonPath string) error {
	absPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", absPath)
	}

	schema, err := Get(name)
	if err != nil {
		return err
	}
	return validate(name, gojsonschema.NewStringLoader(schema), gojsonschema.NewReferenceLoader("file://"+absPath))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)", gojsonschema.NewStringLoader(schemaContent), gojsonschema.NewStringLoader(jsonContent))
}

func validate(schemaName string, schemaLoader, documentLoader gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaName,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
