// Package schemas provides JSON Schema validation for LLM outputs and corpus source files.
// Schemas are embedded at compile time so validation works from any working directory.
package schemas

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Embedded schema names.
const (
	ResumeProfile = "resume_profile"
	MatchScore    = "match_score"
	CareerSource  = "career_source"
)

// compiled schemas are cached after first use
var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.RWMutex
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

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks JSON content against the named embedded schema.
// Returns *ValidationError for content violations, *SchemaLoadError if the
// schema itself cannot be loaded, nil if the content is valid.
func Validate(name, jsonContent string) error {
	schema, err := loadSchema(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		// Document is not parseable JSON at all
		return &ValidationError{Errors: []FieldError{
			{Field: "(root)", Message: fmt.Sprintf("invalid JSON: %v", err)},
		}}
	}

	if result.Valid() {
		return nil
	}

	return resultError(result)
}

// ValidateFile checks a JSON file on disk against the named embedded schema.
func ValidateFile(name, jsonPath string) error {
	content, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}
	return Validate(name, string(content))
}

// ValidateJSONString validates JSON string content against schema string content.
// Used for ad hoc schemas; prefer Validate with an embedded schema name.
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Name:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	return resultError(result)
}

func resultError(result *gojsonschema.Result) error {
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

func loadSchema(name string) (*gojsonschema.Schema, error) {
	compiledMu.RLock()
	if schema, ok := compiled[name]; ok {
		compiledMu.RUnlock()
		return schema, nil
	}
	compiledMu.RUnlock()

	data, err := schemaFiles.ReadFile(name + ".schema.json")
	if err != nil {
		return nil, &SchemaLoadError{
			Name:    name,
			Message: "no embedded schema with this name",
			Cause:   err,
		}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{
			Name:    name,
			Message: "schema does not compile",
			Cause:   err,
		}
	}

	compiledMu.Lock()
	compiled[name] = schema
	compiledMu.Unlock()

	return schema, nil
}
