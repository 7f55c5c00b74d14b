// Package server provides the HTTP REST API for the career matcher.
package server

import (
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"google.golang.org/api/googleapi"

	"github.com/jonathan/career-matcher/internal/pipeline"
	"github.com/jonathan/career-matcher/internal/types"
)

// Stable error codes returned in the error envelope. Clients branch on these,
// so they never change even if the underlying messages do.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeEmbeddingFailed  = "EMBEDDING_FAILED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Field-level details, present only for INVALID_INPUT
	Fields []types.FieldError `json:"fields,omitempty"`
}

// ClassifyError maps a pipeline failure to a stable error code and HTTP
// status. An upstream provider 429 anywhere in the chain wins over the stage
// classification: the caller should back off, not blame the stage.
func ClassifyError(err error) (string, int) {
	var validationErr *types.InputValidationError
	if errors.As(err, &validationErr) {
		return CodeInvalidInput, http.StatusBadRequest
	}

	if isUpstreamRateLimit(err) {
		return CodeRateLimited, http.StatusTooManyRequests
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case pipeline.StageExtraction:
			return CodeExtractionFailed, http.StatusBadGateway
		case pipeline.StageEmbedding:
			return CodeEmbeddingFailed, http.StatusBadGateway
		}
	}

	return CodeInternalError, http.StatusInternalServerError
}

// isUpstreamRateLimit reports whether the error chain contains a 429 from
// either provider SDK.
func isUpstreamRateLimit(err error) bool {
	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) && googleErr.Code == http.StatusTooManyRequests {
		return true
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) && openaiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	return false
}

// errorFields returns the field-level details for validation failures, nil
// otherwise.
func errorFields(err error) []types.FieldError {
	var validationErr *types.InputValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}
