package ragengine

import (
	"fmt"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidConfig       = domain.ErrInvalidConfig
	ErrDocumentNotFound    = domain.ErrDocumentNotFound
	ErrNoChunks            = domain.ErrNoChunks
	ErrUnsupportedFileType = domain.ErrUnsupportedFileType
	ErrGenerationFailed    = domain.ErrGenerationFailed
	ErrEvaluationParse     = domain.ErrEvaluationParse
	ErrProviderUnavailable = domain.ErrProviderUnavailable
)

// APIError is a non-2xx response from the engine.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ragengine: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Unwrap maps well-known API error codes back to sentinel errors so callers
// can use errors.Is without inspecting codes.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_config", "validation_failed":
		return ErrInvalidConfig
	case "document_not_found":
		return ErrDocumentNotFound
	case "no_chunks":
		return ErrNoChunks
	case "unsupported_file_type":
		return ErrUnsupportedFileType
	case "generation_failed":
		return ErrGenerationFailed
	case "evaluation_parse_failed":
		return ErrEvaluationParse
	case "provider_unavailable":
		return ErrProviderUnavailable
	default:
		return nil
	}
}
