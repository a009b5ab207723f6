package domain

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig signals an invalid pipeline configuration
	// (chunk size, overlap, top-k, or temperature out of bounds).
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentEmpty signals a document with no extracted text.
	ErrDocumentEmpty = errors.New("document has no text content")
	// ErrNoChunks signals that chunking the selected documents produced nothing.
	ErrNoChunks = errors.New("no chunks created from documents")
	// ErrVectorDimMismatch signals a vector dimension mismatch on insert.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrGenerationFailed signals an upstream LLM failure or empty completion.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEvaluationParse signals a malformed or out-of-range evaluator response.
	ErrEvaluationParse = errors.New("evaluation response malformed")
	// ErrProviderUnavailable signals an embedding or LLM provider failure.
	ErrProviderUnavailable = errors.New("model provider unavailable")
	// ErrUnsupportedFileType signals an upload with an unknown extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrExtractionFailed signals that text extraction produced nothing usable.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// IsRetryable reports whether an error is transient (timeout, cancellation,
// provider outage) as opposed to fatal (bad configuration, malformed response).
// The engine never retries on its own; callers use this to build retry policy.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return errors.Is(err, ErrProviderUnavailable)
}
