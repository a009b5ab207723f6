package generation

import (
	"context"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// Completer is the chat-completion contract for answer generation.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
