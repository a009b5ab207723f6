package evaluation

import (
	"context"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// Completer is the chat-completion contract for the judge model.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
