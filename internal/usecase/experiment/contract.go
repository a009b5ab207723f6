package experiment

import (
	"context"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/rag"
)

// Runner executes one pipeline pass for a single configuration.
type Runner interface {
	Run(ctx context.Context, req rag.RunRequest) (domain.RAGResult, error)
}
