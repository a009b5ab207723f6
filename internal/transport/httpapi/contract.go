package httpapi

import (
	"context"
	"io"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/index"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/evaluation"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/experiment"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/generation"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/health"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/rag"
)

// RAGRunner executes one pipeline pass.
type RAGRunner interface {
	Run(ctx context.Context, req rag.RunRequest) (domain.RAGResult, error)
}

// ExperimentRunner executes one multi-configuration experiment.
type ExperimentRunner interface {
	Run(ctx context.Context, req experiment.Request) (domain.ExperimentResult, error)
}

// Evaluator judges generated answers.
type Evaluator interface {
	Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationScore, error)
	EvaluateBatch(ctx context.Context, reqs []domain.EvaluationRequest) evaluation.BatchResult
}

// QuestionGenerator builds evaluation question sets from document text.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, docText string, n int, model string) ([]generation.Question, error)
}

// DocumentManager handles uploads and the document registry.
type DocumentManager interface {
	Upload(ctx context.Context, filename string, r io.Reader) (domain.Document, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// VectorIndex exposes the index operations the API needs directly.
type VectorIndex interface {
	Stats() index.Stats
	Clear()
}
