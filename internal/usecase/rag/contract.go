package rag

import (
	"context"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/index"
)

// DocumentReader loads the selected documents for a run.
type DocumentReader interface {
	GetAll(ctx context.Context, ids []string) ([]domain.Document, error)
}

// Embedder vectorizes chunk batches and queries.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// VectorIndex is the shared chunk vector store.
type VectorIndex interface {
	Insert(chunks []domain.Chunk, vectors [][]float32) error
	Search(query []float32, topK int, f index.Filter) []domain.RetrievalHit
	ClearPartition(docID string, chunkSize int)
	Stats() index.Stats
}

// Generator produces a grounded answer from ranked context.
type Generator interface {
	Generate(ctx context.Context, query string, contextChunks []string,
		model string, temperature float64) (string, domain.TokenUsage, error)
}

// Evaluator scores a generated answer. Optional; a nil evaluator disables
// per-run evaluation.
type Evaluator interface {
	Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationScore, error)
}
