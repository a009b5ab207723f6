// Package rag runs one end-to-end retrieval-augmented-generation pass:
// chunk the selected documents, embed and index the chunks, retrieve the
// top-K most similar ones for the query, and generate a grounded answer.
package rag

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/chunker"
	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/index"
	"github.com/HansujaB/rag-insights-engine/internal/metrics"
)

// NoContextAnswer is returned when retrieval finds nothing for the query.
const NoContextAnswer = "No relevant information found in the documents."

// RunRequest describes one pipeline run.
type RunRequest struct {
	Query    string
	DocIDs   []string
	Config   domain.Config
	Evaluate bool
}

// Service orchestrates the linear pipeline. Any stage failure aborts the
// run; no partial result is returned.
type Service struct {
	docs      DocumentReader
	idx       VectorIndex
	embedder  Embedder
	generator Generator
	evaluator Evaluator
	logger    *zap.Logger
}

// New creates a pipeline service. evaluator may be nil.
func New(
	docs DocumentReader, idx VectorIndex, embedder Embedder,
	generator Generator, evaluator Evaluator, logger *zap.Logger,
) *Service {
	return &Service{
		docs:      docs,
		idx:       idx,
		embedder:  embedder,
		generator: generator,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Run executes the pipeline for one configuration. The run only ever
// searches its own (document, chunk size) partitions, so leftovers from
// other configurations cannot contaminate the result.
func (s *Service) Run(ctx context.Context, req RunRequest) (domain.RAGResult, error) {
	start := time.Now()

	if len(req.DocIDs) == 0 {
		return domain.RAGResult{}, fmt.Errorf("%w: no documents specified", domain.ErrInvalidConfig)
	}

	docs, err := s.docs.GetAll(ctx, req.DocIDs)
	if err != nil {
		return domain.RAGResult{}, fmt.Errorf("load documents: %w", err)
	}

	totalChunks, err := s.indexDocuments(ctx, docs, req.Config)
	if err != nil {
		return domain.RAGResult{}, err
	}
	if totalChunks == 0 {
		return domain.RAGResult{}, domain.ErrNoChunks
	}

	hits, err := s.retrieve(ctx, req)
	if err != nil {
		return domain.RAGResult{}, err
	}

	result := domain.RAGResult{
		Query:              req.Query,
		RetrievedChunks:    hits,
		Config:             req.Config.Summary(),
		TotalChunksIndexed: totalChunks,
	}

	if len(hits) == 0 {
		result.Answer = NoContextAnswer
		result.RetrievedChunks = []domain.RetrievalHit{}
		result.LatencySeconds = time.Since(start).Seconds()
		return result, nil
	}

	contextChunks := make([]string, len(hits))
	for i, h := range hits {
		contextChunks[i] = h.Text
	}

	answer, usage, err := s.generator.Generate(
		ctx, req.Query, contextChunks, req.Config.ModelName(), req.Config.Temperature(),
	)
	if err != nil {
		return domain.RAGResult{}, err
	}
	result.Answer = answer
	result.Usage = usage

	if req.Evaluate && s.evaluator != nil {
		score, err := s.evaluator.Evaluate(ctx, domain.EvaluationRequest{
			Query:           req.Query,
			GeneratedAnswer: answer,
			ContextChunks:   contextChunks,
		})
		if err != nil {
			return domain.RAGResult{}, fmt.Errorf("evaluate run: %w", err)
		}
		result.Evaluation = &score
	}

	result.LatencySeconds = time.Since(start).Seconds()

	s.logger.Info("rag run completed",
		zap.Int("chunk_size", req.Config.ChunkSize()),
		zap.Int("chunks_indexed", totalChunks),
		zap.Int("hits", len(hits)),
		zap.Float64("latency_sec", result.LatencySeconds),
	)
	return result, nil
}

// indexDocuments chunks and embeds every selected document at this run's
// chunk size. The partition for each (document, chunk size) pair is cleared
// first so a re-run never searches stale chunks.
func (s *Service) indexDocuments(ctx context.Context, docs []domain.Document, cfg domain.Config) (int, error) {
	total := 0
	for _, doc := range docs {
		if doc.Text == "" {
			continue
		}

		chunks, err := chunker.SplitConfig(doc.ID, doc.Text, cfg)
		if err != nil {
			return 0, fmt.Errorf("chunk document %s: %w", doc.ID, err)
		}
		if len(chunks) == 0 {
			continue
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		embedded, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed chunks of %s: %w", doc.ID, err)
		}

		s.idx.ClearPartition(doc.ID, cfg.ChunkSize())
		if err := s.idx.Insert(chunks, embedded.Embeddings); err != nil {
			return 0, fmt.Errorf("index chunks of %s: %w", doc.ID, err)
		}
		total += len(chunks)
	}

	metrics.IndexedChunks.Set(float64(s.idx.Stats().TotalChunks))
	return total, nil
}

func (s *Service) retrieve(ctx context.Context, req RunRequest) ([]domain.RetrievalHit, error) {
	queryEmb, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits := s.idx.Search(queryEmb.Embedding, req.Config.TopK(), index.Filter{
		DocIDs:    req.DocIDs,
		ChunkSize: req.Config.ChunkSize(),
	})
	return hits, nil
}
