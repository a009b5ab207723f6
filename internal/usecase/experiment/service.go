// Package experiment fans one query out across several chunk-size
// configurations and aggregates the outcomes into a comparison. Legs are
// independent: a failed leg is recorded inline and never aborts the batch.
package experiment

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/metrics"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/rag"
)

// DefaultConcurrency bounds how many legs run at once.
const DefaultConcurrency = 2

// Request describes one experiment: the same query and documents tested at
// every listed chunk size under shared overlap/top-K/model settings.
type Request struct {
	Query      string
	DocIDs     []string
	ChunkSizes []int
	Base       domain.Config // overlap, top-K, model, temperature shared by all legs
	Evaluate   bool
}

// Service runs experiment legs on a bounded worker pool.
type Service struct {
	runner      Runner
	concurrency int
	logger      *zap.Logger
}

// New creates an experiment orchestrator.
func New(runner Runner, concurrency int, logger *zap.Logger) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{runner: runner, concurrency: concurrency, logger: logger}
}

type legJob struct {
	pos       int
	chunkSize int
}

// Run executes one leg per chunk size and returns every outcome in the
// requested order. Leg isolation comes from the index partition key: each
// leg only inserts and searches (document, its own chunk size) entries, so
// concurrent legs never retrieve each other's chunks.
//
// Cancelling ctx stops dispatching new legs; legs already in flight finish
// or fail on their own and their outcomes are still recorded. Legs never
// dispatched are recorded with the cancellation error.
func (s *Service) Run(ctx context.Context, req Request) (domain.ExperimentResult, error) {
	legs := make([]domain.LegOutcome, len(req.ChunkSizes))

	jobs := make(chan legJob)
	var wg sync.WaitGroup

	workers := s.concurrency
	if workers > len(req.ChunkSizes) {
		workers = len(req.ChunkSizes)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				legs[job.pos] = s.runLeg(ctx, req, job.chunkSize)
			}
		}()
	}

dispatch:
	for i, size := range req.ChunkSizes {
		select {
		case <-ctx.Done():
			for j := i; j < len(req.ChunkSizes); j++ {
				legs[j] = domain.LegOutcome{
					ChunkSize: req.ChunkSizes[j],
					Error:     ctx.Err().Error(),
				}
			}
			break dispatch
		case jobs <- legJob{pos: i, chunkSize: size}:
		}
	}
	close(jobs)
	wg.Wait()

	for _, leg := range legs {
		if leg.Failed() {
			metrics.ExperimentLegsTotal.WithLabelValues("error").Inc()
		} else {
			metrics.ExperimentLegsTotal.WithLabelValues("ok").Inc()
		}
	}

	result := domain.ExperimentResult{
		Query:            req.Query,
		Experiments:      legs,
		TotalExperiments: len(legs),
		BestChunkSize:    bestChunkSize(legs),
	}

	s.logger.Info("experiment completed",
		zap.Int("legs", len(legs)),
		zap.Ints("chunk_sizes", req.ChunkSizes),
	)
	return result, nil
}

// runLeg executes one configuration and converts any failure, panics
// included, into an error outcome attached to that chunk size.
func (s *Service) runLeg(ctx context.Context, req Request, chunkSize int) (out domain.LegOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("experiment leg panicked",
				zap.Int("chunk_size", chunkSize), zap.Any("panic", r))
			out = domain.LegOutcome{ChunkSize: chunkSize, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	cfg, err := req.Base.WithChunkSize(chunkSize)
	if err != nil {
		return domain.LegOutcome{ChunkSize: chunkSize, Error: err.Error()}
	}

	res, err := s.runner.Run(ctx, rag.RunRequest{
		Query:    req.Query,
		DocIDs:   req.DocIDs,
		Config:   cfg,
		Evaluate: req.Evaluate,
	})
	if err != nil {
		s.logger.Warn("experiment leg failed",
			zap.Int("chunk_size", chunkSize), zap.Error(err))
		return domain.LegOutcome{ChunkSize: chunkSize, Error: err.Error()}
	}
	return domain.LegOutcome{ChunkSize: chunkSize, Result: &res}
}

// bestChunkSize picks the recommended configuration among completed legs.
// Rule: the highest evaluator overall score wins when any leg was evaluated;
// otherwise the leg with the most retrieved chunks wins. Ties are broken by
// the smaller chunk size. Returns nil when every leg failed.
func bestChunkSize(legs []domain.LegOutcome) *int {
	var best *domain.LegOutcome
	anyEvaluated := false
	for i := range legs {
		if !legs[i].Failed() && legs[i].Result.Evaluation != nil {
			anyEvaluated = true
			break
		}
	}

	better := func(a, b *domain.LegOutcome) bool {
		if anyEvaluated {
			ae, be := a.Result.Evaluation, b.Result.Evaluation
			switch {
			case ae == nil:
				return false
			case be == nil:
				return true
			case ae.Overall != be.Overall:
				return ae.Overall > be.Overall
			}
		} else if len(a.Result.RetrievedChunks) != len(b.Result.RetrievedChunks) {
			return len(a.Result.RetrievedChunks) > len(b.Result.RetrievedChunks)
		}
		return a.ChunkSize < b.ChunkSize
	}

	for i := range legs {
		leg := &legs[i]
		if leg.Failed() {
			continue
		}
		if best == nil || better(leg, best) {
			best = leg
		}
	}
	if best == nil {
		return nil
	}
	size := best.ChunkSize
	return &size
}
