package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/index"
)

// --- Mocks ---

type mockDocs struct {
	docs map[string]domain.Document
}

func (m *mockDocs) GetAll(_ context.Context, ids []string) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		d, ok := m.docs[id]
		if !ok {
			return nil, domain.ErrDocumentNotFound
		}
		out = append(out, d)
	}
	return out, nil
}

type mockEmbedder struct {
	dim        int
	queryErr   error
	batchErr   error
	batchCalls int
}

func (m *mockEmbedder) vec(text string) []float32 {
	v := make([]float32, m.dim)
	for i := range v {
		v[i] = float32(len(text)%7+i) + 1
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if m.queryErr != nil {
		return domain.EmbeddingResult{}, m.queryErr
	}
	return domain.EmbeddingResult{Embedding: m.vec(text)}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vec(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

type mockGenerator struct {
	answer    string
	err       error
	lastModel string
	lastCtx   []string
}

func (m *mockGenerator) Generate(
	_ context.Context, _ string, contextChunks []string, model string, _ float64,
) (string, domain.TokenUsage, error) {
	m.lastModel = model
	m.lastCtx = contextChunks
	if m.err != nil {
		return "", domain.TokenUsage{}, m.err
	}
	return m.answer, domain.TokenUsage{}, nil
}

type mockEvaluator struct {
	score  domain.EvaluationScore
	err    error
	called bool
}

func (m *mockEvaluator) Evaluate(_ context.Context, _ domain.EvaluationRequest) (domain.EvaluationScore, error) {
	m.called = true
	if m.err != nil {
		return domain.EvaluationScore{}, m.err
	}
	return m.score, nil
}

func testConfig(t *testing.T, chunkSize int) domain.Config {
	t.Helper()
	cfg, err := domain.NewConfig(chunkSize, 10, 5, "test-model", 0.7)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func manyWords(n int) string {
	return strings.TrimSpace(strings.Repeat("retrieval augmented generation pipeline text ", n))
}

func newService(docs *mockDocs, emb *mockEmbedder, gen *mockGenerator, ev Evaluator) (*Service, *index.Index) {
	ix := index.New()
	return New(docs, ix, emb, gen, ev, zap.NewNop()), ix
}

// --- Tests ---

func TestRun_FullPipeline(t *testing.T) {
	docs := &mockDocs{docs: map[string]domain.Document{
		"d1": {ID: "d1", Text: manyWords(100)},
	}}
	emb := &mockEmbedder{dim: 4}
	gen := &mockGenerator{answer: "the answer [1]"}
	svc, ix := newService(docs, emb, gen, nil)

	res, err := svc.Run(context.Background(), RunRequest{
		Query:  "what is this about?",
		DocIDs: []string{"d1"},
		Config: testConfig(t, 128),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != "the answer [1]" {
		t.Errorf("answer = %q", res.Answer)
	}
	if res.TotalChunksIndexed == 0 {
		t.Error("expected chunks to be indexed")
	}
	if len(res.RetrievedChunks) == 0 || len(res.RetrievedChunks) > 5 {
		t.Errorf("hit count = %d", len(res.RetrievedChunks))
	}
	if gen.lastModel != "test-model" {
		t.Errorf("model = %q", gen.lastModel)
	}
	if len(gen.lastCtx) != len(res.RetrievedChunks) {
		t.Error("generator context must match retrieved hits")
	}
	if ix.Stats().TotalChunks != res.TotalChunksIndexed {
		t.Error("index population does not match reported total")
	}
	if res.LatencySeconds < 0 {
		t.Error("latency must be non-negative")
	}
}

func TestRun_MissingDocument(t *testing.T) {
	svc, _ := newService(&mockDocs{docs: map[string]domain.Document{}}, &mockEmbedder{dim: 2}, &mockGenerator{}, nil)

	_, err := svc.Run(context.Background(), RunRequest{
		Query: "q", DocIDs: []string{"nope"}, Config: testConfig(t, 256),
	})
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestRun_NoDocIDs(t *testing.T) {
	svc, _ := newService(&mockDocs{}, &mockEmbedder{dim: 2}, &mockGenerator{}, nil)

	_, err := svc.Run(context.Background(), RunRequest{Query: "q", Config: testConfig(t, 256)})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRun_EmptyDocumentsYieldNoChunks(t *testing.T) {
	docs := &mockDocs{docs: map[string]domain.Document{
		"d1": {ID: "d1", Text: ""},
	}}
	svc, _ := newService(docs, &mockEmbedder{dim: 2}, &mockGenerator{}, nil)

	_, err := svc.Run(context.Background(), RunRequest{
		Query: "q", DocIDs: []string{"d1"}, Config: testConfig(t, 256),
	})
	if !errors.Is(err, domain.ErrNoChunks) {
		t.Errorf("expected ErrNoChunks, got %v", err)
	}
}

func TestRun_GenerationFailureAbortsRun(t *testing.T) {
	docs := &mockDocs{docs: map[string]domain.Document{
		"d1": {ID: "d1", Text: manyWords(50)},
	}}
	gen := &mockGenerator{err: domain.ErrGenerationFailed}
	svc, _ := newService(docs, &mockEmbedder{dim: 3}, gen, nil)

	_, err := svc.Run(context.Background(), RunRequest{
		Query: "q", DocIDs: []string{"d1"}, Config: testConfig(t, 128),
	})
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestRun_EmbeddingFailure(t *testing.T) {
	docs := &mockDocs{docs: map[string]domain.Document{
		"d1": {ID: "d1", Text: manyWords(50)},
	}}
	emb := &mockEmbedder{dim: 3, batchErr: domain.ErrProviderUnavailable}
	svc, _ := newService(docs, emb, &mockGenerator{}, nil)

	_, err := svc.Run(context.Background(), RunRequest{
		Query: "q", DocIDs: []string{"d1"}, Config: testConfig(t, 128),
	})
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestRun_EvaluationAttached(t *testing.T) {
	docs := &mockDocs{docs: map[string]domain.Document{
		"d1": {ID: "d1", Text: manyWords(50)},
	}}
	ev := &mockEvaluator{score: domain.EvaluationScore{Overall: 0.9}}
	svc, _ := newService(docs, &mockEmbedder{dim: 3}, &mockGenerator{answer: "a"}, ev)

	res, err := svc.Run(context.Background(), RunRequest{
		Query: "q", DocIDs: []string{"d1"}, Config: testConfig(t, 128), Evaluate: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ev.called || res.Evaluation == nil || res.Evaluation.Overall != 0.9 {
		t.Errorf("evaluation not attached: %+v", res.Evaluation)
	}
}

func TestRun_EvaluateFlagIgnoredWithoutEvaluator(t *testing.T) {
	docs := &mockDocs{docs: map[string]domain.Document{
		"d1": {ID: "d1", Text: manyWords(50)},
	}}
	svc, _ := newService(docs, &mockEmbedder{dim: 3}, &mockGenerator{answer: "a"}, nil)

	res, err := svc.Run(context.Background(), RunRequest{
		Query: "q", DocIDs: []string{"d1"}, Config: testConfig(t, 128), Evaluate: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Evaluation != nil {
		t.Error("evaluation should be absent when no evaluator is wired")
	}
}

func TestRun_RerunReplacesPartition(t *testing.T) {
	docs := &mockDocs{docs: map[string]domain.Document{
		"d1": {ID: "d1", Text: manyWords(100)},
	}}
	emb := &mockEmbedder{dim: 4}
	svc, ix := newService(docs, emb, &mockGenerator{answer: "a"}, nil)

	req := RunRequest{Query: "q", DocIDs: []string{"d1"}, Config: testConfig(t, 128)}
	first, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.TotalChunksIndexed != second.TotalChunksIndexed {
		t.Error("identical reruns must index the same chunk count")
	}
	// Rerun must not accumulate stale entries in the same partition.
	if got := ix.Stats().TotalChunks; got != first.TotalChunksIndexed {
		t.Errorf("index holds %d chunks after rerun, want %d", got, first.TotalChunksIndexed)
	}
}

func TestRun_OnlySearchesOwnChunkSize(t *testing.T) {
	docs := &mockDocs{docs: map[string]domain.Document{
		"d1": {ID: "d1", Text: manyWords(100)},
	}}
	emb := &mockEmbedder{dim: 4}
	svc, _ := newService(docs, emb, &mockGenerator{answer: "a"}, nil)

	res256, err := svc.Run(context.Background(), RunRequest{
		Query: "q", DocIDs: []string{"d1"}, Config: testConfig(t, 256),
	})
	if err != nil {
		t.Fatalf("256 run: %v", err)
	}
	res512, err := svc.Run(context.Background(), RunRequest{
		Query: "q", DocIDs: []string{"d1"}, Config: testConfig(t, 512),
	})
	if err != nil {
		t.Fatalf("512 run: %v", err)
	}

	for _, h := range res256.RetrievedChunks {
		if h.ChunkSize != 256 {
			t.Errorf("256 run retrieved a %d-token chunk", h.ChunkSize)
		}
	}
	for _, h := range res512.RetrievedChunks {
		if h.ChunkSize != 512 {
			t.Errorf("512 run retrieved a %d-token chunk", h.ChunkSize)
		}
	}
}
