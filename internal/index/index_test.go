package index

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

func chunk(docID string, seq, size int) domain.Chunk {
	return domain.Chunk{
		DocID: docID, Seq: seq, ChunkSize: size,
		Text: fmt.Sprintf("%s chunk %d", docID, seq),
	}
}

func TestInsertAndSearch_Ranking(t *testing.T) {
	ix := New()

	chunks := []domain.Chunk{
		chunk("doc-a", 0, 512),
		chunk("doc-a", 1, 512),
		chunk("doc-a", 2, 512),
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	if err := ix.Insert(chunks, vectors); err != nil {
		t.Fatalf("insert: %v", err)
	}

	hits := ix.Search([]float32{1, 0, 0}, 10, Filter{})
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].Seq != 0 || hits[1].Seq != 2 || hits[2].Seq != 1 {
		t.Errorf("unexpected ranking: %v, %v, %v", hits[0].Seq, hits[1].Seq, hits[2].Seq)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not non-increasing at rank %d", i+1)
		}
	}
	for i, h := range hits {
		if h.Rank != i+1 {
			t.Errorf("hit %d: rank = %d", i, h.Rank)
		}
	}
}

func TestSearch_TopKLimit(t *testing.T) {
	ix := New()
	var chunks []domain.Chunk
	var vectors [][]float32
	for i := 0; i < 10; i++ {
		chunks = append(chunks, chunk("doc-a", i, 512))
		vectors = append(vectors, []float32{float32(i + 1), 1})
	}
	if err := ix.Insert(chunks, vectors); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if got := len(ix.Search([]float32{1, 0}, 4, Filter{})); got != 4 {
		t.Errorf("top_k=4 returned %d hits", got)
	}
	// Fewer matching chunks than topK: no padding.
	if got := len(ix.Search([]float32{1, 0}, 50, Filter{})); got != 10 {
		t.Errorf("top_k=50 returned %d hits, want 10", got)
	}
}

func TestSearch_DocumentFilter(t *testing.T) {
	ix := New()
	var chunks []domain.Chunk
	var vectors [][]float32
	for i := 0; i < 6; i++ {
		chunks = append(chunks, chunk("doc-a", i, 512))
		vectors = append(vectors, []float32{1, float32(i)})
	}
	for i := 0; i < 4; i++ {
		chunks = append(chunks, chunk("doc-b", i, 512))
		vectors = append(vectors, []float32{1, float32(i)})
	}
	if err := ix.Insert(chunks, vectors); err != nil {
		t.Fatalf("insert: %v", err)
	}

	hits := ix.Search([]float32{1, 0}, 5, Filter{DocIDs: []string{"doc-a"}})
	if len(hits) > 5 {
		t.Fatalf("got %d hits, want at most 5", len(hits))
	}
	for _, h := range hits {
		if h.DocID != "doc-a" {
			t.Errorf("hit from %q leaked through the document filter", h.DocID)
		}
	}
}

func TestSearch_ChunkSizeIsolation(t *testing.T) {
	ix := New()
	if err := ix.Insert(
		[]domain.Chunk{chunk("doc-a", 0, 256), chunk("doc-a", 0, 512)},
		[][]float32{{1, 0}, {1, 0}},
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	hits := ix.Search([]float32{1, 0}, 10, Filter{ChunkSize: 256})
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].ChunkSize != 256 {
		t.Errorf("hit has chunk size %d, want 256", hits[0].ChunkSize)
	}
}

func TestInsert_DimensionMismatch(t *testing.T) {
	ix := New()
	if err := ix.Insert([]domain.Chunk{chunk("doc-a", 0, 512)}, [][]float32{{1, 2, 3}}); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err := ix.Insert([]domain.Chunk{chunk("doc-a", 1, 512)}, [][]float32{{1, 2}})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}

	err = ix.Insert([]domain.Chunk{chunk("doc-a", 2, 512)}, nil)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch on count mismatch, got %v", err)
	}
}

func TestStats_Histogram(t *testing.T) {
	ix := New()
	if err := ix.Insert(
		[]domain.Chunk{
			chunk("doc-a", 0, 256), chunk("doc-a", 1, 256),
			chunk("doc-a", 0, 512),
			chunk("doc-b", 0, 512),
		},
		[][]float32{{1, 0}, {0, 1}, {1, 1}, {1, 2}},
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	s := ix.Stats()
	if s.TotalChunks != 4 || s.TotalDocuments != 2 || s.EmbeddingDim != 2 {
		t.Errorf("stats = %+v", s)
	}
	want := map[int]int{256: 2, 512: 2}
	if !reflect.DeepEqual(s.ChunksBySize, want) {
		t.Errorf("histogram = %v, want %v", s.ChunksBySize, want)
	}

	// Idempotent without intervening mutation.
	if !reflect.DeepEqual(ix.Stats(), s) {
		t.Error("stats changed between identical calls")
	}
}

func TestClear_ResetsDimension(t *testing.T) {
	ix := New()
	if err := ix.Insert([]domain.Chunk{chunk("doc-a", 0, 512)}, [][]float32{{1, 2, 3}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ix.Clear()

	s := ix.Stats()
	if s.TotalChunks != 0 || s.EmbeddingDim != 0 || s.HasData {
		t.Errorf("stats after clear = %+v", s)
	}

	// A different dimension is accepted after a clear.
	if err := ix.Insert([]domain.Chunk{chunk("doc-a", 0, 512)}, [][]float32{{1, 2}}); err != nil {
		t.Errorf("insert after clear: %v", err)
	}
}

func TestClearPartition(t *testing.T) {
	ix := New()
	if err := ix.Insert(
		[]domain.Chunk{chunk("doc-a", 0, 256), chunk("doc-a", 0, 512), chunk("doc-b", 0, 256)},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ix.ClearPartition("doc-a", 256)

	s := ix.Stats()
	if s.TotalChunks != 2 {
		t.Errorf("total chunks = %d, want 2", s.TotalChunks)
	}
	hits := ix.Search([]float32{1, 0}, 10, Filter{DocIDs: []string{"doc-a"}, ChunkSize: 256})
	if len(hits) != 0 {
		t.Errorf("cleared partition still returned %d hits", len(hits))
	}
}
