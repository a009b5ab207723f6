// Package index holds chunk vectors in memory and serves similarity search.
// Entries are partitioned by (document id, chunk size) so that experiment
// legs with different chunking configurations never see each other's chunks.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// Filter restricts a search to specific documents and/or one chunk-size
// configuration. Zero values mean "no restriction".
type Filter struct {
	DocIDs    []string
	ChunkSize int
}

// Stats reports the current index contents.
type Stats struct {
	TotalChunks    int         `json:"total_chunks"`
	TotalDocuments int         `json:"total_documents"`
	EmbeddingDim   int         `json:"embedding_dim"`
	ChunksBySize   map[int]int `json:"chunks_by_size"`
	HasData        bool        `json:"has_data"`
}

type partitionKey struct {
	docID     string
	chunkSize int
}

type entry struct {
	chunk  domain.Chunk
	vector []float32 // stored L2-normalized
}

// Index is the process-wide vector store. Mutations (Insert, Clear) take the
// write lock; searches and stats take the read lock and may run concurrently.
type Index struct {
	mu    sync.RWMutex
	dim   int
	parts map[partitionKey][]entry
}

// New creates an empty index. The embedding dimension is fixed by the first
// insertion and reset by Clear.
func New() *Index {
	return &Index{parts: make(map[partitionKey][]entry)}
}

// Insert appends chunks with their vectors. Every vector must match the
// index dimension; the first insertion establishes it.
func (ix *Index) Insert(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors",
			domain.ErrVectorDimMismatch, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dim == 0 {
		ix.dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector %d has dim %d, index dim %d",
				domain.ErrVectorDimMismatch, i, len(v), ix.dim)
		}
	}

	for i, c := range chunks {
		key := partitionKey{docID: c.DocID, chunkSize: c.ChunkSize}
		ix.parts[key] = append(ix.parts[key], entry{
			chunk:  c,
			vector: normalize(vectors[i]),
		})
	}
	return nil
}

// Search returns up to topK hits ranked by descending cosine similarity,
// restricted by the filter. Fewer than topK matching chunks yield fewer
// hits; zero hits is a valid outcome, not an error.
func (ix *Index) Search(query []float32, topK int, f Filter) []domain.RetrievalHit {
	if topK <= 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	q := normalize(query)

	var allowed map[string]struct{}
	if len(f.DocIDs) > 0 {
		allowed = make(map[string]struct{}, len(f.DocIDs))
		for _, id := range f.DocIDs {
			allowed[id] = struct{}{}
		}
	}

	var hits []domain.RetrievalHit
	for key, entries := range ix.parts {
		if f.ChunkSize != 0 && key.chunkSize != f.ChunkSize {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[key.docID]; !ok {
				continue
			}
		}
		for _, e := range entries {
			hits = append(hits, domain.RetrievalHit{
				DocID:     e.chunk.DocID,
				ChunkSize: e.chunk.ChunkSize,
				Seq:       e.chunk.Seq,
				Text:      e.chunk.Text,
				Score:     dot(q, e.vector),
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].DocID != hits[j].DocID {
			return hits[i].DocID < hits[j].DocID
		}
		return hits[i].Seq < hits[j].Seq
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}
	return hits
}

// Stats reports totals and a histogram of chunk counts by chunk size.
// Calling it twice without intervening mutation returns identical values.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bySize := make(map[int]int)
	docs := make(map[string]struct{})
	total := 0
	for key, entries := range ix.parts {
		if len(entries) == 0 {
			continue
		}
		bySize[key.chunkSize] += len(entries)
		docs[key.docID] = struct{}{}
		total += len(entries)
	}

	return Stats{
		TotalChunks:    total,
		TotalDocuments: len(docs),
		EmbeddingDim:   ix.dim,
		ChunksBySize:   bySize,
		HasData:        total > 0,
	}
}

// Clear drops all entries and resets the dimension.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.parts = make(map[partitionKey][]entry)
	ix.dim = 0
}

// ClearPartition drops the entries for one (document, chunk size) pair.
// Used before re-chunking a document at a size it was already indexed with,
// so stale chunks never leak into a new run's search.
func (ix *Index) ClearPartition(docID string, chunkSize int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.parts, partitionKey{docID: docID, chunkSize: chunkSize})
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	n := math.Sqrt(sum)
	if n == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
