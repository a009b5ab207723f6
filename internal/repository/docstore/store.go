// Package docstore keeps uploaded documents in memory. Documents live for
// the process lifetime only; the engine treats ingestion as an external
// collaborator and reads text through this store.
package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// Store is an in-memory document registry, safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// New creates an empty document store.
func New() *Store {
	return &Store{docs: make(map[string]domain.Document)}
}

// Put stores or replaces a document.
func (s *Store) Put(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

// Get returns a document by id.
func (s *Store) Get(_ context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// GetAll returns the documents for the given ids, failing on the first
// missing id so a pipeline run never silently drops a requested document.
func (s *Store) GetAll(ctx context.Context, ids []string) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// List returns all documents ordered by filename for stable output.
func (s *Store) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Filename != out[j].Filename {
			return out[i].Filename < out[j].Filename
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a document by id.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(s.docs, id)
	return nil
}
