package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

func TestPutGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	doc := domain.Document{ID: "d1", Filename: "a.txt", Text: "hello", Status: domain.StatusProcessed}
	if err := s.Put(ctx, doc); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != "hello" {
		t.Errorf("text = %q", got.Text)
	}

	if err := s.Delete(ctx, "d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "d1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "d1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound on double delete, got %v", err)
	}
}

func TestGetAll_FailsOnMissing(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Put(ctx, domain.Document{ID: "d1", Text: "x"})

	if _, err := s.GetAll(ctx, []string{"d1", "missing"}); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}

	docs, err := s.GetAll(ctx, []string{"d1"})
	if err != nil || len(docs) != 1 {
		t.Errorf("GetAll = %v, %v", docs, err)
	}
}

func TestList_Ordered(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Put(ctx, domain.Document{ID: "2", Filename: "b.txt"})
	_ = s.Put(ctx, domain.Document{ID: "1", Filename: "a.txt"})

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 || docs[0].Filename != "a.txt" {
		t.Errorf("list order wrong: %+v", docs)
	}
}
