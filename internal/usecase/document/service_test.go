package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/repository/docstore"
)

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	return New(docstore.New(), dir, zap.NewNop()), dir
}

func TestUpload_TextFile(t *testing.T) {
	svc, dir := newService(t)

	doc, err := svc.Upload(context.Background(), "notes.txt", strings.NewReader("hello retrieval world"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.ID == "" {
		t.Error("expected a generated id")
	}
	if doc.Status != domain.StatusProcessed {
		t.Errorf("status = %s, want processed", doc.Status)
	}
	if doc.Text != "hello retrieval world" {
		t.Errorf("text = %q", doc.Text)
	}
	if doc.FileType != "txt" {
		t.Errorf("file type = %q", doc.FileType)
	}
	if _, err := os.Stat(filepath.Join(dir, doc.ID+".txt")); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Upload(context.Background(), "image.png", strings.NewReader("data"))
	if !errors.Is(err, domain.ErrUnsupportedFileType) {
		t.Errorf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestUpload_EmptyFileRegisteredAsFailed(t *testing.T) {
	svc, _ := newService(t)

	doc, err := svc.Upload(context.Background(), "empty.md", strings.NewReader("   \n"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.Status != domain.StatusExtractionFailed {
		t.Errorf("status = %s, want extraction_failed", doc.Status)
	}
	if doc.Text != "" {
		t.Errorf("failed extraction must carry no text, got %q", doc.Text)
	}

	// Still listed so the caller can see what happened to it.
	got, err := svc.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusExtractionFailed {
		t.Errorf("registered status = %s", got.Status)
	}
}

func TestListAndDelete(t *testing.T) {
	svc, dir := newService(t)
	ctx := context.Background()

	a, err := svc.Upload(ctx, "a.txt", strings.NewReader("alpha text"))
	if err != nil {
		t.Fatalf("upload a: %v", err)
	}
	b, err := svc.Upload(ctx, "b.txt", strings.NewReader("beta text"))
	if err != nil {
		t.Fatalf("upload b: %v", err)
	}

	docs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].Filename != "a.txt" || docs[1].Filename != "b.txt" {
		t.Error("listing must be ordered by filename")
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound after delete, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, a.ID+".txt")); !os.IsNotExist(err) {
		t.Error("deleted document's file should be removed")
	}
	if _, err := svc.Get(ctx, b.ID); err != nil {
		t.Errorf("remaining document must survive: %v", err)
	}
}

func TestDelete_Missing(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Delete(context.Background(), "nope")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}
