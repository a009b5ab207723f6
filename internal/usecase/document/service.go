// Package document handles uploads: it saves the raw file, extracts its
// text, and registers the result for pipeline runs.
package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/ingest"
)

// Service manages the upload directory and the document registry.
type Service struct {
	registry  Registry
	uploadDir string
	logger    *zap.Logger
}

// New creates a document service. The upload directory is created on
// first use.
func New(registry Registry, uploadDir string, logger *zap.Logger) *Service {
	return &Service{registry: registry, uploadDir: uploadDir, logger: logger}
}

// Upload saves one file and extracts its text. A file whose text cannot be
// extracted is still registered, marked extraction_failed, so the caller
// can see what happened to it; it will never produce chunks.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (domain.Document, error) {
	if !ingest.Supported(filename) {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, filepath.Ext(filename))
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return domain.Document{}, fmt.Errorf("create upload dir: %w", err)
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.uploadDir, id+ext)

	if err := saveFile(path, r); err != nil {
		return domain.Document{}, fmt.Errorf("save upload %s: %w", filename, err)
	}

	doc := domain.Document{
		ID:       id,
		Filename: filename,
		FileType: strings.TrimPrefix(ext, "."),
		Status:   domain.StatusProcessed,
	}

	text, err := ingest.ExtractText(path, filename)
	if err != nil {
		doc.Status = domain.StatusExtractionFailed
		s.logger.Warn("text extraction failed",
			zap.String("doc_id", id), zap.String("filename", filename), zap.Error(err))
	} else {
		doc.Text = text
	}

	if err := s.registry.Put(ctx, doc); err != nil {
		return domain.Document{}, fmt.Errorf("register document: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("doc_id", id),
		zap.String("filename", filename),
		zap.String("status", string(doc.Status)),
		zap.Int("text_length", doc.TextLength()),
	)
	return doc, nil
}

// Get returns one document by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	return s.registry.Get(ctx, id)
}

// List returns all registered documents.
func (s *Service) List(ctx context.Context) ([]domain.Document, error) {
	return s.registry.List(ctx)
}

// Delete removes a document and its saved file. A missing file on disk is
// not an error; the registry entry is the source of truth.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.registry.Delete(ctx, id); err != nil {
		return err
	}

	path := filepath.Join(s.uploadDir, id+"."+doc.FileType)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove uploaded file",
			zap.String("doc_id", id), zap.Error(err))
	}
	return nil
}

func saveFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
