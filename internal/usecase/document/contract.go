package document

import (
	"context"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// Registry stores document metadata and extracted text.
type Registry interface {
	Put(ctx context.Context, doc domain.Document) error
	Get(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
}
