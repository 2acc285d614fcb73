package contract

import (
	"context"

	"standards-check-be/internal/entity"

	"github.com/google/uuid"
)

// ErrDuplicateDigest is returned by Create when a document with the same
// digest already exists; callers re-fetch the surviving record.
type DuplicateDigestError struct {
	Digest string
}

func (e *DuplicateDigestError) Error() string {
	return "document with digest " + e.Digest + " already exists"
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	FindByDigest(ctx context.Context, digest string) (*entity.Document, error)
	UpdateState(ctx context.Context, id uuid.UUID, state entity.EmbedState) error
	Delete(ctx context.Context, id uuid.UUID) error
}
