package memory

import (
	"context"
	"sync"
	"time"

	"standards-check-be/internal/entity"
	"standards-check-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DocumentRepository is an in-memory contract.DocumentRepository used for
// test isolation. Records are kept in a non-expiring go-cache keyed by id,
// with a digest index enforcing the same uniqueness the database does.
type DocumentRepository struct {
	mu      sync.Mutex
	records *cache.Cache
	digests map[string]uuid.UUID
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		records: cache.New(cache.NoExpiration, 0),
		digests: make(map[string]uuid.UUID),
	}
}

func (r *DocumentRepository) Create(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.digests[doc.Digest]; exists {
		return &contract.DuplicateDigestError{Digest: doc.Digest}
	}
	if doc.Id == uuid.Nil {
		doc.Id = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	cp := *doc
	r.records.Set(doc.Id.String(), &cp, cache.NoExpiration)
	r.digests[doc.Digest] = doc.Id
	return nil
}

func (r *DocumentRepository) FindById(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id), nil
}

func (r *DocumentRepository) FindByDigest(_ context.Context, digest string) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.digests[digest]
	if !ok {
		return nil, nil
	}
	return r.get(id), nil
}

func (r *DocumentRepository) UpdateState(_ context.Context, id uuid.UUID, state entity.EmbedState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc := r.get(id); doc != nil {
		doc.State = state
		r.records.Set(id.String(), doc, cache.NoExpiration)
	}
	return nil
}

func (r *DocumentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc := r.get(id); doc != nil {
		delete(r.digests, doc.Digest)
		r.records.Delete(id.String())
	}
	return nil
}

// get returns a copy so callers never mutate stored state directly.
func (r *DocumentRepository) get(id uuid.UUID) *entity.Document {
	if x, found := r.records.Get(id.String()); found {
		cp := *x.(*entity.Document)
		return &cp
	}
	return nil
}
