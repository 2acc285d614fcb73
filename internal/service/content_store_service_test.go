package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"os"
	"testing"

	"standards-check-be/internal/entity"
	"standards-check-be/internal/faults"
	"standards-check-be/internal/pkg/logger"
	"standards-check-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digestOf(raw []byte) string {
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

func newTestStore(t *testing.T) (IContentStoreService, *memory.DocumentRepository) {
	t.Helper()
	repo := memory.NewDocumentRepository()
	store := NewContentStoreService(repo, t.TempDir(), logger.NewNoopLogger())
	return store, repo
}

func TestUploadStoresBytesAndRecord(t *testing.T) {
	store, _ := newTestStore(t)
	raw := []byte("all exits must remain unlocked during operating hours")

	doc, err := store.Upload(context.Background(), raw, digestOf(raw), "standard.txt")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, digestOf(raw), doc.Digest)
	assert.Equal(t, ".txt", doc.Suffix)
	assert.Equal(t, entity.StatePending, doc.State)
	assert.NotEqual(t, uuid.Nil, doc.Id)

	stored, err := os.ReadFile(store.DocumentPath(doc.Digest, doc.Suffix))
	require.NoError(t, err)
	assert.Equal(t, raw, stored)
}

func TestUploadRejectsDigestMismatch(t *testing.T) {
	store, _ := newTestStore(t)
	raw := []byte("document body")

	_, err := store.Upload(context.Background(), raw, digestOf([]byte("other body")), "standard.txt")
	require.Error(t, err)

	f := faults.From(err)
	assert.Equal(t, faults.KindIntegrity, f.Kind)
}

func TestUploadIsIdempotentPerDigest(t *testing.T) {
	store, repo := newTestStore(t)
	raw := []byte("identical bytes uploaded twice")
	digest := digestOf(raw)

	first, err := store.Upload(context.Background(), raw, digest, "standard.txt")
	require.NoError(t, err)

	// Same bytes under a different name and suffix: the first upload's
	// record and suffix win.
	second, err := store.Upload(context.Background(), raw, digest, "renamed.md")
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, ".txt", second.Suffix)

	found, err := repo.FindByDigest(context.Background(), digest)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.Id, found.Id)
}

// racingDocumentRepository interposes on Create: a competitor inserts the
// same digest first, so the wrapped Create loses the uniqueness race.
type racingDocumentRepository struct {
	*memory.DocumentRepository
	competitor *entity.Document
	raced      bool
}

func (r *racingDocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	if !r.raced {
		r.raced = true
		if err := r.DocumentRepository.Create(ctx, r.competitor); err != nil {
			return err
		}
	}
	return r.DocumentRepository.Create(ctx, doc)
}

func TestUploadLosesFirstInsertRace(t *testing.T) {
	raw := []byte("bytes two clients upload at once")
	digest := digestOf(raw)

	competitor := &entity.Document{
		Digest: digest,
		Suffix: ".md",
		State:  entity.StatePending,
	}
	repo := &racingDocumentRepository{
		DocumentRepository: memory.NewDocumentRepository(),
		competitor:         competitor,
	}
	store := NewContentStoreService(repo, t.TempDir(), logger.NewNoopLogger())

	// FindByDigest misses, Create hits the uniqueness violation, and the
	// surviving competitor record comes back unchanged.
	doc, err := store.Upload(context.Background(), raw, digest, "standard.txt")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.True(t, repo.raced)
	assert.Equal(t, competitor.Id, doc.Id)
	assert.Equal(t, ".md", doc.Suffix)

	found, err := repo.FindByDigest(context.Background(), digest)
	require.NoError(t, err)
	assert.Equal(t, competitor.Id, found.Id)
}

func TestResolveReturnsRecord(t *testing.T) {
	store, _ := newTestStore(t)
	raw := []byte("resolvable content")

	doc, err := store.Upload(context.Background(), raw, digestOf(raw), "standard.txt")
	require.NoError(t, err)

	got, err := store.Resolve(context.Background(), doc.Id, doc.Digest)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, got.Id)
}

func TestResolveUnknownIdIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Resolve(context.Background(), uuid.New(), "0123456789abcdef0123456789abcdef")
	require.Error(t, err)
	assert.Equal(t, faults.KindNotFound, faults.From(err).Kind)
}

func TestResolveDigestMismatch(t *testing.T) {
	store, _ := newTestStore(t)
	raw := []byte("content under one digest")

	doc, err := store.Upload(context.Background(), raw, digestOf(raw), "standard.txt")
	require.NoError(t, err)

	_, err = store.Resolve(context.Background(), doc.Id, digestOf([]byte("a different claim")))
	require.Error(t, err)
	assert.Equal(t, faults.KindDigestMismatch, faults.From(err).Kind)
}

func TestResolveDeletesDanglingRecord(t *testing.T) {
	store, repo := newTestStore(t)
	raw := []byte("bytes about to vanish")

	doc, err := store.Upload(context.Background(), raw, digestOf(raw), "standard.txt")
	require.NoError(t, err)

	// Simulate cache eviction behind the database's back.
	require.NoError(t, os.Remove(store.DocumentPath(doc.Digest, doc.Suffix)))

	_, err = store.Resolve(context.Background(), doc.Id, doc.Digest)
	require.Error(t, err)
	assert.Equal(t, faults.KindNotFound, faults.From(err).Kind)

	// The dangling record was removed, so the digest is uploadable again.
	left, err := repo.FindById(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Nil(t, left)
}

func TestMarkStateTransitions(t *testing.T) {
	store, _ := newTestStore(t)
	raw := []byte("lifecycle content")

	doc, err := store.Upload(context.Background(), raw, digestOf(raw), "standard.txt")
	require.NoError(t, err)

	doc, err = store.MarkState(context.Background(), doc.Id, entity.StateEmbedding)
	require.NoError(t, err)
	assert.Equal(t, entity.StateEmbedding, doc.State)

	doc, err = store.MarkState(context.Background(), doc.Id, entity.StateEmbedded)
	require.NoError(t, err)
	assert.Equal(t, entity.StateEmbedded, doc.State)
}
