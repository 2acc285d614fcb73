package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"standards-check-be/internal/dto"
	"standards-check-be/internal/entity"
	"standards-check-be/internal/faults"
	"standards-check-be/internal/pkg/logger"
	"standards-check-be/internal/repository/memory"
	"standards-check-be/pkg/embedding"
	"standards-check-be/pkg/loader"
	"standards-check-be/pkg/splitter"
	"standards-check-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAPIKey = "nvapi-" + strings.Repeat("0", 64)

// fakeEmbedder returns a fixed-dimension vector per text and counts calls.
type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Model() string { return "fake-embedder" }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := []float32{0, 0, 1}
		if strings.Contains(text, "cable") {
			v = []float32{1, 0, 0}
		}
		vectors[i] = v
	}
	return vectors, nil
}

// recordingSink collects every event and can be flipped to dead mid-run.
type recordingSink struct {
	events []any
	dead   bool
}

func (s *recordingSink) Send(event any) error {
	if s.dead {
		return errors.New("write: broken pipe")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) embedStatuses() []dto.EmbedStatus {
	var out []dto.EmbedStatus
	for _, e := range s.events {
		out = append(out, e.(dto.EmbedEvent).Status)
	}
	return out
}

type ingestionFixture struct {
	store     IContentStoreService
	repo      *memory.DocumentRepository
	indexes   *vectorindex.Manager
	embedder  *fakeEmbedder
	ingestion IIngestionService
}

func newIngestionFixture(t *testing.T) *ingestionFixture {
	t.Helper()
	cachePath := t.TempDir()
	repo := memory.NewDocumentRepository()
	log := logger.NewNoopLogger()

	f := &ingestionFixture{
		repo:     repo,
		store:    NewContentStoreService(repo, cachePath, log),
		indexes:  vectorindex.NewManager(cachePath),
		embedder: &fakeEmbedder{},
	}
	f.ingestion = NewIngestionService(
		f.store,
		loader.New(),
		f.indexes,
		func(apiKey, model string) embedding.Provider { return f.embedder },
		splitter.DefaultConfig(),
		log,
	)
	return f
}

func (f *ingestionFixture) upload(t *testing.T, raw []byte, filename string) *entity.Document {
	t.Helper()
	doc, err := f.store.Upload(context.Background(), raw, digestOf(raw), filename)
	require.NoError(t, err)
	return doc
}

func TestRunEmbedsDocument(t *testing.T) {
	f := newIngestionFixture(t)
	doc := f.upload(t, []byte("all cables must be shielded. all exits must remain unlocked."), "standard.txt")
	sink := &recordingSink{}

	err := f.ingestion.Run(context.Background(), IngestionInput{
		DocumentId: doc.Id,
		Digest:     doc.Digest,
		APIKey:     testAPIKey,
	}, sink)
	require.NoError(t, err)

	assert.Equal(t, []dto.EmbedStatus{
		dto.EmbedStatusVerified,
		dto.EmbedStatusEmbedding,
		dto.EmbedStatusSuccess,
	}, sink.embedStatuses())

	final := sink.events[len(sink.events)-1].(dto.EmbedEvent)
	require.NotNil(t, final.Data)
	assert.Equal(t, string(entity.StateEmbedded), final.Data.State)

	assert.True(t, f.indexes.IsUsable(doc.Digest))
	_, err = os.Stat(f.indexes.IndexPath(doc.Digest))
	assert.NoError(t, err)
	_, err = os.Stat(f.indexes.MetaPath(doc.Digest))
	assert.NoError(t, err)
}

func TestRunFastPathSkipsEmbedder(t *testing.T) {
	f := newIngestionFixture(t)
	doc := f.upload(t, []byte("content embedded once"), "standard.txt")

	in := IngestionInput{DocumentId: doc.Id, Digest: doc.Digest, APIKey: testAPIKey}
	require.NoError(t, f.ingestion.Run(context.Background(), in, &recordingSink{}))
	require.Equal(t, 1, f.embedder.calls)

	sink := &recordingSink{}
	require.NoError(t, f.ingestion.Run(context.Background(), in, sink))

	// The existing artifact satisfies the run without touching the embedder.
	assert.Equal(t, 1, f.embedder.calls)
	assert.Equal(t, []dto.EmbedStatus{
		dto.EmbedStatusVerified,
		dto.EmbedStatusSuccess,
	}, sink.embedStatuses())
}

func TestRunFastPathRepairsStaleState(t *testing.T) {
	f := newIngestionFixture(t)
	doc := f.upload(t, []byte("artifact survives a missed state update"), "standard.txt")

	in := IngestionInput{DocumentId: doc.Id, Digest: doc.Digest, APIKey: testAPIKey}
	require.NoError(t, f.ingestion.Run(context.Background(), in, &recordingSink{}))

	// Knock the record back as if the process died before the final update.
	require.NoError(t, f.repo.UpdateState(context.Background(), doc.Id, entity.StateEmbedding))

	require.NoError(t, f.ingestion.Run(context.Background(), in, &recordingSink{}))

	repaired, err := f.repo.FindById(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.StateEmbedded, repaired.State)
}

func TestRunRejectsBadCredential(t *testing.T) {
	f := newIngestionFixture(t)
	doc := f.upload(t, []byte("content"), "standard.txt")
	sink := &recordingSink{}

	err := f.ingestion.Run(context.Background(), IngestionInput{
		DocumentId: doc.Id,
		Digest:     doc.Digest,
		APIKey:     "bad-key",
	}, sink)
	require.Error(t, err)
	assert.Equal(t, faults.KindCredentialInvalid, faults.From(err).Kind)
	assert.Empty(t, sink.events)
}

func TestRunRejectsUnsupportedFormat(t *testing.T) {
	f := newIngestionFixture(t)
	doc := f.upload(t, []byte("binary blob"), "standard.zip")
	sink := &recordingSink{}

	err := f.ingestion.Run(context.Background(), IngestionInput{
		DocumentId: doc.Id,
		Digest:     doc.Digest,
		APIKey:     testAPIKey,
	}, sink)
	require.Error(t, err)
	assert.Equal(t, faults.KindUnsupportedFormat, faults.From(err).Kind)
	assert.Equal(t, 0, f.embedder.calls)
}

func TestRunStopsOnDeadChannel(t *testing.T) {
	f := newIngestionFixture(t)
	doc := f.upload(t, []byte("content behind a dead channel"), "standard.txt")
	sink := &recordingSink{dead: true}

	err := f.ingestion.Run(context.Background(), IngestionInput{
		DocumentId: doc.Id,
		Digest:     doc.Digest,
		APIKey:     testAPIKey,
	}, sink)
	require.ErrorIs(t, err, ErrChannelClosed)

	// The run stopped before embedding; nothing was rolled back or built.
	assert.False(t, f.indexes.IsUsable(doc.Digest))
	assert.Equal(t, 0, f.embedder.calls)
}
