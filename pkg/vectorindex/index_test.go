package vectorindex

import (
	"context"
	"os"
	"testing"

	"standards-check-be/pkg/splitter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder assigns a fixed vector per known text so similarity ordering
// is deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) Model() string { return "fake/embedder" }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}

func testChunks() []splitter.Chunk {
	return []splitter.Chunk{
		{Text: "cables must be shielded", Position: 0},
		{Text: "pressure vessels are inspected yearly", Position: 24},
		{Text: "exits must remain unlocked", Position: 62},
	}
}

func testEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{
		"cables must be shielded":               {1, 0, 0},
		"pressure vessels are inspected yearly": {0, 1, 0},
		"exits must remain unlocked":            {0.7, 0.7, 0},
		"cable shielding":                       {0.9, 0.1, 0},
	}}
}

func TestBuildPersistLoadRoundTrip(t *testing.T) {
	m := NewManager(t.TempDir())
	digest := "abc123"

	built, err := m.BuildAndPersist(context.Background(), digest, testChunks(), testEmbedder())
	require.NoError(t, err)
	assert.Equal(t, 3, built.Len())
	assert.True(t, m.IsUsable(digest))

	loaded, err := m.Load(digest)
	require.NoError(t, err)
	assert.Equal(t, "fake/embedder", loaded.Model())
	assert.Equal(t, built.chunks, loaded.chunks)
	assert.Equal(t, built.vectors, loaded.vectors)
}

func TestIsUsableRequiresBothCompanionFiles(t *testing.T) {
	m := NewManager(t.TempDir())
	digest := "abc123"

	_, err := m.BuildAndPersist(context.Background(), digest, testChunks(), testEmbedder())
	require.NoError(t, err)
	require.True(t, m.IsUsable(digest))

	// Deleting either file flips usability off, regardless of any recorded
	// lifecycle state.
	require.NoError(t, os.Remove(m.IndexPath(digest)))
	assert.False(t, m.IsUsable(digest))

	_, err = m.BuildAndPersist(context.Background(), digest, testChunks(), testEmbedder())
	require.NoError(t, err)
	require.NoError(t, os.Remove(m.MetaPath(digest)))
	assert.False(t, m.IsUsable(digest))
}

func TestLoadMissingArtifact(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Load("nothere")
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestRetrieverRanksBySimilarity(t *testing.T) {
	m := NewManager(t.TempDir())
	embedder := testEmbedder()

	idx, err := m.BuildAndPersist(context.Background(), "abc123", testChunks(), embedder)
	require.NoError(t, err)

	r := NewRetriever(idx, embedder)
	chunks, err := r.Query(context.Background(), "cable shielding", 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "cables must be shielded", chunks[0].Text)
	assert.Equal(t, "exits must remain unlocked", chunks[1].Text)
}

func TestRetrieverDefaultTopK(t *testing.T) {
	m := NewManager(t.TempDir())
	embedder := testEmbedder()

	idx, err := m.BuildAndPersist(context.Background(), "abc123", testChunks(), embedder)
	require.NoError(t, err)

	chunks, err := NewRetriever(idx, embedder).Query(context.Background(), "anything", 0)
	require.NoError(t, err)
	// only 3 chunks exist, all returned under the default k of 4
	assert.Len(t, chunks, 3)
}
