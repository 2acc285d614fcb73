// Package vectorindex builds, persists and queries flat vector indexes over
// document chunks. An index is stored as a pair of companion files named by
// content digest: <digest>.index (gob-encoded vectors) and <digest>.meta
// (JSON chunk metadata). Presence of both files is the ground truth for
// "this digest is embedded"; any database state is advisory.
package vectorindex

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"standards-check-be/pkg/embedding"
	"standards-check-be/pkg/splitter"
)

// ErrArtifactMissing is returned by Load when either companion file is absent.
var ErrArtifactMissing = errors.New("vector index artifact missing")

const (
	indexSuffix = ".index"
	metaSuffix  = ".meta"
)

// Manager owns the index artifacts under basePath/<digest>/.
type Manager struct {
	basePath string
}

func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

func (m *Manager) IndexPath(digest string) string {
	return filepath.Join(m.basePath, digest, digest+indexSuffix)
}

func (m *Manager) MetaPath(digest string) string {
	return filepath.Join(m.basePath, digest, digest+metaSuffix)
}

// IsUsable reports whether both companion files exist. This check, not the
// stored lifecycle state, decides whether a rebuild can be skipped.
func (m *Manager) IsUsable(digest string) bool {
	if _, err := os.Stat(m.IndexPath(digest)); err != nil {
		return false
	}
	if _, err := os.Stat(m.MetaPath(digest)); err != nil {
		return false
	}
	return true
}

type indexFile struct {
	Vectors [][]float32
}

type metaFile struct {
	Model  string      `json:"model"`
	Dims   int         `json:"dims"`
	Chunks []metaChunk `json:"chunks"`
}

type metaChunk struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// BuildAndPersist embeds all chunks and writes the artifact pair. Both files
// are written to temporary names and renamed into place, index file last, so
// a partially written pair never passes IsUsable.
func (m *Manager) BuildAndPersist(ctx context.Context, digest string, chunks []splitter.Chunk, embedder embedding.Provider) (*Index, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no chunks to index")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dir := filepath.Join(m.basePath, digest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	meta := metaFile{Model: embedder.Model(), Dims: len(vectors[0])}
	for _, c := range chunks {
		meta.Chunks = append(meta.Chunks, metaChunk{Text: c.Text, Position: c.Position})
	}
	if err := writeMeta(m.MetaPath(digest), meta); err != nil {
		return nil, err
	}
	if err := writeVectors(m.IndexPath(digest), indexFile{Vectors: vectors}); err != nil {
		return nil, err
	}

	return &Index{model: meta.Model, vectors: vectors, chunks: chunks}, nil
}

// Load deserializes a previously built artifact pair for querying.
func (m *Manager) Load(digest string) (*Index, error) {
	if !m.IsUsable(digest) {
		return nil, ErrArtifactMissing
	}

	metaRaw, err := os.ReadFile(m.MetaPath(digest))
	if err != nil {
		return nil, fmt.Errorf("read index metadata: %w", err)
	}
	var meta metaFile
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, fmt.Errorf("decode index metadata: %w", err)
	}

	f, err := os.Open(m.IndexPath(digest))
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var idx indexFile
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode index file: %w", err)
	}
	if len(idx.Vectors) != len(meta.Chunks) {
		return nil, fmt.Errorf("index corrupt: %d vectors, %d chunks", len(idx.Vectors), len(meta.Chunks))
	}

	chunks := make([]splitter.Chunk, len(meta.Chunks))
	for i, c := range meta.Chunks {
		chunks[i] = splitter.Chunk{Text: c.Text, Position: c.Position}
	}
	return &Index{model: meta.Model, vectors: idx.Vectors, chunks: chunks}, nil
}

func writeMeta(path string, meta metaFile) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode index metadata: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write index metadata: %w", err)
	}
	return os.Rename(tmp, path)
}

func writeVectors(path string, idx indexFile) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(&idx); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode index file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	return os.Rename(tmp, path)
}
