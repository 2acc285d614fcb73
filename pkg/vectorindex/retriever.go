package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"

	"standards-check-be/pkg/embedding"
	"standards-check-be/pkg/splitter"
)

// DefaultTopK is the number of passages returned when the caller does not
// choose k.
const DefaultTopK = 4

// Index is a loaded, queryable vector index.
type Index struct {
	model   string
	vectors [][]float32
	chunks  []splitter.Chunk
}

func (ix *Index) Model() string {
	return ix.model
}

func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Retriever answers similarity queries against one loaded index.
type Retriever struct {
	index    *Index
	embedder embedding.Provider
}

func NewRetriever(index *Index, embedder embedding.Provider) *Retriever {
	return &Retriever{index: index, embedder: embedder}
}

// Query embeds text and returns the k most similar chunks, best first.
func (r *Retriever) Query(ctx context.Context, text string, k int) ([]splitter.Chunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vectors, err := r.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := vectors[0]

	type scored struct {
		chunk splitter.Chunk
		score float64
	}
	results := make([]scored, 0, len(r.index.chunks))
	for i, vec := range r.index.vectors {
		results = append(results, scored{
			chunk: r.index.chunks[i],
			score: cosineSimilarity(query, vec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > k {
		results = results[:k]
	}

	chunks := make([]splitter.Chunk, len(results))
	for i, s := range results {
		chunks[i] = s.chunk
	}
	return chunks, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
