package embedding

import "context"

// Provider defines the interface for generating text embeddings
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}
