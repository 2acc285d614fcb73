package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the NVIDIA OpenAI-compatible inference endpoint.
	DefaultBaseURL = "https://integrate.api.nvidia.com/v1"
	// DefaultModel is the embedder used when the client does not pick one.
	DefaultModel = "nvidia/nv-embed-v1"
)

// NvidiaProvider implements Provider against the NVIDIA API. The endpoint
// speaks the OpenAI embeddings protocol, so the go-openai client is reused
// with an overridden base URL.
type NvidiaProvider struct {
	client *openai.Client
	model  string
}

func NewNvidiaProvider(apiKey, model, baseURL string) Provider {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &NvidiaProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *NvidiaProvider) Model() string {
	return p.model
}

func (p *NvidiaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
