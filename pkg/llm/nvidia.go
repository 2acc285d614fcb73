package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the NVIDIA OpenAI-compatible inference endpoint.
	DefaultBaseURL = "https://integrate.api.nvidia.com/v1"
	// DefaultModel is the instruct model used when the client does not pick one.
	DefaultModel = "mistralai/mixtral-8x7b-instruct-v0.1"
)

// NvidiaProvider implements Provider against the NVIDIA chat completion API
// through the go-openai client with an overridden base URL.
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

func (p *NvidiaProvider) Chat(ctx context.Context, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		role := m.Role
		if role == "model" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *NvidiaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.Chat(ctx, []Message{{Role: openai.ChatMessageRoleUser, Content: prompt}})
}
