package service

import (
	"standards-check-be/pkg/embedding"
	"standards-check-be/pkg/llm"
)

// EmbedderFactory builds an embedding provider for one pipeline run. The
// credential and model selection arrive with each request, so providers are
// constructed per run rather than at bootstrap.
type EmbedderFactory func(apiKey, model string) embedding.Provider

// ChatFactory builds a chat/completion provider for one pipeline run.
type ChatFactory func(apiKey, model string) llm.Provider
