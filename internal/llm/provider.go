// Package llm adapts OpenAI-compatible chat backends (OpenAI, Groq, local
// servers) to the small interface the summarizer needs.
package llm

import (
	"context"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the chat completion call used by the summarizer.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelLister is optional; use a type assertion to detect it.
type ModelLister interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider adapts *openai.Client to Client and ModelLister.
type OpenAIProvider struct {
	Inner *openai.Client
}

// New builds a provider for baseURL (empty keeps the OpenAI default).
func New(baseURL, apiKey string, httpClient *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return p.Inner.CreateChatCompletion(ctx, request)
}

func (p *OpenAIProvider) ListModels(ctx context.Context) (openai.ModelsList, error) {
	return p.Inner.ListModels(ctx)
}
