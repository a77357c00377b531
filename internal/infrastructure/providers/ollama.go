package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"chat-server/internal/domain/llm"
)

// Ollama implements llm.Provider against a local Ollama daemon. The /api/chat
// endpoint is called without streaming; the relay emits the full response as
// a single fragment.
type Ollama struct {
	httpClient *resty.Client
}

// NewOllama creates a Resty-backed Ollama client.
func NewOllama(baseURL string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Ollama{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
	}
}

var _ llm.Provider = (*Ollama)(nil)

// Name returns the registry name of this provider.
func (c *Ollama) Name() string {
	return llm.ProviderOllama
}

type ollamaChatRequest struct {
	Model    string            `json:"model"`
	Messages []llm.ChatMessage `json:"messages"`
	Stream   bool              `json:"stream"`
}

type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// CreateChatCompletion calls the Ollama /api/chat endpoint.
func (c *Ollama) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	var completion ollamaChatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(ollamaChatRequest{
			Model:    req.Model,
			Messages: req.Messages,
			Stream:   false,
		}).
		SetResult(&completion).
		Post("/api/chat")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ollama error: %s", resp.String())
	}

	return &llm.ChatCompletionResponse{
		Model: completion.Model,
		Choices: []llm.ChatCompletionChoice{
			{
				Message: llm.ChatMessage{
					Role:    completion.Message.Role,
					Content: completion.Message.Content,
				},
				FinishReason: "stop",
			},
		},
	}, nil
}
