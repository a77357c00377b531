package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"chat-server/internal/domain/llm"
)

// OpenRouterConfig carries the credentials and attribution headers for
// openrouter.ai calls.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
	Timeout time.Duration
}

// OpenRouter implements llm.StreamingProvider against the OpenRouter
// chat completions API.
type OpenRouter struct {
	httpClient *resty.Client
	cfg        OpenRouterConfig
}

// NewOpenRouter creates a Resty-backed OpenRouter client.
func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OpenRouter{
		httpClient: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("HTTP-Referer", cfg.Referer).
			SetHeader("X-Title", cfg.Title).
			SetAuthToken(cfg.APIKey).
			SetTimeout(cfg.Timeout),
		cfg: cfg,
	}
}

var _ llm.StreamingProvider = (*OpenRouter)(nil)

// Name returns the registry name of this provider.
func (c *OpenRouter) Name() string {
	return llm.ProviderOpenRouter
}

// CreateChatCompletion calls /chat/completions without streaming.
func (c *OpenRouter) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	req.Stream = false

	var completion llm.ChatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/chat/completions")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openrouter error: %s", resp.String())
	}
	return &completion, nil
}

// CreateChatCompletionStream calls /chat/completions with streaming enabled.
func (c *OpenRouter) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
	httpReq.Header.Set("X-Title", c.cfg.Title)

	httpClient := &http.Client{Timeout: c.cfg.Timeout}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("openrouter error: %d %s", resp.StatusCode, string(body))
	}

	return newSSEStream(resp), nil
}
