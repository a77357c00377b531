package llm

import "context"

// ChatMessage represents a single message in the completion history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest mirrors the OpenAI-compatible request shape.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// ChatCompletionChoice is one completion alternative in a response.
type ChatCompletionChoice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatCompletionResponse is the non-streaming completion result.
type ChatCompletionResponse struct {
	ID      string                 `json:"id,omitempty"`
	Model   string                 `json:"model,omitempty"`
	Choices []ChatCompletionChoice `json:"choices"`
}

// Content returns the first choice's message content, if any.
func (r *ChatCompletionResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// DeltaChoice is one choice inside a streamed chunk.
type DeltaChoice struct {
	Delta struct {
		Role    string `json:"role,omitempty"`
		Content string `json:"content,omitempty"`
	} `json:"delta"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

// ChatCompletionDelta is one decoded chunk of a streamed completion.
type ChatCompletionDelta struct {
	ID      string        `json:"id,omitempty"`
	Choices []DeltaChoice `json:"choices"`
}

// Content returns the first choice's delta content, if any.
func (d *ChatCompletionDelta) Content() string {
	if d == nil || len(d.Choices) == 0 {
		return ""
	}
	return d.Choices[0].Delta.Content
}

// Provider defines the contract for a chat completion backend.
type Provider interface {
	Name() string
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// StreamingProvider is a Provider that can stream completion deltas.
type StreamingProvider interface {
	Provider
	CreateChatCompletionStream(ctx context.Context, req ChatCompletionRequest) (Stream, error)
}

// Stream abstracts an SSE or chunked response from a provider.
type Stream interface {
	Recv() (*ChatCompletionDelta, error)
	Close() error
}
