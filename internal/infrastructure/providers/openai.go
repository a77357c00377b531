package providers

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"chat-server/internal/domain/llm"
)

// OpenAI implements llm.StreamingProvider on top of the go-openai client.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI creates an OpenAI provider for the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey)}
}

var _ llm.StreamingProvider = (*OpenAI)(nil)

// Name returns the registry name of this provider.
func (c *OpenAI) Name() string {
	return llm.ProviderOpenAI
}

func toOpenAIRequest(req llm.ChatCompletionRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	out := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   req.Stream,
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}
	return out
}

// CreateChatCompletion performs a blocking completion call.
func (c *OpenAI) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	req.Stream = false
	resp, err := c.client.CreateChatCompletion(ctx, toOpenAIRequest(req))
	if err != nil {
		return nil, err
	}

	out := &llm.ChatCompletionResponse{ID: resp.ID, Model: resp.Model}
	for _, choice := range resp.Choices {
		out.Choices = append(out.Choices, llm.ChatCompletionChoice{
			Message: llm.ChatMessage{
				Role:    choice.Message.Role,
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		})
	}
	return out, nil
}

// CreateChatCompletionStream opens a streamed completion.
func (c *OpenAI) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	req.Stream = true
	stream, err := c.client.CreateChatCompletionStream(ctx, toOpenAIRequest(req))
	if err != nil {
		return nil, err
	}
	return &openaiStream{stream: stream}, nil
}

// openaiStream adapts the go-openai stream to llm.Stream.
type openaiStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiStream) Recv() (*llm.ChatCompletionDelta, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	delta := &llm.ChatCompletionDelta{ID: resp.ID}
	for _, choice := range resp.Choices {
		converted := llm.DeltaChoice{}
		converted.Delta.Role = choice.Delta.Role
		converted.Delta.Content = choice.Delta.Content
		if choice.FinishReason != "" {
			reason := string(choice.FinishReason)
			converted.FinishReason = &reason
		}
		delta.Choices = append(delta.Choices, converted)
	}
	return delta, nil
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}
