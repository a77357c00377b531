package chat

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/llm"
	"chat-server/internal/infrastructure/metrics"
)

// errorFragmentPrefix marks the single human-readable fragment emitted when
// an upstream call fails mid-stream.
const errorFragmentPrefix = "⚠️ "

const (
	relayTemperature = 0.7
	relayMaxTokens   = 4000
)

// Relay resolves the provider for a model and republishes its streamed
// completion as plain text fragments. Transport failures never surface as
// errors to the consumer; they become exactly one prefixed fragment that
// ends the sequence.
type Relay struct {
	registry *llm.Registry
	log      zerolog.Logger
}

// NewRelay creates a relay over the given provider registry.
func NewRelay(registry *llm.Registry, log zerolog.Logger) *Relay {
	return &Relay{
		registry: registry,
		log:      log.With().Str("component", "relay").Logger(),
	}
}

// StreamResponse opens a completion for the history against the model's
// provider and returns a channel of response fragments. The channel is
// closed when the upstream stream ends, fails, or ctx is cancelled.
func (r *Relay) StreamResponse(ctx context.Context, history []conversation.Message, modelID string) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		provider, err := r.registry.ForModel(ctx, modelID)
		if err != nil {
			r.emit(ctx, out, errorFragmentPrefix+"Model is not available: "+modelID)
			return
		}

		req := llm.ChatCompletionRequest{
			Model:       modelID,
			Messages:    BuildHistory(history),
			Temperature: toPtr(relayTemperature),
			MaxTokens:   toPtr(relayMaxTokens),
		}

		if streaming, ok := provider.(llm.StreamingProvider); ok {
			r.relayStream(ctx, out, streaming, req)
			return
		}
		r.relayComplete(ctx, out, provider, req)
	}()

	return out
}

func (r *Relay) relayStream(ctx context.Context, out chan<- string, provider llm.StreamingProvider, req llm.ChatCompletionRequest) {
	start := time.Now()
	stream, err := provider.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.RecordProviderCall(provider.Name(), "error", time.Since(start).Seconds())
		r.log.Error().Err(err).Str("provider", provider.Name()).Str("model", req.Model).Msg("failed to open completion stream")
		r.emit(ctx, out, errorFragmentPrefix+"The AI provider is unreachable. Please try again.")
		return
	}
	defer stream.Close()

	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			metrics.RecordProviderCall(provider.Name(), "success", time.Since(start).Seconds())
			return
		}
		if err != nil {
			metrics.RecordProviderCall(provider.Name(), "error", time.Since(start).Seconds())
			r.log.Error().Err(err).Str("provider", provider.Name()).Msg("completion stream broke")
			r.emit(ctx, out, errorFragmentPrefix+"The response was interrupted. Please try again.")
			return
		}

		content := delta.Content()
		if content == "" {
			continue
		}
		metrics.RecordRelayFragment(provider.Name())
		if !r.emit(ctx, out, content) {
			return
		}
	}
}

func (r *Relay) relayComplete(ctx context.Context, out chan<- string, provider llm.Provider, req llm.ChatCompletionRequest) {
	start := time.Now()
	resp, err := provider.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.RecordProviderCall(provider.Name(), "error", time.Since(start).Seconds())
		r.log.Error().Err(err).Str("provider", provider.Name()).Str("model", req.Model).Msg("completion call failed")
		r.emit(ctx, out, errorFragmentPrefix+"The AI provider is unreachable. Please try again.")
		return
	}
	metrics.RecordProviderCall(provider.Name(), "success", time.Since(start).Seconds())

	content := resp.Content()
	if content == "" {
		content = errorFragmentPrefix + "The provider returned an empty response."
	}
	metrics.RecordRelayFragment(provider.Name())
	r.emit(ctx, out, content)
}

func (r *Relay) emit(ctx context.Context, out chan<- string, fragment string) bool {
	select {
	case out <- fragment:
		return true
	case <-ctx.Done():
		return false
	}
}

// BuildHistory converts stored messages into provider chat messages. User
// entries carrying an author label are prefixed as "label: content" so the
// model can tell participants apart.
func BuildHistory(history []conversation.Message) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(history))
	for _, msg := range history {
		content := msg.Content
		if msg.Role == conversation.RoleUser && msg.AuthorLabel != "" {
			content = msg.AuthorLabel + ": " + content
		}
		messages = append(messages, llm.ChatMessage{
			Role:    string(msg.Role),
			Content: content,
		})
	}
	return messages
}

func toPtr[T any](v T) *T {
	return &v
}
