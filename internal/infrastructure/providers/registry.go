package providers

import (
	"github.com/rs/zerolog"

	"chat-server/internal/config"
	"chat-server/internal/domain/llm"
)

// NewRegistry wires the configured provider adapters into a registry. Ollama
// is always available; hosted providers are registered only when their API
// key is present.
func NewRegistry(cfg *config.Config, log zerolog.Logger) *llm.Registry {
	logger := log.With().Str("component", "provider-registry").Logger()
	registry := llm.NewRegistry()

	registry.Register(NewOllama(cfg.OllamaBaseURL, cfg.ProviderTimeout))

	if cfg.OpenRouterAPIKey != "" {
		registry.Register(NewOpenRouter(OpenRouterConfig{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Referer: cfg.OpenRouterReferer,
			Title:   cfg.OpenRouterTitle,
			Timeout: cfg.ProviderTimeout,
		}))
	} else {
		logger.Warn().Msg("OPENROUTER_API_KEY is not set; openrouter models disabled")
	}

	if cfg.OpenAIAPIKey != "" {
		registry.Register(NewOpenAI(cfg.OpenAIAPIKey))
	} else {
		logger.Warn().Msg("OPENAI_API_KEY is not set; openai models disabled")
	}

	logger.Info().Strs("providers", registry.Names()).Msg("provider registry initialized")
	return registry
}
