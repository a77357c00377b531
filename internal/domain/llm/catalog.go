package llm

import "github.com/shopspring/decimal"

// Provider names used in the model catalog and the registry.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
)

// DefaultModel is used when a conversation carries no model id.
const DefaultModel = "tngtech/deepseek-r1t2-chimera:free"

// ModelOption describes a selectable model and which provider serves it.
type ModelOption struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Provider     string          `json:"provider"`
	Description  string          `json:"description"`
	Available    bool            `json:"available"`
	PricePerMTok decimal.Decimal `json:"pricePerMTok"`
}

var catalog = []ModelOption{
	{
		ID:           "tngtech/deepseek-r1t2-chimera:free",
		Name:         "DeepSeek Chat r1t2",
		Provider:     ProviderOpenRouter,
		Description:  "Capable free model by DeepSeek",
		Available:    true,
		PricePerMTok: decimal.Zero,
	},
	{
		ID:           "openai/gpt-oss-20b:free",
		Name:         "GPT OSS 20B",
		Provider:     ProviderOpenRouter,
		Description:  "Open source GPT variant by OpenAI",
		Available:    true,
		PricePerMTok: decimal.Zero,
	},
	{
		ID:           "nvidia/nemotron-nano-12b-v2-vl:free",
		Name:         "Nemotron Nano 12B",
		Provider:     ProviderOpenRouter,
		Description:  "Compact NVIDIA model with vision support",
		Available:    true,
		PricePerMTok: decimal.Zero,
	},
	{
		ID:           "meta-llama/llama-3.3-70b-instruct:free",
		Name:         "Llama 3.3 70B",
		Provider:     ProviderOpenRouter,
		Description:  "Powerful model by Meta",
		Available:    true,
		PricePerMTok: decimal.Zero,
	},
	{
		ID:           "llama3.1:8b",
		Name:         "Llama 3.1 8B",
		Provider:     ProviderOllama,
		Description:  "Efficient local model",
		Available:    true,
		PricePerMTok: decimal.Zero,
	},
	{
		ID:           "llama3.1:70b",
		Name:         "Llama 3.1 70B",
		Provider:     ProviderOllama,
		Description:  "Powerful local model by Meta",
		Available:    true,
		PricePerMTok: decimal.Zero,
	},
	{
		ID:           "mistral-nemo",
		Name:         "Mistral Nemo",
		Provider:     ProviderOllama,
		Description:  "Quality model by Mistral AI",
		Available:    true,
		PricePerMTok: decimal.Zero,
	},
	{
		ID:           "anthropic/claude-3.5-sonnet",
		Name:         "Claude 3.5 Sonnet",
		Provider:     ProviderOpenRouter,
		Description:  "Advanced model by Anthropic",
		Available:    true,
		PricePerMTok: decimal.NewFromFloat(3.0),
	},
	{
		ID:           "google/gemini-flash-1.5",
		Name:         "Gemini Flash 1.5",
		Provider:     ProviderOpenRouter,
		Description:  "Fast model by Google",
		Available:    true,
		PricePerMTok: decimal.NewFromFloat(0.075),
	},
	{
		ID:           "gpt-4o-mini",
		Name:         "GPT-4o mini",
		Provider:     ProviderOpenAI,
		Description:  "Affordable hosted model by OpenAI",
		Available:    true,
		PricePerMTok: decimal.NewFromFloat(0.15),
	},
}

// Catalog returns the static list of selectable models.
func Catalog() []ModelOption {
	out := make([]ModelOption, len(catalog))
	copy(out, catalog)
	return out
}

// LookupModel finds a catalog entry by model id.
func LookupModel(id string) (ModelOption, bool) {
	for _, option := range catalog {
		if option.ID == id {
			return option, true
		}
	}
	return ModelOption{}, false
}
