package llm

import (
	"context"

	"chat-server/internal/utils/platformerrors"
)

// Registry resolves provider names to configured Provider instances. It is
// populated once at startup and read-only afterwards.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its own name.
func (r *Registry) Register(provider Provider) {
	r.providers[provider.Name()] = provider
}

// Get returns the provider registered under name.
func (r *Registry) Get(ctx context.Context, name string) (Provider, error) {
	provider, ok := r.providers[name]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown provider: "+name, nil)
	}
	return provider, nil
}

// ForModel resolves the provider serving the given model id via the catalog.
func (r *Registry) ForModel(ctx context.Context, modelID string) (Provider, error) {
	option, ok := LookupModel(modelID)
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown model: "+modelID, nil)
	}
	return r.Get(ctx, option.Provider)
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
