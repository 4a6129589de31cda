package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderNotFound is returned when no builder is registered for a name in the order
	ErrProviderNotFound = errors.New("provider not found")

	// ErrNoProviders is returned when the configured order yields no usable provider
	ErrNoProviders = errors.New("no providers configured")

	// ErrProviderAlreadyRegistered is returned when a name appears twice in the order
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// ProviderBuilder is a function that creates a provider instance
type ProviderBuilder func(config ProviderConfig) (Strategy, error)

// SetBuilder assembles the ordered provider list the orchestrator falls back through.
// It holds no global state; each process builds its own set once at startup.
type SetBuilder struct {
	builders map[string]ProviderBuilder
	configs  map[string]ProviderConfig
}

// NewSetBuilder creates a new provider set builder
func NewSetBuilder() *SetBuilder {
	return &SetBuilder{
		builders: make(map[string]ProviderBuilder),
		configs:  make(map[string]ProviderConfig),
	}
}

// WithProviderBuilder registers how to construct the provider with the given name
func (b *SetBuilder) WithProviderBuilder(name string, builder ProviderBuilder, config ProviderConfig) *SetBuilder {
	b.builders[name] = builder
	b.configs[name] = config
	return b
}

// Build constructs providers in the given order. Providers whose config has no
// API key are skipped so a partially configured deployment still starts.
func (b *SetBuilder) Build(order []string) ([]Strategy, error) {
	seen := make(map[string]bool, len(order))
	strategies := make([]Strategy, 0, len(order))

	for _, raw := range order {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrProviderAlreadyRegistered, name)
		}
		seen[name] = true

		builder, exists := b.builders[name]
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
		}
		config := b.configs[name]
		if config.APIKey == "" {
			continue
		}

		provider, err := builder(config)
		if err != nil {
			return nil, fmt.Errorf("failed to build provider %s: %w", name, err)
		}
		strategies = append(strategies, provider)
	}

	if len(strategies) == 0 {
		return nil, ErrNoProviders
	}
	return strategies, nil
}

// ParseOrder splits a comma separated provider order
func ParseOrder(raw string) []string {
	parts := strings.Split(raw, ",")
	order := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			order = append(order, p)
		}
	}
	return order
}
