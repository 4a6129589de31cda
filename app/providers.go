package app

import (
	"context"

	"github.com/upb/llm-datagen/config"
	"github.com/upb/llm-datagen/services/providers"
	"github.com/upb/llm-datagen/services/providers/anthropic"
	"github.com/upb/llm-datagen/services/providers/gemini"
	"github.com/upb/llm-datagen/services/providers/openai"
)

// Provider names accepted in LLM_PROVIDER_ORDER
const (
	ProviderOpenAI    = "openai"
	ProviderQwen      = "qwen"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// newProviderSet registers every known backend and builds the configured order.
// Backends without an API key are skipped by the builder.
func newProviderSet(ctx context.Context, cfg config.ProvidersConfig, order []string) ([]providers.Strategy, error) {
	return providers.NewSetBuilder().
		WithProviderBuilder(ProviderOpenAI, func(c providers.ProviderConfig) (providers.Strategy, error) {
			return openai.NewOpenAIAdapter(c), nil
		}, toProviderConfig(cfg.OpenAI)).
		WithProviderBuilder(ProviderQwen, func(c providers.ProviderConfig) (providers.Strategy, error) {
			return openai.NewQwenAdapter(c), nil
		}, toProviderConfig(cfg.Qwen)).
		WithProviderBuilder(ProviderGemini, func(c providers.ProviderConfig) (providers.Strategy, error) {
			return gemini.NewAdapter(ctx, c)
		}, toProviderConfig(cfg.Gemini)).
		WithProviderBuilder(ProviderAnthropic, func(c providers.ProviderConfig) (providers.Strategy, error) {
			return anthropic.NewAdapter(c)
		}, toProviderConfig(cfg.Anthropic)).
		Build(order)
}

func toProviderConfig(c config.ProviderConfig) providers.ProviderConfig {
	return providers.ProviderConfig{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Model:   c.Model,
		Timeout: c.Timeout,
	}
}
