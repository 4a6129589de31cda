package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/upb/llm-datagen/services/providers"
)

const defaultModel = "gemini-1.5-flash"

// ContentGenerator captures the subset of genai.Models used by the adapter
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Adapter implements providers.Strategy for the Gemini developer API
type Adapter struct {
	config providers.ProviderConfig
	models ContentGenerator
}

// NewAdapter creates a Gemini adapter backed by a genai client
func NewAdapter(ctx context.Context, config providers.ProviderConfig) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL: config.BaseURL,
		},
	})
	if err != nil {
		return nil, err
	}

	return newAdapter(config, client.Models), nil
}

// NewAdapterWithGenerator creates an adapter around an existing content generator
func NewAdapterWithGenerator(config providers.ProviderConfig, models ContentGenerator) *Adapter {
	return newAdapter(config, models)
}

func newAdapter(config providers.ProviderConfig, models ContentGenerator) *Adapter {
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Temperature == nil {
		config.Temperature = genai.Ptr[float32](1.0)
	}
	return &Adapter{config: config, models: models}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return "gemini"
}

// Generate sends the prompt as a single text content
func (a *Adapter) Generate(ctx context.Context, prompt string) (*providers.Result, error) {
	start := time.Now()

	cfg := &genai.GenerateContentConfig{
		Temperature: a.config.Temperature,
	}
	if a.config.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(a.config.MaxTokens)
	}

	resp, err := a.models.GenerateContent(ctx, a.config.Model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, a.wrapError(err)
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return nil, providers.NewProviderError(a.Name(), providers.CodeEmptyResponse, "response has no text candidates", 0, true, nil)
	}

	var usage providers.Usage
	if resp.UsageMetadata != nil {
		usage = providers.NewUsage(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
			int(resp.UsageMetadata.TotalTokenCount),
		)
	}

	return &providers.Result{
		Text:     text,
		Usage:    usage,
		Provider: a.Name(),
		Model:    a.config.Model,
		Latency:  time.Since(start),
	}, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "")
}

func (a *Adapter) wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.NewProviderError(
			a.Name(),
			providers.CodeForStatus(apiErr.Code),
			apiErr.Message,
			apiErr.Code,
			providers.RetryableStatus(apiErr.Code),
			err,
		)
	}
	return providers.NewProviderError(a.Name(), providers.CodeRequestFailed, "request failed", 0, true, err)
}
