package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/upb/llm-datagen/services/providers"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 4096
)

// MessagesClient captures the subset of the Anthropic SDK used by the adapter.
// It is satisfied by *sdk.MessageService.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Adapter implements providers.Strategy for the Claude Messages API
type Adapter struct {
	config providers.ProviderConfig
	msg    MessagesClient
}

// NewAdapter creates an adapter with the default Anthropic HTTP client
func NewAdapter(config providers.ProviderConfig) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	client := sdk.NewClient(opts...)

	return NewAdapterWithClient(config, &client.Messages), nil
}

// NewAdapterWithClient creates an adapter around an existing messages client
func NewAdapterWithClient(config providers.ProviderConfig, msg MessagesClient) *Adapter {
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = defaultMaxTokens
	}
	return &Adapter{config: config, msg: msg}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return "anthropic"
}

// Generate sends the prompt as a single user turn
func (a *Adapter) Generate(ctx context.Context, prompt string) (*providers.Result, error) {
	start := time.Now()

	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.config.Model),
		MaxTokens: int64(a.config.MaxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}
	if a.config.Temperature != nil {
		params.Temperature = sdk.Float(float64(*a.config.Temperature))
	}

	msg, err := a.msg.New(ctx, params)
	if err != nil {
		return nil, a.wrapError(err)
	}
	if msg == nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeEmptyResponse, "response message is nil", 0, true, nil)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, providers.NewProviderError(a.Name(), providers.CodeEmptyResponse, "response has no text blocks", 0, true, nil)
	}

	model := string(msg.Model)
	if model == "" {
		model = a.config.Model
	}

	return &providers.Result{
		Text:     text,
		Usage:    providers.NewUsage(int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens), 0),
		Provider: a.Name(),
		Model:    model,
		Latency:  time.Since(start),
	}, nil
}

func (a *Adapter) wrapError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return providers.NewProviderError(
			a.Name(),
			providers.CodeForStatus(apiErr.StatusCode),
			"messages request failed",
			apiErr.StatusCode,
			providers.RetryableStatus(apiErr.StatusCode),
			err,
		)
	}
	return providers.NewProviderError(a.Name(), providers.CodeRequestFailed, "request failed", 0, true, err)
}
