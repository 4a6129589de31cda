package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/upb/llm-datagen/services/providers"
)

const (
	defaultModel = openai.GPT3Dot5Turbo

	// QwenBaseURL is DashScope's OpenAI compatible endpoint
	QwenBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"

	// QwenModel is the default Qwen model
	QwenModel = "qwen3-4b"
)

// ChatClient captures the subset of the go-openai client used by the adapter
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Adapter implements providers.Strategy for OpenAI and OpenAI compatible APIs
type Adapter struct {
	name   string
	config providers.ProviderConfig
	client ChatClient
}

// NewOpenAIAdapter creates an adapter for the OpenAI API
func NewOpenAIAdapter(config providers.ProviderConfig) *Adapter {
	if config.Model == "" {
		config.Model = defaultModel
	}
	return NewAdapter("openai", config)
}

// NewQwenAdapter creates an adapter for Qwen through DashScope
func NewQwenAdapter(config providers.ProviderConfig) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = QwenBaseURL
	}
	if config.Model == "" {
		config.Model = QwenModel
	}
	return NewAdapter("qwen", config)
}

// NewAdapter creates an adapter with the given provider name
func NewAdapter(name string, config providers.ProviderConfig) *Adapter {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Adapter{
		name:   name,
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// WithClient replaces the underlying chat client
func (a *Adapter) WithClient(client ChatClient) *Adapter {
	a.client = client
	return a
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return a.name
}

// Generate sends the prompt as a single user message
func (a *Adapter) Generate(ctx context.Context, prompt string) (*providers.Result, error) {
	start := time.Now()

	req := openai.ChatCompletionRequest{
		Model: a.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: a.config.MaxTokens,
	}
	if a.config.Temperature != nil {
		req.Temperature = *a.config.Temperature
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, a.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewProviderError(a.name, providers.CodeEmptyResponse, "completion has no choices", 0, true, nil)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, providers.NewProviderError(a.name, providers.CodeEmptyResponse, "completion is empty", 0, true, nil)
	}

	model := resp.Model
	if model == "" {
		model = a.config.Model
	}

	return &providers.Result{
		Text:     text,
		Usage:    providers.NewUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens),
		Provider: a.name,
		Model:    model,
		Latency:  time.Since(start),
	}, nil
}

// wrapError maps go-openai errors into ProviderError
func (a *Adapter) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return providers.NewProviderError(
			a.name,
			providers.CodeForStatus(apiErr.HTTPStatusCode),
			apiErr.Message,
			apiErr.HTTPStatusCode,
			providers.RetryableStatus(apiErr.HTTPStatusCode),
			err,
		)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return providers.NewProviderError(
			a.name,
			providers.CodeForStatus(reqErr.HTTPStatusCode),
			"request failed",
			reqErr.HTTPStatusCode,
			providers.RetryableStatus(reqErr.HTTPStatusCode),
			err,
		)
	}

	return providers.NewProviderError(a.name, providers.CodeRequestFailed, "request failed", 0, true, err)
}
