package providers

import (
	"context"
	"errors"
	"time"
)

// Strategy is the uniform contract every text generation backend implements.
type Strategy interface {
	// Name returns the provider identifier used in the fallback order (e.g., "gemini", "openai")
	Name() string

	// Generate sends a single prompt and returns the completion text with usage accounting
	Generate(ctx context.Context, prompt string) (*Result, error)
}

// Result is the outcome of one successful provider call
type Result struct {
	// Text is the trimmed completion text
	Text string `json:"text"`

	// Usage statistics, zero when the backend does not report them
	Usage Usage `json:"usage"`

	// Provider that produced the result
	Provider string `json:"provider"`

	// Model used for the completion
	Model string `json:"model,omitempty"`

	// Latency of the call
	Latency time.Duration `json:"latency"`
}

// Usage represents token usage statistics
type Usage struct {
	// PromptTokens used in the request
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens used in the response
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the sum of prompt and completion tokens
	TotalTokens int `json:"total_tokens"`
}

// NewUsage builds a Usage, deriving the total when the backend omits it
func NewUsage(prompt, completion, total int) Usage {
	if total == 0 {
		total = prompt + completion
	}
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
	}
}

// ProviderConfig holds common configuration for providers
type ProviderConfig struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Model to request
	Model string

	// Temperature for sampling, nil keeps the backend default
	Temperature *float32

	// MaxTokens limits the response length, zero keeps the backend default
	MaxTokens int

	// Timeout for requests
	Timeout time.Duration
}

// DefaultProviderConfig returns a sensible default configuration
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Timeout: 30 * time.Second,
	}
}

// Error codes shared by the adapters
const (
	CodeRequestFailed = "REQUEST_FAILED"
	CodeEmptyResponse = "EMPTY_RESPONSE"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeRateLimited   = "RATE_LIMITED"
	CodeNotConfigured = "NOT_CONFIGURED"
)

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Retryable indicates if the request can be retried
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}

// RetryableStatus reports whether an HTTP status from a backend is transient
func RetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == 429
}

// CodeForStatus maps an HTTP status to an error code
func CodeForStatus(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return CodeUnauthorized
	case statusCode == 429:
		return CodeRateLimited
	default:
		return CodeRequestFailed
	}
}
