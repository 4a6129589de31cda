package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// MockProvider is a test implementation of the Strategy interface
type MockProvider struct {
	name          string
	text          string
	err           error
	responseDelay time.Duration
	calls         int
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name: name,
		text: "This is a mock response",
	}
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (*Result, error) {
	m.calls++
	if m.responseDelay > 0 {
		select {
		case <-time.After(m.responseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &Result{
		Text:     m.text,
		Usage:    NewUsage(10, 20, 0),
		Provider: m.name,
		Latency:  m.responseDelay,
	}, nil
}

func TestMockProvider(t *testing.T) {
	provider := NewMockProvider("test-provider")

	t.Run("Name", func(t *testing.T) {
		if provider.Name() != "test-provider" {
			t.Errorf("Name() = %s, want test-provider", provider.Name())
		}
	})

	t.Run("Generate", func(t *testing.T) {
		res, err := provider.Generate(context.Background(), "Hello")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if res.Text == "" {
			t.Error("Result text is empty")
		}
		if res.Usage.TotalTokens != 30 {
			t.Errorf("TotalTokens = %d, want 30", res.Usage.TotalTokens)
		}
	})

	t.Run("GenerateCancelled", func(t *testing.T) {
		slow := NewMockProvider("slow")
		slow.responseDelay = time.Second
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := slow.Generate(ctx, "Hello")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Generate() error = %v, want context.Canceled", err)
		}
	})
}

func TestNewUsage(t *testing.T) {
	tests := []struct {
		name                      string
		prompt, completion, total int
		want                      Usage
	}{
		{"explicit total", 10, 5, 15, Usage{10, 5, 15}},
		{"derived total", 10, 5, 0, Usage{10, 5, 15}},
		{"no usage reported", 0, 0, 0, Usage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewUsage(tt.prompt, tt.completion, tt.total)
			if got != tt.want {
				t.Errorf("NewUsage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProviderConfig(t *testing.T) {
	config := DefaultProviderConfig()

	if config.Timeout == 0 {
		t.Error("Default timeout not set")
	}
	if config.Temperature != nil {
		t.Error("Default temperature should be unset")
	}
}

func TestProviderError(t *testing.T) {
	t.Run("NewProviderError", func(t *testing.T) {
		cause := errors.New("connection failed")
		err := NewProviderError("test-provider", "CONN_ERROR", "Failed to connect", 500, true, cause)

		if err.Provider != "test-provider" {
			t.Errorf("Provider = %s, want test-provider", err.Provider)
		}
		if err.Code != "CONN_ERROR" {
			t.Errorf("Code = %s, want CONN_ERROR", err.Code)
		}
		if err.StatusCode != 500 {
			t.Errorf("StatusCode = %d, want 500", err.StatusCode)
		}
		if !err.Retryable {
			t.Error("Error should be retryable")
		}
		if err.Cause != cause {
			t.Error("Cause not set correctly")
		}
	})

	t.Run("ErrorMethod", func(t *testing.T) {
		err := NewProviderError("gemini", CodeRequestFailed, "request failed", 0, true, errors.New("boom"))
		if err.Error() != "gemini: request failed: boom" {
			t.Errorf("Error() = %q", err.Error())
		}

		noCause := NewProviderError("gemini", CodeEmptyResponse, "empty completion", 0, false, nil)
		if noCause.Error() != "gemini: empty completion" {
			t.Errorf("Error() = %q", noCause.Error())
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := context.DeadlineExceeded
		err := fmt.Errorf("wrapped: %w", NewProviderError("openai", CodeRequestFailed, "timeout", 0, true, cause))

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("errors.Is should find the cause through ProviderError")
		}
		if !IsRetryable(err) {
			t.Error("IsRetryable should see through wrapping")
		}
	})

	t.Run("IsRetryableNonProvider", func(t *testing.T) {
		if IsRetryable(errors.New("plain")) {
			t.Error("plain errors are not retryable")
		}
	})
}

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status    int
		code      string
		retryable bool
	}{
		{401, CodeUnauthorized, false},
		{403, CodeUnauthorized, false},
		{429, CodeRateLimited, true},
		{500, CodeRequestFailed, true},
		{400, CodeRequestFailed, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			if got := CodeForStatus(tt.status); got != tt.code {
				t.Errorf("CodeForStatus(%d) = %s, want %s", tt.status, got, tt.code)
			}
			if got := RetryableStatus(tt.status); got != tt.retryable {
				t.Errorf("RetryableStatus(%d) = %v, want %v", tt.status, got, tt.retryable)
			}
		})
	}
}
