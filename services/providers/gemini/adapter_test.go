package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/upb/llm-datagen/services/providers"
)

type stubGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	gotModel  string
	gotPrompt string
	gotConfig *genai.GenerateContentConfig
}

func (s *stubGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.gotModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		s.gotPrompt = contents[0].Parts[0].Text
	}
	s.gotConfig = config
	return s.resp, s.err
}

func textResponse(text string, usage *genai.GenerateContentResponseUsageMetadata) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}}},
		},
		UsageMetadata: usage,
	}
}

func TestAdapter_Generate(t *testing.T) {
	stub := &stubGenerator{resp: textResponse("王小明\n陳美玲\n", &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     12,
		CandidatesTokenCount: 8,
		TotalTokenCount:      20,
	})}
	adapter := NewAdapterWithGenerator(providers.ProviderConfig{APIKey: "k"}, stub)

	res, err := adapter.Generate(context.Background(), "請生成 2 個姓名")
	require.NoError(t, err)

	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, "王小明\n陳美玲", res.Text)
	assert.Equal(t, providers.Usage{PromptTokens: 12, CompletionTokens: 8, TotalTokens: 20}, res.Usage)

	assert.Equal(t, defaultModel, stub.gotModel)
	assert.Equal(t, "請生成 2 個姓名", stub.gotPrompt)
	require.NotNil(t, stub.gotConfig.Temperature)
	assert.InDelta(t, 1.0, *stub.gotConfig.Temperature, 0.0001)
}

func TestAdapter_Generate_NoUsage(t *testing.T) {
	adapter := NewAdapterWithGenerator(providers.ProviderConfig{Model: "gemini-2.0-flash"}, &stubGenerator{resp: textResponse("ok", nil)})

	res, err := adapter.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, providers.Usage{}, res.Usage)
	assert.Equal(t, "gemini-2.0-flash", res.Model)
}

func TestAdapter_Generate_Errors(t *testing.T) {
	tests := []struct {
		name          string
		stub          *stubGenerator
		wantCode      string
		wantStatus    int
		wantRetryable bool
	}{
		{
			name:          "api error",
			stub:          &stubGenerator{err: genai.APIError{Code: 429, Message: "quota", Status: "RESOURCE_EXHAUSTED"}},
			wantCode:      providers.CodeRateLimited,
			wantStatus:    429,
			wantRetryable: true,
		},
		{
			name:          "auth error",
			stub:          &stubGenerator{err: genai.APIError{Code: 403, Message: "denied"}},
			wantCode:      providers.CodeUnauthorized,
			wantStatus:    403,
			wantRetryable: false,
		},
		{
			name:          "transport error",
			stub:          &stubGenerator{err: errors.New("dial tcp: timeout")},
			wantCode:      providers.CodeRequestFailed,
			wantRetryable: true,
		},
		{
			name:          "no candidates",
			stub:          &stubGenerator{resp: &genai.GenerateContentResponse{}},
			wantCode:      providers.CodeEmptyResponse,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewAdapterWithGenerator(providers.ProviderConfig{}, tt.stub)

			_, err := adapter.Generate(context.Background(), "p")
			require.Error(t, err)

			var provErr *providers.ProviderError
			require.ErrorAs(t, err, &provErr)
			assert.Equal(t, "gemini", provErr.Provider)
			assert.Equal(t, tt.wantCode, provErr.Code)
			assert.Equal(t, tt.wantStatus, provErr.StatusCode)
			assert.Equal(t, tt.wantRetryable, provErr.Retryable)
		})
	}
}

func TestNewAdapter_RequiresKey(t *testing.T) {
	_, err := NewAdapter(context.Background(), providers.ProviderConfig{})
	assert.Error(t, err)
}
