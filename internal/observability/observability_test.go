package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"console debug", "debug", "console", false},
		{"empty level defaults", "", "", false},
		{"invalid level", "loud", "json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordProviderCall("gemini", StatusSuccess, 200*time.Millisecond)
	m.RecordProviderCall("gemini", StatusError, time.Second)
	m.RecordProviderCall("openai", StatusCircuitOpen, 0)
	m.RecordTokens("gemini", 10, 5)
	m.SetBreakerState("openai", 2)
	m.RecordQuotaRejection("day")
	m.RecordGeneration("dataset", 3)
	m.RecordRateLimitWait(time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues("gemini", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues("openai", StatusCircuitOpen)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.providerTokens.WithLabelValues("gemini", "prompt")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.breakerState.WithLabelValues("openai")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaRejections.WithLabelValues("day")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.generatedRows.WithLabelValues("dataset")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "llm_provider_requests_total")
}

func TestNopMetrics(t *testing.T) {
	var m Metrics = NopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordProviderCall("x", StatusSuccess, time.Second)
		m.SetBreakerState("x", 1)
	})
}
