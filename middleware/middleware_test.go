package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/upb/llm-datagen/services"
)

func okHandler(t *testing.T, check func(r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequirePrincipal(t *testing.T) {
	m := NewAPIKeyMiddleware("admin-key", zap.NewNop())

	t.Run("principal is derived from the api key", func(t *testing.T) {
		called := false
		handler := m.RequirePrincipal(okHandler(t, func(r *http.Request) {
			called = true
			principal := GetPrincipalFromContext(r.Context())
			assert.Equal(t, PrincipalID("key-a"), principal)
			assert.NotContains(t, principal, "key-a")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/prompt-templates", nil)
		req.Header.Set(HeaderAPIKey, " key-a ")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("missing api key is unauthorized", func(t *testing.T) {
		handler := m.RequirePrincipal(okHandler(t, func(*http.Request) {
			t.Fatal("handler must not run")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
		assert.Contains(t, w.Body.String(), services.ErrMissingAPIKey.Message)
	})
}

func TestPrincipalID(t *testing.T) {
	id := PrincipalID("admin-key")

	assert.Len(t, id, principalIDLength)
	assert.Regexp(t, "^[0-9a-f]+$", id)
	assert.Equal(t, id, PrincipalID("admin-key"))
	assert.NotEqual(t, id, PrincipalID("admin-key2"))
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		adminKey string
		key      string
		want     int
	}{
		{name: "admin key passes", adminKey: "admin-key", key: "admin-key", want: http.StatusOK},
		{name: "other key is forbidden", adminKey: "admin-key", key: "key-a", want: http.StatusForbidden},
		{name: "no admin configured", adminKey: "", key: "anything", want: http.StatusForbidden},
		{name: "no key at all", adminKey: "admin-key", key: "", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAPIKeyMiddleware(tt.adminKey, nil)
			handler := m.RequirePrincipal(m.RequireAdmin(okHandler(t, nil)))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/stats", nil)
			if tt.key != "" {
				req.Header.Set(HeaderAPIKey, tt.key)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireAdmin_DoesNotLogRawKey(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := NewAPIKeyMiddleware("admin-key", zap.New(core))
	handler := m.RequirePrincipal(m.RequireAdmin(okHandler(t, nil)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/stats", nil)
	req.Header.Set(HeaderAPIKey, "secret-key-a")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), services.ErrAdminOnly.Message)
	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), "secret-key-a")
		}
	}
}

func TestRequestContext(t *testing.T) {
	t.Run("uses the chi request id", func(t *testing.T) {
		var seen string
		handler := chimw.RequestID(RequestContext(okHandler(t, func(r *http.Request) {
			seen = GetRequestIDFromContext(r.Context())
		})))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(HeaderRequestID))
	})

	t.Run("generates an id without chi", func(t *testing.T) {
		var seen string
		handler := RequestContext(okHandler(t, func(r *http.Request) {
			seen = GetRequestIDFromContext(r.Context())
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
	})
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generator/preview", nil)
	req = req.WithContext(WithRequestID(req.Context(), "req-7"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, int64(http.StatusServiceUnavailable), fields["status"])
	assert.Equal(t, "/api/v1/generator/preview", fields["path"])
}
