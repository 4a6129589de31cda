package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/llm-datagen/services"
	"github.com/upb/llm-datagen/utils"
)

// principalIDLength is the number of hex characters kept from the key digest
const principalIDLength = 16

// PrincipalID derives the stable identifier recorded for an API key. The raw
// key never leaves the middleware.
func PrincipalID(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])[:principalIDLength]
}

// APIKeyMiddleware identifies callers by the X-API-Key header. The key is
// trusted as set by the upstream gateway; it is not verified here.
type APIKeyMiddleware struct {
	adminKey string
	logger   *zap.Logger
}

// NewAPIKeyMiddleware creates a new APIKeyMiddleware. An empty adminKey
// disables every admin route.
func NewAPIKeyMiddleware(adminKey string, logger *zap.Logger) *APIKeyMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIKeyMiddleware{
		adminKey: adminKey,
		logger:   logger,
	}
}

// RequirePrincipal rejects requests without an API key and stores the
// key's PrincipalID as the request principal
func (m *APIKeyMiddleware) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		key := strings.TrimSpace(r.Header.Get(HeaderAPIKey))
		if key == "" {
			m.logger.Warn("missing api key",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, services.ErrMissingAPIKey.Message)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, PrincipalID(key))))
	})
}

// RequireAdmin allows only the configured admin key. It must run after RequirePrincipal.
func (m *APIKeyMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := strings.TrimSpace(r.Header.Get(HeaderAPIKey))

		if key == "" || GetPrincipalFromContext(ctx) == "" {
			_ = utils.WriteUnauthorized(w, services.ErrUnauthorized.Message)
			return
		}

		if m.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.adminKey)) != 1 {
			m.logger.Warn("admin route denied",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("path", r.URL.Path))
			_ = utils.WriteForbidden(w, services.ErrAdminOnly.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}
