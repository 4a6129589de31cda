package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-datagen/services"
	"github.com/upb/llm-datagen/services/orchestrator"
	"github.com/upb/llm-datagen/services/ratelimit"
	"github.com/upb/llm-datagen/services/templates"
	"github.com/upb/llm-datagen/utils"
)

// HandleServiceError maps generation and domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var quotaErr *ratelimit.QuotaExceededError
	var unavailable *orchestrator.AllProvidersUnavailableError
	var notFound *templates.TemplateNotFoundError
	var forbidden *templates.TemplateForbiddenError

	var writeErr error
	switch {
	case errors.As(err, &quotaErr):
		writeErr = utils.WriteTooManyRequests(w, err.Error(), map[string]interface{}{
			"window":   string(quotaErr.Window),
			"limit":    quotaErr.Limit,
			"reset_at": quotaErr.ResetAt.UTC().Format(time.RFC3339),
		})

	case errors.As(err, &unavailable):
		logger.Error("all providers unavailable", zap.Error(err))
		attempts := make([]string, 0, len(unavailable.Attempts))
		for _, a := range unavailable.Attempts {
			attempts = append(attempts, a.Provider)
		}
		writeErr = utils.WriteServiceUnavailable(w, "All LLM providers are currently unavailable", map[string]interface{}{
			"providers": attempts,
		})

	case errors.As(err, &notFound):
		writeErr = utils.WriteNotFound(w, err.Error())

	case errors.As(err, &forbidden):
		writeErr = utils.WriteForbidden(w, err.Error())

	case utils.IsValidationError(err):
		HandleValidationError(w, err, logger)
		return

	case services.IsValidationError(err):
		writeErr = utils.WriteBadRequest(w, err.Error(), services.GetErrorDetails(err))

	case services.IsUnauthorizedError(err):
		writeErr = utils.WriteUnauthorized(w, err.Error())

	case services.IsForbiddenError(err):
		writeErr = utils.WriteForbidden(w, err.Error())

	default:
		logger.Error("unhandled service error",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, "Validation failed", details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
