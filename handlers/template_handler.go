package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upb/llm-datagen/middleware"
	"github.com/upb/llm-datagen/models"
	"github.com/upb/llm-datagen/utils"
)

// TemplateService defines the prompt template lookups exposed over HTTP
type TemplateService interface {
	// List returns the public templates plus those owned by principal
	List(ctx context.Context, principal string) ([]*models.PromptTemplate, error)

	// Get returns one template after the access check
	Get(ctx context.Context, id, principal string) (*models.PromptTemplate, error)
}

// TemplateHandler handles prompt template requests
type TemplateHandler struct {
	service TemplateService
	logger  *zap.Logger
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(service TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListTemplates handles GET /api/v1/prompt-templates
func (h *TemplateHandler) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())

	list, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.logger.Error("failed to list templates",
			zap.String("principal", principal),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.PromptTemplate{}
	}

	if err := utils.WriteOK(w, list); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleGetTemplate handles GET /api/v1/prompt-templates/{id}
func (h *TemplateHandler) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	principal := middleware.GetPrincipalFromContext(r.Context())

	tmpl, err := h.service.Get(r.Context(), id, principal)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, tmpl); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
