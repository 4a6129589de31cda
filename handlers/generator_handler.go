package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-datagen/internal/export"
	"github.com/upb/llm-datagen/middleware"
	"github.com/upb/llm-datagen/services"
	"github.com/upb/llm-datagen/services/generator"
	"github.com/upb/llm-datagen/utils"
)

// Download names for generated workbooks
const (
	DataSetFilename = "generated_data.xlsx"
	SurveyFilename  = "survey_data.xlsx"
)

// GenerationService defines the generation operations exposed over HTTP
type GenerationService interface {
	GenerateDataSet(ctx context.Context, req generator.DataSetRequest) (*generator.Table, error)
	GenerateSurvey(ctx context.Context, req generator.SurveyRequest) (*generator.Table, error)
	Preview(ctx context.Context, req generator.DataSetRequest, limit int) (*generator.Table, error)
}

// GeneratorHandler handles dataset and survey generation requests
type GeneratorHandler struct {
	service        GenerationService
	logger         *zap.Logger
	previewRows    int
	requestTimeout time.Duration
}

// NewGeneratorHandler creates a new GeneratorHandler. A zero requestTimeout
// leaves the request context untouched.
func NewGeneratorHandler(service GenerationService, logger *zap.Logger, previewRows int, requestTimeout time.Duration) *GeneratorHandler {
	if previewRows <= 0 {
		previewRows = 20
	}
	return &GeneratorHandler{
		service:        service,
		logger:         logger,
		previewRows:    previewRows,
		requestTimeout: requestTimeout,
	}
}

// HandleGenerateExcel handles POST /api/v1/generator/generate-excel
func (h *GeneratorHandler) HandleGenerateExcel(w http.ResponseWriter, r *http.Request) {
	var req generator.DataSetRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	table, err := h.service.GenerateDataSet(ctx, req)
	if err != nil {
		h.logFailure(r, "dataset generation failed", err)
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeWorkbook(w, r, DataSetFilename, table)
}

// HandleGenerateSurvey handles POST /api/v1/generator/generate-coherent-survey
func (h *GeneratorHandler) HandleGenerateSurvey(w http.ResponseWriter, r *http.Request) {
	var req generator.SurveyRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	table, err := h.service.GenerateSurvey(ctx, req)
	if err != nil {
		h.logFailure(r, "survey generation failed", err)
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeWorkbook(w, r, SurveyFilename, table)
}

// HandlePreview handles POST /api/v1/generator/preview
func (h *GeneratorHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req generator.DataSetRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	table, err := h.service.Preview(ctx, req, h.previewRows)
	if err != nil {
		h.logFailure(r, "preview generation failed", err)
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, table); err != nil {
		h.logger.Error("failed to write preview response", zap.Error(err))
	}
}

// decode parses and validates the JSON body, writing a 400 on failure
func (h *GeneratorHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return false
	}
	return true
}

func (h *GeneratorHandler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}

func (h *GeneratorHandler) writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, table *generator.Table) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, table); err != nil {
		h.logger.Error("failed to encode workbook",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		HandleServiceError(w, services.WrapInternal(services.ErrEncodeFailed.Message, err), h.logger)
		return
	}

	if err := utils.WriteAttachment(w, filename, export.ContentTypeXLSX, buf.Bytes()); err != nil {
		h.logger.Error("failed to write workbook", zap.Error(err))
	}
}

func (h *GeneratorHandler) logFailure(r *http.Request, msg string, err error) {
	h.logger.Warn(msg,
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("principal", middleware.GetPrincipalFromContext(r.Context())),
		zap.Error(err))
}
