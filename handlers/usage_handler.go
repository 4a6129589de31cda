package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-datagen/services"
	"github.com/upb/llm-datagen/services/usage"
	"github.com/upb/llm-datagen/utils"
)

// UsageStatsService reads the daily usage counters
type UsageStatsService interface {
	Today() string
	Stats(ctx context.Context, date string) ([]usage.DailyStats, error)
}

// UsageStatsResponse is the body of the admin stats endpoint
type UsageStatsResponse struct {
	Date  string             `json:"date"`
	Stats []usage.DailyStats `json:"stats"`
}

// UsageHandler handles usage reporting requests
type UsageHandler struct {
	service UsageStatsService
	logger  *zap.Logger
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(service UsageStatsService, logger *zap.Logger) *UsageHandler {
	return &UsageHandler{
		service: service,
		logger:  logger,
	}
}

// HandleStats handles GET /api/v1/usage/stats?date=YYYY-MM-DD
func (h *UsageHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.service.Today()
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		HandleServiceError(w, services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidDate.Message, err).
			WithDetail("date", date), h.logger)
		return
	}

	stats, err := h.service.Stats(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to read usage stats",
			zap.String("date", date),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}
	if stats == nil {
		stats = []usage.DailyStats{}
	}

	if err := utils.WriteOK(w, UsageStatsResponse{Date: date, Stats: stats}); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
