package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-datagen/internal/observability"
)

// Config holds both window sizes
type Config struct {
	// ShortLimit points allowed per ShortWindow, enforced by waiting
	ShortLimit  int
	ShortWindow time.Duration

	// LongLimit points allowed per LongWindow, enforced by rejecting
	LongLimit  int64
	LongWindow time.Duration
}

// DefaultConfig returns 60 per minute and 1000 per day
func DefaultConfig() Config {
	return Config{
		ShortLimit:  60,
		ShortWindow: time.Minute,
		LongLimit:   1000,
		LongWindow:  24 * time.Hour,
	}
}

// RateLimitService gates each logical generation call through two windows
type RateLimitService struct {
	long    QuotaStore
	short   *LocalWindow
	logger  *zap.Logger
	metrics observability.Metrics
	now     func() time.Time
}

// NewRateLimitService creates a new RateLimitService instance
func NewRateLimitService(long QuotaStore, cfg Config, logger *zap.Logger, metrics observability.Metrics) *RateLimitService {
	defaults := DefaultConfig()
	if cfg.ShortLimit <= 0 {
		cfg.ShortLimit = defaults.ShortLimit
	}
	if cfg.ShortWindow <= 0 {
		cfg.ShortWindow = defaults.ShortWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &RateLimitService{
		long:    long,
		short:   NewLocalWindow(cfg.ShortLimit, cfg.ShortWindow),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Admit checks the long window first and fails fast with QuotaExceededError
// when it is exhausted. It then takes a point from the short window, waiting
// for the window to roll over if needed. The short window never rejects.
func (s *RateLimitService) Admit(ctx context.Context) error {
	if s.long != nil {
		decision, err := s.long.Consume(ctx)
		if err != nil {
			s.logger.Error("long window quota check failed", zap.Error(err))
			return fmt.Errorf("failed to check day window: %w", err)
		}
		if !decision.Allowed {
			s.metrics.RecordQuotaRejection(string(WindowDay))
			s.logger.Warn("daily LLM quota exceeded",
				zap.Int64("limit", decision.Limit),
				zap.Time("reset_at", decision.ResetAt),
			)
			return &QuotaExceededError{
				Window:  WindowDay,
				Limit:   decision.Limit,
				ResetAt: decision.ResetAt,
			}
		}
	}

	return s.waitShort(ctx)
}

func (s *RateLimitService) waitShort(ctx context.Context) error {
	start := s.now()
	waited := false

	for {
		wait, ok := s.short.Reserve()
		if ok {
			if waited {
				s.metrics.RecordRateLimitWait(s.now().Sub(start))
			}
			return nil
		}

		if !waited {
			s.logger.Info("short window exhausted, delaying call", zap.Duration("wait", wait))
			waited = true
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// IsQuotaExceeded reports whether err carries a QuotaExceededError
func IsQuotaExceeded(err error) bool {
	var quotaErr *QuotaExceededError
	return errors.As(err, &quotaErr)
}
