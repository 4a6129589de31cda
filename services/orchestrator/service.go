package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/upb/llm-datagen/internal/observability"
	"github.com/upb/llm-datagen/internal/shared"
	"github.com/upb/llm-datagen/services/breaker"
	"github.com/upb/llm-datagen/services/providers"
	"github.com/upb/llm-datagen/services/usage"
)

// Service turns an ordered set of guarded providers into one generate call
type Service struct {
	guards  []Guard
	limiter Admitter
	sink    UsageSink
	logger  *zap.Logger
	metrics observability.Metrics
	tracer  trace.Tracer
}

// New creates the orchestrator. guards are tried in slice order.
func New(guards []Guard, limiter Admitter, sink UsageSink, logger *zap.Logger, metrics observability.Metrics) (*Service, error) {
	if len(guards) == 0 {
		return nil, providers.ErrNoProviders
	}
	if sink == nil {
		sink = nopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Service{
		guards:  guards,
		limiter: limiter,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		tracer:  observability.Tracer(),
	}, nil
}

// Generate admits the call once, then tries each provider in order until one succeeds
func (s *Service) Generate(ctx context.Context, prompt string) (*providers.Result, error) {
	ctx, span := s.tracer.Start(ctx, "orchestrator.Generate")
	defer span.End()

	if s.limiter != nil {
		if err := s.limiter.Admit(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "admission rejected")
			return nil, err
		}
	}

	attempts := make([]Attempt, 0, len(s.guards))
	for _, g := range s.guards {
		name := g.Name()

		if g.State() == breaker.StateOpen {
			s.logger.Debug("skipping provider with open circuit", zap.String("provider", name))
			s.metrics.RecordProviderCall(name, observability.StatusCircuitOpen, 0)
			span.AddEvent("provider.skipped", trace.WithAttributes(attribute.String("provider", name)))
			attempts = append(attempts, Attempt{
				Provider: name,
				Skipped:  true,
				Err:      &breaker.CircuitOpenError{Provider: name, State: breaker.StateOpen},
			})
			continue
		}

		start := time.Now()
		res, err := g.Generate(ctx, prompt)
		elapsed := time.Since(start)

		if err == nil {
			s.onSuccess(ctx, span, name, res, elapsed)
			return res, nil
		}

		if ctx.Err() != nil {
			span.RecordError(ctx.Err())
			span.SetStatus(codes.Error, "cancelled")
			return nil, ctx.Err()
		}

		status := observability.StatusError
		var openErr *breaker.CircuitOpenError
		if errors.As(err, &openErr) {
			status = observability.StatusCircuitOpen
		}
		s.metrics.RecordProviderCall(name, status, elapsed)
		span.AddEvent("provider.failed", trace.WithAttributes(
			attribute.String("provider", name),
			attribute.String("error", err.Error()),
		))
		retryable := providers.IsRetryable(err)
		s.logger.Warn("provider call failed, trying next",
			zap.String("provider", name),
			zap.Duration("elapsed", elapsed),
			zap.Bool("retryable", retryable),
			zap.Error(err))

		attempts = append(attempts, Attempt{Provider: name, Retryable: retryable, Err: err})
	}

	err := &AllProvidersUnavailableError{Attempts: attempts}
	span.RecordError(err)
	span.SetStatus(codes.Error, "all providers unavailable")
	s.logger.Error("all providers unavailable", zap.Int("attempts", len(attempts)))
	return nil, err
}

func (s *Service) onSuccess(ctx context.Context, span trace.Span, name string, res *providers.Result, elapsed time.Duration) {
	if res.Provider == "" {
		res.Provider = name
	}
	if res.Latency == 0 {
		res.Latency = elapsed
	}

	s.metrics.RecordProviderCall(name, observability.StatusSuccess, elapsed)
	s.metrics.RecordTokens(name, res.Usage.PromptTokens, res.Usage.CompletionTokens)
	span.SetAttributes(
		attribute.String("provider", name),
		attribute.Int("tokens.total", res.Usage.TotalTokens),
	)

	s.sink.Record(usage.Record{
		Principal: shared.Principal(ctx),
		RequestID: shared.RequestID(ctx),
		Provider:  res.Provider,
		Model:     res.Model,
		Usage:     res.Usage,
		Latency:   res.Latency,
	})

	s.logger.Debug("provider call succeeded",
		zap.String("provider", name),
		zap.Duration("latency", res.Latency),
		zap.Int("total_tokens", res.Usage.TotalTokens))
}

// Providers reports the configured providers in fallback order
func (s *Service) Providers() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(s.guards))
	for _, g := range s.guards {
		out = append(out, ProviderStatus{Name: g.Name(), State: g.State().String()})
	}
	return out
}

// IsUnavailable reports whether err is an exhausted fallback chain
func IsUnavailable(err error) bool {
	var target *AllProvidersUnavailableError
	return errors.As(err, &target)
}
