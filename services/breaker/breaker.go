package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/upb/llm-datagen/internal/observability"
	"github.com/upb/llm-datagen/services/providers"
)

// State mirrors the gobreaker states
type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// ErrCallTimeout is returned when a provider call exceeds the hard timeout
var ErrCallTimeout = errors.New("provider call timed out")

// CircuitOpenError is returned when a call is rejected without reaching the provider
type CircuitOpenError struct {
	Provider string
	State    State
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker for %s is %s", e.Provider, e.State)
}

// Config holds breaker tuning
type Config struct {
	// ErrorThreshold is the failure ratio above which the breaker opens
	ErrorThreshold float64

	// MinRequests observed in the window before the ratio is evaluated
	MinRequests uint32

	// Window is the sample window after which closed-state counts reset
	Window time.Duration

	// Cooldown before an open breaker admits a trial call
	Cooldown time.Duration

	// CallTimeout bounds every call through the breaker
	CallTimeout time.Duration
}

// DefaultConfig returns the default breaker configuration
func DefaultConfig() Config {
	return Config{
		ErrorThreshold: 0.10,
		MinRequests:    1,
		Window:         60 * time.Second,
		Cooldown:       30 * time.Second,
		CallTimeout:    30 * time.Second,
	}
}

// Breaker guards one provider strategy
type Breaker struct {
	strategy providers.Strategy
	cb       *gobreaker.CircuitBreaker
	timeout  time.Duration
}

// abandonedError marks calls the caller gave up on. They are not held against
// the provider, except a cancelled half-open trial, which counts as a failure.
type abandonedError struct {
	err   error
	trial bool
}

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// New wraps a strategy in its own circuit breaker
func New(strategy providers.Strategy, cfg Config, logger *zap.Logger, metrics observability.Metrics) *Breaker {
	defaults := DefaultConfig()
	if cfg.ErrorThreshold <= 0 {
		cfg.ErrorThreshold = defaults.ErrorThreshold
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = defaults.MinRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaults.Cooldown
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaults.CallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}

	name := strategy.Name()
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Window,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio > cfg.ErrorThreshold
		},
		IsSuccessful: func(err error) bool {
			var abandoned *abandonedError
			if errors.As(err, &abandoned) {
				return !abandoned.trial
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetBreakerState(name, int(to))
		},
	}

	metrics.SetBreakerState(name, int(StateClosed))

	return &Breaker{
		strategy: strategy,
		cb:       gobreaker.NewCircuitBreaker(settings),
		timeout:  cfg.CallTimeout,
	}
}

// Name returns the guarded provider's name
func (b *Breaker) Name() string {
	return b.strategy.Name()
}

// State returns the current breaker state
func (b *Breaker) State() State {
	return b.cb.State()
}

// Generate calls the provider through the breaker under the hard timeout
func (b *Breaker) Generate(ctx context.Context, prompt string) (*providers.Result, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		// MaxRequests is 1, so the state cannot leave half-open while this runs
		trial := b.cb.State() == StateHalfOpen
		return b.call(ctx, prompt, trial)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &CircuitOpenError{Provider: b.Name(), State: b.cb.State()}
		}
		var abandoned *abandonedError
		if errors.As(err, &abandoned) {
			return nil, abandoned.err
		}
		return nil, err
	}
	return out.(*providers.Result), nil
}

type callOutcome struct {
	res *providers.Result
	err error
}

func (b *Breaker) call(ctx context.Context, prompt string, trial bool) (*providers.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan callOutcome, 1)
	go func() {
		res, err := b.strategy.Generate(callCtx, prompt)
		done <- callOutcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if ctx.Err() != nil {
				return nil, &abandonedError{err: ctx.Err(), trial: trial}
			}
			if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%s: %w", b.Name(), ErrCallTimeout)
			}
			return nil, out.err
		}
		if out.res == nil {
			return nil, providers.NewProviderError(b.Name(), providers.CodeEmptyResponse, "provider returned no result", 0, true, nil)
		}
		return out.res, nil
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return nil, &abandonedError{err: ctx.Err(), trial: trial}
		}
		return nil, fmt.Errorf("%s: %w", b.Name(), ErrCallTimeout)
	}
}
