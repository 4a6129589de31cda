package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/upb/llm-datagen/services/breaker"
	"github.com/upb/llm-datagen/services/providers"
	"github.com/upb/llm-datagen/services/usage"
)

// Guard is a provider wrapped in its circuit breaker
type Guard interface {
	Name() string
	State() breaker.State
	Generate(ctx context.Context, prompt string) (*providers.Result, error)
}

// Admitter gates each logical generation call
type Admitter interface {
	Admit(ctx context.Context) error
}

// UsageSink receives a record per successful generation. Record must not block.
type UsageSink interface {
	Record(rec usage.Record)
}

// Attempt is one provider's outcome inside the fallback loop
type Attempt struct {
	Provider  string
	Skipped   bool
	Retryable bool
	Err       error
}

// AllProvidersUnavailableError is returned when the fallback chain is exhausted
type AllProvidersUnavailableError struct {
	Attempts []Attempt
}

func (e *AllProvidersUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return "all providers unavailable (" + strings.Join(parts, "; ") + ")"
}

// Unwrap exposes each attempt's error to errors.Is / errors.As
func (e *AllProvidersUnavailableError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// ProviderStatus describes one configured provider for status endpoints
type ProviderStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

type nopSink struct{}

func (nopSink) Record(usage.Record) {}
