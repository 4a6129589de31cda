// Package localgen holds the deterministic field generators that run without
// a provider round trip, plus the one custom-prompt generator that reaches a
// provider through the orchestrator.
package localgen

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/upb/llm-datagen/services/providers"
)

// Generator type identifiers
const (
	TypeSerialNumber      = "serial-number"
	TypeTaiwanIDCard      = "taiwan-id-card"
	TypeTaiwanMobilePhone = "taiwan-mobile-phone"
	TypeChinaIDCard       = "china-id-card"
	TypeChinaMobilePhone  = "china-mobile-phone"
	TypeScale             = "scale"
	TypeSingleChoice      = "single-choice"
	TypeLLMCustomPrompt   = "llm-custom-prompt"
)

// Options are the free-form per-field generator options decoded from JSON
type Options map[string]any

// Generator produces one value per row
type Generator interface {
	Generate(ctx context.Context, rows int, opts Options) ([]any, error)
}

// Validator is implemented by generators with required options
type Validator interface {
	Validate(opts Options) error
}

// TextGenerator is the orchestrator surface used by llm-custom-prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*providers.Result, error)
}

// OptionError reports invalid generator options
type OptionError struct {
	Generator string
	Message   string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Generator, e.Message)
}

// Registry maps generator types to implementations
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry returns a registry with every built-in generator. text may be
// nil, in which case llm-custom-prompt is not registered. promptLimit bounds
// concurrent llm-custom-prompt calls per field.
func NewRegistry(text TextGenerator, promptLimit int) *Registry {
	r := &Registry{generators: make(map[string]Generator)}
	r.Register(TypeSerialNumber, SerialNumber{})
	r.Register(TypeTaiwanIDCard, TaiwanIDCard{})
	r.Register(TypeTaiwanMobilePhone, TaiwanMobilePhone{})
	r.Register(TypeChinaIDCard, ChinaIDCard{})
	r.Register(TypeChinaMobilePhone, ChinaMobilePhone{})
	r.Register(TypeScale, Scale{})
	r.Register(TypeSingleChoice, SingleChoice{})
	if text != nil {
		r.Register(TypeLLMCustomPrompt, NewCustomPrompt(text, promptLimit))
	}
	return r
}

// Register adds or replaces a generator
func (r *Registry) Register(name string, g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = g
}

// Lookup returns the generator for name
func (r *Registry) Lookup(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[name]
	return g, ok
}

// Has reports whether name is a registered local generator
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names lists registered generator types in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate runs the generator's option validation when it has one
func Validate(g Generator, opts Options) error {
	if v, ok := g.(Validator); ok {
		return v.Validate(opts)
	}
	return nil
}
