package localgen

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CustomPrompt sends the caller's prompt once per row and keeps each response
type CustomPrompt struct {
	text  TextGenerator
	limit int
}

// NewCustomPrompt creates the generator; limit bounds in-flight calls (0 means unbounded)
func NewCustomPrompt(text TextGenerator, limit int) *CustomPrompt {
	return &CustomPrompt{text: text, limit: limit}
}

func (g *CustomPrompt) Validate(opts Options) error {
	prompt, ok := opts["prompt"].(string)
	if !ok || prompt == "" {
		return &OptionError{Generator: TypeLLMCustomPrompt, Message: `requires a string "prompt" option`}
	}
	return nil
}

func (g *CustomPrompt) Generate(ctx context.Context, rows int, opts Options) ([]any, error) {
	if err := g.Validate(opts); err != nil {
		return nil, err
	}
	prompt := opts["prompt"].(string)

	out := make([]any, rows)
	eg, ctx := errgroup.WithContext(ctx)
	if g.limit > 0 {
		eg.SetLimit(g.limit)
	}
	for i := 0; i < rows; i++ {
		eg.Go(func() error {
			res, err := g.text.Generate(ctx, prompt)
			if err != nil {
				return err
			}
			out[i] = res.Text
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
