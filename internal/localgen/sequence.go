package localgen

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
)

// SerialNumber emits prefix+start, prefix+start+step, ...
type SerialNumber struct{}

func (SerialNumber) Validate(opts Options) error {
	if _, err := opts.number("start", 1); err != nil {
		return &OptionError{Generator: TypeSerialNumber, Message: err.Error()}
	}
	if _, err := opts.number("step", 1); err != nil {
		return &OptionError{Generator: TypeSerialNumber, Message: err.Error()}
	}
	return nil
}

func (g SerialNumber) Generate(_ context.Context, rows int, opts Options) ([]any, error) {
	if err := g.Validate(opts); err != nil {
		return nil, err
	}
	prefix := opts.str("prefix", "")
	current, _ := opts.number("start", 1)
	step, _ := opts.number("step", 1)

	out := make([]any, rows)
	for i := range out {
		out[i] = prefix + formatNumber(current)
		current += step
	}
	return out, nil
}

// maxScaleBound is the largest magnitude a float64 option holds exactly
const maxScaleBound = 1 << 53

// Scale emits uniform integers in [min, max]
type Scale struct{}

func (Scale) bounds(opts Options) (int64, int64, error) {
	lo, err := opts.number("min", 1)
	if err != nil {
		return 0, 0, &OptionError{Generator: TypeScale, Message: err.Error()}
	}
	hi, err := opts.number("max", 5)
	if err != nil {
		return 0, 0, &OptionError{Generator: TypeScale, Message: err.Error()}
	}
	for _, v := range []float64{lo, hi} {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxScaleBound {
			return 0, 0, &OptionError{Generator: TypeScale, Message: fmt.Sprintf("min and max must be within ±%d", int64(maxScaleBound))}
		}
	}
	if int64(hi) < int64(lo) {
		return 0, 0, &OptionError{Generator: TypeScale, Message: "max must not be less than min"}
	}
	return int64(lo), int64(hi), nil
}

func (g Scale) Validate(opts Options) error {
	_, _, err := g.bounds(opts)
	return err
}

func (g Scale) Generate(_ context.Context, rows int, opts Options) ([]any, error) {
	lo, hi, err := g.bounds(opts)
	if err != nil {
		return nil, err
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = int(lo + rand.Int64N(hi-lo+1))
	}
	return out, nil
}

// SingleChoice picks uniformly from the choices option
type SingleChoice struct{}

func (SingleChoice) choices(opts Options) ([]any, error) {
	list, ok := opts["choices"].([]any)
	if !ok || len(list) == 0 {
		if strs, ok := opts["choices"].([]string); ok && len(strs) > 0 {
			list = make([]any, len(strs))
			for i, s := range strs {
				list[i] = s
			}
			return list, nil
		}
		return nil, &OptionError{Generator: TypeSingleChoice, Message: `requires a non-empty "choices" array`}
	}
	return list, nil
}

func (g SingleChoice) Validate(opts Options) error {
	_, err := g.choices(opts)
	return err
}

func (g SingleChoice) Generate(_ context.Context, rows int, opts Options) ([]any, error) {
	list, err := g.choices(opts)
	if err != nil {
		return nil, err
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = list[rand.IntN(len(list))]
	}
	return out, nil
}
