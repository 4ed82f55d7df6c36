package pipeline

import (
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
)

// Option configures building a pipeline.
type Option func(*Env)

// WithSeed makes randomized functions draw from a deterministic generator.
// It overrides the definition's seed.
func WithSeed(seed uint64) Option {
	return func(e *Env) {
		e.Source = expr.NewRNG(seed)
	}
}

// WithSource makes randomized functions draw from src.
func WithSource(src expr.Source) Option {
	return func(e *Env) {
		e.Source = src
	}
}
