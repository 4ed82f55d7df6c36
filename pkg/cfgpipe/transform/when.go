package transform

import (
	"fmt"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// When applies an inner transform only if a condition holds for the
// configuration. Otherwise the configuration passes through unchanged.
type When struct {
	condition string
	inner     Transform
	evaluator *expr.Evaluator
}

// WhenOption configures a When.
type WhenOption func(*When)

// WithEvaluator sets the condition evaluator. Default: expr.NewEvaluator().
func WithEvaluator(e *expr.Evaluator) WhenOption {
	return func(w *When) {
		w.evaluator = e
	}
}

// NewWhen creates a When of inner guarded by condition.
func NewWhen(condition string, inner Transform, opts ...WhenOption) (*When, error) {
	if condition == "" {
		return nil, cerrors.Errorf(cerrors.KindValue, "when needs a condition")
	}
	if inner == nil {
		return nil, cerrors.Errorf(cerrors.KindType, "when needs a transform")
	}
	w := &When{condition: condition, inner: inner}
	for _, opt := range opts {
		opt(w)
	}
	if w.evaluator == nil {
		w.evaluator = expr.NewEvaluator()
	}
	return w, nil
}

// Name implements Transform.
func (w *When) Name() string { return "when(" + w.inner.Name() + ")" }

// Keys implements Transform: the keys of the inner transform.
func (w *When) Keys() []keypath.Path { return w.inner.Keys() }

// Condition returns the guarding condition.
func (w *When) Condition() string { return w.condition }

// Inner returns the guarded transform.
func (w *When) Inner() Transform { return w.inner }

// Apply implements Transform.
func (w *When) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)
	ok, err := w.evaluator.Evaluate(w.condition, cfg)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", w.condition, err)
	}
	if !ok {
		return cfg, nil
	}
	return w.inner.Apply(cfg)
}
