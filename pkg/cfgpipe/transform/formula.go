package transform

import (
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// Formula evaluates a function over input keys and writes the result to an
// output key, creating missing parents.
type Formula struct {
	bound *expr.Bound
}

// NewFormula binds inputs to the arguments of fn in order. An arity
// mismatch fails with ErrSignature.
func NewFormula(fn expr.Func, output keypath.Path, inputs ...keypath.Path) (*Formula, error) {
	b, err := expr.Bind(fn, output, inputs...)
	if err != nil {
		return nil, err
	}
	return &Formula{bound: b}, nil
}

// NewFormulaSlots binds inputs to explicit argument slots of fn.
func NewFormulaSlots(fn expr.Func, output keypath.Path, bindings ...expr.Binding) (*Formula, error) {
	b, err := expr.BindSlots(fn, output, bindings...)
	if err != nil {
		return nil, err
	}
	return &Formula{bound: b}, nil
}

// Name implements Transform.
func (f *Formula) Name() string {
	return "formula(" + f.bound.Func().Name + " -> " + f.bound.Output().String() + ")"
}

// Keys implements Transform: the inputs followed by the output.
func (f *Formula) Keys() []keypath.Path {
	return appendUnique(f.bound.Inputs(), f.bound.Output())
}

// Bound returns the underlying binding.
func (f *Formula) Bound() *expr.Bound { return f.bound }

// Apply implements Transform.
func (f *Formula) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)
	if err := f.bound.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
