package expr

import (
	"fmt"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// Binding maps the value at Path to argument Slot of a function.
type Binding struct {
	Path keypath.Path
	Slot int
}

// Bound is a Func with its arguments bound to configuration keys and its
// result bound to an output key.
type Bound struct {
	fn       Func
	bindings []Binding
	output   keypath.Path
}

// Bind binds inputs to the arguments of fn in order.
func Bind(fn Func, output keypath.Path, inputs ...keypath.Path) (*Bound, error) {
	bindings := make([]Binding, len(inputs))
	for i, p := range inputs {
		bindings[i] = Binding{Path: p, Slot: i}
	}
	return BindSlots(fn, output, bindings...)
}

// BindSlots binds each path to an explicit argument slot. Every slot of fn
// must be bound exactly once.
func BindSlots(fn Func, output keypath.Path, bindings ...Binding) (*Bound, error) {
	if fn.Call == nil {
		return nil, cerrors.Errorf(cerrors.KindSignature, "function %q has no implementation", fn.Name)
	}
	if output.IsRoot() {
		return nil, cerrors.Errorf(cerrors.KindValue, "function %q needs an output key", fn.Name)
	}
	if len(bindings) != fn.Arity {
		return nil, cerrors.Errorf(cerrors.KindSignature,
			"function %q takes %d arguments, %d keys bound", fn.Name, fn.Arity, len(bindings))
	}

	ordered := make([]Binding, fn.Arity)
	filled := make([]bool, fn.Arity)
	for _, b := range bindings {
		if b.Slot < 0 || b.Slot >= fn.Arity {
			return nil, cerrors.Errorf(cerrors.KindSignature,
				"function %q has no argument slot %d", fn.Name, b.Slot)
		}
		if filled[b.Slot] {
			return nil, cerrors.Errorf(cerrors.KindSignature,
				"function %q argument slot %d bound twice", fn.Name, b.Slot)
		}
		filled[b.Slot] = true
		ordered[b.Slot] = Binding{Path: keypath.New(b.Path...), Slot: b.Slot}
	}

	return &Bound{fn: fn, bindings: ordered, output: keypath.New(output...)}, nil
}

// Func returns the bound function.
func (b *Bound) Func() Func { return b.fn }

// Output returns the output key.
func (b *Bound) Output() keypath.Path { return keypath.New(b.output...) }

// Inputs returns the input keys in argument order.
func (b *Bound) Inputs() []keypath.Path {
	out := make([]keypath.Path, len(b.bindings))
	for i, bnd := range b.bindings {
		out[i] = keypath.New(bnd.Path...)
	}
	return out
}

// Eval resolves every input against cfg and calls the function.
func (b *Bound) Eval(cfg map[string]any) (any, error) {
	args := make([]any, len(b.bindings))
	for i, bnd := range b.bindings {
		v, err := keypath.Get(cfg, bnd.Path)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, b.fn.Name, err)
		}
		args[i] = v
	}
	return b.fn.Invoke(args...)
}

// Apply evaluates the function and writes the result to the output key,
// creating missing parent mappings.
func (b *Bound) Apply(cfg map[string]any) error {
	v, err := b.Eval(cfg)
	if err != nil {
		return err
	}
	return keypath.Set(cfg, b.output, v)
}
