package cfgpipe

import (
	"fmt"
	"runtime/debug"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/transform"
)

// Compose applies an ordered list of transforms, threading the
// configuration from one to the next. It is itself a Transform, so
// composes nest.
type Compose struct {
	transforms []transform.Transform
}

var _ transform.Transform = (*Compose)(nil)

// NewCompose creates a Compose of transforms in order. An empty Compose
// returns its input unchanged.
func NewCompose(transforms ...transform.Transform) (*Compose, error) {
	for i, t := range transforms {
		if t == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilTransform, i)
		}
	}
	return &Compose{transforms: append([]transform.Transform(nil), transforms...)}, nil
}

// MustCompose is NewCompose that panics on error.
func MustCompose(transforms ...transform.Transform) *Compose {
	c, err := NewCompose(transforms...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name implements Transform.
func (c *Compose) Name() string { return "compose" }

// Keys implements Transform: the union of the keys of every transform, in
// first-seen order.
func (c *Compose) Keys() []keypath.Path {
	var keys []keypath.Path
	for _, t := range c.transforms {
		for _, k := range t.Keys() {
			if !keypath.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Transforms returns the transforms in order.
func (c *Compose) Transforms() []transform.Transform {
	return append([]transform.Transform(nil), c.transforms...)
}

// Len returns the number of transforms.
func (c *Compose) Len() int { return len(c.transforms) }

// Apply implements Transform. The first failing transform stops the
// chain; changes made by earlier transforms are not rolled back. Errors are
// *TransformError or *PanicError.
func (c *Compose) Apply(cfg map[string]any) (map[string]any, error) {
	if cfg == nil {
		cfg = make(map[string]any)
	}
	for i, t := range c.transforms {
		out, err := applyStep(i, t, cfg)
		if err != nil {
			return nil, err
		}
		cfg = out
	}
	return cfg, nil
}

// applyStep applies one transform, converting panics into *PanicError.
func applyStep(i int, t transform.Transform, cfg map[string]any) (out map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &PanicError{
				Index: i,
				Name:  t.Name(),
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	out, err = t.Apply(cfg)
	if err != nil {
		return nil, &TransformError{Index: i, Name: t.Name(), Err: err}
	}
	if out == nil {
		return nil, &TransformError{
			Index: i,
			Name:  t.Name(),
			Err:   cerrors.Errorf(cerrors.KindType, "transform returned a nil configuration"),
		}
	}
	return out, nil
}
