package transform

import (
	"fmt"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// Pop moves one element out of a list: the element at index is written to
// the output key and the source keeps the remaining elements. Applying the
// same Pop repeatedly walks through the list.
//
// With source "queue", output "next" and index 0, {"queue": [1, 2]} becomes
// {"queue": [2], "next": 1}. An empty list is a value error.
type Pop struct {
	source keypath.Path
	output keypath.Path
	index  int
}

// NewPop creates a Pop of the element at index (negative counts from the
// end) from source into output.
func NewPop(source, output keypath.Path, index int) (*Pop, error) {
	if source.IsRoot() || output.IsRoot() {
		return nil, cerrors.Errorf(cerrors.KindValue, "pop needs a source and an output key")
	}
	if source.String() == output.String() {
		return nil, cerrors.Errorf(cerrors.KindValue, "pop source and output are both %q", source)
	}
	return &Pop{source: keypath.New(source...), output: keypath.New(output...), index: index}, nil
}

// Name implements Transform.
func (p *Pop) Name() string {
	return fmt.Sprintf("pop(%s[%d] -> %s)", p.source, p.index, p.output)
}

// Keys implements Transform: the source and the output.
func (p *Pop) Keys() []keypath.Path {
	return []keypath.Path{keypath.New(p.source...), keypath.New(p.output...)}
}

// Apply implements Transform.
func (p *Pop) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)

	list, err := keypath.Get(cfg, p.source)
	if err != nil {
		return nil, err
	}
	item, rest, err := expr.Pop(list, p.index)
	if err != nil {
		return nil, fmt.Errorf("pop %q: %w", p.source, err)
	}
	if err := keypath.Set(cfg, p.output, item); err != nil {
		return nil, err
	}
	if err := keypath.Set(cfg, p.source, rest); err != nil {
		return nil, err
	}
	return cfg, nil
}
