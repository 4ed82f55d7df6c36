package transform

import (
	"fmt"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// ValueFunc computes an inserted value from the configuration.
type ValueFunc func(cfg map[string]any) (any, error)

// Insert writes a value at a target path, creating missing parents.
//
// A mapping inserted over an existing mapping is deep-merged into it. A
// mapping over a scalar, or a scalar over a mapping, is a type error unless
// WithReplace is set. Scalars over scalars are overwritten.
type Insert struct {
	target  keypath.Path
	value   any
	fn      ValueFunc
	replace bool
}

// InsertOption configures an Insert.
type InsertOption func(*insertConfig)

type insertConfig struct {
	parent  keypath.Path
	replace bool
}

// WithParent offsets the target path under parent.
func WithParent(parent keypath.Path) InsertOption {
	return func(c *insertConfig) {
		c.parent = keypath.New(parent...)
	}
}

// WithReplace replaces whatever is at the target instead of merging or
// rejecting incompatible structure.
func WithReplace() InsertOption {
	return func(c *insertConfig) {
		c.replace = true
	}
}

// NewInsert creates an Insert of a fixed value. The value is deep-copied on
// every application.
func NewInsert(path keypath.Path, value any, opts ...InsertOption) (*Insert, error) {
	return newInsert(path, value, nil, opts)
}

// NewInsertFunc creates an Insert of a value computed from the configuration
// at application time.
func NewInsertFunc(path keypath.Path, fn ValueFunc, opts ...InsertOption) (*Insert, error) {
	if fn == nil {
		return nil, cerrors.Errorf(cerrors.KindType, "insert %q: nil value function", path.String())
	}
	return newInsert(path, nil, fn, opts)
}

func newInsert(path keypath.Path, value any, fn ValueFunc, opts []InsertOption) (*Insert, error) {
	var c insertConfig
	for _, opt := range opts {
		opt(&c)
	}
	target := c.parent.Append(path)
	if target.IsRoot() {
		return nil, cerrors.Errorf(cerrors.KindValue, "insert needs a non-empty target path")
	}
	return &Insert{
		target:  target,
		value:   keypath.Normalize(value),
		fn:      fn,
		replace: c.replace,
	}, nil
}

// Name implements Transform.
func (t *Insert) Name() string { return "insert(" + t.target.String() + ")" }

// Keys implements Transform.
func (t *Insert) Keys() []keypath.Path { return []keypath.Path{keypath.New(t.target...)} }

// Target returns the full target path.
func (t *Insert) Target() keypath.Path { return keypath.New(t.target...) }

// Apply implements Transform.
func (t *Insert) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)

	var value any
	if t.fn != nil {
		v, err := t.fn(cfg)
		if err != nil {
			return nil, fmt.Errorf("compute %q: %w", t.target.String(), err)
		}
		value = keypath.Normalize(v)
	} else {
		value = keypath.CloneValue(t.value)
	}

	existing, found := keypath.Lookup(cfg, t.target)
	if !found || t.replace {
		return t.set(cfg, value)
	}

	oldMap, oldIsMap := existing.(map[string]any)
	newMap, newIsMap := value.(map[string]any)
	switch {
	case oldIsMap && newIsMap:
		mergeInto(oldMap, newMap)
		return cfg, nil
	case oldIsMap != newIsMap:
		return nil, &cerrors.KeyError{
			Path: t.target.String(),
			Op:   "insert",
			Kind: cerrors.KindType,
			Err:  fmt.Errorf("cannot replace %T with %T without WithReplace", existing, value),
		}
	default:
		return t.set(cfg, value)
	}
}

func (t *Insert) set(cfg map[string]any, value any) (map[string]any, error) {
	if err := keypath.Set(cfg, t.target, value); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeInto deep-merges src into dst. Nested mappings merge; any other
// value in src overwrites dst.
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeInto(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}
