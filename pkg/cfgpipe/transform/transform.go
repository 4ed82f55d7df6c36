package transform

import (
	"fmt"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// Transform maps one configuration state to the next.
//
// Apply may mutate cfg in place and returns the resulting configuration,
// which may be cfg itself or a new map. A nil cfg is treated as empty.
// Keys lists every path the transform reads or writes; Apply never changes
// a value outside those paths.
type Transform interface {
	// Name identifies the transform in errors, logs and spans.
	Name() string

	// Keys returns the nested key paths the transform may touch.
	Keys() []keypath.Path

	// Apply transforms cfg.
	Apply(cfg map[string]any) (map[string]any, error)
}

// ApplyFunc is the signature of a transform body.
type ApplyFunc func(cfg map[string]any) (map[string]any, error)

// funcTransform adapts an ApplyFunc to Transform.
type funcTransform struct {
	name string
	keys []keypath.Path
	fn   ApplyFunc
}

// NewFunc wraps fn as a Transform touching keys.
func NewFunc(name string, keys []keypath.Path, fn ApplyFunc) Transform {
	return &funcTransform{name: name, keys: clonePaths(keys), fn: fn}
}

func (f *funcTransform) Name() string         { return f.name }
func (f *funcTransform) Keys() []keypath.Path { return clonePaths(f.keys) }

func (f *funcTransform) Apply(cfg map[string]any) (map[string]any, error) {
	return f.fn(prepare(cfg))
}

// ApplyTo runs t on an arbitrary decoded document, normalizing it into a
// plain mapping first. Documents whose root is not a mapping are type errors.
func ApplyTo(t Transform, doc any) (map[string]any, error) {
	cfg, err := keypath.NormalizeMap(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Name(), err)
	}
	return t.Apply(cfg)
}

// prepare returns cfg, or a new empty map when cfg is nil.
func prepare(cfg map[string]any) map[string]any {
	if cfg == nil {
		return make(map[string]any)
	}
	return cfg
}

func clonePaths(paths []keypath.Path) []keypath.Path {
	out := make([]keypath.Path, len(paths))
	for i, p := range paths {
		out[i] = keypath.New(p...)
	}
	return out
}

// appendUnique appends each path of add not already in paths.
func appendUnique(paths []keypath.Path, add ...keypath.Path) []keypath.Path {
	for _, p := range add {
		if !keypath.Contains(paths, p) {
			paths = append(paths, keypath.New(p...))
		}
	}
	return paths
}

// parentMap returns the mapping addressed by p, which must exist.
func parentMap(cfg map[string]any, p keypath.Path, op string) (map[string]any, error) {
	v, err := keypath.Get(cfg, p)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &cerrors.KeyError{
			Path: p.String(),
			Op:   op,
			Kind: cerrors.KindType,
			Err:  fmt.Errorf("value is %T, expected a mapping", v),
		}
	}
	return m, nil
}
