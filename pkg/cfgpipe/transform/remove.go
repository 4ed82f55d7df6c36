package transform

import (
	"errors"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// Remove deletes nested keys. Missing keys fail with ErrLookup unless the
// instance was built with IgnoreMissing. Every key is checked before any is
// deleted, so a failing Remove leaves the configuration as it was.
type Remove struct {
	paths         []keypath.Path
	ignoreMissing bool
}

// RemoveOption configures a Remove.
type RemoveOption func(*Remove)

// IgnoreMissing makes removing an absent key a no-op.
func IgnoreMissing() RemoveOption {
	return func(r *Remove) {
		r.ignoreMissing = true
	}
}

// NewRemove creates a Remove of paths.
func NewRemove(paths []keypath.Path, opts ...RemoveOption) (*Remove, error) {
	if len(paths) == 0 {
		return nil, cerrors.Errorf(cerrors.KindValue, "remove needs at least one key")
	}
	r := &Remove{}
	for _, p := range paths {
		if p.IsRoot() {
			return nil, cerrors.Errorf(cerrors.KindValue, "remove cannot delete the configuration root")
		}
		r.paths = appendUnique(r.paths, p)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Name implements Transform.
func (r *Remove) Name() string { return "remove" }

// Keys implements Transform.
func (r *Remove) Keys() []keypath.Path { return clonePaths(r.paths) }

// IgnoresMissing reports whether absent keys are skipped.
func (r *Remove) IgnoresMissing() bool { return r.ignoreMissing }

// Apply implements Transform.
func (r *Remove) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)

	present := make([]keypath.Path, 0, len(r.paths))
	for _, p := range r.paths {
		if _, err := keypath.Get(cfg, p); err != nil {
			if r.ignoreMissing && errors.Is(err, cerrors.ErrLookup) {
				continue
			}
			return nil, err
		}
		present = append(present, p)
	}

	var removed []keypath.Path
	for _, p := range present {
		if underAny(p, removed) {
			continue
		}
		if _, err := keypath.Remove(cfg, p); err != nil {
			return nil, err
		}
		removed = append(removed, p)
	}
	return cfg, nil
}

func underAny(p keypath.Path, roots []keypath.Path) bool {
	for _, root := range roots {
		if p.HasPrefix(root) {
			return true
		}
	}
	return false
}
