package transform

import (
	"fmt"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// Unpack spreads a list value into sibling keys, one per element.
//
// With source "a.pair" and targets x, y, {"a": {"pair": [1, 2]}} becomes
// {"a": {"pair": [1, 2], "x": 1, "y": 2}}. The list length must equal the
// number of targets (ErrValue) and no target may exist already (ErrValue).
type Unpack struct {
	source       keypath.Path
	targets      []string
	removeSource bool
}

// UnpackOption configures an Unpack.
type UnpackOption func(*Unpack)

// RemoveSource deletes the source key after unpacking.
func RemoveSource() UnpackOption {
	return func(u *Unpack) {
		u.removeSource = true
	}
}

// NewUnpack creates an Unpack of source into targets.
func NewUnpack(source keypath.Path, targets []string, opts ...UnpackOption) (*Unpack, error) {
	if source.IsRoot() {
		return nil, cerrors.Errorf(cerrors.KindValue, "unpack needs a source key")
	}
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if seen[t] {
			return nil, cerrors.Errorf(cerrors.KindValue, "unpack target %q listed twice", t)
		}
		seen[t] = true
	}
	u := &Unpack{source: keypath.New(source...), targets: append([]string(nil), targets...)}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Name implements Transform.
func (u *Unpack) Name() string { return "unpack(" + u.source.String() + ")" }

// Keys implements Transform: the source followed by every target.
func (u *Unpack) Keys() []keypath.Path {
	keys := []keypath.Path{keypath.New(u.source...)}
	parent := u.source.Parent()
	for _, t := range u.targets {
		keys = appendUnique(keys, parent.Join(t))
	}
	return keys
}

// Apply implements Transform.
func (u *Unpack) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)

	v, err := keypath.Get(cfg, u.source)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &cerrors.KeyError{
			Path: u.source.String(),
			Op:   "unpack",
			Kind: cerrors.KindType,
			Err:  fmt.Errorf("value is %T, expected a list", v),
		}
	}
	if len(list) != len(u.targets) {
		return nil, &cerrors.KeyError{
			Path: u.source.String(),
			Op:   "unpack",
			Kind: cerrors.KindValue,
			Err:  fmt.Errorf("list has %d elements for %d targets", len(list), len(u.targets)),
		}
	}

	parentPath := u.source.Parent()
	parent, err := parentMap(cfg, parentPath, "unpack")
	if err != nil {
		return nil, err
	}
	for _, t := range u.targets {
		if _, exists := parent[t]; exists && !(u.removeSource && t == u.source.Last()) {
			return nil, &cerrors.KeyError{
				Path: parentPath.Join(t).String(),
				Op:   "unpack",
				Kind: cerrors.KindValue,
				Err:  fmt.Errorf("target already exists"),
			}
		}
	}

	if u.removeSource {
		delete(parent, u.source.Last())
	}
	for i, t := range u.targets {
		parent[t] = list[i]
	}
	return cfg, nil
}
