package transform

import (
	"fmt"
	"sort"
	"strings"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// NestGroup moves the sibling keys Children of Root under Root.
type NestGroup struct {
	Root     keypath.Path
	Children []string
}

// Nest moves keys one level down under a new mapping.
//
// For each group, the children live in the mapping that would hold Root.
// The root must not exist yet (ErrValue) and every child must (ErrLookup).
// Groups are applied in order; a group is checked before it moves anything.
type Nest struct {
	groups []NestGroup
}

// NewNest creates a Nest of children under root.
func NewNest(root keypath.Path, children ...string) (*Nest, error) {
	return NewNestGroups(NestGroup{Root: root, Children: children})
}

// NewNestGroups creates a Nest applying several groups in order.
func NewNestGroups(groups ...NestGroup) (*Nest, error) {
	if len(groups) == 0 {
		return nil, cerrors.Errorf(cerrors.KindValue, "nest needs at least one group")
	}
	n := &Nest{groups: make([]NestGroup, 0, len(groups))}
	for _, g := range groups {
		if g.Root.IsRoot() {
			return nil, cerrors.Errorf(cerrors.KindValue, "nest root must not be the configuration root")
		}
		seen := make(map[string]bool, len(g.Children))
		for _, c := range g.Children {
			if c == g.Root.Last() {
				return nil, cerrors.Errorf(cerrors.KindValue, "nest root %q cannot be one of its children", g.Root.String())
			}
			if seen[c] {
				return nil, cerrors.Errorf(cerrors.KindValue, "nest child %q listed twice", c)
			}
			seen[c] = true
		}
		n.groups = append(n.groups, NestGroup{
			Root:     keypath.New(g.Root...),
			Children: append([]string(nil), g.Children...),
		})
	}
	return n, nil
}

// Name implements Transform.
func (n *Nest) Name() string {
	roots := make([]string, len(n.groups))
	for i, g := range n.groups {
		roots[i] = g.Root.String()
	}
	return "nest(" + strings.Join(roots, ",") + ")"
}

// Keys implements Transform. It lists each moved key at its old and new
// location plus each root.
func (n *Nest) Keys() []keypath.Path {
	var keys []keypath.Path
	for _, g := range n.groups {
		parent := g.Root.Parent()
		for _, c := range g.Children {
			keys = appendUnique(keys, parent.Join(c))
		}
		keys = appendUnique(keys, g.Root)
		for _, c := range g.Children {
			keys = appendUnique(keys, g.Root.Join(c))
		}
	}
	return keys
}

// Groups returns the nest groups.
func (n *Nest) Groups() []NestGroup {
	out := make([]NestGroup, len(n.groups))
	for i, g := range n.groups {
		out[i] = NestGroup{Root: keypath.New(g.Root...), Children: append([]string(nil), g.Children...)}
	}
	return out
}

// Apply implements Transform.
func (n *Nest) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)
	for _, g := range n.groups {
		if err := nestGroup(cfg, g); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func nestGroup(cfg map[string]any, g NestGroup) error {
	parentPath := g.Root.Parent()
	parent, err := parentMap(cfg, parentPath, "nest")
	if err != nil {
		return err
	}

	rootKey := g.Root.Last()
	if _, exists := parent[rootKey]; exists {
		return &cerrors.KeyError{
			Path: g.Root.String(),
			Op:   "nest",
			Kind: cerrors.KindValue,
			Err:  fmt.Errorf("root already exists"),
		}
	}
	for _, c := range g.Children {
		if _, ok := parent[c]; !ok {
			return &cerrors.KeyError{
				Path: parentPath.Join(c).String(),
				Op:   "nest",
				Kind: cerrors.KindLookup,
				Err:  fmt.Errorf("child %q missing", c),
			}
		}
	}

	leaves := make(map[string]any, len(g.Children))
	for _, c := range g.Children {
		leaves[c] = parent[c]
		delete(parent, c)
	}
	parent[rootKey] = leaves
	return nil
}

// Flatten is the inverse of Nest: the children of a root mapping move up
// into the mapping holding the root, and the root is removed.
type Flatten struct {
	root     keypath.Path
	children []string
}

// NewFlatten creates a Flatten of root. With children given, only those
// keys move up and the root is removed once it is empty; otherwise every
// key moves up.
func NewFlatten(root keypath.Path, children ...string) (*Flatten, error) {
	if root.IsRoot() {
		return nil, cerrors.Errorf(cerrors.KindValue, "flatten root must not be the configuration root")
	}
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		if seen[c] {
			return nil, cerrors.Errorf(cerrors.KindValue, "flatten child %q listed twice", c)
		}
		seen[c] = true
	}
	return &Flatten{root: keypath.New(root...), children: append([]string(nil), children...)}, nil
}

// Name implements Transform.
func (f *Flatten) Name() string { return "flatten(" + f.root.String() + ")" }

// Keys implements Transform. Without explicit children only the root is
// listed since the lifted keys are not known until application.
func (f *Flatten) Keys() []keypath.Path {
	keys := []keypath.Path{keypath.New(f.root...)}
	parent := f.root.Parent()
	for _, c := range f.children {
		keys = appendUnique(keys, f.root.Join(c), parent.Join(c))
	}
	return keys
}

// Apply implements Transform.
func (f *Flatten) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)

	parentPath := f.root.Parent()
	parent, err := parentMap(cfg, parentPath, "flatten")
	if err != nil {
		return nil, err
	}
	inner, err := parentMap(cfg, f.root, "flatten")
	if err != nil {
		return nil, err
	}

	children := f.children
	if len(children) == 0 {
		children = make([]string, 0, len(inner))
		for k := range inner {
			children = append(children, k)
		}
		sort.Strings(children)
	}

	rootKey := f.root.Last()
	emptied := len(children) == len(inner)
	for _, c := range children {
		if _, ok := inner[c]; !ok {
			return nil, &cerrors.KeyError{
				Path: f.root.Join(c).String(),
				Op:   "flatten",
				Kind: cerrors.KindLookup,
				Err:  fmt.Errorf("child %q missing", c),
			}
		}
		if _, exists := parent[c]; exists && (c != rootKey || !emptied) {
			return nil, &cerrors.KeyError{
				Path: parentPath.Join(c).String(),
				Op:   "flatten",
				Kind: cerrors.KindValue,
				Err:  fmt.Errorf("key already exists next to %q", rootKey),
			}
		}
	}

	if emptied {
		delete(parent, rootKey)
	}
	for _, c := range children {
		parent[c] = inner[c]
		delete(inner, c)
	}
	return cfg, nil
}
