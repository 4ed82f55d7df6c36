package keypath

import (
	"fmt"
	"reflect"
	"sort"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

// setConfig holds options for Set.
type setConfig struct {
	createMissing bool
}

// SetOption configures Set.
type SetOption func(*setConfig)

// WithCreateMissing controls whether Set creates missing intermediate
// mappings. Default: true.
func WithCreateMissing(enabled bool) SetOption {
	return func(c *setConfig) {
		c.createMissing = enabled
	}
}

// Get resolves p against cfg.
//
// The root path returns cfg itself. A missing segment fails with a lookup
// error; an intermediate value that is not a mapping fails with a type error.
func Get(cfg any, p Path) (any, error) {
	cur := cfg
	for i, seg := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, notMapping("get", p, i, cur)
		}
		next, exists := m[seg]
		if !exists {
			return nil, &cerrors.KeyError{
				Path: p.String(),
				Op:   "get",
				Kind: cerrors.KindLookup,
				Err:  fmt.Errorf("missing segment %q", seg),
			}
		}
		cur = next
	}
	return cur, nil
}

// Lookup is Get without the error detail.
func Lookup(cfg any, p Path) (any, bool) {
	v, err := Get(cfg, p)
	return v, err == nil
}

// Has reports whether p resolves in cfg.
func Has(cfg any, p Path) bool {
	_, ok := Lookup(cfg, p)
	return ok
}

// Set assigns value at p, mutating cfg in place.
//
// Missing intermediate mappings are created unless WithCreateMissing(false)
// is given, in which case a missing parent is a lookup error. Descending into
// a non-mapping value is a type error. The root path cannot be assigned.
func Set(cfg map[string]any, p Path, value any, opts ...SetOption) error {
	c := setConfig{createMissing: true}
	for _, opt := range opts {
		opt(&c)
	}

	if p.IsRoot() {
		return &cerrors.KeyError{
			Path: p.String(),
			Op:   "set",
			Kind: cerrors.KindValue,
			Err:  fmt.Errorf("cannot assign the configuration root"),
		}
	}
	if cfg == nil {
		return &cerrors.KeyError{
			Path: p.String(),
			Op:   "set",
			Kind: cerrors.KindType,
			Err:  fmt.Errorf("configuration is nil"),
		}
	}

	parent, err := walkParents(cfg, p, "set", c.createMissing)
	if err != nil {
		return err
	}
	parent[p.Last()] = value
	return nil
}

// SetExisting is Set with missing-parent creation disabled.
func SetExisting(cfg map[string]any, p Path, value any) error {
	return Set(cfg, p, value, WithCreateMissing(false))
}

// Remove deletes the key at p and returns the removed value.
// Now-empty parent mappings are kept.
func Remove(cfg map[string]any, p Path) (any, error) {
	if p.IsRoot() {
		return nil, &cerrors.KeyError{
			Path: p.String(),
			Op:   "remove",
			Kind: cerrors.KindValue,
			Err:  fmt.Errorf("cannot remove the configuration root"),
		}
	}

	parent, err := walkParents(cfg, p, "remove", false)
	if err != nil {
		return nil, err
	}
	v, ok := parent[p.Last()]
	if !ok {
		return nil, &cerrors.KeyError{
			Path: p.String(),
			Op:   "remove",
			Kind: cerrors.KindLookup,
			Err:  fmt.Errorf("missing segment %q", p.Last()),
		}
	}
	delete(parent, p.Last())
	return v, nil
}

// walkParents returns the mapping holding the last segment of p.
func walkParents(cfg map[string]any, p Path, op string, create bool) (map[string]any, error) {
	cur := cfg
	for i, seg := range p[:len(p)-1] {
		next, exists := cur[seg]
		if !exists {
			if !create {
				return nil, &cerrors.KeyError{
					Path: p.String(),
					Op:   op,
					Kind: cerrors.KindLookup,
					Err:  fmt.Errorf("missing segment %q", seg),
				}
			}
			child := make(map[string]any)
			cur[seg] = child
			cur = child
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return nil, notMapping(op, p, i+1, next)
		}
		cur = m
	}
	return cur, nil
}

func notMapping(op string, p Path, depth int, v any) error {
	return &cerrors.KeyError{
		Path: p.String(),
		Op:   op,
		Kind: cerrors.KindType,
		Err:  fmt.Errorf("value at %q is %T, expected a mapping", Path(p[:depth]).String(), v),
	}
}

// Normalize converts every mapping in v to map[string]any and every slice
// to []any, recursively. Non-string keys are formatted with fmt.
// Scalars are returned unchanged.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = Normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = Normalize(child)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

// NormalizeMap is Normalize for a root mapping. A nil or non-mapping input
// yields a type error.
func NormalizeMap(v any) (map[string]any, error) {
	if v == nil {
		return make(map[string]any), nil
	}
	m, ok := Normalize(v).(map[string]any)
	if !ok {
		return nil, cerrors.Errorf(cerrors.KindType, "configuration is %T, expected a mapping", v)
	}
	return m, nil
}

// Clone returns a deep copy of cfg. Mappings and []any are copied; other
// values are shared.
func Clone(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies mappings and []any inside v.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Clone(val)
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = CloneValue(child)
		}
		return out
	default:
		return v
	}
}

// Flatten returns every leaf of cfg keyed by its dotted path.
// Empty mappings are leaves.
func Flatten(cfg map[string]any) map[string]any {
	out := make(map[string]any)
	walkLeaves(nil, cfg, func(p Path, v any) {
		out[p.String()] = v
	})
	return out
}

// Leaves returns the path of every leaf in cfg, sorted by dotted form.
func Leaves(cfg map[string]any) []Path {
	var paths []Path
	walkLeaves(nil, cfg, func(p Path, _ any) {
		paths = append(paths, p)
	})
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].String() < paths[j].String()
	})
	return paths
}

func walkLeaves(prefix Path, m map[string]any, fn func(Path, any)) {
	for k, v := range m {
		p := prefix.Join(k)
		if child, ok := v.(map[string]any); ok && len(child) > 0 {
			walkLeaves(p, child, fn)
			continue
		}
		fn(p, v)
	}
}
