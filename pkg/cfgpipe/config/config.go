package config

import (
	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// Config is a read-only view of a decoded document with typed, defaulted
// accessors. Keys are dotted key paths ("train.seed"); a key that is absent
// or holds a value of the wrong type yields the caller's default.
//
// Pipeline step parameters are read through a Config:
//
//	params := config.New(step)
//	path := params.Path("output")
//	decimals := params.Int("decimals", 0)
type Config struct {
	data map[string]any
}

// New wraps data. A nil map is replaced by an empty one.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

func (c Config) lookup(key string) (any, bool) {
	return keypath.Lookup(c.data, keypath.Parse(key))
}

// typed returns the value at key asserted to T.
func typed[T any](c Config, key string) (T, bool) {
	var zero T
	v, ok := c.lookup(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// String reads a string.
func (c Config) String(key, defaultVal string) string {
	return orDefault(c, key, defaultVal, asString)
}

// Bool reads a boolean.
func (c Config) Bool(key string, defaultVal bool) bool {
	return orDefault(c, key, defaultVal, asBool)
}

// Int reads an integer. Whole-valued floats are accepted, so JSON numbers
// such as 3.0 read as 3.
func (c Config) Int(key string, defaultVal int) int {
	return orDefault(c, key, defaultVal, toInt)
}

// Float reads a number of any numeric kind as float64.
func (c Config) Float(key string, defaultVal float64) float64 {
	return orDefault(c, key, defaultVal, toFloat)
}

// StringSlice reads a list of strings. A lone string reads as a
// one-element list; a list holding any non-string yields defaultVal.
func (c Config) StringSlice(key string, defaultVal []string) []string {
	return orDefault(c, key, defaultVal, toStrings)
}

// IntSlice reads a list of integers; any non-integer element yields
// defaultVal.
func (c Config) IntSlice(key string, defaultVal []int) []int {
	return orDefault(c, key, defaultVal, toInts)
}

// The E accessors are the checked forms of the accessors above. They report
// whether key is set, and fail with ErrType when it is set to a value of the
// wrong type. A null value counts as unset.

// StringE reads a string.
func (c Config) StringE(key string) (string, bool, error) {
	return checked(c, key, "a string", asString)
}

// BoolE reads a boolean.
func (c Config) BoolE(key string) (bool, bool, error) {
	return checked(c, key, "a boolean", asBool)
}

// IntE reads an integer.
func (c Config) IntE(key string) (int, bool, error) {
	return checked(c, key, "an integer", toInt)
}

// FloatE reads a number.
func (c Config) FloatE(key string) (float64, bool, error) {
	return checked(c, key, "a number", toFloat)
}

// StringSliceE reads a string or a list of strings.
func (c Config) StringSliceE(key string) ([]string, bool, error) {
	return checked(c, key, "a string or a list of strings", toStrings)
}

// IntSliceE reads a list of integers.
func (c Config) IntSliceE(key string) ([]int, bool, error) {
	return checked(c, key, "a list of integers", toInts)
}

func orDefault[T any](c Config, key string, defaultVal T, conv func(any) (T, bool)) T {
	v, ok := c.lookup(key)
	if !ok {
		return defaultVal
	}
	if t, ok := conv(v); ok {
		return t
	}
	return defaultVal
}

func checked[T any](c Config, key, want string, conv func(any) (T, bool)) (T, bool, error) {
	var zero T
	v, ok := c.lookup(key)
	if !ok || v == nil {
		return zero, false, nil
	}
	t, ok := conv(v)
	if !ok {
		return zero, true, cerrors.Errorf(cerrors.KindType, "%s must be %s, got %v (%T)", key, want, v, v)
	}
	return t, true, nil
}

// Path reads a dotted key path stored as a string, or nil.
func (c Config) Path(key string) keypath.Path {
	return keypath.Parse(c.String(key, ""))
}

// Paths reads a list of dotted key paths (or a single one).
func (c Config) Paths(key string) []keypath.Path {
	return keypath.ParseAll(c.StringSlice(key, nil)...)
}

// Map reads a nested mapping. Absent keys and non-mappings yield an empty
// Config.
func (c Config) Map(key string) Config {
	m, _ := typed[map[string]any](c, key)
	return New(m)
}

// Any reads the raw value.
func (c Config) Any(key string, defaultVal any) any {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return defaultVal
}

// Has reports whether key is present, even with a null value.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Keys returns the top-level keys in no particular order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}

// Raw exposes the wrapped map. Callers must not modify it.
func (c Config) Raw() map[string]any {
	return c.data
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case string:
		return []string{list}, true
	case []string:
		return list, true
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func toInts(v any) ([]int, bool) {
	switch list := v.(type) {
	case []int:
		return list, true
	case []any:
		out := make([]int, len(list))
		for i, item := range list {
			n, ok := toInt(item)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	}
	return nil, false
}
