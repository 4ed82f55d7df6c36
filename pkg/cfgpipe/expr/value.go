package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// pathOperand matches operands that read as dotted key paths.
var pathOperand = regexp.MustCompile(`^[A-Za-z_][\w.-]*$`)

// Resolve resolves a condition operand against cfg or returns it as a literal.
// It handles quoted strings, booleans, null, numbers, and dotted key paths.
// A key path that does not resolve is nil.
func Resolve(s string, cfg map[string]any) any {
	v, _ := resolve(s, cfg)
	return v
}

// resolve is Resolve that also reports whether s was a key path absent
// from cfg.
func resolve(s string, cfg map[string]any) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if (strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")) ||
		(strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")) {
		if len(s) < 2 {
			return "", false
		}
		return s[1 : len(s)-1], false
	}

	switch strings.ToLower(s) {
	case "true":
		return true, false
	case "false":
		return false, false
	case "null", "nil":
		return nil, false
	}

	var num json.Number
	if err := json.Unmarshal([]byte(s), &num); err == nil {
		if i, err := num.Int64(); err == nil {
			return i, false
		}
		if f, err := num.Float64(); err == nil {
			return f, false
		}
	}

	if cfg != nil {
		if val, ok := keypath.Lookup(cfg, keypath.Parse(s)); ok {
			return val, false
		}
	}
	if pathOperand.MatchString(s) {
		return nil, true
	}
	return s, false
}

// IsTruthy returns whether a value is truthy.
// nil is false, bools return their value, empty strings are false,
// zero numbers are false, everything else is true.
func IsTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case int32:
		return val != 0
	case float64:
		return val != 0
	case float32:
		return val != 0
	default:
		return true
	}
}

// ToFloat64 converts a value to float64 for comparisons.
// Returns 0 for values that cannot be converted.
func ToFloat64(v any) float64 {
	if f, err := number(v); err == nil {
		return f
	}
	if s, ok := v.(string); ok {
		var f float64
		_, _ = fmt.Sscanf(s, "%f", &f)
		return f
	}
	return 0
}

// number converts a numeric value to float64. Strings and other values are
// type errors.
func number(v any) (float64, error) {
	if i, ok := asInt64(v); ok {
		return float64(i), nil
	}
	switch val := v.(type) {
	case uint:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, cerrors.Errorf(cerrors.KindType, "%q is not a number", val.String())
		}
		return f, nil
	default:
		return 0, cerrors.Errorf(cerrors.KindType, "expected a number but got %v (%T)", v, v)
	}
}

// toNumber is number naming the argument on error.
func toNumber(name string, v any) (float64, error) {
	f, err := number(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// asInt64 returns v exactly when it holds an integer kind that fits int64.
func asInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case json.Number:
		i, err := val.Int64()
		return i, err == nil
	}
	return 0, false
}
