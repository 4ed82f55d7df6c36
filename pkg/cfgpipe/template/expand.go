package template

import (
	"fmt"
	"regexp"
	"strings"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

var (
	// bracePattern matches ${a.b.c}: dotted identifiers made of word
	// characters and dashes.
	bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_\-]*(?:\.[a-zA-Z0-9_\-]+)*)\}`)

	// dollarPattern matches $name for a single top-level key, followed by a
	// non-word character or end of string.
	dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)(?:\b|$)`)
)

// Expander expands placeholders in strings with values from a configuration.
//
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
	braceStyle    bool
	dollarStyle   bool
}

// NewExpander creates a new Expander with the given options.
//
// Default configuration:
//   - MissingAction: MissingKeep (keep placeholders as-is)
//   - BraceStyle: enabled (${a.b})
//   - DollarStyle: disabled ($name)
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingKeep,
		braceStyle:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces placeholders in s with the values their paths resolve to
// in cfg. Mapping and list values are rejected with a type error since they
// have no single-line rendering.
//
// Example:
//
//	exp := NewExpander()
//	name, err := exp.Expand("run_${train.seed}.yaml", cfg)
func (e *Expander) Expand(s string, cfg map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	result := s
	var missing []string
	var typeErr error

	replace := func(name, match string) string {
		val, ok := keypath.Lookup(cfg, keypath.Parse(name))
		if !ok {
			switch e.missingAction {
			case MissingEmpty:
				return ""
			case MissingError:
				missing = append(missing, name)
				return match
			default: // MissingKeep
				return match
			}
		}
		switch val.(type) {
		case map[string]any, []any:
			if typeErr == nil {
				typeErr = cerrors.Errorf(cerrors.KindType,
					"placeholder %q resolves to %T, expected a scalar", name, val)
			}
			return match
		}
		return fmt.Sprintf("%v", val)
	}

	if e.braceStyle {
		result = bracePattern.ReplaceAllStringFunc(result, func(match string) string {
			return replace(match[2:len(match)-1], match)
		})
	}
	if e.dollarStyle {
		result = dollarPattern.ReplaceAllStringFunc(result, func(match string) string {
			return replace(match[1:], match)
		})
	}

	if typeErr != nil {
		return result, typeErr
	}
	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand expands placeholders in s and panics on error.
func (e *Expander) MustExpand(s string, cfg map[string]any) string {
	result, err := e.Expand(s, cfg)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// ExpandValue expands every string reachable from v, recursing into
// mappings and lists. Other values are returned unchanged.
func (e *Expander) ExpandValue(v any, cfg map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		return e.Expand(val, cfg)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			expanded, err := e.ExpandValue(child, cfg)
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			expanded, err := e.ExpandValue(child, cfg)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	default:
		return v, nil
	}
}

// Placeholders returns the paths referenced by ${...} placeholders in s,
// in order of appearance.
func Placeholders(s string) []keypath.Path {
	matches := bracePattern.FindAllStringSubmatch(s, -1)
	paths := make([]keypath.Path, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, keypath.Parse(m[1]))
	}
	return paths
}

// UndefinedVariableError is returned when MissingError is set and
// one or more placeholders do not resolve.
type UndefinedVariableError struct {
	// Names is the list of unresolved placeholder paths.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

// Unwrap classifies the error as a lookup failure.
func (e *UndefinedVariableError) Unwrap() error {
	return cerrors.ErrLookup
}

var defaultExpander = NewExpander()

// Expand expands placeholders in s using the default expander, keeping
// unresolved placeholders as-is.
func Expand(s string, cfg map[string]any) string {
	result, _ := defaultExpander.Expand(s, cfg)
	return result
}
