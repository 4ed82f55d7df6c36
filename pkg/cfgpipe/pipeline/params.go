package pipeline

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// stepParams reads the typed parameters of one step. Every parameter that is
// missing or set to the wrong type is recorded, so a step reports all of
// its bad parameters at once through Err.
type stepParams struct {
	config.Config
	prefix string
	errs   *multierror.Error
}

func newStepParams(c config.Config) *stepParams {
	return &stepParams{Config: c}
}

// sub reads an entry of a list parameter such as groups[0].
func (p *stepParams) sub(c config.Config, key string, i int) *stepParams {
	return &stepParams{Config: c, prefix: fmt.Sprintf("%s%s[%d].", p.prefix, key, i)}
}

// Err returns the collected parameter errors, or nil.
func (p *stepParams) Err() error {
	return p.errs.ErrorOrNil()
}

func (p *stepParams) fail(err error) {
	if err != nil {
		p.errs = multierror.Append(p.errs, err)
	}
}

func (p *stepParams) invalid(key, format string, args ...any) {
	p.fail(fmt.Errorf("%w: parameter %q "+format, append([]any{ErrInvalidStep, p.prefix + key}, args...)...))
}

func (p *stepParams) missing(key string) {
	p.fail(missingParam(p.prefix + key))
}

// isSet reports whether key is present with a non-null value.
func (p *stepParams) isSet(key string) bool {
	return p.Any(key, nil) != nil
}

func read[T any](p *stepParams, key string, defaultVal T, get func(string) (T, bool, error)) (T, bool) {
	v, ok, err := get(key)
	if err != nil {
		p.fail(fmt.Errorf("%w: parameter %q: %w", ErrInvalidStep, p.prefix+key, err))
		return defaultVal, false
	}
	if !ok {
		return defaultVal, false
	}
	return v, true
}

func (p *stepParams) optString(key, defaultVal string) string {
	v, _ := read(p, key, defaultVal, p.StringE)
	return v
}

func (p *stepParams) optBool(key string, defaultVal bool) bool {
	v, _ := read(p, key, defaultVal, p.BoolE)
	return v
}

func (p *stepParams) optInt(key string, defaultVal int) int {
	v, _ := read(p, key, defaultVal, p.IntE)
	return v
}

func (p *stepParams) optFloat(key string, defaultVal float64) float64 {
	v, _ := read(p, key, defaultVal, p.FloatE)
	return v
}

func (p *stepParams) optStrings(key string) []string {
	v, _ := read(p, key, []string(nil), p.StringSliceE)
	return v
}

func (p *stepParams) optInts(key string) []int {
	v, _ := read(p, key, []int(nil), p.IntSliceE)
	return v
}

// number checks that key holds a number and returns the raw value, so that
// integers stay integers.
func (p *stepParams) number(key string) any {
	if _, ok := read(p, key, 0.0, p.FloatE); !ok {
		return nil
	}
	return p.Any(key, nil)
}

func (p *stepParams) requireString(key string) string {
	s, ok := read(p, key, "", p.StringE)
	if !ok {
		if !p.isSet(key) {
			p.missing(key)
		}
		return ""
	}
	if s == "" {
		p.invalid(key, "must not be empty")
	}
	return s
}

func (p *stepParams) requireNumber(key string) any {
	if !p.isSet(key) {
		p.missing(key)
		return nil
	}
	return p.number(key)
}

func (p *stepParams) requireFloat(key string) float64 {
	if !p.isSet(key) {
		p.missing(key)
		return 0
	}
	return p.optFloat(key, 0)
}

func (p *stepParams) requireInt(key string) int {
	if !p.isSet(key) {
		p.missing(key)
		return 0
	}
	return p.optInt(key, 0)
}

func (p *stepParams) path(key string) keypath.Path {
	return keypath.Parse(p.optString(key, ""))
}

func (p *stepParams) requirePath(key string) keypath.Path {
	s := p.requireString(key)
	if s == "" {
		return nil
	}
	path := keypath.Parse(s)
	if len(path) == 0 {
		p.invalid(key, "must be a non-empty dotted key")
	}
	return path
}

func (p *stepParams) requireStrings(key string) []string {
	if !p.isSet(key) {
		p.missing(key)
		return nil
	}
	ss, ok := read(p, key, []string(nil), p.StringSliceE)
	if ok && len(ss) == 0 {
		p.invalid(key, "must be a string or a non-empty list of strings")
	}
	return ss
}

func (p *stepParams) requirePaths(key string) []keypath.Path {
	return keypath.ParseAll(p.requireStrings(key)...)
}

// maps reads a list of mappings.
func (p *stepParams) maps(key string) []config.Config {
	list, ok := p.Any(key, nil).([]any)
	if !ok {
		p.invalid(key, "must be a list")
		return nil
	}
	out := make([]config.Config, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			p.fail(fmt.Errorf("%w: %s%s[%d] must be a mapping", ErrInvalidStep, p.prefix, key, i))
			continue
		}
		out = append(out, config.New(m))
	}
	return out
}
