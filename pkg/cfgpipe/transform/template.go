package transform

import (
	"fmt"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/template"
)

// Template expands ${a.b} placeholders in the string values at its keys.
// Strings nested inside mappings and lists at those keys are expanded too.
type Template struct {
	paths    []keypath.Path
	expander *template.Expander
}

// NewTemplate creates a Template over paths. Options configure the
// expander; unresolved placeholders are kept by default.
func NewTemplate(paths []keypath.Path, opts ...template.Option) (*Template, error) {
	if len(paths) == 0 {
		return nil, cerrors.Errorf(cerrors.KindValue, "template needs at least one key")
	}
	t := &Template{expander: template.NewExpander(opts...)}
	for _, p := range paths {
		t.paths = appendUnique(t.paths, p)
	}
	return t, nil
}

// Name implements Transform.
func (t *Template) Name() string { return "template" }

// Keys implements Transform.
func (t *Template) Keys() []keypath.Path { return clonePaths(t.paths) }

// Apply implements Transform. Each key is expanded against the
// configuration as left by the previous key.
func (t *Template) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)
	for _, p := range t.paths {
		v, err := keypath.Get(cfg, p)
		if err != nil {
			return nil, err
		}
		expanded, err := t.expander.ExpandValue(v, cfg)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", p.String(), err)
		}
		if p.IsRoot() {
			cfg = expanded.(map[string]any)
			continue
		}
		if err := keypath.SetExisting(cfg, p, expanded); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
