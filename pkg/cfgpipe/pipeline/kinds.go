package pipeline

import (
	"fmt"
	"os"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/registry"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/template"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/transform"
)

// Builder creates a transform from the parameters of a step.
type Builder func(env *Env, params config.Config) (transform.Transform, error)

var kinds = registry.New[string, Builder]("transform kind")

func init() {
	kinds.MustRegister("insert", buildInsert)
	kinds.MustRegister("remove", buildRemove)
	kinds.MustRegister("nest", buildNest)
	kinds.MustRegister("flatten", buildFlatten)
	kinds.MustRegister("formula", buildFormula)
	kinds.MustRegister("save", buildSave)
	kinds.MustRegister("unpack", buildUnpack)
	kinds.MustRegister("pop", buildPop)
	kinds.MustRegister("template", buildTemplate)
	kinds.MustRegister("when", buildWhen)
	kinds.MustRegister("compose", buildCompose)
}

// RegisterKind adds a transform kind. Registering an existing kind fails
// with registry.ErrDuplicate.
func RegisterKind(name string, b Builder) error {
	return kinds.Register(name, b)
}

// Kinds returns the registered transform kinds in order.
func Kinds() []string {
	return kinds.Keys()
}

// insert: path, value, parent, replace
func buildInsert(_ *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	path := p.requirePath("path")
	if !p.Has("value") {
		p.missing("value")
	}
	var opts []transform.InsertOption
	if p.isSet("parent") {
		opts = append(opts, transform.WithParent(p.path("parent")))
	}
	if p.optBool("replace", false) {
		opts = append(opts, transform.WithReplace())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewInsert(path, p.Any("value", nil), opts...)
}

// remove: paths, ignore_missing
func buildRemove(_ *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	paths := p.requirePaths("paths")
	var opts []transform.RemoveOption
	if p.optBool("ignore_missing", false) {
		opts = append(opts, transform.IgnoreMissing())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewRemove(paths, opts...)
}

// nest: root and children, or groups of {root, children}
func buildNest(_ *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	if !p.Has("groups") {
		root := p.requirePath("root")
		children := p.requireStrings("children")
		if err := p.Err(); err != nil {
			return nil, err
		}
		return transform.NewNest(root, children...)
	}

	var groups []transform.NestGroup
	for i, entry := range p.maps("groups") {
		g := p.sub(entry, "groups", i)
		groups = append(groups, transform.NestGroup{
			Root:     g.requirePath("root"),
			Children: g.requireStrings("children"),
		})
		p.fail(g.Err())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewNestGroups(groups...)
}

// flatten: root, children (optional)
func buildFlatten(_ *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	root := p.requirePath("root")
	children := p.optStrings("children")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewFlatten(root, children...)
}

// formula: function, params, output, and inputs or slots of {path, slot}
func buildFormula(env *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	var fn expr.Func
	if name := p.requireString("function"); name != "" {
		if p.isSet("params") {
			if _, ok := p.Any("params", nil).(map[string]any); !ok {
				p.invalid("params", "must be a mapping")
			}
		}
		f, err := env.Func(name, p.Map("params"))
		p.fail(err)
		fn = f
	}
	output := p.requirePath("output")

	if !p.Has("slots") {
		inputs := keypath.ParseAll(p.optStrings("inputs")...)
		if err := p.Err(); err != nil {
			return nil, err
		}
		return transform.NewFormula(fn, output, inputs...)
	}

	var bindings []expr.Binding
	for i, entry := range p.maps("slots") {
		s := p.sub(entry, "slots", i)
		bindings = append(bindings, expr.Binding{Path: s.requirePath("path"), Slot: s.requireInt("slot")})
		p.fail(s.Err())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewFormulaSlots(fn, output, bindings...)
}

// save: dir, filename, create_dir, indent, format, mode
func buildSave(_ *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	filename := p.requireString("filename")
	dir := p.optString("dir", ".")

	var opts []transform.SaveOption
	if p.optBool("create_dir", false) {
		opts = append(opts, transform.WithCreateDir())
	}
	if p.isSet("indent") {
		opts = append(opts, transform.WithIndent(p.optInt("indent", config.DefaultIndent)))
	}
	if p.isSet("format") {
		opts = append(opts, transform.WithFormat(config.Format(p.optString("format", ""))))
	}
	if p.isSet("mode") {
		opts = append(opts, transform.WithFileMode(os.FileMode(p.optInt("mode", 0o644))))
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewSave(dir, filename, opts...)
}

// unpack: source, targets, remove_source
func buildUnpack(_ *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	source := p.requirePath("source")
	targets := p.requireStrings("targets")
	var opts []transform.UnpackOption
	if p.optBool("remove_source", false) {
		opts = append(opts, transform.RemoveSource())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewUnpack(source, targets, opts...)
}

// pop: source, output, index (default 0)
func buildPop(_ *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	source := p.requirePath("source")
	output := p.requirePath("output")
	index := p.optInt("index", 0)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewPop(source, output, index)
}

var missingActions = map[string]template.MissingAction{
	"keep":  template.MissingKeep,
	"empty": template.MissingEmpty,
	"error": template.MissingError,
}

// template: paths, missing (keep, empty or error)
func buildTemplate(_ *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	paths := p.requirePaths("paths")
	var opts []template.Option
	if p.isSet("missing") {
		missing := p.optString("missing", "")
		if action, ok := missingActions[missing]; ok {
			opts = append(opts, template.WithMissingAction(action))
		} else if _, isString := p.Any("missing", nil).(string); isString {
			p.invalid("missing", "must be keep, empty or error, got %q", missing)
		}
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewTemplate(paths, opts...)
}

// when: condition, transform (a single step), strict
func buildWhen(env *Env, c config.Config) (transform.Transform, error) {
	p := newStepParams(c)
	condition := p.requireString("condition")
	var opts []transform.WhenOption
	if p.optBool("strict", false) {
		opts = append(opts, transform.WithEvaluator(expr.NewEvaluator(expr.WithStrictPaths())))
	}
	var inner transform.Transform
	if !p.isSet("transform") {
		p.missing("transform")
	} else {
		t, err := env.Build(0, p.Any("transform", nil))
		p.fail(err)
		inner = t
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return transform.NewWhen(condition, inner, opts...)
}

// compose: transforms (a nested list of steps)
func buildCompose(env *Env, c config.Config) (transform.Transform, error) {
	steps, ok := c.Any("transforms", nil).([]any)
	if !ok {
		return nil, fmt.Errorf("%w: transforms must be a list of steps", ErrInvalidStep)
	}
	ts, err := env.BuildAll(steps)
	if err != nil {
		return nil, err
	}
	return cfgpipe.NewCompose(ts...)
}
