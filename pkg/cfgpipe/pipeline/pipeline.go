package pipeline

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/checkpoint"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/transform"
)

// DefaultName names pipelines whose definition has no name.
const DefaultName = "pipeline"

// Pipeline is a named Compose built from a definition.
type Pipeline struct {
	Name    string
	Compose *cfgpipe.Compose
}

// Run runs the pipeline on cfg. The pipeline name is used in logs, spans
// and snapshots unless opts set another one.
func (p *Pipeline) Run(ctx context.Context, cfg map[string]any, opts ...cfgpipe.RunOption) (map[string]any, error) {
	return p.Compose.Run(ctx, cfg, p.withName(opts)...)
}

// Resume continues a checkpointed run of the pipeline.
func (p *Pipeline) Resume(ctx context.Context, store checkpoint.Store, runID string, opts ...cfgpipe.RunOption) (map[string]any, error) {
	return p.Compose.Resume(ctx, store, runID, p.withName(opts)...)
}

func (p *Pipeline) withName(opts []cfgpipe.RunOption) []cfgpipe.RunOption {
	return append([]cfgpipe.RunOption{cfgpipe.WithPipelineName(p.Name)}, opts...)
}

// Load reads a YAML or JSON definition file and builds its pipeline.
func Load(path string, opts ...Option) (*Pipeline, error) {
	raw, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", path, err)
	}
	return FromMap(raw, opts...)
}

// Parse builds a pipeline from a YAML definition.
func Parse(data []byte, opts ...Option) (*Pipeline, error) {
	raw, err := config.Decode(data, config.FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	return FromMap(raw, opts...)
}

// FromMap builds a pipeline from a decoded definition.
func FromMap(raw map[string]any, opts ...Option) (*Pipeline, error) {
	def := config.New(raw)

	name, _, err := def.StringE("name")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStep, err)
	}
	if name == "" {
		name = DefaultName
	}

	env := &Env{}
	seed, ok, err := def.IntE("seed")
	if err == nil && ok && seed < 0 {
		err = fmt.Errorf("seed must be non-negative, got %d", seed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStep, err)
	}
	if ok {
		env.Source = expr.NewRNG(uint64(seed))
	}
	for _, opt := range opts {
		opt(env)
	}

	steps, ok := def.Any("transforms", nil).([]any)
	if !ok {
		return nil, fmt.Errorf("%w: transforms must be a list of steps", ErrInvalidStep)
	}
	ts, err := env.BuildAll(steps)
	if err != nil {
		return nil, err
	}
	compose, err := cfgpipe.NewCompose(ts...)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Name: name, Compose: compose}, nil
}

// Env carries what builders share while a definition is built.
type Env struct {
	// Source feeds randomized functions. Nil uses the process-wide
	// generator.
	Source expr.Source
}

// BuildAll builds every step. Failures of all steps are collected into a
// *multierror.Error.
func (e *Env) BuildAll(steps []any) ([]transform.Transform, error) {
	var merr *multierror.Error
	ts := make([]transform.Transform, 0, len(steps))
	for i, step := range steps {
		t, err := e.Build(i, step)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		ts = append(ts, t)
	}
	return ts, merr.ErrorOrNil()
}

// Build builds the step at index from its single-key mapping. Errors are
// *StepError values.
func (e *Env) Build(index int, step any) (transform.Transform, error) {
	m, ok := step.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, &StepError{Index: index, Err: fmt.Errorf(
			"%w: want a mapping with a single transform kind, got %v", ErrInvalidStep, step)}
	}

	var kind string
	var params any
	for k, v := range m {
		kind, params = k, v
	}

	build, err := kinds.Lookup(kind)
	if err != nil {
		return nil, &StepError{Index: index, Kind: kind, Err: fmt.Errorf("%w: %w", ErrUnknownKind, err)}
	}

	var p map[string]any
	switch v := params.(type) {
	case nil:
	case map[string]any:
		p = v
	default:
		return nil, &StepError{Index: index, Kind: kind, Err: fmt.Errorf(
			"%w: parameters must be a mapping, got %T", ErrInvalidStep, params)}
	}

	t, err := build(e, config.New(p))
	if err != nil {
		return nil, &StepError{Index: index, Kind: kind, Err: err}
	}
	return t, nil
}
