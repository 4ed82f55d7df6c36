package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/checkpoint"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/pipeline"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/registry"
)

const insertThenDouble = `
name: double
transforms:
  - insert:
      path: a.b
      value: 5
  - formula:
      function: product_by_num
      params: {n: 2}
      output: a.c
      inputs: a.b
`

func TestParse_InsertThenFormula(t *testing.T) {
	p, err := pipeline.Parse([]byte(insertThenDouble))
	require.NoError(t, err)
	assert.Equal(t, "double", p.Name)
	assert.Equal(t, 2, p.Compose.Len())

	got, err := p.Compose.Apply(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 5, "c": 10}}, got)
}

func TestParse_DefaultName(t *testing.T) {
	p, err := pipeline.Parse([]byte("transforms: []"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultName, p.Name)
	assert.Equal(t, 0, p.Compose.Len())
}

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		steps string
		in    map[string]any
		want  map[string]any
	}{
		{
			name: "insert under parent with replace",
			steps: `
  - insert: {path: b, value: {x: 1}, parent: a, replace: true}`,
			in:   map[string]any{"a": map[string]any{"b": 3}},
			want: map[string]any{"a": map[string]any{"b": map[string]any{"x": 1}}},
		},
		{
			name: "remove ignoring missing",
			steps: `
  - remove: {paths: [a, zz], ignore_missing: true}`,
			in:   map[string]any{"a": 1, "b": 2},
			want: map[string]any{"b": 2},
		},
		{
			name: "nest then flatten",
			steps: `
  - nest: {root: g, children: [x, y]}
  - flatten: {root: g}`,
			in:   map[string]any{"x": 1, "y": 2},
			want: map[string]any{"x": 1, "y": 2},
		},
		{
			name: "nest groups",
			steps: `
  - nest:
      groups:
        - {root: g1, children: [x]}
        - {root: g2, children: [y]}`,
			in:   map[string]any{"x": 1, "y": 2},
			want: map[string]any{"g1": map[string]any{"x": 1}, "g2": map[string]any{"y": 2}},
		},
		{
			name: "formula slots",
			steps: `
  - formula:
      function: division
      output: q
      slots:
        - {path: den, slot: 1}
        - {path: num, slot: 0}`,
			in:   map[string]any{"num": 1, "den": 4},
			want: map[string]any{"num": 1, "den": 4, "q": 0.25},
		},
		{
			name: "unpack",
			steps: `
  - unpack: {source: size, targets: [w, h], remove_source: true}`,
			in:   map[string]any{"size": []any{3, 4}},
			want: map[string]any{"w": 3, "h": 4},
		},
		{
			name: "template",
			steps: `
  - template: {paths: [out], missing: error}`,
			in:   map[string]any{"out": "run_${seed}", "seed": 7},
			want: map[string]any{"out": "run_7", "seed": 7},
		},
		{
			name: "when true",
			steps: `
  - when:
      condition: "mode == 'train'"
      transform:
        insert: {path: aug, value: true}`,
			in:   map[string]any{"mode": "train"},
			want: map[string]any{"mode": "train", "aug": true},
		},
		{
			name: "when false",
			steps: `
  - when:
      condition: "mode == 'train'"
      transform:
        insert: {path: aug, value: true}`,
			in:   map[string]any{"mode": "eval"},
			want: map[string]any{"mode": "eval"},
		},
		{
			name: "repeated pop walks the list",
			steps: `
  - pop: {source: angles, output: start}
  - pop: {source: angles, output: stop}`,
			in:   map[string]any{"angles": []any{30, 60, 90}},
			want: map[string]any{"angles": []any{90}, "start": 30, "stop": 60},
		},
		{
			name: "pop from the end",
			steps: `
  - pop: {source: angles, output: last, index: -1}`,
			in:   map[string]any{"angles": []any{30, 60}},
			want: map[string]any{"angles": []any{30}, "last": 60},
		},
		{
			name: "nested compose",
			steps: `
  - compose:
      transforms:
        - insert: {path: n, value: 12}
        - formula:
            function: search_divisor
            params: {strategy: min, threshold: 5}
            output: d
            inputs: [n]`,
			in:   map[string]any{},
			want: map[string]any{"n": 12, "d": 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := pipeline.Parse([]byte("transforms:" + tt.steps))
			require.NoError(t, err)

			got, err := p.Compose.Apply(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Functions(t *testing.T) {
	tests := []struct {
		name   string
		fn     string
		params string
		inputs string
		in     map[string]any
		want   any
	}{
		{"integer division", "integer_division", "{}", "[a, b]", map[string]any{"a": 10, "b": 3}, 3},
		{"product", "product", "{}", "[a, b]", map[string]any{"a": 3, "b": 4}, 12},
		{"rounding", "rounding", "{decimals: 1}", "[a]", map[string]any{"a": 1.25}, 1.2},
		{"round to closest even", "round_to_closest_even", "{}", "[a]", map[string]any{"a": 3}, 4},
		{"head", "head", "{}", "[a]", map[string]any{"a": []any{1, 2}}, 1},
		{"tail", "tail", "{}", "[a]", map[string]any{"a": []any{1, 2}}, []any{2}},
		{"pop", "pop", "{index: 1}", "[a]", map[string]any{"a": []any{1, 2}}, 2},
		{"identity", "identity", "{}", "[a]", map[string]any{"a": "x"}, "x"},
		{"divisor candidates", "search_divisor", "{strategy: max, threshold: 5, candidates: [5, 6]}", "[a]", map[string]any{"a": 12}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := "transforms:\n  - formula: {function: " + tt.fn + ", params: " + tt.params +
				", output: out, inputs: " + tt.inputs + "}\n"
			p, err := pipeline.Parse([]byte(def))
			require.NoError(t, err)

			got, err := p.Compose.Apply(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got["out"])
		})
	}
}

func TestParse_Thresholds(t *testing.T) {
	def := `
transforms:
  - formula:
      function: min_threshold_from_resolution
      params: {peak: 100}
      output: lo
      inputs: [res]
  - formula:
      function: max_threshold_from_resolution
      params: {peak: 100, sigmas: 1, is_percentage: false}
      output: hi
      inputs: [frac]
`
	p, err := pipeline.Parse([]byte(def))
	require.NoError(t, err)

	got, err := p.Compose.Apply(map[string]any{"res": 10, "frac": 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 100*(1-2*0.1/2.355), got["lo"], 1e-9)
	assert.InDelta(t, 100*(1+0.1/2.355), got["hi"], 1e-9)
}

func TestParse_SeededJitter(t *testing.T) {
	def := `
seed: 11
transforms:
  - formula: {function: uniform_jitter, output: v, inputs: [v, j]}
  - formula: {function: relative_jitter, params: {p: 0.5}, output: w, inputs: [w, ref]}
`
	run := func(opts ...pipeline.Option) map[string]any {
		p, err := pipeline.Parse([]byte(def), opts...)
		require.NoError(t, err)
		got, err := p.Compose.Apply(map[string]any{"v": 10, "j": 2, "w": 0, "ref": 4})
		require.NoError(t, err)
		return got
	}

	first := run()
	assert.Equal(t, first, run(), "same seed, same draws")
	assert.InDelta(t, 10, first["v"], 2)
	assert.InDelta(t, 0, first["w"], 2)

	assert.Equal(t, run(pipeline.WithSeed(3)), run(pipeline.WithSource(expr.NewRNG(3))))
}

func TestParse_AggregatesErrors(t *testing.T) {
	def := `
transforms:
  - explode: {}
  - insert: {value: 1}
  - [not, a, step]
  - formula: {function: nope, output: x}
  - when:
      condition: "a > 1"
      transform:
        remove: {}
  - remove: {paths: [ok]}
`
	_, err := pipeline.Parse([]byte(def))
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 5)

	indices := make([]int, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		var se *pipeline.StepError
		require.ErrorAs(t, e, &se)
		indices = append(indices, se.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, indices)

	assert.ErrorIs(t, merr.Errors[0], pipeline.ErrUnknownKind)
	assert.ErrorIs(t, merr.Errors[0], registry.ErrUnknown)
	assert.ErrorIs(t, merr.Errors[1], pipeline.ErrInvalidStep)
	assert.Contains(t, merr.Errors[1].Error(), `missing parameter "path"`)
	assert.ErrorIs(t, merr.Errors[2], pipeline.ErrInvalidStep)
	assert.ErrorIs(t, merr.Errors[3], pipeline.ErrUnknownFunction)
	assert.ErrorIs(t, merr.Errors[4], pipeline.ErrInvalidStep)
}

func TestParse_WrongParameterTypes(t *testing.T) {
	def := `
transforms:
  - insert: {path: w, value: 1, replace: "yes"}
  - formula: {function: rounding, params: {decimals: "two"}, output: x, inputs: [x]}
  - formula: {function: max_threshold_from_resolution, params: {peak: "ten"}, output: y, inputs: [r]}
  - save: {filename: out.yaml, indent: "wide", create_dir: 1}
  - formula: {function: identity, output: z, inputs: [x]}
`
	_, err := pipeline.Parse([]byte(def))
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 4)

	wantParams := [][]string{
		{`"replace"`},
		{`"decimals"`},
		{`"peak"`},
		{`"indent"`, `"create_dir"`},
	}
	for i, e := range merr.Errors {
		var se *pipeline.StepError
		require.ErrorAs(t, e, &se)
		assert.Equal(t, i, se.Index)
		assert.ErrorIs(t, e, pipeline.ErrInvalidStep)
		assert.ErrorIs(t, e, cerrors.ErrType)
		for _, param := range wantParams[i] {
			assert.Contains(t, e.Error(), param)
		}
	}
}

func TestParse_WrongTopLevelTypes(t *testing.T) {
	for _, def := range []string{
		"name: 42\ntransforms: []",
		"seed: many\ntransforms: []",
		"seed: 1.5\ntransforms: []",
	} {
		_, err := pipeline.Parse([]byte(def))
		assert.ErrorIs(t, err, pipeline.ErrInvalidStep, def)
		assert.ErrorIs(t, err, cerrors.ErrType, def)
	}
}

func TestParse_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		def  string
		want error
	}{
		{"no transforms", "name: x", pipeline.ErrInvalidStep},
		{"negative seed", "seed: -1\ntransforms: []", pipeline.ErrInvalidStep},
		{"bad yaml", "transforms: [", cerrors.ErrValue},
		{"params not a mapping", "transforms:\n  - remove: [a]", pipeline.ErrInvalidStep},
		{"bad divisor strategy", "transforms:\n  - formula: {function: search_divisor, params: {strategy: mid, threshold: 2}, output: d, inputs: [n]}", pipeline.ErrInvalidStep},
		{"bad missing action", "transforms:\n  - template: {paths: [a], missing: shout}", pipeline.ErrInvalidStep},
		{"arity mismatch", "transforms:\n  - formula: {function: division, output: q, inputs: [a]}", cerrors.ErrSignature},
		{"product_by_num without n", "transforms:\n  - formula: {function: product_by_num, output: q, inputs: [a]}", pipeline.ErrInvalidStep},
		{"product_by_num with text n", "transforms:\n  - formula: {function: product_by_num, params: {n: ten}, output: q, inputs: [a]}", cerrors.ErrType},
		{"slot not an integer", "transforms:\n  - formula: {function: identity, output: q, slots: [{path: a, slot: first}]}", cerrors.ErrType},
		{"formula params not a mapping", "transforms:\n  - formula: {function: rounding, params: [2], output: q, inputs: [a]}", pipeline.ErrInvalidStep},
		{"paths not strings", "transforms:\n  - remove: {paths: [a, 3]}", cerrors.ErrType},
		{"strict not a boolean", "transforms:\n  - when: {condition: a, strict: maybe, transform: {remove: {paths: [a]}}}", cerrors.ErrType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Parse([]byte(tt.def))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_RunAndSave(t *testing.T) {
	dir := t.TempDir()
	def := `
name: generate
transforms:
  - insert: {path: model.side, value: 2.0}
  - insert: {path: model.n_sides, value: 4}
  - formula:
      function: regular_polygon_apothem
      output: model.apothem
      inputs: [model.side, model.n_sides]
  - save:
      dir: ` + filepath.Join(dir, "out") + `
      filename: "square_${model.n_sides}.json"
      create_dir: true
`
	path := filepath.Join(dir, "generate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(def), 0o600))

	p, err := pipeline.Load(path)
	require.NoError(t, err)

	store := checkpoint.NewMemoryStore()
	got, err := p.Run(context.Background(), nil,
		cfgpipe.WithCheckpointing(store), cfgpipe.WithRunID("gen"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got["model"].(map[string]any)["apothem"], 1e-9)

	saved, err := config.Load(filepath.Join(dir, "out", "square_4.json"))
	require.NoError(t, err)
	assert.Equal(t, 4, saved["model"].(map[string]any)["n_sides"])

	snap, err := checkpoint.Latest(context.Background(), store, "gen")
	require.NoError(t, err)
	assert.Equal(t, "generate", snap.Pipeline)
	assert.True(t, snap.Done())

	resumed, err := p.Resume(context.Background(), store, "gen")
	require.NoError(t, err)
	assert.Equal(t, 4, resumed["model"].(map[string]any)["n_sides"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := pipeline.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, cerrors.ErrIO)
}

func TestRegistries(t *testing.T) {
	assert.Equal(t,
		[]string{"compose", "flatten", "formula", "insert", "nest", "pop", "remove", "save", "template", "unpack", "when"},
		pipeline.Kinds())
	assert.Contains(t, pipeline.Functions(), "product_by_num")
	assert.Contains(t, pipeline.Functions(), "search_divisor")

	assert.ErrorIs(t, pipeline.RegisterFunction("division", nil), registry.ErrDuplicate)
	assert.ErrorIs(t, pipeline.RegisterKind("insert", nil), registry.ErrDuplicate)

	square := func(*pipeline.Env, config.Config) (expr.Func, error) {
		return expr.NewFunc("test_square", 1, func(args ...any) (any, error) {
			return expr.Product(args[0], args[0])
		}), nil
	}
	require.NoError(t, pipeline.RegisterFunction("test_square", square))

	p, err := pipeline.Parse([]byte("transforms:\n  - formula: {function: test_square, output: y, inputs: [x]}"))
	require.NoError(t, err)
	got, err := p.Compose.Apply(map[string]any{"x": 7})
	require.NoError(t, err)
	assert.Equal(t, 49, got["y"])
}
