package cfgpipe_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe"
	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/transform"
)

// insertThenDouble builds Compose[Insert a.b=5, Formula product_by_num(2) a.b -> a.c].
func insertThenDouble(t *testing.T) *cfgpipe.Compose {
	t.Helper()
	ins, err := transform.NewInsert(keypath.Parse("a.b"), 5)
	require.NoError(t, err)
	double, err := transform.NewFormula(expr.ProductByNum(2), keypath.Parse("a.c"), keypath.Parse("a.b"))
	require.NoError(t, err)
	return cfgpipe.MustCompose(ins, double)
}

func TestCompose_InsertThenFormula(t *testing.T) {
	pipe := insertThenDouble(t)

	got, err := pipe.Apply(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 5, "c": 10}}, got)

	assert.Equal(t, "compose", pipe.Name())
	assert.Equal(t, 2, pipe.Len())
	assert.Equal(t, []string{"a.b", "a.c"}, keypath.Strings(pipe.Keys()))
}

func TestCompose_NilAndEmpty(t *testing.T) {
	empty := cfgpipe.MustCompose()
	got, err := empty.Apply(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, got)

	in := map[string]any{"k": 1}
	got, err = empty.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	_, err = cfgpipe.NewCompose(nil)
	assert.ErrorIs(t, err, cfgpipe.ErrNilTransform)
}

func TestCompose_FailFast(t *testing.T) {
	var calls []string
	step := func(name string, err error) transform.Transform {
		return transform.NewFunc(name, nil, func(cfg map[string]any) (map[string]any, error) {
			calls = append(calls, name)
			if err != nil {
				return nil, err
			}
			cfg[name] = true
			return cfg, nil
		})
	}

	boom := cerrors.Errorf(cerrors.KindValue, "boom")
	pipe := cfgpipe.MustCompose(step("first", nil), step("second", boom), step("third", nil))

	cfg := map[string]any{}
	_, err := pipe.Apply(cfg)
	require.Error(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, map[string]any{"first": true}, cfg, "earlier changes are not rolled back")

	var te *cfgpipe.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Index)
	assert.Equal(t, "second", te.Name)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, cerrors.ErrValue)
	assert.Equal(t, cerrors.KindValue, cerrors.KindOf(err))
}

func TestCompose_PanicRecovered(t *testing.T) {
	panicky := transform.NewFunc("panicky", nil, func(map[string]any) (map[string]any, error) {
		panic("kaboom")
	})
	pipe := cfgpipe.MustCompose(panicky)

	_, err := pipe.Apply(nil)
	var pe *cfgpipe.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, pe.Index)
	assert.Equal(t, "panicky", pe.Name)
	assert.Equal(t, "kaboom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Contains(t, pe.Error(), "panicked: kaboom")
}

func TestCompose_NilResult(t *testing.T) {
	bad := transform.NewFunc("bad", nil, func(map[string]any) (map[string]any, error) { return nil, nil })
	_, err := cfgpipe.MustCompose(bad).Apply(nil)
	assert.ErrorIs(t, err, cerrors.ErrType)
}

func TestCompose_Nested(t *testing.T) {
	inner := insertThenDouble(t)
	rm, err := transform.NewRemove(keypath.ParseAll("a.b"))
	require.NoError(t, err)

	outer, err := cfgpipe.NewCompose(inner, rm)
	require.NoError(t, err)

	got, err := outer.Apply(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"c": 10}}, got)
	assert.Equal(t, []string{"a.b", "a.c"}, keypath.Strings(outer.Keys()))

	var te *cfgpipe.TransformError
	_, err = outer.Apply(map[string]any{"a": 1})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, te.Index, "outer index of the failing nested compose")
	assert.ErrorIs(t, err, cerrors.ErrType)
}

func TestCompose_TransformsIsCopy(t *testing.T) {
	pipe := insertThenDouble(t)
	ts := pipe.Transforms()
	ts[0] = nil

	_, err := pipe.Apply(nil)
	assert.NoError(t, err)
}

func TestTransformError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &cfgpipe.TransformError{Index: 2, Name: "x", Err: cause}
	assert.Equal(t, "transform 2 (x): cause", err.Error())
	assert.Same(t, cause, errors.Unwrap(err))
}
