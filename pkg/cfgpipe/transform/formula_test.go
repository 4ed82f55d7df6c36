package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/transform"
)

func TestFormula(t *testing.T) {
	tests := []struct {
		name   string
		fn     expr.Func
		inputs []string
		cfg    map[string]any
		output string
		want   any
	}{
		{"division", expr.DivisionFunc(false), []string{"num", "den"}, map[string]any{"num": 10, "den": 2}, "q", 5.0},
		{"integer division", expr.DivisionFunc(true), []string{"num", "den"}, map[string]any{"num": 10, "den": 3}, "q", 3},
		{"product by num", expr.ProductByNum(2), []string{"a.b"}, map[string]any{"a": map[string]any{"b": 5}}, "a.c", 10},
		{"round to closest even", expr.RoundToClosestEvenFunc(), []string{"n"}, map[string]any{"n": 3}, "even", 4},
		{"head", expr.Head(), []string{"l"}, map[string]any{"l": []any{"x", "y"}}, "first", "x"},
		{"nested output", expr.IdentityFunc(), []string{"src"}, map[string]any{"src": 1}, "deep.copy.of", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := transform.NewFormula(tt.fn, keypath.Parse(tt.output), keypath.ParseAll(tt.inputs...)...)
			require.NoError(t, err)

			got, err := f.Apply(tt.cfg)
			require.NoError(t, err)

			v, err := keypath.Get(got, keypath.Parse(tt.output))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestFormula_DivisionByZero(t *testing.T) {
	f, err := transform.NewFormula(expr.DivisionFunc(false), keypath.Parse("q"), keypath.Parse("num"), keypath.Parse("den"))
	require.NoError(t, err)

	cfg := map[string]any{"num": 10, "den": 0}
	_, err = f.Apply(cfg)
	assert.ErrorIs(t, err, cerrors.ErrValue)
	assert.NotContains(t, cfg, "q")
}

func TestFormula_SignatureMismatch(t *testing.T) {
	_, err := transform.NewFormula(expr.DivisionFunc(false), keypath.Parse("q"), keypath.Parse("num"))
	assert.ErrorIs(t, err, cerrors.ErrSignature)

	_, err = transform.NewFormulaSlots(expr.ProductFunc(), keypath.Parse("q"),
		expr.Binding{Path: keypath.Parse("a"), Slot: 1},
		expr.Binding{Path: keypath.Parse("b"), Slot: 1},
	)
	assert.ErrorIs(t, err, cerrors.ErrSignature)
}

func TestFormula_Slots(t *testing.T) {
	f, err := transform.NewFormulaSlots(expr.DivisionFunc(false), keypath.Parse("q"),
		expr.Binding{Path: keypath.Parse("den"), Slot: 1},
		expr.Binding{Path: keypath.Parse("num"), Slot: 0},
	)
	require.NoError(t, err)

	got, err := f.Apply(map[string]any{"num": 1, "den": 4})
	require.NoError(t, err)
	assert.Equal(t, 0.25, got["q"])
	assert.Equal(t, []string{"num", "den", "q"}, keypath.Strings(f.Keys()))
	assert.Equal(t, "formula(division -> q)", f.Name())
	assert.Equal(t, "division", f.Bound().Func().Name)
}

func TestFormula_MissingInput(t *testing.T) {
	f, err := transform.NewFormula(expr.ProductByNum(2), keypath.Parse("c"), keypath.Parse("a.b"))
	require.NoError(t, err)

	_, err = f.Apply(map[string]any{})
	assert.ErrorIs(t, err, cerrors.ErrLookup)
}

func TestUnpack(t *testing.T) {
	u, err := transform.NewUnpack(keypath.Parse("size"), []string{"h", "w"})
	require.NoError(t, err)

	got, err := u.Apply(map[string]any{"size": []any{2, 3}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"size": []any{2, 3}, "h": 2, "w": 3}, got)
}

func TestUnpack_NestedRemoveSource(t *testing.T) {
	u, err := transform.NewUnpack(keypath.Parse("img.size"), []string{"h", "w"}, transform.RemoveSource())
	require.NoError(t, err)

	got, err := u.Apply(map[string]any{"img": map[string]any{"size": []any{2, 3}}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"img": map[string]any{"h": 2, "w": 3}}, got)
	assert.Equal(t, []string{"img.size", "img.h", "img.w"}, keypath.Strings(u.Keys()))
}

func TestUnpack_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
		kind cerrors.Kind
	}{
		{"missing source", map[string]any{}, cerrors.KindLookup},
		{"not a list", map[string]any{"size": "2x3"}, cerrors.KindType},
		{"length mismatch", map[string]any{"size": []any{1, 2, 3}}, cerrors.KindValue},
		{"target exists", map[string]any{"size": []any{1, 2}, "w": 0}, cerrors.KindValue},
	}

	u, err := transform.NewUnpack(keypath.Parse("size"), []string{"h", "w"})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Apply(tt.cfg)
			assert.Equal(t, tt.kind, cerrors.KindOf(err))
		})
	}

	_, err = transform.NewUnpack(nil, []string{"a"})
	assert.ErrorIs(t, err, cerrors.ErrValue)

	_, err = transform.NewUnpack(keypath.Parse("s"), []string{"a", "a"})
	assert.ErrorIs(t, err, cerrors.ErrValue)
}
