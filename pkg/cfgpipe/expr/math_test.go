package expr

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

func TestDivision(t *testing.T) {
	tests := []struct {
		name    string
		num     any
		den     any
		integer bool
		want    any
	}{
		{"true division of ints", 10, 2, false, 5.0},
		{"true division with remainder", 7, 2, false, 3.5},
		{"integer division of ints stays int", 7, 2, true, 3},
		{"integer division floors negatives", -7, 2, true, -4},
		{"integer division of floats", 7.5, 2, true, 3.0},
		{"integer division floors negative divisor", 7, -2, true, -4},
		{"integer division exact negative", -8, 2, true, -4},
		{"integer division above 2^53", int64(1<<53 + 1), 1, true, 1<<53 + 1},
		{"integer division of large uint64", uint64(1<<62 + 3), 2, true, 1<<61 + 1},
		{"integer division of json number", json.Number("9007199254740993"), 1, true, 9007199254740993},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Division(tt.num, tt.den, tt.integer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDivision_Errors(t *testing.T) {
	_, err := Division(10, 0, false)
	assert.ErrorIs(t, err, cerrors.ErrValue)

	_, err = Division(10, 0.0, true)
	assert.ErrorIs(t, err, cerrors.ErrValue)

	_, err = Division("10", 2, false)
	assert.ErrorIs(t, err, cerrors.ErrType)

	_, err = Division(int64(math.MinInt64), -1, true)
	assert.ErrorIs(t, err, cerrors.ErrValue)
}

func TestProduct(t *testing.T) {
	got, err := Product(5, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	got, err = Product(1.5, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	_, err = Product(nil, 2)
	assert.ErrorIs(t, err, cerrors.ErrType)
}

func TestProduct_LargeIntegers(t *testing.T) {
	got, err := Product(int64(1<<53+1), 1)
	require.NoError(t, err)
	assert.Equal(t, 1<<53+1, got)

	got, err = Product(int64(1<<53+1), -3)
	require.NoError(t, err)
	assert.Equal(t, -3*(1<<53+1), got)

	got, err = ProductByNum(3).Invoke(int64(3_000_000_000_000_001))
	require.NoError(t, err)
	assert.Equal(t, 9_000_000_000_000_003, got)

	for _, args := range [][2]any{
		{int64(math.MaxInt64), 2},
		{int64(math.MinInt64), -1},
		{-1, int64(math.MinInt64)},
		{int64(1 << 32), int64(1 << 31)},
	} {
		_, err := Product(args[0], args[1])
		assert.ErrorIs(t, err, cerrors.ErrValue, "%v * %v", args[0], args[1])
	}
}

func TestRounding(t *testing.T) {
	tests := []struct {
		value    any
		decimals int
		want     float64
	}{
		{2.5, 0, 2},
		{3.5, 0, 4},
		{1.2345, 2, 1.23},
		{7, 1, 7},
		{-0.5, 0, 0},
	}

	for _, tt := range tests {
		got, err := Rounding(tt.value, tt.decimals)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "Rounding(%v, %d)", tt.value, tt.decimals)
	}

	_, err := Rounding("1.5", 0)
	assert.ErrorIs(t, err, cerrors.ErrType)
}

func TestRoundToClosestEven(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{3, 4},
		{2, 2},
		{5, 6},
		{1.1, 2},
		{-3, -4},
		{0, 0},
	}

	for _, tt := range tests {
		got, err := RoundToClosestEven(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "RoundToClosestEven(%v)", tt.in)
	}
}

func TestRegularPolygon(t *testing.T) {
	apothem, err := RegularPolygonApothem(2, 4)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, apothem, 1e-9)

	side, err := RegularPolygonSide(apothem, 4)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, side, 1e-9)

	hexApothem, err := RegularPolygonApothem(1.0, 6)
	require.NoError(t, err)
	hexSide, err := RegularPolygonSide(hexApothem, 6)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hexSide, 1e-9)
}

func TestRegularPolygon_Errors(t *testing.T) {
	tests := []struct {
		name   string
		length any
		sides  any
		kind   cerrors.Kind
	}{
		{"two sides", 1, 2, cerrors.KindValue},
		{"fractional sides", 1, 4.5, cerrors.KindValue},
		{"negative length", -1, 4, cerrors.KindValue},
		{"non numeric", "1", 4, cerrors.KindType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RegularPolygonApothem(tt.length, tt.sides)
			assert.Equal(t, tt.kind, cerrors.KindOf(err))
			_, err = RegularPolygonSide(tt.length, tt.sides)
			assert.Equal(t, tt.kind, cerrors.KindOf(err))
		})
	}
}

func TestThresholdFromResolution(t *testing.T) {
	tests := []struct {
		name       string
		resolution any
		params     ThresholdParams
	}{
		{"percentage", 10, DefaultThresholdParams(511)},
		{"fraction", 0.1, ThresholdParams{Peak: 511, Sigmas: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, err := MinThresholdFromResolution(tt.resolution, tt.params)
			require.NoError(t, err)
			assert.InDelta(t, 467.60297, lower, 1e-4)

			upper, err := MaxThresholdFromResolution(tt.resolution, tt.params)
			require.NoError(t, err)
			assert.InDelta(t, 554.39702, upper, 1e-4)
		})
	}
}

func TestThresholdFromResolution_FractionAboveOne(t *testing.T) {
	p := ThresholdParams{Peak: 511, Sigmas: 2}

	_, err := MinThresholdFromResolution(10, p)
	assert.ErrorIs(t, err, cerrors.ErrValue)

	_, err = MaxThresholdFromResolution(10, p)
	assert.ErrorIs(t, err, cerrors.ErrValue)
}

func TestPop(t *testing.T) {
	list := []any{1, 2, 3}

	head, rest, err := Pop(list, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, head)
	assert.Equal(t, []any{2, 3}, rest)

	last, rest, err := Pop(list, -1)
	require.NoError(t, err)
	assert.Equal(t, 3, last)
	assert.Equal(t, []any{1, 2}, rest)

	assert.Equal(t, []any{1, 2, 3}, list, "input must not be modified")
}

func TestPop_Errors(t *testing.T) {
	_, _, err := Pop("abc", 0)
	assert.ErrorIs(t, err, cerrors.ErrType)

	_, _, err = Pop([]any{}, 0)
	assert.ErrorIs(t, err, cerrors.ErrValue)

	_, _, err = Pop([]any{1}, 3)
	assert.ErrorIs(t, err, cerrors.ErrValue)
}
