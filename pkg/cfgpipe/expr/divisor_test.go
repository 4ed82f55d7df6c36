package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

func TestDivisors(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{1, []int{1}},
		{12, []int{1, 2, 3, 4, 6, 12}},
		{45, []int{1, 3, 5, 9, 15, 45}},
		{7, []int{1, 7}},
		{-6, []int{1, 2, 3, 6}},
	}

	for _, tt := range tests {
		got, err := Divisors(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Divisors(%d)", tt.n)
	}

	_, err := Divisors(0)
	assert.ErrorIs(t, err, cerrors.ErrValue)
}

func TestFindDivisor(t *testing.T) {
	d, ok, err := FindDivisor(12, []int{0, 5, 4, 6})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, d)

	_, ok, err = FindDivisor(12, []int{5, 7})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = FindDivisor(12, []int{0, 0})
	assert.ErrorIs(t, err, cerrors.ErrValue)

	_, _, err = FindDivisor(0, []int{1})
	assert.ErrorIs(t, err, cerrors.ErrValue)
}

func TestLowerUpperDivisor(t *testing.T) {
	lower, err := LowerDivisor(45, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, lower)

	upper, err := UpperDivisor(45, 7)
	require.NoError(t, err)
	assert.Equal(t, 9, upper)

	upper, err = UpperDivisor(45, 9)
	require.NoError(t, err)
	assert.Equal(t, 15, upper)

	upper, err = UpperDivisor(45, 100)
	require.NoError(t, err)
	assert.Equal(t, 45, upper)

	_, err = LowerDivisor(45, 1)
	assert.ErrorIs(t, err, cerrors.ErrValue)

	_, err = UpperDivisor(45, 0)
	assert.ErrorIs(t, err, cerrors.ErrValue)
}

func TestSearchDivisor(t *testing.T) {
	tests := []struct {
		name       string
		strategy   DivisorStrategy
		candidates []int
		want       int
	}{
		{"min strategy", StrategyMin, nil, 5},
		{"max strategy", StrategyMax, nil, 9},
		{"candidate match wins", StrategyMax, []int{8, 15}, 15},
		{"no candidate match falls back", StrategyMin, []int{8, 11}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SearchDivisor(45, tt.strategy, 7, tt.candidates)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := SearchDivisor(45, "median", 7, nil)
	assert.ErrorIs(t, err, cerrors.ErrValue)
}

func TestDivisorFunc(t *testing.T) {
	got, err := DivisorFunc(StrategyMin, 7, nil).Invoke(45)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	_, err = DivisorFunc(StrategyMin, 7, nil).Invoke(4.5)
	assert.ErrorIs(t, err, cerrors.ErrType)
}
