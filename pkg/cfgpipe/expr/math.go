package expr

import (
	"math"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

// FWHMToSigma converts a gaussian full width at half maximum into standard
// deviations: sigma = FWHM / FWHMToSigma.
const FWHMToSigma = 2.355

// Division divides numerator by denominator.
//
// With integer unset the result is a float64 true quotient. With integer set
// the quotient is floored; two integer operands are divided exactly and
// yield an int. A zero denominator is a value error.
func Division(numerator, denominator any, integer bool) (any, error) {
	num, err := number(numerator)
	if err != nil {
		return nil, err
	}
	den, err := number(denominator)
	if err != nil {
		return nil, err
	}
	if den == 0 {
		return nil, cerrors.Errorf(cerrors.KindValue, "division by zero")
	}
	if !integer {
		return num / den, nil
	}
	if a, ok := asInt64(numerator); ok {
		if b, ok := asInt64(denominator); ok {
			return floorDiv(a, b)
		}
	}
	return math.Floor(num / den), nil
}

func floorDiv(a, b int64) (any, error) {
	if a == math.MinInt64 && b == -1 {
		return nil, cerrors.Errorf(cerrors.KindValue, "integer division %d / %d overflows", a, b)
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return int(q), nil
}

// Product multiplies a by b. Two integers are multiplied exactly and yield
// an int; an overflowing integer product is a value error.
func Product(a, b any) (any, error) {
	x, err := number(a)
	if err != nil {
		return nil, err
	}
	y, err := number(b)
	if err != nil {
		return nil, err
	}
	if i, ok := asInt64(a); ok {
		if j, ok := asInt64(b); ok {
			return mulInt(i, j)
		}
	}
	return x * y, nil
}

func mulInt(a, b int64) (any, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return nil, cerrors.Errorf(cerrors.KindValue, "integer product %d * %d overflows", a, b)
	}
	return int(p), nil
}

// Rounding rounds value to the given number of decimals, half to even.
func Rounding(value any, decimals int) (float64, error) {
	v, err := toNumber("value", value)
	if err != nil {
		return 0, err
	}
	scale := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*scale) / scale, nil
}

// RoundToClosestEven rounds value to the nearest even integer.
// Odd integers round away from zero: 3 becomes 4, -3 becomes -4.
func RoundToClosestEven(value any) (int, error) {
	v, err := toNumber("value", value)
	if err != nil {
		return 0, err
	}
	return int(2 * math.Round(v/2)), nil
}

// RegularPolygonApothem returns the apothem of a regular polygon with
// nSides sides of length side.
func RegularPolygonApothem(side, nSides any) (float64, error) {
	s, n, err := polygonArgs("side", side, nSides)
	if err != nil {
		return 0, err
	}
	return s / (2 * math.Tan(math.Pi/n)), nil
}

// RegularPolygonSide returns the side length of a regular polygon with
// nSides sides and the given apothem. It inverts RegularPolygonApothem.
func RegularPolygonSide(apothem, nSides any) (float64, error) {
	a, n, err := polygonArgs("apothem", apothem, nSides)
	if err != nil {
		return 0, err
	}
	return 2 * a * math.Tan(math.Pi/n), nil
}

func polygonArgs(name string, length, nSides any) (float64, float64, error) {
	l, err := toNumber(name, length)
	if err != nil {
		return 0, 0, err
	}
	n, err := toNumber("n_sides", nSides)
	if err != nil {
		return 0, 0, err
	}
	if l < 0 {
		return 0, 0, cerrors.Errorf(cerrors.KindValue, "%s must not be negative, got %v", name, l)
	}
	if n < 3 || n != math.Trunc(n) {
		return 0, 0, cerrors.Errorf(cerrors.KindValue, "a regular polygon needs an integer number of sides >= 3, got %v", n)
	}
	return l, n, nil
}

// ThresholdParams configures the resolution threshold functions.
type ThresholdParams struct {
	// Peak is the centre of the resolution curve.
	Peak float64

	// Sigmas is how many standard deviations the threshold lies from Peak.
	Sigmas float64

	// IsPercentage marks the resolution as a percentage (10 means 10%).
	IsPercentage bool
}

// DefaultThresholdParams returns two-sigma thresholds with percentage
// resolutions around peak.
func DefaultThresholdParams(peak float64) ThresholdParams {
	return ThresholdParams{Peak: peak, Sigmas: 2, IsPercentage: true}
}

// MinThresholdFromResolution computes the lower threshold of a gaussian
// resolution (FWHM) around p.Peak:
//
//	peak * (1 - sigmas * resolution / 2.355)
func MinThresholdFromResolution(resolution any, p ThresholdParams) (float64, error) {
	width, err := resolutionWidth(resolution, p)
	if err != nil {
		return 0, err
	}
	return p.Peak * (1 - width), nil
}

// MaxThresholdFromResolution computes the upper threshold of a gaussian
// resolution (FWHM) around p.Peak:
//
//	peak * (1 + sigmas * resolution / 2.355)
func MaxThresholdFromResolution(resolution any, p ThresholdParams) (float64, error) {
	width, err := resolutionWidth(resolution, p)
	if err != nil {
		return 0, err
	}
	return p.Peak * (1 + width), nil
}

func resolutionWidth(resolution any, p ThresholdParams) (float64, error) {
	r, err := toNumber("resolution", resolution)
	if err != nil {
		return 0, err
	}
	if p.IsPercentage {
		r /= 100
	} else if r > 1 {
		return 0, cerrors.Errorf(cerrors.KindValue,
			"resolution %v is not a percentage but is bigger than 1", r)
	}
	return p.Sigmas * r / FWHMToSigma, nil
}

// Pop splits a list into its element at index and the remaining elements.
// The input slice is not modified.
func Pop(list any, index int) (any, []any, error) {
	items, ok := list.([]any)
	if !ok {
		return nil, nil, cerrors.Errorf(cerrors.KindType, "expected a list but got %v (%T)", list, list)
	}
	if index < 0 {
		index += len(items)
	}
	if index < 0 || index >= len(items) {
		return nil, nil, cerrors.Errorf(cerrors.KindValue, "index %d out of range for list of length %d", index, len(items))
	}
	rest := make([]any, 0, len(items)-1)
	rest = append(rest, items[:index]...)
	rest = append(rest, items[index+1:]...)
	return items[index], rest, nil
}
