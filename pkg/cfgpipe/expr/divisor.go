package expr

import (
	"sort"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

// DivisorStrategy selects the fallback of SearchDivisor.
type DivisorStrategy string

const (
	// StrategyMin picks the biggest divisor below the threshold.
	StrategyMin DivisorStrategy = "min"

	// StrategyMax picks the smallest divisor above the threshold.
	StrategyMax DivisorStrategy = "max"
)

// Divisors returns the positive divisors of n in ascending order.
// Zero has no usable divisors and is a value error.
func Divisors(n int) ([]int, error) {
	if n == 0 {
		return nil, cerrors.Errorf(cerrors.KindValue, "0 has no divisors")
	}
	if n < 0 {
		n = -n
	}
	if n == 1 {
		return []int{1}, nil
	}

	out := []int{1}
	for t := 2; t <= n/2; t++ {
		if n%t == 0 {
			out = append(out, t)
		}
	}
	return append(out, n), nil
}

// FindDivisor returns the first candidate that divides n.
// Zero candidates are skipped; the boolean is false when none divides n.
func FindDivisor(n int, candidates []int) (int, bool, error) {
	divs, err := Divisors(n)
	if err != nil {
		return 0, false, err
	}

	seen := make(map[int]bool, len(candidates))
	tried := 0
	for _, c := range candidates {
		if c == 0 || seen[c] {
			continue
		}
		seen[c] = true
		tried++
		if i := sort.SearchInts(divs, c); i < len(divs) && divs[i] == c {
			return c, true, nil
		}
	}
	if tried == 0 {
		return 0, false, cerrors.Errorf(cerrors.KindValue, "no non-zero divisor candidates")
	}
	return 0, false, nil
}

// LowerDivisor returns the biggest divisor of n strictly below threshold.
func LowerDivisor(n, threshold int) (int, error) {
	if threshold <= 1 {
		return 0, cerrors.Errorf(cerrors.KindValue, "no divisor of %d is below %d", n, threshold)
	}
	divs, err := Divisors(n)
	if err != nil {
		return 0, err
	}
	i := sort.SearchInts(divs, threshold)
	return divs[i-1], nil
}

// UpperDivisor returns the smallest divisor of n strictly above threshold,
// or n itself when threshold is not below n.
func UpperDivisor(n, threshold int) (int, error) {
	if threshold <= 0 {
		return 0, cerrors.Errorf(cerrors.KindValue, "threshold must be positive, got %d", threshold)
	}
	divs, err := Divisors(n)
	if err != nil {
		return 0, err
	}
	top := divs[len(divs)-1]
	if threshold >= top {
		return top, nil
	}
	i := sort.SearchInts(divs, threshold+1)
	return divs[i], nil
}

// SearchDivisor returns the first candidate dividing n. Without a match it
// falls back to LowerDivisor for StrategyMin and UpperDivisor for StrategyMax.
func SearchDivisor(n int, strategy DivisorStrategy, threshold int, candidates []int) (int, error) {
	if len(candidates) > 0 {
		d, ok, err := FindDivisor(n, candidates)
		if err != nil {
			return 0, err
		}
		if ok {
			return d, nil
		}
	}

	switch strategy {
	case StrategyMin:
		return LowerDivisor(n, threshold)
	case StrategyMax:
		return UpperDivisor(n, threshold)
	default:
		return 0, cerrors.Errorf(cerrors.KindValue,
			"unknown divisor strategy %q, want %q or %q", strategy, StrategyMin, StrategyMax)
	}
}
