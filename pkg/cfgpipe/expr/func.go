package expr

import (
	"fmt"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

// CallFunc is the uniform calling convention of a Func.
type CallFunc func(args ...any) (any, error)

// Func describes a function that can be bound to configuration keys.
type Func struct {
	// Name identifies the function in pipeline definitions and errors.
	Name string

	// Arity is the number of positional arguments Call expects.
	Arity int

	// Call invokes the function. Callers must pass exactly Arity arguments.
	Call CallFunc
}

// NewFunc creates a Func descriptor.
func NewFunc(name string, arity int, call CallFunc) Func {
	return Func{Name: name, Arity: arity, Call: call}
}

// Invoke calls f after checking the argument count.
func (f Func) Invoke(args ...any) (any, error) {
	if f.Call == nil {
		return nil, cerrors.Errorf(cerrors.KindSignature, "function %q has no implementation", f.Name)
	}
	if len(args) != f.Arity {
		return nil, cerrors.Errorf(cerrors.KindSignature,
			"function %q takes %d arguments, got %d", f.Name, f.Arity, len(args))
	}
	out, err := f.Call(args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return out, nil
}

// DivisionFunc divides its first argument by its second.
func DivisionFunc(integer bool) Func {
	name := "division"
	if integer {
		name = "integer_division"
	}
	return NewFunc(name, 2, func(args ...any) (any, error) {
		return Division(args[0], args[1], integer)
	})
}

// ProductFunc multiplies its two arguments.
func ProductFunc() Func {
	return NewFunc("product", 2, func(args ...any) (any, error) {
		return Product(args[0], args[1])
	})
}

// ProductByNum multiplies its single argument by n.
func ProductByNum(n any) Func {
	return NewFunc("product_by_num", 1, func(args ...any) (any, error) {
		return Product(args[0], n)
	})
}

// RoundingFunc rounds its argument to decimals places.
func RoundingFunc(decimals int) Func {
	return NewFunc("rounding", 1, func(args ...any) (any, error) {
		return Rounding(args[0], decimals)
	})
}

// RoundToClosestEvenFunc rounds its argument to the nearest even integer.
func RoundToClosestEvenFunc() Func {
	return NewFunc("round_to_closest_even", 1, func(args ...any) (any, error) {
		return RoundToClosestEven(args[0])
	})
}

// ApothemFunc computes a regular polygon apothem from (side, n_sides).
func ApothemFunc() Func {
	return NewFunc("regular_polygon_apothem", 2, func(args ...any) (any, error) {
		return RegularPolygonApothem(args[0], args[1])
	})
}

// SideFunc computes a regular polygon side from (apothem, n_sides).
func SideFunc() Func {
	return NewFunc("regular_polygon_side", 2, func(args ...any) (any, error) {
		return RegularPolygonSide(args[0], args[1])
	})
}

// MinThresholdFunc computes the lower threshold of its resolution argument.
func MinThresholdFunc(p ThresholdParams) Func {
	return NewFunc("min_threshold_from_resolution", 1, func(args ...any) (any, error) {
		return MinThresholdFromResolution(args[0], p)
	})
}

// MaxThresholdFunc computes the upper threshold of its resolution argument.
func MaxThresholdFunc(p ThresholdParams) Func {
	return NewFunc("max_threshold_from_resolution", 1, func(args ...any) (any, error) {
		return MaxThresholdFromResolution(args[0], p)
	})
}

// JitterFunc adds uniform jitter to (value, jitter).
func JitterFunc(src Source) Func {
	return NewFunc("uniform_jitter", 2, func(args ...any) (any, error) {
		return AddUniformJitter(src, args[0], args[1])
	})
}

// RelativeJitterFunc adds uniform jitter of amplitude p * reference to
// (value, reference).
func RelativeJitterFunc(src Source, p float64) Func {
	return NewFunc("relative_jitter", 2, func(args ...any) (any, error) {
		j, err := RelativeJitter(p, args[1])
		if err != nil {
			return nil, err
		}
		return AddUniformJitter(src, args[0], j)
	})
}

// PopFunc returns the element at index of its list argument. The list
// itself is left as is; transform.Pop also removes the element.
func PopFunc(index int) Func {
	return NewFunc("pop", 1, func(args ...any) (any, error) {
		v, _, err := Pop(args[0], index)
		return v, err
	})
}

// Head returns the first element of its list argument.
func Head() Func {
	return NewFunc("head", 1, func(args ...any) (any, error) {
		v, _, err := Pop(args[0], 0)
		return v, err
	})
}

// Tail returns its list argument without the first element.
func Tail() Func {
	return NewFunc("tail", 1, func(args ...any) (any, error) {
		_, rest, err := Pop(args[0], 0)
		return rest, err
	})
}

// DivisorFunc searches a divisor of its argument with the given strategy.
func DivisorFunc(strategy DivisorStrategy, threshold int, candidates []int) Func {
	return NewFunc("search_divisor", 1, func(args ...any) (any, error) {
		if _, err := number(args[0]); err != nil {
			return nil, err
		}
		n, ok := asInt64(args[0])
		if !ok {
			return nil, cerrors.Errorf(cerrors.KindType, "expected an integer but got %v", args[0])
		}
		return SearchDivisor(int(n), strategy, threshold, candidates)
	})
}

// IdentityFunc returns its argument unchanged. Binding it copies a value
// from one key to another.
func IdentityFunc() Func {
	return NewFunc("identity", 1, func(args ...any) (any, error) {
		return args[0], nil
	})
}
