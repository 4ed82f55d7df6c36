package pipeline

import (
	"fmt"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/expr"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/registry"
)

// FuncFactory creates an expression function from the params of a
// formula step.
type FuncFactory func(env *Env, params config.Config) (expr.Func, error)

var functions = registry.New[string, FuncFactory]("function")

func init() {
	functions.MustRegister("division", fixed(expr.DivisionFunc(false)))
	functions.MustRegister("integer_division", fixed(expr.DivisionFunc(true)))
	functions.MustRegister("product", fixed(expr.ProductFunc()))
	functions.MustRegister("product_by_num", productByNum)
	functions.MustRegister("rounding", rounding)
	functions.MustRegister("round_to_closest_even", fixed(expr.RoundToClosestEvenFunc()))
	functions.MustRegister("regular_polygon_apothem", fixed(expr.ApothemFunc()))
	functions.MustRegister("regular_polygon_side", fixed(expr.SideFunc()))
	functions.MustRegister("min_threshold_from_resolution", threshold(expr.MinThresholdFunc))
	functions.MustRegister("max_threshold_from_resolution", threshold(expr.MaxThresholdFunc))
	functions.MustRegister("uniform_jitter", uniformJitter)
	functions.MustRegister("relative_jitter", relativeJitter)
	functions.MustRegister("pop", pop)
	functions.MustRegister("head", fixed(expr.Head()))
	functions.MustRegister("tail", fixed(expr.Tail()))
	functions.MustRegister("search_divisor", searchDivisor)
	functions.MustRegister("identity", fixed(expr.IdentityFunc()))
}

// RegisterFunction adds a function usable in formula steps. Registering an
// existing name fails with registry.ErrDuplicate.
func RegisterFunction(name string, f FuncFactory) error {
	return functions.Register(name, f)
}

// Functions returns the registered function names in order.
func Functions() []string {
	return functions.Keys()
}

// Func creates the named function from its params.
func (e *Env) Func(name string, params config.Config) (expr.Func, error) {
	factory, err := functions.Lookup(name)
	if err != nil {
		return expr.Func{}, fmt.Errorf("%w: %w", ErrUnknownFunction, err)
	}
	fn, err := factory(e, params)
	if err != nil {
		return expr.Func{}, fmt.Errorf("function %s: %w", name, err)
	}
	return fn, nil
}

func fixed(fn expr.Func) FuncFactory {
	return func(*Env, config.Config) (expr.Func, error) {
		return fn, nil
	}
}

func productByNum(_ *Env, c config.Config) (expr.Func, error) {
	p := newStepParams(c)
	n := p.requireNumber("n")
	if err := p.Err(); err != nil {
		return expr.Func{}, err
	}
	return expr.ProductByNum(n), nil
}

func rounding(_ *Env, c config.Config) (expr.Func, error) {
	p := newStepParams(c)
	decimals := p.optInt("decimals", 0)
	if err := p.Err(); err != nil {
		return expr.Func{}, err
	}
	return expr.RoundingFunc(decimals), nil
}

// threshold reads peak, sigmas (default 2) and is_percentage (default true).
func threshold(newFunc func(expr.ThresholdParams) expr.Func) FuncFactory {
	return func(_ *Env, c config.Config) (expr.Func, error) {
		p := newStepParams(c)
		tp := expr.DefaultThresholdParams(p.requireFloat("peak"))
		tp.Sigmas = p.optFloat("sigmas", tp.Sigmas)
		tp.IsPercentage = p.optBool("is_percentage", tp.IsPercentage)
		if err := p.Err(); err != nil {
			return expr.Func{}, err
		}
		return newFunc(tp), nil
	}
}

func uniformJitter(env *Env, _ config.Config) (expr.Func, error) {
	return expr.JitterFunc(env.Source), nil
}

func relativeJitter(env *Env, c config.Config) (expr.Func, error) {
	p := newStepParams(c)
	frac := p.requireFloat("p")
	if err := p.Err(); err != nil {
		return expr.Func{}, err
	}
	return expr.RelativeJitterFunc(env.Source, frac), nil
}

func pop(_ *Env, c config.Config) (expr.Func, error) {
	p := newStepParams(c)
	index := p.optInt("index", 0)
	if err := p.Err(); err != nil {
		return expr.Func{}, err
	}
	return expr.PopFunc(index), nil
}

// searchDivisor reads strategy (min or max, default min), threshold and
// candidates.
func searchDivisor(_ *Env, c config.Config) (expr.Func, error) {
	p := newStepParams(c)
	strategy := expr.DivisorStrategy(p.optString("strategy", string(expr.StrategyMin)))
	if strategy != expr.StrategyMin && strategy != expr.StrategyMax {
		p.invalid("strategy", "must be %q or %q, got %q", expr.StrategyMin, expr.StrategyMax, strategy)
	}
	limit := p.requireInt("threshold")
	candidates := p.optInts("candidates")
	if err := p.Err(); err != nil {
		return expr.Func{}, err
	}
	return expr.DivisorFunc(strategy, limit, candidates), nil
}
