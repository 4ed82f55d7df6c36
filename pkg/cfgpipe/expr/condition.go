package expr

import (
	"fmt"
	"strings"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

// BinaryOp compares two resolved operands.
type BinaryOp func(left, right any) bool

// builtinOps lists the comparison operators, longer tokens first so that
// ">=" is not split as ">".
var builtinOps = []struct {
	token   string
	compare BinaryOp
}{
	{"==", func(l, r any) bool { return fmt.Sprint(l) == fmt.Sprint(r) }},
	{"!=", func(l, r any) bool { return fmt.Sprint(l) != fmt.Sprint(r) }},
	{">=", func(l, r any) bool { return ToFloat64(l) >= ToFloat64(r) }},
	{"<=", func(l, r any) bool { return ToFloat64(l) <= ToFloat64(r) }},
	{">", func(l, r any) bool { return ToFloat64(l) > ToFloat64(r) }},
	{"<", func(l, r any) bool { return ToFloat64(l) < ToFloat64(r) }},
	{" contains ", func(l, r any) bool { return strings.Contains(fmt.Sprint(l), fmt.Sprint(r)) }},
}

// Evaluator evaluates boolean conditions over a configuration.
//
// Operands are literals ('text', 42, true, null) or dotted key paths that
// resolve against the configuration. A path absent from the configuration
// resolves to null, so a missing flag is false; WithStrictPaths turns it
// into a lookup error instead. "not" binds tighter than "and", which binds
// tighter than "or":
//
//	e := expr.NewEvaluator()
//	ok, err := e.Evaluate("model.layers > 3 and mode == 'train'", cfg)
type Evaluator struct {
	customOps map[string]BinaryOp
	strict    bool
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithOperator registers a custom binary operator, matched as " name ".
// The name should not collide with a built-in operator.
func WithOperator(name string, fn BinaryOp) EvaluatorOption {
	return func(e *Evaluator) {
		if e.customOps == nil {
			e.customOps = make(map[string]BinaryOp)
		}
		e.customOps[name] = fn
	}
}

// WithStrictPaths makes an operand naming an absent key path fail the
// evaluation with ErrLookup.
func WithStrictPaths() EvaluatorOption {
	return func(e *Evaluator) {
		e.strict = true
	}
}

// NewEvaluator creates an Evaluator with the given options.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate reports whether cond holds for cfg.
// The empty condition is false. A comparison with an empty operand is a
// value error.
func (e *Evaluator) Evaluate(cond string, cfg map[string]any) (bool, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return false, nil
	}

	if left, right, ok := strings.Cut(cond, " or "); ok {
		l, err := e.Evaluate(left, cfg)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return e.Evaluate(right, cfg)
	}
	if left, right, ok := strings.Cut(cond, " and "); ok {
		l, err := e.Evaluate(left, cfg)
		if err != nil || !l {
			return false, err
		}
		return e.Evaluate(right, cfg)
	}

	if inner, ok := strings.CutPrefix(cond, "not "); ok {
		return e.negate(inner, cfg)
	}
	if inner, ok := strings.CutPrefix(cond, "!"); ok && !strings.HasPrefix(cond, "!=") {
		return e.negate(inner, cfg)
	}

	for _, op := range builtinOps {
		if left, right, ok := strings.Cut(cond, op.token); ok {
			return e.compare(op.compare, strings.TrimSpace(op.token), left, right, cfg)
		}
	}

	for name, fn := range e.customOps {
		if left, right, ok := strings.Cut(cond, " "+name+" "); ok {
			return e.compare(fn, name, left, right, cfg)
		}
	}

	v, err := e.operand(cond, cfg)
	if err != nil {
		return false, err
	}
	return IsTruthy(v), nil
}

func (e *Evaluator) negate(cond string, cfg map[string]any) (bool, error) {
	result, err := e.Evaluate(cond, cfg)
	if err != nil {
		return false, err
	}
	return !result, nil
}

func (e *Evaluator) compare(fn BinaryOp, op, left, right string, cfg map[string]any) (bool, error) {
	if strings.TrimSpace(left) == "" || strings.TrimSpace(right) == "" {
		return false, cerrors.Errorf(cerrors.KindValue, "operator %q needs two operands", op)
	}
	l, err := e.operand(left, cfg)
	if err != nil {
		return false, err
	}
	r, err := e.operand(right, cfg)
	if err != nil {
		return false, err
	}
	return fn(l, r), nil
}

func (e *Evaluator) operand(s string, cfg map[string]any) (any, error) {
	v, missing := resolve(s, cfg)
	if missing && e.strict {
		return nil, &cerrors.KeyError{Path: strings.TrimSpace(s), Op: "resolve", Kind: cerrors.KindLookup}
	}
	return v, nil
}

// Eval evaluates cond with the default evaluator.
func Eval(cond string, cfg map[string]any) (bool, error) {
	return NewEvaluator().Evaluate(cond, cfg)
}
