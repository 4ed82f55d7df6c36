/*
Package expr provides the value functions and conditions used by cfgpipe
transforms.

# Functions

The arithmetic helpers (Division, Product, Rounding, RoundToClosestEven,
the regular polygon pair, the resolution thresholds, jitter, Pop and the
divisor search) are plain Go functions. Each is also available as a Func
descriptor carrying a name and an arity so it can be bound to keys:

	fn := expr.ProductByNum(2)
	b, err := expr.Bind(fn, keypath.Parse("a.c"), keypath.Parse("a.b"))
	if err != nil {
	    return err // ErrSignature when the key count does not match the arity
	}
	err = b.Apply(cfg) // cfg["a"]["c"] = 2 * cfg["a"]["b"]

Integer inputs keep integer results where the operation allows it
(Product, integer Division). Non-numeric inputs fail with ErrType and
out-of-domain inputs (zero denominators, negative jitter) with ErrValue.

# Conditions

Evaluator evaluates boolean conditions over a configuration:

	<expr> := <and> | <expr> 'or' <and>
	<and>  := <not> | <and> 'and' <not>
	<not>  := 'not' <not> | '!' <not> | <comparison> | <value>

	<op> := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'contains'

Operands are quoted strings, numbers, true, false, null, or dotted key
paths resolved against the configuration:

	ok, _ := expr.Eval("model.layers > 3 and mode == 'train'", cfg)

A key path absent from the configuration resolves to null, so
"feature.enabled" is false when there is no feature key. Use
WithStrictPaths to fail with ErrLookup instead.
*/
package expr
