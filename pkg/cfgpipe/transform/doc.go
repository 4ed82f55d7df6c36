/*
Package transform provides the configuration transforms cfgpipe composes.

Every transform implements Transform: it has a name, declares the nested
key paths it may touch, and maps one configuration to the next. Apply
mutates the map it is given and returns the result; callers that need the
input preserved pass keypath.Clone(cfg).

# Transforms

  - Insert writes a fixed or computed value, deep-merging mappings
  - Remove deletes keys, failing on missing keys unless IgnoreMissing
  - Nest moves sibling keys under a new mapping; Flatten undoes it
  - Formula binds an expr.Func to input keys and writes its result
  - Unpack spreads a list into sibling keys
  - Pop moves one element of a list to another key
  - Template expands ${a.b} placeholders in string values
  - When guards another transform with a condition
  - Save writes the configuration to a YAML or JSON file

Construction validates arguments so a built transform only fails on the
configuration it is applied to:

	ins, _ := transform.NewInsert(keypath.Parse("a.b"), 5)
	dbl, err := transform.NewFormula(expr.ProductByNum(2), keypath.Parse("a.c"), keypath.Parse("a.b"))
	if err != nil {
	    return err // ErrSignature on an arity mismatch
	}

	cfg, err := ins.Apply(map[string]any{})
	cfg, err = dbl.Apply(cfg)
	// cfg: {"a": {"b": 5, "c": 10}}

# Errors

Failures wrap the sentinels of the errors package: ErrLookup for missing
keys, ErrType for values of the wrong shape, ErrValue for collisions and
out-of-domain arguments, ErrSignature for bad bindings and ErrIO for
failed writes.
*/
package transform
