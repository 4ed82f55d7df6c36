/*
Package template expands configuration placeholders inside strings.

# Overview

A placeholder names a dotted key path of the configuration. Expanding a
string replaces each placeholder with the value found at that path:

	cfg := map[string]any{"train": map[string]any{"seed": 7}}
	name := template.Expand("run_${train.seed}.yaml", cfg)
	// name: "run_7.yaml"

Save uses this to derive file names from configuration values, and the
Template transform uses it to fill string values in place.

# Placeholder Patterns

  - ${a.b} - Brace style, dotted paths, always enabled by default
  - $name - Dollar style, top-level keys only, opt in with WithDollarStyle

# Missing Values

By default unresolved placeholders are kept as-is. Configure with
WithMissingAction:

	exp := template.NewExpander(template.WithMissingAction(template.MissingError))
	_, err := exp.Expand("${absent}", cfg)
	// err is an *UndefinedVariableError wrapping ErrLookup

Placeholders that resolve to a mapping or a list fail with ErrType.
*/
package template
