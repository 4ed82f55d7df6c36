// Package cfgpipe transforms nested configurations through pipelines of
// small, composable steps.
//
// A configuration is a map[string]any as decoded from YAML or JSON. Nested
// values are addressed by key paths ("model.layers.depth", see package
// keypath). Each step implements transform.Transform: it declares the
// paths it touches and maps one configuration to the next. Compose chains
// steps in order and is itself a Transform.
//
// # Basic Usage
//
//	double, _ := transform.NewFormula(expr.ProductByNum(2),
//	    keypath.Parse("a.c"), keypath.Parse("a.b"))
//	set, _ := transform.NewInsert(keypath.Parse("a.b"), 5)
//
//	pipe, _ := cfgpipe.NewCompose(set, double)
//	out, err := pipe.Apply(map[string]any{})
//	// out == {"a": {"b": 5, "c": 10}}
//
// # Running with Observability
//
// Run applies a Compose with structured logging (log/slog), OpenTelemetry
// metrics and spans, and optional snapshots after every step:
//
//	store, _ := checkpoint.NewSQLiteStore("runs.db")
//	out, err := pipe.Run(ctx, cfg,
//	    cfgpipe.WithRunID("gen-7"),
//	    cfgpipe.WithLogger(slog.Default()),
//	    cfgpipe.WithMetrics(),
//	    cfgpipe.WithCheckpointing(store))
//
// A run interrupted by an error or cancellation continues from its last
// snapshot with Resume:
//
//	out, err = pipe.Resume(ctx, store, "gen-7")
//
// # Errors
//
// Step failures are *TransformError values carrying the step index and
// name; panics become *PanicError. Both keep the underlying error kind
// (package errors) reachable through errors.Is. Nothing is rolled back:
// steps before the failing one keep their effect.
//
// Pipelines can also be declared in YAML and built with package pipeline.
package cfgpipe
