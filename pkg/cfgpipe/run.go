package cfgpipe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/checkpoint"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/observability"
)

// Run applies the Compose to cfg like Apply, with logging, metrics,
// tracing and snapshots as configured by opts.
//
// The context is checked before each transform. On failure Run returns the
// configuration as it was handed to the failing transform; transforms
// mutate in place, so it may hold partial changes.
//
//	out, err := pipe.Run(ctx, cfg,
//	    cfgpipe.WithLogger(logger),
//	    cfgpipe.WithCheckpointing(store),
//	    cfgpipe.WithRunID("nightly-42"))
func (c *Compose) Run(ctx context.Context, cfg map[string]any, opts ...RunOption) (map[string]any, error) {
	if ctx == nil {
		return cfg, ErrNilContext
	}
	rc := defaultRunConfig()
	for _, opt := range opts {
		opt(&rc)
	}
	if rc.runID == "" {
		rc.runID = NewRunID()
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}
	rc.logger = observability.EnrichLogger(rc.logger, rc.pipeline)

	observability.LogRunStart(rc.logger, rc.runID, len(c.transforms))
	return c.run(ctx, cfg, 0, &rc)
}

// run applies transforms from start onwards with run-level observability.
func (c *Compose) run(ctx context.Context, cfg map[string]any, start int, rc *runConfig) (result map[string]any, runErr error) {
	elapsed := observability.TimedOperation()
	startTime := time.Now()

	if rc.tracingEnabled {
		var span trace.Span
		ctx, span = rc.spans.StartRunSpan(ctx, rc.pipeline, rc.runID)
		defer func() {
			rc.spans.EndSpanWithError(span, runErr)
		}()
	}

	var applied int
	result, applied, runErr = c.execute(ctx, cfg, start, rc)

	rc.metrics.RecordRun(ctx, runErr == nil, time.Since(startTime))
	if runErr != nil {
		observability.LogRunError(rc.logger, rc.runID, runErr, elapsed(), failedIndex(runErr))
	} else {
		observability.LogRunComplete(rc.logger, rc.runID, elapsed(), applied)
	}
	return result, runErr
}

// execute applies transforms from start onwards and returns the resulting
// configuration and the number of transforms applied.
func (c *Compose) execute(ctx context.Context, cfg map[string]any, start int, rc *runConfig) (map[string]any, int, error) {
	applied := 0
	for i := start; i < len(c.transforms); i++ {
		if err := ctx.Err(); err != nil {
			return cfg, applied, &CancellationError{Index: i, Cause: err}
		}

		t := c.transforms[i]
		name := t.Name()
		observability.LogTransformStart(rc.logger, i, name)

		stepCtx := ctx
		var span trace.Span
		if rc.tracingEnabled {
			stepCtx, span = rc.spans.StartTransformSpan(ctx, i, name)
		}

		stepStart := time.Now()
		out, err := applyStep(i, t, cfg)
		duration := time.Since(stepStart)

		rc.metrics.RecordTransform(stepCtx, name, duration, err)
		if rc.tracingEnabled {
			rc.spans.EndSpanWithError(span, err)
		}
		if err != nil {
			observability.LogTransformError(rc.logger, i, name, err)
			return cfg, applied, err
		}
		observability.LogTransformComplete(rc.logger, i, name, float64(duration.Microseconds())/1000)
		cfg = out
		applied++

		if rc.store != nil {
			if err := c.saveSnapshot(ctx, rc, i, name, cfg); err != nil {
				return cfg, applied, err
			}
		}
	}
	return cfg, applied, nil
}

// saveSnapshot persists cfg as the state after transform i. Failures are
// logged and ignored unless the run treats them as fatal.
func (c *Compose) saveSnapshot(ctx context.Context, rc *runConfig, i int, name string, cfg map[string]any) error {
	fail := func(op string, err error) error {
		if rc.snapshotFailureFatal {
			return &SnapshotError{Index: i, Op: op, Err: err}
		}
		observability.LogSnapshotError(rc.logger, i, op, err)
		return nil
	}

	encoded, err := config.Marshal(cfg, config.FormatJSON, config.EncodeOptions{})
	if err != nil {
		return fail("encode", err)
	}
	data, err := checkpoint.New(rc.runID, i, len(c.transforms), name, encoded).
		WithPipeline(rc.pipeline).
		Marshal()
	if err != nil {
		return fail("marshal", err)
	}
	if err := rc.store.Save(ctx, rc.runID, i, data); err != nil {
		return fail("save", err)
	}

	observability.LogSnapshot(rc.logger, i, len(data))
	rc.metrics.RecordSnapshot(ctx, i, int64(len(data)))
	return nil
}
