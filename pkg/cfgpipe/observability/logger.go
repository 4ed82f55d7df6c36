// Package observability provides structured logging, metrics and tracing
// for cfgpipe runs.
//
// Logging goes through log/slog; metrics and tracing go through
// OpenTelemetry. Every helper accepts a nil logger, and the Noop types stand
// in when metrics or tracing are disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger returns logger with a pipeline field, or nil for a nil
// logger.
func EnrichLogger(logger *slog.Logger, pipeline string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("pipeline", pipeline))
}

// LogRunStart logs the start of a pipeline run.
func LogRunStart(logger *slog.Logger, runID string, transforms int) {
	if logger == nil {
		return
	}
	logger.Info("pipeline run starting",
		slog.String("run_id", runID),
		slog.Int("transforms", transforms),
	)
}

// LogRunResume logs a run continuing from a snapshot.
func LogRunResume(logger *slog.Logger, runID string, fromStep int) {
	if logger == nil {
		return
	}
	logger.Info("pipeline run resuming",
		slog.String("run_id", runID),
		slog.Int("from_step", fromStep),
	)
}

// LogRunComplete logs successful run completion.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, applied int) {
	if logger == nil {
		return
	}
	logger.Info("pipeline run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("transforms_applied", applied),
	)
}

// LogRunError logs run failure. lastStep is the index of the failing
// transform, or -1 when the run failed outside a transform.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64, lastStep int) {
	if logger == nil {
		return
	}
	logger.Error("pipeline run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.Int("last_step", lastStep),
	)
}

// LogTransformStart logs the start of one transform application.
func LogTransformStart(logger *slog.Logger, step int, name string) {
	if logger == nil {
		return
	}
	logger.Debug("transform starting",
		slog.Int("step", step),
		slog.String("transform", name),
	)
}

// LogTransformComplete logs a successful transform application.
func LogTransformComplete(logger *slog.Logger, step int, name string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("transform completed",
		slog.Int("step", step),
		slog.String("transform", name),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTransformError logs a failed transform application.
func LogTransformError(logger *slog.Logger, step int, name string, err error) {
	if logger == nil {
		return
	}
	logger.Error("transform failed",
		slog.Int("step", step),
		slog.String("transform", name),
		slog.String("error", err.Error()),
	)
}

// LogSnapshot logs a saved run snapshot.
func LogSnapshot(logger *slog.Logger, step int, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("snapshot saved",
		slog.Int("step", step),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogSnapshotError logs a snapshot failure that did not stop the run.
func LogSnapshotError(logger *slog.Logger, step int, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("snapshot failed",
		slog.Int("step", step),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation returns a function reporting the milliseconds elapsed
// since TimedOperation was called.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
