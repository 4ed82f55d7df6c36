package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

// MeterName is the instrumentation scope of cfgpipe metrics.
const MeterName = "cfgpipe"

// MetricsRecorder records cfgpipe metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordTransform records one transform application.
	RecordTransform(ctx context.Context, name string, duration time.Duration, err error)

	// RecordRun records a finished pipeline run.
	RecordRun(ctx context.Context, success bool, duration time.Duration)

	// RecordSnapshot records a saved snapshot.
	RecordSnapshot(ctx context.Context, step int, sizeBytes int64)
}

type otelMetrics struct {
	applications metric.Int64Counter
	latency      metric.Float64Histogram
	errors       metric.Int64Counter
	runs         metric.Int64Counter
	runLatency   metric.Float64Histogram
	snapshotSize metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter(MeterName)

	applications, err := meter.Int64Counter("cfgpipe.transform.applications",
		metric.WithDescription("Number of transform applications"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("cfgpipe.transform.latency_ms",
		metric.WithDescription("Transform application latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter("cfgpipe.transform.errors",
		metric.WithDescription("Number of failed transform applications"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter("cfgpipe.pipeline.runs",
		metric.WithDescription("Number of pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("cfgpipe.pipeline.latency_ms",
		metric.WithDescription("Pipeline run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	snapshotSize, err := meter.Int64Histogram("cfgpipe.snapshot.size_bytes",
		metric.WithDescription("Run snapshot size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		applications: applications,
		latency:      latency,
		errors:       errs,
		runs:         runs,
		runLatency:   runLatency,
		snapshotSize: snapshotSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider, or NoopMetrics if the instruments cannot be created.
// Set the provider with otel.SetMeterProvider before the first call.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordTransform(ctx context.Context, name string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("transform", name))

	m.applications.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if err != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("transform", name),
			attribute.String("kind", cerrors.KindOf(err).String()),
		))
	}
}

func (m *otelMetrics) RecordRun(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.runs.Add(ctx, 1, attrs)
	m.runLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (m *otelMetrics) RecordSnapshot(ctx context.Context, step int, sizeBytes int64) {
	m.snapshotSize.Record(ctx, sizeBytes, metric.WithAttributes(attribute.Int("step", step)))
}
