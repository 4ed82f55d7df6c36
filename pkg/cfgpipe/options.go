package cfgpipe

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/checkpoint"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/observability"
)

// runConfig holds configuration for Run and Resume.
type runConfig struct {
	runID                string
	pipeline             string
	logger               *slog.Logger
	metrics              observability.MetricsRecorder
	spans                observability.SpanManager
	tracingEnabled       bool
	store                checkpoint.Store
	snapshotFailureFatal bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		pipeline: "compose",
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
}

// RunOption configures Run and Resume.
type RunOption func(*runConfig)

// NewRunID returns a fresh random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID sets the run ID used in logs, spans and snapshots.
// Default: a new random UUID. Pass the same ID to Resume.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithPipelineName names the pipeline in logs, spans and snapshots.
// Default: "compose".
func WithPipelineName(name string) RunOption {
	return func(c *runConfig) {
		if name != "" {
			c.pipeline = name
		}
	}
}

// WithLogger enables structured logging of the run.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics records OpenTelemetry metrics through the global meter
// provider.
func WithMetrics() RunOption {
	return func(c *runConfig) {
		c.metrics = observability.NewMetricsRecorder()
	}
}

// WithMetricsRecorder records metrics through m.
func WithMetricsRecorder(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing creates a span per run and per transform through the global
// tracer provider.
func WithTracing() RunOption {
	return WithSpanManager(observability.NewSpanManager())
}

// WithSpanManager creates spans through sm.
func WithSpanManager(sm observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if sm != nil {
			c.spans = sm
			c.tracingEnabled = true
		}
	}
}

// WithCheckpointing saves a snapshot of the configuration to store after
// every successful transform, so the run can be resumed.
func WithCheckpointing(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.store = store
	}
}

// WithSnapshotFailureFatal makes a failed snapshot fail the run.
// By default the failure is logged and the run continues.
func WithSnapshotFailureFatal() RunOption {
	return func(c *runConfig) {
		c.snapshotFailureFatal = true
	}
}
