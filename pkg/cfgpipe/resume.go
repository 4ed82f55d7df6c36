package cfgpipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/checkpoint"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/observability"
)

// Resume continues a run from its latest snapshot in store.
//
// The configuration saved after the last completed transform is handed to
// the next one; snapshots keep being written to store. A run whose last
// snapshot follows the final transform returns the saved configuration
// without applying anything.
//
// The snapshot must come from a pipeline with the same number of
// transforms and the same transform name at the snapshot step, otherwise
// Resume fails with ErrPipelineMismatch. Values round-trip through JSON,
// so a whole-valued float is resumed as an int.
func (c *Compose) Resume(ctx context.Context, store checkpoint.Store, runID string, opts ...RunOption) (map[string]any, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	snap, err := checkpoint.Latest(ctx, store, runID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshots, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if snap.Total != len(c.transforms) || snap.Step < 0 || snap.Step >= len(c.transforms) {
		return nil, fmt.Errorf("%w: snapshot step %d of %d, pipeline has %d transforms",
			ErrPipelineMismatch, snap.Step, snap.Total, len(c.transforms))
	}
	if got := c.transforms[snap.Step].Name(); got != snap.Transform {
		return nil, fmt.Errorf("%w: step %d is %q, snapshot has %q",
			ErrPipelineMismatch, snap.Step, got, snap.Transform)
	}

	cfg, err := config.Decode(snap.Config, config.FormatJSON)
	if err != nil {
		return nil, &SnapshotError{Index: snap.Step, Op: "decode", Err: err}
	}

	rc := defaultRunConfig()
	if snap.Pipeline != "" {
		rc.pipeline = snap.Pipeline
	}
	for _, opt := range opts {
		opt(&rc)
	}
	rc.runID = runID
	rc.store = store
	rc.logger = observability.EnrichLogger(rc.logger, rc.pipeline)

	if snap.Done() {
		observability.LogRunComplete(rc.logger, runID, 0, 0)
		return cfg, nil
	}

	observability.LogRunResume(rc.logger, runID, snap.Step+1)
	return c.run(ctx, cfg, snap.Step+1, &rc)
}
