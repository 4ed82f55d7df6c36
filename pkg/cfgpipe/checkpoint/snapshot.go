package checkpoint

import (
	"encoding/json"
	"fmt"
	"time"
)

// Version is the current snapshot format version.
const Version = 1

// Snapshot records the configuration after a completed transform.
//
// Step is the index of that transform within the pipeline; a resumed run
// continues at Step+1. Config holds the configuration as JSON.
type Snapshot struct {
	Version   int             `json:"version"`
	RunID     string          `json:"run_id"`
	Pipeline  string          `json:"pipeline,omitempty"`
	Step      int             `json:"step"`
	Transform string          `json:"transform"`
	Total     int             `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
	Config    json.RawMessage `json:"config"`
}

// New creates a snapshot. config must already be JSON.
func New(runID string, step, total int, transform string, config []byte) *Snapshot {
	return &Snapshot{
		Version:   Version,
		RunID:     runID,
		Step:      step,
		Transform: transform,
		Total:     total,
		Timestamp: time.Now().UTC(),
		Config:    config,
	}
}

// WithPipeline records the pipeline name.
func (s *Snapshot) WithPipeline(name string) *Snapshot {
	s.Pipeline = name
	return s
}

// Done reports whether the snapshot was taken after the last transform.
func (s *Snapshot) Done() bool {
	return s.Step+1 >= s.Total
}

// Marshal serializes the snapshot.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal deserializes a snapshot and checks its version.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrVersionMismatch, s.Version, Version)
	}
	return &s, nil
}
