package run

import (
	"fmt"

	"sheetagg/domain/core"
)

// RunManifest records what one pipeline run did
type RunManifest struct {
	RunID           core.RunID      `json:"run_id"`
	Fingerprint     RunFingerprint  `json:"fingerprint"`
	WindowFrom      *core.Timestamp `json:"window_from,omitempty"`
	WindowTo        *core.Timestamp `json:"window_to,omitempty"`
	RowsLoaded      int             `json:"rows_loaded"`
	RowsAfterFilter int             `json:"rows_after_filter"`
	Buckets         int             `json:"buckets"`
	OutputColumns   []string        `json:"output_columns"`
	CreatedAt       core.Timestamp  `json:"created_at"`
}

// NewRunManifest creates a manifest for a run; counts are filled in as the
// run progresses.
func NewRunManifest(runID core.RunID, fingerprint RunFingerprint) *RunManifest {
	m := &RunManifest{
		RunID:       runID,
		Fingerprint: fingerprint,
		CreatedAt:   core.Now(),
	}
	if fingerprint.TimeFrom != nil {
		from := core.FromEpochMillis(*fingerprint.TimeFrom)
		m.WindowFrom = &from
	}
	if fingerprint.TimeTo != nil {
		to := core.FromEpochMillis(*fingerprint.TimeTo)
		m.WindowTo = &to
	}
	return m
}

// Validate checks if the manifest is complete
func (r *RunManifest) Validate() error {
	if core.ID(r.RunID).IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if r.Fingerprint.Fingerprint == "" {
		return fmt.Errorf("run manifest: fingerprint cannot be empty")
	}
	if r.RowsAfterFilter > r.RowsLoaded {
		return fmt.Errorf("run manifest: %d rows after filter exceeds %d loaded", r.RowsAfterFilter, r.RowsLoaded)
	}
	return nil
}
