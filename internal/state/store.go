// Package state persists the overlay run journal in SQLite. Every
// overlay pass through the pipeline is recorded as an OverlayRun so
// past alignments can be inspected after the fact.
package state

import "time"

// RunStatus is the lifecycle state of an overlay run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// String returns the status as a plain string.
func (s RunStatus) String() string {
	return string(s)
}

// Stage names the pipeline step an overlay run last reached. A failed
// run keeps the stage it failed in, which is what makes the journal
// useful for diagnosing where an alignment went wrong.
type Stage string

const (
	StageValidating   Stage = "validating"
	StageReconciling  Stage = "reconciling"
	StageExtracting   Stage = "extracting"
	StageAwaitingSave Stage = "awaiting_save"
	StageWriting      Stage = "writing"
)

// String returns the stage as a plain string.
func (s Stage) String() string {
	return string(s)
}

// OverlayRun is one journal entry: a single overlay layer carried
// through reconciliation, centroid extraction, and persistence.
type OverlayRun struct {
	ID           string
	SourcePath   string
	BasemapPath  string
	OutputPath   string
	Status       RunStatus
	Stage        Stage
	FeatureCount int
	SourceCRS    string
	TargetCRS    string
	Error        string
	StartedAt    time.Time
	CompletedAt  *time.Time
	DurationMS   int64
}

// Store is the persistence interface for the overlay run journal.
type Store interface {
	// CreateRun opens a new journal entry in the running state.
	CreateRun(sourcePath, basemapPath string) (*OverlayRun, error)

	// AdvanceStage records the pipeline stage a run has entered.
	AdvanceStage(id string, stage Stage) error

	// RecordOutput stores the result details of a run once the point
	// layer has been derived.
	RecordOutput(id, outputPath string, featureCount int, sourceCRS, targetCRS string) error

	// CompleteRun closes a journal entry with a terminal status.
	CompleteRun(id string, status RunStatus, errMsg string) error

	// GetRun retrieves a run by ID.
	GetRun(id string) (*OverlayRun, error)

	// GetLatestRun retrieves the most recently started run, or nil
	// when the journal is empty.
	GetLatestRun() (*OverlayRun, error)

	// ListRuns retrieves runs ordered newest first. A limit of 0 or
	// less returns all runs.
	ListRuns(limit int) ([]*OverlayRun, error)

	// Close releases the underlying database.
	Close() error
}
