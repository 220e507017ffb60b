package engine

// overlay.go - the overlay run state machine:
// validating -> reconciling -> extracting -> awaiting_save -> writing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/leapgeo/internal/session"
	"github.com/leapstack-labs/leapgeo/internal/state"
	"github.com/leapstack-labs/leapgeo/pkg/crs"
	"github.com/leapstack-labs/leapgeo/pkg/format"
	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

// SaveChooser decides where a derived point layer is written. The
// engine proposes a default path; the chooser confirms it, replaces
// it, or declines the save altogether.
type SaveChooser interface {
	// ChooseSavePath returns the path to write to. ok is false when
	// the caller declines the save.
	ChooseSavePath(defaultPath string) (path string, ok bool, err error)
}

// SaveChooserFunc adapts a function to the SaveChooser interface.
type SaveChooserFunc func(defaultPath string) (string, bool, error)

// ChooseSavePath calls f.
func (f SaveChooserFunc) ChooseSavePath(defaultPath string) (string, bool, error) {
	return f(defaultPath)
}

// AcceptDefault is a SaveChooser that accepts the proposed default
// path unchanged. Non-interactive callers (watch mode) use it.
var AcceptDefault SaveChooser = SaveChooserFunc(func(defaultPath string) (string, bool, error) {
	return defaultPath, true, nil
})

// OverlayOutcome reports how an overlay run ended.
type OverlayOutcome struct {
	RunID        string
	Status       state.RunStatus
	Stage        state.Stage
	SourcePath   string
	OutputPath   string
	FeatureCount int
	SourceCRS    geom.CRS
	TargetCRS    geom.CRS
	Reprojected  bool
	Message      string
	Duration     time.Duration
}

// LoadOverlay carries one overlay layer through the alignment
// pipeline: validate against the session, reconcile to the basemap's
// CRS, derive centroids, let the chooser pick the output path, and
// write the point layer.
//
// Failures end the run with status failed and are returned as errors.
// Declined saves and cancelled contexts end the run with status
// cancelled and a nil error; nothing is written. The session is never
// modified by an overlay run.
func (e *Engine) LoadOverlay(ctx context.Context, path string, chooser SaveChooser) (*OverlayOutcome, error) {
	if chooser == nil {
		chooser = AcceptDefault
	}

	e.logger.Info("starting overlay", "source", path)
	start := time.Now()

	var runID string
	if run, err := e.store.CreateRun(path, e.session.Path()); err != nil {
		e.logger.Warn("journal unavailable, continuing without it", "error", err)
	} else {
		runID = run.ID
	}

	// Validating
	if !e.session.HasBasemap() {
		return e.failOverlay(runID, state.StageValidating, path, start, &session.NoBasemapError{})
	}
	driver, err := format.ForPath(path)
	if err != nil {
		return e.failOverlay(runID, state.StageValidating, path, start, err)
	}
	if ctx.Err() != nil {
		return e.cancelOverlay(runID, state.StageValidating, path, start, "context cancelled")
	}

	// Reconciling
	e.journalStage(runID, state.StageReconciling)

	ds, err := driver.Read(path)
	if err != nil {
		return e.failOverlay(runID, state.StageReconciling, path, start, err)
	}
	if ds.Len() == 0 {
		return e.failOverlay(runID, state.StageReconciling, path, start,
			&geom.EmptyDatasetError{Reason: "overlay layer has no features"})
	}

	target := e.session.CRS()
	reconciled, err := crs.Reconcile(ds, target)
	if err != nil {
		return e.failOverlay(runID, state.StageReconciling, path, start, err)
	}
	reprojected := reconciled != ds
	if reprojected {
		e.logger.Debug("overlay reprojected", "from", ds.CRS.String(), "to", target.String())
	}
	if ctx.Err() != nil {
		return e.cancelOverlay(runID, state.StageReconciling, path, start, "context cancelled")
	}

	// Extracting
	e.journalStage(runID, state.StageExtracting)

	points, err := geom.Centroids(reconciled)
	if err != nil {
		return e.failOverlay(runID, state.StageExtracting, path, start, err)
	}
	if points.Len() == 0 {
		return e.failOverlay(runID, state.StageExtracting, path, start,
			&geom.EmptyDatasetError{Reason: "no centroids derived: all overlay geometries are empty"})
	}
	e.journalOutput(runID, "", points.Len(), ds.CRS, target)
	if ctx.Err() != nil {
		return e.cancelOverlay(runID, state.StageExtracting, path, start, "context cancelled")
	}

	// AwaitingSaveChoice
	e.journalStage(runID, state.StageAwaitingSave)

	defaultPath := e.DefaultSavePath(path)
	if err := os.MkdirAll(filepath.Dir(defaultPath), 0750); err != nil {
		return e.failOverlay(runID, state.StageAwaitingSave, path, start,
			fmt.Errorf("failed to create output directory: %w", err))
	}

	chosen, ok, err := chooser.ChooseSavePath(defaultPath)
	if err != nil {
		return e.failOverlay(runID, state.StageAwaitingSave, path, start, err)
	}
	if !ok {
		return e.cancelOverlay(runID, state.StageAwaitingSave, path, start, "save cancelled")
	}
	if ctx.Err() != nil {
		return e.cancelOverlay(runID, state.StageAwaitingSave, path, start, "context cancelled")
	}

	// Writing
	e.journalStage(runID, state.StageWriting)

	writer, err := format.ForPath(chosen)
	if err != nil {
		return e.failOverlay(runID, state.StageWriting, path, start, err)
	}
	if err := writer.Write(chosen, points); err != nil {
		return e.failOverlay(runID, state.StageWriting, path, start, err)
	}

	e.journalOutput(runID, chosen, points.Len(), ds.CRS, target)
	e.journalComplete(runID, state.RunStatusCompleted, "")

	e.logger.Info("overlay completed",
		"run_id", runID, "output", chosen, "features", points.Len())

	return &OverlayOutcome{
		RunID:        runID,
		Status:       state.RunStatusCompleted,
		Stage:        state.StageWriting,
		SourcePath:   path,
		OutputPath:   chosen,
		FeatureCount: points.Len(),
		SourceCRS:    ds.CRS,
		TargetCRS:    target,
		Reprojected:  reprojected,
		Message:      fmt.Sprintf("wrote %d point(s)", points.Len()),
		Duration:     time.Since(start),
	}, nil
}

// failOverlay closes the run as failed and returns the outcome
// alongside the error that caused it.
func (e *Engine) failOverlay(runID string, stage state.Stage, sourcePath string, start time.Time, err error) (*OverlayOutcome, error) {
	e.logger.Info("overlay failed",
		"run_id", runID, "stage", stage.String(), "error", err.Error())
	e.journalComplete(runID, state.RunStatusFailed, err.Error())

	return &OverlayOutcome{
		RunID:      runID,
		Status:     state.RunStatusFailed,
		Stage:      stage,
		SourcePath: sourcePath,
		Message:    err.Error(),
		Duration:   time.Since(start),
	}, err
}

// cancelOverlay closes the run as cancelled. Cancellation is not an
// error: nothing was written and nothing failed.
func (e *Engine) cancelOverlay(runID string, stage state.Stage, sourcePath string, start time.Time, reason string) (*OverlayOutcome, error) {
	e.logger.Info("overlay cancelled",
		"run_id", runID, "stage", stage.String(), "reason", reason)
	e.journalComplete(runID, state.RunStatusCancelled, "")

	return &OverlayOutcome{
		RunID:      runID,
		Status:     state.RunStatusCancelled,
		Stage:      stage,
		SourcePath: sourcePath,
		Message:    reason,
		Duration:   time.Since(start),
	}, nil
}
