// Package engine orchestrates the geospatial alignment pipeline.
// It owns the session, carries overlay layers through CRS reconciliation
// and centroid extraction, and journals every run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapgeo/internal/session"
	"github.com/leapstack-labs/leapgeo/internal/state"
	"github.com/leapstack-labs/leapgeo/pkg/format"
	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

// Default save layout, matching the field-survey convention the tool
// was built around.
const (
	DefaultSaveSubdir = "zhuhai_bnu_all_point"
	DefaultSaveSuffix = "_point"
)

// Engine drives overlay runs against the current session.
type Engine struct {
	session *session.Session
	store   state.Store
	logger  *slog.Logger

	saveSubdir string
	saveSuffix string
	saveFormat string
}

// Config holds engine configuration.
type Config struct {
	// JournalPath is the path to the SQLite run journal. Empty keeps
	// the journal in memory for the life of the engine.
	JournalPath string
	// SaveSubdir is the subdirectory (under the source layer's
	// directory) where derived point layers are proposed.
	SaveSubdir string
	// SaveSuffix is appended to the source base name for the proposed
	// output file.
	SaveSuffix string
	// SaveFormat overrides the output extension (e.g. "shp",
	// "geojson"). Empty keeps the source layer's extension.
	SaveFormat string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine with an empty session and an open run journal.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	journalPath := cfg.JournalPath
	if journalPath == "" {
		journalPath = ":memory:"
	}
	if journalPath != ":memory:" {
		if dir := filepath.Dir(journalPath); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}
	}

	logger.Debug("initializing engine", "journal", journalPath)

	store := state.NewSQLiteStore()
	if err := store.Open(journalPath); err != nil {
		return nil, fmt.Errorf("failed to open run journal: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate run journal: %w", err)
	}

	saveSubdir := cfg.SaveSubdir
	if saveSubdir == "" {
		saveSubdir = DefaultSaveSubdir
	}
	saveSuffix := cfg.SaveSuffix
	if saveSuffix == "" {
		saveSuffix = DefaultSaveSuffix
	}

	return &Engine{
		session:    session.New(),
		store:      store,
		logger:     logger,
		saveSubdir: saveSubdir,
		saveSuffix: saveSuffix,
		saveFormat: cfg.SaveFormat,
	}, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	if e.store != nil {
		if err := e.store.Close(); err != nil {
			return fmt.Errorf("error closing run journal: %w", err)
		}
	}
	return nil
}

// BasemapInfo summarizes a loaded basemap layer.
type BasemapInfo struct {
	Path         string
	CRS          geom.CRS
	FeatureCount int
	Extent       geom.Extent
}

// LoadBasemap reads a vector layer and installs it as the session
// basemap, locking the session extent to the layer's bounding box.
func (e *Engine) LoadBasemap(ctx context.Context, path string) (*BasemapInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Info("loading basemap", "path", path)

	driver, err := format.ForPath(path)
	if err != nil {
		return nil, err
	}

	ds, err := driver.Read(path)
	if err != nil {
		return nil, err
	}

	extent, err := e.session.SetBasemap(path, ds)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("basemap loaded",
		"path", path, "features", ds.Len(), "crs", ds.CRS.String())

	return &BasemapInfo{
		Path:         path,
		CRS:          ds.CRS,
		FeatureCount: ds.Len(),
		Extent:       extent,
	}, nil
}

// ClearBasemap drops the session basemap and unlocks the extent.
func (e *Engine) ClearBasemap() {
	e.session.Clear()
	e.logger.Debug("session cleared")
}

// GetSession returns the session owned by this engine.
func (e *Engine) GetSession() *session.Session {
	return e.session
}

// GetJournal returns the run journal store.
func (e *Engine) GetJournal() state.Store {
	return e.store
}

// --- Journal helpers ---
//
// The journal is advisory: a failed journal write is logged and the
// overlay run carries on.

func (e *Engine) journalStage(runID string, stage state.Stage) {
	if runID == "" {
		return
	}
	if err := e.store.AdvanceStage(runID, stage); err != nil {
		e.logger.Debug("journal write failed", "run_id", runID, "error", err)
	}
}

func (e *Engine) journalOutput(runID, outputPath string, featureCount int, sourceCRS, targetCRS geom.CRS) {
	if runID == "" {
		return
	}
	if err := e.store.RecordOutput(runID, outputPath, featureCount, sourceCRS.String(), targetCRS.String()); err != nil {
		e.logger.Debug("journal write failed", "run_id", runID, "error", err)
	}
}

func (e *Engine) journalComplete(runID string, status state.RunStatus, errMsg string) {
	if runID == "" {
		return
	}
	if err := e.store.CompleteRun(runID, status, errMsg); err != nil {
		e.logger.Debug("journal write failed", "run_id", runID, "error", err)
	}
}
