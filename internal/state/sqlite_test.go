package state

import (
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	// Verify tables exist by querying them
	tables := []string{"overlay_runs", "goose_db_version"}
	for _, table := range tables {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
		} else {
			rows.Close()
		}
	}

	version, err := store.GetMigrationVersion()
	if err != nil {
		t.Fatalf("failed to get migration version: %v", err)
	}
	if version < 1 {
		t.Errorf("expected migration version >= 1, got %d", version)
	}
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, store *SQLiteStore) *OverlayRun
		operation func(t *testing.T, store *SQLiteStore, run *OverlayRun)
		verify    func(t *testing.T, store *SQLiteStore, run *OverlayRun)
	}{
		{
			name: "create run",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				run, err := store.CreateRun("buildings.shp", "basemap.shp")
				if err != nil {
					t.Fatalf("failed to create run: %v", err)
				}
				return run
			},
			verify: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				if run.ID == "" {
					t.Error("run ID should not be empty")
				}
				if run.SourcePath != "buildings.shp" {
					t.Errorf("expected source 'buildings.shp', got %q", run.SourcePath)
				}
				if run.BasemapPath != "basemap.shp" {
					t.Errorf("expected basemap 'basemap.shp', got %q", run.BasemapPath)
				}
				if run.Status != RunStatusRunning {
					t.Errorf("expected status 'running', got %q", run.Status)
				}
				if run.Stage != StageValidating {
					t.Errorf("expected stage 'validating', got %q", run.Stage)
				}
			},
		},
		{
			name: "get run",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				run, err := store.CreateRun("parcels.geojson", "base.geojson")
				if err != nil {
					t.Fatalf("failed to create run: %v", err)
				}
				return run
			},
			operation: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				retrieved, err := store.GetRun(run.ID)
				if err != nil {
					t.Fatalf("failed to get run: %v", err)
				}
				if retrieved.ID != run.ID {
					t.Errorf("expected ID %q, got %q", run.ID, retrieved.ID)
				}
				if retrieved.SourcePath != "parcels.geojson" {
					t.Errorf("expected source 'parcels.geojson', got %q", retrieved.SourcePath)
				}
			},
		},
		{
			name: "get run not found",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				return nil
			},
			operation: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				_, err := store.GetRun("nonexistent-id")
				if err == nil {
					t.Error("expected error for nonexistent run")
				}
			},
		},
		{
			name: "advance stage",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				run, _ := store.CreateRun("a.shp", "b.shp")
				return run
			},
			operation: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				for _, stage := range []Stage{StageReconciling, StageExtracting, StageAwaitingSave} {
					if err := store.AdvanceStage(run.ID, stage); err != nil {
						t.Fatalf("failed to advance to %s: %v", stage, err)
					}
				}
			},
			verify: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				retrieved, _ := store.GetRun(run.ID)
				if retrieved.Stage != StageAwaitingSave {
					t.Errorf("expected stage 'awaiting_save', got %q", retrieved.Stage)
				}
				if retrieved.Status != RunStatusRunning {
					t.Errorf("advancing stage should not change status, got %q", retrieved.Status)
				}
			},
		},
		{
			name: "advance stage not found",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				return nil
			},
			operation: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				err := store.AdvanceStage("nonexistent-id", StageWriting)
				if err == nil {
					t.Error("expected error for nonexistent run")
				}
			},
		},
		{
			name: "record output",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				run, _ := store.CreateRun("bld.shp", "base.shp")
				return run
			},
			operation: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				err := store.RecordOutput(run.ID, "out/bld_point.shp", 42, "EPSG:3857", "EPSG:4326")
				if err != nil {
					t.Fatalf("failed to record output: %v", err)
				}
			},
			verify: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				retrieved, _ := store.GetRun(run.ID)
				if retrieved.OutputPath != "out/bld_point.shp" {
					t.Errorf("expected output path 'out/bld_point.shp', got %q", retrieved.OutputPath)
				}
				if retrieved.FeatureCount != 42 {
					t.Errorf("expected feature count 42, got %d", retrieved.FeatureCount)
				}
				if retrieved.SourceCRS != "EPSG:3857" {
					t.Errorf("expected source CRS 'EPSG:3857', got %q", retrieved.SourceCRS)
				}
				if retrieved.TargetCRS != "EPSG:4326" {
					t.Errorf("expected target CRS 'EPSG:4326', got %q", retrieved.TargetCRS)
				}
			},
		},
		{
			name: "complete run success",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				run, _ := store.CreateRun("a.shp", "b.shp")
				return run
			},
			operation: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				err := store.CompleteRun(run.ID, RunStatusCompleted, "")
				if err != nil {
					t.Fatalf("failed to complete run: %v", err)
				}
			},
			verify: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				retrieved, _ := store.GetRun(run.ID)
				if retrieved.Status != RunStatusCompleted {
					t.Errorf("expected status 'completed', got %q", retrieved.Status)
				}
				if retrieved.CompletedAt == nil {
					t.Error("completed_at should not be nil")
				}
				if retrieved.Error != "" {
					t.Errorf("expected no error message, got %q", retrieved.Error)
				}
			},
		},
		{
			name: "complete run with error",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				run, _ := store.CreateRun("a.shp", "b.shp")
				return run
			},
			operation: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				err := store.CompleteRun(run.ID, RunStatusFailed, "reference system mismatch")
				if err != nil {
					t.Fatalf("failed to complete run: %v", err)
				}
			},
			verify: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				retrieved, _ := store.GetRun(run.ID)
				if retrieved.Status != RunStatusFailed {
					t.Errorf("expected status 'failed', got %q", retrieved.Status)
				}
				if retrieved.Error != "reference system mismatch" {
					t.Errorf("expected error message, got %q", retrieved.Error)
				}
			},
		},
		{
			name: "complete run cancelled",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				run, _ := store.CreateRun("a.shp", "b.shp")
				return run
			},
			operation: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				err := store.CompleteRun(run.ID, RunStatusCancelled, "")
				if err != nil {
					t.Fatalf("failed to cancel run: %v", err)
				}
			},
			verify: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				retrieved, _ := store.GetRun(run.ID)
				if retrieved.Status != RunStatusCancelled {
					t.Errorf("expected status 'cancelled', got %q", retrieved.Status)
				}
			},
		},
		{
			name: "get latest run",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				store.CreateRun("first.shp", "base.shp")
				time.Sleep(10 * time.Millisecond)
				run2, _ := store.CreateRun("second.shp", "base.shp")
				return run2
			},
			verify: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				latest, err := store.GetLatestRun()
				if err != nil {
					t.Fatalf("failed to get latest run: %v", err)
				}
				if latest.ID != run.ID {
					t.Errorf("expected latest run ID %q, got %q", run.ID, latest.ID)
				}
			},
		},
		{
			name: "get latest run empty journal",
			setup: func(t *testing.T, store *SQLiteStore) *OverlayRun {
				return nil
			},
			verify: func(t *testing.T, store *SQLiteStore, run *OverlayRun) {
				latest, err := store.GetLatestRun()
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if latest != nil {
					t.Error("expected nil for empty journal")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			defer store.Close()

			var run *OverlayRun
			if tt.setup != nil {
				run = tt.setup(t, store)
			}
			if tt.operation != nil {
				tt.operation(t, store, run)
			}
			if tt.verify != nil {
				tt.verify(t, store, run)
			}
		})
	}
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	sources := []string{"a.shp", "b.shp", "c.shp"}
	for _, src := range sources {
		if _, err := store.CreateRun(src, "base.shp"); err != nil {
			t.Fatalf("failed to create run for %s: %v", src, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	all, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if all[0].SourcePath != "c.shp" {
		t.Errorf("expected newest run first, got %q", all[0].SourcePath)
	}
	if all[2].SourcePath != "a.shp" {
		t.Errorf("expected oldest run last, got %q", all[2].SourcePath)
	}

	limited, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("failed to list runs with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(limited))
	}
	if limited[0].SourcePath != "c.shp" || limited[1].SourcePath != "b.shp" {
		t.Errorf("unexpected limited ordering: %q, %q", limited[0].SourcePath, limited[1].SourcePath)
	}
}

func TestSQLiteStore_FileBacked(t *testing.T) {
	path := t.TempDir() + "/journal.db"

	store := NewSQLiteStore()
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	run, err := store.CreateRun("bld.shp", "base.shp")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if err := store.CompleteRun(run.ID, RunStatusCompleted, ""); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	// Reopen and confirm the journal survived.
	reopened := NewSQLiteStore()
	if err := reopened.Open(path); err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Migrate(); err != nil {
		t.Fatalf("failed to re-migrate: %v", err)
	}

	retrieved, err := reopened.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run after reopen: %v", err)
	}
	if retrieved.Status != RunStatusCompleted {
		t.Errorf("expected status 'completed' after reopen, got %q", retrieved.Status)
	}
}
