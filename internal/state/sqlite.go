package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite journal store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite handles one writer at a time; a single pooled connection
	// also keeps ":memory:" databases from silently resetting.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// CreateRun opens a new journal entry in the running state at the
// validating stage.
func (s *SQLiteStore) CreateRun(sourcePath, basemapPath string) (*OverlayRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &OverlayRun{
		ID:          generateID(),
		SourcePath:  sourcePath,
		BasemapPath: basemapPath,
		Status:      RunStatusRunning,
		Stage:       StageValidating,
		StartedAt:   time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO overlay_runs (id, source_path, basemap_path, status, stage, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourcePath, run.BasemapPath, run.Status, run.Stage, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// AdvanceStage records the pipeline stage a run has entered.
func (s *SQLiteStore) AdvanceStage(id string, stage Stage) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.Exec(`UPDATE overlay_runs SET stage = ? WHERE id = ?`, stage, id)
	if err != nil {
		return fmt.Errorf("failed to advance stage: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// RecordOutput stores the result details of a run once the point layer
// has been derived.
func (s *SQLiteStore) RecordOutput(id, outputPath string, featureCount int, sourceCRS, targetCRS string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.Exec(
		`UPDATE overlay_runs SET output_path = ?, feature_count = ?, source_crs = ?, target_crs = ? WHERE id = ?`,
		outputPath, featureCount, sourceCRS, targetCRS, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record output: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// CompleteRun closes a journal entry with a terminal status and
// records the total duration.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var startedAt time.Time
	err := s.db.QueryRow(`SELECT started_at FROM overlay_runs WHERE id = ?`, id).Scan(&startedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get run start time: %w", err)
	}

	now := time.Now().UTC()
	durationMS := now.Sub(startedAt).Milliseconds()

	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	_, err = s.db.Exec(
		`UPDATE overlay_runs SET status = ?, completed_at = ?, duration_ms = ?, error = ? WHERE id = ?`,
		status, now, durationMS, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*OverlayRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, source_path, basemap_path, output_path, status, stage,
		        feature_count, source_crs, target_crs, error,
		        started_at, completed_at, duration_ms
		 FROM overlay_runs WHERE id = ?`,
		id,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// GetLatestRun retrieves the most recently started run.
func (s *SQLiteStore) GetLatestRun() (*OverlayRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, source_path, basemap_path, output_path, status, stage,
		        feature_count, source_crs, target_crs, error,
		        started_at, completed_at, duration_ms
		 FROM overlay_runs ORDER BY started_at DESC, id DESC LIMIT 1`,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil // Empty journal, return nil without error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return run, nil
}

// ListRuns retrieves runs ordered newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*OverlayRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, source_path, basemap_path, output_path, status, stage,
	                 feature_count, source_crs, target_crs, error,
	                 started_at, completed_at, duration_ms
	          FROM overlay_runs ORDER BY started_at DESC, id DESC`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*OverlayRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*OverlayRun, error) {
	run := &OverlayRun{}
	var outputPath, sourceCRS, targetCRS, errMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.SourcePath, &run.BasemapPath, &outputPath, &run.Status, &run.Stage,
		&run.FeatureCount, &sourceCRS, &targetCRS, &errMsg,
		&run.StartedAt, &completedAt, &run.DurationMS,
	)
	if err != nil {
		return nil, err
	}

	if outputPath.Valid {
		run.OutputPath = outputPath.String
	}
	if sourceCRS.Valid {
		run.SourceCRS = sourceCRS.String
	}
	if targetCRS.Valid {
		run.TargetCRS = targetCRS.String
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	return run, nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
