package output

import "time"

// RunOutput is the JSON shape of a completed overlay run.
type RunOutput struct {
	RunID        string  `json:"run_id,omitempty"`
	Status       string  `json:"status"`
	Stage        string  `json:"stage"`
	SourcePath   string  `json:"source_path"`
	OutputPath   string  `json:"output_path,omitempty"`
	FeatureCount int     `json:"feature_count"`
	SourceCRS    string  `json:"source_crs,omitempty"`
	TargetCRS    string  `json:"target_crs,omitempty"`
	Reprojected  bool    `json:"reprojected"`
	Message      string  `json:"message,omitempty"`
	DurationSecs float64 `json:"duration_secs"`
}

// ExtentOutput is a bounding box in the coordinate order min-x, min-y,
// max-x, max-y.
type ExtentOutput struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// BasemapOutput describes the currently loaded basemap.
type BasemapOutput struct {
	Path         string        `json:"path"`
	CRS          string        `json:"crs"`
	FeatureCount int           `json:"feature_count"`
	Extent       *ExtentOutput `json:"extent,omitempty"`
}

// InfoOutput summarizes session state for the info command.
type InfoOutput struct {
	BasemapLoaded bool           `json:"basemap_loaded"`
	Basemap       *BasemapOutput `json:"basemap,omitempty"`
	JournalPath   string         `json:"journal_path,omitempty"`
}

// HistoryRun is a single journal entry in history listings.
type HistoryRun struct {
	ID           string     `json:"id"`
	SourcePath   string     `json:"source_path"`
	OutputPath   string     `json:"output_path,omitempty"`
	Status       string     `json:"status"`
	Stage        string     `json:"stage"`
	FeatureCount int        `json:"feature_count"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
}

// HistoryOutput is the JSON shape of the history command.
type HistoryOutput struct {
	Runs []HistoryRun `json:"runs"`
}

// FormatInfo describes one registered layer format.
type FormatInfo struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// FormatsOutput is the JSON shape of the formats command.
type FormatsOutput struct {
	Formats []FormatInfo `json:"formats"`
}

// VersionOutput is the JSON shape of the version command.
type VersionOutput struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
}
