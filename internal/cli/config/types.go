// Package config provides configuration management for the LeapGeo CLI.
//
// Configuration is layered, with later layers taking precedence:
// built-in defaults, a leapgeo.yaml project file, LEAPGEO_-prefixed
// environment variables, and command-line flags.
package config

import "github.com/leapstack-labs/leapgeo/internal/engine"

// SaveConfig controls where derived point layers are placed.
type SaveConfig struct {
	Subdir string `koanf:"subdir"`
	Suffix string `koanf:"suffix"`
	Format string `koanf:"format"`
}

// WatchConfig holds settings for the directory watcher.
type WatchConfig struct {
	DebounceMS int  `koanf:"debounce_ms"`
	Recursive  bool `koanf:"recursive"`
}

// Config holds all CLI configuration options.
type Config struct {
	Basemap      string      `koanf:"basemap"`
	JournalPath  string      `koanf:"journal"`
	Verbose      bool        `koanf:"verbose"`
	OutputFormat string      `koanf:"output"`
	Save         SaveConfig  `koanf:"save"`
	Watch        WatchConfig `koanf:"watch"`

	// ProjectRoot is the directory relative paths resolve against.
	// It is derived at load time, never read from the file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values. Save layout defaults are shared with
// the engine so library and CLI callers agree on output placement.
const (
	DefaultJournalPath = ".leapgeo/journal.db"
	DefaultSaveSubdir  = engine.DefaultSaveSubdir
	DefaultSaveSuffix  = engine.DefaultSaveSuffix
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultDebounceMS  = 400
)
