package commands

import (
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapgeo/internal/cli/config"
	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/internal/engine"
	"github.com/spf13/cobra"

	// Register the built-in layer format drivers via init()
	_ "github.com/leapstack-labs/leapgeo/pkg/formats/geojson"
	_ "github.com/leapstack-labs/leapgeo/pkg/formats/shapefile"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that need neither the session nor the journal.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		Basemap:      os.Getenv("LEAPGEO_BASEMAP"),
		JournalPath:  getEnvOrDefault("LEAPGEO_JOURNAL", config.DefaultJournalPath),
		Verbose:      os.Getenv("LEAPGEO_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("LEAPGEO_OUTPUT", config.DefaultOutput),
		Save: config.SaveConfig{
			Subdir: config.DefaultSaveSubdir,
			Suffix: config.DefaultSaveSuffix,
			Format: os.Getenv("LEAPGEO_SAVE_FORMAT"),
		},
		Watch: config.WatchConfig{
			DebounceMS: config.DefaultDebounceMS,
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	engineCfg := engine.Config{
		JournalPath: cfg.JournalPath,
		SaveSubdir:  cfg.Save.Subdir,
		SaveSuffix:  cfg.Save.Suffix,
		SaveFormat:  cfg.Save.Format,
		Logger:      logger,
	}

	return engine.New(engineCfg)
}
