package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgeo/internal/cli/output"
)

const starterConfig = `# LeapGeo project configuration.

# Basemap layer that every building overlay is aligned against.
# basemap: data/campus_area.shp

# Overlay run journal. Use ":memory:" for a throwaway journal.
journal: .leapgeo/journal.db

# Output mode: auto, text, markdown or json.
output: auto

save:
  # Point layers are written to <layer dir>/<subdir>/<name><suffix>.<ext>.
  subdir: zhuhai_bnu_all_point
  suffix: _point
  # Force an output format regardless of the source extension.
  # format: geojson

watch:
  debounce_ms: 400
  recursive: false
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new LeapGeo project",
		Long: `Initialize a new LeapGeo project with a starter configuration.

This creates:
  - leapgeo.yaml configuration file
  - .leapgeo/ directory for the overlay run journal`,
		Example: `  # Initialize in current directory
  leapgeo init

  # Initialize in a new directory
  leapgeo init campus-survey

  # Force overwrite existing config
  leapgeo init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "leapgeo.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("leapgeo.yaml already exists. Use --force to overwrite")
	}

	if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.StatusLine(configPath, "success", "")

	journalDir := filepath.Join(dir, ".leapgeo")
	if err := os.MkdirAll(journalDir, 0750); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	r.StatusLine(journalDir+string(os.PathSeparator), "success", "")

	r.Println("")
	r.Success("LeapGeo project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Point basemap in leapgeo.yaml at your area layer")
	r.Println("  2. Run 'leapgeo run <layer>' to align a building layer")
	r.Println("  3. Run 'leapgeo shell' for an interactive session")
	r.Println("  4. Run 'leapgeo info' to inspect the configured session")

	return nil
}
