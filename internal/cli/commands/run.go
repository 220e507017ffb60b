package commands

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/internal/engine"
	"github.com/leapstack-labs/leapgeo/internal/state"
	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Yes    bool
	SaveAs string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <layer>",
		Short: "Align a building layer and save its point layer",
		Long: `Run the alignment pipeline on a building layer.

The layer is validated against the configured basemap, reprojected to
the basemap's reference system when they differ, and reduced to one
centroid point per building. The derived point layer is saved next to
the source layer under the configured save subdirectory.

On a terminal the proposed output path is shown for confirmation;
press enter to accept it, type another path to redirect the save, or
answer "n" to skip the save. Piped and scripted invocations accept the
proposed path automatically.`,
		Example: `  # Align a layer against the configured basemap
  leapgeo run survey/buildings.shp

  # Accept the proposed output path without prompting
  leapgeo run survey/buildings.shp --yes

  # Write the point layer to an explicit path
  leapgeo run survey/buildings.shp --save-as out/points.geojson

  # Machine-readable result for scripting
  leapgeo run survey/buildings.shp -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Accept the proposed output path without prompting")
	cmd.Flags().StringVar(&opts.SaveAs, "save-as", "", "Write the point layer to this path")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions, layerPath string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	if cfg.Basemap == "" {
		return fmt.Errorf("no basemap configured: set basemap in leapgeo.yaml or pass --basemap")
	}

	jsonMode := r.EffectiveMode() == output.ModeJSON

	if jsonMode {
		if _, err := eng.LoadBasemap(cmd.Context(), cfg.Basemap); err != nil {
			return fmt.Errorf("loading basemap: %w", err)
		}
	} else {
		sp := r.NewSpinner(fmt.Sprintf("loading basemap %s", filepath.Base(cfg.Basemap)))
		sp.Start()
		bm, err := eng.LoadBasemap(cmd.Context(), cfg.Basemap)
		if err != nil {
			sp.Fail(fmt.Sprintf("basemap %s: %v", cfg.Basemap, err))
			return err
		}
		sp.Success(fmt.Sprintf("basemap %s (%d features, %s)",
			filepath.Base(bm.Path), bm.FeatureCount, bm.CRS.String()))
	}

	chooser := resolveChooser(cmd, r, opts)

	outcome, err := eng.LoadOverlay(cmd.Context(), layerPath, chooser)

	if jsonMode {
		if outcome != nil {
			if jerr := r.JSON(runOutput(outcome)); jerr != nil {
				return jerr
			}
		}
		return err
	}

	if err != nil {
		return err
	}
	printOutcome(r, outcome)
	return nil
}

// resolveChooser picks how the output path gets confirmed: an explicit
// --save-as wins, --yes and non-interactive streams accept the
// proposal, and a terminal gets a prompt.
func resolveChooser(cmd *cobra.Command, r *output.Renderer, opts *RunOptions) engine.SaveChooser {
	if opts.SaveAs != "" {
		saveAs := opts.SaveAs
		return engine.SaveChooserFunc(func(string) (string, bool, error) {
			return saveAs, true, nil
		})
	}
	if opts.Yes || !r.IsTTY() {
		return engine.AcceptDefault
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return engine.SaveChooserFunc(func(defaultPath string) (string, bool, error) {
		fmt.Fprintf(r.Writer(), "Save point layer to [%s]: ", defaultPath)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			// Closed input declines the save.
			return "", false, nil
		}
		answer := strings.TrimSpace(line)
		switch {
		case answer == "":
			return defaultPath, true, nil
		case strings.EqualFold(answer, "n") || strings.EqualFold(answer, "no"):
			return "", false, nil
		default:
			return answer, true, nil
		}
	})
}

// printOutcome writes the text rendering of a finished overlay run.
// Shared with the shell and watch commands.
func printOutcome(r *output.Renderer, outcome *engine.OverlayOutcome) {
	switch outcome.Status {
	case state.RunStatusCompleted:
		r.Success(fmt.Sprintf("wrote %d point(s) to %s", outcome.FeatureCount, outcome.OutputPath))
		if outcome.Reprojected {
			r.Muted(fmt.Sprintf("  reprojected %s to %s",
				outcome.SourceCRS.String(), outcome.TargetCRS.String()))
		}
		if outcome.RunID != "" {
			r.Muted(fmt.Sprintf("  run %s in %s", shortID(outcome.RunID), outcome.Duration.Round(time.Millisecond)))
		}
	case state.RunStatusCancelled:
		r.Warning(outcome.Message)
	default:
		r.Printf("run %s: %s\n", shortID(outcome.RunID), outcome.Message)
	}
}

// crsValue renders a CRS for JSON output, leaving the undefined CRS
// empty so omitempty drops it.
func crsValue(c geom.CRS) string {
	if c.IsUndefined() {
		return ""
	}
	return c.String()
}

// runOutput maps an overlay outcome onto its JSON shape.
func runOutput(o *engine.OverlayOutcome) output.RunOutput {
	return output.RunOutput{
		RunID:        o.RunID,
		Status:       string(o.Status),
		Stage:        string(o.Stage),
		SourcePath:   o.SourcePath,
		OutputPath:   o.OutputPath,
		FeatureCount: o.FeatureCount,
		SourceCRS:    crsValue(o.SourceCRS),
		TargetCRS:    crsValue(o.TargetCRS),
		Reprojected:  o.Reprojected,
		Message:      o.Message,
		DurationSecs: o.Duration.Seconds(),
	}
}
