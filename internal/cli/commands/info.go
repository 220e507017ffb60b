package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgeo/internal/cli/config"
	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/internal/engine"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured basemap and journal",
		Long: `Show the effective configuration: the basemap (loaded and inspected when
configured), its reference system and locked extent, and the journal location.

Output adapts to environment:
  - Terminal: table output
  - Piped/Scripted: Markdown format
  - JSON: machine-readable format`,
		Example: `  # Inspect the configured basemap
  leapgeo info --basemap campus.shp

  # As JSON
  leapgeo info -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd)
		},
	}
}

func runInfo(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	info := output.InfoOutput{JournalPath: cfg.JournalPath}
	if cfg.Basemap != "" {
		bm, err := cmdCtx.Engine.LoadBasemap(cmd.Context(), cfg.Basemap)
		if err != nil {
			return fmt.Errorf("loading basemap: %w", err)
		}
		info.BasemapLoaded = true
		info.Basemap = basemapOutput(bm)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeMarkdown:
		return renderInfoMarkdown(r, cfg, info)
	default:
		return renderInfoText(r, cfg, info)
	}
}

// basemapOutput converts engine basemap info to its output shape.
func basemapOutput(bm *engine.BasemapInfo) *output.BasemapOutput {
	return &output.BasemapOutput{
		Path:         bm.Path,
		CRS:          bm.CRS.String(),
		FeatureCount: bm.FeatureCount,
		Extent: &output.ExtentOutput{
			MinX: bm.Extent.MinX,
			MinY: bm.Extent.MinY,
			MaxX: bm.Extent.MaxX,
			MaxY: bm.Extent.MaxY,
		},
	}
}

func renderInfoText(r *output.Renderer, cfg *config.Config, info output.InfoOutput) error {
	r.Header(1, "LeapGeo session")

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Property", "Value"})

	if info.Basemap != nil {
		t.AppendRow(table.Row{"Basemap", info.Basemap.Path})
		t.AppendRow(table.Row{"Reference system", info.Basemap.CRS})
		t.AppendRow(table.Row{"Features", info.Basemap.FeatureCount})
		t.AppendRow(table.Row{"Extent", extentString(info.Basemap.Extent)})
	} else {
		t.AppendRow(table.Row{"Basemap", "not configured"})
	}
	t.AppendRow(table.Row{"Journal", info.JournalPath})
	t.AppendRow(table.Row{"Save layout", saveLayoutString(cfg)})
	if configFile := config.GetConfigFileUsed(); configFile != "" {
		t.AppendRow(table.Row{"Config file", configFile})
	}
	t.Render()

	return nil
}

func renderInfoMarkdown(r *output.Renderer, cfg *config.Config, info output.InfoOutput) error {
	r.Println(output.FormatHeader(1, "LeapGeo session"))
	r.Println("")

	if info.Basemap != nil {
		r.Println(output.FormatKeyValue("Basemap", info.Basemap.Path))
		r.Println(output.FormatKeyValue("Reference system", info.Basemap.CRS))
		r.Println(output.FormatKeyValue("Features", fmt.Sprintf("%d", info.Basemap.FeatureCount)))
		r.Println(output.FormatKeyValue("Extent", extentString(info.Basemap.Extent)))
	} else {
		r.Println(output.FormatKeyValue("Basemap", "not configured"))
	}
	r.Println(output.FormatKeyValue("Journal", info.JournalPath))
	r.Println(output.FormatKeyValue("Save layout", saveLayoutString(cfg)))
	if configFile := config.GetConfigFileUsed(); configFile != "" {
		r.Println(output.FormatKeyValue("Config file", configFile))
	}

	return nil
}

func extentString(e *output.ExtentOutput) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("x [%g, %g] y [%g, %g]", e.MinX, e.MaxX, e.MinY, e.MaxY)
}

func saveLayoutString(cfg *config.Config) string {
	ext := "<source ext>"
	if cfg.Save.Format != "" {
		ext = strings.TrimPrefix(cfg.Save.Format, ".")
	}
	return fmt.Sprintf("<dir>/%s/<base>%s.%s", cfg.Save.Subdir, cfg.Save.Suffix, ext)
}
