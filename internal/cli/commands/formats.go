package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/pkg/format"
)

// NewFormatsCommand creates the formats command.
func NewFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List registered layer formats",
		Long: `List the vector file formats this build can read and write.

Output adapts to environment:
  - Terminal: table output
  - Piped/Scripted: Markdown format
  - JSON: machine-readable format`,
		Example: `  # List formats
  leapgeo formats

  # As JSON
  leapgeo formats -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			return renderFormatList(cmdCtx.Renderer)
		},
	}
}

// renderFormatList writes the registry contents. Shared with the
// shell's .formats command.
func renderFormatList(r *output.Renderer) error {
	names := format.List()
	infos := make([]output.FormatInfo, 0, len(names))
	for _, name := range names {
		d, ok := format.ForName(name)
		if !ok {
			continue
		}
		infos = append(infos, output.FormatInfo{Name: name, Extensions: d.Extensions()})
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.FormatsOutput{Formats: infos})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Layer formats"))
		r.Println("")
		for _, f := range infos {
			r.Println(output.FormatKeyValue(f.Name, strings.Join(f.Extensions, ", ")))
		}
		return nil
	default:
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Format", "Extensions"})
		for _, f := range infos {
			t.AppendRow(table.Row{f.Name, strings.Join(f.Extensions, ", ")})
		}
		t.Render()
		return nil
	}
}
