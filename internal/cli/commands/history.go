package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past overlay runs",
		Long: `List overlay runs recorded in the journal, newest first, with their
status, stage reached, point counts and timing.

Output adapts to environment:
  - Terminal: table output
  - Piped/Scripted: Markdown format
  - JSON: machine-readable format`,
		Example: `  # Show the last 20 runs
  leapgeo history

  # Show all runs as JSON
  leapgeo history -n 0 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return renderHistory(cmdCtx.Renderer, cmdCtx.Engine.GetJournal(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

// renderHistory writes the journal listing. Shared with the shell's
// .history command.
func renderHistory(r *output.Renderer, store state.Store, limit int) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(historyOutput(runs))
	case output.ModeMarkdown:
		return renderHistoryMarkdown(r, runs)
	default:
		return renderHistoryTable(r, runs)
	}
}

func historyOutput(runs []*state.OverlayRun) output.HistoryOutput {
	out := output.HistoryOutput{Runs: make([]output.HistoryRun, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, output.HistoryRun{
			ID:           run.ID,
			SourcePath:   run.SourcePath,
			OutputPath:   run.OutputPath,
			Status:       string(run.Status),
			Stage:        string(run.Stage),
			FeatureCount: run.FeatureCount,
			Error:        run.Error,
			StartedAt:    run.StartedAt,
			CompletedAt:  run.CompletedAt,
			DurationMS:   run.DurationMS,
		})
	}
	return out
}

func renderHistoryTable(r *output.Renderer, runs []*state.OverlayRun) error {
	if len(runs) == 0 {
		r.Muted("no overlay runs recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Status", "Stage", "Source", "Points", "Duration", "Started"})

	for _, run := range runs {
		t.AppendRow(table.Row{
			shortID(run.ID),
			string(run.Status),
			string(run.Stage),
			filepath.Base(run.SourcePath),
			run.FeatureCount,
			formatDurationMS(run.DurationMS),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(r.Writer(), "(%d runs)\n", len(runs))

	return nil
}

func renderHistoryMarkdown(r *output.Renderer, runs []*state.OverlayRun) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Overlay runs (%d)", len(runs))))
	r.Println("")

	for _, run := range runs {
		r.Println(output.FormatHeader(2, shortID(run.ID)))
		r.Println(output.FormatKeyValue("Status", string(run.Status)))
		r.Println(output.FormatKeyValue("Stage", string(run.Stage)))
		r.Println(output.FormatKeyValue("Source", run.SourcePath))
		if run.OutputPath != "" {
			r.Println(output.FormatKeyValue("Output", run.OutputPath))
		}
		if run.FeatureCount > 0 {
			r.Println(output.FormatKeyValue("Points", fmt.Sprintf("%d", run.FeatureCount)))
		}
		if run.Error != "" {
			r.Println(output.FormatKeyValue("Error", run.Error))
		}
		r.Println(output.FormatKeyValue("Started", run.StartedAt.Format(time.RFC3339)))
		r.Println(output.FormatKeyValue("Duration", formatDurationMS(run.DurationMS)))
		r.Println("")
	}

	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDurationMS(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
