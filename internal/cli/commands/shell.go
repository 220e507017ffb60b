package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgeo/internal/cli/picker"
	"github.com/leapstack-labs/leapgeo/internal/session"
	"github.com/leapstack-labs/leapgeo/pkg/format"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive alignment session",
		Long: `Start an interactive session holding a basemap in memory.

The shell keeps the basemap loaded between overlays, so a batch of
building layers can be aligned against it without re-reading the area
layer each time. Commands start with a dot; .help lists them.`,
		Example: `  # Start a shell with the configured basemap preloaded
  leapgeo shell

  # Start against an explicit basemap
  leapgeo shell --basemap data/campus_area.shp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd)
		},
	}

	return cmd
}

func runShell(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	// History lives next to the journal.
	historyDir := filepath.Dir(cfg.JournalPath)
	if cfg.JournalPath == ":memory:" {
		historyDir = ".leapgeo"
	}
	if err := os.MkdirAll(historyDir, 0750); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "leapgeo> ",
		HistoryFile:     filepath.Join(historyDir, "shell_history"),
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "LeapGeo Shell (journal: %s)\n", cfg.JournalPath)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	sh := &shellSession{cmdCtx: cmdCtx, rl: rl, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}

	if cfg.Basemap != "" {
		if err := sh.loadBasemap(cmd.Context(), cfg.Basemap); err != nil {
			r.Warning(fmt.Sprintf("basemap %s: %v", cfg.Basemap, err))
		}
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ".") {
			_, _ = fmt.Fprintln(sh.errOut, "Unknown input (commands start with a dot, try .help)")
			continue
		}
		if quit := sh.handleCommand(cmd.Context(), line); quit {
			break
		}
	}

	return nil
}

// shellSession dispatches dot-commands against one engine session.
// It doubles as the save chooser for overlays started from the shell.
type shellSession struct {
	cmdCtx *CommandContext
	rl     *readline.Instance
	out    io.Writer
	errOut io.Writer
}

// handleCommand runs a single dot-command. Returns true to exit the
// shell. Handler errors are printed and the loop carries on.
func (s *shellSession) handleCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(s.out)

	case ".basemap":
		path, ok := s.resolvePath(parts, "basemap")
		if !ok {
			return false
		}
		if err := s.loadBasemap(ctx, path); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".load":
		if !s.cmdCtx.Engine.GetSession().HasBasemap() {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", &session.NoBasemapError{})
			return false
		}
		path, ok := s.resolvePath(parts, "building layer")
		if !ok {
			return false
		}
		if err := s.runOverlay(ctx, path); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".clear":
		s.cmdCtx.Engine.ClearBasemap()
		s.cmdCtx.Renderer.Muted("session cleared")

	case ".info":
		s.printInfo()

	case ".extent":
		if extent, ok := s.cmdCtx.Engine.GetSession().Extent(); ok {
			_, _ = fmt.Fprintln(s.out, extent.String())
		} else {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", &session.NoBasemapError{})
		}

	case ".formats":
		if err := renderFormatList(s.cmdCtx.Renderer); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".history":
		limit := 10
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				_, _ = fmt.Fprintln(s.errOut, "Usage: .history [n]")
				return false
			}
			limit = n
		}
		if err := renderHistory(s.cmdCtx.Renderer, s.cmdCtx.Engine.GetJournal(), limit); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}

	return false
}

// resolvePath takes the path argument of a dot-command, falling back
// to the interactive file picker when the command was given bare.
func (s *shellSession) resolvePath(parts []string, what string) (string, bool) {
	if len(parts) > 1 {
		return strings.Join(parts[1:], " "), true
	}
	if !s.cmdCtx.Renderer.IsTTY() {
		_, _ = fmt.Fprintf(s.errOut, "Usage: %s <path>\n", parts[0])
		return "", false
	}

	path, ok, err := picker.Choose(".", format.Extensions())
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return "", false
	}
	if !ok {
		s.cmdCtx.Renderer.Muted(fmt.Sprintf("no %s selected", what))
		return "", false
	}
	return path, true
}

func (s *shellSession) loadBasemap(ctx context.Context, path string) error {
	bm, err := s.cmdCtx.Engine.LoadBasemap(ctx, path)
	if err != nil {
		return err
	}

	r := s.cmdCtx.Renderer
	r.Success(fmt.Sprintf("basemap %s (%d features, %s)",
		filepath.Base(bm.Path), bm.FeatureCount, bm.CRS.String()))
	r.Muted("  extent locked to " + bm.Extent.String())
	return nil
}

func (s *shellSession) runOverlay(ctx context.Context, path string) error {
	outcome, err := s.cmdCtx.Engine.LoadOverlay(ctx, path, s)
	if err != nil {
		return err
	}
	printOutcome(s.cmdCtx.Renderer, outcome)
	return nil
}

// ChooseSavePath prompts for the output path on the shell's own
// readline. Interrupt and EOF decline the save.
func (s *shellSession) ChooseSavePath(defaultPath string) (string, bool, error) {
	s.rl.SetPrompt(fmt.Sprintf("save to [%s]: ", defaultPath))
	defer s.rl.SetPrompt("leapgeo> ")

	line, err := s.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
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
}

func (s *shellSession) printInfo() {
	sess := s.cmdCtx.Engine.GetSession()
	if !sess.HasBasemap() {
		s.cmdCtx.Renderer.Muted("no basemap loaded")
		return
	}

	_, _ = fmt.Fprintf(s.out, "Basemap:          %s\n", sess.Path())
	_, _ = fmt.Fprintf(s.out, "Reference system: %s\n", sess.CRS().String())
	_, _ = fmt.Fprintf(s.out, "Features:         %d\n", sess.Basemap().Len())
	if extent, ok := sess.Extent(); ok {
		_, _ = fmt.Fprintf(s.out, "Extent:           %s\n", extent.String())
	}
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .basemap [path]   Load a basemap layer (picker opens without a path)
  .load [path]      Align a building layer against the basemap
  .clear            Drop the basemap and unlock the extent
  .info             Show the current session
  .extent           Show the locked extent
  .formats          List supported layer formats
  .history [n]      Show recent overlay runs (default 10)
  .help             Show this help message
  .quit / .exit     Exit the shell

Tips:
  - Press enter at the save prompt to accept the proposed path
  - Answer "n" at the save prompt to skip writing
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// shellCompleter completes the shell's dot-commands.
func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".basemap"),
		readline.PcItem(".load"),
		readline.PcItem(".clear"),
		readline.PcItem(".info"),
		readline.PcItem(".extent"),
		readline.PcItem(".formats"),
		readline.PcItem(".history"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
