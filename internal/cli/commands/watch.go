package commands

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/internal/engine"
	"github.com/leapstack-labs/leapgeo/pkg/format"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Recursive  bool
	DebounceMS int
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Align building layers as they appear in a directory",
		Long: `Watch a directory and run the alignment pipeline on every layer
file created or modified in it.

Each changed layer is aligned against the configured basemap and its
point layer is written to the proposed default path without prompting.
Derived point layers are ignored, so a run never re-triggers itself.
Events are debounced per file to let slow copies finish before the
pipeline reads them.`,
		Example: `  # Watch a survey drop directory
  leapgeo watch incoming/

  # Watch a directory tree with a longer quiet period
  leapgeo watch incoming/ --recursive --debounce 1000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "Watch subdirectories too")
	cmd.Flags().IntVar(&opts.DebounceMS, "debounce", 0, "Quiet period in milliseconds before a changed file is processed (0 uses config)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions, root string) error {
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

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", root)
	}

	jsonMode := r.EffectiveMode() == output.ModeJSON

	bm, err := eng.LoadBasemap(cmd.Context(), cfg.Basemap)
	if err != nil {
		return fmt.Errorf("loading basemap: %w", err)
	}
	if !jsonMode {
		r.Success(fmt.Sprintf("basemap %s (%d features, %s)",
			filepath.Base(bm.Path), bm.FeatureCount, bm.CRS.String()))
	}

	recursive := opts.Recursive || cfg.Watch.Recursive
	debounceMS := opts.DebounceMS
	if debounceMS <= 0 {
		debounceMS = cfg.Watch.DebounceMS
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addWatches(watcher, root, recursive, cfg.Save.Subdir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hits := make(chan string, 32)
	deb := newDebouncer(time.Duration(debounceMS)*time.Millisecond, hits)

	if !jsonMode {
		r.Printf("watching %s (debounce %dms)\n", root, debounceMS)
		r.Muted("Ctrl+C to stop")
	}

	cmdCtx.Logger.Info("watch started",
		"root", root, "recursive", recursive, "debounce_ms", debounceMS)

	for {
		select {
		case <-ctx.Done():
			if !jsonMode {
				r.Muted("watch stopped")
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			path := event.Name
			if fi, err := os.Stat(path); err == nil && fi.IsDir() {
				if recursive && event.Op&fsnotify.Create != 0 && !skipWatchDir(path, cfg.Save.Subdir) {
					if err := watcher.Add(path); err != nil {
						cmdCtx.Logger.Warn("cannot watch new directory", "path", path, "error", err)
					}
				}
				continue
			}
			if _, err := format.ForPath(path); err != nil {
				continue
			}
			if underSaveSubdir(path, cfg.Save.Subdir) {
				continue
			}
			deb.bump(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)

		case path := <-hits:
			outcome, err := eng.LoadOverlay(ctx, path, engine.AcceptDefault)
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", path, err)
				continue
			}
			if jsonMode {
				if err := r.JSON(runOutput(outcome)); err != nil {
					return err
				}
			} else {
				printOutcome(r, outcome)
			}
		}
	}
}

// addWatches registers the root directory, and its subdirectories in
// recursive mode. Dot-directories and save subdirectories are skipped.
func addWatches(watcher *fsnotify.Watcher, root string, recursive bool, saveSubdir string) error {
	if !recursive {
		return watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipWatchDir(path, saveSubdir) {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
}

func skipWatchDir(path, saveSubdir string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || base == saveSubdir
}

// underSaveSubdir reports whether path sits inside a save
// subdirectory, so derived point layers never re-trigger a run.
func underSaveSubdir(path, saveSubdir string) bool {
	dir := filepath.ToSlash(filepath.Dir(path))
	for _, part := range strings.Split(dir, "/") {
		if part == saveSubdir {
			return true
		}
	}
	return false
}

// debouncer coalesces bursts of filesystem events per path. A path is
// emitted on hits once it has been quiet for the full window.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timers map[string]*time.Timer
	hits   chan<- string
}

func newDebouncer(window time.Duration, hits chan<- string) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
		hits:   hits,
	}
}

// bump restarts the quiet-period timer for a path.
func (d *debouncer) bump(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.hits <- path
	})
}
