package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgeo/internal/cli/config"
	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/internal/engine"
)

// newShellTestSession builds a shell session backed by an in-memory
// journal and buffer-backed renderer. The readline instance is nil, so
// tests stay away from commands that prompt.
func newShellTestSession(t *testing.T) (*shellSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	eng, err := engine.New(engine.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	r := output.NewRenderer(outBuf, errBuf, output.ModeText)

	cmdCtx := &CommandContext{
		Cfg: &config.Config{
			JournalPath:  ":memory:",
			OutputFormat: "text",
			Save: config.SaveConfig{
				Subdir: config.DefaultSaveSubdir,
				Suffix: config.DefaultSaveSuffix,
			},
		},
		Logger:   slog.New(slog.DiscardHandler),
		Engine:   eng,
		Renderer: r,
	}

	return &shellSession{cmdCtx: cmdCtx, out: outBuf, errOut: errBuf}, outBuf, errBuf
}

func TestShellHandleCommand_QuitAndExit(t *testing.T) {
	sh, _, _ := newShellTestSession(t)
	assert.True(t, sh.handleCommand(context.Background(), ".quit"))
	assert.True(t, sh.handleCommand(context.Background(), ".exit"))
	assert.False(t, sh.handleCommand(context.Background(), ".help"))
}

func TestShellHandleCommand_Help(t *testing.T) {
	sh, out, _ := newShellTestSession(t)
	sh.handleCommand(context.Background(), ".help")
	assert.Contains(t, out.String(), ".basemap")
	assert.Contains(t, out.String(), ".load")
	assert.Contains(t, out.String(), ".history")
}

func TestShellHandleCommand_LoadWithoutBasemap(t *testing.T) {
	sh, _, errOut := newShellTestSession(t)
	sh.handleCommand(context.Background(), ".load buildings.shp")
	assert.Contains(t, errOut.String(), "no basemap loaded")
}

func TestShellHandleCommand_Unknown(t *testing.T) {
	sh, _, errOut := newShellTestSession(t)
	sh.handleCommand(context.Background(), ".wat")
	assert.Contains(t, errOut.String(), "Unknown command: .wat")
}

func TestShellHandleCommand_BasemapAndSession(t *testing.T) {
	sh, out, errOut := newShellTestSession(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "area.geojson")
	require.NoError(t, os.WriteFile(path, []byte(testBasemapJSON), 0600))

	// .extent before a basemap is loaded reports the error.
	sh.handleCommand(context.Background(), ".extent")
	assert.Contains(t, errOut.String(), "no basemap loaded")

	sh.handleCommand(context.Background(), ".basemap "+path)
	assert.Contains(t, out.String(), "basemap area.geojson")
	assert.True(t, sh.cmdCtx.Engine.GetSession().HasBasemap())

	out.Reset()
	sh.handleCommand(context.Background(), ".info")
	assert.Contains(t, out.String(), path)
	assert.Contains(t, out.String(), "EPSG:4326")

	out.Reset()
	sh.handleCommand(context.Background(), ".extent")
	assert.Contains(t, out.String(), "x [0, 10] y [0, 10]")

	sh.handleCommand(context.Background(), ".clear")
	assert.False(t, sh.cmdCtx.Engine.GetSession().HasBasemap())
}

func TestShellHandleCommand_HistoryEmpty(t *testing.T) {
	sh, out, _ := newShellTestSession(t)
	sh.handleCommand(context.Background(), ".history")
	assert.Contains(t, out.String(), "no overlay runs recorded")
}

func TestShellHandleCommand_HistoryBadArg(t *testing.T) {
	sh, _, errOut := newShellTestSession(t)
	sh.handleCommand(context.Background(), ".history nope")
	assert.Contains(t, errOut.String(), "Usage: .history [n]")
}

func TestShellHandleCommand_Formats(t *testing.T) {
	sh, out, _ := newShellTestSession(t)
	sh.handleCommand(context.Background(), ".formats")
	assert.Contains(t, out.String(), "geojson")
	assert.Contains(t, out.String(), "shapefile")
}

func TestShellResolvePath_NonTTYRequiresArg(t *testing.T) {
	sh, _, errOut := newShellTestSession(t)
	_, ok := sh.resolvePath([]string{".basemap"}, "basemap")
	assert.False(t, ok)
	assert.Contains(t, errOut.String(), "Usage: .basemap <path>")
}

func TestShellResolvePath_JoinsSpacedPath(t *testing.T) {
	sh, _, _ := newShellTestSession(t)
	path, ok := sh.resolvePath([]string{".load", "survey", "area", "buildings.shp"}, "building layer")
	assert.True(t, ok)
	assert.Equal(t, "survey area buildings.shp", path)
}
