package picker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.shp", "a.geojson", "notes.txt", "c.SHP"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.shp"), 0750))

	items, err := scanDir(dir, []string{".shp", ".geojson"})
	require.NoError(t, err)
	require.Len(t, items, 3, "expected txt and the directory to be skipped")

	// Sorted by name, extension matching is case-insensitive
	assert.Equal(t, "a.geojson", items[0].(fileItem).name)
	assert.Equal(t, "b.shp", items[1].(fileItem).name)
	assert.Equal(t, "c.SHP", items[2].(fileItem).name)
	assert.Equal(t, filepath.Join(dir, "b.shp"), items[1].(fileItem).path)
}

func TestScanDir_MissingDir(t *testing.T) {
	_, err := scanDir(filepath.Join(t.TempDir(), "nope"), []string{".shp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestFileItem(t *testing.T) {
	it := fileItem{name: "campus.shp", path: "/data/campus.shp", desc: "1.2 KB"}
	assert.Equal(t, "campus.shp", it.Title())
	assert.Equal(t, "1.2 KB", it.Description())
	assert.Equal(t, "campus.shp", it.FilterValue())
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, humanSize(tt.n))
		})
	}
}
