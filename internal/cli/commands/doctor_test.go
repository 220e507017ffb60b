package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgeo/internal/cli/config"
)

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
	}{
		{
			name: "all passing returns 100",
			checks: []HealthCheck{
				{Name: "config file", Status: "pass"},
				{Name: "basemap", Status: "pass"},
			},
			want: 100,
		},
		{
			name: "warnings cost 10",
			checks: []HealthCheck{
				{Name: "config file", Status: "warn"},
				{Name: "basemap", Status: "pass"},
			},
			want: 90,
		},
		{
			name: "errors cost 25",
			checks: []HealthCheck{
				{Name: "basemap", Status: "error"},
				{Name: "journal", Status: "warn"},
			},
			want: 65,
		},
		{
			name: "score never drops below 0",
			checks: []HealthCheck{
				{Status: "error"}, {Status: "error"}, {Status: "error"},
				{Status: "error"}, {Status: "error"},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHealthScore(tt.checks))
		})
	}
}

func TestGenerateRecommendations(t *testing.T) {
	checks := []HealthCheck{
		{Name: "config file", Status: "warn"},
		{Name: "basemap", Status: "warn"},
		{Name: "journal", Status: "pass"},
		{Name: "layer formats", Status: "pass"},
	}

	recommendations := generateRecommendations(checks)

	require.Len(t, recommendations, 2)
	assert.Contains(t, recommendations[0], "leapgeo init")
	assert.Contains(t, recommendations[1], "basemap")
}

func TestCheckBasemap(t *testing.T) {
	t.Run("not configured warns", func(t *testing.T) {
		check := checkBasemap("")
		assert.Equal(t, "warn", check.Status)
		assert.Equal(t, "not configured", check.Detail)
	})

	t.Run("missing file errors", func(t *testing.T) {
		check := checkBasemap(filepath.Join(t.TempDir(), "nope.shp"))
		assert.Equal(t, "error", check.Status)
	})

	t.Run("unsupported extension errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layer.gpkg")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
		check := checkBasemap(path)
		assert.Equal(t, "error", check.Status)
	})

	t.Run("readable layer passes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "area.geojson")
		fc := `{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]]]},"properties":{"name":"campus"}}
		]}`
		require.NoError(t, os.WriteFile(path, []byte(fc), 0600))

		check := checkBasemap(path)
		assert.Equal(t, "pass", check.Status)
		assert.Contains(t, check.Detail, "1 features")
		assert.Contains(t, check.Detail, "EPSG:4326")
	})
}

func TestCheckFormats(t *testing.T) {
	check := checkFormats()
	assert.Equal(t, "pass", check.Status)
	assert.Contains(t, check.Detail, "geojson")
	assert.Contains(t, check.Detail, "shapefile")
}

func TestDoctorCommand_JSON(t *testing.T) {
	config.ResetConfig()
	tmpDir := t.TempDir()
	t.Setenv("LEAPGEO_BASEMAP", "")
	t.Setenv("LEAPGEO_JOURNAL", filepath.Join(tmpDir, "journal.db"))
	t.Setenv("LEAPGEO_OUTPUT", "json")

	cmd := NewDoctorCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())

	var out DoctorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Checks, 4)
	byName := make(map[string]HealthCheck, len(out.Checks))
	for _, c := range out.Checks {
		byName[c.Name] = c
	}

	assert.Equal(t, "warn", byName["config file"].Status)
	assert.Equal(t, "warn", byName["basemap"].Status)
	assert.Equal(t, "pass", byName["journal"].Status)
	assert.Contains(t, byName["journal"].Detail, "0 runs recorded")
	assert.Equal(t, "pass", byName["layer formats"].Status)
	assert.Equal(t, 80, out.Score)
	assert.Equal(t, 2, out.IssueCount)
}
