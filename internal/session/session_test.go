package session

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

func squareDataset(crs geom.CRS) *geom.Dataset {
	return &geom.Dataset{
		CRS: crs,
		Features: []geom.Feature{
			{Geometry: orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}},
		},
	}
}

func TestSession_SetBasemap(t *testing.T) {
	s := New()

	if s.HasBasemap() {
		t.Error("new session should not have a basemap")
	}
	if _, ok := s.Extent(); ok {
		t.Error("new session should not have a locked extent")
	}
	if got := s.CRS(); !got.IsUndefined() {
		t.Errorf("expected undefined CRS, got %q", got)
	}

	d := squareDataset(geom.WGS84)
	extent, err := s.SetBasemap("base.shp", d)
	if err != nil {
		t.Fatalf("failed to set basemap: %v", err)
	}

	if !s.HasBasemap() {
		t.Error("expected basemap to be loaded")
	}
	if s.Path() != "base.shp" {
		t.Errorf("expected path 'base.shp', got %q", s.Path())
	}
	if !s.CRS().Equal(geom.WGS84) {
		t.Errorf("expected CRS %q, got %q", geom.WGS84, s.CRS())
	}
	if extent.MinX != 0 || extent.MaxX != 4 || extent.MinY != 0 || extent.MaxY != 4 {
		t.Errorf("unexpected extent: %+v", extent)
	}

	locked, ok := s.Extent()
	if !ok {
		t.Fatal("expected extent to be locked")
	}
	if locked != extent {
		t.Errorf("locked extent %+v differs from returned extent %+v", locked, extent)
	}
	if s.Basemap() != d {
		t.Error("Basemap should return the installed dataset")
	}
}

func TestSession_SetBasemap_EmptyDataset(t *testing.T) {
	tests := []struct {
		name string
		data *geom.Dataset
	}{
		{name: "no features", data: &geom.Dataset{CRS: geom.WGS84}},
		{
			name: "all geometries empty",
			data: &geom.Dataset{
				CRS:      geom.WGS84,
				Features: []geom.Feature{{Geometry: orb.LineString{}}, {Geometry: nil}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if _, err := s.SetBasemap("old.shp", squareDataset(geom.WGS84)); err != nil {
				t.Fatalf("failed to load initial basemap: %v", err)
			}

			_, err := s.SetBasemap("empty.shp", tt.data)
			var emptyErr *geom.EmptyDatasetError
			if !errors.As(err, &emptyErr) {
				t.Fatalf("expected EmptyDatasetError, got %v", err)
			}

			// The rejected load must not disturb the existing session.
			if s.Path() != "old.shp" {
				t.Errorf("expected path 'old.shp' to be preserved, got %q", s.Path())
			}
			if !s.HasBasemap() {
				t.Error("previous basemap should still be loaded")
			}
			if _, ok := s.Extent(); !ok {
				t.Error("previous extent should still be locked")
			}
		})
	}
}

func TestSession_Replace(t *testing.T) {
	s := New()

	if _, err := s.SetBasemap("first.shp", squareDataset(geom.WGS84)); err != nil {
		t.Fatalf("failed to set first basemap: %v", err)
	}

	second := &geom.Dataset{
		CRS: geom.WebMercator,
		Features: []geom.Feature{
			{Geometry: orb.Polygon{{{10, 10}, {20, 10}, {20, 30}, {10, 30}, {10, 10}}}},
		},
	}
	extent, err := s.SetBasemap("second.shp", second)
	if err != nil {
		t.Fatalf("failed to replace basemap: %v", err)
	}

	if s.Path() != "second.shp" {
		t.Errorf("expected path 'second.shp', got %q", s.Path())
	}
	if !s.CRS().Equal(geom.WebMercator) {
		t.Errorf("expected CRS %q, got %q", geom.WebMercator, s.CRS())
	}
	if extent.MinX != 10 || extent.MaxY != 30 {
		t.Errorf("extent should track the new basemap, got %+v", extent)
	}
}

func TestSession_Clear(t *testing.T) {
	s := New()
	if _, err := s.SetBasemap("base.geojson", squareDataset(geom.WGS84)); err != nil {
		t.Fatalf("failed to set basemap: %v", err)
	}

	s.Clear()

	if s.HasBasemap() {
		t.Error("expected no basemap after clear")
	}
	if s.Basemap() != nil {
		t.Error("expected nil basemap after clear")
	}
	if s.Path() != "" {
		t.Errorf("expected empty path after clear, got %q", s.Path())
	}
	if _, ok := s.Extent(); ok {
		t.Error("expected extent to be unlocked after clear")
	}
	if got := s.CRS(); !got.IsUndefined() {
		t.Errorf("expected undefined CRS after clear, got %q", got)
	}
}

func TestNoBasemapError_Message(t *testing.T) {
	err := &NoBasemapError{}
	want := "no basemap loaded: load a basemap before overlaying building layers"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
