package shapefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgeo/pkg/format"
	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

func TestDriver_Identity(t *testing.T) {
	d := Driver{}
	assert.Equal(t, "shapefile", d.Name())
	assert.Equal(t, []string{".shp"}, d.Extensions())
}

func TestWriteRead_PointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.shp")

	ds := &geom.Dataset{
		CRS: geom.WGS84,
		Features: []geom.Feature{
			{Geometry: orb.Point{12.5, 41.9}},
			{Geometry: orb.Point{-73.97, 40.78}},
		},
	}

	require.NoError(t, Driver{}.Write(path, ds))

	for _, sidecar := range []string{"points.shp", "points.shx", "points.prj"} {
		_, err := os.Stat(filepath.Join(dir, sidecar))
		assert.NoError(t, err, "%s should exist", sidecar)
	}

	got, err := Driver{}.Read(path)
	require.NoError(t, err)

	assert.Equal(t, geom.WGS84, got.CRS, "CRS survives via the .prj sidecar")
	require.Equal(t, 2, got.Len())
	p0 := got.Features[0].Geometry.(orb.Point)
	assert.InDelta(t, 12.5, p0[0], 1e-9)
	assert.InDelta(t, 41.9, p0[1], 1e-9)
}

func TestWriteRead_PolygonRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildings.shp")

	square := orb.Polygon{orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	ds := &geom.Dataset{
		CRS: geom.WebMercator,
		Features: []geom.Feature{
			{Geometry: square, Attributes: map[string]any{"name": "hall"}},
		},
	}

	require.NoError(t, Driver{}.Write(path, ds))

	got, err := Driver{}.Read(path)
	require.NoError(t, err)

	assert.Equal(t, geom.WebMercator, got.CRS)
	require.Equal(t, 1, got.Len())

	poly, ok := got.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok, "expected a polygon, got %T", got.Features[0].Geometry)
	ext, err := geom.ComputeExtent(got)
	require.NoError(t, err)
	assert.Equal(t, geom.Extent{MinX: 0, MaxX: 4, MinY: 0, MaxY: 4}, ext)
	require.Len(t, poly, 1)

	assert.Equal(t, "hall", got.Features[0].Attributes["name"], "dbf attribute survives")
}

func TestWriteRead_PolygonWithHole(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courtyard.shp")

	outer := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	hole := orb.Ring{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}}
	ds := &geom.Dataset{
		CRS:      geom.WGS84,
		Features: []geom.Feature{{Geometry: orb.Polygon{outer, hole}}},
	}

	require.NoError(t, Driver{}.Write(path, ds))

	got, err := Driver{}.Read(path)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())

	poly, ok := got.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Len(t, poly, 2, "outer ring plus one hole")
}

func TestWriteRead_LineRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roads.shp")

	ds := &geom.Dataset{
		CRS:      geom.WGS84,
		Features: []geom.Feature{{Geometry: orb.LineString{{0, 0}, {5, 0}, {5, 5}}}},
	}

	require.NoError(t, Driver{}.Write(path, ds))

	got, err := Driver{}.Read(path)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())

	ls, ok := got.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, ls, 3)
}

func TestWrite_EmptyDatasetRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.shp")

	err := Driver{}.Write(path, &geom.Dataset{CRS: geom.WGS84})
	require.Error(t, err)

	var we *format.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, path, we.Path)
}

func TestWrite_MixedTypesRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.shp")

	ds := &geom.Dataset{
		CRS: geom.WGS84,
		Features: []geom.Feature{
			{Geometry: orb.Point{0, 0}},
			{Geometry: orb.LineString{{0, 0}, {1, 1}}},
		},
	}

	err := Driver{}.Write(path, ds)
	var we *format.WriteError
	require.ErrorAs(t, err, &we)
}

func TestWrite_UndefinedCRSSkipsPrj(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.shp")

	ds := &geom.Dataset{Features: []geom.Feature{{Geometry: orb.Point{1, 1}}}}
	require.NoError(t, Driver{}.Write(path, ds))

	_, err := os.Stat(filepath.Join(dir, "bare.prj"))
	assert.True(t, os.IsNotExist(err), "no .prj for an undefined CRS")

	got, err := Driver{}.Read(path)
	require.NoError(t, err)
	assert.True(t, got.CRS.IsUndefined())
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Driver{}.Read(filepath.Join(t.TempDir(), "nope.shp"))

	var re *format.ReadError
	require.ErrorAs(t, err, &re)
}

func TestCRSFromWKT(t *testing.T) {
	tests := []struct {
		name string
		wkt  string
		want geom.CRS
	}{
		{"epsg authority", wktByEPSG[4326], geom.WGS84},
		{"mercator authority", wktByEPSG[3857], geom.WebMercator},
		{"esri wgs84", `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`, geom.WGS84},
		{"esri mercator", `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]],PROJECTION["Mercator_Auxiliary_Sphere"]]`, geom.WebMercator},
		{"gibberish", "not wkt at all", geom.CRSUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, crsFromWKT(tt.wkt).Equal(tt.want), "got %q", crsFromWKT(tt.wkt))
		})
	}
}

func TestPrjPath(t *testing.T) {
	assert.Equal(t, "/data/b.prj", prjPath("/data/b.shp"))
}
