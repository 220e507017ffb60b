package shapefile

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

// WKT bodies for the reference systems the pipeline transforms between.
// The text matches what common GIS tooling emits, so sidecars round-trip
// through other software.
var wktByEPSG = map[int]string{
	4326: `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`,
	3857: `PROJCS["WGS 84 / Pseudo-Mercator",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]],PROJECTION["Mercator_1SP"],PARAMETER["central_meridian",0],PARAMETER["scale_factor",1],PARAMETER["false_easting",0],PARAMETER["false_northing",0],UNIT["metre",1,AUTHORITY["EPSG","9001"]],AXIS["Easting",EAST],AXIS["Northing",NORTH],AUTHORITY["EPSG","3857"]]`,
}

var authorityRe = regexp.MustCompile(`AUTHORITY\["EPSG",\s*"(\d+)"\]`)

// prjPath maps the .shp path onto its projection sidecar.
func prjPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
}

// writePrj emits the projection sidecar for a defined CRS with a known WKT
// body. Undefined and unknown systems write no sidecar.
func writePrj(path string, c geom.CRS) error {
	if c.IsUndefined() {
		return nil
	}
	code, ok := c.EPSG()
	if !ok {
		return nil
	}
	wkt, ok := wktByEPSG[code]
	if !ok {
		return nil
	}
	return os.WriteFile(prjPath(path), []byte(wkt), 0o644)
}

// readPrj detects the CRS from the projection sidecar. A missing or
// unrecognizable sidecar yields the undefined CRS; the caller decides
// whether that matters.
func readPrj(path string) geom.CRS {
	data, err := os.ReadFile(prjPath(path))
	if err != nil {
		return geom.CRSUndefined
	}
	return crsFromWKT(string(data))
}

// crsFromWKT picks the EPSG code out of a WKT body. The outermost
// AUTHORITY clause is the last one in the text; ESRI-style WKT without
// AUTHORITY clauses falls back to name matching for the two systems the
// pipeline handles.
func crsFromWKT(wkt string) geom.CRS {
	matches := authorityRe.FindAllStringSubmatch(wkt, -1)
	if len(matches) > 0 {
		code := matches[len(matches)-1][1]
		return geom.CRS("EPSG:" + code)
	}
	switch {
	case strings.Contains(wkt, "Pseudo-Mercator"),
		strings.Contains(wkt, "Web_Mercator"),
		strings.Contains(wkt, "Mercator_Auxiliary_Sphere"):
		return geom.WebMercator
	case strings.Contains(wkt, "GCS_WGS_1984"),
		strings.Contains(wkt, `GEOGCS["WGS 84"`):
		return geom.WGS84
	default:
		return geom.CRSUndefined
	}
}
