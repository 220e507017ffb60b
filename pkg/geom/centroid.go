package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Centroids derives the point layer of a dataset: one planar centroid per
// feature (identity for points, length-weighted for lines, area-weighted for
// polygons), computed in the dataset's native CRS units. The result keeps
// the source order and CRS and carries geometry only; attributes do not
// survive into the derived layer.
//
// Features with an empty geometry yield no centroid and are skipped. A
// geometry type with no centroid rule fails the whole derivation with
// UnsupportedGeometryError.
func Centroids(d *Dataset) (*Dataset, error) {
	out := &Dataset{Features: make([]Feature, 0, d.Len())}
	if d == nil {
		return out, nil
	}
	out.CRS = d.CRS
	for i, f := range d.Features {
		pt, ok, err := centroidOf(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if !ok {
			continue
		}
		out.Features = append(out.Features, Feature{Geometry: pt})
	}
	return out, nil
}

func centroidOf(g orb.Geometry) (orb.Point, bool, error) {
	if IsEmptyGeometry(g) {
		return orb.Point{}, false, nil
	}
	switch g.(type) {
	case orb.Point, orb.MultiPoint, orb.LineString, orb.MultiLineString,
		orb.Ring, orb.Polygon, orb.MultiPolygon:
	default:
		return orb.Point{}, false, &UnsupportedGeometryError{Type: g.GeoJSONType()}
	}
	c, _ := planar.CentroidArea(g)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		// degenerate lines/rings (zero length or area) have no weighted
		// centroid; the bound midpoint is the defined representative
		c = g.Bound().Center()
	}
	return c, true, nil
}
