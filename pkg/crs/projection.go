// Package crs reconciles vector datasets across coordinate reference
// systems. Transforms are EPSG-keyed projections pivoted through WGS84
// lon/lat, so any two supported systems can be bridged without a direct
// pairwise transform.
package crs

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection converts between a reference system's native coordinates and
// WGS84 longitude/latitude in degrees.
type Projection interface {
	// ToWGS84 converts native coordinates to WGS84 lon/lat.
	ToWGS84(p orb.Point) orb.Point

	// FromWGS84 converts WGS84 lon/lat to native coordinates.
	FromWGS84(p orb.Point) orb.Point

	// EPSG returns the EPSG code this projection serves.
	EPSG() int
}

// ForEPSG returns the projection for an EPSG code.
// Returns false when the code is not supported.
func ForEPSG(epsg int) (Projection, bool) {
	switch epsg {
	case 4326:
		return wgs84Identity{}, true
	case 3857:
		return webMercator{}, true
	default:
		return nil, false
	}
}

// wgs84Identity is the no-op projection for data already in EPSG:4326.
type wgs84Identity struct{}

func (wgs84Identity) ToWGS84(p orb.Point) orb.Point { return p }

func (wgs84Identity) FromWGS84(p orb.Point) orb.Point { return p }

func (wgs84Identity) EPSG() int { return 4326 }

// webMercator is the spherical pseudo-mercator used by web maps (EPSG:3857).
type webMercator struct{}

func (webMercator) ToWGS84(p orb.Point) orb.Point { return project.Mercator.ToWGS84(p) }

func (webMercator) FromWGS84(p orb.Point) orb.Point { return project.WGS84.ToMercator(p) }

func (webMercator) EPSG() int { return 3857 }
