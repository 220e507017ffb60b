package geom

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// CRS identifies a coordinate reference system by authority code,
// e.g. "EPSG:4326". The zero value is the undefined CRS.
type CRS string

// Well-known reference systems.
const (
	// CRSUndefined marks a dataset with no declared reference system.
	CRSUndefined CRS = ""
	// WGS84 is geographic lon/lat (EPSG:4326).
	WGS84 CRS = "EPSG:4326"
	// WebMercator is the spherical mercator used by web maps (EPSG:3857).
	WebMercator CRS = "EPSG:3857"
)

// IsUndefined reports whether no reference system is declared.
func (c CRS) IsUndefined() bool {
	return strings.TrimSpace(string(c)) == ""
}

// EPSG returns the numeric EPSG code. It accepts both the "EPSG:4326" form
// and a bare numeric code. Returns false for undefined identifiers and for
// other authorities.
func (c CRS) EPSG() (int, bool) {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return 0, false
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if !strings.EqualFold(s[:i], "EPSG") {
			return 0, false
		}
		s = s[i+1:]
	}
	code, err := strconv.Atoi(s)
	if err != nil || code <= 0 {
		return 0, false
	}
	return code, true
}

// Equal reports whether two identifiers name the same reference system.
// EPSG codes compare numerically ("epsg:4326" equals "EPSG:4326"); anything
// else compares as a trimmed, case-insensitive string. Two undefined
// identifiers are equal.
func (c CRS) Equal(other CRS) bool {
	a, aok := c.EPSG()
	b, bok := other.EPSG()
	if aok && bok {
		return a == b
	}
	return strings.EqualFold(strings.TrimSpace(string(c)), strings.TrimSpace(string(other)))
}

// String returns the identifier, or "undefined" for the zero value.
func (c CRS) String() string {
	if c.IsUndefined() {
		return "undefined"
	}
	return string(c)
}

// Feature is one record of a vector dataset: a geometry plus its attributes.
type Feature struct {
	Geometry   orb.Geometry
	Attributes map[string]any
}

// Dataset is an ordered sequence of features sharing a single CRS.
// The CRS may be undefined, but it is never silently assumed compatible
// with another dataset's.
type Dataset struct {
	CRS      CRS
	Features []Feature
}

// Len returns the number of features.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Features)
}

// IsEmptyGeometry reports whether g carries no coordinates at all.
// A nil geometry is empty; a point never is.
func IsEmptyGeometry(g orb.Geometry) bool {
	if g == nil {
		return true
	}
	switch geo := g.(type) {
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(geo) == 0
	case orb.LineString:
		return len(geo) == 0
	case orb.Ring:
		return len(geo) == 0
	case orb.MultiLineString:
		for _, ls := range geo {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.Polygon:
		for _, r := range geo {
			if len(r) > 0 {
				return false
			}
		}
		return true
	case orb.MultiPolygon:
		for _, p := range geo {
			if !IsEmptyGeometry(p) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, c := range geo {
			if !IsEmptyGeometry(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
