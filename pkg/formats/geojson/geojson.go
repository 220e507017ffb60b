// Package geojson provides a GeoJSON format driver for LeapGeo.
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	orbjson "github.com/paulmach/orb/geojson"

	"github.com/leapstack-labs/leapgeo/pkg/format"
	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

const (
	// DriverName is the registry name of this driver.
	DriverName = "geojson"

	// Ext is the primary extension; plain .json is claimed as well.
	Ext = ".geojson"
)

// crs84 is the legacy name for WGS84 lon/lat as used by pre-RFC 7946 files.
const crs84 = "urn:ogc:def:crs:OGC:1.3:CRS84"

// Driver reads and writes GeoJSON FeatureCollections. RFC 7946 fixes the
// reference system to WGS84; the legacy top-level named-CRS member is still
// honored on read and emitted on write for datasets in any other system.
type Driver struct{}

// Name returns the registry name.
func (Driver) Name() string { return DriverName }

// Extensions returns the extensions this driver claims.
func (Driver) Extensions() []string { return []string{Ext, ".json"} }

// Read loads a FeatureCollection into a dataset.
func (Driver) Read(path string) (*geom.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &format.ReadError{Path: path, Err: err}
	}
	fc, err := orbjson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &format.ReadError{Path: path, Err: err}
	}

	ds := &geom.Dataset{
		CRS:      collectionCRS(fc),
		Features: make([]geom.Feature, 0, len(fc.Features)),
	}
	for _, f := range fc.Features {
		nf := geom.Feature{Geometry: f.Geometry}
		if len(f.Properties) > 0 {
			nf.Attributes = map[string]any(f.Properties)
		}
		ds.Features = append(ds.Features, nf)
	}
	return ds, nil
}

// Write serializes the dataset as an indented FeatureCollection. Features
// with empty geometries are dropped; an all-empty dataset is refused.
func (Driver) Write(path string, d *geom.Dataset) error {
	if d.Len() == 0 {
		return &format.WriteError{Path: path, Err: errors.New("refusing to write an empty dataset")}
	}

	fc := orbjson.NewFeatureCollection()
	for _, f := range d.Features {
		if geom.IsEmptyGeometry(f.Geometry) {
			continue
		}
		nf := orbjson.NewFeature(f.Geometry)
		if f.Attributes != nil {
			nf.Properties = orbjson.Properties(f.Attributes)
		}
		fc.Append(nf)
	}
	if len(fc.Features) == 0 {
		return &format.WriteError{Path: path, Err: errors.New("refusing to write an empty dataset")}
	}

	if member, ok := crsMember(d.CRS); ok {
		fc.ExtraMembers = orbjson.Properties{"crs": member}
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return &format.WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &format.WriteError{Path: path, Err: err}
	}
	return nil
}

// collectionCRS reads the legacy named-CRS member. Absent means WGS84 by
// the GeoJSON convention; present but unparseable means undefined rather
// than a guess.
func collectionCRS(fc *orbjson.FeatureCollection) geom.CRS {
	raw, ok := fc.ExtraMembers["crs"]
	if !ok {
		return geom.WGS84
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return geom.CRSUndefined
	}
	props, ok := m["properties"].(map[string]any)
	if !ok {
		return geom.CRSUndefined
	}
	name, ok := props["name"].(string)
	if !ok {
		return geom.CRSUndefined
	}
	return parseCRSName(name)
}

// parseCRSName maps the named-CRS forms onto CRS identifiers:
// "urn:ogc:def:crs:OGC:1.3:CRS84", "urn:ogc:def:crs:EPSG::3857" and the
// plain "EPSG:3857".
func parseCRSName(name string) geom.CRS {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, crs84) {
		return geom.WGS84
	}
	upper := strings.ToUpper(name)
	if i := strings.LastIndex(upper, "EPSG"); i >= 0 {
		tail := strings.Trim(upper[i+len("EPSG"):], ":")
		if code, err := strconv.Atoi(tail); err == nil && code > 0 {
			return geom.CRS(fmt.Sprintf("EPSG:%d", code))
		}
	}
	return geom.CRSUndefined
}

// crsMember builds the legacy named-CRS member for non-WGS84 systems.
// WGS84 and undefined datasets write none: absence already means lon/lat.
func crsMember(c geom.CRS) (map[string]any, bool) {
	if c.IsUndefined() || c.Equal(geom.WGS84) {
		return nil, false
	}
	code, ok := c.EPSG()
	if !ok {
		return nil, false
	}
	return map[string]any{
		"type": "name",
		"properties": map[string]any{
			"name": fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", code),
		},
	}, true
}
