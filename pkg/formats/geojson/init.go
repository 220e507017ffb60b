// Package geojson provides a GeoJSON format driver for LeapGeo.
//
// This file registers the GeoJSON driver with the format registry.
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/leapstack-labs/leapgeo/pkg/formats/geojson"
package geojson

import "github.com/leapstack-labs/leapgeo/pkg/format"

func init() {
	format.Register(Driver{})
}
