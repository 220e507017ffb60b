// Package shapefile provides an ESRI Shapefile format driver for LeapGeo.
//
// This file registers the shapefile driver with the format registry.
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/leapstack-labs/leapgeo/pkg/formats/shapefile"
package shapefile

import "github.com/leapstack-labs/leapgeo/pkg/format"

func init() {
	format.Register(Driver{})
}
