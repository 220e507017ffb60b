// Package format defines the vector file format contract and the driver
// registry of the LeapGeo system.
//
// This package contains the public contract that all format drivers must
// implement. Concrete drivers live in pkg/formats/ subdirectories and
// register themselves in an init function, activated by blank imports.
package format

import "github.com/leapstack-labs/leapgeo/pkg/geom"

// Driver is the contract a vector file format implements. Drivers are
// stateless codecs keyed by file extension.
type Driver interface {
	// Name returns the short driver name, e.g. "shapefile".
	Name() string

	// Extensions returns the file extensions this driver claims,
	// lower-case and dot-prefixed, primary extension first.
	Extensions() []string

	// Read loads a dataset from path. I/O and decode failures are
	// reported as *ReadError.
	Read(path string) (*geom.Dataset, error)

	// Write serializes a dataset to path, preserving geometry and CRS.
	// I/O and encode failures are reported as *WriteError.
	Write(path string, d *geom.Dataset) error
}
