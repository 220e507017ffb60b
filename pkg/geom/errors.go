package geom

import "fmt"

// EmptyDatasetError reports an operation that needs at least one feature
// with coordinates. Zero-feature datasets have undefined bounds and nothing
// to derive points from.
type EmptyDatasetError struct {
	// Reason distinguishes "no features at all" from "no usable geometries".
	Reason string
}

// Error implements the error interface.
func (e *EmptyDatasetError) Error() string {
	if e.Reason == "" {
		return "dataset has no features"
	}
	return "dataset has no usable features: " + e.Reason
}

// UnsupportedGeometryError reports a geometry type with no centroid rule.
// Standard point, line and polygon types all have one; geometry collections
// and unknown types do not.
type UnsupportedGeometryError struct {
	Type string
}

// Error implements the error interface.
func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("no centroid rule for geometry type %q", e.Type)
}
