package geom

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Extent is the axis-aligned bounding box of a dataset, in the dataset's
// CRS units. Once derived from a basemap it is held verbatim for the whole
// session: overlays never expand it.
type Extent struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

// ComputeExtent returns the union bounding box over every non-empty feature
// geometry in the dataset. It fails with EmptyDatasetError when the dataset
// has zero features, or when every geometry is empty, because the bounds
// would be undefined.
func ComputeExtent(d *Dataset) (Extent, error) {
	if d.Len() == 0 {
		return Extent{}, &EmptyDatasetError{}
	}
	var union orb.Bound
	found := false
	for _, f := range d.Features {
		if IsEmptyGeometry(f.Geometry) {
			continue
		}
		b := f.Geometry.Bound()
		if !found {
			union = b
			found = true
			continue
		}
		union = union.Union(b)
	}
	if !found {
		return Extent{}, &EmptyDatasetError{Reason: "every geometry is empty"}
	}
	return Extent{
		MinX: union.Min[0],
		MaxX: union.Max[0],
		MinY: union.Min[1],
		MaxY: union.Max[1],
	}, nil
}

// Bound converts the extent to an orb bound.
func (e Extent) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e.MinX, e.MinY},
		Max: orb.Point{e.MaxX, e.MaxY},
	}
}

// Width returns the x-axis span.
func (e Extent) Width() float64 {
	return e.MaxX - e.MinX
}

// Height returns the y-axis span.
func (e Extent) Height() float64 {
	return e.MaxY - e.MinY
}

// String renders the extent as "x [min, max] y [min, max]".
func (e Extent) String() string {
	return fmt.Sprintf("x [%g, %g] y [%g, %g]", e.MinX, e.MaxX, e.MinY, e.MaxY)
}
