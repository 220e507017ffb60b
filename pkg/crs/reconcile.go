package crs

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

// MismatchError reports that a dataset cannot be brought into a target
// reference system: exactly one side is undefined, or no transform exists
// between the two codes.
type MismatchError struct {
	Source geom.CRS
	Target geom.CRS
	Reason string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("cannot reconcile CRS %s with target %s: %s", e.Source, e.Target, e.Reason)
}

// Reconcile returns the dataset expressed in the target reference system.
//
// A dataset that already matches the target (including both sides undefined)
// is returned unchanged, same pointer. Otherwise a new dataset is built with
// every geometry transformed and the CRS set to the target; the input is
// never mutated, and attribute maps are shared rather than copied.
//
// The source system is never guessed: exactly one side undefined fails with
// MismatchError, as does a defined pair with no known transform.
func Reconcile(d *geom.Dataset, target geom.CRS) (*geom.Dataset, error) {
	if d.CRS.Equal(target) {
		return d, nil
	}
	if d.CRS.IsUndefined() || target.IsUndefined() {
		return nil, &MismatchError{
			Source: d.CRS,
			Target: target,
			Reason: "one side is undefined and a transform cannot be inferred",
		}
	}

	src, ok := projectionFor(d.CRS)
	if !ok {
		return nil, &MismatchError{
			Source: d.CRS,
			Target: target,
			Reason: fmt.Sprintf("no transform known for source %s", d.CRS),
		}
	}
	dst, ok := projectionFor(target)
	if !ok {
		return nil, &MismatchError{
			Source: d.CRS,
			Target: target,
			Reason: fmt.Sprintf("no transform known for target %s", target),
		}
	}

	transform := func(p orb.Point) orb.Point {
		return dst.FromWGS84(src.ToWGS84(p))
	}

	out := &geom.Dataset{
		CRS:      target,
		Features: make([]geom.Feature, len(d.Features)),
	}
	for i, f := range d.Features {
		nf := geom.Feature{Attributes: f.Attributes}
		if f.Geometry != nil {
			// project.Geometry transforms in place, so work on a clone
			nf.Geometry = project.Geometry(orb.Clone(f.Geometry), transform)
		}
		out.Features[i] = nf
	}
	return out, nil
}

func projectionFor(c geom.CRS) (Projection, bool) {
	code, ok := c.EPSG()
	if !ok {
		return nil, false
	}
	return ForEPSG(code)
}
