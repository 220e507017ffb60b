// Package session holds the working state of an alignment session: the
// loaded basemap layer, its file path, and the extent locked from it.
//
// A Session is owned by a single goroutine (the engine that created it)
// and is not safe for concurrent use.
package session

import (
	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

// NoBasemapError indicates an overlay was requested before a basemap
// was loaded into the session.
type NoBasemapError struct{}

func (e *NoBasemapError) Error() string {
	return "no basemap loaded: load a basemap before overlaying building layers"
}

// Session tracks the currently loaded basemap and the extent derived
// from it. The extent is computed once when the basemap is set and
// stays fixed until the session is cleared or a new basemap replaces
// it.
type Session struct {
	path    string
	basemap *geom.Dataset
	extent  geom.Extent
	locked  bool
}

// New returns an empty session with no basemap loaded.
func New() *Session {
	return &Session{}
}

// SetBasemap installs a basemap layer and locks the session extent to
// the layer's bounding box. A dataset whose extent cannot be computed
// (no features, or all geometries empty) is rejected and the previous
// session state is left untouched.
func (s *Session) SetBasemap(path string, d *geom.Dataset) (geom.Extent, error) {
	extent, err := geom.ComputeExtent(d)
	if err != nil {
		return geom.Extent{}, err
	}

	s.path = path
	s.basemap = d
	s.extent = extent
	s.locked = true
	return extent, nil
}

// Clear drops the basemap and unlocks the extent, returning the
// session to its initial empty state.
func (s *Session) Clear() {
	s.path = ""
	s.basemap = nil
	s.extent = geom.Extent{}
	s.locked = false
}

// HasBasemap reports whether a basemap is currently loaded.
func (s *Session) HasBasemap() bool {
	return s.basemap != nil
}

// Basemap returns the loaded basemap dataset, or nil when none is
// loaded.
func (s *Session) Basemap() *geom.Dataset {
	return s.basemap
}

// Path returns the file path the basemap was loaded from.
func (s *Session) Path() string {
	return s.path
}

// CRS returns the coordinate reference system of the loaded basemap.
// It is the target every overlay layer is reconciled to. Returns the
// undefined CRS when no basemap is loaded.
func (s *Session) CRS() geom.CRS {
	if s.basemap == nil {
		return geom.CRSUndefined
	}
	return s.basemap.CRS
}

// Extent returns the locked session extent. The second return value
// is false when no basemap is loaded and no extent is locked.
func (s *Session) Extent() (geom.Extent, bool) {
	if !s.locked {
		return geom.Extent{}, false
	}
	return s.extent, true
}
