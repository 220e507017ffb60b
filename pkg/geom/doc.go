// Package geom defines the shared vector-data language of the LeapGeo system.
//
// This package contains:
//   - Domain entities (Dataset, Feature, Extent, CRS)
//   - Derivations over them (ComputeExtent, Centroids)
//   - Dataset-level error types of the alignment pipeline
//
// The Golden Rule: pkg/geom imports ONLY the orb geometry model and stdlib.
// All other packages depend on geom, not the reverse.
package geom
