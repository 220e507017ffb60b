// Package shapefile provides an ESRI Shapefile format driver for LeapGeo.
package shapefile

import (
	"errors"
	"fmt"
	"sort"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/leapstack-labs/leapgeo/pkg/format"
	"github.com/leapstack-labs/leapgeo/pkg/geom"
)

const (
	// DriverName is the registry name of this driver.
	DriverName = "shapefile"

	// Ext is the primary geometry file extension. The sibling .shx, .dbf
	// and .prj files share the base name.
	Ext = ".shp"
)

// Driver reads and writes the shapefile family: the .shp geometry file with
// its sibling .shx index, .dbf attribute table and .prj projection file.
type Driver struct{}

// Name returns the registry name.
func (Driver) Name() string { return DriverName }

// Extensions returns the extensions this driver claims.
func (Driver) Extensions() []string { return []string{Ext} }

// Read loads a shapefile into a dataset. The CRS comes from the .prj
// sidecar when one is present and recognizable, otherwise it is undefined.
// DBF columns are surfaced as string attributes.
func (Driver) Read(path string) (*geom.Dataset, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, &format.ReadError{Path: path, Err: err}
	}
	defer r.Close()

	fields := r.Fields()
	ds := &geom.Dataset{CRS: readPrj(path)}
	for r.Next() {
		row, shape := r.Shape()
		g, err := toGeometry(shape)
		if err != nil {
			return nil, &format.ReadError{Path: path, Err: fmt.Errorf("record %d: %w", row, err)}
		}
		f := geom.Feature{Geometry: g}
		if len(fields) > 0 {
			attrs := make(map[string]any, len(fields))
			for i, fld := range fields {
				attrs[fld.String()] = r.ReadAttribute(row, i)
			}
			f.Attributes = attrs
		}
		ds.Features = append(ds.Features, f)
	}
	if err := r.Err(); err != nil {
		return nil, &format.ReadError{Path: path, Err: err}
	}
	return ds, nil
}

// Write serializes the dataset to path. The shape type is taken from the
// first non-empty geometry; shapefiles cannot mix types, so a differing
// geometry later in the dataset is a WriteError. A .prj sidecar is written
// whenever the dataset CRS maps to a known WKT. String attributes are
// persisted to the .dbf when the dataset carries any.
func (Driver) Write(path string, d *geom.Dataset) error {
	if d.Len() == 0 {
		return &format.WriteError{Path: path, Err: errors.New("refusing to write an empty dataset")}
	}

	st, err := shapeTypeFor(d)
	if err != nil {
		return &format.WriteError{Path: path, Err: err}
	}

	w, err := shp.Create(path, st)
	if err != nil {
		return &format.WriteError{Path: path, Err: err}
	}

	keys := attributeKeys(d)
	if len(keys) > 0 {
		fields := make([]shp.Field, len(keys))
		for i, k := range keys {
			fields[i] = shp.StringField(k, 64)
		}
		w.SetFields(fields)
	}

	for i, f := range d.Features {
		if geom.IsEmptyGeometry(f.Geometry) {
			continue
		}
		shapes, err := toShapes(f.Geometry, st)
		if err != nil {
			w.Close()
			return &format.WriteError{Path: path, Err: fmt.Errorf("feature %d: %w", i, err)}
		}
		for _, s := range shapes {
			row := w.Write(s)
			for col, k := range keys {
				v := ""
				if f.Attributes != nil {
					if av, ok := f.Attributes[k]; ok && av != nil {
						v = fmt.Sprint(av)
					}
				}
				if err := w.WriteAttribute(int(row), col, v); err != nil {
					w.Close()
					return &format.WriteError{Path: path, Err: err}
				}
			}
		}
	}
	w.Close()

	if err := writePrj(path, d.CRS); err != nil {
		return &format.WriteError{Path: path, Err: err}
	}
	return nil
}

// attributeKeys returns the union of attribute names across the dataset,
// sorted for a stable column order.
func attributeKeys(d *geom.Dataset) []string {
	seen := map[string]bool{}
	for _, f := range d.Features {
		for k := range f.Attributes {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// shapeTypeFor picks the shapefile type from the first non-empty geometry.
func shapeTypeFor(d *geom.Dataset) (shp.ShapeType, error) {
	for _, f := range d.Features {
		if geom.IsEmptyGeometry(f.Geometry) {
			continue
		}
		switch f.Geometry.(type) {
		case orb.Point:
			return shp.POINT, nil
		case orb.MultiPoint:
			return shp.MULTIPOINT, nil
		case orb.LineString, orb.MultiLineString:
			return shp.POLYLINE, nil
		case orb.Ring, orb.Polygon, orb.MultiPolygon:
			return shp.POLYGON, nil
		default:
			return shp.NULL, &geom.UnsupportedGeometryError{Type: f.Geometry.GeoJSONType()}
		}
	}
	return shp.NULL, errors.New("no non-empty geometry to derive a shape type from")
}

// toGeometry maps a decoded shape onto the orb model. Z and M variants
// drop their extra measures; null shapes map to a nil (empty) geometry.
func toGeometry(s shp.Shape) (orb.Geometry, error) {
	switch v := s.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Point:
		return orb.Point{v.X, v.Y}, nil
	case *shp.PointZ:
		return orb.Point{v.X, v.Y}, nil
	case *shp.PointM:
		return orb.Point{v.X, v.Y}, nil
	case *shp.MultiPoint:
		return toMultiPoint(v.Points), nil
	case *shp.MultiPointZ:
		return toMultiPoint(v.Points), nil
	case *shp.MultiPointM:
		return toMultiPoint(v.Points), nil
	case *shp.PolyLine:
		return linesGeometry(splitParts(v.Points, v.Parts)), nil
	case *shp.PolyLineZ:
		return linesGeometry(splitParts(v.Points, v.Parts)), nil
	case *shp.PolyLineM:
		return linesGeometry(splitParts(v.Points, v.Parts)), nil
	case *shp.Polygon:
		return ringsGeometry(splitParts(v.Points, v.Parts)), nil
	case *shp.PolygonZ:
		return ringsGeometry(splitParts(v.Points, v.Parts)), nil
	case *shp.PolygonM:
		return ringsGeometry(splitParts(v.Points, v.Parts)), nil
	default:
		return nil, &geom.UnsupportedGeometryError{Type: fmt.Sprintf("%T", s)}
	}
}

func toMultiPoint(pts []shp.Point) orb.MultiPoint {
	mp := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		mp[i] = orb.Point{p.X, p.Y}
	}
	return mp
}

// splitParts slices a flat point array into its parts.
func splitParts(points []shp.Point, parts []int32) []orb.LineString {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([]orb.LineString, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if int(start) >= end {
			continue
		}
		ls := make(orb.LineString, 0, end-int(start))
		for _, p := range points[start:end] {
			ls = append(ls, orb.Point{p.X, p.Y})
		}
		out = append(out, ls)
	}
	return out
}

func linesGeometry(parts []orb.LineString) orb.Geometry {
	if len(parts) == 1 {
		return parts[0]
	}
	return orb.MultiLineString(parts)
}

// ringsGeometry groups a record's rings into polygons. ESRI outer rings
// wind clockwise and holes counter-clockwise; each outer ring starts a new
// polygon and collects the holes that follow it.
func ringsGeometry(parts []orb.LineString) orb.Geometry {
	var polys orb.MultiPolygon
	var cur orb.Polygon
	for _, part := range parts {
		ring := orb.Ring(part)
		if len(ring) == 0 {
			continue
		}
		if ring.Orientation() == orb.CW || len(cur) == 0 {
			if len(cur) > 0 {
				polys = append(polys, cur)
			}
			cur = orb.Polygon{ring}
			continue
		}
		cur = append(cur, ring)
	}
	if len(cur) > 0 {
		polys = append(polys, cur)
	}
	if len(polys) == 1 {
		return polys[0]
	}
	return polys
}

// toShapes converts one orb geometry into shapefile records of the target
// type. Multi geometries of the point type fan out into several records;
// lines and polygons keep their parts within a single record.
func toShapes(g orb.Geometry, st shp.ShapeType) ([]shp.Shape, error) {
	switch v := g.(type) {
	case orb.Point:
		if st != shp.POINT {
			return nil, mixedTypeError(g, st)
		}
		return []shp.Shape{&shp.Point{X: v[0], Y: v[1]}}, nil
	case orb.MultiPoint:
		if st == shp.POINT {
			shapes := make([]shp.Shape, len(v))
			for i, p := range v {
				shapes[i] = &shp.Point{X: p[0], Y: p[1]}
			}
			return shapes, nil
		}
		if st != shp.MULTIPOINT {
			return nil, mixedTypeError(g, st)
		}
		pts := toShpPoints(orb.LineString(v))
		return []shp.Shape{&shp.MultiPoint{
			Box:       boxOf(pts),
			NumPoints: int32(len(pts)),
			Points:    pts,
		}}, nil
	case orb.LineString:
		if st != shp.POLYLINE {
			return nil, mixedTypeError(g, st)
		}
		return []shp.Shape{shp.NewPolyLine([][]shp.Point{toShpPoints(v)})}, nil
	case orb.MultiLineString:
		if st != shp.POLYLINE {
			return nil, mixedTypeError(g, st)
		}
		parts := make([][]shp.Point, len(v))
		for i, ls := range v {
			parts[i] = toShpPoints(ls)
		}
		return []shp.Shape{shp.NewPolyLine(parts)}, nil
	case orb.Ring:
		return toShapes(orb.Polygon{v}, st)
	case orb.Polygon:
		if st != shp.POLYGON {
			return nil, mixedTypeError(g, st)
		}
		poly := shp.Polygon(*shp.NewPolyLine(esriRings(v)))
		return []shp.Shape{&poly}, nil
	case orb.MultiPolygon:
		if st != shp.POLYGON {
			return nil, mixedTypeError(g, st)
		}
		var parts [][]shp.Point
		for _, p := range v {
			parts = append(parts, esriRings(p)...)
		}
		poly := shp.Polygon(*shp.NewPolyLine(parts))
		return []shp.Shape{&poly}, nil
	default:
		return nil, &geom.UnsupportedGeometryError{Type: g.GeoJSONType()}
	}
}

func mixedTypeError(g orb.Geometry, st shp.ShapeType) error {
	return fmt.Errorf("geometry type %s does not fit shape type %d: shapefiles cannot mix types", g.GeoJSONType(), st)
}

// esriRings closes every ring and enforces ESRI winding: clockwise outer
// ring first, counter-clockwise holes after it.
func esriRings(p orb.Polygon) [][]shp.Point {
	parts := make([][]shp.Point, 0, len(p))
	for i, ring := range p {
		if len(ring) == 0 {
			continue
		}
		r := ring.Clone()
		want := orb.CW
		if i > 0 {
			want = orb.CCW
		}
		if r.Orientation() != want {
			r.Reverse()
		}
		if !r.Closed() {
			r = append(r, r[0])
		}
		parts = append(parts, toShpPoints(orb.LineString(r)))
	}
	return parts
}

func toShpPoints(ls orb.LineString) []shp.Point {
	pts := make([]shp.Point, len(ls))
	for i, p := range ls {
		pts[i] = shp.Point{X: p[0], Y: p[1]}
	}
	return pts
}

func boxOf(pts []shp.Point) shp.Box {
	b := shp.Box{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}
