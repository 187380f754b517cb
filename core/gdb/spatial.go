package gdb

import (
	"context"
	"fmt"
	"strings"

	"figure-sync/core/reconcile"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
)

// Feature is a row of a feature class with its parsed shape.
// Geom is nil when the shape column is NULL.
type Feature struct {
	Row  reconcile.Row
	Geom orb.Geometry
}

// GeometryField returns the name of the shape column of table as declared.
func (s *Store) GeometryField(ctx context.Context, table string) (string, error) {
	fields, err := s.Fields(ctx, table)
	if err != nil {
		return "", err
	}
	for _, f := range fields {
		if f.Type == reconcile.FieldGeometry {
			return f.Name, nil
		}
	}
	return "", &reconcile.MissingFieldError{Stage: reconcile.StageValidate, Store: table, Field: s.geomColumn}
}

// Features reads the rows of table matching where together with their shapes.
// fields restricts the attributes read; the shape column is always included.
func (s *Store) Features(ctx context.Context, table string, fields []string, where string) ([]Feature, error) {
	geomField, err := s.GeometryField(ctx, table)
	if err != nil {
		return nil, err
	}

	cols := fields
	if len(cols) > 0 && !containsFold(cols, geomField) {
		cols = append(append([]string{}, cols...), geomField)
	}

	rows, err := s.Select(ctx, table, cols, where)
	if err != nil {
		return nil, err
	}

	out := make([]Feature, 0, len(rows))
	for _, row := range rows {
		f := Feature{Row: row}
		if text, ok := row[geomField].(string); ok && strings.TrimSpace(text) != "" {
			g, err := ParseGeometry(text)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", table, err)
			}
			f.Geom = g
		}
		out = append(out, f)
	}
	return out, nil
}

// ParseGeometry decodes a WKT shape.
func ParseGeometry(text string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("invalid geometry %q: %w", truncate(text, 40), err)
	}
	return g, nil
}

// FormatGeometry encodes a shape as WKT.
func FormatGeometry(g orb.Geometry) string {
	return wkt.MarshalString(g)
}

// Intersects reports whether two shapes share at least one point
// (boundaries included), on the plane.
func Intersects(a, b orb.Geometry) bool {
	if a == nil || b == nil {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}

	pa, pb := decompose(a), decompose(b)

	for _, v := range pa.vertices {
		if pb.contains(v) {
			return true
		}
	}
	for _, v := range pb.vertices {
		if pa.contains(v) {
			return true
		}
	}
	for _, sa := range pa.segments {
		for _, sb := range pb.segments {
			if segmentsIntersect(sa[0], sa[1], sb[0], sb[1]) {
				return true
			}
		}
	}
	return false
}

// IntersectsAny reports whether g intersects any of others.
func IntersectsAny(g orb.Geometry, others []orb.Geometry) bool {
	for _, o := range others {
		if Intersects(g, o) {
			return true
		}
	}
	return false
}

type parts struct {
	points   []orb.Point
	vertices []orb.Point
	segments [][2]orb.Point
	polygons []orb.Polygon
}

// contains reports whether p lies on any part.
func (ps *parts) contains(p orb.Point) bool {
	for _, q := range ps.points {
		if q == p {
			return true
		}
	}
	for _, s := range ps.segments {
		if onSegment(s[0], s[1], p) {
			return true
		}
	}
	for _, poly := range ps.polygons {
		if planar.PolygonContains(poly, p) {
			return true
		}
	}
	return false
}

func decompose(g orb.Geometry) *parts {
	ps := &parts{}
	ps.add(g)
	return ps
}

func (ps *parts) add(g orb.Geometry) {
	switch v := g.(type) {
	case orb.Point:
		ps.points = append(ps.points, v)
		ps.vertices = append(ps.vertices, v)
	case orb.MultiPoint:
		for _, p := range v {
			ps.add(p)
		}
	case orb.LineString:
		ps.addPath(v)
	case orb.MultiLineString:
		for _, ls := range v {
			ps.addPath(ls)
		}
	case orb.Ring:
		ps.add(orb.Polygon{v})
	case orb.Polygon:
		if len(v) == 0 {
			return
		}
		ps.polygons = append(ps.polygons, v)
		for _, r := range v {
			ps.addPath(orb.LineString(r))
		}
	case orb.MultiPolygon:
		for _, p := range v {
			ps.add(p)
		}
	case orb.Bound:
		ps.add(v.ToPolygon())
	case orb.Collection:
		for _, c := range v {
			ps.add(c)
		}
	}
}

func (ps *parts) addPath(ls orb.LineString) {
	ps.vertices = append(ps.vertices, ls...)
	if len(ls) == 1 {
		ps.points = append(ps.points, ls[0])
	}
	for i := 0; i+1 < len(ls); i++ {
		ps.segments = append(ps.segments, [2]orb.Point{ls[i], ls[i+1]})
	}
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	if orientation(a, b, p) != 0 {
		return false
	}
	return p[0] >= min(a[0], b[0]) && p[0] <= max(a[0], b[0]) &&
		p[1] >= min(a[1], b[1]) && p[1] <= max(a[1], b[1])
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return onSegment(q1, q2, p1) || onSegment(q1, q2, p2) ||
		onSegment(p1, p2, q1) || onSegment(p1, p2, q2)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
