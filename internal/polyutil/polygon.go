// Package polyutil implements operations on an ordered, mutable vertex
// slice: containment and overlap tests, insertion/removal at a specific
// edge, and winding reversal. It is the vertex-slice counterpart to
// package geom's point/segment primitives — geom answers "do these two
// things intersect", polyutil answers "what does this polygon, as a
// mutable list of vertices, contain or overlap".
package polyutil

import (
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/geom"
)

// Polygon is an ordered, clockwise-or-not list of vertices forming a simple
// (possibly concave) closed polygon. The map builder mutates Vertices in
// place as it resolves intersections between source polygons.
type Polygon struct {
	Vertices []mgl32.Vec2
}

// New returns a Polygon wrapping a copy of vertices.
func New(vertices []mgl32.Vec2) *Polygon {
	cp := make([]mgl32.Vec2, len(vertices))
	copy(cp, vertices)
	return &Polygon{Vertices: cp}
}

// VerticesContainPoint reports whether any vertex of the polygon is within
// geom.Epsilon of point (exact point match under epsilon, spec §4.1).
func (p *Polygon) VerticesContainPoint(point mgl32.Vec2) bool {
	for _, v := range p.Vertices {
		if vecEqual(v, point) {
			return true
		}
	}
	return false
}

// IsPointInside reports whether point is inside the polygon. When
// includeEdges is true, a point exactly on an edge (within geom.Epsilon)
// also counts as inside.
func (p *Polygon) IsPointInside(point mgl32.Vec2, includeEdges bool) bool {
	if includeEdges {
		n := len(p.Vertices)
		for i := 0; i < n; i++ {
			v0 := p.Vertices[i]
			v1 := p.Vertices[(i+1)%n]
			if geom.PointOnSegment(v0, v1, point, geom.Epsilon) {
				return true
			}
		}
	}
	return geom.PointInPolygon(p.Vertices, point)
}

// Overlaps reports whether this polygon overlaps other: true if any vertex
// of other lies strictly inside this polygon, any vertex of this polygon
// lies strictly inside other, or any of their edges cross. A vertex on the
// other polygon's boundary is not strictly inside, and edges that only meet
// at an endpoint of either edge do not cross, so polygons sharing an edge
// or touching at a vertex do not overlap.
func (p *Polygon) Overlaps(other *Polygon) bool {
	strictlyInside := func(poly *Polygon, v mgl32.Vec2) bool {
		n := len(poly.Vertices)
		for i := 0; i < n; i++ {
			if geom.PointOnSegment(poly.Vertices[i], poly.Vertices[(i+1)%n], v, geom.Epsilon) {
				return false
			}
		}
		return poly.IsPointInside(v, false)
	}
	for _, v := range other.Vertices {
		if strictlyInside(p, v) {
			return true
		}
	}
	for _, v := range p.Vertices {
		if strictlyInside(other, v) {
			return true
		}
	}

	n, m := len(p.Vertices), len(other.Vertices)
	for i := 0; i < n; i++ {
		a0 := p.Vertices[i]
		a1 := p.Vertices[(i+1)%n]
		for j := 0; j < m; j++ {
			b0 := other.Vertices[j]
			b1 := other.Vertices[(j+1)%m]
			pt, _, ok := geom.SegmentIntersect(a0, a1, b0, b1)
			if !ok {
				continue
			}
			touching := false
			for _, e := range [4]mgl32.Vec2{a0, a1, b0, b1} {
				if pt.Sub(e).Len() < geom.PrecisionLow {
					touching = true
				}
			}
			if !touching {
				return true
			}
		}
	}
	return false
}

// Contains reports whether every vertex of other lies inside this polygon.
func (p *Polygon) Contains(other *Polygon, includeEdges bool) bool {
	for _, v := range other.Vertices {
		if !p.IsPointInside(v, includeEdges) {
			return false
		}
	}
	return true
}

// InsertPoint inserts point between the consecutive vertices after and
// before (in either order), so that a shared-boundary vertex discovered by
// the builder becomes part of both polygons. A no-op if after/before are
// not adjacent vertices of the polygon, or if point is already present.
func (p *Polygon) InsertPoint(point, after, before mgl32.Vec2) {
	if p.VerticesContainPoint(point) {
		return
	}
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		v0 := p.Vertices[i]
		v1 := p.Vertices[(i+1)%n]

		matchesForward := vecEqual(v0, after) && vecEqual(v1, before)
		matchesBackward := vecEqual(v0, before) && vecEqual(v1, after)
		if !matchesForward && !matchesBackward {
			continue
		}

		out := make([]mgl32.Vec2, 0, n+1)
		out = append(out, p.Vertices[:i+1]...)
		out = append(out, point)
		out = append(out, p.Vertices[i+1:]...)
		p.Vertices = out
		return
	}
}

// RemovePoint removes the first vertex equal to point, if any.
func (p *Polygon) RemovePoint(point mgl32.Vec2) {
	for i, v := range p.Vertices {
		if vecEqual(v, point) {
			p.Vertices = append(p.Vertices[:i], p.Vertices[i+1:]...)
			return
		}
	}
}

// ReverseVertices reverses the polygon's winding order in place.
func (p *Polygon) ReverseVertices() {
	for l, r := 0, len(p.Vertices)-1; l < r; l, r = l+1, r-1 {
		p.Vertices[l], p.Vertices[r] = p.Vertices[r], p.Vertices[l]
	}
}

// SignedArea returns the shoelace signed area of the polygon.
func (p *Polygon) SignedArea() float32 {
	return geom.SignedArea(p.Vertices)
}

// IsClockwise reports whether the polygon winds clockwise.
func (p *Polygon) IsClockwise() bool {
	return geom.IsClockwise(p.Vertices)
}

func vecEqual(a, b mgl32.Vec2) bool {
	return a.Sub(b).Len() < geom.Epsilon
}
