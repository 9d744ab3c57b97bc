// Package geom implements the 2D/3D geometric primitives the rest of
// sectorcast is built on: segment intersection, point/segment and
// point/triangle tests, signed area, and winding-number point-in-polygon.
//
// Every predicate here is total: degenerate input (zero-length segments,
// near-parallel lines) is reported as "no intersection" rather than an
// error. Callers must not feed non-simple geometry.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the general-purpose geometric tolerance used by cross-product
// degeneracy checks and point-on-segment tests.
const Epsilon = 1e-5

// PrecisionLow is the coarser tolerance the map builder uses when merging
// co-linear vertices across polygons (see spec §4.2).
const PrecisionLow = 1e-2

// SnapTolerance is the distance under which two points are considered the
// same vertex (spec §3: "any two points within unit distance are merged").
const SnapTolerance = 1.0

// Cross returns the 2D cross product (perp dot product) of a and b.
func Cross(a, b mgl32.Vec2) float32 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// Sign returns a signed value whose sign indicates which side of the
// directed line p0->p1 the point lies on: positive when point is to the
// left of the line, negative when to the right, zero when collinear.
func Sign(p0, p1, point mgl32.Vec2) float32 {
	return (p1.X()-p0.X())*(point.Y()-p0.Y()) - (point.X()-p0.X())*(p1.Y()-p0.Y())
}

// PerpendicularDistance returns the distance from point to the infinite
// line through a and b.
func PerpendicularDistance(a, b, point mgl32.Vec2) float32 {
	ab := b.Sub(a)
	length := ab.Len()
	if length == 0 {
		return a.Sub(point).Len()
	}
	return float32(math.Abs(float64(Cross(ab, a.Sub(point))))) / length
}

// SegmentIntersect reports whether segment A->B properly intersects segment
// C->D, returning the intersection point and the parameter u along A->B.
// Degenerate inputs (near-parallel segments, cross product below Epsilon)
// report no intersection.
func SegmentIntersect(a, b, c, d mgl32.Vec2) (point mgl32.Vec2, u float32, ok bool) {
	return SegmentIntersectCached(a, b.Sub(a), c, d.Sub(c))
}

// SegmentIntersectCached is the cached variant of SegmentIntersect: it
// accepts precomputed direction vectors (b-a and d-c) so hot inner loops
// (the map cache's DDA walk) avoid recomputing a subtraction per candidate
// linedef.
func SegmentIntersectCached(a, dirAB, c, dirCD mgl32.Vec2) (point mgl32.Vec2, u float32, ok bool) {
	denom := dirCD.Y()*dirAB.X() - dirCD.X()*dirAB.Y()
	if denom > -Epsilon && denom < Epsilon {
		return mgl32.Vec2{}, 0, false
	}
	inv := 1.0 / denom
	ac := a.Sub(c)

	uB := (dirAB.X()*ac.Y() - dirAB.Y()*ac.X()) * inv
	if uB < 0 || uB > 1 {
		return mgl32.Vec2{}, 0, false
	}

	uA := (dirCD.X()*ac.Y() - dirCD.Y()*ac.X()) * inv
	if uA < 0 || uA > 1 {
		return mgl32.Vec2{}, 0, false
	}

	point = mgl32.Vec2{a.X() + uA*dirAB.X(), a.Y() + uA*dirAB.Y()}
	return point, uA, true
}

// PointOnSegment reports whether point lies on segment a-b within the
// given tolerance.
func PointOnSegment(a, b, point mgl32.Vec2, tolerance float32) bool {
	ab := b.Sub(a)
	length := ab.Len()
	if length < Epsilon {
		return a.Sub(point).Len() <= tolerance
	}
	if PerpendicularDistance(a, b, point) > tolerance {
		return false
	}
	ap := point.Sub(a)
	proj := ap.Dot(ab) / length
	return proj >= -tolerance && proj <= length+tolerance
}

// PointInTriangle reports whether point lies inside triangle a-b-c (or on
// its boundary), via three sign tests of Sign.
func PointInTriangle(a, b, c, point mgl32.Vec2) bool {
	d1 := Sign(a, b, point)
	d2 := Sign(b, c, point)
	d3 := Sign(c, a, point)

	hasNeg := (d1 < 0) || (d2 < 0) || (d3 < 0)
	hasPos := (d1 > 0) || (d2 > 0) || (d3 > 0)

	return !(hasNeg && hasPos)
}

// SignedArea computes the shoelace signed area of a polygon given in vertex
// order. A negative area indicates clockwise winding.
func SignedArea(vertices []mgl32.Vec2) float32 {
	var sum float32
	n := len(vertices)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += vertices[i].X()*vertices[j].Y() - vertices[j].X()*vertices[i].Y()
	}
	return sum * 0.5
}

// IsClockwise reports whether a polygon's vertices wind clockwise, i.e. its
// signed area is <= 0 (spec §3: "builder's output is clockwise").
func IsClockwise(vertices []mgl32.Vec2) bool {
	return SignedArea(vertices) <= 0
}

// PointInPolygon performs the standard winding-number test over an ordered
// vertex slice. The polygon is interior at point iff |winding number| == 1.
func PointInPolygon(vertices []mgl32.Vec2, point mgl32.Vec2) bool {
	wn := 0
	n := len(vertices)
	for i := 0; i < n; i++ {
		v0 := vertices[i]
		v1 := vertices[(i+1)%n]

		if v0.Y() <= point.Y() {
			if v1.Y() > point.Y() && Sign(v0, v1, point) > 0 {
				wn++
			}
		} else if v1.Y() <= point.Y() {
			if Sign(v0, v1, point) < 0 {
				wn--
			}
		}
	}
	return wn == 1 || wn == -1
}
