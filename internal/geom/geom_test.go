package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSegmentIntersectCrossing(t *testing.T) {
	a := mgl32.Vec2{0, 0}
	b := mgl32.Vec2{10, 10}
	c := mgl32.Vec2{0, 10}
	d := mgl32.Vec2{10, 0}

	p, u, ok := SegmentIntersect(a, b, c, d)
	if !ok {
		t.Fatalf("expected intersection")
	}
	if p.X() < 4.9 || p.X() > 5.1 || p.Y() < 4.9 || p.Y() > 5.1 {
		t.Errorf("unexpected intersection point %v", p)
	}
	if u < 0.49 || u > 0.51 {
		t.Errorf("unexpected parameter u=%f", u)
	}
}

func TestSegmentIntersectParallel(t *testing.T) {
	a := mgl32.Vec2{0, 0}
	b := mgl32.Vec2{10, 0}
	c := mgl32.Vec2{0, 5}
	d := mgl32.Vec2{10, 5}

	_, _, ok := SegmentIntersect(a, b, c, d)
	if ok {
		t.Errorf("parallel segments must not report an intersection")
	}
}

func TestSegmentIntersectNonOverlapping(t *testing.T) {
	a := mgl32.Vec2{0, 0}
	b := mgl32.Vec2{1, 1}
	c := mgl32.Vec2{5, 5}
	d := mgl32.Vec2{6, 6}

	_, _, ok := SegmentIntersect(a, b, c, d)
	if ok {
		t.Errorf("collinear, non-overlapping segments must not intersect")
	}
}

func TestSegmentIntersectCachedMatchesUncached(t *testing.T) {
	a := mgl32.Vec2{1, 2}
	b := mgl32.Vec2{11, 2}
	c := mgl32.Vec2{6, -5}
	d := mgl32.Vec2{6, 10}

	p1, u1, ok1 := SegmentIntersect(a, b, c, d)
	p2, u2, ok2 := SegmentIntersectCached(a, b.Sub(a), c, d.Sub(c))

	if ok1 != ok2 || p1 != p2 || u1 != u2 {
		t.Errorf("cached variant diverged: (%v,%v,%v) vs (%v,%v,%v)", p1, u1, ok1, p2, u2, ok2)
	}
}

func TestSignedAreaWinding(t *testing.T) {
	square := []mgl32.Vec2{{0, 0}, {0, 100}, {100, 100}, {100, 0}}
	if !IsClockwise(square) {
		t.Errorf("expected square to be clockwise (signed area <= 0), got area %f", SignedArea(square))
	}

	reversed := make([]mgl32.Vec2, len(square))
	for i, v := range square {
		reversed[len(square)-1-i] = v
	}
	if IsClockwise(reversed) {
		t.Errorf("reversed square should be counter-clockwise")
	}
}

func TestPointInPolygonSquare(t *testing.T) {
	square := []mgl32.Vec2{{0, 0}, {0, 100}, {100, 100}, {100, 0}}

	if !PointInPolygon(square, mgl32.Vec2{50, 50}) {
		t.Errorf("center of square should be inside")
	}
	if PointInPolygon(square, mgl32.Vec2{-10, -10}) {
		t.Errorf("point outside square should not be inside")
	}
}

func TestPointInPolygonConcavePentagon(t *testing.T) {
	pentagon := []mgl32.Vec2{{0, 0}, {0, 100}, {50, 50}, {100, 100}, {100, 0}}

	if PointInPolygon(pentagon, mgl32.Vec2{50, 75}) {
		t.Errorf("point in the concave notch should be outside")
	}
	if !PointInPolygon(pentagon, mgl32.Vec2{10, 10}) {
		t.Errorf("point near the base should be inside")
	}
}

func TestPointOnSegment(t *testing.T) {
	a := mgl32.Vec2{0, 0}
	b := mgl32.Vec2{10, 0}

	if !PointOnSegment(a, b, mgl32.Vec2{5, 0}, Epsilon) {
		t.Errorf("midpoint should be on segment")
	}
	if PointOnSegment(a, b, mgl32.Vec2{5, 1}, Epsilon) {
		t.Errorf("off-segment point should not pass with tight tolerance")
	}
	if !PointOnSegment(a, b, mgl32.Vec2{5, 0.005}, PrecisionLow) {
		t.Errorf("slightly off-segment point should pass with low precision tolerance")
	}
}

func TestPointInTriangle(t *testing.T) {
	a := mgl32.Vec2{0, 0}
	b := mgl32.Vec2{10, 0}
	c := mgl32.Vec2{5, 10}

	if !PointInTriangle(a, b, c, mgl32.Vec2{5, 3}) {
		t.Errorf("centroid-ish point should be inside triangle")
	}
	if PointInTriangle(a, b, c, mgl32.Vec2{-5, -5}) {
		t.Errorf("far point should not be inside triangle")
	}
}
