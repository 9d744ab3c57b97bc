package polyutil

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func square() *Polygon {
	return New([]mgl32.Vec2{{0, 0}, {0, 100}, {100, 100}, {100, 0}})
}

func TestIsPointInsideEveryVertexAndMidpoint(t *testing.T) {
	p := square()
	for _, v := range p.Vertices {
		if !p.IsPointInside(v, true) {
			t.Errorf("vertex %v should be inside with includeEdges=true", v)
		}
	}
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		mid := p.Vertices[i].Add(p.Vertices[(i+1)%n]).Mul(0.5)
		if !p.IsPointInside(mid, true) {
			t.Errorf("edge midpoint %v should be inside with includeEdges=true", mid)
		}
	}
}

func TestVerticesContainPoint(t *testing.T) {
	p := square()
	if !p.VerticesContainPoint(mgl32.Vec2{0, 0.000001}) {
		t.Errorf("point within epsilon of a vertex should count as contained")
	}
	if p.VerticesContainPoint(mgl32.Vec2{50, 50}) {
		t.Errorf("center point should not match any vertex")
	}
}

func TestContainsInnerSquare(t *testing.T) {
	outer := square()
	inner := New([]mgl32.Vec2{{25, 25}, {25, 75}, {75, 75}, {75, 25}})

	if !outer.Contains(inner, false) {
		t.Errorf("outer square should contain inner square")
	}
	if inner.Contains(outer, false) {
		t.Errorf("inner square should not contain outer square")
	}
}

func TestOverlapsPartial(t *testing.T) {
	a := square()
	b := New([]mgl32.Vec2{{50, 50}, {50, 150}, {150, 150}, {150, 50}})

	if !a.Overlaps(b) {
		t.Errorf("partially overlapping squares should overlap")
	}

	c := New([]mgl32.Vec2{{200, 200}, {200, 300}, {300, 300}, {300, 200}})
	if a.Overlaps(c) {
		t.Errorf("disjoint squares should not overlap")
	}
}

func TestInsertAndRemovePoint(t *testing.T) {
	p := square()
	inserted := mgl32.Vec2{0, 50}
	p.InsertPoint(inserted, mgl32.Vec2{0, 0}, mgl32.Vec2{0, 100})

	if len(p.Vertices) != 5 {
		t.Fatalf("expected 5 vertices after insert, got %d", len(p.Vertices))
	}
	if p.Vertices[1] != inserted {
		t.Errorf("inserted point should sit between the two adjacent vertices, got order %v", p.Vertices)
	}

	p.RemovePoint(inserted)
	if len(p.Vertices) != 4 {
		t.Fatalf("expected 4 vertices after remove, got %d", len(p.Vertices))
	}
}

func TestReverseVertices(t *testing.T) {
	p := square()
	wasClockwise := p.IsClockwise()
	p.ReverseVertices()
	if p.IsClockwise() == wasClockwise {
		t.Errorf("reversing vertices should flip winding")
	}
}
