package builder

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/level"
)

func squareAt(x0, y0, x1, y1 float32) []mgl32.Vec2 {
	return []mgl32.Vec2{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}}
}

func TestBuildDisjointPolygonsProduceIndependentSectors(t *testing.T) {
	polys := []SourcePolygon{
		{Vertices: squareAt(0, 0, 100, 100), FloorHeight: 0, CeilingHeight: 64, FloorTexture: 1, CeilingTexture: 2, WallTextures: [3]level.TextureRef{3, 4, 5}},
		{Vertices: squareAt(500, 500, 600, 600), FloorHeight: 0, CeilingHeight: 64, FloorTexture: 1, CeilingTexture: 2, WallTextures: [3]level.TextureRef{3, 4, 5}},
	}

	lvl, cache := Build(polys, nil)
	if cache == nil {
		t.Fatalf("expected a non-nil map cache")
	}
	if len(lvl.Sectors) != 2 {
		t.Fatalf("expected 2 independent sectors, got %d", len(lvl.Sectors))
	}
	for _, s := range lvl.Sectors {
		for _, ldIdx := range s.Linedefs {
			if lvl.Linedef(ldIdx).HasBackSector() {
				t.Errorf("disjoint rooms should not produce any two-sided linedefs")
			}
		}
	}
}

func TestBuildAdjacentPolygonsShareAPortal(t *testing.T) {
	polys := []SourcePolygon{
		{Vertices: squareAt(0, 0, 100, 100), FloorHeight: 0, CeilingHeight: 64, WallTextures: [3]level.TextureRef{3, 4, 5}},
		{Vertices: squareAt(100, 0, 200, 100), FloorHeight: 0, CeilingHeight: 80, WallTextures: [3]level.TextureRef{3, 4, 5}},
	}

	lvl, _ := Build(polys, nil)

	twoSided := 0
	for i := range lvl.Linedefs {
		if lvl.Linedefs[i].HasBackSector() {
			twoSided++
		}
	}
	if twoSided != 1 {
		t.Errorf("expected exactly 1 shared portal linedef between the two adjacent rooms, got %d", twoSided)
	}
}

func TestBuildContainmentLinksInnerSectorAsBackSide(t *testing.T) {
	polys := []SourcePolygon{
		{Vertices: squareAt(0, 0, 200, 200), FloorHeight: 0, CeilingHeight: 64, WallTextures: [3]level.TextureRef{3, 4, 5}},
		{Vertices: squareAt(50, 50, 150, 150), FloorHeight: 0, CeilingHeight: 64, WallTextures: [3]level.TextureRef{3, 4, 5}},
	}

	lvl, _ := Build(polys, nil)
	if len(lvl.Sectors) != 2 {
		t.Fatalf("expected 2 sectors (outer untouched, inner linked by containment), got %d", len(lvl.Sectors))
	}

	// Per spec §4.2 ("for each pair (j, i) with j > i..."), the later-index
	// sector (here the inner square, index 1) is the one whose linedefs get
	// tested for containment inside the earlier polygon, and the earlier
	// sector (the outer square, index 0) becomes their back side.
	outerIdx := level.SectorIndex(0)
	linkedAsBack := 0
	for _, ldIdx := range lvl.Sector(1).Linedefs {
		ld := lvl.Linedef(ldIdx)
		if ld.HasBackSector() && ld.Side[1].Sector == outerIdx {
			linkedAsBack++
		}
	}
	if linkedAsBack != 4 {
		t.Errorf("expected all 4 of the inner sector's linedefs to link to the outer sector as their back side, got %d", linkedAsBack)
	}
}

func TestBuildReversesAntiClockwiseInput(t *testing.T) {
	cw := squareAt(0, 0, 100, 100)
	ccw := make([]mgl32.Vec2, len(cw))
	for i, v := range cw {
		ccw[len(cw)-1-i] = v
	}

	wall := [3]level.TextureRef{3, 4, 5}
	lvlCW, _ := Build([]SourcePolygon{{Vertices: cw, FloorHeight: 0, CeilingHeight: 64, WallTextures: wall}}, nil)
	lvlCCW, _ := Build([]SourcePolygon{{Vertices: ccw, FloorHeight: 0, CeilingHeight: 64, WallTextures: wall}}, nil)

	verticesOf := func(lvl *level.Level) []mgl32.Vec2 {
		sector := lvl.Sector(0)
		out := make([]mgl32.Vec2, 0, len(sector.Linedefs))
		for _, ldIdx := range sector.Linedefs {
			out = append(out, lvl.Vertex(lvl.Linedef(ldIdx).V0).Point)
		}
		return out
	}

	gotCW := verticesOf(lvlCW)
	gotCCW := verticesOf(lvlCCW)

	if len(gotCW) != len(gotCCW) {
		t.Fatalf("expected matching vertex counts, got %d vs %d", len(gotCW), len(gotCCW))
	}
	for i := range gotCW {
		if gotCW[i] != gotCCW[i] {
			t.Errorf("vertex %d: clockwise build has %v, anti-clockwise input has %v after reversal; expected identical winding", i, gotCW[i], gotCCW[i])
		}
	}
}

// fixedDifferenceClipper is a Clipper stub that returns a pre-computed
// external contour regardless of its arguments; builder_test.go uses it to
// exercise the split-and-splice path in resolveIntersections without
// depending on a real polygon-clipping library.
type fixedDifferenceClipper struct {
	external [][]mgl32.Vec2
}

func (f fixedDifferenceClipper) Difference(subject, clip []mgl32.Vec2) (external, holes [][]mgl32.Vec2) {
	return f.external, nil
}

// TestBuildResolvesPartiallyOverlappingSquares covers spec §8 scenario 5:
// an outer (0,0)-(100,100) square and an inner square extending past it to
// (150,75). The clip removes the overlapping notch from the outer square
// (introducing new vertices at x=100 where the inner square's top and
// bottom edges now cross the outer boundary) and leaves the inner square
// to carve its own back-side portals out of the notch.
func TestBuildResolvesPartiallyOverlappingSquares(t *testing.T) {
	outer := squareAt(0, 0, 100, 100)
	inner := squareAt(50, 25, 150, 75)

	// outer minus inner: the right-middle bite removed, traced inward
	// around the notch instead of straight down the original right edge.
	notchedOuter := []mgl32.Vec2{
		{0, 0}, {0, 100}, {100, 100}, {100, 75}, {50, 75}, {50, 25}, {100, 25}, {100, 0},
	}

	clipper := fixedDifferenceClipper{external: [][]mgl32.Vec2{notchedOuter}}
	wall := [3]level.TextureRef{3, 4, 5}
	polys := []SourcePolygon{
		{Vertices: outer, FloorHeight: 0, CeilingHeight: 64, WallTextures: wall},
		{Vertices: inner, FloorHeight: 0, CeilingHeight: 80, WallTextures: wall},
	}

	lvl, _ := Build(polys, clipper)

	if len(lvl.Sectors) != 2 {
		t.Fatalf("expected 2 sectors, got %d", len(lvl.Sectors))
	}
	if len(lvl.Vertices) != 10 {
		t.Errorf("expected 10 distinct vertices (new intersection vertices at x=100 shared by both sectors), got %d", len(lvl.Vertices))
	}
	if len(lvl.Linedefs) != 11 {
		t.Errorf("expected 11 linedefs (8 from the notched outer square, 3 new from the inner square), got %d", len(lvl.Linedefs))
	}

	twoSided := 0
	for i := range lvl.Linedefs {
		if lvl.Linedefs[i].HasBackSector() {
			twoSided++
		}
	}
	if twoSided != 3 {
		t.Errorf("expected 3 shared linedefs (the notch's left, top and bottom edges) to become two-sided portals, got %d", twoSided)
	}
}

func TestBuildDegenerateVertexCountSkipsSector(t *testing.T) {
	polys := []SourcePolygon{
		{Vertices: []mgl32.Vec2{{0, 0}, {10, 10}}, FloorHeight: 0, CeilingHeight: 64},
		{Vertices: squareAt(200, 200, 300, 300), FloorHeight: 0, CeilingHeight: 64},
	}

	lvl, _ := Build(polys, nil)
	if len(lvl.Sectors) != 1 {
		t.Fatalf("expected the degenerate 2-vertex polygon to be skipped, got %d sectors", len(lvl.Sectors))
	}
}
