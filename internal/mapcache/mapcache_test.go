package mapcache

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/level"
)

func gridLevel(t *testing.T, n int, cellSize float32) *level.Level {
	t.Helper()
	lvl := level.New()
	tex := [3]level.TextureRef{1, 2, 3}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			x0 := float32(x) * cellSize
			y0 := float32(y) * cellSize
			verts := []mgl32.Vec2{
				{x0, y0}, {x0, y0 + cellSize}, {x0 + cellSize, y0 + cellSize}, {x0 + cellSize, y0},
			}
			lvl.CreateSectorFromPolygon(verts, 0, 128, 10, 11, tex)
		}
	}
	return lvl
}

func TestBuildGridDimensions(t *testing.T) {
	lvl := gridLevel(t, 32, 128)
	c := Build(lvl, 128)

	if c.w < 1 || c.h < 1 {
		t.Fatalf("expected a non-empty grid, got %dx%d", c.w, c.h)
	}
}

func TestIntersect3DOutOfBoundsIsBlocked(t *testing.T) {
	lvl := gridLevel(t, 4, 128)
	c := Build(lvl, 128)

	blocked := c.Intersect3D(mgl32.Vec3{-10000, -10000, 64}, mgl32.Vec3{10, 10, 64})
	if !blocked {
		t.Errorf("a query starting outside the grid should be conservatively blocked")
	}
}

func TestIntersect3DAdjacentSameSectorIsUnblocked(t *testing.T) {
	lvl := gridLevel(t, 32, 128)
	c := Build(lvl, 128)

	blocked := c.Intersect3D(mgl32.Vec3{10, 10, 64}, mgl32.Vec3{200, 10, 64})
	if blocked {
		t.Errorf("a ray into an adjacent open sector at the same height should not be blocked")
	}
}

func TestIntersect3DDeterministicAcrossGrid(t *testing.T) {
	lvl := gridLevel(t, 32, 128)
	c := Build(lvl, 128)

	first := c.Intersect3D(mgl32.Vec3{0, 0, 128}, mgl32.Vec3{4095, 4095, 128})
	second := c.Intersect3D(mgl32.Vec3{0, 0, 128}, mgl32.Vec3{4095, 4095, 128})
	if first != second {
		t.Errorf("intersect_3d must be deterministic for identical inputs")
	}
}

func TestLightMembershipAddMoveRemove(t *testing.T) {
	lvl := gridLevel(t, 8, 128)
	c := Build(lvl, 128)

	idx := lvl.AddLight(mgl32.Vec3{64, 64, 0}, 50, 1)
	c.AddLight(idx)

	lights := c.LightsAt(mgl32.Vec2{64, 64})
	found := false
	for _, li := range lights {
		if li == idx {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the newly added light to be registered at its own cell")
	}

	oldCenter := mgl32.Vec2{64, 64}
	lvl.SetLightPosition(idx, mgl32.Vec3{900, 900, 0})
	c.MoveLight(idx, oldCenter, 50)

	lights = c.LightsAt(mgl32.Vec2{64, 64})
	for _, li := range lights {
		if li == idx {
			t.Errorf("expected the moved light to be gone from its old cell")
		}
	}

	lights = c.LightsAt(mgl32.Vec2{900, 900})
	found = false
	for _, li := range lights {
		if li == idx {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the moved light to be registered at its new cell")
	}
}

func TestLightsAtOutOfBoundsReturnsNil(t *testing.T) {
	lvl := gridLevel(t, 4, 128)
	c := Build(lvl, 128)

	if lights := c.LightsAt(mgl32.Vec2{-99999, -99999}); lights != nil {
		t.Errorf("expected nil light list for an out-of-bounds cell lookup, got %v", lights)
	}
}

func TestCellLightOverflowDropsSilently(t *testing.T) {
	lvl := gridLevel(t, 2, 128)
	c := Build(lvl, 128)

	var last level.LightIndex
	for i := 0; i < level.MaxLightsPerSurface+2; i++ {
		idx := lvl.AddLight(mgl32.Vec3{64, 64, 0}, 200, 1)
		c.AddLight(idx)
		last = idx
	}
	_ = last

	if c.DroppedCellLightCount() == 0 {
		t.Errorf("expected at least one dropped cell-light membership once a cell's list fills up")
	}
}
