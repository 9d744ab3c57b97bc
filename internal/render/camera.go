package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/level"
)

// Camera is the renderer's per-frame viewpoint: a 2D position/direction in
// the level's XY plane plus a view height (Z), field of view, a vertical
// pitch offset in pixels, and the sector the camera currently occupies
// (the portal walk's starting point).
type Camera struct {
	Position  mgl32.Vec2
	ViewZ     float32
	Direction mgl32.Vec2
	FOV       float32
	Pitch     float32
	Sector    level.SectorIndex
}
