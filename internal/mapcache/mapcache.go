// Package mapcache implements the uniform grid spatial index the renderer
// uses for 3D segment/geometry intersection: both dynamic-shadow
// visibility queries and the static-mode light baking pass in package
// level go through it. It is built once from a level.Level and its light
// membership is then kept incrementally in sync as lights move.
package mapcache

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/geom"
	"sectorcast/internal/level"
)

// DefaultCellSize is the nominal world-unit width/height of one grid cell,
// matching the original renderer's CELL_SIZE constant. It is independent of
// level.SegmentLength — correctness does not depend on the two agreeing.
const DefaultCellSize = 76.0

// epsilonPerturb is how far the start/end points of a 3D intersection query
// are nudged along the direction of travel, to avoid grazing the exact
// boundary of the first/last cell at t = 0.
const epsilonPerturb = 0.001

// cell holds the linedefs whose segment touches it and the lights whose
// disk touches it.
type cell struct {
	linedefs []level.LinedefIndex
	lights   []level.LightIndex
}

// Cache is the uniform grid built over a Level's bounding box.
type Cache struct {
	lvl      *level.Level
	origin   mgl32.Vec2
	w, h     int
	cellSize float32
	cells    []cell

	droppedCellLights int
}

// Build constructs a Cache over lvl's current bounding box and linedefs,
// binning every linedef into the cells its segment touches (spec §4.4,
// "For each cell, test every linedef..."). Lights are not registered here;
// the caller (typically the demo harness, right after building the level)
// registers each existing light with AddLight.
func Build(lvl *level.Level, cellSize float32) *Cache {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	w := int(math.Ceil(float64((lvl.MaxX - lvl.MinX) / cellSize)))
	h := int(math.Ceil(float64((lvl.MaxY - lvl.MinY) / cellSize)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	c := &Cache{
		lvl:      lvl,
		origin:   mgl32.Vec2{lvl.MinX, lvl.MinY},
		w:        w,
		h:        h,
		cellSize: cellSize,
		cells:    make([]cell, w*h),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.binLinedefsForCell(x, y)
		}
	}
	return c
}

func (c *Cache) binLinedefsForCell(x, y int) {
	p0 := mgl32.Vec2{float32(x) * c.cellSize, float32(y) * c.cellSize}
	p1 := mgl32.Vec2{p0.X() + c.cellSize, p0.Y()}
	p2 := mgl32.Vec2{p0.X() + c.cellSize, p0.Y() + c.cellSize}
	p3 := mgl32.Vec2{p0.X(), p0.Y() + c.cellSize}

	cl := &c.cells[y*c.w+x]
	for i := range c.lvl.Linedefs {
		ld := &c.lvl.Linedefs[i]
		v0 := c.lvl.Vertex(ld.V0).Point.Sub(c.origin)
		v1 := c.lvl.Vertex(ld.V1).Point.Sub(c.origin)

		crosses := func(a, b mgl32.Vec2) bool {
			_, _, ok := geom.SegmentIntersect(v0, v1, a, b)
			return ok
		}
		contained := v0.X() >= p0.X() && v0.Y() >= p0.Y() && v0.X() < p2.X() && v0.Y() < p2.Y() &&
			v1.X() >= p0.X() && v1.Y() >= p0.Y() && v1.X() < p2.X() && v1.Y() < p2.Y()

		if contained || crosses(p0, p1) || crosses(p1, p2) || crosses(p2, p3) || crosses(p3, p0) {
			cl.linedefs = append(cl.linedefs, level.LinedefIndex(i))
		}
	}
}

// cellRange returns the inclusive [minX,maxX]x[minY,maxY] cell coordinate
// range a disk of the given center/radius touches, clamped to the grid.
func (c *Cache) cellRange(center mgl32.Vec2, radius float32) (minX, minY, maxX, maxY int) {
	local := center.Sub(c.origin)
	minX = int(math.Floor(float64((local.X() - radius) / c.cellSize)))
	maxX = int(math.Floor(float64((local.X() + radius) / c.cellSize)))
	minY = int(math.Floor(float64((local.Y() - radius) / c.cellSize)))
	maxY = int(math.Floor(float64((local.Y() + radius) / c.cellSize)))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > c.w-1 {
		maxX = c.w - 1
	}
	if maxY > c.h-1 {
		maxY = c.h - 1
	}
	return
}

// AddLight registers idx (whose current position/radius is read from lvl)
// with every cell its disk touches (spec §4.4, "light membership... in the
// add pass, append it to the new range's cells"). Overflow per cell is
// dropped silently and counted by DroppedCellLightCount.
func (c *Cache) AddLight(idx level.LightIndex) {
	lt := c.lvl.Light(idx)
	center := mgl32.Vec2{lt.Position.X(), lt.Position.Y()}
	minX, minY, maxX, maxY := c.cellRange(center, lt.Radius)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cl := &c.cells[y*c.w+x]
			if len(cl.lights) >= level.MaxLightsPerSurface {
				c.droppedCellLights++
				continue
			}
			cl.lights = append(cl.lights, idx)
		}
	}
}

// RemoveLight drops idx from every cell in the range it previously occupied
// (spec §4.4, "in the removal pass, drop the light from the old range's
// cells"). oldCenter/oldRadius must be the light's position/radius before
// the move that is about to happen.
func (c *Cache) RemoveLight(idx level.LightIndex, oldCenter mgl32.Vec2, oldRadius float32) {
	minX, minY, maxX, maxY := c.cellRange(oldCenter, oldRadius)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cl := &c.cells[y*c.w+x]
			for i, li := range cl.lights {
				if li == idx {
					cl.lights = append(cl.lights[:i], cl.lights[i+1:]...)
					break
				}
			}
		}
	}
}

// MoveLight updates idx's cell membership after its position has changed:
// remove it from the cells around oldCenter, then re-add it around its
// (already-updated) current position in lvl.
func (c *Cache) MoveLight(idx level.LightIndex, oldCenter mgl32.Vec2, oldRadius float32) {
	c.RemoveLight(idx, oldCenter, oldRadius)
	c.AddLight(idx)
}

// DroppedCellLightCount returns how many cell/light memberships were
// dropped for exceeding level.MaxLightsPerSurface in a single cell.
func (c *Cache) DroppedCellLightCount() int { return c.droppedCellLights }

// cellAt returns the cell at world position p, or (nil, false) if p falls
// outside the grid.
func (c *Cache) cellAt(p mgl32.Vec2) (*cell, bool) {
	local := p.Sub(c.origin)
	x := int(math.Floor(float64(local.X() / c.cellSize)))
	y := int(math.Floor(float64(local.Y() / c.cellSize)))
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return nil, false
	}
	return &c.cells[y*c.w+x], true
}

// LightsAt returns the light indices registered in the cell containing
// world position p, or nil if p is out of bounds (the "null-cell path",
// spec §9: "out-of-bounds cache lookup... the sky/floor/ceiling sampling
// uses a null-cell path (zero lights)").
func (c *Cache) LightsAt(p mgl32.Vec2) []level.LightIndex {
	cl, ok := c.cellAt(p)
	if !ok {
		return nil
	}
	return cl.lights
}

// Intersect3D reports whether the 3D segment start-end crosses any
// linedef's wall plane between its floor and ceiling, walking the grid
// cell-by-cell with a DDA traversal (spec §4.4). Out-of-bounds start/end
// cells are conservatively reported as blocked, matching the original's
// map_cache_intersect_3d.
func (c *Cache) Intersect3D(start, end mgl32.Vec3) bool {
	dx := end.X() - start.X()
	dy := end.Y() - start.Y()
	dz := end.Z() - start.Z()

	rayStartXY := mgl32.Vec2{start.X(), start.Y()}
	rayEndXY := mgl32.Vec2{end.X(), end.Y()}
	rayDirXY := rayEndXY.Sub(rayStartXY)

	s := rayStartXY.Sub(c.origin)
	e := rayEndXY.Sub(c.origin)

	s = perturb(s, dx, dy)
	e = perturb(e, dx, dy)

	ix := int(math.Floor(float64(s.X() / c.cellSize)))
	iy := int(math.Floor(float64(s.Y() / c.cellSize)))
	if ix < 0 || iy < 0 || ix >= c.w || iy >= c.h {
		return true
	}

	ixEnd := int(math.Floor(float64(e.X() / c.cellSize)))
	iyEnd := int(math.Floor(float64(e.Y() / c.cellSize)))
	if ixEnd < 0 || iyEnd < 0 || ixEnd >= c.w || iyEnd >= c.h {
		return true
	}

	stepX, stepY := 0, 0
	if dx > 0 {
		stepX = 1
	} else if dx < 0 {
		stepX = -1
	}
	if dy > 0 {
		stepY = 1
	} else if dy < 0 {
		stepY = -1
	}

	fdx := float32(math.Inf(1))
	if dx != 0 {
		fdx = 1 / float32(math.Abs(float64(dx)))
	}
	fdy := float32(math.Inf(1))
	if dy != 0 {
		fdy = 1 / float32(math.Abs(float64(dy)))
	}

	tDeltaX := float32(math.MaxFloat32)
	if stepX != 0 {
		tDeltaX = c.cellSize * fdx
	}
	tDeltaY := float32(math.MaxFloat32)
	if stepY != 0 {
		tDeltaY = c.cellSize * fdy
	}

	var xOffset, yOffset float32
	if stepX > 0 {
		xOffset = c.cellSize*float32(ix+1) - s.X()
	} else {
		xOffset = s.X() - c.cellSize*float32(ix)
	}
	if stepY > 0 {
		yOffset = c.cellSize*float32(iy+1) - s.Y()
	} else {
		yOffset = s.Y() - c.cellSize*float32(iy)
	}

	tMaxX := float32(math.MaxFloat32)
	if stepX != 0 {
		tMaxX = xOffset * fdx
	}
	tMaxY := float32(math.MaxFloat32)
	if stepY != 0 {
		tMaxY = yOffset * fdy
	}

	t := float32(0)
	for {
		nextT := tMaxX
		if tMaxY < tMaxX {
			nextT = tMaxY
		}
		if c.collide(ix, iy, start.Z()+t*dz, start.Z()+nextT*dz, dz, start, end, rayStartXY, rayDirXY) {
			return true
		}

		if ix == ixEnd && iy == iyEnd {
			return false
		}

		if tMaxX < tMaxY {
			t = tMaxX
			tMaxX += tDeltaX
			ix += stepX
		} else {
			t = tMaxY
			tMaxY += tDeltaY
			iy += stepY
		}
	}
}

func perturb(p mgl32.Vec2, dx, dy float32) mgl32.Vec2 {
	x, y := p.X(), p.Y()
	switch {
	case dx < 0:
		x -= epsilonPerturb
	case dx > 0:
		x += epsilonPerturb
	}
	switch {
	case dy < 0:
		y -= epsilonPerturb
	case dy > 0:
		y += epsilonPerturb
	}
	return mgl32.Vec2{x, y}
}

// collide tests the ray against every linedef referenced by cell (ix, iy).
func (c *Cache) collide(ix, iy int, currentZ, nextZ, dz float32, start, end mgl32.Vec3, startXY, rayDir mgl32.Vec2) bool {
	cl := &c.cells[iy*c.w+ix]
	if len(cl.linedefs) == 0 {
		return false
	}

	for _, ldIdx := range cl.linedefs {
		ld := c.lvl.Linedef(ldIdx)

		// Only a two-sided line can be passed through inside its opening; a
		// one-sided line blocks at any height.
		if ld.HasBackSector() {
			if dz < 0 {
				if float32(ld.MaxFloorHeight) < nextZ && float32(ld.MinCeilingHeight) > currentZ {
					continue
				}
			} else {
				if float32(ld.MaxFloorHeight) < currentZ && float32(ld.MinCeilingHeight) > nextZ {
					continue
				}
			}
		}

		v0 := c.lvl.Vertex(ld.V0).Point
		_, u, ok := geom.SegmentIntersectCached(startXY, rayDir, v0, ld.Direction)
		if !ok || u <= geom.Epsilon {
			continue
		}

		if !ld.HasBackSector() {
			return true
		}

		z := start.Z() + dz*u
		if z < float32(ld.MaxFloorHeight) || z > float32(ld.MinCeilingHeight) {
			return true
		}
	}
	return false
}
