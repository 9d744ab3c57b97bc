package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/geom"
	"sectorcast/internal/level"
	"sectorcast/internal/mapcache"
	"sectorcast/internal/texture"
)

// frameConstants are the values spec §4.5's "Frame setup" step derives
// once per Draw call and every column reuses: projection scale, the
// camera's 2D position/direction, and the flags/distances sampled once so
// a frame's worth of columns behaves consistently even if config changes
// mid-frame.
type frameConstants struct {
	lvl     *level.Level
	cache   *mapcache.Cache
	sampler texture.Sampler

	width, height int
	halfW, halfH  float32
	unitSize      float32
	pitchOffset   float32

	camPos    mgl32.Vec2
	dirUnit   mgl32.Vec2
	plane     mgl32.Vec2
	viewZ     float32
	camSector level.SectorIndex

	drawDistance    float32
	dimmingDistance float32
	dimmingSteps    int
	dynamicShadows  bool
	simdLighting    bool

	tick uint32

	depthValues []float32

	// breakpoint, if non-nil, is called after every pixel write in
	// single-threaded debug mode (spec §4.6, "a per-pixel 'breakpoint'
	// hook so that an external observer can snapshot the buffer
	// mid-draw"). The parallel path never calls it.
	breakpoint func(x, y int, argb uint32)
}

// rayForColumn computes the (unnormalized) ray direction for column x out
// of width columns, per spec §4.5 step 1: direction + plane·cam_x.
func rayForColumn(frame *frameConstants, x int) mgl32.Vec2 {
	camX := 2*float32(x)/float32(frame.width) - 1
	return frame.dirUnit.Add(frame.plane.Mul(camX))
}

// castColumn runs the full per-column pipeline for column x: search, then
// draw (spec §4.5 steps 2-4).
func castColumn(frame *frameConstants, buf []uint32, x int) {
	rayDir := rayForColumn(frame, x)
	rayDirLen := rayDir.Len()
	if rayDirLen < geom.Epsilon {
		return
	}
	rayDirUnit := rayDir.Mul(1 / rayDirLen)
	thetaInverse := float32(1)
	if denom := frame.dirUnit.Dot(rayDirUnit); denom > geom.Epsilon || denom < -geom.Epsilon {
		thetaInverse = 1 / denom
	}

	state := newColumnState(frame.height, thetaInverse)
	rayEnd := frame.camPos.Add(rayDir.Mul(frame.drawDistance))

	findIntersections(frame, state, frame.startSectorFor(x), rayDir, rayEnd)

	state.phase = phaseDrawing
	drawColumn(frame, buf, x, state, rayDir)
	state.phase = phaseFinished
}

// startSectorFor is a hook point so every column begins its portal descent
// from the camera's current sector; kept as a method on frameConstants so
// castColumn reads cleanly.
func (f *frameConstants) startSectorFor(_ int) level.SectorIndex { return f.camSector }

// findIntersections recursively descends the portal graph from sector,
// testing the ray against every linedef of the sector's (possibly
// pre-pass-narrowed) linedef list and recording hits in state, per spec
// §4.5 step 3.
func findIntersections(frame *frameConstants, state *columnState, sector level.SectorIndex, rayDir, rayEnd mgl32.Vec2) {
	if state.hasVisited(sector) {
		return
	}
	state.markVisited(sector)

	secPtr := frame.lvl.Sector(sector)
	ids := linedefsForColumn(secPtr, frame.tick)

	rayFull := rayEnd.Sub(frame.camPos)
	for _, ldIdx := range ids {
		ld := frame.lvl.Linedef(ldIdx)
		side := sideFacingSector(ld, sector)

		v0 := frame.lvl.Vertex(ld.V0).Point
		point, u, ok := geom.SegmentIntersectCached(frame.camPos, rayFull, v0, ld.Direction)
		if !ok || u <= geom.Epsilon {
			continue
		}

		planarDistance := u * frame.drawDistance
		pointDistance := planarDistance * state.thetaInverse

		t := lineParameter(ld, v0, point)
		lightStep := lightStepFor(pointDistance, frame.dimmingDistance, frame.dimmingSteps)

		hit := intersection{
			linedef: ldIdx,
			sector:  sector,
			side:    side,
			point:   point,
			t:       t,

			planarDistance: planarDistance,
			pointDistance:  pointDistance,
			lightStep:      lightStep,
		}
		if planarDistance > 0 {
			hit.planarDistanceInverse = 1 / planarDistance
		}
		if pointDistance > 0 {
			hit.pointDistanceInverse = 1 / pointDistance
		}
		state.insert(hit)

		if ld.HasBackSector() {
			back := otherSide(ld, side)
			if !state.hasVisited(back) {
				findIntersections(frame, state, back, rayDir, rayEnd)
			}
		}
	}
}

// lineParameter projects point onto linedef ld (whose direction vector
// runs from v0 to v1) and returns the parametric t in [0, 1] used for the
// wall's horizontal texture coordinate.
func lineParameter(ld *level.Linedef, v0, point mgl32.Vec2) float32 {
	lenSq := ld.Length * ld.Length
	if lenSq < geom.Epsilon {
		return 0
	}
	return point.Sub(v0).Dot(ld.Direction) / lenSq
}

// drawColumn walks state's sorted intersection list nearest-to-farthest,
// drawing walls, steps, ceilings, floors and sky as it narrows the open
// vertical window, per spec §4.5 step 4. Two-sided middle textures are
// deferred and composited back-to-front after the rest of the column is
// drawn.
func drawColumn(frame *frameConstants, buf []uint32, x int, state *columnState, rayDir mgl32.Vec2) {
	type overlay struct {
		ld               *level.Linedef
		side             int
		from, to         int
		t, lineLength    float32
		planarDistance   float32
		pointDistance    float32
		pointDistInverse float32
		lightStep        int
		sector           level.SectorIndex
	}
	var overlays []overlay

	for i := range state.intersections {
		if state.phase == phaseFinished {
			break
		}
		hit := &state.intersections[i]
		ld := frame.lvl.Linedef(hit.linedef)
		sector := frame.lvl.Sector(hit.sector)
		scale := frame.unitSize / hit.planarDistance

		ceilScreen := frame.halfH - (float32(sector.CeilingHeight)-frame.viewZ)*scale
		floorScreen := frame.halfH - (float32(sector.FloorHeight)-frame.viewZ)*scale

		if !ld.HasBackSector() {
			ceilY := clampRow(round(ceilScreen), state.topLimit, state.bottomLimit)
			floorY := clampRow(round(floorScreen), state.topLimit, state.bottomLimit)

			drawHorizontalSpan(frame, buf, x, state.topLimit, ceilY, sector, true, hit, rayDir)
			drawWallSpan(frame, buf, x, ceilY, floorY, ld, hit.side, level.TextureMiddle, hit, rayDir)
			drawHorizontalSpan(frame, buf, x, floorY, state.bottomLimit, sector, false, hit, rayDir)

			state.phase = phaseFinished
			continue
		}

		backIdx := otherSide(ld, hit.side)
		back := frame.lvl.Sector(backIdx)

		backCeilScreen := frame.halfH - (float32(back.CeilingHeight)-frame.viewZ)*scale
		backFloorScreen := frame.halfH - (float32(back.FloorHeight)-frame.viewZ)*scale

		newTop := clampRow(round(backCeilScreen), state.topLimit, state.bottomLimit)
		newBottom := clampRow(round(backFloorScreen), state.topLimit, state.bottomLimit)
		frontCeilY := clampRow(round(ceilScreen), state.topLimit, state.bottomLimit)
		frontFloorY := clampRow(round(floorScreen), state.topLimit, state.bottomLimit)

		drawHorizontalSpan(frame, buf, x, state.topLimit, frontCeilY, sector, true, hit, rayDir)
		drawWallSpan(frame, buf, x, frontCeilY, newTop, ld, hit.side, level.TextureTop, hit, rayDir)
		drawWallSpan(frame, buf, x, newBottom, frontFloorY, ld, hit.side, level.TextureBottom, hit, rayDir)
		drawHorizontalSpan(frame, buf, x, frontFloorY, state.bottomLimit, sector, false, hit, rayDir)

		mySide := ld.Side[hit.side]
		if mySide.Textures[level.TextureMiddle] != level.NoTexture {
			overlays = append(overlays, overlay{
				ld: ld, side: hit.side,
				from: newTop, to: newBottom,
				t: hit.t, lineLength: ld.Length,
				planarDistance:   hit.planarDistance,
				pointDistance:    hit.pointDistance,
				pointDistInverse: hit.pointDistanceInverse,
				lightStep:        hit.lightStep,
				sector:           hit.sector,
			})
		}

		state.topLimit, state.bottomLimit = newTop, newBottom
		if state.topLimit >= state.bottomLimit || back.FloorHeight >= back.CeilingHeight {
			state.phase = phaseFinished
		}
	}

	for i := len(overlays) - 1; i >= 0; i-- {
		ov := overlays[i]
		hit := intersection{
			t: ov.t, planarDistance: ov.planarDistance, pointDistance: ov.pointDistance,
			pointDistanceInverse: ov.pointDistInverse, lightStep: ov.lightStep, sector: ov.sector,
		}
		drawWallSpan(frame, buf, x, ov.from, ov.to, ov.ld, ov.side, level.TextureMiddle, &hit, rayDir)
	}
}

// drawWallSpan draws one vertical wall texture column from y=from to
// y=to (exclusive), per spec §4.5 "Wall drawing".
func drawWallSpan(frame *frameConstants, buf []uint32, x, from, to int, ld *level.Linedef, side int, slot level.SideTexture, hit *intersection, rayDir mgl32.Vec2) {
	if from >= to {
		return
	}
	tex := ld.Side[side].Textures[slot]
	if tex == level.NoTexture {
		return
	}
	_, texH := frame.sampler.Dimensions(tex)
	if texH == 0 {
		return
	}

	scale := frame.unitSize / hit.planarDistance
	step := hit.planarDistance / frame.unitSize
	texX := hit.t * ld.Length
	v := (float32(from) - frame.halfH - frame.viewZ*scale) * step

	segs := ld.Side[side].Segments
	seg := segmentForT(segs, hit.t)

	for y := from; y < to; y++ {
		rgb, ok := frame.sampler.Sample(tex, texX, v, texture.Scaled, texture.Scaled, 0)
		if ok {
			worldZ := worldHeightAtRow(y, frame.halfH, frame.viewZ, scale)
			samplePos := mgl32.Vec3{hit.point.X(), hit.point.Y(), worldZ}
			light := verticalSurfaceLight(frame.lvl, frame.cache, lightsFor(seg), sectorBrightnessFor(frame, hit.sector), samplePos, hit.lightStep, hit.pointDistance, frame.dimmingDistance, frame.dimmingSteps, frame.dynamicShadows)
			r, g, b := shadeRGB(rgb.R, rgb.G, rgb.B, light, frame.simdLighting)
			writePixel(frame, buf, x, y, packARGB(r, g, b))
		}
		v += step
	}
}

// drawHorizontalSpan draws a floor (isCeiling=false) or ceiling
// (isCeiling=true) span, or the sky if the ceiling texture is absent and
// the level carries one, per spec §4.5 "Floor drawing"/"Ceiling
// drawing"/"Sky drawing". A floor span without a texture is left untouched.
func drawHorizontalSpan(frame *frameConstants, buf []uint32, x, from, to int, sector *level.Sector, isCeiling bool, hit *intersection, rayDir mgl32.Vec2) {
	if from >= to {
		return
	}

	tex := sector.FloorTexture
	surfaceZ := float32(sector.FloorHeight)
	if isCeiling {
		tex = sector.CeilingTexture
		surfaceZ = float32(sector.CeilingHeight)
	}

	if tex == level.NoTexture {
		if isCeiling {
			drawSkySpan(frame, buf, x, from, to, rayDir)
		}
		return
	}
	if !isCeiling && frame.viewZ < surfaceZ {
		return
	}

	texW, texH := frame.sampler.Dimensions(tex)
	if texW == 0 || texH == 0 {
		return
	}

	scaleBase := (surfaceZ - frame.viewZ) * frame.unitSize
	if !isCeiling {
		scaleBase = (frame.viewZ - surfaceZ) * frame.unitSize
	}

	for y := from; y < to; y++ {
		var depthIdx int
		if isCeiling {
			depthIdx = int(frame.halfH) - y
		} else {
			depthIdx = y - int(frame.halfH)
		}
		if depthIdx < 0 {
			depthIdx = 0
		}
		if depthIdx >= len(frame.depthValues) {
			depthIdx = len(frame.depthValues) - 1
		}
		dv := frame.depthValues[depthIdx]

		// distance carries no theta_inverse factor (it's scaleBase*dv, a
		// screen-plane depth), so it must be divided by the matching
		// screen-plane planarDistance, not the perspective-corrected
		// pointDistance, or every off-center column would be scaled by an
		// extra, wrong cos(view-angle) factor.
		distance := scaleBase * dv
		ratio := float32(1)
		if hit.planarDistanceInverse > 0 {
			ratio = distance * hit.planarDistanceInverse
		}
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}

		wx := lerp(frame.camPos.X(), hit.point.X(), ratio)
		wy := lerp(frame.camPos.Y(), hit.point.Y(), ratio)

		mip := mipFor(distance)
		rgb, ok := frame.sampler.Sample(tex, wx, wy, texture.Scaled, texture.Scaled, mip)
		if !ok {
			continue
		}

		lights := frame.cache.LightsAt(mgl32.Vec2{wx, wy})
		sectorBrightness := sector.Brightness
		samplePos := mgl32.Vec3{wx, wy, surfaceZ}
		light := horizontalSurfaceLight(frame.lvl, frame.cache, lights, sectorBrightness, samplePos, surfaceZ, isCeiling, hit.lightStep, hit.pointDistance, frame.dimmingDistance, frame.dimmingSteps, frame.dynamicShadows)

		r, g, b := shadeRGB(rgb.R, rgb.G, rgb.B, light, frame.simdLighting)
		writePixel(frame, buf, x, y, packARGB(r, g, b))
	}
}

// drawSkySpan fills [from, to) with the level's sky texture sampled by
// view angle, at full brightness with no attenuation (spec §4.5 "Sky
// drawing").
func drawSkySpan(frame *frameConstants, buf []uint32, x, from, to int, rayDir mgl32.Vec2) {
	if frame.lvl.SkyTexture == level.NoTexture {
		return
	}
	u := float32(math.Atan2(float64(rayDir.X()), float64(rayDir.Y())) / (2 * math.Pi))
	if u < 0 {
		u += 1
	}

	for y := from; y < to; y++ {
		v := 0.5 + (float32(y)-frame.pitchOffset)/float32(frame.height)
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		rgb, ok := frame.sampler.Sample(frame.lvl.SkyTexture, u, v, texture.Normalized, texture.Normalized, 0)
		if ok {
			writePixel(frame, buf, x, y, packARGB(rgb.R, rgb.G, rgb.B))
		}
	}
}

func writePixel(frame *frameConstants, buf []uint32, x, y int, argb uint32) {
	if x < 0 || y < 0 || x >= frame.width || y >= frame.height {
		return
	}
	idx := y*frame.width + x
	buf[idx] = argb
	if frame.breakpoint != nil {
		frame.breakpoint(x, y, argb)
	}
}

func worldHeightAtRow(y int, halfH, viewZ, scale float32) float32 {
	if scale == 0 {
		return viewZ
	}
	return viewZ + (halfH-float32(y))/scale
}

func segmentForT(segs []level.Segment, t float32) *level.Segment {
	if len(segs) == 0 {
		return nil
	}
	idx := int(t * float32(len(segs)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(segs) {
		idx = len(segs) - 1
	}
	return &segs[idx]
}

func lightsFor(seg *level.Segment) []level.LightIndex {
	if seg == nil {
		return nil
	}
	return seg.Lights.Slice()
}

func sectorBrightnessFor(frame *frameConstants, idx level.SectorIndex) float32 {
	return frame.lvl.Sector(idx).Brightness
}

func mipFor(distance float32) int {
	if distance <= 0 {
		return 0
	}
	mip := int(distance / 600)
	if mip > 6 {
		mip = 6
	}
	return mip
}

func clampRow(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
