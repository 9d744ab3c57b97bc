package level

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/geom"
)

// Level owns all of a map's vertices, linedefs, sectors and lights as flat
// arenas, plus the bounding box derived from its vertices. Callers address
// its contents by index (VertexIndex, LinedefIndex, ...), never by pointer.
//
// Vertex/linedef/sector mutation happens only during the build phase
// (GetVertex, GetLinedef, CreateSectorFromPolygon) and is not goroutine
// safe. Light mutation (AddLight, SetLightPosition) can happen every frame
// from the game loop while the renderer concurrently reads light positions,
// so it is guarded by mu (UpdateLights reads its light snapshot under mu),
// mirroring the read/write split in
// config.RenderFlags.
type Level struct {
	Vertices []Vertex
	Linedefs []Linedef
	Sectors  []Sector

	// SkyTexture is sampled for any column span whose relevant ceiling
	// texture is absent (spec §4.5, "Sky drawing"). NoTexture disables sky
	// rendering; the span is simply left untouched.
	SkyTexture TextureRef

	MinX, MaxX, MinY, MaxY float32

	mu             sync.RWMutex
	Lights         []Light
	droppedLights  int
}

// New returns an empty Level with an inverted bounding box, so the first
// vertex added establishes it.
func New() *Level {
	return &Level{
		MinX: math.MaxFloat32,
		MinY: math.MaxFloat32,
		MaxX: -math.MaxFloat32,
		MaxY: -math.MaxFloat32,
	}
}

// GetVertex returns the index of the vertex at point, creating one if none
// exists within geom.SnapTolerance (spec §4.1: "any two points within unit
// distance are merged"). Extends the level's bounding box when a new vertex
// is created.
func (l *Level) GetVertex(point mgl32.Vec2) VertexIndex {
	for i := range l.Vertices {
		if l.Vertices[i].Point.Sub(point).Len() < geom.SnapTolerance {
			return VertexIndex(i)
		}
	}

	l.Vertices = append(l.Vertices, Vertex{Point: point})
	l.growBounds(point)
	return VertexIndex(len(l.Vertices) - 1)
}

func (l *Level) growBounds(p mgl32.Vec2) {
	if p.X() < l.MinX {
		l.MinX = p.X()
	}
	if p.X() > l.MaxX {
		l.MaxX = p.X()
	}
	if p.Y() < l.MinY {
		l.MinY = p.Y()
	}
	if p.Y() > l.MaxY {
		l.MaxY = p.Y()
	}
}

// Vertex returns the vertex at idx.
func (l *Level) Vertex(idx VertexIndex) Vertex { return l.Vertices[idx] }

// Linedef returns a pointer to the linedef at idx, so callers (the builder,
// the renderer's step-wall code) can mutate a side's textures/segments in
// place.
func (l *Level) Linedef(idx LinedefIndex) *Linedef { return &l.Linedefs[idx] }

// Sector returns a pointer to the sector at idx.
func (l *Level) Sector(idx SectorIndex) *Sector { return &l.Sectors[idx] }

// GetLinedef returns the index of the linedef between v0 and v1 (undirected
// match), creating one bound front-side to sector with frontTextures if none
// exists.
//
// If an existing one-sided linedef matches (in either direction), sector
// becomes its back side (spec §4.2/§4.3, get_linedef): the caller's
// frontTextures become the front side's textures, and whatever front-side
// textures the existing linedef already carried migrate to the new back
// side; the two-sided line's middle texture is then cleared on both sides,
// since a portal has no middle. Segments are materialized for the new back
// side at that point; the front side keeps the segments it was created
// with. The front/back MaxFloorHeight/MinCeilingHeight derivation is left to
// the caller to recompute via RecomputeOpening, since that requires both
// sectors' heights and CreateSectorFromPolygon/the containment-linking pass
// run it once both sides are known.
func (l *Level) GetLinedef(sector SectorIndex, v0, v1 VertexIndex, frontTextures [3]TextureRef) LinedefIndex {
	for i := range l.Linedefs {
		ld := &l.Linedefs[i]
		switch {
		case ld.V0 == v0 && ld.V1 == v1 && !ld.HasBackSector():
			return l.bindBackSide(LinedefIndex(i), sector, frontTextures)
		case ld.V0 == v1 && ld.V1 == v0 && !ld.HasBackSector():
			return l.bindBackSide(LinedefIndex(i), sector, frontTextures)
		}
	}

	p0 := l.Vertices[v0].Point
	p1 := l.Vertices[v1].Point
	dir := p1.Sub(p0)
	length := dir.Len()

	ld := Linedef{
		V0: v0, V1: v1,
		Direction: dir,
		Length:    length,
		MinX:      min32(p0.X(), p1.X()), MaxX: max32(p0.X(), p1.X()),
		MinY: min32(p0.Y(), p1.Y()), MaxY: max32(p0.Y(), p1.Y()),
	}
	ld.Side[0] = Side{Sector: sector, Textures: frontTextures}
	ld.Side[1] = Side{Sector: NoSector, Textures: [3]TextureRef{NoTexture, NoTexture, NoTexture}}
	l.Linedefs = append(l.Linedefs, ld)
	idx := LinedefIndex(len(l.Linedefs) - 1)
	l.materializeSegments(idx, 0)
	return idx
}

// bindBackSide attaches sector as the back side of the one-sided linedef at
// idx, migrating the existing front textures to the new back side and
// installing frontTextures as the front (caller's) side's textures, per
// spec §4.2/§4.3.
func (l *Level) bindBackSide(idx LinedefIndex, sector SectorIndex, frontTextures [3]TextureRef) LinedefIndex {
	ld := &l.Linedefs[idx]

	existingFront := ld.Side[0].Textures
	ld.Side[1] = Side{Sector: sector, Textures: existingFront}
	ld.Side[0].Textures = frontTextures

	ld.Side[0].Textures[TextureMiddle] = NoTexture
	ld.Side[1].Textures[TextureMiddle] = NoTexture

	l.materializeSegments(idx, 1)
	return idx
}

// materializeSegments (re)builds the Segments slice for one side of a
// linedef: ceil(length / SegmentLength) segments spanning V0..V1, each an
// even subdivision sharing the line's endpoints (spec §3).
func (l *Level) materializeSegments(idx LinedefIndex, side int) {
	ld := &l.Linedefs[idx]
	count := int(math.Ceil(float64(ld.Length) / SegmentLength))
	if count < 1 {
		count = 1
	}

	p0 := l.Vertices[ld.V0].Point
	p1 := l.Vertices[ld.V1].Point

	segs := make([]Segment, count)
	for i := 0; i < count; i++ {
		t0 := float32(i) / float32(count)
		t1 := float32(i+1) / float32(count)
		segs[i] = Segment{
			P0: p0.Add(p1.Sub(p0).Mul(t0)),
			P1: p0.Add(p1.Sub(p0).Mul(t1)),
		}
	}
	ld.Side[side].Segments = segs
}

// RecomputeOpening derives a linedef's MaxFloorHeight/MinCeilingHeight from
// its bound sector(s): for a one-sided line these equal the single side's
// sector; for a two-sided line they're the tighter (max floor, min ceiling)
// of the two, i.e. the physical opening a thing can step or see through.
func (l *Level) RecomputeOpening(idx LinedefIndex) {
	ld := &l.Linedefs[idx]
	front := l.Sectors[ld.Side[0].Sector]

	if !ld.HasBackSector() {
		ld.MaxFloorHeight = front.FloorHeight
		ld.MinCeilingHeight = front.CeilingHeight
		return
	}

	back := l.Sectors[ld.Side[1].Sector]
	ld.MaxFloorHeight = maxI32(front.FloorHeight, back.FloorHeight)
	ld.MinCeilingHeight = minI32(front.CeilingHeight, back.CeilingHeight)
}

// CreateSectorFromPolygon builds a new sector from an ordered vertex loop,
// wiring up (and reusing, per GetLinedef) a linedef for each consecutive
// pair. wallTextures supplies the front-side texture triple used for every
// newly-created linedef of this sector.
func (l *Level) CreateSectorFromPolygon(vertices []mgl32.Vec2, floorHeight, ceilingHeight int32, floorTex, ceilingTex TextureRef, wallTextures [3]TextureRef) SectorIndex {
	l.Sectors = append(l.Sectors, Sector{
		FloorHeight:   floorHeight,
		CeilingHeight: ceilingHeight,
		FloorTexture:  floorTex,
		CeilingTexture: ceilingTex,
	})
	sectorIdx := SectorIndex(len(l.Sectors) - 1)

	n := len(vertices)
	linedefs := make([]LinedefIndex, 0, n)
	for i := 0; i < n; i++ {
		v0 := l.GetVertex(vertices[i])
		v1 := l.GetVertex(vertices[(i+1)%n])
		ldIdx := l.GetLinedef(sectorIdx, v0, v1, wallTextures)
		linedefs = append(linedefs, ldIdx)
		l.RecomputeOpening(ldIdx)
	}

	l.Sectors[sectorIdx].Linedefs = linedefs
	return sectorIdx
}

// LinkContainment binds any single-sided linedef of sector outer that lies
// strictly inside sector inner as a back side of inner, per the
// containment-linking builder pass (spec §4.2, "for each pair (j, i) with j
// > i ..."). The index-ordering dependence (only j>i pairs are ever
// checked, so a smaller-index sector can never become contained inside a
// larger-index one even if geometrically true) is intentionally preserved;
// see the builder package and DESIGN.md.
func (l *Level) LinkContainment(outer, inner SectorIndex, innerPolygon []mgl32.Vec2) {
	for _, ldIdx := range append([]LinedefIndex(nil), l.Sectors[outer].Linedefs...) {
		ld := &l.Linedefs[ldIdx]
		if ld.HasBackSector() {
			continue
		}
		p0 := l.Vertices[ld.V0].Point
		p1 := l.Vertices[ld.V1].Point
		if !geom.PointInPolygon(innerPolygon, p0) || !geom.PointInPolygon(innerPolygon, p1) {
			continue
		}

		existingFront := ld.Side[0].Textures
		ld.Side[1] = Side{Sector: inner, Textures: existingFront}
		ld.Side[0].Textures[TextureMiddle] = NoTexture
		ld.Side[1].Textures[TextureMiddle] = NoTexture
		l.materializeSegments(ldIdx, 1)

		l.Sectors[inner].Linedefs = append(l.Sectors[inner].Linedefs, ldIdx)
		l.RecomputeOpening(ldIdx)
	}
}

// AddLight appends a light and returns its index, or -1 if the level
// already holds MaxLights (spec §7: lights are capped and overflow is
// silently dropped, counted by DroppedLightCount).
func (l *Level) AddLight(position mgl32.Vec3, radius, strength float32) LightIndex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.Lights) >= MaxLights {
		l.droppedLights++
		return -1
	}

	radiusSq := radius * radius
	inv := float32(0)
	if radiusSq > 0 {
		inv = 1 / radiusSq
	}
	l.Lights = append(l.Lights, Light{
		Position:        position,
		Radius:          radius,
		RadiusSq:        radiusSq,
		RadiusSqInverse: inv,
		Strength:        strength,
	})
	return LightIndex(len(l.Lights) - 1)
}

// DroppedLightCount returns the number of AddLight calls that were dropped
// because the level had already reached MaxLights.
func (l *Level) DroppedLightCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.droppedLights
}

// Light returns a copy of the light at idx.
func (l *Level) Light(idx LightIndex) Light {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.Lights[idx]
}

// LightCount returns the number of lights currently registered.
func (l *Level) LightCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.Lights)
}

// SetLightPosition moves a light, recomputing nothing about its radius.
// Idempotent: setting the same position twice in a row is a no-op observed
// from outside (spec §8, "light_set_position no-op idempotence").
func (l *Level) SetLightPosition(idx LightIndex, position mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lights[idx].Position = position
}

// ForEachLight calls fn for every registered light under a read lock. fn
// must not call back into Level.
func (l *Level) ForEachLight(fn func(idx LightIndex, lt Light)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, lt := range l.Lights {
		fn(LightIndex(i), lt)
	}
}

// UpdateLights rebuilds every linedef segment's light list from scratch
// (spec §4.3, update_lights). For each segment, a light is appended if its
// midpoint lies within the light's radius and the segment faces the light
// (half-plane test against the line's direction).
//
// When dynamicShadows is false (static mode, the default), a light must
// additionally have an unoccluded line of sight, per hasLineOfSight, from
// at least one of the segment's four wall corners (both endpoints at the
// sector's floor and ceiling heights) — this bakes occlusion into the
// light list once here, so the renderer's per-pixel lighting pass in
// static mode does no ray casting. When dynamicShadows is true, occlusion
// is left for the renderer to test per-pixel, between each sampled surface
// point and the light, instead, so hasLineOfSight is not consulted here.
//
// hasLineOfSight(a, b) must report whether segment a-b is unoccluded (the
// renderer wires this to the negation of mapcache.Cache.Intersect3D, which
// reports a blocked segment); it is ignored when dynamicShadows is true.
func (l *Level) UpdateLights(dynamicShadows bool, hasLineOfSight func(a, b mgl32.Vec3) bool) {
	l.mu.RLock()
	lights := append([]Light(nil), l.Lights...)
	l.mu.RUnlock()

	for si := range l.Sectors {
		sector := &l.Sectors[si]
		for _, ldIdx := range sector.Linedefs {
			ld := &l.Linedefs[ldIdx]
			side := frontSideFacing(ld, SectorIndex(si))
			segs := ld.Side[side].Segments
			for i := range segs {
				seg := &segs[i]
				seg.Lights.Clear()
				for li, lt := range lights {
					if !segmentFacesLight(seg, ld, side, lt.Position) {
						continue
					}
					mid := seg.P0.Add(seg.P1).Mul(0.5)
					midWorld := mgl32.Vec3{mid.X(), mid.Y(), float32(sector.FloorHeight)}
					distSq := lt.Position.Sub(midWorld).Len()
					distSq *= distSq
					if distSq > lt.RadiusSq {
						continue
					}

					if !dynamicShadows && hasLineOfSight != nil {
						if !anyCornerVisible(seg, sector, lt.Position, hasLineOfSight) {
							continue
						}
					}

					seg.Lights.Add(LightIndex(li))
				}
			}
		}
	}
}

// frontSideFacing returns which of a linedef's two sides belongs to sector.
func frontSideFacing(ld *Linedef, sector SectorIndex) int {
	if ld.Side[0].Sector == sector {
		return 0
	}
	return 1
}

// segmentFacesLight reports whether the light lies on the outward-facing
// half-plane of the linedef's side, via a 2D cross-product half-plane test.
func segmentFacesLight(seg *Segment, ld *Linedef, side int, lightPos mgl32.Vec3) bool {
	dir := seg.P1.Sub(seg.P0)
	toLight := mgl32.Vec2{lightPos.X(), lightPos.Y()}.Sub(seg.P0)
	cross := dir.X()*toLight.Y() - dir.Y()*toLight.X()
	if side == 0 {
		return cross <= 0
	}
	return cross >= 0
}

// anyCornerVisible tests the segment's four wall corners (both endpoints at
// the sector's floor and ceiling) for an unoccluded line of sight to
// lightPos, per the static-mode light baking rule.
func anyCornerVisible(seg *Segment, sector *Sector, lightPos mgl32.Vec3, hasLineOfSight func(a, b mgl32.Vec3) bool) bool {
	corners := [4]mgl32.Vec3{
		{seg.P0.X(), seg.P0.Y(), float32(sector.FloorHeight)},
		{seg.P0.X(), seg.P0.Y(), float32(sector.CeilingHeight)},
		{seg.P1.X(), seg.P1.Y(), float32(sector.FloorHeight)},
		{seg.P1.X(), seg.P1.Y(), float32(sector.CeilingHeight)},
	}
	for _, c := range corners {
		if hasLineOfSight(c, lightPos) {
			return true
		}
	}
	return false
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
