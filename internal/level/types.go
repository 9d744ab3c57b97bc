// Package level owns the in-memory representation of a built map: vertices,
// linedefs, sectors and lights, plus the routines (GetVertex, GetLinedef,
// CreateSectorFromPolygon, AddLight, UpdateLights) the builder and the demo
// harness use to mutate it.
//
// Cyclic references (a linedef's two sides reference sectors, sectors
// reference linedef lists, linedefs reference vertices) are represented with
// arena storage and integer indices rather than pointers, per the design
// notes: a Level owns flat slices and everything else is an index into one
// of them. This keeps the whole structure trivially movable and avoids any
// GC cycle concerns.
package level

import "github.com/go-gl/mathgl/mgl32"

// TextureRef identifies a texture via an opaque caller-defined value. The -1
// sentinel (NoTexture) means "no texture" (e.g. a two-sided line's absent
// middle texture, or a sector with no floor).
type TextureRef int32

// NoTexture is the sentinel TextureRef meaning "absent".
const NoTexture TextureRef = -1

// VertexIndex, LinedefIndex, SectorIndex and LightIndex are arena indices
// into the corresponding Level slice. NoX sentinels stand in for the
// optional references spec §9 calls out (e.g. a linedef's absent back
// side).
type (
	VertexIndex  int32
	LinedefIndex int32
	SectorIndex  int32
	LightIndex   int32
)

// NoSector, NoLinedef are sentinel indices meaning "absent reference".
const (
	NoSector  SectorIndex  = -1
	NoLinedef LinedefIndex = -1
)

// MaxLightsPerSurface bounds the number of lights tracked per linedef
// segment, sector floor/ceiling, and map-cache cell (spec §3: "K ≈ 4").
const MaxLightsPerSurface = 4

// MaxLights bounds the total number of lights a Level can hold (spec §7).
const MaxLights = 64

// SegmentLength is the nominal world-unit length of one linedef segment;
// a side's segment count is ceil(length / SegmentLength) (spec §3).
const SegmentLength = 128.0

// LightList is a bounded, append-with-silent-overflow list of light
// references shared by linedef segments and sector floor/ceiling records
// (spec §3: "at most K entries; overflow drops additional lights
// silently").
type LightList struct {
	Refs [MaxLightsPerSurface]LightIndex
	N    int
}

// Clear empties the list.
func (l *LightList) Clear() { l.N = 0 }

// Contains reports whether idx is already present.
func (l *LightList) Contains(idx LightIndex) bool {
	for i := 0; i < l.N; i++ {
		if l.Refs[i] == idx {
			return true
		}
	}
	return false
}

// Add appends idx if there is room and it isn't already present. Returns
// false if the list was full (the caller may count the drop).
func (l *LightList) Add(idx LightIndex) bool {
	if l.Contains(idx) {
		return true
	}
	if l.N >= MaxLightsPerSurface {
		return false
	}
	l.Refs[l.N] = idx
	l.N++
	return true
}

// Remove drops idx if present.
func (l *LightList) Remove(idx LightIndex) {
	for i := 0; i < l.N; i++ {
		if l.Refs[i] == idx {
			l.Refs[i] = l.Refs[l.N-1]
			l.N--
			return
		}
	}
}

// Slice returns the live portion of Refs.
func (l *LightList) Slice() []LightIndex { return l.Refs[:l.N] }

// Vertex is an immutable 2D point, deduplicated at creation time by
// GetVertex (spec §3: points within SnapTolerance merge).
type Vertex struct {
	Point mgl32.Vec2
}

// Segment is a subdivision of a linedef side used to bucket per-side lights
// so the renderer doesn't need to test every light against every wall
// pixel (spec §3: "segment count = ceil(length / SEG_LEN)").
type Segment struct {
	P0, P1 mgl32.Vec2
	Lights LightList
}

// SideTexture indexes the three texture slots of a Side.
type SideTexture int

// The three texture slots a linedef side can carry: top (above a lower
// neighboring ceiling), middle (a one-sided wall, or a solid masked
// "window" on a two-sided line), and bottom (below a higher neighboring
// floor, i.e. a step).
const (
	TextureTop SideTexture = iota
	TextureMiddle
	TextureBottom
)

// Side is one face of a linedef: the sector it belongs to, its three
// texture references (top/middle/bottom), and the segments subdividing it.
type Side struct {
	Sector   SectorIndex
	Textures [3]TextureRef
	Segments []Segment
}

// HasSector reports whether this side is bound to a sector.
func (s *Side) HasSector() bool { return s.Sector != NoSector }

// Linedef is an edge between two vertices with up to two sides. A two-sided
// linedef (Side[1].HasSector()) is a portal between its two sectors.
type Linedef struct {
	V0, V1 VertexIndex
	Side   [2]Side

	Direction              mgl32.Vec2
	Length                 float32
	MinX, MaxX, MinY, MaxY float32

	// MaxFloorHeight / MinCeilingHeight are the derived opening of the line:
	// the tighter of the two sides' floor/ceiling heights. For a one-sided
	// line these equal the single side's sector bounds. Used by the map
	// cache's early-reject and the renderer's step-wall drawing.
	MaxFloorHeight   int32
	MinCeilingHeight int32
}

// HasBackSector reports whether this linedef is two-sided (a portal).
func (l *Linedef) HasBackSector() bool {
	return l.Side[1].HasSector()
}

// Sector is a simple (possibly concave) polygon with a floor and ceiling
// plane and an ambient brightness.
type Sector struct {
	FloorHeight, CeilingHeight     int32
	FloorTexture, CeilingTexture   TextureRef
	FloorLights, CeilingLights     LightList
	Brightness                     float32
	Linedefs                       []LinedefIndex

	// VisibleLinedefs is the pre-pass's per-tick subset of Linedefs that is
	// in view; VisibleTick records which renderer tick it was computed for,
	// so a stale subset from a prior tick is never reused silently.
	VisibleLinedefs []LinedefIndex
	VisibleTick     uint32
}

// Light is a point light source with a falloff radius and strength.
type Light struct {
	Position mgl32.Vec3
	Radius   float32
	// RadiusSq and RadiusSqInverse are precomputed once at creation/move
	// time so the renderer's per-pixel falloff math avoids a division.
	RadiusSq        float32
	RadiusSqInverse float32
	Strength        float32
}
