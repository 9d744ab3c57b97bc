package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/geom"
	"sectorcast/internal/level"
)

// prePass recomputes, for every sector reachable from the camera's sector
// through portals, the subset of its linedefs currently in view (spec
// §4.5, "Optional pre-pass (visibility refresh)"). It is a recursive walk
// bounded by tick: a sector is only ever visited once per call, via the
// VisibleTick guard on level.Sector, so cyclic portal graphs terminate.
//
// farLeft/farRight are the two rays bounding the view triangle
// (camera, farLeft, farRight), already scaled out to the draw distance by
// the caller.
func prePass(lvl *level.Level, startSector level.SectorIndex, camPos, farLeft, farRight mgl32.Vec2, tick uint32) {
	walkSectorVisibility(lvl, startSector, camPos, farLeft, farRight, tick)
}

func walkSectorVisibility(lvl *level.Level, sectorIdx level.SectorIndex, camPos, farLeft, farRight mgl32.Vec2, tick uint32) {
	sector := lvl.Sector(sectorIdx)
	if sector.VisibleTick == tick {
		return
	}
	sector.VisibleTick = tick
	sector.VisibleLinedefs = sector.VisibleLinedefs[:0]

	for _, ldIdx := range sector.Linedefs {
		ld := lvl.Linedef(ldIdx)
		side := sideFacingSector(ld, sectorIdx)

		v0 := lvl.Vertex(ld.V0).Point
		v1 := lvl.Vertex(ld.V1).Point

		if backFacing(v0, v1, camPos, side) {
			continue
		}

		if !vertexOrEdgeVisible(v0, v1, camPos, farLeft, farRight) {
			continue
		}

		sector.VisibleLinedefs = append(sector.VisibleLinedefs, ldIdx)

		if ld.HasBackSector() {
			back := otherSide(ld, side)
			if back != sectorIdx {
				walkSectorVisibility(lvl, back, camPos, farLeft, farRight, tick)
			}
		}
	}
}

// sideFacingSector returns which of a linedef's sides belongs to sectorIdx.
func sideFacingSector(ld *level.Linedef, sectorIdx level.SectorIndex) int {
	if ld.Side[0].Sector == sectorIdx {
		return 0
	}
	return 1
}

func otherSide(ld *level.Linedef, side int) level.SectorIndex {
	if side == 0 {
		return ld.Side[1].Sector
	}
	return ld.Side[0].Sector
}

// backFacing reports whether the camera is behind the linedef from the
// given side's perspective, i.e. the line cannot be seen from this side
// (spec §4.5, "skip back-facing lines (by sign test)"). Side 0's sector lies
// to the right of V0->V1 (negative geom.Sign, the same convention as
// level.segmentFacesLight), side 1's to the left.
func backFacing(v0, v1, camPos mgl32.Vec2, side int) bool {
	s := geom.Sign(v0, v1, camPos)
	if side == 0 {
		return s > 0
	}
	return s < 0
}

// vertexOrEdgeVisible reports whether the line v0-v1 is at least partially
// inside the view triangle (camera, farLeft, farRight): either endpoint
// lies inside the triangle, or the line crosses one of the triangle's two
// side edges (spec §4.5: "mark vertices visible iff they lie inside the
// view triangle... or the line crosses either side of the triangle").
func vertexOrEdgeVisible(v0, v1, camPos, farLeft, farRight mgl32.Vec2) bool {
	if geom.PointInTriangle(camPos, farLeft, farRight, v0) || geom.PointInTriangle(camPos, farLeft, farRight, v1) {
		return true
	}
	if _, _, ok := geom.SegmentIntersect(v0, v1, camPos, farLeft); ok {
		return true
	}
	if _, _, ok := geom.SegmentIntersect(v0, v1, camPos, farRight); ok {
		return true
	}
	return false
}

// linedefsForColumn returns the subset of a sector's linedefs the per-column
// search should walk: the pre-pass's visible subset when it has run for the
// current tick, or the sector's full linedef list otherwise.
func linedefsForColumn(sector *level.Sector, tick uint32) []level.LinedefIndex {
	if sector.VisibleTick == tick {
		return sector.VisibleLinedefs
	}
	return sector.Linedefs
}
