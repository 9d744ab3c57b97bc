// Package builder turns an ordered list of source polygons into a
// level.Level and its map cache, resolving polygon overlaps, materializing
// sectors/linedefs with reuse, and linking geometric containment — the
// three-phase algorithm of spec §4.2.
package builder

import (
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/geom"
	"sectorcast/internal/level"
	"sectorcast/internal/mapcache"
	"sectorcast/internal/polyutil"
)

// SourcePolygon is one caller-supplied room: a simple (possibly concave)
// vertex loop plus the floor/ceiling heights, textures and ambient
// brightness a sector built from it should carry. Order matters: later
// polygons in the list carve into earlier ones (spec §4.2).
type SourcePolygon struct {
	Vertices       []mgl32.Vec2
	FloorHeight    int32
	CeilingHeight  int32
	FloorTexture   level.TextureRef
	CeilingTexture level.TextureRef
	WallTextures   [3]level.TextureRef
	Brightness     float32
}

// Clipper is the external 2D Boolean-difference primitive the first build
// phase depends on (spec §4.2: "compute the 2D Boolean difference j − i
// using an external polygon-clipping primitive"). Like the texture
// sampler, it is a capability this package consumes rather than
// implements; callers wire in whichever clipping library they prefer.
//
// Difference computes subject minus clip and returns its external
// contours and holes separately, each as an ordered, closed vertex loop.
// Holes are discarded by the builder per spec.
type Clipper interface {
	Difference(subject, clip []mgl32.Vec2) (external, holes [][]mgl32.Vec2)
}

// Build runs the three-phase algorithm over polys and returns the
// resulting level and its freshly-constructed map cache. A nil clipper is
// valid as long as no two polygons in polys actually overlap (wholly
// contained or disjoint pairs never reach it); if a clip is needed with no
// clipper configured, that pair is left unresolved and both polygons are
// kept as-is, matching the best-effort failure semantics of spec §4.2
// ("the builder is best-effort").
func Build(polys []SourcePolygon, clipper Clipper) (*level.Level, *mapcache.Cache) {
	working := cloneAll(polys)
	working = resolveIntersections(working, clipper)

	for i := range working {
		working[i].Vertices = removeColinear(working[i].Vertices)
	}
	insertSharedVertices(working)
	normalizeWinding(working)

	lvl := level.New()
	sectors := make([]level.SectorIndex, len(working))
	for i := range sectors {
		sectors[i] = level.NoSector
	}

	for i, p := range working {
		if len(p.Vertices) < 3 {
			continue
		}
		idx := lvl.CreateSectorFromPolygon(p.Vertices, p.FloorHeight, p.CeilingHeight, p.FloorTexture, p.CeilingTexture, p.WallTextures)
		lvl.Sector(idx).Brightness = p.Brightness
		sectors[i] = idx
	}

	// Containment linking: for each pair (j, i) with j > i, a linedef of
	// sector j fully enclosed by polygon i becomes a back side of sector i.
	// The loop only ever tests a later sector against an earlier one, so a
	// geometrically-contained polygon that happens to sort before its
	// container is never linked — this asymmetry is carried over
	// intentionally; see DESIGN.md.
	for j := 1; j < len(working); j++ {
		if sectors[j] == level.NoSector {
			continue
		}
		for i := 0; i < j; i++ {
			if sectors[i] == level.NoSector {
				continue
			}
			lvl.LinkContainment(sectors[j], sectors[i], working[i].Vertices)
		}
	}

	cache := mapcache.Build(lvl, mapcache.DefaultCellSize)
	lvl.ForEachLight(func(idx level.LightIndex, _ level.Light) {
		cache.AddLight(idx)
	})

	return lvl, cache
}

func cloneAll(polys []SourcePolygon) []SourcePolygon {
	out := make([]SourcePolygon, len(polys))
	for i, p := range polys {
		out[i] = p
		out[i].Vertices = append([]mgl32.Vec2(nil), p.Vertices...)
	}
	return out
}

// resolveIntersections is phase 1: for each ordered pair (j, i>j), leave
// wholly-contained or disjoint pairs alone; otherwise replace polygon j
// with the first external contour of j−i and splice any further external
// contours into the list right after j, discarding holes. Fragments
// spliced in after j are skipped as the carving (i) side of j's remaining
// pairs, matching spec §4.2's "must avoid re-processing polygons split into
// fragments"; each fragment is still visited later as a subject (j) in its
// own right.
func resolveIntersections(polys []SourcePolygon, clipper Clipper) []SourcePolygon {
	for j := 0; j < len(polys); j++ {
		for i := j + 1; i < len(polys); i++ {
			pj := polyutil.New(polys[j].Vertices)
			pi := polyutil.New(polys[i].Vertices)

			if !pj.Overlaps(pi) || pj.Contains(pi, false) {
				continue
			}
			if clipper == nil {
				continue
			}

			external, _ := clipper.Difference(polys[j].Vertices, polys[i].Vertices)
			if len(external) == 0 {
				continue
			}

			attrs := polys[j]
			attrs.Vertices = nil

			replaced := attrs
			replaced.Vertices = external[0]
			polys[j] = replaced

			if len(external) > 1 {
				extras := make([]SourcePolygon, 0, len(external)-1)
				for _, contour := range external[1:] {
					extra := attrs
					extra.Vertices = contour
					extras = append(extras, extra)
				}
				tail := append([]SourcePolygon(nil), polys[j+1:]...)
				polys = append(append(polys[:j+1:j+1], extras...), tail...)
				i += len(extras)
			}
		}
	}
	return polys
}

// removeColinear drops any vertex whose neighbors make it collinear within
// geom.Epsilon (spec §4.2, phase-1 "optimize").
func removeColinear(vertices []mgl32.Vec2) []mgl32.Vec2 {
	n := len(vertices)
	if n < 3 {
		return vertices
	}

	out := make([]mgl32.Vec2, 0, n)
	for i := 0; i < n; i++ {
		prev := vertices[(i-1+n)%n]
		cur := vertices[i]
		next := vertices[(i+1)%n]
		if isCollinear(prev, cur, next) {
			continue
		}
		out = append(out, cur)
	}
	if len(out) < 3 {
		return vertices
	}
	return out
}

func isCollinear(a, b, c mgl32.Vec2) bool {
	return geom.Cross(b.Sub(a), c.Sub(a)) < geom.Epsilon && geom.Cross(b.Sub(a), c.Sub(a)) > -geom.Epsilon
}

// insertSharedVertices is the second half of phase 1: for every ordered
// pair of polygons, any vertex of one lying on an edge of the other
// (within geom.PrecisionLow) is spliced into the other's vertex list, so
// two rooms sharing a wall end up sharing exact vertices instead of
// merely touching.
func insertSharedVertices(polys []SourcePolygon) {
	for a := range polys {
		for b := range polys {
			if a == b {
				continue
			}
			insertOntoEdges(&polys[a], polys[b].Vertices)
		}
	}
}

func insertOntoEdges(target *SourcePolygon, fromVertices []mgl32.Vec2) {
	for _, v := range fromVertices {
		n := len(target.Vertices)
		for i := 0; i < n; i++ {
			e0 := target.Vertices[i]
			e1 := target.Vertices[(i+1)%n]
			if vecNear(v, e0, geom.PrecisionLow) || vecNear(v, e1, geom.PrecisionLow) {
				continue
			}
			if !geom.PointOnSegment(e0, e1, v, geom.PrecisionLow) {
				continue
			}

			out := make([]mgl32.Vec2, 0, n+1)
			out = append(out, target.Vertices[:i+1]...)
			out = append(out, v)
			out = append(out, target.Vertices[i+1:]...)
			target.Vertices = out
			n++
		}
	}
}

func vecNear(a, b mgl32.Vec2, tolerance float32) bool {
	return a.Sub(b).Len() < tolerance
}

// normalizeWinding enforces spec §3's invariant that the builder's output
// winds clockwise (signed area <= 0): any source polygon — whether
// caller-supplied or produced by a clip in resolveIntersections — that
// winds anti-clockwise is reversed in place.
func normalizeWinding(polys []SourcePolygon) {
	for i := range polys {
		p := &polyutil.Polygon{Vertices: polys[i].Vertices}
		if !p.IsClockwise() {
			p.ReverseVertices()
		}
		polys[i].Vertices = p.Vertices
	}
}
