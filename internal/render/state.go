package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/level"
)

// maxIntersectionsPerColumn bounds the per-column intersection list (spec
// §7, "more than 48 intersections per column: silently drop the excess").
const maxIntersectionsPerColumn = 48

// maxSectorHistory bounds the per-column visited-sector ring buffer (spec
// §7, "more than 64 sectors in a column's history: silently drop the
// excess").
const maxSectorHistory = 64

// columnPhase names the per-column state machine spec §4.5 describes:
// searching collects intersections by descending the portal graph,
// drawing consumes the sorted list nearest-to-farthest, finished ends the
// column.
type columnPhase int

const (
	phaseSearching columnPhase = iota
	phaseDrawing
	phaseFinished
)

// intersection is one ray/linedef hit recorded while walking the portal
// graph, carrying everything the draw phase needs without re-deriving it
// (spec §4.5 step 3).
type intersection struct {
	linedef level.LinedefIndex
	sector  level.SectorIndex // the sector the ray was in when it hit this line
	side    int                // 0 if front sector == current sector, else 1

	point mgl32.Vec2
	t     float32 // parametric position along the linedef, [0,1]

	planarDistance        float32
	planarDistanceInverse float32
	pointDistance         float32
	pointDistanceInverse  float32

	lightStep int // quantized attenuation bucket; unused in continuous mode
}

// columnState is the thread-local, per-column working set: the vertical
// window still open for drawing, the sorted intersection list, and the
// ring buffer of sectors already descended into this column (spec §5,
// "the per-column 'intersection pool'... is thread-local").
type columnState struct {
	topLimit, bottomLimit int
	thetaInverse          float32

	intersections []intersection
	visited       []level.SectorIndex

	phase columnPhase
}

func newColumnState(height int, thetaInverse float32) *columnState {
	return &columnState{
		topLimit:      0,
		bottomLimit:   height,
		thetaInverse:  thetaInverse,
		intersections: make([]intersection, 0, maxIntersectionsPerColumn),
		visited:       make([]level.SectorIndex, 0, maxSectorHistory),
		phase:         phaseSearching,
	}
}

// hasVisited reports whether sector was already descended into this
// column.
func (c *columnState) hasVisited(sector level.SectorIndex) bool {
	for _, s := range c.visited {
		if s == sector {
			return true
		}
	}
	return false
}

// markVisited records sector as visited. Once the history is full,
// further sectors are silently not tracked (spec §7 capacity policy),
// which only risks a redundant re-descent, not a crash.
func (c *columnState) markVisited(sector level.SectorIndex) {
	if len(c.visited) >= maxSectorHistory {
		return
	}
	c.visited = append(c.visited, sector)
}

// insert adds hit into the intersection list in ascending-planarDistance
// order, dropping it silently once the list is at capacity (spec §7).
func (c *columnState) insert(hit intersection) {
	if len(c.intersections) >= maxIntersectionsPerColumn {
		return
	}
	i := len(c.intersections)
	c.intersections = append(c.intersections, hit)
	for i > 0 && c.intersections[i-1].planarDistance > c.intersections[i].planarDistance {
		c.intersections[i-1], c.intersections[i] = c.intersections[i], c.intersections[i-1]
		i--
	}
}
