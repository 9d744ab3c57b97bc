// Package render implements the CPU-only per-column sector/portal
// rasterizer: the frame-setup, visibility pre-pass, and per-column
// search/draw pipeline of spec §4.5, run either single-threaded (with a
// debug per-pixel breakpoint hook) or fanned out over a worker pool
// (spec §4.6).
package render

import (
	"errors"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/config"
	"sectorcast/internal/level"
	"sectorcast/internal/mapcache"
	"sectorcast/internal/profiling"
	"sectorcast/internal/texture"
)

// Renderer owns the frame buffer and the immutable level/cache/sampler it
// draws from. Level data and the map cache are treated as read-only during
// a frame (spec §5); light/position updates must happen between Draw
// calls.
type Renderer struct {
	lvl     *level.Level
	cache   *mapcache.Cache
	sampler texture.Sampler

	width, height int
	buffer        []uint32
	depthValues   []float32

	tick uint32
	pool *columnPool

	// breakpoint is the single-threaded debug hook (spec §4.6); nil
	// disables it. Ignored when parallel rendering is enabled.
	breakpoint func(x, y int, argb uint32)
}

// New allocates a Renderer for the given level/cache/sampler at size
// width x height. Allocation failure is the only fatal error the renderer
// raises (spec §7); everything else (dropped lights, dropped
// intersections, degenerate polygons) degrades silently.
func New(lvl *level.Level, cache *mapcache.Cache, sampler texture.Sampler, width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("render: width and height must be positive")
	}

	r := &Renderer{
		lvl:     lvl,
		cache:   cache,
		sampler: sampler,
	}
	if err := r.Resize(width, height); err != nil {
		return nil, err
	}
	r.pool = newColumnPool(runtime.NumCPU())
	return r, nil
}

// Resize reallocates the frame buffer and depth table for a new size.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("render: width and height must be positive")
	}
	r.width, r.height = width, height
	r.buffer = make([]uint32, width*height)
	r.depthValues = make([]float32, height+1)
	for i := range r.depthValues {
		r.depthValues[i] = 1 / float32(i+1)
	}
	return nil
}

// SetBreakpoint installs (or clears, with nil) the single-threaded debug
// per-pixel hook (spec §4.6). It is ignored while parallel rendering is
// enabled.
func (r *Renderer) SetBreakpoint(fn func(x, y int, argb uint32)) {
	r.breakpoint = fn
}

// Buffer returns the tightly packed ARGB frame buffer from the most recent
// Draw call (spec §6: "alpha byte always 0xFF", row-major, no padding).
func (r *Renderer) Buffer() []uint32 { return r.buffer }

// Shutdown stops the renderer's worker pool. Safe to call once, typically
// from the demo/bench harness at exit.
func (r *Renderer) Shutdown() { r.pool.Shutdown() }

// Draw renders one frame from camera's viewpoint into the internal frame
// buffer, per spec §4.5/§4.6.
func (r *Renderer) Draw(camera Camera) {
	defer profiling.Track("render.Draw")()

	r.tick++
	for i := range r.buffer {
		r.buffer[i] = 0xFF000000
	}

	dynamicShadows := config.GetDynamicShadows()
	preVisibility := config.GetPreVisibility()
	parallel := config.GetParallelColumns()
	simdLighting := config.GetSIMDLighting()
	drawDistance := config.GetDrawDistance()
	dimmingDistance := config.GetDimmingDistance()
	dimmingSteps := config.GetDimmingSteps()

	func() {
		defer profiling.Track("render.UpdateLights")()
		r.lvl.UpdateLights(dynamicShadows, func(a, b mgl32.Vec3) bool {
			return !r.cache.Intersect3D(a, b)
		})
	}()

	dirUnit := camera.Direction
	if l := dirUnit.Len(); l > 1e-6 {
		dirUnit = dirUnit.Mul(1 / l)
	}
	plane := mgl32.Vec2{-dirUnit.Y(), dirUnit.X()}.Mul(camera.FOV)

	frame := &frameConstants{
		lvl:     r.lvl,
		cache:   r.cache,
		sampler: r.sampler,

		width:  r.width,
		height: r.height,
		halfW:  float32(r.width) / 2,
		halfH:  float32(r.height)/2 + camera.Pitch,

		unitSize:    float32(r.width) / 2 / camera.FOV,
		pitchOffset: camera.Pitch,

		camPos:    camera.Position,
		dirUnit:   dirUnit,
		plane:     plane,
		viewZ:     camera.ViewZ,
		camSector: camera.Sector,

		drawDistance:    drawDistance,
		dimmingDistance: dimmingDistance,
		dimmingSteps:    dimmingSteps,
		dynamicShadows:  dynamicShadows,
		simdLighting:    simdLighting,

		tick: r.tick,

		depthValues: r.depthValues,
	}
	if !parallel {
		frame.breakpoint = r.breakpoint
	}

	if preVisibility {
		func() {
			defer profiling.Track("render.PrePass")()
			farLeft := camera.Position.Add(dirUnit.Sub(plane).Mul(drawDistance))
			farRight := camera.Position.Add(dirUnit.Add(plane).Mul(drawDistance))
			prePass(r.lvl, camera.Sector, camera.Position, farLeft, farRight, r.tick)
		}()
	}

	defer profiling.Track("render.Columns")()
	if parallel {
		r.pool.RunColumns(r.width, func(x int) { castColumn(frame, r.buffer, x) })
	} else {
		for x := 0; x < r.width; x++ {
			castColumn(frame, r.buffer, x)
		}
	}
}
