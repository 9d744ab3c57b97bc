package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/config"
	"sectorcast/internal/level"
	"sectorcast/internal/profiling"
	"sectorcast/internal/render"
)

// cmd/bench is a headless timing harness: no window, no GL context, just
// repeated Draw calls against an in-memory level so the column-casting and
// lighting hot paths can be profiled or compared across config.RenderFlags
// settings without a display attached.
func main() {
	width := flag.Int("width", 1280, "frame buffer width")
	height := flag.Int("height", 720, "frame buffer height")
	rooms := flag.Int("rooms", 8, "number of rooms in the benchmark corridor")
	frames := flag.Int("frames", 300, "number of frames to render")
	parallel := flag.Bool("parallel", true, "enable parallel column casting")
	dynamicShadows := flag.Bool("dynamic-shadows", false, "enable per-pixel dynamic shadow casting")
	preVisibility := flag.Bool("pre-visibility", true, "enable the sector pre-pass")
	flag.Parse()

	config.SetParallelColumns(*parallel)
	config.SetDynamicShadows(*dynamicShadows)
	config.SetPreVisibility(*preVisibility)

	lvl, cache := buildBenchLevel(*rooms)

	r, err := render.New(lvl, cache, flatSampler{}, *width, *height)
	if err != nil {
		panic(err)
	}
	defer r.Shutdown()

	corridorLength := float32(*rooms) * 300

	// warm up: first frame pays for any lazy allocation in the light cache
	// and per-column scratch buffers, and shouldn't count toward timings.
	r.Draw(benchCamera(0, corridorLength))

	start := time.Now()
	for i := 0; i < *frames; i++ {
		profiling.ResetFrame()
		r.Draw(benchCamera(i, corridorLength))
	}
	elapsed := time.Since(start)

	fps := float64(*frames) / elapsed.Seconds()
	perFrame := elapsed / time.Duration(*frames)
	fmt.Printf("sectorcast bench: %d frames in %s (%.1f fps, %s/frame) at %dx%d, rooms=%d parallel=%v dynamic-shadows=%v pre-visibility=%v\n",
		*frames, elapsed, fps, perFrame, *width, *height, *rooms, *parallel, *dynamicShadows, *preVisibility)
}

// benchCamera walks the camera down the corridor and sweeps it left/right,
// so every frame casts through a different set of sectors and portal
// windows rather than rendering the same static view repeatedly.
func benchCamera(frame int, corridorLength float32) render.Camera {
	const roomWidth = 300

	t := float32(frame) * 0.05
	x := float32(math.Mod(float64(t*40), float64(corridorLength-10))) + 5
	pos := mgl32.Vec2{x, 150}
	angle := float64(t) * 0.7
	dir := mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))}

	return render.Camera{
		Position:  pos,
		ViewZ:     64,
		Direction: dir,
		FOV:       0.66,
		Pitch:     0,
		Sector:    level.SectorIndex(x / roomWidth),
	}
}
