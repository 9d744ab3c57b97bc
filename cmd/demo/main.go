package main

import (
	"flag"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/profiling"
	"sectorcast/internal/render"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	levelName := flag.String("level", "sample", "which built-in demo level to load")
	width := flag.Int("width", 960, "window/frame buffer width")
	height := flag.Int("height", 540, "window/frame buffer height")
	flag.Parse()

	if *levelName != "sample" {
		fmt.Printf("demo: unknown level %q, falling back to the built-in sample\n", *levelName)
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(*width, *height)
	if err != nil {
		panic(err)
	}

	blit, err := newBlitter(*width, *height)
	if err != nil {
		panic(err)
	}

	lvl, cache := buildSampleLevel()
	sampler := newCheckerTexture()

	r, err := render.New(lvl, cache, sampler, *width, *height)
	if err != nil {
		panic(err)
	}
	defer r.Shutdown()

	runOrbitLoop(window, r, blit)
}

func setupWindow(width, height int) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(width, height, "sectorcast demo", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}
	glfw.SwapInterval(0)

	return window, nil
}

// runOrbitLoop drives the renderer with a camera that slowly orbits the
// sample level's entry room, so a viewer sees walls, the stepped corridor,
// and the side room beyond it without needing input wiring (input handling is
// out of this module's scope, per spec §1).
func runOrbitLoop(window *glfw.Window, r *render.Renderer, blit *blitter) {
	start := time.Now()
	lastFPSReport := time.Now()
	frames := 0

	for !window.ShouldClose() {
		profiling.ResetFrame()

		t := float32(time.Since(start).Seconds())
		angle := t * 0.3
		radius := float32(120.0)
		center := mgl32.Vec2{200, 200}

		pos := mgl32.Vec2{
			center.X() + radius*float32(math.Cos(float64(angle))),
			center.Y() + radius*float32(math.Sin(float64(angle))),
		}
		dir := center.Sub(pos)
		if l := dir.Len(); l > 1e-6 {
			dir = dir.Mul(1 / l)
		}

		cam := render.Camera{
			Position:  pos,
			ViewZ:     64,
			Direction: dir,
			FOV:       0.66,
			Pitch:     0,
			Sector:    startSector(),
		}

		r.Draw(cam)
		blit.Upload(r.Buffer())

		gl.Viewport(0, 0, int32(blit.width), int32(blit.height))
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		blit.Draw()

		window.SwapBuffers()
		glfw.PollEvents()

		frames++
		if since := time.Since(lastFPSReport); since >= time.Second {
			fmt.Printf("sectorcast demo: %.1f fps\n", float64(frames)/since.Seconds())
			frames = 0
			lastFPSReport = time.Now()
		}
	}
}
