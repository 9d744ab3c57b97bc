package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/config"
	"sectorcast/internal/level"
	"sectorcast/internal/mapcache"
	"sectorcast/internal/texture"
)

type solidSampler struct {
	w, h int
}

func (s solidSampler) Sample(ref level.TextureRef, x, y float32, mapX, mapY texture.CoordMap, mip int) (texture.RGB, bool) {
	if ref == level.NoTexture {
		return texture.RGB{}, false
	}
	return texture.RGB{R: 200, G: 100, B: 50}, true
}

func (s solidSampler) Dimensions(ref level.TextureRef) (int, int) {
	if ref == level.NoTexture {
		return 0, 0
	}
	return s.w, s.h
}

func buildTestLevel() (*level.Level, *mapcache.Cache) {
	lvl := level.New()
	tex := [3]level.TextureRef{1, 1, 1}
	a := lvl.CreateSectorFromPolygon([]mgl32.Vec2{{0, 0}, {0, 200}, {200, 200}, {200, 0}}, 0, 128, 1, 2, tex)
	b := lvl.CreateSectorFromPolygon([]mgl32.Vec2{{200, 0}, {200, 200}, {400, 200}, {400, 0}}, 0, 128, 1, 2, tex)
	_ = a
	_ = b
	lvl.AddLight(mgl32.Vec3{100, 100, 64}, 150, 1)
	cache := mapcache.Build(lvl, 128)
	lvl.ForEachLight(func(idx level.LightIndex, lt level.Light) { cache.AddLight(idx) })
	return lvl, cache
}

func testCamera(sector level.SectorIndex) Camera {
	return Camera{
		Position:  mgl32.Vec2{100, 100},
		ViewZ:     64,
		Direction: mgl32.Vec2{1, 0},
		FOV:       0.66,
		Pitch:     0,
		Sector:    sector,
	}
}

func TestRendererDrawFillsOpaqueBuffer(t *testing.T) {
	lvl, cache := buildTestLevel()
	r, err := New(lvl, cache, solidSampler{w: 64, h: 64}, 64, 48)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Shutdown()

	r.Draw(testCamera(0))

	buf := r.Buffer()
	for i, px := range buf {
		if px&0xFF000000 != 0xFF000000 {
			t.Fatalf("pixel %d missing opaque alpha byte: %#08x", i, px)
		}
	}
}

func TestRendererDrawParallelMatchesSingleThreaded(t *testing.T) {
	lvl, cache := buildTestLevel()

	r1, _ := New(lvl, cache, solidSampler{w: 64, h: 64}, 48, 32)
	defer r1.Shutdown()
	cam := testCamera(0)
	defer config.SetParallelColumns(true)

	config.SetParallelColumns(false)
	r1.Draw(cam)
	serial := append([]uint32(nil), r1.Buffer()...)

	config.SetParallelColumns(true)
	r1.Draw(cam)
	parallelBuf := append([]uint32(nil), r1.Buffer()...)

	if len(serial) != len(parallelBuf) {
		t.Fatalf("buffer size changed between draws")
	}
	for i := range serial {
		if serial[i] != parallelBuf[i] {
			t.Fatalf("pixel %d differs between single-threaded and parallel draws: %#08x vs %#08x", i, serial[i], parallelBuf[i])
		}
	}
}

func TestRendererResizeReallocatesBuffer(t *testing.T) {
	lvl, cache := buildTestLevel()
	r, err := New(lvl, cache, solidSampler{w: 64, h: 64}, 32, 32)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Shutdown()

	if err := r.Resize(80, 60); err != nil {
		t.Fatalf("Resize returned error: %v", err)
	}
	if len(r.Buffer()) != 80*60 {
		t.Fatalf("expected buffer of size %d, got %d", 80*60, len(r.Buffer()))
	}
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	lvl, cache := buildTestLevel()
	if _, err := New(lvl, cache, solidSampler{w: 64, h: 64}, 0, 10); err == nil {
		t.Errorf("expected an error for a zero width")
	}
}

func TestRendererBreakpointCalledInSingleThreadedMode(t *testing.T) {
	lvl, cache := buildTestLevel()
	r, _ := New(lvl, cache, solidSampler{w: 64, h: 64}, 16, 16)
	defer r.Shutdown()

	config.SetParallelColumns(false)
	defer config.SetParallelColumns(true)

	var calls int
	r.SetBreakpoint(func(x, y int, argb uint32) { calls++ })

	r.Draw(testCamera(0))

	if calls == 0 {
		t.Errorf("expected the breakpoint hook to be invoked in single-threaded mode")
	}
}
