package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"sectorcast/internal/level"
)

func TestScaledWrapsPowerOfTwo(t *testing.T) {
	if got := Scaled(3.7, 8); got != 3 {
		t.Errorf("Scaled(3.7, 8) = %d, want 3", got)
	}
	if got := Scaled(9.2, 8); got != 1 {
		t.Errorf("Scaled(9.2, 8) = %d, want 1 (wrap)", got)
	}
	if got := Scaled(-1, 8); got != 7 {
		t.Errorf("Scaled(-1, 8) = %d, want 7 (wrap around via mask)", got)
	}
}

func TestNormalizedClampsToRange(t *testing.T) {
	if got := Normalized(0.5, 64); got != 32 {
		t.Errorf("Normalized(0.5, 64) = %d, want 32", got)
	}
	if got := Normalized(1.5, 64); got != 63 {
		t.Errorf("Normalized(1.5, 64) = %d, want clamped to 63", got)
	}
	if got := Normalized(-0.5, 64); got != 0 {
		t.Errorf("Normalized(-0.5, 64) = %d, want clamped to 0", got)
	}
}

func writeTestPNG(t *testing.T, path string, w, h int, fill color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestImageSamplerLoadAndSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brick.png")
	writeTestPNG(t, path, 8, 8, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	s := NewImageSampler()
	if err := s.Load(1, path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	w, h := s.Dimensions(1)
	if w != 8 || h != 8 {
		t.Errorf("Dimensions = (%d,%d), want (8,8)", w, h)
	}

	rgb, mask := s.Sample(1, 4, 4, Scaled, Scaled, 0)
	if !mask {
		t.Fatalf("expected opaque sample to have mask=true")
	}
	if rgb.R != 200 || rgb.G != 100 || rgb.B != 50 {
		t.Errorf("unexpected sampled color %+v", rgb)
	}
}

func TestImageSamplerUnknownRefReturnsNoMask(t *testing.T) {
	s := NewImageSampler()
	_, mask := s.Sample(level.NoTexture, 0, 0, Scaled, Scaled, 0)
	if mask {
		t.Errorf("sampling an unregistered texture ref should report mask=false")
	}
}

func TestImageSamplerTransparentPixelReportsNoMask(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glass.png")
	writeTestPNG(t, path, 4, 4, color.RGBA{R: 0, G: 0, B: 0, A: 0})

	s := NewImageSampler()
	if err := s.Load(2, path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, mask := s.Sample(2, 1, 1, Scaled, Scaled, 0)
	if mask {
		t.Errorf("a fully transparent pixel should report mask=false")
	}
}

func TestImageSamplerMipChainShrinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stone.png")
	writeTestPNG(t, path, 16, 16, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	s := NewImageSampler()
	if err := s.Load(3, path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	rgb, mask := s.Sample(3, 0.5, 0.5, Normalized, Normalized, 4)
	if !mask {
		t.Fatalf("expected a deep mip level to still sample opaquely for a fully opaque source")
	}
	if rgb.R != 10 || rgb.G != 20 || rgb.B != 30 {
		t.Errorf("averaging a flat-colored image through the mip chain should preserve its color, got %+v", rgb)
	}
}
