package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"math"
	"os"

	"sectorcast/internal/level"
)

// mipChain holds one decoded texture's full-res RGBA pixels plus a chain
// of halved-resolution copies, generated once at load time so the
// renderer's per-pixel mip selection (spec §4.5, "mip level proportional
// to distance") never resizes on the hot path.
type mipChain struct {
	levels []*image.RGBA
}

func (m *mipChain) levelFor(mip int) *image.RGBA {
	if mip < 0 {
		mip = 0
	}
	if mip >= len(m.levels) {
		mip = len(m.levels) - 1
	}
	return m.levels[mip]
}

// ImageSampler is a Sampler backed by decoded image files, grounded on the
// teacher's own LoadTexture (which decodes a file into an image.RGBA via
// the standard image package before handing pixels to the GPU). Here the
// pixels stay on the CPU and are read directly by Sample.
type ImageSampler struct {
	textures map[level.TextureRef]*mipChain
}

// NewImageSampler returns an empty sampler; use Load to register textures.
func NewImageSampler() *ImageSampler {
	return &ImageSampler{textures: make(map[level.TextureRef]*mipChain)}
}

// Load decodes the image file at path and registers it under ref,
// generating a mip chain of successive halvings that stops once either
// dimension reaches 1 texel (1x1 for a square image). Dimensions need not be a
// power of two for Normalized coordinates, but must be for Scaled.
func (s *ImageSampler) Load(ref level.TextureRef, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return fmt.Errorf("texture: decode %s: %w", path, err)
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, image.Point{}, draw.Src)

	s.textures[ref] = &mipChain{levels: buildMipChain(rgba)}
	return nil
}

func buildMipChain(base *image.RGBA) []*image.RGBA {
	levels := []*image.RGBA{base}
	cur := base
	for cur.Rect.Dx() > 1 && cur.Rect.Dy() > 1 {
		cur = halve(cur)
		levels = append(levels, cur)
	}
	return levels
}

func halve(src *image.RGBA) *image.RGBA {
	w := int(math.Max(1, float64(src.Rect.Dx()/2)))
	h := int(math.Max(1, float64(src.Rect.Dy()/2)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x*2, y*2
			var r, g, b, a uint32
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					c := src.RGBAAt(sx+dx, sy+dy)
					r += uint32(c.R)
					g += uint32(c.G)
					b += uint32(c.B)
					a += uint32(c.A)
				}
			}
			dst.SetRGBA(x, y, colorAverage(r, g, b, a))
		}
	}
	return dst
}

func colorAverage(r, g, b, a uint32) color.RGBA {
	return color.RGBA{R: uint8(r / 4), G: uint8(g / 4), B: uint8(b / 4), A: uint8(a / 4)}
}

// Dimensions implements Sampler.
func (s *ImageSampler) Dimensions(ref level.TextureRef) (int, int) {
	mc, ok := s.textures[ref]
	if !ok {
		return 0, 0
	}
	base := mc.levels[0]
	return base.Rect.Dx(), base.Rect.Dy()
}

// Sample implements Sampler.
func (s *ImageSampler) Sample(ref level.TextureRef, x, y float32, mapX, mapY CoordMap, mip int) (RGB, bool) {
	mc, ok := s.textures[ref]
	if !ok {
		return RGB{}, false
	}

	img := mc.levelFor(mip)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return RGB{}, false
	}

	px := mapX(x, w)
	py := mapY(y, h)
	c := img.RGBAAt(px, py)
	if c.A == 0 {
		return RGB{}, false
	}
	return RGB{R: c.R, G: c.G, B: c.B}, true
}
