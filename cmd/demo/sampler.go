package main

import (
	"sectorcast/internal/level"
	"sectorcast/internal/texture"
)

// checkerTexture is a procedural texture.Sampler implementation: two
// alternating colors in an 8x8 checkerboard, one color pair per
// level.TextureRef, plus a transparent "window" ref (texRefWindow) used to
// exercise the masked-pixel path (spec §4.5, "mask zero = transparent,
// skip pixel"). Grounded on the texture package's ImageSampler in shape
// (same Sampler interface, same coordinate-mapping callbacks) but avoids
// any file decoding, since constructing the demo's own sample assets is
// this binary's job, not package texture's (spec §1).
type checkerTexture struct {
	size int
}

const (
	texRefWall    level.TextureRef = 1
	texRefFloor   level.TextureRef = 2
	texRefCeiling level.TextureRef = 3
	texRefWindow  level.TextureRef = 4
)

func newCheckerTexture() *checkerTexture {
	return &checkerTexture{size: 64}
}

func (c *checkerTexture) Dimensions(ref level.TextureRef) (int, int) {
	if ref == level.NoTexture {
		return 0, 0
	}
	return c.size, c.size
}

func (c *checkerTexture) Sample(ref level.TextureRef, x, y float32, mapX, mapY texture.CoordMap, mip int) (texture.RGB, bool) {
	if ref == level.NoTexture {
		return texture.RGB{}, false
	}

	tile := 1 << uint(mip)
	if tile < 1 {
		tile = 1
	}
	px := mapX(x, c.size) / tile
	py := mapY(y, c.size) / tile
	on := (px+py)%2 == 0

	switch ref {
	case texRefWall:
		if on {
			return texture.RGB{R: 150, G: 60, B: 60}, true
		}
		return texture.RGB{R: 100, G: 40, B: 40}, true
	case texRefFloor:
		if on {
			return texture.RGB{R: 70, G: 70, B: 90}, true
		}
		return texture.RGB{R: 50, G: 50, B: 70}, true
	case texRefCeiling:
		if on {
			return texture.RGB{R: 90, G: 90, B: 100}, true
		}
		return texture.RGB{R: 70, G: 70, B: 80}, true
	case texRefWindow:
		// a masked "window" texture: every other tile is transparent,
		// so the side room's walls that use it as their middle texture
		// exercise the masked-pixel path.
		if !on {
			return texture.RGB{}, false
		}
		return texture.RGB{R: 200, G: 200, B: 230}, true
	default:
		return texture.RGB{}, false
	}
}
