// Package texture defines the capability interface the renderer samples
// textures through. The renderer never decodes image files itself (that is
// an external collaborator's job, per spec §1); it only consumes a Sampler
// handed to it at construction, matching the "function-pointer
// polymorphism" the original renderer used at startup (spec §9: "model the
// sampler as a small capability interface... Do not use globals").
package texture

import (
	"math"

	"sectorcast/internal/level"
)

// RGB is an 8-bit-per-channel color triple sampled from a texture.
type RGB struct {
	R, G, B uint8
}

// CoordMap maps a float coordinate and a texture dimension to a pixel
// index. Two are shipped (spec §4.6): Scaled wraps via a power-of-two mask,
// Normalized treats the input as a [0, 1] fraction of the dimension.
type CoordMap func(coord float32, dim int) int

// Scaled wraps coord to the texture's width/height via floor(coord) & (dim-1).
// dim must be a power of two; the renderer's own textures are.
func Scaled(coord float32, dim int) int {
	i := int(math.Floor(float64(coord)))
	return i & (dim - 1)
}

// Normalized maps coord in [0, 1] to a pixel index in [0, dim-1].
func Normalized(coord float32, dim int) int {
	i := int(coord * float32(dim))
	if i < 0 {
		i = 0
	}
	if i >= dim {
		i = dim - 1
	}
	return i
}

// Sampler is the capability the renderer depends on for every textured
// surface (walls, floors, ceilings, sky). Sample must be safe to call
// concurrently from multiple renderer worker goroutines.
type Sampler interface {
	// Sample fills out the color and mask for texture ref at texture-space
	// coordinate (x, y), using mapX/mapY to convert the floats to pixel
	// indices, at the given mip level. mask is false when the pixel is
	// transparent and should not be written (spec §4.5: "mask zero =
	// transparent, skip pixel").
	Sample(ref level.TextureRef, x, y float32, mapX, mapY CoordMap, mip int) (color RGB, mask bool)

	// Dimensions returns the width/height of ref in texels at mip 0, or
	// (0, 0) if ref is level.NoTexture or unknown to this sampler.
	Dimensions(ref level.TextureRef) (w, h int)
}
