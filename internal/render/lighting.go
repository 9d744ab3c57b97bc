package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/level"
	"sectorcast/internal/mapcache"
)

// verticalFadeDistance is the height above a floor (or below a ceiling)
// within which a light's contribution fades out linearly as the light
// nears the plane, so a light source close to a horizontal plane doesn't
// appear to "slice through" it (spec §4.5, horizontal-surface lighting).
const verticalFadeDistance = 64.0

// lightContribution returns strength·(1 − d²/r²) clamped to [0, ∞) for a
// light at distance² distSq from the sample point, or 0 if the sample is
// outside the light's radius.
func lightContribution(lt level.Light, distSq float32) float32 {
	if distSq > lt.RadiusSq {
		return 0
	}
	v := lt.Strength * (1 - distSq*lt.RadiusSqInverse)
	if v < 0 {
		return 0
	}
	return v
}

// attenuate applies the point's distance-based dimming to a raw light
// value: a quantized step subtraction when dimmingSteps > 0, otherwise a
// continuous linear falloff over dimmingDistance (spec §4.5).
func attenuate(value float32, lightStep int, pointDistance, dimmingDistance float32, dimmingSteps int) float32 {
	if dimmingSteps > 0 {
		step := dimmingDistance / float32(dimmingSteps)
		value -= float32(lightStep) * step / dimmingDistance
	} else {
		falloff := pointDistance / dimmingDistance
		if falloff > 1 {
			falloff = 1
		}
		value -= falloff
	}
	if value < 0 {
		return 0
	}
	return value
}

// lightStepFor buckets pointDistance into a quantized step index, or
// returns 0 when continuous (unused) attenuation is selected.
func lightStepFor(pointDistance, dimmingDistance float32, dimmingSteps int) int {
	if dimmingSteps <= 0 {
		return 0
	}
	step := dimmingDistance / float32(dimmingSteps)
	if step <= 0 {
		return 0
	}
	return int(pointDistance / step)
}

// verticalSurfaceLight computes the light value for a wall pixel: the
// maximum of the sector's ambient brightness and every registered light's
// falloff contribution, then attenuated by distance (spec §4.5, "Light
// value for each pixel comes from the vertical-surface lighting
// function").
func verticalSurfaceLight(
	lvl *level.Level,
	cache *mapcache.Cache,
	lights []level.LightIndex,
	sectorBrightness float32,
	samplePos mgl32.Vec3,
	lightStep int,
	pointDistance, dimmingDistance float32,
	dimmingSteps int,
	dynamicShadows bool,
) float32 {
	value := sectorBrightness
	for _, idx := range lights {
		lt := lvl.Light(idx)
		diff := lt.Position.Sub(samplePos)
		distSq := diff.Dot(diff)
		contribution := lightContribution(lt, distSq)
		if contribution <= 0 {
			continue
		}
		if dynamicShadows && cache.Intersect3D(samplePos, lt.Position) {
			continue
		}
		if contribution > value {
			value = contribution
		}
	}
	return attenuate(value, lightStep, pointDistance, dimmingDistance, dimmingSteps)
}

// horizontalSurfaceLight is the floor/ceiling variant of
// verticalSurfaceLight: lights on the wrong side of the plane are
// rejected outright, and surviving contributions fade linearly as the
// light approaches the plane from the lit side, within
// verticalFadeDistance of it (isCeiling selects which side counts as
// "wrong").
func horizontalSurfaceLight(
	lvl *level.Level,
	cache *mapcache.Cache,
	lights []level.LightIndex,
	sectorBrightness float32,
	samplePos mgl32.Vec3,
	surfaceZ float32,
	isCeiling bool,
	lightStep int,
	pointDistance, dimmingDistance float32,
	dimmingSteps int,
	dynamicShadows bool,
) float32 {
	value := sectorBrightness
	for _, idx := range lights {
		lt := lvl.Light(idx)

		dz := lt.Position.Z() - surfaceZ
		if isCeiling {
			dz = -dz
		}
		if dz < 0 {
			continue
		}

		diff := lt.Position.Sub(samplePos)
		distSq := diff.Dot(diff)
		contribution := lightContribution(lt, distSq)
		if contribution <= 0 {
			continue
		}
		if dynamicShadows && cache.Intersect3D(samplePos, lt.Position) {
			continue
		}

		fade := dz / verticalFadeDistance
		if fade > 1 {
			fade = 1
		}
		contribution *= fade

		if contribution > value {
			value = contribution
		}
	}
	return attenuate(value, lightStep, pointDistance, dimmingDistance, dimmingSteps)
}

// shadeRGB multiplies a sampled color by its computed light level, clamping
// each channel to 255 (spec §4.5, "Multiply RGB by light value, clamping to
// 255 per channel"). When simd is set, the three channels are packed into
// one mgl32.Vec3 and scaled with a single Mul call instead of three
// independent float32 multiplications (spec §6, "SIMD pixel-lighting
// multiplication"). The flag is a frame-constant snapshot of
// config.GetSIMDLighting, not read here, matching every other per-frame
// config knob.
func shadeRGB(r, g, b uint8, light float32, simd bool) (uint8, uint8, uint8) {
	if simd {
		v := mgl32.Vec3{float32(r), float32(g), float32(b)}.Mul(light)
		return clampChannel(v.X()), clampChannel(v.Y()), clampChannel(v.Z())
	}
	return clampChannel(float32(r) * light), clampChannel(float32(g) * light), clampChannel(float32(b) * light)
}

func clampChannel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// packARGB writes an opaque ARGB pixel: alpha always 0xFF (spec §6,
// "alpha byte always 0xFF").
func packARGB(r, g, b uint8) uint32 {
	return 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
