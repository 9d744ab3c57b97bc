// Package config holds the renderer's runtime-tunable knobs behind a
// RWMutex-guarded global, in the same style as the teacher's own render
// settings: getters/setters clamp to sane ranges and are safe to call from
// the game loop while a frame is in flight between frames.
package config

import "sync"

const (
	defaultDrawDistance    = 12000.0
	defaultDimmingDistance = 2000.0
	maxDrawDistance        = 50000.0
)

// RenderFlags holds the five independent tuning knobs spec §7 calls out:
// parallel rendering, dynamic shadows, pre-pass sector visibility, SIMD
// pixel-lighting multiplication, and quantized lighting step count; plus
// the draw/dimming distances those knobs are measured against.
type RenderFlags struct {
	mu sync.RWMutex

	parallelColumns bool
	dynamicShadows  bool
	preVisibility   bool
	simdLighting    bool
	dimmingSteps    int

	drawDistance    float32
	dimmingDistance float32
}

var globalRenderFlags = &RenderFlags{
	parallelColumns: true,
	dynamicShadows:  false,
	preVisibility:   true,
	simdLighting:    false,
	dimmingSteps:    0,
	drawDistance:    defaultDrawDistance,
	dimmingDistance: defaultDimmingDistance,
}

// Global returns the process-wide render flags, mirroring the teacher's
// singleton render settings.
func Global() *RenderFlags { return globalRenderFlags }

// GetParallelColumns reports whether the renderer should partition the
// frame buffer across worker goroutines.
func GetParallelColumns() bool {
	globalRenderFlags.mu.RLock()
	defer globalRenderFlags.mu.RUnlock()
	return globalRenderFlags.parallelColumns
}

// SetParallelColumns toggles parallel column dispatch.
func SetParallelColumns(enabled bool) {
	globalRenderFlags.mu.Lock()
	defer globalRenderFlags.mu.Unlock()
	globalRenderFlags.parallelColumns = enabled
}

// GetDynamicShadows reports whether lighting uses the dynamic-shadow mode
// (per-pixel occlusion test) instead of the static-mode baked light lists.
func GetDynamicShadows() bool {
	globalRenderFlags.mu.RLock()
	defer globalRenderFlags.mu.RUnlock()
	return globalRenderFlags.dynamicShadows
}

// SetDynamicShadows toggles dynamic-shadow lighting mode.
func SetDynamicShadows(enabled bool) {
	globalRenderFlags.mu.Lock()
	defer globalRenderFlags.mu.Unlock()
	globalRenderFlags.dynamicShadows = enabled
}

// GetPreVisibility reports whether the per-frame visibility pre-pass runs
// before column rendering.
func GetPreVisibility() bool {
	globalRenderFlags.mu.RLock()
	defer globalRenderFlags.mu.RUnlock()
	return globalRenderFlags.preVisibility
}

// SetPreVisibility toggles the visibility pre-pass.
func SetPreVisibility(enabled bool) {
	globalRenderFlags.mu.Lock()
	defer globalRenderFlags.mu.Unlock()
	globalRenderFlags.preVisibility = enabled
}

// GetSIMDLighting reports whether per-pixel lighting multiplication uses
// the SIMD-style batched code path.
func GetSIMDLighting() bool {
	globalRenderFlags.mu.RLock()
	defer globalRenderFlags.mu.RUnlock()
	return globalRenderFlags.simdLighting
}

// SetSIMDLighting toggles the SIMD pixel-lighting path.
func SetSIMDLighting(enabled bool) {
	globalRenderFlags.mu.Lock()
	defer globalRenderFlags.mu.Unlock()
	globalRenderFlags.simdLighting = enabled
}

// GetDimmingSteps returns the quantized attenuation step count, or 0 for
// continuous linear falloff.
func GetDimmingSteps() int {
	globalRenderFlags.mu.RLock()
	defer globalRenderFlags.mu.RUnlock()
	return globalRenderFlags.dimmingSteps
}

// SetDimmingSteps sets the quantized attenuation step count; negative
// values clamp to 0 (continuous mode).
func SetDimmingSteps(steps int) {
	globalRenderFlags.mu.Lock()
	defer globalRenderFlags.mu.Unlock()
	if steps < 0 {
		steps = 0
	}
	globalRenderFlags.dimmingSteps = steps
}

// GetDrawDistance returns the far clip distance for ray casting.
func GetDrawDistance() float32 {
	globalRenderFlags.mu.RLock()
	defer globalRenderFlags.mu.RUnlock()
	return globalRenderFlags.drawDistance
}

// SetDrawDistance sets the far clip distance, clamped to maxDrawDistance; a
// non-positive distance resets it to defaultDrawDistance.
func SetDrawDistance(distance float32) {
	globalRenderFlags.mu.Lock()
	defer globalRenderFlags.mu.Unlock()
	if distance <= 0 {
		distance = defaultDrawDistance
	}
	if distance > maxDrawDistance {
		distance = maxDrawDistance
	}
	globalRenderFlags.drawDistance = distance
}

// GetDimmingDistance returns the distance over which quantized attenuation
// steps are spread.
func GetDimmingDistance() float32 {
	globalRenderFlags.mu.RLock()
	defer globalRenderFlags.mu.RUnlock()
	return globalRenderFlags.dimmingDistance
}

// SetDimmingDistance sets the quantized-attenuation spread distance.
func SetDimmingDistance(distance float32) {
	globalRenderFlags.mu.Lock()
	defer globalRenderFlags.mu.Unlock()
	if distance <= 0 {
		distance = defaultDimmingDistance
	}
	globalRenderFlags.dimmingDistance = distance
}
