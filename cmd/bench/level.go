package main

import (
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/builder"
	"sectorcast/internal/level"
	"sectorcast/internal/mapcache"
	"sectorcast/internal/texture"
)

// noopClipper mirrors cmd/demo's stub: the benchmark level's rooms never
// overlap, so builder.Build never needs a real clip implementation.
type noopClipper struct{}

func (noopClipper) Difference(subject, clip []mgl32.Vec2) (external, holes [][]mgl32.Vec2) {
	panic("benchmark level has no overlapping source polygons")
}

const (
	texRefWall    level.TextureRef = 1
	texRefFloor   level.TextureRef = 2
	texRefCeiling level.TextureRef = 3
)

// flatSampler returns a single flat color for every textured surface; the
// benchmark exercises the rasterizer and lighting, not texture fetch
// bandwidth, so there is no reason to pay for checkerboard math per pixel.
type flatSampler struct{}

func (flatSampler) Dimensions(ref level.TextureRef) (int, int) {
	if ref == level.NoTexture {
		return 0, 0
	}
	return 64, 64
}

func (flatSampler) Sample(ref level.TextureRef, x, y float32, mapX, mapY texture.CoordMap, mip int) (texture.RGB, bool) {
	if ref == level.NoTexture {
		return texture.RGB{}, false
	}
	return texture.RGB{R: 120, G: 120, B: 130}, true
}

// buildBenchLevel constructs a corridor of numRooms adjoining rooms, each
// connected to the next through a plain two-sided portal, so a long
// benchmark run crosses many portal boundaries per frame the way a real
// level would.
func buildBenchLevel(numRooms int) (*level.Level, *mapcache.Cache) {
	if numRooms < 1 {
		numRooms = 1
	}
	walls := [3]level.TextureRef{texRefWall, level.NoTexture, texRefWall}

	roomWidth := float32(300)
	polys := make([]builder.SourcePolygon, 0, numRooms)
	for i := 0; i < numRooms; i++ {
		x0 := float32(i) * roomWidth
		x1 := x0 + roomWidth
		polys = append(polys, builder.SourcePolygon{
			Vertices: []mgl32.Vec2{
				{x0, 0}, {x0, 300}, {x1, 300}, {x1, 0},
			},
			FloorHeight:    0,
			CeilingHeight:  128,
			FloorTexture:   texRefFloor,
			CeilingTexture: texRefCeiling,
			WallTextures:   walls,
			Brightness:     0.3,
		})
	}

	lvl, cache := builder.Build(polys, noopClipper{})
	lvl.SkyTexture = level.NoTexture

	for i := 0; i < numRooms; i++ {
		x0 := float32(i) * roomWidth
		lvl.AddLight(mgl32.Vec3{x0 + roomWidth/2, 150, 96}, 280, 1.2)
	}
	lvl.ForEachLight(func(idx level.LightIndex, lt level.Light) {
		cache.AddLight(idx)
	})

	return lvl, cache
}
