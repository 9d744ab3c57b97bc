package main

import (
	"github.com/go-gl/mathgl/mgl32"

	"sectorcast/internal/builder"
	"sectorcast/internal/level"
	"sectorcast/internal/mapcache"
)

// noopClipper is handed to builder.Build as the polygon-clipping
// collaborator; the sample level's rooms are disjoint or share only an
// edge, so the first build phase never finds an overlapping pair and this
// is never actually called (the abstract Clipper capability is a real
// external dependency for levels with overlapping source polygons, which
// this demo does not construct).
type noopClipper struct{}

func (noopClipper) Difference(subject, clip []mgl32.Vec2) (external, holes [][]mgl32.Vec2) {
	panic("demo level has no overlapping source polygons; Clipper.Difference should never run")
}

// buildSampleLevel constructs a small three-room level: a large entry
// room, a narrower corridor with a stepped floor, and a lit side room
// whose walls carry a masked window middle texture, to exercise one-sided
// walls, two-sided step walls, and masked (transparent) wall pixels in a
// single demo run. The corridor's opening into the side room is two-sided,
// so it carries no middle texture.
func buildSampleLevel() (*level.Level, *mapcache.Cache) {
	walls := [3]level.TextureRef{texRefWall, level.NoTexture, texRefWall}
	windowWalls := [3]level.TextureRef{texRefWall, texRefWindow, texRefWall}

	polys := []builder.SourcePolygon{
		{
			Vertices: []mgl32.Vec2{
				{0, 0}, {0, 400}, {400, 400}, {400, 0},
			},
			FloorHeight:    0,
			CeilingHeight:  128,
			FloorTexture:   texRefFloor,
			CeilingTexture: texRefCeiling,
			WallTextures:   walls,
			Brightness:     0.35,
		},
		{
			Vertices: []mgl32.Vec2{
				{400, 150}, {400, 250}, {700, 250}, {700, 150},
			},
			FloorHeight:    16,
			CeilingHeight:  112,
			FloorTexture:   texRefFloor,
			CeilingTexture: texRefCeiling,
			WallTextures:   walls,
			Brightness:     0.25,
		},
		{
			Vertices: []mgl32.Vec2{
				{700, 0}, {700, 400}, {1000, 400}, {1000, 0},
			},
			FloorHeight:    0,
			CeilingHeight:  128,
			FloorTexture:   texRefFloor,
			CeilingTexture: texRefCeiling,
			WallTextures:   windowWalls,
			Brightness:     0.15,
		},
	}

	lvl, cache := builder.Build(polys, noopClipper{})
	lvl.SkyTexture = level.NoTexture

	lvl.AddLight(mgl32.Vec3{200, 200, 96}, 350, 1.1)
	lvl.AddLight(mgl32.Vec3{850, 200, 96}, 260, 1.4)
	lvl.ForEachLight(func(idx level.LightIndex, lt level.Light) {
		cache.AddLight(idx)
	})

	return lvl, cache
}

// startSector returns the sector index a fresh camera should start in: the
// first (entry room) sector built by buildSampleLevel.
func startSector() level.SectorIndex { return 0 }
