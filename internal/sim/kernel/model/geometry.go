package model

import (
	"fmt"
	"math"
)

type Vec3i struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

// DistSq is the squared euclidean distance between two cells.
func (v Vec3i) DistSq(o Vec3i) int {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Center returns the float position of the cell's center.
func (v Vec3i) Center() Vec3f {
	return Vec3f{X: float64(v.X) + 0.5, Y: float64(v.Y) + 0.5, Z: float64(v.Z) + 0.5}
}

// Offset returns the cell's minimum corner shifted by (dx, dy, dz).
func (v Vec3i) Offset(dx, dy, dz float64) Vec3f {
	return Vec3f{X: float64(v.X) + dx, Y: float64(v.Y) + dy, Z: float64(v.Z) + dz}
}

type Vec3f struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Cell floors each component to the containing cell.
func (v Vec3f) Cell() Vec3i {
	return Vec3i{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}

// Site is a registered generator's fixed block coordinate in a named world.
type Site struct {
	World string `json:"world"`
	Pos   Vec3i  `json:"pos"`
}

// SiteAt normalizes a float location to its containing cell.
func SiteAt(world string, x, y, z float64) Site {
	return Site{World: world, Pos: Vec3f{X: x, Y: y, Z: z}.Cell()}
}

// ChunkX and ChunkZ are the 16x16 column coordinates of the site.
func (s Site) ChunkX() int { return s.Pos.X >> 4 }
func (s Site) ChunkZ() int { return s.Pos.Z >> 4 }

func (s Site) String() string {
	return fmt.Sprintf("%s %d,%d,%d", s.World, s.Pos.X, s.Pos.Y, s.Pos.Z)
}
