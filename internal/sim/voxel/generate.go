package voxel

import "chunkfall.ai/internal/sim/logic/mathx"

// TerrainGen fills fresh chunks: bedrock floor, stone body with sparse ore and
// caves, a few dirt layers and grass on top.
type TerrainGen struct {
	Seed     int64
	SurfaceY int

	// Permille chances inside the stone body.
	CavePermille    int
	CoalOrePermille int
	IronOrePermille int
}

func (g TerrainGen) surfaceAt(x, z int) int {
	return g.SurfaceY + int(mathx.Hash3(g.Seed, x, 0, z)%3)
}

func (w *World) generateChunk(d *Dimension, ch *Chunk) {
	pal := w.cats.Blocks.Index
	air, stone, dirt, grass := pal["AIR"], pal["STONE"], pal["DIRT"], pal["GRASS"]
	bedrock, coal, iron := pal["BEDROCK"], pal["COAL_ORE"], pal["IRON_ORE"]

	g := d.Gen
	baseX := ch.CX * ChunkSize
	baseZ := ch.CZ * ChunkSize
	for lz := 0; lz < ChunkSize; lz++ {
		for lx := 0; lx < ChunkSize; lx++ {
			wx := baseX + lx
			wz := baseZ + lz
			top := g.surfaceAt(wx, wz)
			for y := d.MinY; y < d.MaxY; y++ {
				b := air
				switch {
				case y == d.MinY:
					b = bedrock
				case y < top-3:
					b = stone
					r := mathx.Permille(mathx.Hash3(g.Seed+1, wx, y, wz))
					switch {
					case r < g.CavePermille:
						b = air
					case r < g.CavePermille+g.IronOrePermille:
						b = iron
					case r < g.CavePermille+g.IronOrePermille+g.CoalOrePermille:
						b = coal
					}
				case y < top:
					b = dirt
				case y == top:
					b = grass
				}
				ch.Set(lx, y, lz, b)
			}
		}
	}
}

// VoidGen generates empty air columns over a bedrock floor.
func VoidGen() TerrainGen { return TerrainGen{SurfaceY: -1 << 20} }
