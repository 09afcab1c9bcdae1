package generator

import (
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
)

// FindNearest looks for target inside the site's 16x16 chunk column.
//
// Layers are scanned in shells of growing |dy| (dy, then -dy), x-major then z
// within a layer, and the search stops at the first shell holding any match,
// even if a later shell would hold a closer cell.
func FindNearest(b ports.Blocks, site model.Site, target string, verticalRange int) (model.Vec3i, bool) {
	if verticalRange < 1 {
		verticalRange = 1
	}
	minX := site.ChunkX() << 4
	minZ := site.ChunkZ() << 4
	minY, maxY := b.HeightBounds(site.World)

	var best model.Vec3i
	bestDist := -1
	for dy := 0; dy <= verticalRange; dy++ {
		ys := [2]int{site.Pos.Y + dy, site.Pos.Y - dy}
		n := 2
		if dy == 0 {
			n = 1
		}
		for _, y := range ys[:n] {
			if y < minY || y >= maxY {
				continue
			}
			for x := minX; x < minX+16; x++ {
				for z := minZ; z < minZ+16; z++ {
					p := model.Vec3i{X: x, Y: y, Z: z}
					if b.BlockAt(site.World, p) != target {
						continue
					}
					if d := p.DistSq(site.Pos); bestDist < 0 || d < bestDist {
						best, bestDist = p, d
					}
				}
			}
		}
		if bestDist >= 0 {
			return best, true
		}
	}
	return model.Vec3i{}, false
}
