package generator

import (
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
)

const toolSlot = 0

type MineResult struct {
	Mined       bool
	ToolBroke   bool
	StorageFull bool
}

// mineStep converts one target cell into one output item. Storage is checked
// before fuel is spent so a full container never costs a charge or a block.
func (m *Manager) mineStep(inv ports.Inventory, site model.Site, st *State) MineResult {
	var res MineResult

	target, ok := FindNearest(m.world, site, m.cfg.TargetBlock, m.cfg.VerticalSearchRange)
	if !ok {
		return res
	}
	if !m.hasRoom(inv) {
		res.StorageFull = true
		return res
	}
	if !m.consumeFuel(inv, st) {
		return res
	}
	if !m.addOutput(inv) {
		res.StorageFull = true
		return res
	}

	tool := inv.Item(toolSlot).Clone()
	m.miningEffects(site.World, target, tool)
	m.world.SetBlock(site.World, target, "AIR")

	res.Mined = true
	res.ToolBroke = m.wearTool(inv, site)
	return res
}

func (m *Manager) hasRoom(inv ports.Inventory) bool {
	out := m.cfg.OutputItem
	limit := m.cats.MaxStack(out)
	for slot := 1; slot < inv.Size(); slot++ {
		s := inv.Item(slot)
		if s.Empty() {
			return true
		}
		if s.Item == out && s.Count < limit {
			return true
		}
	}
	return false
}

// addOutput prefers topping up a partial stack over opening an empty slot.
func (m *Manager) addOutput(inv ports.Inventory) bool {
	out := m.cfg.OutputItem
	limit := m.cats.MaxStack(out)
	for slot := 1; slot < inv.Size(); slot++ {
		s := inv.Item(slot)
		if !s.Empty() && s.Item == out && s.Count < limit {
			next := s.Clone()
			next.Count++
			inv.SetItem(slot, next)
			return true
		}
	}
	for slot := 1; slot < inv.Size(); slot++ {
		if inv.Item(slot).Empty() {
			inv.SetItem(slot, &model.ItemStack{Item: out, Count: 1})
			return true
		}
	}
	return false
}

func (m *Manager) miningEffects(world string, cell model.Vec3i, tool *model.ItemStack) {
	if !m.cfg.Particles {
		return
	}
	at := cell.Center()
	m.world.Particles(world, at, "BLOCK_CRUMBLE", 12)
	m.world.Particles(world, at, "CRIT", 6)
	if m.isTool(tool) {
		m.anim.Swing(world, cell, tool)
	}
}

// workingEffects is the once-per-tick completion cue above the container.
func (m *Manager) workingEffects(site model.Site) {
	if m.cfg.Particles {
		at := site.Pos.Offset(0.5, 1.15, 0.5)
		m.world.Particles(site.World, at, "BLOCK_CRUMBLE", 6)
		m.world.Particles(site.World, model.Vec3f{X: at.X, Y: at.Y + 0.1, Z: at.Z}, "CAMPFIRE_COSY_SMOKE", 4)
	}
	if m.cfg.SoundOnMine {
		m.world.Sound(site.World, site.Pos.Offset(0.5, 1.1, 0.5), "BLOCK_STONE_BREAK", 0.6, 1.0)
	}
}
