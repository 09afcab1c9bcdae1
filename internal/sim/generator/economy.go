package generator

import (
	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
	"chunkfall.ai/internal/sim/tuning"
)

// BaseRate is the configured progress per cycle for a tool tier.
func BaseRate(s tuning.TierSpeeds, t catalogs.Tier) float64 {
	switch t {
	case catalogs.TierWood:
		return s.Wooden
	case catalogs.TierStone:
		return s.Stone
	case catalogs.TierCopper:
		return s.Copper
	case catalogs.TierIron:
		return s.Iron
	case catalogs.TierGold:
		return s.Gold
	case catalogs.TierDiamond:
		return s.Diamond
	case catalogs.TierNetherite:
		return s.Netherite
	default:
		return 0
	}
}

// Rate is the tier's base rate scaled by the efficiency bonus. Disabled
// tiers stay at zero regardless of enchantments.
func Rate(s tuning.TierSpeeds, perLevel float64, t catalogs.Tier, efficiency int) float64 {
	base := BaseRate(s, t)
	if base <= 0 {
		return 0
	}
	return base * (1 + perLevel*float64(efficiency))
}

func (m *Manager) toolRate(tool *model.ItemStack) float64 {
	return Rate(m.cfg.Speeds, m.cfg.EfficiencyPerLevel, m.cats.ToolTier(tool.Item), tool.Efficiency)
}

func (m *Manager) isTool(s *model.ItemStack) bool {
	return !s.Empty() && m.cats.ToolTier(s.Item) != catalogs.TierNone
}

// hasFuel reports whether one production step could be paid for.
func (m *Manager) hasFuel(inv ports.Inventory, st *State) bool {
	if st.FuelCharges > 0 {
		return true
	}
	for slot := 1; slot < inv.Size(); slot++ {
		if s := inv.Item(slot); !s.Empty() && m.cats.IsFuel(s.Item) {
			return true
		}
	}
	return false
}

// consumeFuel spends one charge, burning the first fuel item in the
// container when the buffer is empty.
func (m *Manager) consumeFuel(inv ports.Inventory, st *State) bool {
	if st.FuelCharges > 0 {
		st.setFuelCharges(st.FuelCharges - 1)
		return true
	}
	for slot := 1; slot < inv.Size(); slot++ {
		s := inv.Item(slot)
		if s.Empty() {
			continue
		}
		uses := m.cats.FuelCharges(s.Item)
		if uses <= 0 {
			continue
		}
		if s.Count <= 1 {
			inv.SetItem(slot, nil)
		} else {
			next := s.Clone()
			next.Count--
			inv.SetItem(slot, next)
		}
		st.setFuelCharges(uses - 1)
		return true
	}
	return false
}

// wearTool applies one use of durability to the tool in slot 0 and reports
// whether it broke. Unbreaking level n skips the damage with chance n/(n+1).
func (m *Manager) wearTool(inv ports.Inventory, site model.Site) (broke bool) {
	tool := inv.Item(toolSlot)
	if !m.isTool(tool) {
		return false
	}
	if tool.Unbreaking > 0 {
		if m.rng.Float64() >= 1.0/float64(tool.Unbreaking+1) {
			return false
		}
	}
	maxDur := m.cats.MaxDurability(tool.Item)
	if maxDur <= 0 {
		// Unbreakable by catalog.
		return false
	}
	next := tool.Clone()
	next.Damage++
	if next.Damage >= maxDur {
		inv.SetItem(toolSlot, nil)
		if m.cfg.SoundOnBreak {
			m.world.Sound(site.World, site.Pos.Center(), "ENTITY_ITEM_BREAK", 0.8, 0.9)
		}
		return true
	}
	inv.SetItem(toolSlot, next)
	return false
}
