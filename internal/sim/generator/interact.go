package generator

import (
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
)

type InteractRequest struct {
	Player ports.Player
	// Block is the clicked cell.
	Block      model.Site
	RightClick bool
	MainHand   bool
}

type InteractResult int

const (
	InteractIgnored InteractResult = iota
	InteractAlreadyGenerator
	InteractNoInventory
	InteractSlotOccupied
	InteractCreated
)

func (r InteractResult) String() string {
	switch r {
	case InteractAlreadyGenerator:
		return "already_generator"
	case InteractNoInventory:
		return "no_inventory"
	case InteractSlotOccupied:
		return "slot_occupied"
	case InteractCreated:
		return "created"
	default:
		return "ignored"
	}
}

// HandleInteract turns a container into a generator when a sneaking player
// right-clicks it holding a pickaxe. The tool moves from the player's hand
// into the reserved slot.
func (m *Manager) HandleInteract(req InteractRequest) InteractResult {
	if !m.cfg.Enabled || !req.RightClick || !req.MainHand || req.Player == nil {
		return InteractIgnored
	}
	site := req.Block
	if m.world.BlockAt(site.World, site.Pos) != m.cfg.ContainerBlock {
		return InteractIgnored
	}
	if !m.cfg.IsTargetWorld(site.World) {
		return InteractIgnored
	}
	inHand := req.Player.MainHand()
	if !req.Player.Sneaking() || !m.isTool(inHand) {
		return InteractIgnored
	}

	name := req.Player.Name()
	if m.IsRegistered(site) {
		m.notify(name, ports.LevelWarning, "This barrel already has a cobblestone generator.")
		return InteractAlreadyGenerator
	}
	inv, ok := m.world.Container(site.World, site.Pos)
	if !ok {
		m.notify(name, ports.LevelError, "You must use a barrel to create a cobblestone generator.")
		return InteractNoInventory
	}
	if inv.Item(toolSlot) != nil {
		m.notify(name, ports.LevelWarning, "Slot 0 of this barrel is already occupied. Clear it first.")
		return InteractSlotOccupied
	}

	inv.SetItem(toolSlot, inHand.Clone())
	req.Player.SetMainHand(nil)
	m.Register(site)

	m.notify(name, ports.LevelSuccess, "Cobblestone generator created. Your pickaxe is now in slot 0.")
	if m.cfg.SoundOnCreate {
		m.world.Sound(site.World, site.Pos.Center(), "BLOCK_ANVIL_USE", 0.8, 1.05)
	}
	return InteractCreated
}

// HandleBreak must be called before the container block is removed. It
// reports whether a generator was torn down.
func (m *Manager) HandleBreak(site model.Site, player string) bool {
	if !m.cfg.Enabled {
		return false
	}
	if m.world.BlockAt(site.World, site.Pos) != m.cfg.ContainerBlock {
		return false
	}
	if !m.IsRegistered(site) {
		m.anim.Hide(site)
		return false
	}
	m.Unregister(site)
	if player != "" {
		m.notify(player, ports.LevelInfo, "Cobblestone generator removed.")
	}
	return true
}

func (m *Manager) notify(player string, level ports.Level, msg string) {
	if m.notifier != nil {
		m.notifier.Notify(player, level, msg)
	}
}
