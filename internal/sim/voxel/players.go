package voxel

import (
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
)

type Player struct {
	name     string
	sneaking bool
	mainHand *model.ItemStack
}

var _ ports.Player = (*Player)(nil)

func (p *Player) Name() string                   { return p.name }
func (p *Player) Sneaking() bool                 { return p.sneaking }
func (p *Player) SetSneaking(v bool)             { p.sneaking = v }
func (p *Player) MainHand() *model.ItemStack     { return p.mainHand }
func (p *Player) SetMainHand(s *model.ItemStack) { p.mainHand = s }

// Player returns the named player, creating it on first use.
func (w *World) Player(name string) *Player {
	p := w.players[name]
	if p == nil {
		p = &Player{name: name}
		w.players[name] = p
	}
	return p
}

type Message struct {
	Player string
	Level  ports.Level
	Text   string
}

// Notify records trigger feedback so callers can inspect it.
func (w *World) Notify(player string, level ports.Level, msg string) {
	w.inbox = append(w.inbox, Message{Player: player, Level: level, Text: msg})
}

// DrainMessages returns and clears pending player messages.
func (w *World) DrainMessages() []Message {
	out := w.inbox
	w.inbox = nil
	return out
}
