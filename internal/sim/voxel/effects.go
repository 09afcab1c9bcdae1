package voxel

import "chunkfall.ai/internal/sim/kernel/model"

type Effect struct {
	World  string
	At     model.Vec3f
	Kind   string // "particle" or "sound"
	Name   string
	Count  int
	Volume float64
	Pitch  float64
}

const effectLogCap = 256

// EffectLog keeps per-name counters and the most recent effects.
type EffectLog struct {
	Counts map[string]int
	Recent []Effect
}

func (l *EffectLog) add(e Effect) {
	if l.Counts == nil {
		l.Counts = map[string]int{}
	}
	l.Counts[e.Name]++
	if len(l.Recent) == effectLogCap {
		copy(l.Recent, l.Recent[1:])
		l.Recent = l.Recent[:effectLogCap-1]
	}
	l.Recent = append(l.Recent, e)
}

func (w *World) Particles(world string, at model.Vec3f, particle string, count int) {
	w.effects.add(Effect{World: world, At: at, Kind: "particle", Name: particle, Count: count})
}

func (w *World) Sound(world string, at model.Vec3f, sound string, volume, pitch float64) {
	w.effects.add(Effect{World: world, At: at, Kind: "sound", Name: sound, Volume: volume, Pitch: pitch})
}

// EffectCount returns how many times the named particle or sound was emitted.
func (w *World) EffectCount(name string) int { return w.effects.Counts[name] }

func (w *World) ResetEffects() { w.effects = EffectLog{} }
