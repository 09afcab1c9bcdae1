// Package animation keeps one floating tool prop above every active generator
// and plays short swing props where blocks are mined.
package animation

import (
	"math"
	"math/rand"
	"time"

	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
	"chunkfall.ai/internal/sim/tuning"
)

type state struct {
	actor model.ActorHandle
	base  model.Site
	phase float64
	yaw   float64
}

type swing struct {
	actor model.ActorHandle
	at    model.Vec3f
	yaw   float64
	frame int
}

// swingPoses are the arm poses (pitch, roll) and vertical nudges of frames 1..3.
var swingPoses = [...]struct {
	pitch, roll, dy float64
}{
	{-40, -5, 0.08},
	{-160, 10, -0.12},
	{-75, 18, 0},
}

const swingFrames = 4

type Manager struct {
	cfg   tuning.Animation
	world ports.World
	rng   ports.Random

	anims  map[model.Site]*state
	swings []swing
}

func NewManager(cfg tuning.Animation, world ports.World, rng ports.Random) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		cfg:   cfg,
		world: world,
		rng:   rng,
		anims: map[model.Site]*state{},
	}
}

// Show refreshes the site's prop, spawning one if none is alive and the
// site's chunk is loaded.
func (m *Manager) Show(site model.Site, tool *model.ItemStack) {
	if !m.cfg.Enabled {
		return
	}
	if st, ok := m.anims[site]; ok {
		if m.world.Alive(st.actor) {
			m.world.SetDisplay(st.actor, m.display(tool))
			st.base = site
			return
		}
		delete(m.anims, site)
	}
	if !m.world.WorldExists(site.World) || !m.world.ChunkLoaded(site.World, site.ChunkX(), site.ChunkZ()) {
		return
	}
	h := m.world.SpawnDisplay(site.World, site.Pos.Offset(0.5, 1.25, 0.5), 0, m.display(tool))
	m.anims[site] = &state{
		actor: h,
		base:  site,
		phase: m.rng.Float64() * 2 * math.Pi,
	}
}

func (m *Manager) Hide(site model.Site) {
	st, ok := m.anims[site]
	if !ok {
		return
	}
	delete(m.anims, site)
	if m.world.Alive(st.actor) {
		m.world.Remove(st.actor)
	}
}

// Swing spawns a one-shot prop at a mined cell. It plays through its poses on
// subsequent ticks and then removes itself.
func (m *Manager) Swing(world string, cell model.Vec3i, tool *model.ItemStack) {
	if tool.Empty() || !m.world.WorldExists(world) {
		return
	}
	at := cell.Offset(0.5, 0.2, 0.5)
	yaw := m.rng.Float64() * 360
	h := m.world.SpawnDisplay(world, at, yaw, m.display(tool))
	m.world.SetArmPose(h, -100, 25)
	m.swings = append(m.swings, swing{actor: h, at: at, yaw: yaw})
}

// Tick advances idle bobbing and swing frames. Props whose actor is gone or
// whose chunk unloaded are forgotten.
func (m *Manager) Tick() {
	for site, st := range m.anims {
		if !m.world.Alive(st.actor) {
			delete(m.anims, site)
			continue
		}
		b := st.base
		if !m.world.WorldExists(b.World) || !m.world.ChunkLoaded(b.World, b.ChunkX(), b.ChunkZ()) {
			m.world.Remove(st.actor)
			delete(m.anims, site)
			continue
		}
		bob := m.cfg.Amplitude * math.Sin(st.phase)
		st.phase += m.cfg.Speed
		st.yaw = math.Mod(st.yaw+m.cfg.RotationStep, 360)
		m.world.Teleport(st.actor, b.Pos.Offset(0.5, 1.1+bob, 0.5), st.yaw)
	}
	m.tickSwings()
}

func (m *Manager) tickSwings() {
	for i := len(m.swings) - 1; i >= 0; i-- {
		s := &m.swings[i]
		if !m.world.Alive(s.actor) {
			m.dropSwing(i)
			continue
		}
		if s.frame >= 1 && s.frame <= len(swingPoses) {
			p := swingPoses[s.frame-1]
			m.world.SetArmPose(s.actor, p.pitch, p.roll)
			if p.dy != 0 {
				s.at.Y += p.dy
				m.world.Teleport(s.actor, s.at, s.yaw)
			}
		}
		if s.frame >= swingFrames {
			m.world.Remove(s.actor)
			m.dropSwing(i)
			continue
		}
		s.frame++
	}
}

func (m *Manager) dropSwing(i int) {
	last := len(m.swings) - 1
	m.swings[i] = m.swings[last]
	m.swings = m.swings[:last]
}

// Clear removes every tracked prop.
func (m *Manager) Clear() {
	for site, st := range m.anims {
		if m.world.Alive(st.actor) {
			m.world.Remove(st.actor)
		}
		delete(m.anims, site)
	}
	for _, s := range m.swings {
		if m.world.Alive(s.actor) {
			m.world.Remove(s.actor)
		}
	}
	m.swings = nil
}

// Count is the number of tracked idle props.
func (m *Manager) Count() int { return len(m.anims) }

func (m *Manager) Swings() int { return len(m.swings) }

// Actor returns the idle prop handle of a site.
func (m *Manager) Actor(site model.Site) (model.ActorHandle, bool) {
	st, ok := m.anims[site]
	if !ok {
		return model.ActorHandle{}, false
	}
	return st.actor, true
}

func (m *Manager) display(tool *model.ItemStack) model.ItemStack {
	if tool.Empty() {
		return model.ItemStack{Item: m.cfg.DefaultProp, Count: 1}
	}
	d := *tool.Clone()
	d.Count = 1
	return d
}
