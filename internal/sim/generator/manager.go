package generator

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
	"chunkfall.ai/internal/sim/tuning"
)

// Animator keeps the floating tool props in sync with generator activity.
type Animator interface {
	Show(site model.Site, tool *model.ItemStack)
	Hide(site model.Site)
	Swing(world string, cell model.Vec3i, tool *model.ItemStack)
}

type Options struct {
	Tuning   tuning.Generator
	Catalogs *catalogs.Catalogs
	World    ports.World
	Animator Animator
	Notifier ports.Notifier
	Random   ports.Random
	Logger   *log.Logger
}

// Manager owns the generator registry and runs the production tick. It is
// not safe for concurrent use.
type Manager struct {
	cfg      tuning.Generator
	cats     *catalogs.Catalogs
	world    ports.World
	anim     Animator
	notifier ports.Notifier
	rng      ports.Random
	log      *log.Logger

	reg   *Registry
	sink  EventSink
	stats Stats
	tick  uint64
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		cfg:      opts.Tuning,
		cats:     opts.Catalogs,
		world:    opts.World,
		anim:     opts.Animator,
		notifier: opts.Notifier,
		rng:      opts.Random,
		log:      opts.Logger,
		reg:      NewRegistry(),
	}
	if m.cats == nil {
		m.cats = catalogs.Default()
	}
	if m.anim == nil {
		m.anim = nopAnimator{}
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if m.log == nil {
		m.log = log.New(io.Discard)
	}
	if m.cfg.VerticalSearchRange < 1 {
		m.cfg.VerticalSearchRange = 1
	}
	return m
}

func (m *Manager) SetEventSink(s EventSink) { m.sink = s }

func (m *Manager) Enabled() bool { return m.cfg.Enabled }

// Register starts a generator at site, discarding any previous economy state.
func (m *Manager) Register(site model.Site) {
	m.reg.Put(site)
	m.emit(Event{Kind: EventRegister}, site)
	m.debug("registered generator", site)
}

// Unregister removes site and its animation. Unknown sites are a no-op
// apart from the animation teardown.
func (m *Manager) Unregister(site model.Site) {
	existed := m.reg.Delete(site)
	m.anim.Hide(site)
	if existed {
		m.emit(Event{Kind: EventUnregister}, site)
	}
	m.debug("unregistered generator", site)
}

func (m *Manager) IsRegistered(site model.Site) bool { return m.reg.Has(site) }

// State returns a copy of a site's economy.
func (m *Manager) State(site model.Site) (State, bool) { return m.reg.Get(site) }

func (m *Manager) Entries() []Entry { return m.reg.Snapshot() }

func (m *Manager) Stats() Stats {
	s := m.stats
	s.Registered = m.reg.Len()
	return s
}

// Clear forgets every generator and hides their animations.
func (m *Manager) Clear() {
	for _, e := range m.reg.Snapshot() {
		m.anim.Hide(e.Site)
	}
	m.reg.Clear()
}

// Tick runs one production cycle over every registered site. Failures are
// local to a site: it is paused or dropped and the pass continues.
func (m *Manager) Tick(tick uint64) {
	m.tick = tick
	m.stats.LastTickMined = 0
	if !m.cfg.Enabled || m.reg.Len() == 0 {
		return
	}
	m.reg.Each(m.tickSite)
}

func (m *Manager) tickSite(site model.Site, st *State) bool {
	if !m.world.WorldExists(site.World) {
		m.invalidate(site, "world_unloaded")
		return false
	}
	if !m.world.ChunkLoaded(site.World, site.ChunkX(), site.ChunkZ()) {
		// Frozen while streamed out; state is kept as is.
		m.anim.Hide(site)
		return true
	}
	if m.world.BlockAt(site.World, site.Pos) != m.cfg.ContainerBlock {
		m.invalidate(site, "container_missing")
		return false
	}
	inv, ok := m.world.Container(site.World, site.Pos)
	if !ok {
		m.invalidate(site, "no_inventory")
		return false
	}

	tool := inv.Item(toolSlot)
	if !m.isTool(tool) {
		m.anim.Hide(site)
		return true
	}
	rate := m.toolRate(tool)
	if rate <= 0 {
		m.anim.Hide(site)
		return true
	}
	if !m.hasFuel(inv, st) {
		m.anim.Hide(site)
		return true
	}

	m.anim.Show(site, tool)
	toolName := tool.Item

	progress := st.Progress + rate
	mined := 0
	storageFull := false
	for progress >= 1.0 {
		res := m.mineStep(inv, site, st)
		if !res.Mined {
			storageFull = res.StorageFull
			break
		}
		mined++
		progress -= 1.0
		if res.ToolBroke {
			m.anim.Hide(site)
			m.stats.ToolBreaks++
			m.emit(Event{Kind: EventToolBroke, Tool: toolName}, site)
			m.debug("tool broke", site)
			break
		}
	}

	if mined > 0 {
		m.workingEffects(site)
		m.stats.MinedTotal += uint64(mined)
		m.stats.LastTickMined += mined
		m.emit(Event{Kind: EventMined, Count: mined, Tool: toolName}, site)
	}

	if storageFull {
		st.Progress = progress
	} else {
		st.Progress = math.Min(math.Max(0, progress), m.cfg.ProgressCap)
	}
	return true
}

func (m *Manager) invalidate(site model.Site, reason string) {
	m.anim.Hide(site)
	m.stats.Invalidated++
	m.emit(Event{Kind: EventInvalidate, Reason: reason}, site)
	m.debug("dropped generator", site, "reason", reason)
}

func (m *Manager) emit(e Event, site model.Site) {
	if m.sink == nil {
		return
	}
	e.Tick = m.tick
	e.World = site.World
	e.X, e.Y, e.Z = site.Pos.X, site.Pos.Y, site.Pos.Z
	if err := m.sink.WriteEvent(e); err != nil {
		m.log.Warn("generator event sink", "kind", e.Kind, "err", err)
	}
}

func (m *Manager) debug(msg string, site model.Site, kv ...any) {
	if !m.cfg.Debug {
		return
	}
	m.log.Debug(msg, append([]any{"site", site.String()}, kv...)...)
}

type nopAnimator struct{}

func (nopAnimator) Show(model.Site, *model.ItemStack)           {}
func (nopAnimator) Hide(model.Site)                             {}
func (nopAnimator) Swing(string, model.Vec3i, *model.ItemStack) {}
