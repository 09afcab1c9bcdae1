package generator

import (
	"testing"

	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/tuning"
	"chunkfall.ai/internal/sim/voxel"
)

// seqRand replays a fixed sequence of draws.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

type recAnimator struct {
	shows  map[model.Site]int
	hides  map[model.Site]int
	swings int
}

func newRecAnimator() *recAnimator {
	return &recAnimator{shows: map[model.Site]int{}, hides: map[model.Site]int{}}
}

func (a *recAnimator) Show(s model.Site, _ *model.ItemStack)       { a.shows[s]++ }
func (a *recAnimator) Hide(s model.Site)                           { a.hides[s]++ }
func (a *recAnimator) Swing(string, model.Vec3i, *model.ItemStack) { a.swings++ }

type sliceSink struct{ events []Event }

func (s *sliceSink) WriteEvent(e Event) error {
	s.events = append(s.events, e)
	return nil
}

func (s *sliceSink) kinds() []string {
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	w    *voxel.World
	m    *Manager
	anim *recAnimator
	sink *sliceSink
	rng  *seqRand
	site model.Site
	inv  *voxel.Container
}

// newFixture builds a void world with one loaded chunk and a registered
// barrel at (8,4,8).
func newFixture(t *testing.T, mut func(g *tuning.Generator)) *fixture {
	t.Helper()
	cats := catalogs.Default()
	w := voxel.NewWorld(cats)
	w.AddDimension("w", -4, 12, voxel.VoidGen())
	w.LoadChunk("w", 0, 0)

	cfg := tuning.Defaults().Generator
	if mut != nil {
		mut(&cfg)
	}
	f := &fixture{
		w:    w,
		anim: newRecAnimator(),
		sink: &sliceSink{},
		rng:  &seqRand{},
		site: site(8, 4, 8),
	}
	f.m = NewManager(Options{
		Tuning:   cfg,
		Catalogs: cats,
		World:    w,
		Animator: f.anim,
		Notifier: w,
		Random:   f.rng,
	})
	f.m.SetEventSink(f.sink)

	w.SetBlock("w", f.site.Pos, "BARREL")
	f.inv = w.ContainerAt("w", f.site.Pos)
	if f.inv == nil {
		t.Fatalf("expected barrel container")
	}
	f.m.Register(f.site)
	return f
}

func (f *fixture) tool(item string, mut func(s *model.ItemStack)) {
	s := &model.ItemStack{Item: item, Count: 1}
	if mut != nil {
		mut(s)
	}
	f.inv.SetItem(toolSlot, s)
}

// stones fills n cells of layer y with the target block, x-major from x=0.
func (f *fixture) stones(y, n int) {
	for i := 0; i < n; i++ {
		f.w.SetBlock("w", model.Vec3i{X: i / 16, Y: y, Z: i % 16}, "STONE")
	}
}

func (f *fixture) countBlocks(block string) int {
	n := 0
	minY, maxY := f.w.HeightBounds("w")
	for y := minY; y < maxY; y++ {
		for x := 0; x < 16; x++ {
			for z := 0; z < 16; z++ {
				if f.w.BlockAt("w", model.Vec3i{X: x, Y: y, Z: z}) == block {
					n++
				}
			}
		}
	}
	return n
}

func (f *fixture) state(t *testing.T) State {
	t.Helper()
	st, ok := f.m.State(f.site)
	if !ok {
		t.Fatalf("expected %s to be registered", f.site)
	}
	return st
}
