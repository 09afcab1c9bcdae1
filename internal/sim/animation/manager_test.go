package animation

import (
	"math"
	"testing"

	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/tuning"
	"chunkfall.ai/internal/sim/voxel"
)

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

var testSite = model.Site{World: "w", Pos: model.Vec3i{X: 8, Y: 4, Z: 8}}

func newTestManager(t *testing.T, mut func(a *tuning.Animation)) (*Manager, *voxel.World) {
	t.Helper()
	w := voxel.NewWorld(catalogs.Default())
	w.AddDimension("w", -4, 12, voxel.VoidGen())
	w.LoadChunk("w", 0, 0)
	cfg := tuning.Defaults().Animation
	if mut != nil {
		mut(&cfg)
	}
	return NewManager(cfg, w, &seqRand{}), w
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestShow_ReusesLiveActor(t *testing.T) {
	m, w := newTestManager(t, nil)
	m.Show(testSite, &model.ItemStack{Item: "IRON_PICKAXE", Count: 1})
	first, _ := m.Actor(testSite)
	m.Show(testSite, &model.ItemStack{Item: "DIAMOND_PICKAXE", Count: 1, Damage: 7})
	second, _ := m.Actor(testSite)
	if first != second || w.LiveActors() != 1 {
		t.Fatalf("expected one reused actor, got %d live", w.LiveActors())
	}
	v, ok := w.Actor(second)
	if !ok || v.Display.Item != "DIAMOND_PICKAXE" || v.Display.Count != 1 {
		t.Fatalf("expected refreshed display, got %+v", v.Display)
	}
	if v.Pos != (model.Vec3f{X: 8.5, Y: 5.25, Z: 8.5}) {
		t.Fatalf("unexpected spawn position %+v", v.Pos)
	}
}

func TestShow_DefaultPropAndRespawn(t *testing.T) {
	m, w := newTestManager(t, nil)
	m.Show(testSite, nil)
	h, _ := m.Actor(testSite)
	if v, _ := w.Actor(h); v.Display.Item != "STONE_PICKAXE" {
		t.Fatalf("expected default prop, got %s", v.Display.Item)
	}
	w.Kill(h)
	m.Show(testSite, nil)
	if w.LiveActors() != 1 || m.Count() != 1 {
		t.Fatalf("expected a fresh actor after the old one died, got %d live", w.LiveActors())
	}
}

func TestShow_SkipsUnloadedChunkAndDisabled(t *testing.T) {
	m, w := newTestManager(t, nil)
	m.Show(model.Site{World: "w", Pos: model.Vec3i{X: 40, Y: 4, Z: 8}}, nil)
	m.Show(model.Site{World: "gone", Pos: testSite.Pos}, nil)
	if w.LiveActors() != 0 || m.Count() != 0 {
		t.Fatalf("expected nothing spawned outside loaded chunks")
	}

	off, w2 := newTestManager(t, func(a *tuning.Animation) { a.Enabled = false })
	off.Show(testSite, nil)
	if w2.LiveActors() != 0 {
		t.Fatalf("expected disabled manager to be inert")
	}
}

func TestHide_Idempotent(t *testing.T) {
	m, w := newTestManager(t, nil)
	m.Hide(testSite)
	m.Show(testSite, nil)
	m.Hide(testSite)
	m.Hide(testSite)
	if w.LiveActors() != 0 || m.Count() != 0 {
		t.Fatalf("expected zero actors, got %d", w.LiveActors())
	}
}

func TestTick_BobsAndSpins(t *testing.T) {
	m, w := newTestManager(t, nil)
	m.Show(testSite, nil)
	h, _ := m.Actor(testSite)

	m.Tick()
	v, _ := w.Actor(h)
	if !near(v.Pos.Y, 5.1) || v.Yaw != 4.5 {
		t.Fatalf("expected y=5.1 yaw=4.5 at phase 0, got y=%v yaw=%v", v.Pos.Y, v.Yaw)
	}
	m.Tick()
	v, _ = w.Actor(h)
	if !near(v.Pos.Y, 5.1+0.18*math.Sin(0.12)) || v.Yaw != 9 {
		t.Fatalf("unexpected second frame y=%v yaw=%v", v.Pos.Y, v.Yaw)
	}
	for i := 0; i < 79; i++ {
		m.Tick()
	}
	v, _ = w.Actor(h)
	if !near(v.Yaw, 4.5) {
		t.Fatalf("expected yaw to wrap at 360, got %v", v.Yaw)
	}
}

func TestTick_PrunesDeadAndUnloaded(t *testing.T) {
	m, w := newTestManager(t, nil)
	other := model.Site{World: "w", Pos: model.Vec3i{X: 1, Y: 4, Z: 1}}
	m.Show(testSite, nil)
	m.Show(other, nil)
	h, _ := m.Actor(testSite)
	w.Kill(h)
	m.Tick()
	if m.Count() != 1 {
		t.Fatalf("expected the dead prop dropped, got %d", m.Count())
	}

	w.LoadChunk("w", 5, 5)
	m.Show(model.Site{World: "w", Pos: model.Vec3i{X: 80, Y: 4, Z: 80}}, nil)
	w.UnloadChunk("w", 0, 0)
	m.Tick()
	if m.Count() != 1 {
		t.Fatalf("expected only the prop in the loaded chunk left, got %d", m.Count())
	}
}

func TestSwing_PlaysFramesThenRemoves(t *testing.T) {
	m, w := newTestManager(t, nil)
	m.Swing("w", model.Vec3i{X: 2, Y: 3, Z: 2}, &model.ItemStack{Item: "IRON_PICKAXE", Count: 1})
	if m.Swings() != 1 || w.LiveActors() != 1 {
		t.Fatalf("expected one swing prop")
	}
	h := model.ActorHandle{Index: 0, Gen: 1}
	v, ok := w.Actor(h)
	if !ok || v.ArmPitch != -100 || v.ArmRoll != 25 || !near(v.Pos.Y, 3.2) {
		t.Fatalf("unexpected initial swing pose %+v", v)
	}

	want := []struct{ pitch, roll, y float64 }{
		{-100, 25, 3.2},
		{-40, -5, 3.28},
		{-160, 10, 3.16},
		{-75, 18, 3.16},
	}
	for i, f := range want {
		m.Tick()
		v, ok := w.Actor(h)
		if !ok || v.ArmPitch != f.pitch || v.ArmRoll != f.roll || !near(v.Pos.Y, f.y) {
			t.Fatalf("frame %d: expected %+v, got %+v ok=%v", i, f, v, ok)
		}
	}
	m.Tick()
	if w.Alive(h) || m.Swings() != 0 {
		t.Fatalf("expected the swing prop removed after the last frame")
	}
}

func TestClear_RemovesEverything(t *testing.T) {
	m, w := newTestManager(t, nil)
	m.Show(testSite, nil)
	m.Swing("w", model.Vec3i{X: 2, Y: 3, Z: 2}, &model.ItemStack{Item: "IRON_PICKAXE", Count: 1})
	m.Clear()
	if w.LiveActors() != 0 || m.Count() != 0 || m.Swings() != 0 {
		t.Fatalf("expected no props left, got %d live", w.LiveActors())
	}
}
