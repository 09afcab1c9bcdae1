package generator

import (
	"testing"

	"chunkfall.ai/internal/sim/kernel/model"
)

func site(x, y, z int) model.Site { return model.Site{World: "w", Pos: model.Vec3i{X: x, Y: y, Z: z}} }

func TestRegistry_PutResetsState(t *testing.T) {
	r := NewRegistry()
	s := site(1, 2, 3)
	r.Put(s)
	r.Each(func(_ model.Site, st *State) bool {
		st.Progress = 4
		st.FuelCharges = 5
		return true
	})
	r.Put(s)
	st, ok := r.Get(s)
	if !ok || st.Progress != 0 || st.FuelCharges != 0 {
		t.Fatalf("expected fresh state after re-register, got %+v ok=%v", st, ok)
	}
	if r.Len() != 1 {
		t.Fatalf("expected one record, got %d", r.Len())
	}
}

func TestRegistry_EachRemovalVisitsEveryRecordOnce(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 6; i++ {
		r.Put(site(i, 0, 0))
	}
	seen := map[model.Site]int{}
	r.Each(func(s model.Site, _ *State) bool {
		seen[s]++
		return s.Pos.X%2 == 0
	})
	if len(seen) != 6 {
		t.Fatalf("expected 6 visited sites, got %d", len(seen))
	}
	for s, n := range seen {
		if n != 1 {
			t.Fatalf("site %v visited %d times", s, n)
		}
	}
	if r.Len() != 3 {
		t.Fatalf("expected 3 survivors, got %d", r.Len())
	}
	for i := 0; i < 6; i++ {
		if r.Has(site(i, 0, 0)) != (i%2 == 0) {
			t.Fatalf("site %d membership wrong", i)
		}
	}
}

func TestRegistry_DeleteKeepsIndexConsistent(t *testing.T) {
	r := NewRegistry()
	a, b, c := site(0, 0, 0), site(1, 0, 0), site(2, 0, 0)
	r.Put(a)
	r.Put(b)
	r.Put(c)
	if !r.Delete(a) {
		t.Fatalf("expected delete to succeed")
	}
	if r.Delete(a) {
		t.Fatalf("second delete should report missing")
	}
	r.Each(func(s model.Site, st *State) bool {
		if s == c {
			st.Progress = 7
		}
		return true
	})
	st, _ := r.Get(c)
	if st.Progress != 7 {
		t.Fatalf("index points at the wrong record after swap-remove: %+v", st)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Site != b || snap[1].Site != c {
		t.Fatalf("unexpected snapshot order: %+v", snap)
	}
}

func TestState_FuelChargesNeverNegative(t *testing.T) {
	var st State
	st.setFuelCharges(-3)
	if st.FuelCharges != 0 {
		t.Fatalf("expected 0, got %d", st.FuelCharges)
	}
}
