package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	raw := []byte(`
generator:
  ticks_per_cycle: 0
  vertical_search_range: 3
  target_worlds: [world_nether]
  speeds:
    iron: 2.0
animation:
  enabled: false
`)
	if err := os.WriteFile(p, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tune, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tune.TickRateHz != 20 {
		t.Fatalf("expected default tick rate, got %d", tune.TickRateHz)
	}
	if tune.Generator.TicksPerCycle != 1 {
		t.Fatalf("expected ticks_per_cycle clamped to 1, got %d", tune.Generator.TicksPerCycle)
	}
	if tune.Generator.VerticalSearchRange != 3 {
		t.Fatalf("expected range 3, got %d", tune.Generator.VerticalSearchRange)
	}
	if tune.Generator.Speeds.Iron != 2.0 || tune.Generator.Speeds.Stone != 0.5 {
		t.Fatalf("speeds mismatch: %+v", tune.Generator.Speeds)
	}
	if tune.Animation.Enabled {
		t.Fatalf("expected animation disabled")
	}
	if tune.Animation.Amplitude != 0.18 {
		t.Fatalf("expected default amplitude, got %v", tune.Animation.Amplitude)
	}
	if !tune.Generator.IsTargetWorld("world_nether") || tune.Generator.IsTargetWorld("world") {
		t.Fatalf("target world filter mismatch: %v", tune.Generator.TargetWorlds)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("generator: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNormalize_FixesDegenerateValues(t *testing.T) {
	var tune Tuning
	tune.Normalize()
	if tune.TickRateHz != 20 || tune.Generator.ProgressCap != 10 || tune.Generator.TargetBlock != "STONE" {
		t.Fatalf("unexpected normalized tuning: %+v", tune)
	}
	if tune.World.MaxY <= tune.World.MinY {
		t.Fatalf("expected sane height bounds, got %d..%d", tune.World.MinY, tune.World.MaxY)
	}
	if !tune.Generator.IsTargetWorld("anything") {
		t.Fatalf("empty target list should accept every world")
	}
}
