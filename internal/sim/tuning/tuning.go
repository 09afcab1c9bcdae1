package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	Generator Generator `yaml:"generator"`
	Animation Animation `yaml:"animation"`
	World     World     `yaml:"world"`
}

type Generator struct {
	Enabled bool `yaml:"enabled"`
	Debug   bool `yaml:"debug"`

	// TargetWorlds limits where generators may be created. Empty means every world.
	TargetWorlds []string `yaml:"target_worlds"`

	ContainerBlock string `yaml:"container_block"`
	TargetBlock    string `yaml:"target_block"`
	OutputItem     string `yaml:"output_item"`

	TicksPerCycle       int     `yaml:"ticks_per_cycle"`
	ProgressCap         float64 `yaml:"progress_cap"`
	VerticalSearchRange int     `yaml:"vertical_search_range"`
	EfficiencyPerLevel  float64 `yaml:"efficiency_per_level"`

	Speeds TierSpeeds `yaml:"speeds"`

	Particles     bool `yaml:"particles"`
	SoundOnMine   bool `yaml:"sound_on_mine"`
	SoundOnBreak  bool `yaml:"sound_on_break"`
	SoundOnCreate bool `yaml:"sound_on_create"`
}

// TierSpeeds is progress per production cycle for each tool tier. Zero disables a tier.
type TierSpeeds struct {
	Wooden    float64 `yaml:"wooden"`
	Stone     float64 `yaml:"stone"`
	Copper    float64 `yaml:"copper"`
	Iron      float64 `yaml:"iron"`
	Gold      float64 `yaml:"gold"`
	Diamond   float64 `yaml:"diamond"`
	Netherite float64 `yaml:"netherite"`
}

type Animation struct {
	Enabled      bool    `yaml:"enabled"`
	UpdateTicks  int     `yaml:"update_ticks"`
	Amplitude    float64 `yaml:"amplitude"`
	Speed        float64 `yaml:"speed"`
	RotationStep float64 `yaml:"rotation_step"`
	DefaultProp  string  `yaml:"default_prop"`
}

type World struct {
	ID   string `yaml:"id"`
	Seed int64  `yaml:"seed"`
	MinY int    `yaml:"min_y"`
	MaxY int    `yaml:"max_y"`
	// LoadRadius is the chunk radius around the origin kept loaded at startup.
	LoadRadius int `yaml:"load_radius"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz: 20,
		Generator: Generator{
			Enabled:             true,
			ContainerBlock:      "BARREL",
			TargetBlock:         "STONE",
			OutputItem:          "COBBLESTONE",
			TicksPerCycle:       20,
			ProgressCap:         10,
			VerticalSearchRange: 8,
			EfficiencyPerLevel:  0.2,
			Speeds: TierSpeeds{
				Wooden:    0.25,
				Stone:     0.5,
				Copper:    0.6,
				Iron:      0.75,
				Gold:      1.0,
				Diamond:   1.25,
				Netherite: 1.5,
			},
			Particles:     true,
			SoundOnMine:   true,
			SoundOnBreak:  true,
			SoundOnCreate: true,
		},
		Animation: Animation{
			Enabled:      true,
			UpdateTicks:  1,
			Amplitude:    0.18,
			Speed:        0.12,
			RotationStep: 4.5,
			DefaultProp:  "STONE_PICKAXE",
		},
		World: World{
			ID:         "world",
			Seed:       1337,
			MinY:       -16,
			MaxY:       48,
			LoadRadius: 2,
		},
	}
}

// Normalize clamps periods and ranges to their smallest usable values and
// fills empty identifiers from Defaults.
func (t *Tuning) Normalize() {
	d := Defaults()
	if t.TickRateHz <= 0 {
		t.TickRateHz = d.TickRateHz
	}
	g := &t.Generator
	if g.TicksPerCycle < 1 {
		g.TicksPerCycle = 1
	}
	if g.VerticalSearchRange < 1 {
		g.VerticalSearchRange = 1
	}
	if g.ProgressCap <= 0 {
		g.ProgressCap = d.Generator.ProgressCap
	}
	if g.ContainerBlock == "" {
		g.ContainerBlock = d.Generator.ContainerBlock
	}
	if g.TargetBlock == "" {
		g.TargetBlock = d.Generator.TargetBlock
	}
	if g.OutputItem == "" {
		g.OutputItem = d.Generator.OutputItem
	}
	a := &t.Animation
	if a.UpdateTicks < 1 {
		a.UpdateTicks = 1
	}
	if a.DefaultProp == "" {
		a.DefaultProp = d.Animation.DefaultProp
	}
	if t.World.ID == "" {
		t.World.ID = d.World.ID
	}
	if t.World.MaxY <= t.World.MinY {
		t.World.MinY, t.World.MaxY = d.World.MinY, d.World.MaxY
	}
}

// IsTargetWorld reports whether generators may be created in world.
func (g Generator) IsTargetWorld(world string) bool {
	if len(g.TargetWorlds) == 0 {
		return true
	}
	for _, w := range g.TargetWorlds {
		if w == world {
			return true
		}
	}
	return false
}

// Load reads a tuning file on top of Defaults, so omitted keys keep their default.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	return t, nil
}
