package catalogs

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
)

//go:embed defaults/*.json
var defaultFS embed.FS

type Catalogs struct {
	Blocks BlockCatalog
	Items  ItemCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID    string `json:"id"`
	Solid bool   `json:"solid"`
	// ContainerSlots > 0 marks the block as an inventory holder.
	ContainerSlots int `json:"container_slots,omitempty"`
}

type ItemCatalog struct {
	Defs       map[string]ItemDef
	DefsDigest string
}

type ItemDef struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"` // "BLOCK","TOOL","MATERIAL"
	Tier          string `json:"tier,omitempty"`
	MaxDurability int    `json:"max_durability,omitempty"`
	MaxStack      int    `json:"max_stack,omitempty"`
	FuelCharges   int    `json:"fuel_charges,omitempty"`
}

// Tier is the pickaxe class, ordered by base production speed.
type Tier int

const (
	TierNone Tier = iota
	TierWood
	TierStone
	TierCopper
	TierIron
	TierGold
	TierDiamond
	TierNetherite
)

var tierNames = [...]string{"", "wood", "stone", "copper", "iron", "gold", "diamond", "netherite"}

func ParseTier(s string) (Tier, bool) {
	for i, n := range tierNames {
		if i > 0 && n == s {
			return Tier(i), true
		}
	}
	return TierNone, false
}

func (t Tier) String() string {
	if t <= TierNone || int(t) >= len(tierNames) {
		return "none"
	}
	return tierNames[t]
}

// ToolTier returns the pickaxe tier of item, or TierNone when it is not one.
func (c *Catalogs) ToolTier(item string) Tier {
	d, ok := c.Items.Defs[item]
	if !ok || d.Kind != "TOOL" {
		return TierNone
	}
	t, _ := ParseTier(d.Tier)
	return t
}

func (c *Catalogs) MaxDurability(item string) int { return c.Items.Defs[item].MaxDurability }

// MaxStack defaults to 64 for unknown items.
func (c *Catalogs) MaxStack(item string) int {
	if n := c.Items.Defs[item].MaxStack; n > 0 {
		return n
	}
	return 64
}

func (c *Catalogs) IsFuel(item string) bool { return c.Items.Defs[item].FuelCharges > 0 }

func (c *Catalogs) FuelCharges(item string) int { return c.Items.Defs[item].FuelCharges }

func (c *Catalogs) ContainerSlots(block string) int { return c.Blocks.Defs[block].ContainerSlots }

// Load reads blocks.json and items.json from configDir.
func Load(configDir string) (*Catalogs, error) {
	return loadFS(os.DirFS(configDir), ".")
}

// Default returns the catalogs compiled into the binary.
func Default() *Catalogs {
	c, err := loadFS(defaultFS, "defaults")
	if err != nil {
		panic(fmt.Sprintf("catalogs: embedded defaults: %v", err))
	}
	return c
}

// LoadOrDefault falls back to Default when configDir has no catalog files.
func LoadOrDefault(configDir string) (*Catalogs, error) {
	c, err := Load(configDir)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

func loadFS(fsys fs.FS, dir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(fsys, path.Join(dir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	if err := loadItems(fsys, path.Join(dir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(fsys fs.FS, name string, out *BlockCatalog) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure AIR exists and is palette id 0.
	if _, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadItems(fsys fs.FS, name string, out *ItemCatalog) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		if d.Tier != "" {
			if _, ok := ParseTier(d.Tier); !ok {
				return fmt.Errorf("items.json: %s: unknown tier %q", d.ID, d.Tier)
			}
		}
		if d.FuelCharges < 0 {
			return fmt.Errorf("items.json: %s: negative fuel_charges", d.ID)
		}
		out.Defs[d.ID] = d
	}
	return nil
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
