package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"chunkfall.ai/internal/protocol"
)

func compile(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// roundTrip turns a Go value into the generic form the validator expects.
func roundTrip(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateFrames(t *testing.T) {
	statusSchema := compile(t, "status.schema.json")
	interactSchema := compile(t, "interact.schema.json")
	resultSchema := compile(t, "result.schema.json")

	status := protocol.StatusFrame{
		Type:            protocol.TypeGenStatus,
		ProtocolVersion: protocol.Version,
		Tick:            40,
		Generators: []protocol.GeneratorStatus{{
			World:       "world",
			Pos:         [3]int{8, 20, -3},
			Progress:    0.75,
			FuelCharges: 7,
			Tool:        "IRON_PICKAXE",
			ToolDamage:  3,
			Animated:    true,
		}},
		Animations: 1,
		MinedTotal: 12,
	}
	if err := statusSchema.Validate(roundTrip(t, status)); err != nil {
		t.Fatalf("validate status: %v", err)
	}

	empty := protocol.StatusFrame{Type: protocol.TypeGenStatus, ProtocolVersion: protocol.Version, Generators: []protocol.GeneratorStatus{}}
	if err := statusSchema.Validate(roundTrip(t, empty)); err != nil {
		t.Fatalf("validate empty status: %v", err)
	}

	interact := protocol.InteractMsg{
		Type:     protocol.TypeInteract,
		Player:   "alex",
		World:    "world",
		Pos:      [3]int{1, 2, 3},
		Sneaking: true,
		Hand:     &protocol.ItemRef{Item: "DIAMOND_PICKAXE", Count: 1, Efficiency: 3},
	}
	if err := interactSchema.Validate(roundTrip(t, interact)); err != nil {
		t.Fatalf("validate interact: %v", err)
	}

	result := protocol.ResultMsg{
		Type:     protocol.TypeResult,
		Tick:     3,
		Result:   "created",
		Messages: []protocol.PlayerNotice{{Level: "success", Text: "ok"}},
	}
	if err := resultSchema.Validate(roundTrip(t, result)); err != nil {
		t.Fatalf("validate result: %v", err)
	}
}

func TestSchemas_RejectBadStatus(t *testing.T) {
	s := compile(t, "status.schema.json")
	var bad any
	_ = json.Unmarshal([]byte(`{
	  "type":"GEN_STATUS",
	  "protocol_version":"1.0",
	  "tick":1,
	  "generators":[{"world":"w","pos":[1,2],"progress":0,"fuel_charges":-1,"animated":false}],
	  "animations":0,
	  "mined_total":0
	}`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatalf("expected short pos and negative charges rejected")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := protocol.DecodeBase([]byte(`{"type":"BREAK","protocol_version":"1.0","player":"p"}`))
	if err != nil || m.Type != protocol.TypeBreak || m.ProtocolVersion != "1.0" {
		t.Fatalf("unexpected base %+v err=%v", m, err)
	}
}
