package protocol

// GEN_STATUS (server -> observer), published after every production cycle.
type StatusFrame struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	Tick            uint64            `json:"tick"`
	Generators      []GeneratorStatus `json:"generators"`
	Animations      int               `json:"animations"`
	Swings          int               `json:"swings"`
	MinedTotal      uint64            `json:"mined_total"`
	ToolBreaks      uint64            `json:"tool_breaks"`
	Invalidated     uint64            `json:"invalidated"`
}

type GeneratorStatus struct {
	World       string  `json:"world"`
	Pos         [3]int  `json:"pos"`
	Progress    float64 `json:"progress"`
	FuelCharges int     `json:"fuel_charges"`
	Tool        string  `json:"tool,omitempty"`
	ToolDamage  int     `json:"tool_damage,omitempty"`
	Animated    bool    `json:"animated"`
}

type ItemRef struct {
	Item       string `json:"item"`
	Count      int    `json:"count,omitempty"`
	Damage     int    `json:"damage,omitempty"`
	Efficiency int    `json:"efficiency,omitempty"`
	Unbreaking int    `json:"unbreaking,omitempty"`
}

// INTERACT (admin -> server): a player right-clicks a block.
type InteractMsg struct {
	Type     string   `json:"type"`
	Player   string   `json:"player"`
	World    string   `json:"world"`
	Pos      [3]int   `json:"pos"`
	Sneaking bool     `json:"sneaking"`
	OffHand  bool     `json:"off_hand,omitempty"`
	Hand     *ItemRef `json:"hand,omitempty"`
}

// BREAK (admin -> server): a player breaks a block.
type BreakMsg struct {
	Type   string `json:"type"`
	Player string `json:"player"`
	World  string `json:"world"`
	Pos    [3]int `json:"pos"`
}

// RESULT (server -> admin)
type ResultMsg struct {
	Type     string         `json:"type"`
	Tick     uint64         `json:"tick"`
	Code     string         `json:"code,omitempty"`
	Result   string         `json:"result"`
	Messages []PlayerNotice `json:"messages,omitempty"`
}

type PlayerNotice struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}
