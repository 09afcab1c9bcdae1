package model

// ItemStack is one inventory slot's content. A nil *ItemStack is an empty slot.
type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`

	// Damage counts durability already lost; tools break at their catalog max.
	Damage     int `json:"damage,omitempty"`
	Efficiency int `json:"efficiency,omitempty"`
	Unbreaking int `json:"unbreaking,omitempty"`
}

func (s *ItemStack) Empty() bool { return s == nil || s.Item == "" || s.Count <= 0 }

func (s *ItemStack) Clone() *ItemStack {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// ActorHandle identifies a spawned visual actor. Index slots are reused, so a
// handle is only meaningful while its generation is still the live one.
type ActorHandle struct {
	Index uint32
	Gen   uint32
}

func (h ActorHandle) IsZero() bool { return h == ActorHandle{} }
