package generator

const (
	EventRegister   = "REGISTER"
	EventUnregister = "UNREGISTER"
	EventInvalidate = "INVALIDATE"
	EventMined      = "MINED"
	EventToolBroke  = "TOOL_BROKE"
)

// Event is one generator lifecycle or production record for the event log.
type Event struct {
	Tick   uint64 `json:"tick"`
	Kind   string `json:"kind"`
	World  string `json:"world"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Z      int    `json:"z"`
	Count  int    `json:"count,omitempty"`
	Tool   string `json:"tool,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type EventSink interface {
	WriteEvent(e Event) error
}

// Stats are cumulative counters since the manager was created.
type Stats struct {
	Registered    int    `json:"registered"`
	MinedTotal    uint64 `json:"mined_total"`
	ToolBreaks    uint64 `json:"tool_breaks"`
	Invalidated   uint64 `json:"invalidated"`
	LastTickMined int    `json:"last_tick_mined"`
}

// MultiSink fans every event out to each sink. The first error is returned
// after all sinks have seen the event.
type MultiSink []EventSink

func (s MultiSink) WriteEvent(e Event) error {
	var first error
	for _, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.WriteEvent(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
