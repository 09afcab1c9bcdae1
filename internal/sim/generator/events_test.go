package generator

import (
	"errors"
	"testing"
)

type failSink struct{ err error }

func (s failSink) WriteEvent(Event) error { return s.err }

func TestMultiSink_DeliversToAllAndReturnsFirstError(t *testing.T) {
	a, b := &sliceSink{}, &sliceSink{}
	boom := errors.New("boom")
	sink := MultiSink{a, failSink{err: boom}, nil, failSink{err: errors.New("later")}, b}

	err := sink.WriteEvent(Event{Kind: EventMined, Count: 2})
	if !errors.Is(err, boom) {
		t.Fatalf("expected first error, got %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected both sinks to receive the event, got %d and %d", len(a.events), len(b.events))
	}
	if b.events[0].Count != 2 {
		t.Fatalf("expected count 2, got %d", b.events[0].Count)
	}
}
