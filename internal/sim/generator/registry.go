package generator

import (
	"sort"

	"chunkfall.ai/internal/sim/kernel/model"
)

// State is the mutable economy of one generator site.
type State struct {
	// Progress accumulates production; each full unit is one mining attempt.
	Progress float64
	// FuelCharges are uses left from the last burned fuel item.
	FuelCharges int
}

func (s *State) setFuelCharges(n int) {
	if n < 0 {
		n = 0
	}
	s.FuelCharges = n
}

type record struct {
	site  model.Site
	state State
}

// Registry is an arena of generator records indexed by site. Records move on
// removal, so *State pointers handed to Each callbacks are only valid for the
// duration of the callback.
type Registry struct {
	records []record
	index   map[model.Site]int
}

func NewRegistry() *Registry {
	return &Registry{index: map[model.Site]int{}}
}

// Put inserts a fresh state for site, resetting any previous one.
func (r *Registry) Put(site model.Site) {
	if i, ok := r.index[site]; ok {
		r.records[i].state = State{}
		return
	}
	r.index[site] = len(r.records)
	r.records = append(r.records, record{site: site})
}

func (r *Registry) Delete(site model.Site) bool {
	i, ok := r.index[site]
	if !ok {
		return false
	}
	r.deleteAt(i)
	return true
}

func (r *Registry) deleteAt(i int) {
	last := len(r.records) - 1
	delete(r.index, r.records[i].site)
	if i != last {
		r.records[i] = r.records[last]
		r.index[r.records[i].site] = i
	}
	r.records[last] = record{}
	r.records = r.records[:last]
}

func (r *Registry) Has(site model.Site) bool {
	_, ok := r.index[site]
	return ok
}

// Get returns a copy of the site's state.
func (r *Registry) Get(site model.Site) (State, bool) {
	i, ok := r.index[site]
	if !ok {
		return State{}, false
	}
	return r.records[i].state, true
}

func (r *Registry) Len() int { return len(r.records) }

// Each visits every record, newest slot first. Returning false removes the
// record; walking backwards means the swapped-in record was already visited.
func (r *Registry) Each(fn func(site model.Site, st *State) (keep bool)) {
	for i := len(r.records) - 1; i >= 0; i-- {
		if !fn(r.records[i].site, &r.records[i].state) {
			r.deleteAt(i)
		}
	}
}

type Entry struct {
	Site  model.Site
	State State
}

// Snapshot lists all records sorted by world then position.
func (r *Registry) Snapshot() []Entry {
	out := make([]Entry, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, Entry{Site: rec.site, State: rec.state})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Site, out[j].Site
		if a.World != b.World {
			return a.World < b.World
		}
		if a.Pos.X != b.Pos.X {
			return a.Pos.X < b.Pos.X
		}
		if a.Pos.Y != b.Pos.Y {
			return a.Pos.Y < b.Pos.Y
		}
		return a.Pos.Z < b.Pos.Z
	})
	return out
}

func (r *Registry) Clear() {
	r.records = r.records[:0]
	r.index = map[model.Site]int{}
}
