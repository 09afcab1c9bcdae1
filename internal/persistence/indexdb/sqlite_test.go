package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/generator"
	"chunkfall.ai/internal/sim/tuning"
)

func TestSQLiteIndex_EventsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "events.sqlite")
	s, err := OpenSQLite(path)
	require.NoError(t, err)

	events := []generator.Event{
		{Tick: 20, Kind: generator.EventRegister, World: "world", X: 1, Y: 2, Z: 3},
		{Tick: 40, Kind: generator.EventMined, World: "world", X: 1, Y: 2, Z: 3, Count: 2, Tool: "IRON_PICKAXE"},
		{Tick: 60, Kind: generator.EventMined, World: "world", X: 1, Y: 2, Z: 3, Count: 1, Tool: "IRON_PICKAXE"},
		{Tick: 60, Kind: generator.EventMined, World: "world", X: 9, Y: 2, Z: 3, Count: 1, Tool: "STONE_PICKAXE"},
		{Tick: 80, Kind: generator.EventInvalidate, World: "world", X: 9, Y: 2, Z: 3, Reason: "container_missing"},
	}
	for _, e := range events {
		require.NoError(t, s.WriteEvent(e))
	}
	require.NoError(t, s.UpsertConfig(catalogs.Default(), tuning.Defaults()))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, uint64(len(events)), s.Stats().WrittenTotal)

	// Reopening applies no new migrations and keeps the rows.
	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	kinds, err := s.CountByKind(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"REGISTER": 1, "MINED": 3, "INVALIDATE": 1}, kinds)

	totals, err := s.MinedBySite(ctx, 10)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, SiteTotal{World: "world", X: 1, Y: 2, Z: 3, Mined: 3}, totals[0])
	assert.Equal(t, 1, totals[1].Mined)

	digest, ok, err := s.ConfigDigest(ctx, "tuning")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, digest, 64)

	_, ok, err = s.ConfigDigest(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteIndex_DropsWhenFull(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan generator.Event, 1)}
	require.NoError(t, s.WriteEvent(generator.Event{Tick: 1}))
	require.NoError(t, s.WriteEvent(generator.Event{Tick: 2}))

	st := s.Stats()
	assert.Equal(t, uint64(1), st.DropTotal)
	assert.Equal(t, 1, st.QueueDepth)
	assert.Equal(t, 1, st.QueueCapacity)
}

func TestSQLiteIndex_ClosedIgnoresWrites(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "events.sqlite"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, s.WriteEvent(generator.Event{Tick: 1}))
	assert.Equal(t, uint64(0), s.Stats().DropTotal)
}
