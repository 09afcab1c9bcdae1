// Package voxel is an in-memory streaming voxel world. It implements the
// engine's host capabilities (ports.World) for the server binary and tests.
// It is not safe for concurrent use; all calls come from the engine loop.
package voxel

import (
	"sort"

	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
	"chunkfall.ai/internal/sim/logic/mathx"
)

var _ ports.World = (*World)(nil)

type Dimension struct {
	ID   string
	MinY int
	MaxY int // exclusive
	Gen  TerrainGen

	chunks     map[ChunkKey]*Chunk
	loaded     map[ChunkKey]bool
	containers map[model.Vec3i]*Container
}

type World struct {
	cats *catalogs.Catalogs

	dims    map[string]*Dimension
	actors  actorTable
	effects EffectLog
	players map[string]*Player
	inbox   []Message
}

func NewWorld(cats *catalogs.Catalogs) *World {
	return &World{
		cats:    cats,
		dims:    map[string]*Dimension{},
		players: map[string]*Player{},
	}
}

// AddDimension creates (or replaces) a world with the given build height.
func (w *World) AddDimension(id string, minY, maxY int, gen TerrainGen) *Dimension {
	d := &Dimension{
		ID:         id,
		MinY:       minY,
		MaxY:       maxY,
		Gen:        gen,
		chunks:     map[ChunkKey]*Chunk{},
		loaded:     map[ChunkKey]bool{},
		containers: map[model.Vec3i]*Container{},
	}
	w.dims[id] = d
	return d
}

// RemoveDimension unloads a whole world. Its actors are despawned.
func (w *World) RemoveDimension(id string) {
	if _, ok := w.dims[id]; !ok {
		return
	}
	delete(w.dims, id)
	w.actors.removeWhere(func(a *actor) bool { return a.world == id })
}

func (w *World) WorldExists(world string) bool { return w.dims[world] != nil }

func (w *World) ChunkLoaded(world string, cx, cz int) bool {
	d := w.dims[world]
	return d != nil && d.loaded[ChunkKey{CX: cx, CZ: cz}]
}

func (w *World) LoadChunk(world string, cx, cz int) {
	d := w.dims[world]
	if d == nil {
		return
	}
	w.chunk(d, cx, cz)
	d.loaded[ChunkKey{CX: cx, CZ: cz}] = true
}

// UnloadChunk keeps block data but despawns every actor standing in the chunk.
func (w *World) UnloadChunk(world string, cx, cz int) {
	d := w.dims[world]
	if d == nil {
		return
	}
	delete(d.loaded, ChunkKey{CX: cx, CZ: cz})
	w.actors.removeWhere(func(a *actor) bool {
		if a.world != world {
			return false
		}
		c := a.pos.Cell()
		return c.X>>4 == cx && c.Z>>4 == cz
	})
}

// LoadedChunks lists loaded chunk keys of a world in a stable order.
func (w *World) LoadedChunks(world string) []ChunkKey {
	d := w.dims[world]
	if d == nil {
		return nil
	}
	keys := make([]ChunkKey, 0, len(d.loaded))
	for k := range d.loaded {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func (w *World) HeightBounds(world string) (int, int) {
	d := w.dims[world]
	if d == nil {
		return 0, 0
	}
	return d.MinY, d.MaxY
}

func (w *World) BlockAt(world string, p model.Vec3i) string {
	d := w.dims[world]
	if d == nil || p.Y < d.MinY || p.Y >= d.MaxY {
		return "AIR"
	}
	ch := w.chunk(d, mathx.FloorDiv(p.X, ChunkSize), mathx.FloorDiv(p.Z, ChunkSize))
	id := ch.Get(mathx.Mod(p.X, ChunkSize), p.Y, mathx.Mod(p.Z, ChunkSize))
	if int(id) >= len(w.cats.Blocks.Palette) {
		return "AIR"
	}
	return w.cats.Blocks.Palette[id]
}

// SetBlock writes a cell. Replacing a container block drops its inventory;
// placing one creates an empty inventory sized from the block catalog.
func (w *World) SetBlock(world string, p model.Vec3i, block string) {
	d := w.dims[world]
	if d == nil || p.Y < d.MinY || p.Y >= d.MaxY {
		return
	}
	id, ok := w.cats.Blocks.Index[block]
	if !ok {
		return
	}
	ch := w.chunk(d, mathx.FloorDiv(p.X, ChunkSize), mathx.FloorDiv(p.Z, ChunkSize))
	ch.Set(mathx.Mod(p.X, ChunkSize), p.Y, mathx.Mod(p.Z, ChunkSize), id)

	delete(d.containers, p)
	if n := w.cats.ContainerSlots(block); n > 0 {
		d.containers[p] = newContainer(n)
	}
}

func (w *World) Container(world string, p model.Vec3i) (ports.Inventory, bool) {
	d := w.dims[world]
	if d == nil {
		return nil, false
	}
	c, ok := d.containers[p]
	if !ok {
		return nil, false
	}
	return c, true
}

// ChunkDigest hashes a chunk's blocks; useful to assert that a tick did not mutate terrain.
func (w *World) ChunkDigest(world string, cx, cz int) [32]byte {
	d := w.dims[world]
	if d == nil {
		return [32]byte{}
	}
	return w.chunk(d, cx, cz).Digest()
}

func (w *World) chunk(d *Dimension, cx, cz int) *Chunk {
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := d.chunks[k]; ok {
		return ch
	}
	ch := newChunk(cx, cz, d.MinY, d.MaxY-d.MinY)
	w.generateChunk(d, ch)
	ch.dirty = true
	_ = ch.Digest()
	d.chunks[k] = ch
	return ch
}

// ContainerAt returns the concrete container at p, or nil.
func (w *World) ContainerAt(world string, p model.Vec3i) *Container {
	d := w.dims[world]
	if d == nil {
		return nil
	}
	return d.containers[p]
}
