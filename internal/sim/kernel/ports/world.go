// Package ports declares the capabilities the generator engine consumes from
// the hosting voxel world. Nothing here is implemented by the engine itself.
package ports

import "chunkfall.ai/internal/sim/kernel/model"

// Blocks is single-cell terrain access plus streaming state.
type Blocks interface {
	WorldExists(world string) bool
	ChunkLoaded(world string, cx, cz int) bool
	// HeightBounds returns the inclusive minimum and exclusive maximum build height.
	HeightBounds(world string) (minY, maxY int)
	BlockAt(world string, p model.Vec3i) string
	SetBlock(world string, p model.Vec3i, block string)
	// Container returns the inventory of the block at p, if it has one.
	Container(world string, p model.Vec3i) (Inventory, bool)
}

type Inventory interface {
	Size() int
	Item(slot int) *model.ItemStack
	SetItem(slot int, s *model.ItemStack)
}

// Actors manages transient display actors. Spawned actors are invisible,
// have no physics and are never saved with the world; the world may remove
// them at any time (for example when their chunk unloads), so callers must
// check Alive before trusting a handle.
type Actors interface {
	SpawnDisplay(world string, at model.Vec3f, yaw float64, display model.ItemStack) model.ActorHandle
	Alive(h model.ActorHandle) bool
	SetDisplay(h model.ActorHandle, display model.ItemStack)
	Teleport(h model.ActorHandle, at model.Vec3f, yaw float64)
	SetArmPose(h model.ActorHandle, pitchDeg, rollDeg float64)
	Remove(h model.ActorHandle)
}

type Effects interface {
	Particles(world string, at model.Vec3f, particle string, count int)
	Sound(world string, at model.Vec3f, sound string, volume, pitch float64)
}

// World is everything the engine needs from the host.
type World interface {
	Blocks
	Actors
	Effects
}

// Random is the injectable randomness source (tool wear, animation phase).
// *math/rand.Rand satisfies it.
type Random interface {
	Float64() float64
}
