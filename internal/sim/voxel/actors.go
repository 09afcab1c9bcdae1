package voxel

import "chunkfall.ai/internal/sim/kernel/model"

type actor struct {
	gen   uint32
	alive bool

	world    string
	pos      model.Vec3f
	yaw      float64
	display  model.ItemStack
	armPitch float64
	armRoll  float64
}

// ActorView is a read-only copy of a live actor.
type ActorView struct {
	World    string
	Pos      model.Vec3f
	Yaw      float64
	Display  model.ItemStack
	ArmPitch float64
	ArmRoll  float64
}

// actorTable hands out generation-checked handles; a removed slot is reused
// with a bumped generation so stale handles never resolve.
type actorTable struct {
	slots []actor
	free  []uint32
	live  int
}

func (t *actorTable) spawn(a actor) model.ActorHandle {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, actor{})
	}
	a.gen = t.slots[idx].gen + 1
	a.alive = true
	t.slots[idx] = a
	t.live++
	return model.ActorHandle{Index: idx, Gen: a.gen}
}

func (t *actorTable) get(h model.ActorHandle) *actor {
	if int(h.Index) >= len(t.slots) {
		return nil
	}
	a := &t.slots[h.Index]
	if !a.alive || a.gen != h.Gen {
		return nil
	}
	return a
}

func (t *actorTable) remove(idx uint32) {
	a := &t.slots[idx]
	if !a.alive {
		return
	}
	a.alive = false
	t.free = append(t.free, idx)
	t.live--
}

func (t *actorTable) removeWhere(pred func(*actor) bool) {
	for i := range t.slots {
		if t.slots[i].alive && pred(&t.slots[i]) {
			t.remove(uint32(i))
		}
	}
}

func (w *World) SpawnDisplay(world string, at model.Vec3f, yaw float64, display model.ItemStack) model.ActorHandle {
	return w.actors.spawn(actor{world: world, pos: at, yaw: yaw, display: display})
}

func (w *World) Alive(h model.ActorHandle) bool { return w.actors.get(h) != nil }

func (w *World) SetDisplay(h model.ActorHandle, display model.ItemStack) {
	if a := w.actors.get(h); a != nil {
		a.display = display
	}
}

func (w *World) Teleport(h model.ActorHandle, at model.Vec3f, yaw float64) {
	if a := w.actors.get(h); a != nil {
		a.pos = at
		a.yaw = yaw
	}
}

func (w *World) SetArmPose(h model.ActorHandle, pitchDeg, rollDeg float64) {
	if a := w.actors.get(h); a != nil {
		a.armPitch = pitchDeg
		a.armRoll = rollDeg
	}
}

func (w *World) Remove(h model.ActorHandle) {
	if w.actors.get(h) != nil {
		w.actors.remove(h.Index)
	}
}

// Kill removes an actor behind the engine's back, as a chunk unload or a
// world-side cleanup would.
func (w *World) Kill(h model.ActorHandle) { w.Remove(h) }

func (w *World) LiveActors() int { return w.actors.live }

func (w *World) Actor(h model.ActorHandle) (ActorView, bool) {
	a := w.actors.get(h)
	if a == nil {
		return ActorView{}, false
	}
	return ActorView{World: a.world, Pos: a.pos, Yaw: a.yaw, Display: a.display, ArmPitch: a.armPitch, ArmRoll: a.armRoll}, true
}
