package voxel

import "chunkfall.ai/internal/sim/kernel/model"

// Container is a fixed-size slot inventory owned by a container block.
type Container struct {
	slots []*model.ItemStack
}

func newContainer(size int) *Container {
	return &Container{slots: make([]*model.ItemStack, size)}
}

func (c *Container) Size() int { return len(c.slots) }

func (c *Container) Item(slot int) *model.ItemStack {
	if slot < 0 || slot >= len(c.slots) {
		return nil
	}
	return c.slots[slot]
}

func (c *Container) SetItem(slot int, s *model.ItemStack) {
	if slot < 0 || slot >= len(c.slots) {
		return
	}
	if s.Empty() {
		s = nil
	}
	c.slots[slot] = s
}

// Count sums every stack of item.
func (c *Container) Count(item string) int {
	n := 0
	for _, s := range c.slots {
		if s != nil && s.Item == item {
			n += s.Count
		}
	}
	return n
}
