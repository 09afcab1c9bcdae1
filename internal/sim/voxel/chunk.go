package voxel

import (
	"crypto/sha256"
	"encoding/binary"
)

const ChunkSize = 16

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is one 16x16 column spanning the dimension's full height.
type Chunk struct {
	CX, CZ int
	MinY   int
	Height int
	Blocks []uint16 // len = 16*16*Height

	dirty bool
	hash  [32]byte
}

func newChunk(cx, cz, minY, height int) *Chunk {
	return &Chunk{
		CX:     cx,
		CZ:     cz,
		MinY:   minY,
		Height: height,
		Blocks: make([]uint16, ChunkSize*ChunkSize*height),
	}
}

func (c *Chunk) index(x, y, z int) int {
	// x fastest, then z, then y
	return x + z*ChunkSize + (y-c.MinY)*ChunkSize*ChunkSize
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}
