package arena

import "github.com/nmxmxh/inos-heap/xsync"

// BlockListPool is a fixed-capacity pool of equal-sized blocks kept on a
// singly-referenced free list. Unlike BitmapPool it does no bit scanning at
// all: Allocate pops the free list head and Free pushes back onto it, so
// both are O(1) regardless of how full the pool is.
//
// Every node also carries, in the word immediately before its payload, the
// address of the BlockListPool that owns it. That is what lets the
// package-level Free function recover the right pool from a bare payload
// pointer with no receiver and no side table — the same owner-tag
// mechanism BitmapPool uses, just with the pool itself as the tag.
type BlockListPool struct {
	cs xsync.CriticalSection

	arena     []byte
	blockSize uint32
	stride    uint32
	numNodes  uint32
	free      uint32
	freeHead  uint32 // slot index of the free-list head, or numNodes if empty
	nextLink  []uint32
}

// NewBlockListPool lays out a BlockListPool over buf, carving as many
// (tag-word + blockSize) nodes as fit and linking all of them onto the free
// list. It returns the pool and the number of bytes actually consumed from
// buf (the node count times the stride), so a caller chaining several pools
// out of one larger arena — as SegregatedFixedHeap does — knows exactly
// where the next pool's region begins.
func NewBlockListPool(buf []byte, blockSize uint32) (*BlockListPool, uint32, error) {
	if blockSize == 0 {
		return nil, 0, errInvalidBlockSize
	}

	stride := roundUp(wordSize+blockSize, wordSize)
	numNodes := uint32(0)
	if stride > 0 {
		numNodes = uint32(len(buf)) / stride
	}

	p := &BlockListPool{
		cs:        &xsync.Mutex{},
		arena:     buf[:numNodes*stride],
		blockSize: blockSize,
		stride:    stride,
		numNodes:  numNodes,
		free:      numNodes,
		freeHead:  numNodes,
		nextLink:  make([]uint32, numNodes),
	}

	tag := tagForPool(p)
	for i := uint32(0); i < numNodes; i++ {
		writeTag(p.slotAt(i), tag)
	}
	// Link nodes head-first in slot order: node 0 ends up at the tail,
	// node numNodes-1 at the head, same LIFO discipline Allocate/Free use.
	for i := uint32(0); i < numNodes; i++ {
		p.pushFree(i)
	}

	return p, numNodes * stride, nil
}

func (p *BlockListPool) slotAt(idx uint32) []byte {
	start := idx * p.stride
	return p.arena[start : start+p.stride]
}

func (p *BlockListPool) payloadAt(idx uint32) []byte {
	slot := p.slotAt(idx)
	return slot[wordSize : wordSize+p.blockSize]
}

func (p *BlockListPool) pushFree(idx uint32) {
	p.nextLink[idx] = p.freeHead
	p.freeHead = idx
}

func (p *BlockListPool) popFree() (uint32, bool) {
	if p.freeHead == p.numNodes {
		return 0, false
	}
	idx := p.freeHead
	p.freeHead = p.nextLink[idx]
	return idx, true
}

// Allocate pops the head of the free list and returns its payload, or nil
// if the pool is exhausted.
func (p *BlockListPool) Allocate() []byte {
	defer p.cs.Enter()()

	idx, ok := p.popFree()
	if !ok {
		return nil
	}
	p.free--
	return p.payloadAt(idx)
}

// Free pushes payload's node back onto the head of the free list. Freeing
// a pointer not allocated from this pool is undefined, matching the
// contract for C2 generally: unlike BitmapPool and Slab, a second Free of
// the same block would corrupt the free list rather than being tolerated.
func (p *BlockListPool) Free(payload []byte) {
	idx, ok := p.nodeIndexOf(payload)
	if !ok {
		return
	}

	defer p.cs.Enter()()

	p.pushFree(idx)
	p.free++
}

func (p *BlockListPool) nodeIndexOf(payload []byte) (uint32, bool) {
	offset, ok := offsetWithin(p.arena, payload)
	if !ok || offset < wordSize {
		return 0, false
	}
	rel := offset - wordSize
	if rel%p.stride != 0 {
		return 0, false
	}
	idx := rel / p.stride
	if idx >= p.numNodes {
		return 0, false
	}
	return idx, true
}

// IsFree reports whether the pool has at least one free block.
func (p *BlockListPool) IsFree() bool {
	defer p.cs.Enter()()
	return p.free > 0
}

// NumFree returns the number of blocks currently on the free list.
func (p *BlockListPool) NumFree() uint32 {
	defer p.cs.Enter()()
	return p.free
}

// BlockSize returns the fixed payload size this pool's blocks were carved
// with.
func (p *BlockListPool) BlockSize() uint32 {
	return p.blockSize
}

// contains reports whether payload's storage falls within this pool's
// arena.
func (p *BlockListPool) contains(payload []byte) bool {
	_, ok := offsetWithin(p.arena, payload)
	return ok
}

// Free is the static free function for a block allocated from any
// BlockListPool: it recovers the owning pool from the tag word embedded
// just before payload and dispatches to it. This is the only legal way to
// free an allocation whose originating pool is not otherwise in scope —
// SegregatedFixedHeap.Free is built directly on top of it.
func Free(payload []byte) {
	pool := poolFromTag(tagBeforePayload(payload))
	if pool == nil {
		return
	}
	pool.Free(payload)
}
