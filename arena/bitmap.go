package arena

import "github.com/nmxmxh/inos-heap/xsync"

// BitmapPool is a fixed-capacity pool of equal-sized blocks carved from a
// single caller-supplied arena. Each block is tracked by one bit in a
// packed bitmap (1 = allocated, 0 = free) plus a one-word owner tag stored
// immediately before its payload, so a raw payload pointer can be mapped
// back to whatever the caller tagged it with at allocation time without a
// lookup table.
//
// The arena is laid out, front to back, as
// a packed bitmap of Capacity() bits followed by Capacity() fixed-stride
// slots, each slot holding one tag word and one object's worth of payload
// bytes rounded up to word alignment.
type BitmapPool struct {
	cs xsync.CriticalSection

	arena      []byte
	objectSize uint32
	stride     uint32
	slotsAt    uint32
	numSlots   uint32
	free       uint32
	cursor     uint32
}

// NewBitmapPool lays out a BitmapPool over buf. objectSize must be at least
// one byte. The number of blocks the pool can hold is whatever fits buf;
// an arena too small to hold even one block yields a valid pool with zero
// capacity rather than an error — capacity exhaustion is a normal runtime
// outcome in this package, not a construction failure.
func NewBitmapPool(buf []byte, objectSize uint32) (*BitmapPool, error) {
	if objectSize == 0 {
		return nil, errInvalidObjectSize
	}

	stride := roundUp(wordSize+objectSize, wordSize)
	numSlots := fitBitmapCapacity(uint32(len(buf)), stride)
	slotsAt := bitmapBytes(numSlots)

	p := &BitmapPool{
		cs:         &xsync.Mutex{},
		arena:      buf,
		objectSize: objectSize,
		stride:     stride,
		slotsAt:    slotsAt,
		numSlots:   numSlots,
		free:       numSlots,
	}
	for i := range p.arena[:slotsAt] {
		p.arena[i] = 0
	}
	return p, nil
}

// fitBitmapCapacity returns the largest N such that a packed N-bit bitmap
// plus N slots of the given stride fit within arenaSize bytes.
func fitBitmapCapacity(arenaSize, stride uint32) uint32 {
	if stride == 0 {
		return 0
	}
	// Slots dominate; start from the estimate ignoring the bitmap and
	// trim down until the bitmap's own bytes fit too.
	n := arenaSize / stride
	for n > 0 && bitmapBytes(n)+n*stride > arenaSize {
		n--
	}
	return n
}

func bitmapBytes(n uint32) uint32 {
	return (n + 7) / 8
}

// Allocate reserves one block and returns its payload, or nil if the pool
// has no free blocks. The scan for a free bit starts at the internal
// cursor and wraps at most once, so allocation is O(1) in the common case
// and O(Capacity()) only when the pool is nearly full of long allocated
// runs.
func (p *BitmapPool) Allocate(tag Tag) []byte {
	defer p.cs.Enter()()

	if p.free == 0 {
		return nil
	}

	bitmap := p.arena[:p.slotsAt]
	idx, ok := scanForZeroBit(bitmap, p.numSlots, p.cursor)
	if !ok {
		return nil
	}
	setBit(bitmap, idx)
	p.free--
	p.cursor = idx + 1
	if p.cursor >= p.numSlots {
		p.cursor = 0
	}

	slot := p.slotAt(idx)
	writeTag(slot, tag)
	return slot[wordSize : wordSize+p.objectSize]
}

// Free releases payload back to the pool. Freeing a pointer whose bit is
// already clear (a double free) is silently ignored: F is left unchanged
// and no bit is touched. Freeing a pointer that does not align to a slot
// boundary in this pool is also ignored.
func (p *BitmapPool) Free(payload []byte) {
	idx, ok := p.slotIndexOf(payload)
	if !ok {
		return
	}

	defer p.cs.Enter()()

	bitmap := p.arena[:p.slotsAt]
	if !testBit(bitmap, idx) {
		return // double free: no-op, F unchanged
	}
	clearBit(bitmap, idx)
	p.free++
}

func (p *BitmapPool) slotAt(idx uint32) []byte {
	start := p.slotsAt + idx*p.stride
	return p.arena[start : start+p.stride]
}

func (p *BitmapPool) slotIndexOf(payload []byte) (uint32, bool) {
	offset, ok := offsetWithin(p.arena, payload)
	if !ok || offset < p.slotsAt+wordSize {
		return 0, false
	}
	rel := offset - wordSize - p.slotsAt
	if rel%p.stride != 0 {
		return 0, false
	}
	idx := rel / p.stride
	if idx >= p.numSlots {
		return 0, false
	}
	return idx, true
}

// NumFree returns the number of blocks currently available for allocation.
func (p *BitmapPool) NumFree() uint32 {
	defer p.cs.Enter()()
	return p.free
}

// Capacity returns the total number of blocks this pool was laid out with.
func (p *BitmapPool) Capacity() uint32 {
	return p.numSlots
}

// IsFull reports whether the pool has no free blocks.
func (p *BitmapPool) IsFull() bool {
	defer p.cs.Enter()()
	return p.free == 0
}

// IsEmpty reports whether every block in the pool is free.
func (p *BitmapPool) IsEmpty() bool {
	defer p.cs.Enter()()
	return p.free == p.numSlots
}

// OwnerTag reads the owner tag stored immediately before payload without
// any reference to the pool it came from. Slab uses this to resolve a
// freed pointer to its owning page; callers with their own scheme for
// addressing an allocation's owner can use it the same way.
func OwnerTag(payload []byte) Tag {
	return tagBeforePayload(payload)
}

func testBit(bitmap []byte, idx uint32) bool {
	return bitmap[idx/8]&(1<<(idx%8)) != 0
}

func setBit(bitmap []byte, idx uint32) {
	bitmap[idx/8] |= 1 << (idx % 8)
}

func clearBit(bitmap []byte, idx uint32) {
	bitmap[idx/8] &^= 1 << (idx % 8)
}

// scanForZeroBit finds the first clear bit at or after start, wrapping
// around to the beginning once if necessary.
func scanForZeroBit(bitmap []byte, n, start uint32) (uint32, bool) {
	if n == 0 {
		return 0, false
	}
	for i := uint32(0); i < n; i++ {
		idx := (start + i) % n
		if !testBit(bitmap, idx) {
			return idx, true
		}
	}
	return 0, false
}
