package arena

// SizeClass describes one block size tier of a SegregatedFixedHeap: how
// large its blocks are and how many of them to carve.
type SizeClass struct {
	BlockSize uint32
	Count     uint32
}

// SegregatedFixedHeap is an ordered set of BlockListPool size classes backed
// by one contiguous arena. Allocate picks the smallest class that fits a
// request (first-fit by size, not by address), so it behaves like a tiny
// malloc with a fixed, known-at-construction set of bucket sizes and no
// splitting or coalescing between classes.
type SegregatedFixedHeap struct {
	classes []*BlockListPool
}

// NewSegregatedFixedHeap lays out one BlockListPool per descriptor, in
// order, out of consecutive regions of buf. Descriptors must be supplied in
// non-decreasing BlockSize order so Allocate's linear first-fit scan also
// picks the smallest adequate class. Free does not depend on this ordering:
// the pool's static Free trusts each block's own embedded owner tag rather
// than the descriptor order.
//
// A region that is too small for even one node of its class yields a valid,
// permanently-exhausted size class rather than a construction error: the
// heap as a whole still answers requests for every other class.
func NewSegregatedFixedHeap(buf []byte, descriptors []SizeClass) (*SegregatedFixedHeap, error) {
	if len(descriptors) == 0 {
		return nil, errNoDescriptors
	}
	for i := 1; i < len(descriptors); i++ {
		if descriptors[i].BlockSize < descriptors[i-1].BlockSize {
			return nil, errDescriptorOrder
		}
	}

	h := &SegregatedFixedHeap{classes: make([]*BlockListPool, len(descriptors))}
	offset := uint32(0)
	bufLen := uint32(len(buf))
	for i, d := range descriptors {
		if offset > bufLen {
			offset = bufLen
		}
		remaining := bufLen - offset

		stride := roundUp(wordSize+d.BlockSize, wordSize)
		regionSize := stride * d.Count
		if uint64(regionSize) > uint64(remaining) {
			regionSize = remaining
		}

		pool, consumed, err := NewBlockListPool(buf[offset:offset+regionSize], d.BlockSize)
		if err != nil {
			return nil, err
		}
		h.classes[i] = pool
		offset += consumed
	}
	return h, nil
}

// Allocate returns a block from the smallest size class whose BlockSize is
// at least size and that still has a free block, or nil if no class fits at
// all. A class that fits but is exhausted is skipped rather than failing
// the whole request: Allocate keeps scanning larger classes, so a request
// can cascade up to whatever size is actually available. It never splits a
// larger block down to serve a smaller request.
func (h *SegregatedFixedHeap) Allocate(size uint32) []byte {
	for _, pool := range h.classes {
		if pool.BlockSize() < size || !pool.IsFree() {
			continue
		}
		if p := pool.Allocate(); p != nil {
			return p
		}
	}
	return nil
}

// Free returns payload to its owning size class. It is just the
// package-level Free, resolved through the same owner-tag word every
// BlockListPool node carries — SegregatedFixedHeap keeps no address-range
// table of its own to dispatch through.
func (h *SegregatedFixedHeap) Free(payload []byte) {
	Free(payload)
}

// NumFreeInClass returns the free-block count of the size class at index i,
// mainly for tests and stats; i is the descriptor's position as passed to
// NewSegregatedFixedHeap.
func (h *SegregatedFixedHeap) NumFreeInClass(i int) uint32 {
	return h.classes[i].NumFree()
}
