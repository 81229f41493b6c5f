package arena

// HeapBlockHeader describes the per-allocation metadata a coalescing,
// splittable buddy-style heap would need to thread a doubly-linked chain of
// variable-sized blocks through one arena: a free/used cookie, left/right
// sibling addresses, a data size, and an arena index identifying which
// size-class list the block is parked on when free.
//
// Only the header shape is modeled here. The operations that would make it
// a real allocator — splitting a block into two smaller siblings,
// coalescing adjacent free siblings back together, and the free-list
// bookkeeping that picks a block to split — are out of scope for this
// package, which only ever hands out fixed-size blocks. HeapBlockHeader
// exists so code that must interoperate with a variable-size heap's on-disk
// or on-wire layout can still describe it precisely.
type HeapBlockHeader struct {
	Cookie       uint32
	DataSize     uint32
	LeftSibling  uint32
	RightSibling uint32
	ArenaIndex   uint8
}

// Heap block cookie values, matching the free/used sentinel a split/merge
// implementation would stamp into HeapBlockHeader.Cookie.
const (
	HeapCookieFree uint32 = 0xF4EE
	HeapCookieUsed uint32 = 0xA110
)

// BlockSize returns DataSize plus one word (wordSize bytes) of per-block
// header overhead. It does not use the in-memory size of HeapBlockHeader
// itself, which is larger than one word.
func (h HeapBlockHeader) BlockSize() uint32 {
	return wordSize + h.DataSize
}
