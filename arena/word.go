// Package arena implements a family of deterministic, fixed-overhead memory
// allocators over caller-supplied byte arenas: a bit-mapped block pool
// (BitmapPool), a fixed-size free-list pool (BlockListPool), a segregated
// multi-class pool (SegregatedFixedHeap), and a slab allocator (Slab) that
// borrows pages from an injected supplier.
//
// None of these allocators ever grow, shrink, coalesce, or garbage collect
// an allocation; every operation is O(1) or a small bounded scan, and every
// failure is reported as a nil return rather than an error, so the hot path
// never logs, never calls back, and never touches global state.
package arena

import (
	"encoding/binary"
	"unsafe"
)

// wordSize is the width, in bytes, of the owner-tag word stored immediately
// before every payload handed out by BitmapPool. It is also the alignment
// every slot stride is rounded up to.
const wordSize = 8

// Tag is the opaque per-block identity value a caller supplies at
// allocation time and recovers at free time. Its interpretation is private
// to the allocating caller: Slab stores the address of the owning page in
// it, a direct BitmapPool user might store a pool index or nothing at all.
type Tag uintptr

func roundUp(n, to uint32) uint32 {
	return (n + to - 1) / to * to
}

// writeTag stores tag in the first wordSize bytes of slot.
func writeTag(slot []byte, tag Tag) {
	binary.LittleEndian.PutUint64(slot[:wordSize], uint64(tag))
}

// tagBeforePayload reads the owner tag immediately preceding payload in
// memory, without any reference to the pool payload was allocated from.
// This is the stable ABI boundary between the bitmap pool and the slab
// allocator: the tag word's position is computable from the returned user
// pointer by subtracting a fixed header offset (wordSize), and nothing
// else is needed to recover it.
//
// payload must be a slice previously returned by (*BitmapPool).Allocate or
// (*BlockListPool).Allocate; calling this on any other slice is undefined.
func tagBeforePayload(payload []byte) Tag {
	base := uintptr(unsafe.Pointer(&payload[0])) - wordSize
	var buf [wordSize]byte
	src := (*[wordSize]byte)(unsafe.Pointer(base))
	copy(buf[:], src[:])
	return Tag(binary.LittleEndian.Uint64(buf[:]))
}

// tagForPool returns the address of a BlockListPool as a Tag, for storing
// as the owner word ahead of every node it carves. The pool itself must
// remain reachable through an ordinary Go reference elsewhere (typically a
// SegregatedFixedHeap's descriptor table); this does not itself keep the
// pool alive, it only lets a bare payload pointer find its way back to it.
func tagForPool(p *BlockListPool) Tag {
	return Tag(uintptr(unsafe.Pointer(p)))
}

// poolFromTag reverses tagForPool.
func poolFromTag(tag Tag) *BlockListPool {
	//nolint:govet // address recovered from a tag this package wrote itself
	return (*BlockListPool)(unsafe.Pointer(uintptr(tag)))
}

// offsetWithin reports the byte offset of payload's first element within
// arena, and whether payload's underlying storage actually falls inside
// arena. It is used to recover which slot/node a previously-issued payload
// slice belongs to, without keeping a side table.
func offsetWithin(arena, payload []byte) (offset uint32, ok bool) {
	if len(payload) == 0 || len(arena) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(&arena[0]))
	ptr := uintptr(unsafe.Pointer(&payload[0]))
	if ptr < base {
		return 0, false
	}
	diff := ptr - base
	if diff >= uintptr(len(arena)) {
		return 0, false
	}
	return uint32(diff), true
}
