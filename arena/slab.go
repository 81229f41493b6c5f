package arena

import (
	"unsafe"

	"github.com/nmxmxh/inos-heap/list"
	"github.com/nmxmxh/inos-heap/xsync"
)

// SlabPage is one page's worth of objects, allocated as a single BitmapPool
// over a page-sized buffer the Slab borrowed from its PageSupplier. node
// tracks which of the Slab's two lists (freeList or fullList) currently
// holds this page, so moving it between them is an O(1) Remove/PushFront
// pair rather than a search.
type SlabPage struct {
	pool *BitmapPool
	node *list.Node[*SlabPage]
}

func newSlabPage(buf []byte, objSize uint32) (*SlabPage, error) {
	pool, err := NewBitmapPool(buf, objSize)
	if err != nil {
		return nil, err
	}
	return &SlabPage{pool: pool}, nil
}

// tagForSlabPage and slabPageFromTag round-trip a *SlabPage through the
// same owner-tag word BitmapPool stores ahead of every object, the same
// mechanism BlockListPool uses to find its own owning pool. Here the tag a
// page's BitmapPool is asked to stamp on every object it hands out is the
// page's own address, so Slab.Free can recover "which page is this" from a
// bare payload slice with no other context.
func tagForSlabPage(p *SlabPage) Tag {
	return Tag(uintptr(unsafe.Pointer(p)))
}

func slabPageFromTag(tag Tag) *SlabPage {
	//nolint:govet // address recovered from a tag this package wrote itself
	return (*SlabPage)(unsafe.Pointer(uintptr(tag)))
}

// Slab is a slab allocator: a fixed object size served from a growing and
// shrinking set of pages borrowed from a PageSupplier. Pages with at least
// one free object live on freeList; pages with none live on fullList; a
// page that goes completely empty is handed straight back to the supplier
// rather than being kept around for reuse, so Slab never holds more pages
// than are actually backing live objects.
type Slab struct {
	cs xsync.CriticalSection

	objSize  uint32
	pageSize uint32
	supplier PageSupplier

	freeList list.List[*SlabPage]
	fullList list.List[*SlabPage]
}

// NewSlab constructs a Slab serving objSize-byte objects, carving each
// pageSize-byte page it borrows from supplier into objects of that size.
// pageSize is passed separately from the buffer PageSupplier.AllocPage
// actually returns only as a hint for callers; the page's own buffer length
// is what BitmapPool lays itself out over.
func NewSlab(objSize, pageSize uint32, supplier PageSupplier) *Slab {
	return &Slab{
		cs:       &xsync.Mutex{},
		objSize:  objSize,
		pageSize: pageSize,
		supplier: supplier,
	}
}

// Allocate returns one object, pulling a new page from the supplier if
// every existing page is full, or nil if the supplier itself is exhausted.
func (s *Slab) Allocate() []byte {
	defer s.cs.Enter()()

	page := s.headFreePage()
	if page == nil {
		var err error
		page, err = s.allocSlabPage()
		if page == nil || err != nil {
			return nil
		}
	}

	p := page.pool.Allocate(tagForSlabPage(page))
	if p == nil {
		return nil
	}
	if page.pool.IsFull() {
		s.moveToFull(page)
	}
	return p
}

// Free returns payload to its owning page, moving that page back onto
// freeList first if it had been full, then releasing the page back to the
// supplier entirely if it is now empty. Freeing a pointer not allocated
// from this Slab is undefined; a genuine double free on a live page is
// tolerated the same way BitmapPool tolerates one, but a double free after
// the page has already been returned to the supplier is not.
func (s *Slab) Free(payload []byte) {
	page := slabPageFromTag(OwnerTag(payload))
	if page == nil {
		return
	}

	defer s.cs.Enter()()

	if page.pool.IsFull() {
		s.moveToFree(page)
	}
	page.pool.Free(payload)
	if page.pool.IsEmpty() {
		s.releaseSlabPage(page)
	}
}

func (s *Slab) headFreePage() *SlabPage {
	n := s.freeList.Front()
	if n == nil {
		return nil
	}
	return n.Value
}

func (s *Slab) allocSlabPage() (*SlabPage, error) {
	buf := s.supplier.AllocPage()
	if buf == nil {
		return nil, nil
	}
	page, err := newSlabPage(buf, s.objSize)
	if err != nil {
		return nil, err
	}
	page.node = s.freeList.PushFront(page)
	return page, nil
}

func (s *Slab) moveToFull(page *SlabPage) {
	s.freeList.Remove(page.node)
	page.node = s.fullList.PushFront(page)
}

func (s *Slab) moveToFree(page *SlabPage) {
	s.fullList.Remove(page.node)
	page.node = s.freeList.PushFront(page)
}

func (s *Slab) releaseSlabPage(page *SlabPage) {
	s.freeList.Remove(page.node)
	page.node = nil
	s.supplier.FreePage(page.pool.arena)
}

// NumFreePages returns the number of pages with at least one free object.
func (s *Slab) NumFreePages() int {
	defer s.cs.Enter()()
	return s.freeList.Len()
}

// NumFullPages returns the number of pages with no free objects.
func (s *Slab) NumFullPages() int {
	defer s.cs.Enter()()
	return s.fullList.Len()
}

// ObjSize returns the fixed object size this Slab serves.
func (s *Slab) ObjSize() uint32 {
	return s.objSize
}
