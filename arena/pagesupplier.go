package arena

// PageSupplier hands Slab whole pages to carve objects from and takes them
// back once empty. A page is just a byte slice; Slab never inspects its
// contents beyond what it needs to lay out a BitmapPool over it.
type PageSupplier interface {
	AllocPage() []byte
	FreePage(page []byte)
}

// bitmapPageSupplier hands out fixed-size pages cut from one larger arena
// using a BitmapPool: each "object" the pool carves is itself a whole page.
type bitmapPageSupplier struct {
	pool *BitmapPool
}

// NewPagedSlab builds a Slab whose pages are supplied by a BitmapPool laid
// out over buf, each page pageSize bytes. This is the common case: a single
// flat arena, chopped into equal pages by one allocator, then chopped again
// per-page into objSize objects by the slab. Pages are returned to the
// supplier the moment they go empty, so the arena's free page count always
// reflects current demand rather than a high-water mark.
func NewPagedSlab(buf []byte, pageSize, objSize uint32) (*Slab, error) {
	pagePool, err := NewBitmapPool(buf, pageSize)
	if err != nil {
		return nil, err
	}
	supplier := &bitmapPageSupplier{pool: pagePool}
	return NewSlab(objSize, pageSize, supplier), nil
}

func (s *bitmapPageSupplier) AllocPage() []byte {
	return s.pool.Allocate(0)
}

func (s *bitmapPageSupplier) FreePage(page []byte) {
	s.pool.Free(page)
}
