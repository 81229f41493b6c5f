package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPageSupplier hands out a fixed number of pre-allocated pages and
// tracks which ones are currently on loan, for tests that need to see
// exactly when a page is handed back.
type fixedPageSupplier struct {
	pages    [][]byte
	onLoan   map[*byte]bool
	released int
}

func newFixedPageSupplier(count int, pageSize uint32) *fixedPageSupplier {
	s := &fixedPageSupplier{onLoan: map[*byte]bool{}}
	for i := 0; i < count; i++ {
		s.pages = append(s.pages, make([]byte, pageSize))
	}
	return s
}

func (s *fixedPageSupplier) AllocPage() []byte {
	for _, p := range s.pages {
		key := &p[0]
		if !s.onLoan[key] {
			s.onLoan[key] = true
			return p
		}
	}
	return nil
}

func (s *fixedPageSupplier) FreePage(page []byte) {
	if len(page) == 0 {
		return
	}
	delete(s.onLoan, &page[0])
	s.released++
}

func TestSlab_PageMigratesBetweenFreeAndFullLists(t *testing.T) {
	supplier := newFixedPageSupplier(2, 64)
	slab := NewSlab(16, 64, supplier)

	assert.Equal(t, 0, slab.NumFreePages())
	assert.Equal(t, 0, slab.NumFullPages())

	p1 := slab.Allocate()
	require.NotNil(t, p1)
	assert.Equal(t, 1, slab.NumFreePages())
	assert.Equal(t, 0, slab.NumFullPages())

	// The 64-byte page minus its BitmapPool bookkeeping holds only a
	// handful of 16-byte objects; drain it until it migrates to fullList.
	allocs := [][]byte{p1}
	for slab.NumFullPages() == 0 {
		p := slab.Allocate()
		require.NotNil(t, p, "page should have filled before the supplier ran out")
		allocs = append(allocs, p)
	}
	assert.Equal(t, 0, slab.NumFreePages())
	assert.Equal(t, 1, slab.NumFullPages())

	// Freeing one object must move the page back onto freeList.
	slab.Free(allocs[0])
	assert.Equal(t, 1, slab.NumFreePages())
	assert.Equal(t, 0, slab.NumFullPages())

	// Freeing everything else empties the page, which must be handed back
	// to the supplier and vanish from both lists entirely.
	for _, p := range allocs[1:] {
		slab.Free(p)
	}
	assert.Equal(t, 0, slab.NumFreePages())
	assert.Equal(t, 0, slab.NumFullPages())
	assert.Equal(t, 1, supplier.released)
}

func TestSlab_ExhaustsWhenSupplierRunsOut(t *testing.T) {
	supplier := newFixedPageSupplier(1, 48)
	slab := NewSlab(16, 48, supplier)

	var allocs [][]byte
	for {
		p := slab.Allocate()
		if p == nil {
			break
		}
		allocs = append(allocs, p)
	}
	require.True(t, len(allocs) > 0)
	assert.Nil(t, slab.Allocate())
}

func TestSlab_DoubleFreeOnLivePageTolerated(t *testing.T) {
	supplier := newFixedPageSupplier(2, 64)
	slab := NewSlab(16, 64, supplier)

	p1 := slab.Allocate()
	p2 := slab.Allocate()
	require.NotNil(t, p1)
	require.NotNil(t, p2)

	slab.Free(p1)
	freePages := slab.NumFreePages()

	// p2 is still live on the same page, so a repeated Free of p1 must be a
	// silent no-op rather than corrupting the page's bitmap.
	slab.Free(p1)
	assert.Equal(t, freePages, slab.NumFreePages())

	slab.Free(p2)
}

func TestNewPagedSlab_LayersOverABitmapPoolOfPages(t *testing.T) {
	buf := make([]byte, 4096)
	slab, err := NewPagedSlab(buf, 256, 32)
	require.NoError(t, err)

	p := slab.Allocate()
	require.NotNil(t, p)
	assert.Equal(t, 1, slab.NumFreePages())

	slab.Free(p)
	assert.Equal(t, 0, slab.NumFreePages())
	assert.Equal(t, 0, slab.NumFullPages())
}
