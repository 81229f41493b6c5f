package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveClassDescriptors() []SizeClass {
	return []SizeClass{
		{BlockSize: 8, Count: 4},
		{BlockSize: 16, Count: 4},
		{BlockSize: 32, Count: 4},
		{BlockSize: 64, Count: 4},
		{BlockSize: 128, Count: 4},
	}
}

func TestSegregatedFixedHeap_RejectsBadDescriptors(t *testing.T) {
	_, err := NewSegregatedFixedHeap(make([]byte, 1024), nil)
	assert.ErrorIs(t, err, errNoDescriptors)

	_, err = NewSegregatedFixedHeap(make([]byte, 1024), []SizeClass{
		{BlockSize: 32, Count: 2},
		{BlockSize: 16, Count: 2},
	})
	assert.ErrorIs(t, err, errDescriptorOrder)
}

func TestSegregatedFixedHeap_ExactSizeExhaustion(t *testing.T) {
	buf := make([]byte, 4096)
	h, err := NewSegregatedFixedHeap(buf, fiveClassDescriptors())
	require.NoError(t, err)

	// Drain largest-first, exactly like spec scenario 3: once the 128- and
	// 64-byte classes are both exhausted, Allocate(32) has nowhere left to
	// cascade to and must fail rather than succeed from a larger class.
	for i := 0; i < 4; i++ {
		require.NotNil(t, h.Allocate(128))
	}
	assert.Nil(t, h.Allocate(128))

	for i := 0; i < 4; i++ {
		require.NotNil(t, h.Allocate(64))
	}
	assert.Nil(t, h.Allocate(64))

	for i := 0; i < 4; i++ {
		require.NotNil(t, h.Allocate(32))
	}
	assert.Equal(t, uint32(0), h.NumFreeInClass(2))
	assert.Nil(t, h.Allocate(32))
}

func TestSegregatedFixedHeap_SmallRequestCascadesToLargerClass(t *testing.T) {
	buf := make([]byte, 4096)
	h, err := NewSegregatedFixedHeap(buf, fiveClassDescriptors())
	require.NoError(t, err)

	// Drain the 8-byte class entirely.
	for i := 0; i < 4; i++ {
		require.NotNil(t, h.Allocate(8))
	}
	assert.Equal(t, uint32(0), h.NumFreeInClass(0))

	// A further tiny request must cascade up to the next class with room
	// rather than failing outright.
	p := h.Allocate(8)
	require.NotNil(t, p)
	assert.Equal(t, uint32(3), h.NumFreeInClass(1))
}

func TestSegregatedFixedHeap_AllocateRejectsOversizeRequest(t *testing.T) {
	buf := make([]byte, 4096)
	h, err := NewSegregatedFixedHeap(buf, fiveClassDescriptors())
	require.NoError(t, err)

	assert.Nil(t, h.Allocate(1024))
}

func TestSegregatedFixedHeap_StaticFreeReturnsBlockToItsClass(t *testing.T) {
	buf := make([]byte, 4096)
	h, err := NewSegregatedFixedHeap(buf, fiveClassDescriptors())
	require.NoError(t, err)

	p := h.Allocate(16)
	require.NotNil(t, p)
	before := h.NumFreeInClass(1)

	h.Free(p)
	assert.Equal(t, before+1, h.NumFreeInClass(1))
}
