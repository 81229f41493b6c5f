package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockListPool_AllocateFreeIsLIFO(t *testing.T) {
	buf := make([]byte, 256)
	pool, consumed, err := NewBlockListPool(buf, 24)
	require.NoError(t, err)
	require.True(t, consumed > 0)
	require.True(t, consumed <= uint32(len(buf)))

	capacity := pool.NumFree()
	require.True(t, capacity >= 2)

	a := pool.Allocate()
	b := pool.Allocate()
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, capacity-2, pool.NumFree())

	// Free b then a: the next two allocations must hand a back first, since
	// the free list is LIFO.
	pool.Free(b)
	pool.Free(a)

	first := pool.Allocate()
	second := pool.Allocate()
	assert.Same(t, &a[0], &first[0])
	assert.Same(t, &b[0], &second[0])
}

func TestBlockListPool_ExhaustionYieldsNil(t *testing.T) {
	buf := make([]byte, 128)
	pool, _, err := NewBlockListPool(buf, 16)
	require.NoError(t, err)

	capacity := pool.NumFree()
	for i := uint32(0); i < capacity; i++ {
		require.NotNil(t, pool.Allocate())
	}
	assert.False(t, pool.IsFree())
	assert.Nil(t, pool.Allocate())
}

func TestBlockListPool_StaticFreeRecoversOwningPool(t *testing.T) {
	buf := make([]byte, 256)
	pool, _, err := NewBlockListPool(buf, 32)
	require.NoError(t, err)

	p := pool.Allocate()
	require.NotNil(t, p)
	before := pool.NumFree()

	// The package-level Free must resolve the owning pool purely from the
	// tag word embedded before p, with no receiver in scope.
	Free(p)
	assert.Equal(t, before+1, pool.NumFree())
}

func TestBlockListPool_InvalidBlockSize(t *testing.T) {
	_, _, err := NewBlockListPool(make([]byte, 64), 0)
	assert.Error(t, err)
}

func TestBlockListPool_UndersizedArenaYieldsZeroCapacity(t *testing.T) {
	pool, consumed, err := NewBlockListPool(make([]byte, 4), 64)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), consumed)
	assert.Equal(t, uint32(0), pool.NumFree())
	assert.False(t, pool.IsFree())
	assert.Nil(t, pool.Allocate())
}

func TestBlockListPool_ContainsDistinguishesForeignPointers(t *testing.T) {
	bufA := make([]byte, 256)
	bufB := make([]byte, 256)
	poolA, _, err := NewBlockListPool(bufA, 16)
	require.NoError(t, err)
	poolB, _, err := NewBlockListPool(bufB, 16)
	require.NoError(t, err)

	a := poolA.Allocate()
	b := poolB.Allocate()
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.True(t, poolA.contains(a))
	assert.False(t, poolA.contains(b))
	assert.True(t, poolB.contains(b))
	assert.False(t, poolB.contains(a))
}

func TestBlockListPool_RoundTripWritability(t *testing.T) {
	buf := make([]byte, 256)
	pool, _, err := NewBlockListPool(buf, 40)
	require.NoError(t, err)

	a := pool.Allocate()
	b := pool.Allocate()
	require.NotNil(t, a)
	require.NotNil(t, b)

	for i := range a {
		a[i] = 0x11
	}
	for i := range b {
		b[i] = 0x22
	}
	for _, v := range a {
		assert.Equal(t, byte(0x11), v)
	}
	for _, v := range b {
		assert.Equal(t, byte(0x22), v)
	}
}
