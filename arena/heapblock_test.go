package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeapBlockHeader_BlockSizeIncludesHeaderOverhead(t *testing.T) {
	h := HeapBlockHeader{Cookie: HeapCookieFree, DataSize: 48}
	assert.Equal(t, wordSize+uint32(48), h.BlockSize())
}
