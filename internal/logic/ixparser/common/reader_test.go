package common

import (
	"testing"

	"serum-indexer-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderFixedWidth(t *testing.T) {
	buf := []byte{
		0x7f,       // u8
		0x34, 0x12, // u16
		0x78, 0x56, 0x34, 0x12, // u32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // u64
		0x01, 0, 0, 0, 0, 0, 0, 0, 0x02, 0, 0, 0, 0, 0, 0, 0, // u128
	}
	r := NewReader(buf)
	assert.Equal(t, uint8(0x7f), r.U8("a"))
	assert.Equal(t, uint16(0x1234), r.U16("b"))
	assert.Equal(t, uint32(0x12345678), r.U32("c"))
	assert.Equal(t, uint64(0x0102030405060708), r.U64("d"))
	assert.Equal(t, types.Uint128{Lo: 1, Hi: 2}, r.U128("e"))
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
	assert.Equal(t, len(buf), r.Offset())
}

func TestReaderShortBufferIsSticky(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	assert.Equal(t, uint16(0x0201), r.U16("a"))
	assert.Equal(t, uint64(0), r.U64("b"))
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)

	// 失败后不再消费
	assert.Equal(t, uint8(0), r.U8("c"))
	assert.Equal(t, 2, r.Offset())
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestReaderNonZero(t *testing.T) {
	r := NewReader([]byte{5, 0, 0, 0, 0, 0, 0, 0})
	assert.Equal(t, uint64(5), r.NonZeroU64("price"))
	require.NoError(t, r.Err())

	r = NewReader(make([]byte, 8))
	r.NonZeroU64("price")
	assert.ErrorIs(t, r.Err(), ErrZeroValue)
}

func TestReaderOrdinals(t *testing.T) {
	r := NewReader([]byte{1, 0, 0, 0, 2})
	assert.Equal(t, uint32(1), r.Ordinal32("side", 2))
	assert.Equal(t, uint8(2), r.Ordinal8("stb", 3))
	require.NoError(t, r.Err())

	r = NewReader([]byte{2, 0, 0, 0})
	r.Ordinal32("side", 2)
	assert.ErrorIs(t, r.Err(), ErrInvalidOrdinal)

	// 高位字节非零同样越界
	r = NewReader([]byte{0, 0, 0, 1})
	r.Ordinal32("side", 2)
	assert.ErrorIs(t, r.Err(), ErrInvalidOrdinal)

	r = NewReader([]byte{3})
	r.Ordinal8("stb", 3)
	assert.ErrorIs(t, r.Err(), ErrInvalidOrdinal)
}

func TestReaderFirstErrorWins(t *testing.T) {
	r := NewReader([]byte{9, 0, 0, 0})
	r.Ordinal32("side", 2)
	r.U64("missing")
	assert.ErrorIs(t, r.Err(), ErrInvalidOrdinal)
	assert.NotErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestReaderU64Array4(t *testing.T) {
	buf := make([]byte, 32)
	for i := 0; i < 4; i++ {
		buf[i*8] = byte(i + 1)
	}
	r := NewReader(buf)
	assert.Equal(t, [4]uint64{1, 2, 3, 4}, r.U64Array4("owner"))
	require.NoError(t, r.Err())

	r = NewReader(buf[:31])
	r.U64Array4("owner")
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
}
