package cursor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-zseries/mvsunload/endian"
	"github.com/go-zseries/mvsunload/errs"
)

func TestU8SequentialReads(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03})
	for _, want := range []uint8{0x01, 0x02, 0x03} {
		got, err := c.U8()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.True(t, c.AtEOF())
}

func TestU16BigAndLittleEndian(t *testing.T) {
	c := New([]byte{0x01, 0x02})
	got, err := c.U16(endian.Big)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), got)

	c = New([]byte{0x01, 0x02})
	got, err = c.U16(endian.Little)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0201), got)
}

func TestU32BigEndian(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03, 0x04})
	got, err := c.U32(endian.Big)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), got)
}

func TestU24BENoSignExtension(t *testing.T) {
	c := New([]byte{0xFF, 0x00, 0x01})
	got, err := c.U24BE()
	require.NoError(t, err)
	require.Equal(t, uint32(0xFF0001), got)
}

func TestSliceOutOfRangeFailsTruncated(t *testing.T) {
	c := New([]byte{0x01, 0x02})
	_, err := c.Slice(3)
	require.ErrorIs(t, err, errs.ErrTruncated)

	var trunc *errs.Truncated
	require.ErrorAs(t, err, &trunc)
	require.Equal(t, 3, trunc.Need)
	require.Equal(t, 2, trunc.Have)
}

func TestPeekDoesNotAdvance(t *testing.T) {
	c := New([]byte{0xAA, 0xBB})
	_, err := c.PeekU8()
	require.NoError(t, err)
	require.Equal(t, 0, c.Pos())

	got, err := c.U8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xAA), got)

	peeked, err := c.PeekU16(endian.Big)
	require.ErrorIs(t, err, errs.ErrTruncated, "one byte left, PeekU16 must fail")
	require.Zero(t, peeked)
}

func TestSeekAndSkip(t *testing.T) {
	c := New([]byte{0, 1, 2, 3, 4})
	require.NoError(t, c.Seek(3))
	got, err := c.U8()
	require.NoError(t, err)
	require.Equal(t, uint8(3), got)

	require.NoError(t, c.Seek(0))
	require.NoError(t, c.Skip(2))
	require.Equal(t, 2, c.Pos())

	require.Error(t, c.Seek(-1))
	require.Error(t, c.Seek(100))
}

func TestRemainingAndLen(t *testing.T) {
	c := New([]byte{1, 2, 3, 4})
	require.Equal(t, 4, c.Len())
	require.Equal(t, 4, c.Remaining())
	_, err := c.Slice(1)
	require.NoError(t, err)
	require.Equal(t, 3, c.Remaining())
}
