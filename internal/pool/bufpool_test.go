package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferAppendAndReset(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.Append([]byte("hello"))
	require.Equal(t, "hello", string(bb.Bytes()))
	require.Equal(t, 5, bb.Len())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
}

func TestByteBufferClone(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.Append([]byte("abc"))
	cloned := bb.Clone()

	bb.Append([]byte("def"))
	require.Equal(t, "abc", string(cloned), "Clone must not alias the live buffer")
}

func TestBufferPoolDiscardsOversizedBuffers(t *testing.T) {
	p := NewBufferPool(4, 8)

	bb := p.Get()
	bb.Append(make([]byte, 100))
	p.Put(bb)

	got := p.Get()
	require.LessOrEqual(t, cap(got.B), 8, "pool must not retain oversized buffers")
}

func TestRecordAndMemberBufferHelpers(t *testing.T) {
	rb := GetRecordBuffer()
	rb.Append([]byte("block"))
	PutRecordBuffer(rb)

	mb := GetMemberBuffer()
	mb.Append([]byte("member"))
	PutMemberBuffer(mb)
}
