// Package pool supplies pooled scratch buffers for the deblocking hot path:
// reassembling VS/VBS spanned records and concatenating a member's
// IEBCOPY data groups both append many short byte ranges into one buffer
// before handing it to the caller. Pooling that scratch space avoids an
// allocation per logical record on large archives.
package pool

import "sync"

// Default and maximum-retained sizes for the two buffer classes this module
// pools. Record buffers hold one physical block's worth of scratch space
// (bounded by typical BLKSIZE); member buffers accumulate a whole member's
// concatenated byte stream across possibly many directory-entry groups.
const (
	RecordBufferDefaultSize  = 32 * 1024       // 32KiB, comfortably above common BLKSIZE
	RecordBufferMaxThreshold = 256 * 1024      // 256KiB
	MemberBufferDefaultSize  = 64 * 1024       // 64KiB
	MemberBufferMaxThreshold = 8 * 1024 * 1024 // 8MiB
)

// ByteBuffer is a growable byte slice wrapper sized for reuse via sync.Pool.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given starting capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the buffer's current contents.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Len returns the number of bytes written since the last Reset.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Reset empties the buffer while retaining its backing array for reuse.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Append appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) Append(data []byte) {
	bb.B = append(bb.B, data...)
}

// Clone returns a freshly allocated copy of the buffer's contents, safe to
// retain after the ByteBuffer is returned to its pool.
func (bb *ByteBuffer) Clone() []byte {
	out := make([]byte, len(bb.B))
	copy(out, bb.B)
	return out
}

// BufferPool pools ByteBuffers of one size class, discarding buffers that
// have grown past maxThreshold instead of returning them to the pool.
type BufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewBufferPool creates a BufferPool whose buffers start at defaultSize and
// are discarded (not retained) once they exceed maxThreshold bytes.
func NewBufferPool(defaultSize, maxThreshold int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a reset ByteBuffer from the pool.
func (p *BufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool, or discards it if it grew too large.
func (p *BufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}
	bb.Reset()
	p.pool.Put(bb)
}

var (
	recordPool = NewBufferPool(RecordBufferDefaultSize, RecordBufferMaxThreshold)
	memberPool = NewBufferPool(MemberBufferDefaultSize, MemberBufferMaxThreshold)
)

// GetRecordBuffer retrieves a buffer sized for one physical block's worth
// of deblocking scratch space.
func GetRecordBuffer() *ByteBuffer { return recordPool.Get() }

// PutRecordBuffer returns a record-scratch buffer to its pool.
func PutRecordBuffer(bb *ByteBuffer) { recordPool.Put(bb) }

// GetMemberBuffer retrieves a buffer sized for accumulating one member's
// concatenated data across IEBCOPY directory-entry groups.
func GetMemberBuffer() *ByteBuffer { return memberPool.Get() }

// PutMemberBuffer returns a member-accumulation buffer to its pool.
func PutMemberBuffer(bb *ByteBuffer) { memberPool.Put(bb) }
