// Package cursor provides ByteCursor, a positioned reader over an
// in-memory buffer with bounds-checked integer and slice primitives.
// The XMI framer reads each control record's text units through one, by
// repeated small fixed-size reads off a Cursor; the AWS/HET block header
// and the IEBCOPY control/directory records are sliced directly instead.
//
// Unlike bytes.Reader, Cursor never returns io.EOF for a short read: an
// out-of-range read fails with *errs.Truncated carrying the offset, the
// number of bytes requested, and the number available, so callers can
// report exactly where a stream ran out.
package cursor

import (
	"github.com/go-zseries/mvsunload/endian"
	"github.com/go-zseries/mvsunload/errs"
)

// Cursor is a positioned reader over a fixed in-memory buffer.
type Cursor struct {
	buf []byte
	pos int
}

// New wraps buf in a Cursor positioned at offset 0.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current absolute offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// AtEOF reports whether the cursor has consumed the entire buffer.
func (c *Cursor) AtEOF() bool { return c.pos >= len(c.buf) }

// Seek repositions the cursor to an absolute offset. It fails if off lies
// outside [0, Len()].
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.buf) {
		return &errs.Truncated{Offset: off, Need: 0, Have: len(c.buf)}
	}
	c.pos = off
	return nil
}

// Skip advances the cursor by n bytes without returning them.
func (c *Cursor) Skip(n int) error {
	_, err := c.Slice(n)
	return err
}

// need validates that n bytes are available starting at the current
// position, returning a *errs.Truncated if not.
func (c *Cursor) need(n int) error {
	if n < 0 || c.pos+n > len(c.buf) {
		return &errs.Truncated{Offset: c.pos, Need: n, Have: len(c.buf) - c.pos}
	}
	return nil
}

// Slice reads n raw bytes and advances the cursor. The returned slice
// aliases the underlying buffer; callers that retain it past further
// mutation of the source buffer should copy it.
func (c *Cursor) Slice(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// PeekSlice reads n raw bytes without advancing the cursor.
func (c *Cursor) PeekSlice(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	return c.buf[c.pos : c.pos+n], nil
}

// U8 reads one unsigned byte and advances the cursor.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.Slice(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a 2-byte unsigned integer using engine's byte order.
func (c *Cursor) U16(engine endian.Engine) (uint16, error) {
	b, err := c.Slice(2)
	if err != nil {
		return 0, err
	}
	return engine.Uint16(b), nil
}

// U32 reads a 4-byte unsigned integer using engine's byte order.
func (c *Cursor) U32(engine endian.Engine) (uint32, error) {
	b, err := c.Slice(4)
	if err != nil {
		return 0, err
	}
	return engine.Uint32(b), nil
}

// U24BE reads a 3-byte big-endian unsigned integer (used for TTRs and
// Julian-date fields), with no implicit sign extension.
func (c *Cursor) U24BE() (uint32, error) {
	b, err := c.Slice(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// PeekU8 reads one unsigned byte without advancing the cursor.
func (c *Cursor) PeekU8() (uint8, error) {
	b, err := c.PeekSlice(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// PeekU16 reads a 2-byte unsigned integer without advancing the cursor.
func (c *Cursor) PeekU16(engine endian.Engine) (uint16, error) {
	b, err := c.PeekSlice(2)
	if err != nil {
		return 0, err
	}
	return engine.Uint16(b), nil
}
