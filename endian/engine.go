// Package endian provides the byte-order engine used by ByteCursor and
// every fixed-layout struct in this module (AWS/HET block headers, XMI
// text units, IEBCOPY control records, ISPF stats).
//
// Mainframe wire data is overwhelmingly big-endian: BDW/RDW lengths, text
// unit keys/counts/lengths, and TTRs are all big-endian. The one exception
// is the AWS/HET 6-byte block header, whose two length fields are defined
// as little-endian; callers pick the engine per field rather than per
// stream.
package endian

import "encoding/binary"

// Engine combines ByteOrder and AppendByteOrder from encoding/binary into
// one interface, satisfied directly by binary.BigEndian/binary.LittleEndian.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Big is the engine for every big-endian field in this module's formats.
var Big Engine = binary.BigEndian

// Little is the engine for the AWS/HET block header's length fields.
var Little Engine = binary.LittleEndian
