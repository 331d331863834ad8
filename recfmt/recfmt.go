// Package recfmt implements the RecordFormat engine:
// deblocking a physical block stream into logical records, and reblocking
// logical records back into physical blocks, for RECFM F, FB, V, VB, VS,
// VBS, and U, driven by a small enum-with-String pattern for each RECFM.
package recfmt

import (
	"github.com/go-zseries/mvsunload/endian"
	"github.com/go-zseries/mvsunload/errs"
	"github.com/go-zseries/mvsunload/internal/pool"
)

// RECFM identifies a z/OS record format.
type RECFM uint8

const (
	RECFMUnknown RECFM = iota
	RECFMF
	RECFMFB
	RECFMV
	RECFMVB
	RECFMVS
	RECFMVBS
	RECFMU
)

func (r RECFM) String() string {
	switch r {
	case RECFMF:
		return "F"
	case RECFMFB:
		return "FB"
	case RECFMV:
		return "V"
	case RECFMVB:
		return "VB"
	case RECFMVS:
		return "VS"
	case RECFMVBS:
		return "VBS"
	case RECFMU:
		return "U"
	default:
		return "Unknown"
	}
}

// Spanned reports whether this format may carry segmented (VS/VBS) records.
func (r RECFM) Spanned() bool {
	return r == RECFMVS || r == RECFMVBS
}

// Variable reports whether this format is RDW/BDW framed (V/VB/VS/VBS).
func (r RECFM) Variable() bool {
	switch r {
	case RECFMV, RECFMVB, RECFMVS, RECFMVBS:
		return true
	default:
		return false
	}
}

// segmentCode is the two-bit spanned-record segment indicator carried in
// an RDW's reserved field for VS/VBS data.
type segmentCode uint8

const (
	segComplete segmentCode = 0
	segFirst    segmentCode = 1
	segLast     segmentCode = 2
	segMiddle   segmentCode = 3
)

// Format pairs a RECFM with its LRECL/BLKSIZE, the unit the engine needs
// to deblock or reblock a stream.
type Format struct {
	RECFM   RECFM
	LRECL   int
	BLKSIZE int

	// MaxRecordBytes bounds any single logical record this engine
	// assembles, most importantly a VS/VBS spanned record reassembled
	// from many segments; zero means unbounded. A corrupt or hostile
	// stream that never closes a span would otherwise grow that buffer
	// without limit.
	MaxRecordBytes int
}

// checkRecordSize enforces f.MaxRecordBytes against a record the engine
// is about to hand back, raising a PolicyViolation instead of letting
// the caller materialize an unbounded buffer.
func checkRecordSize(f Format, n int) error {
	if f.MaxRecordBytes > 0 && n > f.MaxRecordBytes {
		return &errs.PolicyViolation{Policy: "max_record_bytes", Limit: f.MaxRecordBytes, Got: n}
	}
	return nil
}

// Deblock splits a single physical block into its constituent logical
// records. block is exactly one BDW-delimited unit for variable formats,
// or one fixed-size physical block for F/FB/U.
//
// Deblock does not itself perform spanned-segment reassembly across
// blocks; callers needing VS/VBS joins across block boundaries use
// DeblockStream, which tracks in-progress segments across BDWs.
func Deblock(f Format, block []byte) ([][]byte, error) {
	switch f.RECFM {
	case RECFMF, RECFMFB:
		return deblockFixed(f, block)
	case RECFMU:
		if err := checkRecordSize(f, len(block)); err != nil {
			return nil, err
		}
		return [][]byte{block}, nil
	case RECFMV, RECFMVB, RECFMVS, RECFMVBS:
		return deblockVariable(f, block)
	default:
		return nil, &errs.MalformedRecord{Reason: "unrecognized RECFM for deblock"}
	}
}

func deblockFixed(f Format, block []byte) ([][]byte, error) {
	if f.LRECL <= 0 {
		return nil, &errs.MalformedRecord{Reason: "fixed RECFM requires LRECL > 0"}
	}
	if err := checkRecordSize(f, f.LRECL); err != nil {
		return nil, err
	}
	if len(block)%f.LRECL != 0 {
		return nil, &errs.MalformedRecord{Reason: "block length is not a multiple of LRECL"}
	}
	n := len(block) / f.LRECL
	if f.BLKSIZE > 0 && n > f.BLKSIZE/f.LRECL {
		return nil, &errs.MalformedRecord{Reason: "block holds more records than BLKSIZE/LRECL allows"}
	}
	out := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, block[i*f.LRECL:(i+1)*f.LRECL])
	}
	return out, nil
}

// deblockFixedStream deblocks a flat concatenation of full fixed blocks:
// the stream is walked in BLKSIZE-aligned chunks (each at most
// BLKSIZE/LRECL records, with a short final block allowed), so the
// per-block record bound still holds across the whole stream. With no
// BLKSIZE to chunk against, the stream is treated as one unbounded block.
func deblockFixedStream(f Format, data []byte) ([][]byte, error) {
	if f.BLKSIZE <= 0 || f.LRECL <= 0 {
		return deblockFixed(f, data)
	}
	full := (f.BLKSIZE / f.LRECL) * f.LRECL
	if full <= 0 {
		return nil, &errs.MalformedRecord{Reason: "BLKSIZE smaller than LRECL"}
	}
	var records [][]byte
	for len(data) > 0 {
		chunk := data
		if len(chunk) > full {
			chunk = chunk[:full]
		}
		recs, err := deblockFixed(f, chunk)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
		data = data[len(chunk):]
	}
	return records, nil
}

// bdwRdwHeaderLen is the fixed 4-byte length of both BDW and RDW headers:
// a 2-byte big-endian length followed by 2 reserved bytes.
const bdwRdwHeaderLen = 4

// deblockVariable strips the leading BDW and walks the RDW-delimited
// records within it. block is expected to already be one BDW unit (the
// caller is responsible for having located block boundaries in the
// underlying stream, e.g. via HET framing or a flat concatenation of
// BLKSIZE-sized chunks).
func deblockVariable(f Format, block []byte) ([][]byte, error) {
	if len(block) < bdwRdwHeaderLen {
		return nil, &errs.Truncated{Need: bdwRdwHeaderLen, Have: len(block)}
	}
	bdwLen := int(endian.Big.Uint16(block[0:2]))
	if bdwLen != len(block) {
		return nil, &errs.MalformedRecord{Reason: "BDW length does not match block size"}
	}
	body := block[bdwRdwHeaderLen:]

	var records [][]byte
	var segment []byte
	inSegment := false

	for len(body) > 0 {
		if len(body) < bdwRdwHeaderLen {
			return nil, &errs.Truncated{Need: bdwRdwHeaderLen, Have: len(body)}
		}
		rdwLen := int(endian.Big.Uint16(body[0:2]))
		if rdwLen < bdwRdwHeaderLen || rdwLen > len(body) {
			return nil, &errs.MalformedRecord{Reason: "RDW length out of range"}
		}
		seg := segComplete
		if f.RECFM.Spanned() {
			seg = segmentCode(body[3])
		}
		payload := body[bdwRdwHeaderLen:rdwLen]

		switch seg {
		case segComplete:
			if inSegment {
				return nil, &errs.MalformedRecord{Reason: "complete segment while a spanned record is open"}
			}
			if err := checkRecordSize(f, len(payload)); err != nil {
				return nil, err
			}
			records = append(records, payload)
		case segFirst:
			if inSegment {
				return nil, &errs.MalformedRecord{Reason: "first segment while a spanned record is already open"}
			}
			segment = append([]byte(nil), payload...)
			inSegment = true
		case segMiddle:
			if !inSegment {
				return nil, &errs.MalformedRecord{Reason: "middle segment with no open spanned record"}
			}
			segment = append(segment, payload...)
			if err := checkRecordSize(f, len(segment)); err != nil {
				return nil, err
			}
		case segLast:
			if !inSegment {
				return nil, &errs.MalformedRecord{Reason: "last segment with no open spanned record"}
			}
			segment = append(segment, payload...)
			if err := checkRecordSize(f, len(segment)); err != nil {
				return nil, err
			}
			records = append(records, segment)
			segment = nil
			inSegment = false
		default:
			return nil, &errs.MalformedRecord{Reason: "unrecognized spanned-record segment code"}
		}

		body = body[rdwLen:]
	}
	if inSegment {
		return nil, &errs.MalformedRecord{Reason: "block ended with a spanned record left open"}
	}
	return records, nil
}

// DeblockStream deblocks an entire concatenated byte stream (many
// physical blocks back to back, as produced by joining HET/AWS logical
// records or an IEBCOPY control-record payload) into logical records.
// Unlike Deblock, which handles exactly one block and refuses to leave a
// VS/VBS segment open across the call boundary, DeblockStream carries
// spanned-record state across successive BDWs within the stream.
func DeblockStream(f Format, data []byte) ([][]byte, error) {
	switch f.RECFM {
	case RECFMF, RECFMFB:
		return deblockFixedStream(f, data)
	case RECFMU:
		if err := checkRecordSize(f, len(data)); err != nil {
			return nil, err
		}
		return [][]byte{data}, nil
	case RECFMV, RECFMVB, RECFMVS, RECFMVBS:
		return deblockVariableStream(f, data)
	default:
		return nil, &errs.MalformedRecord{Reason: "unrecognized RECFM for deblock"}
	}
}

// deblockVariableStream reassembles VS/VBS spanned records across
// successive BDWs using a pooled scratch buffer (internal/pool) instead
// of growing a fresh slice per spanned record, since a stream can open
// and close many spanned records across its BDWs.
func deblockVariableStream(f Format, data []byte) ([][]byte, error) {
	var records [][]byte
	segment := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(segment)
	inSegment := false

	for len(data) > 0 {
		if len(data) < bdwRdwHeaderLen {
			return nil, &errs.Truncated{Need: bdwRdwHeaderLen, Have: len(data)}
		}
		bdwLen := int(endian.Big.Uint16(data[0:2]))
		if bdwLen < bdwRdwHeaderLen || bdwLen > len(data) {
			return nil, &errs.MalformedRecord{Reason: "BDW length out of range"}
		}
		body := data[bdwRdwHeaderLen:bdwLen]

		for len(body) > 0 {
			if len(body) < bdwRdwHeaderLen {
				return nil, &errs.Truncated{Need: bdwRdwHeaderLen, Have: len(body)}
			}
			rdwLen := int(endian.Big.Uint16(body[0:2]))
			if rdwLen < bdwRdwHeaderLen || rdwLen > len(body) {
				return nil, &errs.MalformedRecord{Reason: "RDW length out of range"}
			}
			seg := segComplete
			if f.RECFM.Spanned() {
				seg = segmentCode(body[3])
			}
			payload := body[bdwRdwHeaderLen:rdwLen]

			switch seg {
			case segComplete:
				if inSegment {
					return nil, &errs.MalformedRecord{Reason: "complete segment while a spanned record is open"}
				}
				if err := checkRecordSize(f, len(payload)); err != nil {
					return nil, err
				}
				records = append(records, payload)
			case segFirst:
				if inSegment {
					return nil, &errs.MalformedRecord{Reason: "first segment while a spanned record is already open"}
				}
				segment.Reset()
				segment.Append(payload)
				inSegment = true
			case segMiddle:
				if !inSegment {
					return nil, &errs.MalformedRecord{Reason: "middle segment with no open spanned record"}
				}
				segment.Append(payload)
				if err := checkRecordSize(f, segment.Len()); err != nil {
					return nil, err
				}
			case segLast:
				if !inSegment {
					return nil, &errs.MalformedRecord{Reason: "last segment with no open spanned record"}
				}
				segment.Append(payload)
				if err := checkRecordSize(f, segment.Len()); err != nil {
					return nil, err
				}
				records = append(records, segment.Clone())
				segment.Reset()
				inSegment = false
			default:
				return nil, &errs.MalformedRecord{Reason: "unrecognized spanned-record segment code"}
			}

			body = body[rdwLen:]
		}
		data = data[bdwLen:]
	}
	if inSegment {
		return nil, &errs.MalformedRecord{Reason: "stream ended with a spanned record left open"}
	}
	return records, nil
}

// Reblock is the inverse of Deblock: it packs logical records into a
// single physical block (one BDW unit for variable formats, one
// fixed-size block for F/FB/U), the operation that round-trips with
// Deblock. For RECFMVS/RECFMVBS with a nonzero BLKSIZE, a record too
// large to fit a single BDW is re-segmented across as many BDW blocks as
// needed, with the result being the concatenation of those blocks: the
// same block-stream shape DeblockStream/deblockVariableStream consumes.
func Reblock(f Format, records [][]byte) ([]byte, error) {
	switch f.RECFM {
	case RECFMF, RECFMFB:
		return reblockFixed(f, records)
	case RECFMU:
		if len(records) != 1 {
			return nil, &errs.MalformedRecord{Reason: "RECFM U reblock requires exactly one record"}
		}
		return records[0], nil
	case RECFMV, RECFMVB, RECFMVS, RECFMVBS:
		return reblockVariable(f, records)
	default:
		return nil, &errs.MalformedRecord{Reason: "unrecognized RECFM for reblock"}
	}
}

func reblockFixed(f Format, records [][]byte) ([]byte, error) {
	if f.LRECL <= 0 {
		return nil, &errs.MalformedRecord{Reason: "fixed RECFM requires LRECL > 0"}
	}
	out := make([]byte, 0, len(records)*f.LRECL)
	for _, r := range records {
		if len(r) != f.LRECL {
			return nil, &errs.MalformedRecord{Reason: "record length does not match LRECL"}
		}
		out = append(out, r...)
	}
	return out, nil
}

func reblockVariable(f Format, records [][]byte) ([]byte, error) {
	if f.RECFM.Spanned() && f.BLKSIZE > 0 {
		return reblockSpanned(f, records)
	}
	return reblockUnspanned(records)
}

// reblockUnspanned packs every record into one BDW as a complete
// (unsegmented) RDW each, ignoring BLKSIZE: the shape V/VB use, and the
// shape VS/VBS fall back to when no BLKSIZE is given to split against.
func reblockUnspanned(records [][]byte) ([]byte, error) {
	body := make([]byte, 0)
	for _, r := range records {
		rdwLen := bdwRdwHeaderLen + len(r)
		rdw := make([]byte, bdwRdwHeaderLen, rdwLen)
		endian.Big.PutUint16(rdw[0:2], uint16(rdwLen))
		body = append(body, rdw...)
		body = append(body, r...)
	}
	bdwLen := bdwRdwHeaderLen + len(body)
	block := make([]byte, bdwRdwHeaderLen, bdwLen)
	endian.Big.PutUint16(block[0:2], uint16(bdwLen))
	block = append(block, body...)
	return block, nil
}

// reblockSpanned re-segments each record into one or more RDWs honoring
// BLKSIZE, opening a new BDW block whenever the current one has no room
// left for another RDW header, and setting each RDW's segment code
// (complete/first/middle/last) to match what deblockVariableStream
// expects to reassemble.
func reblockSpanned(f Format, records [][]byte) ([]byte, error) {
	maxBody := f.BLKSIZE - bdwRdwHeaderLen
	if maxBody <= bdwRdwHeaderLen {
		return nil, &errs.MalformedRecord{Reason: "BLKSIZE too small to hold a spanned RDW"}
	}

	var out, blockBody []byte
	flush := func() {
		if len(blockBody) == 0 {
			return
		}
		bdwLen := bdwRdwHeaderLen + len(blockBody)
		hdr := make([]byte, bdwRdwHeaderLen)
		endian.Big.PutUint16(hdr[0:2], uint16(bdwLen))
		out = append(out, hdr...)
		out = append(out, blockBody...)
		blockBody = nil
	}

	for _, r := range records {
		remaining := r
		first := true
		for {
			room := maxBody - len(blockBody)
			if room <= bdwRdwHeaderLen {
				flush()
				room = maxBody
			}
			chunkMax := room - bdwRdwHeaderLen

			var seg segmentCode
			var payload []byte
			if len(remaining) <= chunkMax {
				payload, remaining = remaining, nil
				if first {
					seg = segComplete
				} else {
					seg = segLast
				}
			} else {
				payload, remaining = remaining[:chunkMax], remaining[chunkMax:]
				if first {
					seg = segFirst
				} else {
					seg = segMiddle
				}
			}

			rdwLen := bdwRdwHeaderLen + len(payload)
			rdw := make([]byte, bdwRdwHeaderLen, rdwLen)
			endian.Big.PutUint16(rdw[0:2], uint16(rdwLen))
			rdw[3] = byte(seg)
			blockBody = append(blockBody, rdw...)
			blockBody = append(blockBody, payload...)

			first = false
			if len(remaining) == 0 {
				break
			}
		}
	}
	flush()
	return out, nil
}

// Unnum strips the trailing 8-byte sequence-number field from a slice of
// RECFM F/FB LRECL=80 logical records, when those 8 bytes (in EBCDIC, as
// ASCII digits/spaces per the caller's prior decode) are all digits or
// spaces. It is idempotent on already-stripped data.
func Unnum(records [][]byte) [][]byte {
	out := make([][]byte, len(records))
	for i, r := range records {
		out[i] = unnumOne(r)
	}
	return out
}

const seqFieldLen = 8

// unnumOne strips the sequence field when its 8 bytes are uniformly
// digits or spaces in either alphabet: ASCII for records already
// transcoded, EBCDIC (0xF0-0xF9, 0x40) for raw record bytes.
func unnumOne(record []byte) []byte {
	if len(record) <= seqFieldLen {
		return record
	}
	tail := record[len(record)-seqFieldLen:]
	ascii, ebcdic := true, true
	for _, b := range tail {
		if !(b == ' ' || (b >= '0' && b <= '9')) {
			ascii = false
		}
		if !(b == 0x40 || (b >= 0xF0 && b <= 0xF9)) {
			ebcdic = false
		}
	}
	if !ascii && !ebcdic {
		return record
	}
	return record[:len(record)-seqFieldLen]
}
