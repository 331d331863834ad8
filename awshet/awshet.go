// Package awshet implements the AWS/HET framer: physical
// block framing for AWSTAPE and its HET (Hercules Emulated Tape)
// superset, reassembly of NEWREC/ENDREC block runs into logical records,
// standard-label (VOL1/HDR1/HDR2/UHLn) recognition, and unlabeled-tape
// synthesis.
package awshet

import (
	"fmt"

	"github.com/go-zseries/mvsunload/compress"
	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/endian"
	"github.com/go-zseries/mvsunload/errs"
)

// Block flag bits.
const (
	flagNewRec uint8 = 0x80
	flagEndRec uint8 = 0x20
	flagEOF    uint8 = 0x40
)

// Low-byte compression bits; mutually exclusive.
const (
	compZlib  uint8 = 0x01
	compBzip2 uint8 = 0x02
)

// blockHeaderLen is the fixed 6-byte AWS/HET block header: 2-byte LE
// current size, 2-byte LE previous size, 2 flag bytes.
const blockHeaderLen = 6

// Block is one decoded physical block header plus its body.
type Block struct {
	CurSize  uint16
	PrevSize uint16
	Flags    uint8 // high byte: NEWREC/ENDREC/EOF
	CompByte uint8 // low byte: ZLIB/BZIP2 selector
	Body     []byte
}

func (b Block) isNewRec() bool { return b.Flags&flagNewRec != 0 }
func (b Block) isEndRec() bool { return b.Flags&flagEndRec != 0 }
func (b Block) isEOF() bool    { return b.Flags == flagEOF && len(b.Body) == 0 }

// ReadBlock reads one physical block starting at buf[0]. It returns the
// block and the number of bytes consumed. het selects HET interpretation
// of the header's low compression byte; an AWS tape must carry 0 there,
// and any other value fails with UnsupportedFeature rather than silently
// inflating a block AWS cannot legally contain.
func ReadBlock(buf []byte, het bool) (Block, int, error) {
	if len(buf) < blockHeaderLen {
		return Block{}, 0, &errs.Truncated{Need: blockHeaderLen, Have: len(buf)}
	}
	curSize := endian.Little.Uint16(buf[0:2])
	prevSize := endian.Little.Uint16(buf[2:4])
	flags := buf[4]
	compByte := buf[5]

	if flags == flagEOF {
		return Block{CurSize: curSize, PrevSize: prevSize, Flags: flags, CompByte: compByte}, blockHeaderLen, nil
	}

	total := blockHeaderLen + int(curSize)
	if len(buf) < total {
		return Block{}, 0, &errs.Truncated{Need: total, Have: len(buf)}
	}
	body := buf[blockHeaderLen:total]

	if compByte != 0 {
		if !het {
			return Block{}, 0, &errs.UnsupportedFeature{Feature: "AWS (non-HET) block compression"}
		}
		decoded, err := decompressBody(body, compByte)
		if err != nil {
			return Block{}, 0, err
		}
		body = decoded
	}

	return Block{CurSize: curSize, PrevSize: prevSize, Flags: flags, CompByte: compByte, Body: body}, total, nil
}

func decompressBody(body []byte, compByte uint8) ([]byte, error) {
	var bc compress.BlockCodec
	switch compByte {
	case compZlib:
		bc = compress.BlockCodecZlib
	case compBzip2:
		bc = compress.BlockCodecBzip2
	default:
		return nil, &errs.UnsupportedFeature{Feature: "HET block compression flag"}
	}
	codec, err := compress.GetCodec(bc)
	if err != nil {
		return nil, err
	}
	return codec.Decompress(body)
}

// File is one tape file: its reassembled logical records, and whatever
// standard-label fields were recognized at its head.
type File struct {
	Records []LogicalRecord
	Label   *StandardLabel
}

// LogicalRecord is the concatenation of block bodies from an inclusive
// NEWREC block up to and including the matching ENDREC block.
type LogicalRecord []byte

// ReadTape frames an entire AWS/HET byte stream into its constituent
// Files, stopping at the double tape mark that ends the tape. het selects
// HET interpretation of each block's compression byte; see ReadBlock.
func ReadTape(data []byte, het bool) ([]File, error) {
	var files []File
	var cur File
	var curRec LogicalRecord
	inRecord := false
	pos := 0
	consecutiveEOF := 0

	for pos < len(data) {
		blk, n, err := ReadBlock(data[pos:], het)
		if err != nil {
			return nil, err
		}
		pos += n

		if blk.isEOF() {
			consecutiveEOF++
			if inRecord {
				return nil, &errs.MalformedRecord{Offset: pos, Reason: "tape mark while a logical record was open"}
			}
			if len(cur.Records) > 0 || cur.Label != nil {
				files = append(files, cur)
				cur = File{}
			}
			if consecutiveEOF >= 2 {
				break
			}
			continue
		}
		consecutiveEOF = 0

		if blk.isNewRec() {
			if inRecord {
				return nil, &errs.MalformedRecord{Offset: pos, Reason: "NEWREC while a logical record was already open"}
			}
			curRec = append(LogicalRecord(nil), blk.Body...)
			inRecord = true
		} else {
			if !inRecord {
				return nil, &errs.MalformedRecord{Offset: pos, Reason: "continuation block with no open logical record"}
			}
			curRec = append(curRec, blk.Body...)
		}

		if blk.isEndRec() {
			if len(cur.Records) == 0 && cur.Label == nil {
				if label, ok := sniffStandardLabel(curRec); ok {
					cur.Label = &label
					inRecord = false
					continue
				}
			}
			cur.Records = append(cur.Records, curRec)
			inRecord = false
		}
	}
	if inRecord {
		return nil, &errs.MalformedRecord{Offset: pos, Reason: "tape ended with a logical record left open"}
	}
	if len(cur.Records) > 0 || cur.Label != nil {
		files = append(files, cur)
	}
	return files, nil
}

// StandardLabel holds the fields recovered from a VOL1/HDR1/HDR2 group.
// Created/Expires are calendar dates (YYYY-MM-DD) decoded from HDR1's
// zoned Julian fields. UHLn vendor label bodies are retained verbatim but
// not interpreted.
type StandardLabel struct {
	VolumeSerial     string
	DatasetName      string
	VolumeSequence   int
	DatasetSequence  int
	GenerationNumber int
	RECFM            string
	BLKSIZE          int
	LRECL            int
	Created          string
	Expires          string
	UHL              [][]byte
}

// sniffStandardLabel recognizes an 80-byte VOL1 record and, if present,
// decodes its volume serial. It does not parse HDR1/HDR2/UHLn; those stay
// in the File's records, where callers pass them to ParseHDR1/ParseHDR2.
func sniffStandardLabel(first LogicalRecord) (StandardLabel, bool) {
	if len(first) != 80 {
		return StandardLabel{}, false
	}
	cp, err := ebcdic.Lookup("cp1140")
	if err != nil {
		return StandardLabel{}, false
	}
	tag := cp.Decode(first[0:4])
	if tag != "VOL1" {
		return StandardLabel{}, false
	}
	return StandardLabel{
		VolumeSerial: cp.DecodeTrimSpace(first[4:10]),
	}, true
}

// ParseHDR1 extracts HDR1 fields: dataset name at [4:21], volume and
// dataset sequence numbers at [27:31] and [31:35] plus the generation
// number at [35:39] (all zoned decimal), Julian creation date at [41:47]
// and expiration date at [47:53], both a century digit followed by
// 2-digit year and 3-digit day-of-year (cyyddd).
func ParseHDR1(record LogicalRecord, label *StandardLabel, cp *ebcdic.CodePage) error {
	if len(record) != 80 {
		return &errs.MalformedRecord{Reason: "HDR1 record is not 80 bytes"}
	}
	label.DatasetName = cp.DecodeTrimSpace(record[4:21])

	volSeq, err := zonedDecimal(record[27:31])
	if err != nil {
		return err
	}
	label.VolumeSequence = volSeq

	dsSeq, err := zonedDecimal(record[31:35])
	if err != nil {
		return err
	}
	label.DatasetSequence = dsSeq

	genNum, err := zonedDecimal(record[35:39])
	if err != nil {
		return err
	}
	label.GenerationNumber = genNum

	created, err := zonedJulian(record[41:47])
	if err != nil {
		return err
	}
	label.Created = created

	expires, err := zonedJulian(record[47:53])
	if err != nil {
		return err
	}
	label.Expires = expires
	return nil
}

// zonedJulian decodes a 6-byte cyyddd HDR1 date field into a calendar
// YYYY-MM-DD string. The century byte is a zoned digit (0 = 1900,
// 1 = 2000) or a blank, in which case the two-digit year is windowed
// (00-69 = 2000s, 70-99 = 1900s). An all-zero or all-blank field, used by
// HDR1 to mean "no expiration date", decodes to the empty string.
func zonedJulian(b []byte) (string, error) {
	n, err := zonedDecimal(b[1:])
	if err != nil {
		return "", err
	}
	century := 0
	if b[0]&0x0F <= 9 {
		century = int(b[0] & 0x0F)
	}
	yy := n / 1000
	ddd := n % 1000
	if century == 0 && n == 0 {
		return "", nil
	}
	if ddd < 1 || ddd > 366 {
		return "", &errs.MalformedRecord{Reason: "HDR1 Julian date has an out-of-range day-of-year"}
	}
	year := 1900 + century*100 + yy
	if b[0] == 0x40 { // blank century byte
		if yy < 70 {
			year = 2000 + yy
		} else {
			year = 1900 + yy
		}
	}
	return julianDate(year, ddd), nil
}

// julianDate converts a year + day-of-year into YYYY-MM-DD, accounting
// for leap years.
func julianDate(year, dayOfYear int) string {
	leap := (year%4 == 0 && year%100 != 0) || year%400 == 0
	days := [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if leap {
		days[1] = 29
	}
	month := 1
	remaining := dayOfYear
	for _, d := range days {
		if remaining <= d {
			break
		}
		remaining -= d
		month++
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, remaining)
}

// ParseHDR2 extracts HDR2 fields: RECFM at [4], BLKSIZE at
// [5:10], LRECL at [10:15], both zoned-decimal.
func ParseHDR2(record LogicalRecord, label *StandardLabel, cp *ebcdic.CodePage) error {
	if len(record) != 80 {
		return &errs.MalformedRecord{Reason: "HDR2 record is not 80 bytes"}
	}
	label.RECFM = recfmFromHDR2Byte(record[4], cp)
	blksz, err := zonedDecimal(record[5:10])
	if err != nil {
		return err
	}
	label.BLKSIZE = blksz
	lrecl, err := zonedDecimal(record[10:15])
	if err != nil {
		return err
	}
	label.LRECL = lrecl
	return nil
}

// recfmFromHDR2Byte decodes HDR2's single EBCDIC record-format byte
// (F, V, U, or D).
func recfmFromHDR2Byte(b byte, cp *ebcdic.CodePage) string {
	return cp.Decode([]byte{b})
}

// zonedDecimal decodes an EBCDIC zoned-decimal digit string (each byte's
// low nibble is the decimal digit) into an integer.
func zonedDecimal(b []byte) (int, error) {
	n := 0
	for _, c := range b {
		d := c & 0x0F
		if d > 9 {
			return 0, &errs.MalformedRecord{Reason: "zoned-decimal field contains an invalid digit nibble"}
		}
		n = n*10 + int(d)
	}
	return n, nil
}

// SyntheticName synthesizes an unlabeled-tape dataset name, FILE0001,
// FILE0002, ..., for the nth (1-based) file on the tape.
func SyntheticName(n int) string {
	digits := [4]byte{'0', '0', '0', '0'}
	for i := 3; i >= 0 && n > 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return "FILE" + string(digits[:])
}
