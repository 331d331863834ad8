// Package iebcopy decodes an IEBCOPY unload stream: the
// COPYR1/COPYR2 control records, the variable-length directory blocks
// (with packed ISPF stats), and the member-data control-header groups,
// reconstructing each member's byte stream keyed to its directory entry
// by TTR.
package iebcopy

import (
	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/endian"
	"github.com/go-zseries/mvsunload/errs"
	"github.com/go-zseries/mvsunload/internal/alias"
	"github.com/go-zseries/mvsunload/recfmt"
)

// copyr1EyeCatcherOffset is the offset within the first logical record
// where the COPYR1 3-byte eye-catcher must appear.
const copyr1EyeCatcherOffset = 8

var copyr1EyeCatcher = [3]byte{0xCA, 0x6D, 0x0F}

// Organization identifies a dataset's DS1DSORG classification as reported
// by COPYR1.
type Organization uint8

const (
	OrgUnknown Organization = iota
	OrgPO
	OrgPOE
)

func (o Organization) String() string {
	switch o {
	case OrgPO:
		return "PO"
	case OrgPOE:
		return "PO-E"
	default:
		return "Unknown"
	}
}

// ControlRecord1 is the decoded COPYR1 record.
type ControlRecord1 struct {
	Organization        Organization
	BLKL                uint16
	LRECL               uint16
	RECFM               recfmt.RECFM
	RECFMRaw            byte
	ReferenceDateJulian [3]byte

	// Raw fields retained for observability without further
	// interpretation. DeviceGeometry carries the DVA* device
	// characteristics block verbatim; the allocation fields
	// (SCEXT/SCALO/LSTAR/TRBAL) describe the source dataset's extents
	// and are only meaningful to a consumer reconstructing DASD layout.
	KEYL           byte
	OPTCD          byte
	SMSFG          byte
	DeviceGeometry [20]byte
	SCEXT          [3]byte
	SCALO          [4]byte
	LSTAR          [3]byte
	TRBAL          uint16
}

// ControlRecord2 is the decoded COPYR2 record: a 16-byte DEB header
// followed by sixteen 16-byte extent descriptors, captured raw.
type ControlRecord2 struct {
	DEBHeader [16]byte
	Extents   [16][16]byte
}

// LooksLikeCOPYR1 reports whether first carries the COPYR1 eye-catcher
// at its fixed offset, without doing any further field validation. The
// orchestrator uses this to decide whether an AWS/HET payload is a PDS
// unload stream when the container gives no explicit DSORG flag.
func LooksLikeCOPYR1(first []byte) bool {
	if len(first) < copyr1EyeCatcherOffset+3 {
		return false
	}
	var eye [3]byte
	copy(eye[:], first[copyr1EyeCatcherOffset:copyr1EyeCatcherOffset+3])
	return eye == copyr1EyeCatcher
}

// DecodeControlRecord1 reads COPYR1 from first, the first deblocked
// logical record of an IEBCOPY unload stream. It is split out from
// DecodeControlRecords so a caller that only has COPYR1 (COPYR2 missing
// or truncated) still gets a populated ControlRecord1 back alongside
// whatever error COPYR2 would have raised.
func DecodeControlRecord1(first []byte) (ControlRecord1, error) {
	var cr1 ControlRecord1

	if len(first) < copyr1EyeCatcherOffset+3 {
		return cr1, &errs.Truncated{Need: copyr1EyeCatcherOffset + 3, Have: len(first)}
	}
	var eye [3]byte
	copy(eye[:], first[copyr1EyeCatcherOffset:copyr1EyeCatcherOffset+3])
	if eye != copyr1EyeCatcher {
		return cr1, errs.ErrNotIEBCOPY
	}

	if len(first) < 44 {
		return cr1, &errs.Truncated{Need: 44, Have: len(first)}
	}
	dsorg := endian.Big.Uint16(first[11:13])
	switch dsorg {
	case 0x0200:
		cr1.Organization = OrgPO
	case 0x0208:
		cr1.Organization = OrgPOE
	default:
		cr1.Organization = OrgUnknown
	}
	cr1.KEYL = first[13]
	cr1.BLKL = endian.Big.Uint16(first[14:16])
	cr1.LRECL = endian.Big.Uint16(first[16:18])
	cr1.RECFMRaw = first[18]
	cr1.RECFM = TranslateRECFM(cr1.RECFMRaw)
	cr1.OPTCD = first[19]
	copy(cr1.ReferenceDateJulian[:], first[20:23])
	cr1.SMSFG = first[23]

	// The device-geometry block lies inside the 44-byte minimum; the
	// trailing allocation fields are captured raw when the record carries
	// them. IEBCOPY wrote shorter COPYR1 records on older releases, so
	// their absence is not an error.
	copy(cr1.DeviceGeometry[:], first[24:44])
	if len(first) >= 56 {
		copy(cr1.SCEXT[:], first[44:47])
		copy(cr1.SCALO[:], first[47:51])
		copy(cr1.LSTAR[:], first[51:54])
		cr1.TRBAL = endian.Big.Uint16(first[54:56])
	}

	return cr1, nil
}

// DecodeControlRecord2 reads COPYR2 from second, the second deblocked
// logical record of an IEBCOPY unload stream.
func DecodeControlRecord2(second []byte) (ControlRecord2, error) {
	var cr2 ControlRecord2
	if len(second) < 16+256 {
		return cr2, &errs.Truncated{Need: 16 + 256, Have: len(second)}
	}
	copy(cr2.DEBHeader[:], second[0:16])
	for i := 0; i < 16; i++ {
		copy(cr2.Extents[i][:], second[16+i*16:16+(i+1)*16])
	}
	return cr2, nil
}

// DecodeControlRecords reads COPYR1 from first and COPYR2 from second,
// the first two deblocked logical records of an IEBCOPY unload stream.
func DecodeControlRecords(first, second []byte) (ControlRecord1, ControlRecord2, error) {
	cr1, err := DecodeControlRecord1(first)
	if err != nil {
		return cr1, ControlRecord2{}, err
	}
	cr2, err := DecodeControlRecord2(second)
	if err != nil {
		return cr1, cr2, err
	}
	return cr1, cr2, nil
}

// TranslateRECFM decodes the DS1RECFM byte: bits 7-6
// format (10=F, 01=V, 11=U), bit 4 blocked, bit 3 spanned.
func TranslateRECFM(b byte) recfmt.RECFM {
	format := (b >> 6) & 0x03
	blocked := b&0x10 != 0
	spanned := b&0x08 != 0

	switch format {
	case 0x2: // 10
		if blocked {
			return recfmt.RECFMFB
		}
		return recfmt.RECFMF
	case 0x1: // 01
		switch {
		case spanned && blocked:
			return recfmt.RECFMVBS
		case spanned:
			return recfmt.RECFMVS
		case blocked:
			return recfmt.RECFMVB
		default:
			return recfmt.RECFMV
		}
	case 0x3: // 11
		return recfmt.RECFMU
	default:
		return recfmt.RECFMUnknown
	}
}

// directoryEndMarker is the all-0xFF name that terminates a directory.
var directoryEndMarker = [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// DirectoryEntry is one decoded directory-block entry.
type DirectoryEntry struct {
	Name      string
	TTR       [3]byte
	IsAlias   bool
	Notes     byte
	Halfwords byte
	Parms     []byte
	Stats     *IspfStats
}

// dirBlockMarkerLen is the 8-byte PDS/PDSE marker that opens every
// directory block, ahead of the key/used lengths and the
// last-member-name field.
const dirBlockMarkerLen = 8

// DecodeDirectoryBlock walks one directory-block logical record,
// returning its entries and whether the end-of-directory marker was
// reached.
func DecodeDirectoryBlock(block []byte, cp *ebcdic.CodePage) (entries []DirectoryEntry, done bool, err error) {
	if len(block) < dirBlockMarkerLen {
		return nil, false, &errs.Truncated{Need: dirBlockMarkerLen, Have: len(block)}
	}
	// block[0:8] is the PDS/PDSE marker; block[8:10] key length,
	// [10:12] used length, [12:20] last member name, none of which this
	// decoder needs beyond skipping past them to the packed entries.
	pos := dirBlockMarkerLen + 2 + 2 + 8
	if pos > len(block) {
		return nil, false, &errs.Truncated{Need: pos, Have: len(block)}
	}

	for pos < len(block) {
		if pos+8 > len(block) {
			return nil, false, &errs.Truncated{Need: pos + 8, Have: len(block)}
		}
		var name [8]byte
		copy(name[:], block[pos:pos+8])
		if name == directoryEndMarker {
			return entries, true, nil
		}
		pos += 8

		if pos+5 > len(block) {
			return nil, false, &errs.Truncated{Need: pos + 5, Have: len(block)}
		}
		var ttr [3]byte
		copy(ttr[:], block[pos:pos+3])
		pos += 3

		c := block[pos]
		pos++
		isAlias := c&0x80 != 0
		halfwords := c & 0x1F

		notes := block[pos]
		pos++

		parmsLen := int(halfwords) * 2
		if pos+parmsLen > len(block) {
			return nil, false, &errs.Truncated{Need: pos + parmsLen, Have: len(block)}
		}
		parms := block[pos : pos+parmsLen]
		pos += parmsLen

		entry := DirectoryEntry{
			Name:      cp.DecodeTrimSpace(name[:]),
			TTR:       ttr,
			IsAlias:   isAlias,
			Notes:     notes,
			Halfwords: halfwords,
			Parms:     parms,
		}
		if halfwords == 15 {
			stats, err := DecodeIspfStats(parms, cp)
			if err == nil {
				entry.Stats = &stats
			}
		}
		entries = append(entries, entry)
	}
	return entries, false, nil
}

// MemberGroup is one member-data control-header group.
type MemberGroup struct {
	ExtentNumber byte
	RecordCount  uint16
	TTR          [3]byte
	Data         []byte
}

// memberGroupHeaderLen is the 1+1+2+3+2 = 9-byte control header
// preceding each member-data group's payload.
const memberGroupHeaderLen = 9

// DecodeMemberGroup reads one member-data control-header group starting
// at buf[0], returning the group and the number of bytes consumed.
func DecodeMemberGroup(buf []byte) (MemberGroup, int, error) {
	if len(buf) < memberGroupHeaderLen {
		return MemberGroup{}, 0, &errs.Truncated{Need: memberGroupHeaderLen, Have: len(buf)}
	}
	var g MemberGroup
	g.ExtentNumber = buf[1]
	g.RecordCount = endian.Big.Uint16(buf[2:4])
	copy(g.TTR[:], buf[4:7])
	dataLen := int(endian.Big.Uint16(buf[7:9]))
	total := memberGroupHeaderLen + dataLen
	if len(buf) < total {
		return MemberGroup{}, 0, &errs.Truncated{Need: total, Have: len(buf)}
	}
	g.Data = buf[memberGroupHeaderLen:total]
	return g, total, nil
}

// DecodeMemberGroups walks the entire concatenated member-data payload
// (the deblocked logical records following the directory end marker,
// joined back to back) into its constituent control-header groups.
func DecodeMemberGroups(data []byte) ([]MemberGroup, error) {
	var groups []MemberGroup
	for len(data) > 0 {
		g, n, err := DecodeMemberGroup(data)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
		data = data[n:]
	}
	return groups, nil
}

// AssembleMembers walks member-data groups, concatenating groups that
// share a TTR run in order, and resolves each run's owning member name
// through tracker.
func AssembleMembers(groups []MemberGroup, tracker *alias.Tracker) map[string][]byte {
	byName := make(map[string][]byte)
	for _, g := range groups {
		name, ok := tracker.Owner(g.TTR)
		if !ok {
			name = tracker.TrackOrphanData(g.TTR)
		}
		byName[name] = append(byName[name], g.Data...)
	}
	return byName
}
