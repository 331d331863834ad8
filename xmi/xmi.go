// Package xmi implements the XMI/NETDATA control-record framer:
// INMR01..INMR07 control records and their text units, INMCOPY segment
// reassembly, and AMSCIPHR rejection.
package xmi

import (
	"strings"

	"github.com/go-zseries/mvsunload/cursor"
	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/errs"
	"github.com/go-zseries/mvsunload/textunit"
)

// tagLen is the fixed 6-byte control-record tag ("INMRxx"), in EBCDIC or
// ASCII; see controlTag.
const tagLen = 6

// FileDescriptor is one INMR02 entry: the parsed text units plus the
// fields the orchestrator needs directly.
type FileDescriptor struct {
	Units     *textunit.Table
	Utility   string
	DSNAM     string
	IsMessage bool

	// SegmentIndex is the index into Decoded.Segments holding this
	// descriptor's data stream, or -1 if none was ever opened for it (the
	// IEBCOPY-utility half of a PO dataset's descriptor pair carries no
	// data of its own; the INMCOPY half does).
	SegmentIndex int
}

// Decoded is the full result of framing one XMI stream.
type Decoded struct {
	R01 *textunit.Table

	// Descriptors holds every INMR02 in document order. A PO dataset
	// contributes two consecutive descriptors (IEBCOPY then INMCOPY);
	// the orchestrator correlates them.
	Descriptors []FileDescriptor

	// R03 holds every INMR03's text units in document order, one per
	// data stream.
	R03 []*textunit.Table

	// R04 captures each INMR04 installation-exit payload opaquely.
	R04 [][]byte

	// Segments holds the reassembled INMCOPY payload bytes, one entry
	// per data stream, in the order their owning INMR03 appeared.
	Segments [][]byte

	Terminated bool
}

// Decode frames an entire XMI control-record stream. records is the
// sequence of logical records already produced by the outer transport
// (or by the 80-byte line framing used for a standalone .xmi file).
func Decode(records [][]byte, cp *ebcdic.CodePage) (*Decoded, error) {
	d := &Decoded{}
	var curSegment []byte
	inSegment := false

	// flush closes the open INMCOPY segment and assigns it to the next
	// descriptor still waiting for data. All INMR02s precede the data
	// streams, so segments pair with data-owning descriptors in document
	// order; the IEBCOPY half of a PO pair never owns one.
	flush := func() {
		if !inSegment {
			return
		}
		assigned := false
		for j := range d.Descriptors {
			if d.Descriptors[j].Utility == "INMCOPY" && d.Descriptors[j].SegmentIndex < 0 {
				d.Descriptors[j].SegmentIndex = len(d.Segments)
				assigned = true
				break
			}
		}
		if !assigned {
			for j := range d.Descriptors {
				if d.Descriptors[j].SegmentIndex < 0 {
					d.Descriptors[j].SegmentIndex = len(d.Segments)
					break
				}
			}
		}
		d.Segments = append(d.Segments, curSegment)
		curSegment = nil
		inSegment = false
	}

	for _, rec := range records {
		if d.Terminated {
			break
		}
		tag, isControl := controlTag(rec, cp)
		if !isControl {
			if !inSegment {
				return nil, &errs.MalformedRecord{Reason: "data record with no open INMCOPY segment"}
			}
			curSegment = append(curSegment, rec...)
			continue
		}

		c := cursor.New(rec[tagLen:])
		switch tag {
		case "INMR01":
			if d.R01 != nil {
				return nil, &errs.MalformedRecord{Reason: "more than one INMR01 control record"}
			}
			units, err := textunit.Decode(c, -1, cp)
			if err != nil {
				return nil, err
			}
			d.R01 = units

		case "INMR02":
			flush()
			units, err := textunit.Decode(c, -1, cp)
			if err != nil {
				return nil, err
			}
			utility, _ := units.String("INMUTILN")
			if utility == "AMSCIPHR" {
				return nil, &errs.UnsupportedUtility{Name: "AMSCIPHR"}
			}
			_, hasDSNAM := units.Get("INMDSNAM")
			fd := FileDescriptor{
				Units:        units,
				Utility:      utility,
				DSNAM:        strings.Join(units.StringValues("INMDSNAM"), "."),
				IsMessage:    utility == "INMCOPY" && !hasDSNAM,
				SegmentIndex: -1,
			}
			d.Descriptors = append(d.Descriptors, fd)

		case "INMR03":
			flush()
			units, err := textunit.Decode(c, -1, cp)
			if err != nil {
				return nil, err
			}
			d.R03 = append(d.R03, units)
			inSegment = true
			curSegment = []byte{}

		case "INMR04":
			d.R04 = append(d.R04, append([]byte(nil), rec[tagLen:]...))

		case "INMR06":
			flush()
			d.Terminated = true

		case "INMR07":
			// Ignored notification record.

		default:
			return nil, &errs.MalformedRecord{Reason: "unrecognized control record tag " + tag}
		}
	}

	if !d.Terminated {
		return nil, &errs.MalformedRecord{Reason: "XMI stream ended without an INMR06 terminator"}
	}
	if d.R01 == nil {
		return nil, &errs.MalformedRecord{Reason: "XMI stream carries no INMR01 control record"}
	}
	return d, nil
}

// controlTag reports whether rec opens with a recognized 6-byte "INMRxx"
// tag, and which one. TRANSMIT writes the tag in EBCDIC on the wire; a
// caller that pre-translated the stream (or a hand-built test fixture)
// presents it in ASCII, so both spellings are accepted.
func controlTag(rec []byte, cp *ebcdic.CodePage) (string, bool) {
	if len(rec) < tagLen {
		return "", false
	}
	tag := string(rec[:tagLen])
	if tag[:4] != "INMR" {
		tag = cp.Decode(rec[:tagLen])
		if len(tag) < 4 || tag[:4] != "INMR" {
			return "", false
		}
	}
	switch tag {
	case "INMR01", "INMR02", "INMR03", "INMR04", "INMR06", "INMR07":
		return tag, true
	default:
		return "", false
	}
}
