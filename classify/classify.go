// Package classify implements text/binary classification and sequence-
// number stripping for terminal byte streams.
package classify

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/recfmt"
)

// Kind is the classification result for one byte stream.
type Kind uint8

const (
	Binary Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Text {
		return "Text"
	}
	return "Binary"
}

// sniffWindow is how much of a stream classification examines.
const sniffWindow = 4096

// Options controls classification policy (mirrors Config's ForceText/
// BinaryOnly fields, passed explicitly so this package has no dependency
// on config).
type Options struct {
	ForceText  bool
	BinaryOnly bool
	RECFM      recfmt.RECFM
	LRECL      int
}

// Classify decides Text or Binary for raw (not yet EBCDIC-decoded) bytes,
// per a three-rule cascade.
func Classify(raw []byte, opts Options, cp *ebcdic.CodePage) Kind {
	if opts.BinaryOnly {
		return Binary
	}
	if opts.ForceText {
		return Text
	}

	window := raw
	if len(window) > sniffWindow {
		window = window[:sniffWindow]
	}
	decoded := cp.Decode(window)

	if isFixedShortRecord(opts) && printableRatio(decoded) >= 0.95 {
		return Text
	}

	mt := mimetype.Detect([]byte(decoded))
	if isTextMIME(mt.String()) {
		return Text
	}
	return Binary
}

func isFixedShortRecord(opts Options) bool {
	return (opts.RECFM == recfmt.RECFMF || opts.RECFM == recfmt.RECFMFB) && opts.LRECL > 0 && opts.LRECL <= 255
}

func printableRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	printable := 0
	total := 0
	for _, r := range s {
		total++
		if r == '\t' || r == '\n' || r == '\r' || (r >= 0x20 && r < 0x7F) {
			printable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(printable) / float64(total)
}

func isTextMIME(mimeType string) bool {
	for i := 0; i < len(mimeType); i++ {
		if mimeType[i] == '/' {
			return mimeType[:i] == "text"
		}
		if mimeType[i] == ';' {
			break
		}
	}
	return false
}

// Unnum strips the trailing 8-byte sequence-number field from raw,
// fixed-80 text data (delegated to recfmt.Unnum once the
// stream has been deblocked into LRECL-sized chunks).
func Unnum(records [][]byte, recfm recfmt.RECFM, lrecl int, enabled bool) [][]byte {
	if !enabled || lrecl != 80 || (recfm != recfmt.RECFMF && recfm != recfmt.RECFMFB) {
		return records
	}
	return recfmt.Unnum(records)
}
