// Package ebcdic implements EbcdicCodec: configurable,
// table-driven, total EBCDIC-to-Unicode transcoding used for label fields,
// text-unit string values, member/dataset names, ISPF owner IDs, and
// (conditionally) member payload bodies.
//
// No example in this module's reference corpus carries an EBCDIC
// dependency (golang.org/x/text's charmap package does not ship cp1140),
// so this codec is hand-written against the stdlib: one flat array
// indexed by byte value plus a generated inverse for the encode
// direction.
package ebcdic

import (
	"fmt"
	"strings"
	"sync"
)

// CodePage is a total, bijective EBCDIC<->Unicode mapping: every byte
// decodes to a legal scalar, and every decoded scalar re-encodes to its
// original byte, a 256-entry surjective mapping in each direction.
type CodePage struct {
	name   string
	decode [256]rune
	encode map[rune]byte
}

func newCodePage(name, table string) *CodePage {
	runes := []rune(table)
	if len(runes) != 256 {
		panic(fmt.Sprintf("ebcdic: code page %q table has %d entries, want 256", name, len(runes)))
	}
	cp := &CodePage{name: name, encode: make(map[rune]byte, 256)}
	for i, r := range runes {
		cp.decode[i] = r
		cp.encode[r] = byte(i)
	}
	return cp
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*CodePage{
		"cp1140": newCodePage("cp1140", cp1140Table),
		"cp037":  newCodePage("cp037", cp037Table),
	}
)

// DefaultCodePage is the code page used when none is configured.
const DefaultCodePage = "cp1140"

// Lookup returns the named code page (case-insensitive), or an error if it
// is not registered.
func Lookup(name string) (*CodePage, error) {
	if name == "" {
		name = DefaultCodePage
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	cp, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("ebcdic: unknown code page %q", name)
	}
	return cp, nil
}

// Name returns the code page's registered name.
func (cp *CodePage) Name() string { return cp.name }

// Decode transcodes EBCDIC bytes to a Go string, one byte per rune. It
// never fails: the table is total.
func (cp *CodePage) Decode(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(cp.decode[c])
	}
	return sb.String()
}

// Encode transcodes a Go string back to EBCDIC bytes. It fails with an
// error naming the offending rune if s contains a scalar outside this code
// page's 256-rune range.
func (cp *CodePage) Encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := cp.encode[r]
		if !ok {
			return nil, fmt.Errorf("ebcdic: rune %q has no %s encoding", r, cp.name)
		}
		out = append(out, b)
	}
	return out, nil
}

// DecodeTrimSpace decodes b and trims trailing U+0020 spaces (EBCDIC
// 0x40); other whitespace and NUL bytes are kept. This is the
// standard treatment for fixed-width EBCDIC name fields (dataset names,
// member names, HDR1/HDR2 fields).
func (cp *CodePage) DecodeTrimSpace(b []byte) string {
	return strings.TrimRight(cp.Decode(b), " ")
}
