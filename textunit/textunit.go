// Package textunit implements the IBM text-unit decoder: the
// tagged-length key/count/value encoding XMI control records use to carry
// everything from LRECL to FROM/TO node names.
//
// Layout per unit: a 2-byte big-endian key, a 2-byte big-endian count n,
// then n repetitions of (2-byte big-endian length, value bytes). A
// registry maps known key codes to how their values should be
// interpreted; unknown keys round-trip as raw bytes under their numeric
// key, following a "read what you know, preserve what you don't" shape.
package textunit

import (
	"fmt"

	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/endian"
	"github.com/go-zseries/mvsunload/errs"
)

// Kind identifies how a text unit's value bytes should be interpreted.
type Kind uint8

const (
	// KindRaw preserves value bytes unexamined, the fallback for any key
	// absent from the registry, and for keys whose only sensible
	// representation is opaque bytes.
	KindRaw Kind = iota
	// KindString interprets value bytes as an EBCDIC string.
	KindString
	// KindTimestamp interprets value bytes as an EBCDIC-digit
	// YYYYMMDDhhmmss timestamp (INMCREAT/INMFTIME).
	KindTimestamp
	// KindUint interprets value bytes as an unsigned big-endian integer.
	KindUint
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindTimestamp:
		return "Timestamp"
	case KindUint:
		return "Uint"
	default:
		return "Raw"
	}
}

// keyInfo names a known key and its value Kind.
type keyInfo struct {
	name string
	kind Kind
}

// registry maps known text-unit key codes to their name and Kind. Keys
// absent from this table decode as KindRaw under a synthesized
// INMKEYxxxx name built from their numeric code.
//
// Numeric codes below follow the published IBM NETDATA/XMIT text-unit key
// assignments (z/OS program management documentation); no example in this
// module's reference corpus carries this table, so it is reproduced from
// that public format description rather than grounded on retrieved code.
var registry = map[uint16]keyInfo{
	0x0002: {"INMDDNAM", KindString},
	0x0003: {"INMDSNAM", KindString},
	0x0004: {"INMMEMBR", KindString},
	0x0006: {"INMRECFM", KindString},
	0x0007: {"INMLRECL", KindUint},
	0x0008: {"INMBLKSZ", KindUint},
	0x0009: {"INMDIR", KindUint},
	0x000A: {"INMDSORG", KindUint},
	0x000B: {"INMNUMF", KindUint},
	0x000C: {"INMUTILN", KindString},
	0x0022: {"INMTYPE", KindUint},
	0x0028: {"INMFNODE", KindString},
	0x0029: {"INMFUID", KindString},
	0x002A: {"INMTNODE", KindString},
	0x002B: {"INMTUID", KindString},
	0x002C: {"INMFTIME", KindTimestamp},
	0x002D: {"INMCREAT", KindTimestamp},
	0x002E: {"INMFVERS", KindString},
	0x0042: {"INMSIZE", KindUint},
	0x0049: {"INMFACK", KindString},
	0x0070: {"INMUSERP", KindRaw},
}

// Value holds one decoded text-unit value: a repetition slot under a
// given key. Multi-valued units (count > 1) keep every repetition.
type Value struct {
	Key  uint16
	Name string
	Kind Kind

	Str       string
	Uint      uint64
	Timestamp string
	Raw       []byte
}

// Unit is one fully decoded text unit: a key plus all of its value
// repetitions.
type Unit struct {
	Key    uint16
	Name   string
	Kind   Kind
	Values []Value
}

// Table is an ordered collection of decoded text units, and the typed
// key/value bag ControlRecordMeta is built from.
type Table struct {
	units []Unit
}

// Units returns the decoded units in on-wire order.
func (t *Table) Units() []Unit { return t.units }

// Get returns the first unit with the given key name, if present.
func (t *Table) Get(name string) (Unit, bool) {
	for _, u := range t.units {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

// String returns the first string value under the given key name.
func (t *Table) String(name string) (string, bool) {
	u, ok := t.Get(name)
	if !ok || len(u.Values) == 0 {
		return "", false
	}
	return u.Values[0].Str, true
}

// StringValues returns every string repetition under the given key name,
// in on-wire order. NETDATA sends INMDSNAM as one repetition per
// dataset-name qualifier; callers join them with dots.
func (t *Table) StringValues(name string) []string {
	u, ok := t.Get(name)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(u.Values))
	for _, v := range u.Values {
		out = append(out, v.Str)
	}
	return out
}

// Uint returns the first unsigned-integer value under the given key name.
func (t *Table) Uint(name string) (uint64, bool) {
	u, ok := t.Get(name)
	if !ok || len(u.Values) == 0 {
		return 0, false
	}
	return u.Values[0].Uint, true
}

type reader interface {
	U16(endian.Engine) (uint16, error)
	Slice(int) ([]byte, error)
}

// Decode reads text units from c until count units have been consumed, or,
// when count < 0, until fewer than two bytes remain for another key. The
// XMI framer passes a negative count, decoding every unit that follows a
// control record's tag.
func Decode(c reader, count int, cp *ebcdic.CodePage) (*Table, error) {
	t := &Table{}
	for i := 0; count < 0 || i < count; i++ {
		key, err := c.U16(endian.Big)
		if err != nil {
			if count < 0 {
				break
			}
			return nil, err
		}
		n, err := c.U16(endian.Big)
		if err != nil {
			return nil, err
		}
		info, known := registry[key]
		if !known {
			info = keyInfo{name: fmt.Sprintf("INMKEY%04X", key), kind: KindRaw}
		}
		unit := Unit{Key: key, Name: info.name, Kind: info.kind}
		for j := uint16(0); j < n; j++ {
			length, err := c.U16(endian.Big)
			if err != nil {
				return nil, err
			}
			raw, err := c.Slice(int(length))
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(raw, info.kind, cp)
			if err != nil {
				return nil, err
			}
			v.Key, v.Name, v.Kind = key, info.name, info.kind
			unit.Values = append(unit.Values, v)
		}
		t.units = append(t.units, unit)
	}
	return t, nil
}

func decodeValue(raw []byte, kind Kind, cp *ebcdic.CodePage) (Value, error) {
	switch kind {
	case KindString:
		return Value{Str: cp.Decode(raw), Raw: raw}, nil
	case KindUint:
		var n uint64
		for _, b := range raw {
			n = n<<8 | uint64(b)
		}
		return Value{Uint: n, Raw: raw}, nil
	case KindTimestamp:
		ts, err := decodePackedTimestamp(raw, cp)
		if err != nil {
			return Value{}, err
		}
		return Value{Timestamp: ts, Raw: raw}, nil
	default:
		return Value{Raw: raw}, nil
	}
}

// decodePackedTimestamp decodes an EBCDIC-digit YYYYMMDDhhmmss (or a
// shorter prefix of it) timestamp string into the same layout, validating
// that every byte is an EBCDIC digit.
func decodePackedTimestamp(raw []byte, cp *ebcdic.CodePage) (string, error) {
	s := cp.Decode(raw)
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", &errs.MalformedRecord{Reason: "text unit timestamp value is not all digits"}
		}
	}
	return s, nil
}
