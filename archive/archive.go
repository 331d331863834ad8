// Package archive assembles the Archive tree from a decoded
// container: it owns the orchestrator that sniffs the root
// format, drives the XMI/AWS-HET framers and the IEBCOPY decoder, and the
// dump_json projection consumers use for observability.
package archive

import (
	"strings"

	"github.com/go-zseries/mvsunload/cache"
	"github.com/go-zseries/mvsunload/iebcopy"
	"github.com/go-zseries/mvsunload/internal/hash"
	"github.com/go-zseries/mvsunload/recfmt"
	"github.com/go-zseries/mvsunload/textunit"
)

// ContainerKind identifies the root container format an Archive was
// decoded from.
type ContainerKind uint8

const (
	ContainerUnknown ContainerKind = iota
	ContainerXMI
	ContainerAWS
	ContainerHET
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerXMI:
		return "XMI"
	case ContainerAWS:
		return "AWS"
	case ContainerHET:
		return "HET"
	default:
		return "Unknown"
	}
}

// Organization identifies a Dataset's structure.
type Organization uint8

const (
	OrgUnknown Organization = iota
	OrgPS
	OrgPO
	OrgPOE
)

func (o Organization) String() string {
	switch o {
	case OrgPS:
		return "PS"
	case OrgPO:
		return "PO"
	case OrgPOE:
		return "PO-E"
	default:
		return "Unknown"
	}
}

// Severity classifies a Warning's importance.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

// Warning is one non-fatal condition recorded during a decode pass: a
// byte-count mismatch, an orphaned member-data group, an unsupported but
// skippable feature. The core never writes to stdio; an external
// diagnostics sink decides how much of this list to surface.
type Warning struct {
	Severity Severity
	Offset   int
	Message  string
}

// ControlRecordMeta is the typed key/value bag preserved verbatim from an
// INMR01, INMR02 or INMR03 control record's text units, for observability
// in dump_json. INMR04 payloads are not carried into it; COPYR1/COPYR2
// are kept as the typed Dataset.CR1/CR2 records instead.
type ControlRecordMeta struct {
	Strings map[string]string
	Uints   map[string]uint64
	Raw     map[string][]byte
}

func newControlRecordMeta() ControlRecordMeta {
	return ControlRecordMeta{
		Strings: make(map[string]string),
		Uints:   make(map[string]uint64),
		Raw:     make(map[string][]byte),
	}
}

// metaFromUnits projects a decoded text-unit table into a
// ControlRecordMeta bag. String repetitions are dot-joined (the NETDATA
// convention for INMDSNAM qualifiers, harmless for single-valued keys);
// unknown keys land in Raw under their synthesized numeric name.
func metaFromUnits(units *textunit.Table) ControlRecordMeta {
	m := newControlRecordMeta()
	if units == nil {
		return m
	}
	for _, u := range units.Units() {
		if len(u.Values) == 0 {
			continue
		}
		switch u.Kind {
		case textunit.KindString:
			parts := make([]string, 0, len(u.Values))
			for _, v := range u.Values {
				parts = append(parts, v.Str)
			}
			m.Strings[u.Name] = strings.Join(parts, ".")
		case textunit.KindUint:
			m.Uints[u.Name] = u.Values[0].Uint
		case textunit.KindTimestamp:
			m.Strings[u.Name] = u.Values[0].Timestamp
		default:
			var raw []byte
			for _, v := range u.Values {
				raw = append(raw, v.Raw...)
			}
			m.Raw[u.Name] = raw
		}
	}
	return m
}

// Member is one PDS/PDSE directory entry and its reconstructed data.
type Member struct {
	Name      string
	TTR       [3]byte
	Alias     bool
	Halfwords byte
	Notes     byte
	Parms     []byte
	Stats     *iebcopy.IspfStats
	Data      []byte
	IsText    bool
}

// Dataset is one PS/PO/PO-E dataset, or the single Message an Archive may
// carry.
type Dataset struct {
	Name         string
	Organization Organization
	RECFM        recfmt.RECFM
	LRECL        int
	BLKSIZE      int
	TotalBytes   int
	Created      string

	// Volume and the sequence/generation numbers come from the VOL1/HDR1
	// label group on AWS/HET tapes; empty/zero for XMI containers.
	Volume           string
	VolumeSequence   int
	DatasetSequence  int
	GenerationNumber int

	// Members holds directory entries in TTR order for PO/PO-E; empty for
	// PS.
	Members []Member

	// Data is the reconstructed byte stream for a PS dataset; nil for
	// PO/PO-E (members carry their own streams instead).
	Data   []byte
	IsText bool

	ControlRecords ControlRecordMeta
	CR1            *iebcopy.ControlRecord1
	CR2            *iebcopy.ControlRecord2

	memberIndex map[uint64]int
}

// Member looks up a member by name in O(1) via a name-keyed index built
// once at decode time, rather than scanning.
func (d *Dataset) Member(name string) (*Member, bool) {
	if d.memberIndex == nil {
		return nil, false
	}
	i, ok := d.memberIndex[hash.NameID(name)]
	if !ok {
		return nil, false
	}
	return &d.Members[i], true
}

func (d *Dataset) buildIndex() {
	d.memberIndex = make(map[uint64]int, len(d.Members))
	for i, m := range d.Members {
		d.memberIndex[hash.NameID(m.Name)] = i
	}
}

// Archive is the root of one decoded container.
type Archive struct {
	Container ContainerKind
	Datasets  []Dataset
	Message   *Dataset

	// R01Meta/R02Meta/R03Meta preserve the INMR01/INMR02/INMR03 text
	// units verbatim for an XMI container, in document order, for the
	// dump_json projection. Nil/empty for AWS/HET.
	R01Meta *ControlRecordMeta
	R02Meta []ControlRecordMeta
	R03Meta []ControlRecordMeta

	SourceTimestamp string
	OriginNode      string
	OriginUser      string
	TargetNode      string
	TargetUser      string

	Warnings []Warning

	// Cache holds the optional lazily-decoded byte-stream cache. Nil
	// unless Config.CacheCompression selected a codec.
	Cache *cache.Cache

	datasetIndex map[uint64]int
}

// Dataset looks up a dataset by name in O(1) via a name-keyed index.
func (a *Archive) Dataset(name string) (*Dataset, bool) {
	if a.datasetIndex == nil {
		return nil, false
	}
	i, ok := a.datasetIndex[hash.NameID(name)]
	if !ok {
		return nil, false
	}
	return &a.Datasets[i], true
}

func (a *Archive) buildIndex() {
	a.datasetIndex = make(map[uint64]int, len(a.Datasets))
	for i := range a.Datasets {
		a.datasetIndex[hash.NameID(a.Datasets[i].Name)] = i
		a.Datasets[i].buildIndex()
	}
}

func (a *Archive) warn(severity Severity, offset int, message string) {
	a.Warnings = append(a.Warnings, Warning{Severity: severity, Offset: offset, Message: message})
}
