package archive

import (
	"encoding/hex"
	"encoding/json"

	"github.com/go-zseries/mvsunload/iebcopy"
)

// DumpOptions controls the dump_json projection.
type DumpOptions struct {
	// Text includes each text-classified stream's decoded contents under
	// a "contents" key.
	Text bool
}

// DumpJSON renders the Archive as a JSON projection of the decoded tree:
// INMR01/INMR02/INMR03 objects for XMI, plus a "file" map keyed by
// dataset name for every container kind; PO datasets nest
// COPYR1/COPYR2/members.
func (a *Archive) DumpJSON(opts DumpOptions) ([]byte, error) {
	root := map[string]any{
		"container": a.Container.String(),
	}
	if a.SourceTimestamp != "" {
		root["source_timestamp"] = a.SourceTimestamp
	}
	if a.OriginNode != "" || a.OriginUser != "" {
		root["from"] = map[string]string{"node": a.OriginNode, "user": a.OriginUser}
	}
	if a.TargetNode != "" || a.TargetUser != "" {
		root["to"] = map[string]string{"node": a.TargetNode, "user": a.TargetUser}
	}

	if a.R01Meta != nil {
		root["INMR01"] = dumpMeta(*a.R01Meta)
	}
	if len(a.R02Meta) > 0 {
		r02 := make([]map[string]any, len(a.R02Meta))
		for i, m := range a.R02Meta {
			r02[i] = dumpMeta(m)
		}
		root["INMR02"] = r02
	}
	if len(a.R03Meta) > 0 {
		r03 := make([]map[string]any, len(a.R03Meta))
		for i, m := range a.R03Meta {
			r03[i] = dumpMeta(m)
		}
		root["INMR03"] = r03
	}

	files := make(map[string]any, len(a.Datasets))
	for i := range a.Datasets {
		files[a.Datasets[i].Name] = dumpDataset(&a.Datasets[i], opts)
	}
	root["file"] = files

	if a.Message != nil {
		root["message"] = dumpDataset(a.Message, opts)
	}

	if len(a.Warnings) > 0 {
		warnings := make([]map[string]any, len(a.Warnings))
		for i, w := range a.Warnings {
			warnings[i] = map[string]any{
				"severity": w.Severity.String(),
				"offset":   w.Offset,
				"message":  w.Message,
			}
		}
		root["warnings"] = warnings
	}

	return json.Marshal(root)
}

// dumpMeta flattens a ControlRecordMeta bag into one JSON object; keys
// are disjoint across the three maps, with raw values hex-escaped.
func dumpMeta(m ControlRecordMeta) map[string]any {
	out := make(map[string]any, len(m.Strings)+len(m.Uints)+len(m.Raw))
	for k, v := range m.Strings {
		out[k] = v
	}
	for k, v := range m.Uints {
		out[k] = v
	}
	for k, v := range m.Raw {
		out[k] = hex.EncodeToString(v)
	}
	return out
}

func dumpDataset(ds *Dataset, opts DumpOptions) map[string]any {
	out := map[string]any{
		"organization": ds.Organization.String(),
		"recfm":        ds.RECFM.String(),
		"lrecl":        ds.LRECL,
		"blksize":      ds.BLKSIZE,
		"total_bytes":  ds.TotalBytes,
	}
	if ds.Created != "" {
		out["created"] = ds.Created
	}
	if ds.Volume != "" {
		out["volume"] = ds.Volume
		out["volume_seq"] = ds.VolumeSequence
		out["dataset_seq"] = ds.DatasetSequence
		out["generation"] = ds.GenerationNumber
	}

	if ds.Organization == OrgPS {
		if opts.Text && ds.IsText {
			out["contents"] = string(ds.Data)
		}
		return out
	}

	if ds.CR1 != nil {
		out["COPYR1"] = dumpCR1(ds.CR1)
	}
	if ds.CR2 != nil {
		out["COPYR2"] = dumpCR2(ds.CR2)
	}

	members := make(map[string]any, len(ds.Members))
	for _, m := range ds.Members {
		members[m.Name] = dumpMember(m, opts)
	}
	out["members"] = members
	return out
}

func dumpCR1(cr1 *iebcopy.ControlRecord1) map[string]any {
	return map[string]any{
		"organization": cr1.Organization.String(),
		"blkl":         cr1.BLKL,
		"lrecl":        cr1.LRECL,
		"recfm":        cr1.RECFM.String(),
		"keyl":         cr1.KEYL,
		"optcd":        cr1.OPTCD,
		"smsfg":        cr1.SMSFG,
		"dva":          hex.EncodeToString(cr1.DeviceGeometry[:]),
		"scext":        hex.EncodeToString(cr1.SCEXT[:]),
		"scalo":        hex.EncodeToString(cr1.SCALO[:]),
		"lstar":        hex.EncodeToString(cr1.LSTAR[:]),
		"trbal":        cr1.TRBAL,
		"refd_julian":  hex.EncodeToString(cr1.ReferenceDateJulian[:]),
	}
}

func dumpCR2(cr2 *iebcopy.ControlRecord2) map[string]any {
	extents := make([]string, len(cr2.Extents))
	for i, e := range cr2.Extents {
		extents[i] = hex.EncodeToString(e[:])
	}
	return map[string]any{
		"deb_header": hex.EncodeToString(cr2.DEBHeader[:]),
		"extents":    extents,
	}
}

func dumpMember(m Member, opts DumpOptions) map[string]any {
	out := map[string]any{
		"ttr":       hex.EncodeToString(m.TTR[:]),
		"alias":     m.Alias,
		"halfwords": m.Halfwords,
		"notes":     m.Notes,
		"parms":     hex.EncodeToString(m.Parms),
	}
	if m.Stats != nil {
		out["ispf"] = dumpIspf(m.Stats)
	} else {
		out["ispf"] = false
	}
	if opts.Text && m.IsText {
		out["contents"] = string(m.Data)
	}
	return out
}

func dumpIspf(s *iebcopy.IspfStats) map[string]any {
	return map[string]any{
		"version":        fmtVersion(s.VersionMajor, s.VersionMinor),
		"flags":          s.Flags,
		"created":        s.CreatedDate,
		"modified":       dumpModified(s),
		"lines":          s.Lines,
		"new_lines":      s.NewLines,
		"modified_lines": s.ModifiedLines,
		"owner":          s.Owner,
	}
}

func fmtVersion(major, minor int) string {
	return twoDigit(major) + "." + twoDigit(minor)
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	d1 := n / 10 % 10
	d2 := n % 10
	return string(rune('0'+d1)) + string(rune('0'+d2))
}

// dumpModified renders the ISPF modified timestamp as ISO-8601 with
// microseconds.
// ISPF stats only carry hundredths-of-a-second precision; the trailing
// four digits are zero-padded rather than fabricated.
func dumpModified(s *iebcopy.IspfStats) string {
	return s.ModifiedDate + "T" +
		twoDigit(s.ModifiedHour) + ":" + twoDigit(s.ModifiedMinute) + ":" + twoDigit(s.ModifiedSecond) +
		"." + twoDigit(s.ModifiedCentis) + "0000"
}
