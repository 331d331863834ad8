package archive

import (
	"errors"

	"github.com/go-zseries/mvsunload/awshet"
	"github.com/go-zseries/mvsunload/cache"
	"github.com/go-zseries/mvsunload/classify"
	"github.com/go-zseries/mvsunload/config"
	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/errs"
	"github.com/go-zseries/mvsunload/iebcopy"
	"github.com/go-zseries/mvsunload/internal/alias"
	"github.com/go-zseries/mvsunload/internal/pool"
	"github.com/go-zseries/mvsunload/recfmt"
	"github.com/go-zseries/mvsunload/xmi"
)

// Sniff identifies the root container kind from the first bytes of data.
// It tries a direct ASCII "INMR01" tag, the same tag behind
// a 2-byte NETDATA outer-record length prefix (the common on-disk .xmi
// layout), and an EBCDIC-encoded tag, before falling back to the AWS/HET
// 6-byte block header shape.
func Sniff(data []byte) ContainerKind {
	if looksLikeXMI(data) {
		return ContainerXMI
	}
	if len(data) >= 6 {
		flags := data[4]
		compByte := data[5]
		curSize := int(data[0]) | int(data[1])<<8
		if flags&0x80 != 0 && 6+curSize <= len(data) {
			switch compByte {
			case 0x00:
				return ContainerAWS
			case 0x01, 0x02:
				return ContainerHET
			}
		}
	}
	return ContainerUnknown
}

func looksLikeXMI(data []byte) bool {
	if len(data) >= 6 && string(data[0:6]) == "INMR01" {
		return true
	}
	if len(data) >= 8 && string(data[2:8]) == "INMR01" {
		return true
	}
	if cp, err := ebcdic.Lookup(config.DefaultEncoding); err == nil && len(data) >= 6 {
		if cp.Decode(data[0:6]) == "INMR01" {
			return true
		}
	}
	return false
}

// Decode is the top-level entry point: it sniffs the root container,
// drives the matching framer, peels nested containers, and returns the
// unified Archive tree.
func Decode(data []byte, cfg config.Config) (*Archive, error) {
	a, err := decodeAt(data, cfg, 0)
	if err != nil {
		return a, err
	}
	if cfg.CacheCompression != config.CacheCompressionNone {
		if cerr := populateCache(a, cfg); cerr != nil {
			a.warn(SeverityWarning, 0, "byte-stream cache: "+cerr.Error())
		}
	}
	return a, nil
}

// populateCache fills the optional byte-stream cache: every
// dataset/member's finalized bytes are written through the configured
// codec once and left available on Archive.Cache for a consumer that
// wants to re-fetch decompressed bytes without holding every stream live
// in the decoded model.
func populateCache(a *Archive, cfg config.Config) error {
	a.Cache = cache.New(cfg.CacheCompression)
	for i := range a.Datasets {
		ds := &a.Datasets[i]
		if ds.Organization == OrgPS {
			if err := a.Cache.Put(ds.Name, ds.Data); err != nil {
				return err
			}
			continue
		}
		for _, m := range ds.Members {
			if err := a.Cache.Put(ds.Name+"("+m.Name+")", m.Data); err != nil {
				return err
			}
		}
	}
	if a.Message != nil {
		if err := a.Cache.Put("", a.Message.Data); err != nil {
			return err
		}
	}
	return nil
}

func decodeAt(data []byte, cfg config.Config, depth int) (*Archive, error) {
	if depth > cfg.MaxNested {
		return nil, &errs.PolicyViolation{Policy: "max_nested", Limit: cfg.MaxNested, Got: depth}
	}
	kind := Sniff(data)
	switch kind {
	case ContainerXMI:
		return decodeXMI(data, cfg, depth)
	case ContainerAWS, ContainerHET:
		return decodeAWSHET(kind, data, cfg, depth)
	default:
		return nil, errs.ErrUnknownContainer
	}
}

// splitNetdataRecords splits a standalone XMI byte stream into logical
// control/data records. Each record on disk is prefixed by its own
// 2-byte big-endian length, the length field included in the count
// (the NETDATA wire framing TRANSMIT/RECEIVE use, distinct from the
// RECFM V/VB framing recfmt implements for the dataset payload itself).
func splitNetdataRecords(data []byte) ([][]byte, error) {
	var recs [][]byte
	pos := 0
	for pos < len(data) {
		if pos+2 > len(data) {
			return nil, &errs.Truncated{Offset: pos, Need: 2, Have: len(data) - pos}
		}
		length := int(data[pos])<<8 | int(data[pos+1])
		if length < 2 || pos+length > len(data) {
			return nil, &errs.MalformedRecord{Offset: pos, Reason: "NETDATA outer record length out of range"}
		}
		recs = append(recs, data[pos+2:pos+length])
		pos += length
	}
	return recs, nil
}

func decodeXMI(data []byte, cfg config.Config, depth int) (*Archive, error) {
	cp, err := ebcdic.Lookup(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	var recs [][]byte
	switch {
	case len(data) >= 6 && string(data[0:6]) == "INMR01":
		recs, err = splitFlatControlRecords(data)
	case len(data) >= 6 && cp.Decode(data[0:6]) == "INMR01" && len(data)%80 == 0:
		// Standalone .xmi stored as fixed-80 text lines: each line is one
		// logical record.
		recs = splitFixed80Records(data)
	default:
		recs, err = splitNetdataRecords(data)
	}
	if err != nil {
		return nil, err
	}

	decoded, err := xmi.Decode(recs, cp)
	if err != nil {
		return nil, err
	}

	a := &Archive{Container: ContainerXMI}
	if decoded.R01 != nil {
		if u, ok := decoded.R01.Get("INMFTIME"); ok && len(u.Values) > 0 {
			a.SourceTimestamp = formatPackedTimestamp(u.Values[0].Timestamp)
		}
		a.OriginNode, _ = decoded.R01.String("INMFNODE")
		a.OriginUser, _ = decoded.R01.String("INMFUID")
		a.TargetNode, _ = decoded.R01.String("INMTNODE")
		a.TargetUser, _ = decoded.R01.String("INMTUID")

		r01 := metaFromUnits(decoded.R01)
		a.R01Meta = &r01
	}
	for _, fd := range decoded.Descriptors {
		a.R02Meta = append(a.R02Meta, metaFromUnits(fd.Units))
	}
	for _, r03 := range decoded.R03 {
		a.R03Meta = append(a.R03Meta, metaFromUnits(r03))
	}

	i := 0
	for i < len(decoded.Descriptors) {
		fd := decoded.Descriptors[i]
		if fd.Utility != "" && fd.Utility != "INMCOPY" && fd.Utility != "IEBCOPY" {
			a.warn(SeverityWarning, 0, "INMR02 names unrecognized utility "+fd.Utility)
		}

		if fd.IsMessage {
			ds, err := buildMessageDataset(fd, decoded, cp, a)
			if err != nil {
				a.buildIndex()
				return a, err
			}
			a.Message = ds
			i++
			continue
		}

		// A PO dataset contributes two consecutive descriptors sharing
		// one DSNAM: IEBCOPY (metadata only) then INMCOPY (owns the
		// unload-stream data).
		if i+1 < len(decoded.Descriptors) &&
			fd.Utility == "IEBCOPY" &&
			decoded.Descriptors[i+1].Utility == "INMCOPY" &&
			decoded.Descriptors[i+1].DSNAM == fd.DSNAM {
			dataDesc := decoded.Descriptors[i+1]
			ds, err := buildDataset(fd, dataDesc, decoded, cp, cfg, depth, a)
			if ds != nil {
				a.Datasets = append(a.Datasets, *ds)
			}
			if err != nil {
				a.buildIndex()
				return a, err
			}
			i += 2
			continue
		}

		ds, err := buildDataset(fd, fd, decoded, cp, cfg, depth, a)
		if ds != nil {
			a.Datasets = append(a.Datasets, *ds)
		}
		if err != nil {
			a.buildIndex()
			return a, err
		}
		i++
	}

	if n, ok := decoded.R01.Uint("INMNUMF"); ok && int(n) != len(a.Datasets) {
		a.warn(SeverityWarning, 0, "INMNUMF does not match the number of decoded datasets")
	}

	a.buildIndex()
	return a, nil
}

// splitFlatControlRecords frames a raw concatenation of control/data
// records with no outer length prefix at all: every INMRxx control
// record is tag-delimited, and runs of data bytes between an INMR03 and
// the next INMRxx tag are passed through untouched by xmi.Decode's own
// per-record loop, so the whole remainder is handed over as a single
// opaque record. This path only applies when callers feed exactly one
// concatenated buffer rather than a pre-split record list.
func splitFlatControlRecords(data []byte) ([][]byte, error) {
	var recs [][]byte
	pos := 0
	for pos < len(data) {
		if pos+6 <= len(data) && string(data[pos:pos+4]) == "INMR" {
			end := pos + 6
			recs = append(recs, data[pos:end])
			pos = end
			continue
		}
		// Data record: runs until the next recognizable INMRxx tag or EOF.
		next := findNextTag(data, pos+1)
		recs = append(recs, data[pos:next])
		pos = next
	}
	return recs, nil
}

// splitFixed80Records slices a text-stored XMI stream into its 80-byte
// lines; the caller has already verified len(data) is a multiple of 80.
func splitFixed80Records(data []byte) [][]byte {
	recs := make([][]byte, 0, len(data)/80)
	for pos := 0; pos < len(data); pos += 80 {
		recs = append(recs, data[pos:pos+80])
	}
	return recs
}

func findNextTag(data []byte, from int) int {
	for i := from; i+6 <= len(data); i++ {
		if string(data[i:i+4]) == "INMR" {
			return i
		}
	}
	return len(data)
}

func buildMessageDataset(fd xmi.FileDescriptor, decoded *xmi.Decoded, cp *ebcdic.CodePage, a *Archive) (*Dataset, error) {
	var body []byte
	if fd.SegmentIndex >= 0 && fd.SegmentIndex < len(decoded.Segments) {
		body = decoded.Segments[fd.SegmentIndex]
	}
	ds := &Dataset{
		Organization: OrgPS,
		Data:         body,
		TotalBytes:   len(body),
	}
	ds.IsText = true
	ds.Data = []byte(cp.Decode(body))
	return ds, nil
}

// buildDataset constructs a Dataset from one (or, for PO, a correlated
// pair of) INMR02 descriptor(s) plus its data segment, recursing into
// the IEBCOPY decoder when the descriptor reports a partitioned
// organization.
func buildDataset(metaDesc, dataDesc xmi.FileDescriptor, decoded *xmi.Decoded, cp *ebcdic.CodePage, cfg config.Config, depth int, a *Archive) (*Dataset, error) {
	ds := &Dataset{Name: metaDesc.DSNAM, ControlRecords: metaFromUnits(metaDesc.Units)}
	units := metaDesc.Units

	if lrecl, ok := units.Uint("INMLRECL"); ok {
		ds.LRECL = int(lrecl)
	}
	if blksz, ok := units.Uint("INMBLKSZ"); ok {
		ds.BLKSIZE = int(blksz)
	}
	if cfg.LRECLOverride > 0 {
		ds.LRECL = cfg.LRECLOverride
	}
	if recfmStr, ok := units.String("INMRECFM"); ok {
		ds.RECFM = parseRECFMString(recfmStr)
	}
	if u, ok := units.Get("INMCREAT"); ok && len(u.Values) > 0 {
		ds.Created = formatPackedTimestamp(u.Values[0].Timestamp)
	}
	dsorg, _ := units.Uint("INMDSORG")

	var body []byte
	if dataDesc.SegmentIndex >= 0 && dataDesc.SegmentIndex < len(decoded.Segments) {
		body = decoded.Segments[dataDesc.SegmentIndex]
	}

	isPO := dsorg&0x0200 != 0 || metaDesc.Utility == "IEBCOPY"
	if isPO {
		ds.Organization = OrgPO
		// ds is returned even on error so the caller can still append the
		// partially-decoded descriptor (whatever decodeIEBCOPYInto managed
		// to populate before failing) to the Archive.
		if err := decodeIEBCOPYInto(ds, body, cp, cfg, depth, a); err != nil {
			return ds, err
		}
		return ds, nil
	}

	ds.Organization = OrgPS
	if lrecl, ok := units.Uint("INMSIZE"); ok {
		ds.TotalBytes = int(lrecl)
	} else {
		ds.TotalBytes = len(body)
	}

	if looksLikeXMI(body) {
		nested, err := decodeAt(body, cfg, depth+1)
		if err == nil {
			a.Datasets = append(a.Datasets, nested.Datasets...)
			if nested.Message != nil && a.Message == nil {
				a.Message = nested.Message
			}
			ds.Data = nil
			return ds, nil
		}
		if errors.Is(err, errs.ErrPolicyViolation) {
			return ds, err
		}
	}

	f := recfmt.Format{RECFM: ds.RECFM, LRECL: ds.LRECL, BLKSIZE: ds.BLKSIZE, MaxRecordBytes: cfg.MaxRecordBytes}
	records, derr := deblockBestEffort(f, body)
	if derr != nil {
		ds.Data = body
	} else {
		records = classify.Unnum(records, ds.RECFM, ds.LRECL, cfg.Unnum)
		ds.Data = flatten(records)
	}

	kind := classify.Classify(ds.Data, classify.Options{
		ForceText:  cfg.ForceText,
		BinaryOnly: cfg.BinaryOnly,
		RECFM:      ds.RECFM,
		LRECL:      ds.LRECL,
	}, cp)
	ds.IsText = kind == classify.Text
	if ds.IsText {
		ds.Data = []byte(cp.Decode(ds.Data))
	}

	if ds.TotalBytes != 0 && ds.TotalBytes != len(body) {
		a.warn(SeverityWarning, 0, "dataset "+ds.Name+": INMSIZE does not match decoded byte count")
	}

	return ds, nil
}

// deblockBestEffort runs the RecordFormat engine, falling back to the
// unmodified byte stream on any framing error: a deblocking surprise is
// treated conservatively for PS data (the dataset body is still
// returned, just unsegmented) rather than aborting the whole decode.
func deblockBestEffort(f recfmt.Format, body []byte) ([][]byte, error) {
	if f.RECFM == recfmt.RECFMUnknown || len(body) == 0 {
		return nil, errs.ErrMalformedRecord
	}
	return recfmt.DeblockStream(f, body)
}

func flatten(records [][]byte) []byte {
	var out []byte
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}

// parseRECFMString maps a RECFM string to its engine constant. A
// trailing ANSI/machine carriage-control suffix (FBA, VBM, ...) affects
// printing only and is ignored for deblocking.
func parseRECFMString(s string) recfmt.RECFM {
	if n := len(s); n > 1 && (s[n-1] == 'A' || s[n-1] == 'M') {
		s = s[:n-1]
	}
	switch s {
	case "F":
		return recfmt.RECFMF
	case "FB":
		return recfmt.RECFMFB
	case "V":
		return recfmt.RECFMV
	case "VB":
		return recfmt.RECFMVB
	case "VS":
		return recfmt.RECFMVS
	case "VBS":
		return recfmt.RECFMVBS
	case "U":
		return recfmt.RECFMU
	default:
		return recfmt.RECFMUnknown
	}
}

// formatPackedTimestamp reformats a decoded INMCREAT YYYYMMDDhhmmss
// digit string as ISO-8601.
func formatPackedTimestamp(s string) string {
	if len(s) < 14 {
		return s
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8] + "T" + s[8:10] + ":" + s[10:12] + ":" + s[12:14]
}

// decodeIEBCOPYInto runs the three IEBCOPY phases against an
// unload-stream payload and populates ds's Members, CR1, and CR2.
func decodeIEBCOPYInto(ds *Dataset, payload []byte, cp *ebcdic.CodePage, cfg config.Config, depth int, a *Archive) error {
	outerFmt := recfmt.Format{RECFM: recfmt.RECFMVBS, LRECL: 0, BLKSIZE: 0, MaxRecordBytes: cfg.MaxRecordBytes}
	recs, err := recfmt.DeblockStream(outerFmt, payload)
	if err != nil {
		return err
	}
	if len(recs) < 1 {
		return &errs.Truncated{Need: 1, Have: 0}
	}

	// COPYR1 is decoded and applied to ds on its own, before COPYR2's
	// presence is even checked, so a stream truncated between the two
	// still leaves ds.CR1/RECFM/LRECL/BLKSIZE populated on the partial
	// Archive the caller gets back alongside the error.
	cr1, err := iebcopy.DecodeControlRecord1(recs[0])
	if err != nil {
		return err
	}
	ds.CR1 = &cr1
	ds.RECFM = cr1.RECFM
	ds.LRECL = int(cr1.LRECL)
	ds.BLKSIZE = int(cr1.BLKL)
	if cr1.Organization == iebcopy.OrgPOE {
		ds.Organization = OrgPOE
		a.warn(SeverityWarning, 0, "dataset "+ds.Name+": PDSE unload; member extraction is best-effort")
	}

	if len(recs) < 2 {
		return &errs.Truncated{Need: 2, Have: len(recs)}
	}
	cr2, err := iebcopy.DecodeControlRecord2(recs[1])
	if err != nil {
		return err
	}
	ds.CR2 = &cr2

	tracker := alias.NewTracker()
	var entries []iebcopy.DirectoryEntry
	i := 2
	done := false
	for i < len(recs) && !done {
		var blockEntries []iebcopy.DirectoryEntry
		blockEntries, done, err = iebcopy.DecodeDirectoryBlock(recs[i], cp)
		if err != nil {
			return err
		}
		entries = append(entries, blockEntries...)
		i++
	}
	if !done {
		a.warn(SeverityWarning, 0, "dataset "+ds.Name+": IEBCOPY directory end marker not found")
	}
	for _, e := range entries {
		tracker.TrackDirectoryEntry(e.Name, e.TTR)
	}

	memberBuf := pool.GetMemberBuffer()
	defer pool.PutMemberBuffer(memberBuf)
	for _, r := range recs[i:] {
		memberBuf.Append(r)
	}
	groups, err := iebcopy.DecodeMemberGroups(memberBuf.Bytes())
	if err != nil {
		return err
	}
	byName := iebcopy.AssembleMembers(groups, tracker)

	if tracker.HasAlias() {
		a.warn(SeverityInfo, 0, "dataset "+ds.Name+": directory contains alias entries sharing one TTR")
	}
	for _, orphan := range tracker.Orphans() {
		a.warn(SeverityWarning, 0, "dataset "+ds.Name+": orphan member-data group "+orphan)
	}

	memberFmt := recfmt.Format{RECFM: cr1.RECFM, LRECL: int(cr1.LRECL), BLKSIZE: int(cr1.BLKL), MaxRecordBytes: cfg.MaxRecordBytes}
	for _, e := range entries {
		raw := byName[e.Name]
		records, derr := deblockBestEffort(memberFmt, raw)
		var data []byte
		if derr != nil {
			data = raw
		} else {
			records = classify.Unnum(records, cr1.RECFM, int(cr1.LRECL), cfg.Unnum)
			data = flatten(records)
		}

		kind := classify.Classify(data, classify.Options{
			ForceText:  cfg.ForceText,
			BinaryOnly: cfg.BinaryOnly,
			RECFM:      cr1.RECFM,
			LRECL:      int(cr1.LRECL),
		}, cp)
		isText := kind == classify.Text
		if isText {
			data = []byte(cp.Decode(data))
		}

		m := Member{
			Name:      e.Name,
			TTR:       e.TTR,
			Alias:     e.IsAlias,
			Halfwords: e.Halfwords,
			Notes:     e.Notes,
			Parms:     e.Parms,
			Stats:     e.Stats,
			Data:      data,
			IsText:    isText,
		}
		ds.Members = append(ds.Members, m)
	}
	return nil
}

func decodeAWSHET(kind ContainerKind, data []byte, cfg config.Config, depth int) (*Archive, error) {
	files, err := awshet.ReadTape(data, kind == ContainerHET)
	if err != nil {
		return nil, err
	}

	cp, err := ebcdic.Lookup(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	a := &Archive{Container: kind}
	fileNum := 0
	for i := 0; i < len(files); {
		f := files[i]
		if f.Label == nil {
			fileNum++
			ds, err := buildUnlabeledAWSDataset(f, fileNum, cfg, cp, depth, a)
			if ds != nil {
				a.Datasets = append(a.Datasets, *ds)
			}
			if err != nil {
				a.buildIndex()
				return a, err
			}
			i++
			continue
		}

		label := *f.Label
		if len(f.Records) >= 1 {
			if err := awshet.ParseHDR1(f.Records[0], &label, cp); err != nil {
				a.buildIndex()
				return a, err
			}
		}
		if len(f.Records) >= 2 {
			if err := awshet.ParseHDR2(f.Records[1], &label, cp); err != nil {
				a.buildIndex()
				return a, err
			}
		}
		if len(f.Records) > 2 {
			for _, rec := range f.Records[2:] {
				label.UHL = append(label.UHL, []byte(rec))
			}
		}

		var dataFile awshet.File
		if i+1 < len(files) {
			dataFile = files[i+1]
		}
		ds, err := buildLabeledAWSDataset(label, dataFile, cfg, cp, depth, a)
		if ds != nil {
			a.Datasets = append(a.Datasets, *ds)
		}
		if err != nil {
			a.buildIndex()
			return a, err
		}

		i += 2
		// Skip the EOF1/EOF2/UTLn trailer region, if present.
		if i < len(files) && files[i].Label == nil {
			i++
		}
	}

	a.buildIndex()
	return a, nil
}

func buildUnlabeledAWSDataset(f awshet.File, fileNum int, cfg config.Config, cp *ebcdic.CodePage, depth int, a *Archive) (*Dataset, error) {
	ds := &Dataset{Name: awshet.SyntheticName(fileNum), Organization: OrgPS, RECFM: recfmt.RECFMU}
	body := flatten(toByteSlices(f.Records))
	if len(f.Records) > 0 {
		ds.LRECL = len(f.Records[0])
	}
	ds.TotalBytes = len(body)
	return finalizePSBody(ds, body, cfg, cp, depth, a)
}

func buildLabeledAWSDataset(label awshet.StandardLabel, dataFile awshet.File, cfg config.Config, cp *ebcdic.CodePage, depth int, a *Archive) (*Dataset, error) {
	ds := &Dataset{
		Name:             label.DatasetName,
		RECFM:            parseRECFMString(label.RECFM),
		LRECL:            label.LRECL,
		BLKSIZE:          label.BLKSIZE,
		Volume:           label.VolumeSerial,
		VolumeSequence:   label.VolumeSequence,
		DatasetSequence:  label.DatasetSequence,
		GenerationNumber: label.GenerationNumber,
	}
	if label.Created != "" {
		ds.Created = label.Created
	}
	body := flatten(toByteSlices(dataFile.Records))
	ds.TotalBytes = len(body)

	if looksLikeXMI(body) {
		nested, err := decodeAt(body, cfg, depth+1)
		if err == nil {
			ds.Organization = OrgPS
			ds.Data = nil
			a.Datasets = append(a.Datasets, nested.Datasets...)
			if nested.Message != nil && a.Message == nil {
				a.Message = nested.Message
			}
			return ds, nil
		}
		if errors.Is(err, errs.ErrPolicyViolation) {
			ds.Organization = OrgPS
			return ds, err
		}
	}

	// AWS/HET carries no explicit DSORG flag in HDR1/HDR2; a payload that
	// itself parses as an IEBCOPY unload stream is the signal this is a
	// partitioned dataset.
	if looksLikeIEBCOPY(body) {
		ds.Organization = OrgPO
		if err := decodeIEBCOPYInto(ds, body, cp, cfg, depth, a); err != nil {
			return ds, err
		}
		return ds, nil
	}

	ds.Organization = OrgPS
	return finalizePSBody(ds, body, cfg, cp, depth, a)
}

func looksLikeIEBCOPY(payload []byte) bool {
	outerFmt := recfmt.Format{RECFM: recfmt.RECFMVBS}
	recs, err := recfmt.DeblockStream(outerFmt, payload)
	if err != nil || len(recs) == 0 {
		return false
	}
	return iebcopy.LooksLikeCOPYR1(recs[0])
}

func finalizePSBody(ds *Dataset, body []byte, cfg config.Config, cp *ebcdic.CodePage, depth int, a *Archive) (*Dataset, error) {
	f := recfmt.Format{RECFM: ds.RECFM, LRECL: ds.LRECL, BLKSIZE: ds.BLKSIZE, MaxRecordBytes: cfg.MaxRecordBytes}
	records, derr := deblockBestEffort(f, body)
	var data []byte
	if derr != nil {
		data = body
	} else {
		records = classify.Unnum(records, ds.RECFM, ds.LRECL, cfg.Unnum)
		data = flatten(records)
	}
	kind := classify.Classify(data, classify.Options{
		ForceText:  cfg.ForceText,
		BinaryOnly: cfg.BinaryOnly,
		RECFM:      ds.RECFM,
		LRECL:      ds.LRECL,
	}, cp)
	ds.IsText = kind == classify.Text
	if ds.IsText {
		data = []byte(cp.Decode(data))
	}
	ds.Data = data
	return ds, nil
}

func toByteSlices(records []awshet.LogicalRecord) [][]byte {
	out := make([][]byte, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}
