package recfmt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-zseries/mvsunload/errs"
)

func TestDeblockFixedBlocked(t *testing.T) {
	f := Format{RECFM: RECFMFB, LRECL: 4, BLKSIZE: 12}
	records, err := Deblock(f, []byte("aaaabbbbcccc"))
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, want := range []string{"aaaa", "bbbb", "cccc"} {
		require.Equal(t, want, string(records[i]))
	}
}

func TestDeblockFixedRejectsMisalignedBlock(t *testing.T) {
	f := Format{RECFM: RECFMF, LRECL: 4}
	_, err := Deblock(f, []byte("aaabb"))
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestDeblockFixedRejectsBlockOverBLKSIZE(t *testing.T) {
	f := Format{RECFM: RECFMFB, LRECL: 4, BLKSIZE: 8}
	_, err := Deblock(f, []byte("aaaabbbbcccc")) // 3 records, bound is 2
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestDeblockStreamChunksFixedBlocks(t *testing.T) {
	// 24 bytes of FB data with BLKSIZE 8: three full blocks of two
	// records each, which a single-block Deblock would reject.
	f := Format{RECFM: RECFMFB, LRECL: 4, BLKSIZE: 8}
	records, err := DeblockStream(f, []byte("aaaabbbbccccddddeeeeffff"))
	require.NoError(t, err)
	require.Len(t, records, 6)
	require.Equal(t, "aaaa", string(records[0]))
	require.Equal(t, "ffff", string(records[5]))
}

func TestDeblockStreamRejectsBLKSIZESmallerThanLRECL(t *testing.T) {
	f := Format{RECFM: RECFMFB, LRECL: 8, BLKSIZE: 4}
	_, err := DeblockStream(f, []byte("aaaabbbb"))
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestDeblockUndefinedIsWholeBlock(t *testing.T) {
	f := Format{RECFM: RECFMU}
	block := []byte("whatever length this is")
	records, err := Deblock(f, block)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, string(block), string(records[0]))
}

func TestDeblockVariableSingleRecord(t *testing.T) {
	f := Format{RECFM: RECFMV}
	block, err := Reblock(f, [][]byte{[]byte("hello")})
	require.NoError(t, err)
	records, err := Deblock(f, block)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "hello", string(records[0]))
}

func TestDeblockVariableBlockedRoundTrip(t *testing.T) {
	f := Format{RECFM: RECFMVB}
	want := [][]byte{[]byte("one"), []byte("two-record"), []byte("c")}
	block, err := Reblock(f, want)
	require.NoError(t, err)
	got, err := Deblock(f, block)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, string(want[i]), string(got[i]))
	}
}

func TestDeblockSpannedReassemblesSegments(t *testing.T) {
	f := Format{RECFM: RECFMVS}
	block := makeBDW(
		makeRDW(segFirst, "AB"),
		makeRDW(segMiddle, "CD"),
		makeRDW(segLast, "EF"),
	)

	records, err := Deblock(f, block)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "ABCDEF", string(records[0]))
}

func TestDeblockSpannedMisorderedSegmentFails(t *testing.T) {
	f := Format{RECFM: RECFMVS}
	block := makeBDW(makeRDW(segMiddle, "X"))

	_, err := Deblock(f, block)
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestDeblockReblockFixedIsIdentity(t *testing.T) {
	f := Format{RECFM: RECFMFB, LRECL: 5}
	original := []byte("abcdeFGHIJklmno")
	records, err := Deblock(f, original)
	require.NoError(t, err)
	reblocked, err := Reblock(f, records)
	require.NoError(t, err)
	require.Equal(t, string(original), string(reblocked))
}

func TestDeblockReblockVariableIsIdentity(t *testing.T) {
	f := Format{RECFM: RECFMVB}
	records := [][]byte{[]byte("short"), []byte("a somewhat longer record")}
	block, err := Reblock(f, records)
	require.NoError(t, err)
	roundTripped, err := Deblock(f, block)
	require.NoError(t, err)
	reblocked, err := Reblock(f, roundTripped)
	require.NoError(t, err)
	require.Equal(t, string(block), string(reblocked))
}

func TestDeblockReblockSpannedIsIdentity(t *testing.T) {
	f := Format{RECFM: RECFMVBS, BLKSIZE: 20}
	records := [][]byte{
		[]byte("short"),
		[]byte("a somewhat longer record that exceeds one block"),
	}
	block, err := Reblock(f, records)
	require.NoError(t, err)
	got, err := DeblockStream(f, block)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		require.Equal(t, string(records[i]), string(got[i]))
	}

	reblocked, err := Reblock(f, got)
	require.NoError(t, err)
	require.Equal(t, string(block), string(reblocked))
}

func TestDeblockRejectsRecordOverMaxRecordBytes(t *testing.T) {
	f := Format{RECFM: RECFMFB, LRECL: 4, MaxRecordBytes: 3}
	_, err := Deblock(f, []byte("aaaabbbb"))
	require.Error(t, err)
	var violation *errs.PolicyViolation
	require.ErrorAs(t, err, &violation)
	require.Equal(t, "max_record_bytes", violation.Policy)
}

func TestDeblockStreamRejectsSpannedRecordOverMaxRecordBytes(t *testing.T) {
	f := Format{RECFM: RECFMVS, MaxRecordBytes: 3}
	bdw1 := makeBDW(makeRDW(segFirst, "AB"))
	bdw2 := makeBDW(makeRDW(segLast, "CD"))
	stream := append(append([]byte{}, bdw1...), bdw2...)

	_, err := DeblockStream(f, stream)
	require.Error(t, err)
	var violation *errs.PolicyViolation
	require.ErrorAs(t, err, &violation)
}

func TestUnnumStripsDigitSequenceField(t *testing.T) {
	records := [][]byte{
		append([]byte("this is a line of text padded to eighty.......some filler"), []byte("00010000")...),
	}
	got := Unnum(records)
	require.Len(t, got[0], len(records[0])-seqFieldLen)
}

func TestUnnumStripsEbcdicSequenceField(t *testing.T) {
	record := append([]byte("some line body"), 0xF0, 0xF0, 0xF1, 0xF0, 0x40, 0x40, 0xF0, 0xF0)
	got := Unnum([][]byte{record})
	require.Len(t, got[0], len(record)-seqFieldLen)
}

func TestUnnumIdempotentWhenTailIsNotNumeric(t *testing.T) {
	records := [][]byte{[]byte("no trailing sequence number here at all!")}
	first := Unnum(records)
	second := Unnum(first)
	require.Equal(t, string(first[0]), string(second[0]))
}

func TestUnnumLeavesShortRecordsUntouched(t *testing.T) {
	records := [][]byte{[]byte("short")}
	got := Unnum(records)
	require.Equal(t, "short", string(got[0]))
}

func TestRECFMStringAndHelpers(t *testing.T) {
	cases := []struct {
		r        RECFM
		want     string
		spanned  bool
		variable bool
	}{
		{RECFMF, "F", false, false},
		{RECFMFB, "FB", false, false},
		{RECFMV, "V", false, true},
		{RECFMVB, "VB", false, true},
		{RECFMVS, "VS", true, true},
		{RECFMVBS, "VBS", true, true},
		{RECFMU, "U", false, false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.r.String())
		require.Equal(t, c.spanned, c.r.Spanned())
		require.Equal(t, c.variable, c.r.Variable())
	}
}

// makeRDW builds one RDW-framed logical record: a 4-byte header (2-byte
// big-endian length including the header, 1 reserved byte, 1 segment-code
// byte) followed by payload.
func makeRDW(seg segmentCode, payload string) []byte {
	total := bdwRdwHeaderLen + len(payload)
	rdw := []byte{byte(total >> 8), byte(total), 0x00, byte(seg)}
	return append(rdw, []byte(payload)...)
}

// makeBDW wraps one or more RDW records in a BDW header.
func makeBDW(rdws ...[]byte) []byte {
	var body []byte
	for _, r := range rdws {
		body = append(body, r...)
	}
	total := bdwRdwHeaderLen + len(body)
	bdw := []byte{byte(total >> 8), byte(total), 0x00, 0x00}
	return append(bdw, body...)
}

func TestDeblockStreamSpansAcrossBlocks(t *testing.T) {
	f := Format{RECFM: RECFMVS}
	// Two successive BDWs, each with one RDW: the first carries the
	// "first" half of a spanned record, the second the "last" half.
	bdw1 := makeBDW(makeRDW(segFirst, "AB"))
	bdw2 := makeBDW(makeRDW(segLast, "CD"))

	stream := append(append([]byte{}, bdw1...), bdw2...)
	records, err := DeblockStream(f, stream)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "ABCD", string(records[0]))
}

func TestDeblockStreamRejectsUnjoinedSpanAtEnd(t *testing.T) {
	f := Format{RECFM: RECFMVS}
	bdw1 := makeBDW(makeRDW(segFirst, "AB"))

	_, err := DeblockStream(f, bdw1)
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}
