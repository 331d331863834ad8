package iebcopy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/endian"
	"github.com/go-zseries/mvsunload/errs"
	"github.com/go-zseries/mvsunload/internal/alias"
	"github.com/go-zseries/mvsunload/recfmt"
)

func mustCP(t *testing.T) *ebcdic.CodePage {
	t.Helper()
	cp, err := ebcdic.Lookup("cp1140")
	require.NoError(t, err)
	return cp
}

func makeCOPYR1(dsorg uint16, recfm byte) []byte {
	buf := make([]byte, 44)
	copy(buf[8:11], copyr1EyeCatcher[:])
	endian.Big.PutUint16(buf[11:13], dsorg)
	endian.Big.PutUint16(buf[14:16], 6160) // BLKL
	endian.Big.PutUint16(buf[16:18], 80)   // LRECL
	buf[18] = recfm
	return buf
}

func makeCOPYR2() []byte {
	return make([]byte, 16+256)
}

func TestDecodeControlRecordsPO(t *testing.T) {
	cr1, _, err := DecodeControlRecords(makeCOPYR1(0x0200, 0x90), makeCOPYR2())
	require.NoError(t, err)
	require.Equal(t, OrgPO, cr1.Organization)
	require.Equal(t, uint16(80), cr1.LRECL)
	require.Equal(t, uint16(6160), cr1.BLKL)
	require.Equal(t, recfmt.RECFMFB, cr1.RECFM)
}

func TestDecodeControlRecord1CapturesAllocationFields(t *testing.T) {
	rec := make([]byte, 64)
	copy(rec, makeCOPYR1(0x0200, 0x90))
	for i := 24; i < 44; i++ {
		rec[i] = byte(i) // device geometry
	}
	copy(rec[44:47], []byte{0x0A, 0x0B, 0x0C})       // SCEXT
	copy(rec[47:51], []byte{0x01, 0x02, 0x03, 0x04}) // SCALO
	copy(rec[51:54], []byte{0x0D, 0x0E, 0x0F})       // LSTAR
	endian.Big.PutUint16(rec[54:56], 1234)           // TRBAL

	cr1, err := DecodeControlRecord1(rec)
	require.NoError(t, err)
	require.Equal(t, byte(24), cr1.DeviceGeometry[0])
	require.Equal(t, byte(43), cr1.DeviceGeometry[19])
	require.Equal(t, [3]byte{0x0A, 0x0B, 0x0C}, cr1.SCEXT)
	require.Equal(t, [4]byte{0x01, 0x02, 0x03, 0x04}, cr1.SCALO)
	require.Equal(t, [3]byte{0x0D, 0x0E, 0x0F}, cr1.LSTAR)
	require.Equal(t, uint16(1234), cr1.TRBAL)
}

func TestDecodeControlRecordsRejectsMissingEyeCatcher(t *testing.T) {
	first := make([]byte, 44)
	_, _, err := DecodeControlRecords(first, makeCOPYR2())
	require.ErrorIs(t, err, errs.ErrNotIEBCOPY)
}

func TestDecodeControlRecord2RejectsShortRecord(t *testing.T) {
	_, err := DecodeControlRecord2(make([]byte, 100))
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestTranslateRECFM(t *testing.T) {
	cases := []struct {
		b    byte
		want recfmt.RECFM
	}{
		{0x80, recfmt.RECFMF},
		{0x90, recfmt.RECFMFB},
		{0x40, recfmt.RECFMV},
		{0x50, recfmt.RECFMVB},
		{0x48, recfmt.RECFMVS},
		{0x58, recfmt.RECFMVBS},
		{0xC0, recfmt.RECFMU},
	}
	for _, c := range cases {
		require.Equal(t, c.want, TranslateRECFM(c.b), "TranslateRECFM(%#x)", c.b)
	}
}

func appendDirEntry(buf []byte, name string, ttr [3]byte, isAlias bool, parms []byte, cp *ebcdic.CodePage) []byte {
	encName, _ := cp.Encode(name)
	for len(encName) < 8 {
		encName = append(encName, 0x40) // EBCDIC space
	}
	buf = append(buf, encName...)
	buf = append(buf, ttr[:]...)
	c := byte(len(parms) / 2)
	if isAlias {
		c |= 0x80
	}
	buf = append(buf, c, 0)
	buf = append(buf, parms...)
	return buf
}

func TestDecodeDirectoryBlockSingleEntry(t *testing.T) {
	cp := mustCP(t)
	var block []byte
	block = append(block, make([]byte, 8)...) // PDS marker
	block = append(block, 0, 0, 0, 0)         // key/used length (unused)
	block = append(block, make([]byte, 8)...) // last member name (unused)
	block = appendDirEntry(block, "MEMBER1", [3]byte{0, 1, 2}, false, nil, cp)
	block = append(block, directoryEndMarker[:]...)

	entries, done, err := DecodeDirectoryBlock(block, cp)
	require.NoError(t, err)
	require.True(t, done, "end marker present")
	require.Len(t, entries, 1)
	require.Equal(t, "MEMBER1", entries[0].Name)
	require.Equal(t, [3]byte{0, 1, 2}, entries[0].TTR)
	require.False(t, entries[0].IsAlias)
}

func TestDecodeDirectoryBlockWithIspfStats(t *testing.T) {
	cp := mustCP(t)
	parms := make([]byte, 30)
	parms[0] = 0x01                                 // version major 01
	parms[1] = 0x02                                 // version minor 02
	parms[3], parms[4], parms[5] = 0x10, 0x20, 0x15 // century=1 (2000s), yy=02, ddd=015
	parms[6], parms[7], parms[8] = 0x10, 0x20, 0x15 // modified date, same day
	owner, _ := cp.Encode("USER1")
	copy(parms[20:28], owner)
	for i := 20 + len(owner); i < 28; i++ {
		parms[i] = 0x40 // EBCDIC space
	}

	var block []byte
	block = append(block, make([]byte, 8)...)
	block = append(block, 0, 0, 0, 0)
	block = append(block, make([]byte, 8)...)
	block = appendDirEntry(block, "MEMBER1", [3]byte{0, 1, 2}, false, parms, cp)
	block = append(block, directoryEndMarker[:]...)

	entries, _, err := DecodeDirectoryBlock(block, cp)
	require.NoError(t, err)
	require.NotNil(t, entries[0].Stats)
	require.Equal(t, 1, entries[0].Stats.VersionMajor)
	require.Equal(t, 2, entries[0].Stats.VersionMinor)
	require.Equal(t, "USER1", entries[0].Stats.Owner)
	require.Equal(t, "2002-01-15", entries[0].Stats.CreatedDate)
}

func TestDecodeMemberGroupAndAssemble(t *testing.T) {
	ttr := [3]byte{0, 0, 1}
	var g1 []byte
	g1 = append(g1, 0, 1) // flag, extent
	g1 = append(g1, 0, 1) // record count
	g1 = append(g1, ttr[:]...)
	g1 = append(g1, 0, 4)
	g1 = append(g1, []byte("data")...)

	group, n, err := DecodeMemberGroup(g1)
	require.NoError(t, err)
	require.Equal(t, len(g1), n)
	require.Equal(t, "data", string(group.Data))

	tracker := alias.NewTracker()
	tracker.TrackDirectoryEntry("MEMBER1", ttr)
	byName := AssembleMembers([]MemberGroup{group}, tracker)
	require.Equal(t, "data", string(byName["MEMBER1"]))
}

func TestDecodeMemberGroupsWalksConcatenatedGroups(t *testing.T) {
	ttr1 := [3]byte{0, 0, 1}
	ttr2 := [3]byte{0, 0, 2}
	var data []byte
	data = append(data, 0, 1, 0, 1)
	data = append(data, ttr1[:]...)
	data = append(data, 0, 5)
	data = append(data, []byte("first")...)
	data = append(data, 0, 1, 0, 1)
	data = append(data, ttr2[:]...)
	data = append(data, 0, 6)
	data = append(data, []byte("second")...)

	groups, err := DecodeMemberGroups(data)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "first", string(groups[0].Data))
	require.Equal(t, "second", string(groups[1].Data))
}

func TestAssembleMembersOrphanData(t *testing.T) {
	ttr := [3]byte{9, 9, 9}
	group := MemberGroup{TTR: ttr, Data: []byte("orphaned")}
	tracker := alias.NewTracker()
	byName := AssembleMembers([]MemberGroup{group}, tracker)
	require.Len(t, byName, 1)
	require.Equal(t, "orphaned", string(byName[alias.OrphanName(ttr)]))
	require.Equal(t, []string{alias.OrphanName(ttr)}, tracker.Orphans())
}
