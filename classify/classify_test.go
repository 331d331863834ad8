package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/recfmt"
)

func mustCP(t *testing.T) *ebcdic.CodePage {
	t.Helper()
	cp, err := ebcdic.Lookup("cp1140")
	require.NoError(t, err)
	return cp
}

func TestClassifyBinaryOnlyAlwaysBinary(t *testing.T) {
	cp := mustCP(t)
	raw, _ := cp.Encode("THIS LOOKS LIKE TEXT")
	require.Equal(t, Binary, Classify(raw, Options{BinaryOnly: true}, cp))
}

func TestClassifyForceTextOverridesContent(t *testing.T) {
	cp := mustCP(t)
	raw := []byte{0x00, 0x01, 0x02, 0xFF}
	require.Equal(t, Text, Classify(raw, Options{ForceText: true}, cp))
}

func TestClassifyFixedShortRecordPrintable(t *testing.T) {
	cp := mustCP(t)
	raw, _ := cp.Encode("ALL PRINTABLE ASCII CONTENT IN THIS RECORD BODY")
	require.Equal(t, Text, Classify(raw, Options{RECFM: recfmt.RECFMFB, LRECL: 80}, cp))
}

func TestClassifyBinaryBytesAreBinary(t *testing.T) {
	cp := mustCP(t)
	raw := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x10, 0x11, 0x12, 0x00, 0x00}
	require.Equal(t, Binary, Classify(raw, Options{}, cp))
}

func TestUnnumSkippedWhenDisabled(t *testing.T) {
	records := [][]byte{append([]byte("some seventy two characters of content here padded out....."), []byte("00010000")...)}
	got := Unnum(records, recfmt.RECFMFB, 80, false)
	require.Len(t, got[0], len(records[0]))
}

func TestUnnumAppliedWhenEnabled(t *testing.T) {
	records := [][]byte{append([]byte("some seventy two characters of content here padded out....."), []byte("00010000")...)}
	got := Unnum(records, recfmt.RECFMFB, 80, true)
	require.Len(t, got[0], len(records[0])-8)
}

func TestUnnumSkippedForNon80LRECL(t *testing.T) {
	records := [][]byte{[]byte("short record")}
	got := Unnum(records, recfmt.RECFMFB, 40, true)
	require.Len(t, got[0], len(records[0]))
}
