package xmi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/errs"
)

func mustCP(t *testing.T) *ebcdic.CodePage {
	t.Helper()
	cp, err := ebcdic.Lookup("cp1140")
	require.NoError(t, err)
	return cp
}

func unit(key uint16, values ...[]byte) []byte {
	buf := []byte{byte(key >> 8), byte(key), byte(len(values) >> 8), byte(len(values))}
	for _, v := range values {
		buf = append(buf, byte(len(v)>>8), byte(len(v)))
		buf = append(buf, v...)
	}
	return buf
}

func controlRecord(tag string, units ...[]byte) []byte {
	rec := []byte(tag)
	for _, u := range units {
		rec = append(rec, u...)
	}
	return rec
}

// ebcdicControlRecord builds a control record whose tag is EBCDIC-encoded,
// the way TRANSMIT writes it on the wire.
func ebcdicControlRecord(t *testing.T, cp *ebcdic.CodePage, tag string, units ...[]byte) []byte {
	t.Helper()
	enc, err := cp.Encode(tag)
	require.NoError(t, err)
	rec := append([]byte(nil), enc...)
	for _, u := range units {
		rec = append(rec, u...)
	}
	return rec
}

func TestDecodeSequentialDataset(t *testing.T) {
	cp := mustCP(t)
	utilName, _ := cp.Encode("INMCOPY")

	records := [][]byte{
		controlRecord("INMR01"),
		controlRecord("INMR02", unit(0x000C, utilName)),
		controlRecord("INMR03"),
		[]byte("first data chunk"),
		[]byte("second data chunk"),
		controlRecord("INMR06"),
	}

	d, err := Decode(records, cp)
	require.NoError(t, err)
	require.True(t, d.Terminated)
	require.Len(t, d.Descriptors, 1)
	require.Equal(t, "INMCOPY", d.Descriptors[0].Utility)
	require.Len(t, d.R03, 1)
	require.Len(t, d.Segments, 1)
	require.Equal(t, "first data chunksecond data chunk", string(d.Segments[0]))
}

func TestDecodeEbcdicTaggedControlRecords(t *testing.T) {
	cp := mustCP(t)
	utilName, _ := cp.Encode("INMCOPY")

	records := [][]byte{
		ebcdicControlRecord(t, cp, "INMR01"),
		ebcdicControlRecord(t, cp, "INMR02", unit(0x000C, utilName)),
		ebcdicControlRecord(t, cp, "INMR03"),
		[]byte("payload"),
		ebcdicControlRecord(t, cp, "INMR06"),
	}

	d, err := Decode(records, cp)
	require.NoError(t, err)
	require.True(t, d.Terminated)
	require.Len(t, d.Descriptors, 1)
	require.Equal(t, "INMCOPY", d.Descriptors[0].Utility)
	require.Equal(t, "payload", string(d.Segments[0]))
}

func TestDecodeRejectsAMSCIPHR(t *testing.T) {
	cp := mustCP(t)
	utilName, _ := cp.Encode("AMSCIPHR")
	records := [][]byte{
		controlRecord("INMR01"),
		controlRecord("INMR02", unit(0x000C, utilName)),
		controlRecord("INMR06"),
	}
	_, err := Decode(records, cp)
	require.ErrorIs(t, err, errs.ErrUnsupportedUtility)
}

func TestDecodePOProducesTwoDescriptors(t *testing.T) {
	cp := mustCP(t)
	iebcopy, _ := cp.Encode("IEBCOPY")
	inmcopy, _ := cp.Encode("INMCOPY")
	dsnam, _ := cp.Encode("MY.PDS")

	records := [][]byte{
		controlRecord("INMR01"),
		controlRecord("INMR02", unit(0x000C, iebcopy), unit(0x0003, dsnam)),
		controlRecord("INMR02", unit(0x000C, inmcopy), unit(0x0003, dsnam)),
		controlRecord("INMR03"),
		[]byte("pds bytes"),
		controlRecord("INMR06"),
	}

	d, err := Decode(records, cp)
	require.NoError(t, err)
	require.Len(t, d.Descriptors, 2)
	require.Equal(t, "IEBCOPY", d.Descriptors[0].Utility)
	require.Equal(t, "INMCOPY", d.Descriptors[1].Utility)
	require.Equal(t, -1, d.Descriptors[0].SegmentIndex, "IEBCOPY half carries no data")
	require.Equal(t, 0, d.Descriptors[1].SegmentIndex, "INMCOPY half owns the unload stream")
}

func TestDecodeJoinsDSNAMQualifiers(t *testing.T) {
	cp := mustCP(t)
	inmcopy, _ := cp.Encode("INMCOPY")
	q1, _ := cp.Encode("PYTHON")
	q2, _ := cp.Encode("XMI")
	q3, _ := cp.Encode("PDS")

	records := [][]byte{
		controlRecord("INMR01"),
		controlRecord("INMR02", unit(0x000C, inmcopy), unit(0x0003, q1, q2, q3)),
		controlRecord("INMR06"),
	}

	d, err := Decode(records, cp)
	require.NoError(t, err)
	require.Len(t, d.Descriptors, 1)
	require.Equal(t, "PYTHON.XMI.PDS", d.Descriptors[0].DSNAM)
	require.False(t, d.Descriptors[0].IsMessage)
}

func TestDecodeMissingTerminatorFails(t *testing.T) {
	cp := mustCP(t)
	records := [][]byte{controlRecord("INMR01")}
	_, err := Decode(records, cp)
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestDecodeMissingINMR01Fails(t *testing.T) {
	cp := mustCP(t)
	records := [][]byte{controlRecord("INMR06")}
	_, err := Decode(records, cp)
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestDecodeDuplicateINMR01Fails(t *testing.T) {
	cp := mustCP(t)
	records := [][]byte{
		controlRecord("INMR01"),
		controlRecord("INMR01"),
		controlRecord("INMR06"),
	}
	_, err := Decode(records, cp)
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestDecodeDataRecordWithNoOpenSegmentFails(t *testing.T) {
	cp := mustCP(t)
	records := [][]byte{
		controlRecord("INMR01"),
		[]byte("orphan data"),
		controlRecord("INMR06"),
	}
	_, err := Decode(records, cp)
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}
