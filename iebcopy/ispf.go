package iebcopy

import (
	"fmt"

	"github.com/go-zseries/mvsunload/ebcdic"
	"github.com/go-zseries/mvsunload/endian"
	"github.com/go-zseries/mvsunload/errs"
)

// IspfStats holds the editor-maintained metadata carried in a 30-byte
// directory-entry parms blob when halfwords == 15.
type IspfStats struct {
	VersionMajor   int
	VersionMinor   int
	Flags          byte
	CreatedDate    string // YYYY-MM-DD, derived from Julian yyddd + century
	ModifiedDate   string
	ModifiedHour   int
	ModifiedMinute int
	ModifiedSecond int
	Lines          uint16
	NewLines       uint16
	ModifiedLines  uint16
	ModifiedCentis int
	Owner          string
}

const ispfStatsLen = 28

// DecodeIspfStats decodes a 30-byte (or longer, trailing bytes ignored)
// parms blob into IspfStats per its fixed field layout.
func DecodeIspfStats(parms []byte, cp *ebcdic.CodePage) (IspfStats, error) {
	if len(parms) < ispfStatsLen {
		return IspfStats{}, &errs.Truncated{Need: ispfStatsLen, Have: len(parms)}
	}
	var s IspfStats
	s.VersionMajor = int(bcdByte(parms[0]))
	s.VersionMinor = int(bcdByte(parms[1]))
	s.Flags = parms[2]

	created, err := decodePackedDate(parms[3:6])
	if err != nil {
		return IspfStats{}, err
	}
	s.CreatedDate = created

	modified, err := decodePackedDate(parms[6:9])
	if err != nil {
		return IspfStats{}, err
	}
	s.ModifiedDate = modified

	s.ModifiedHour = int(bcdByte(parms[9]))
	s.ModifiedMinute = int(bcdByte(parms[10]))
	s.Lines = endian.Big.Uint16(parms[11:13])
	s.NewLines = endian.Big.Uint16(parms[13:15])
	s.ModifiedLines = endian.Big.Uint16(parms[15:17])
	// parms[17] is pad.
	s.ModifiedSecond = int(bcdByte(parms[18]))
	s.ModifiedCentis = int(bcdByte(parms[19]))
	s.Owner = cp.DecodeTrimSpace(parms[20:28])
	return s, nil
}

// bcdByte decodes one packed-BCD byte (two decimal digits per byte) into
// its integer value, e.g. 0x21 -> 21.
func bcdByte(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// decodePackedDate decodes a 3-byte packed date: the first nibble is the
// century digit (0 = 1900, 1 = 2000), followed by 2-digit year and
// 3-digit day-of-year, all packed BCD, per IBM's century-digit
// semantics.
func decodePackedDate(b []byte) (string, error) {
	century := int(b[0] >> 4)
	yy := int(b[0]&0x0F)*10 + int(b[1]>>4)
	ddd := int(b[1]&0x0F)*100 + int(b[2]>>4)*10 + int(b[2]&0x0F)
	if ddd < 1 || ddd > 366 {
		return "", &errs.MalformedRecord{Reason: "ISPF stats date has an out-of-range day-of-year"}
	}
	year := 1900 + century*100 + yy
	return julianToISO(year, ddd), nil
}

// julianToISO converts a year + day-of-year into YYYY-MM-DD, accounting
// for leap years.
func julianToISO(year, dayOfYear int) string {
	leap := (year%4 == 0 && year%100 != 0) || year%400 == 0
	days := [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if leap {
		days[1] = 29
	}
	month := 1
	remaining := dayOfYear
	for _, d := range days {
		if remaining <= d {
			break
		}
		remaining -= d
		month++
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, remaining)
}
