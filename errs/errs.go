// Package errs defines the sentinel error taxonomy shared by every decoder
// in this module. Components return one of these sentinels (optionally
// wrapped with fmt.Errorf's %w to attach offset/context) so callers can
// classify failures with errors.Is instead of parsing messages.
package errs

import (
	"errors"
	"strconv"
)

// Taxonomy kinds: the seven failure categories a decode pass can produce,
// plus ErrNotIEBCOPY and ErrInvalidConfig. Each is returned bare or
// wrapped with positional context by the package that raises it.
var (
	// ErrTruncated is returned when a read would run past the end of the
	// input buffer.
	ErrTruncated = errors.New("mvsunload: truncated read past buffer end")

	// ErrUnknownContainer is returned when the root sniff recognizes
	// neither XMI nor AWSTAPE/HET framing.
	ErrUnknownContainer = errors.New("mvsunload: unrecognized container format")

	// ErrMalformedRecord is returned for BDW/RDW inconsistencies, bad
	// segment ordering, or a missing eye-catcher.
	ErrMalformedRecord = errors.New("mvsunload: malformed record")

	// ErrUnsupportedUtility is returned when an INMR02 names a utility
	// this decoder refuses to process (AMSCIPHR) or does not recognize.
	ErrUnsupportedUtility = errors.New("mvsunload: unsupported utility")

	// ErrUnsupportedFeature is returned for known-but-unimplemented
	// territory: PDSE fidelity beyond enumeration, AWS (non-HET)
	// compression, or exceeding the nested-container depth cap.
	ErrUnsupportedFeature = errors.New("mvsunload: unsupported feature")

	// ErrDecoding is returned when an EBCDIC table or similar internal
	// invariant is violated. Shipped tables make this unreachable.
	ErrDecoding = errors.New("mvsunload: internal decoding error")

	// ErrPolicyViolation is returned when a configured resource bound
	// (max_record_bytes, max_nested) is exceeded.
	ErrPolicyViolation = errors.New("mvsunload: policy violation")

	// ErrNotIEBCOPY is returned when the IEBCOPY decoder is invoked on a
	// stream whose first logical record lacks the COPYR1 eye-catcher.
	ErrNotIEBCOPY = errors.New("mvsunload: not an IEBCOPY unload stream")

	// ErrInvalidConfig is returned by a functional Config option that
	// received an out-of-range or inconsistent value.
	ErrInvalidConfig = errors.New("mvsunload: invalid configuration")
)

// Truncated describes a read that ran past the end of the buffer.
type Truncated struct {
	Offset int
	Need   int
	Have   int
}

func (e *Truncated) Error() string {
	return "mvsunload: truncated at offset " + strconv.Itoa(e.Offset) +
		": need " + strconv.Itoa(e.Need) + " bytes, have " + strconv.Itoa(e.Have)
}

func (e *Truncated) Unwrap() error { return ErrTruncated }

// MalformedRecord describes a specific framing inconsistency, e.g. a
// segment-flag ordering violation or a missing eye-catcher.
type MalformedRecord struct {
	Offset int
	Reason string
}

func (e *MalformedRecord) Error() string {
	return "mvsunload: malformed record at offset " + strconv.Itoa(e.Offset) + ": " + e.Reason
}

func (e *MalformedRecord) Unwrap() error { return ErrMalformedRecord }

// UnsupportedUtility names the INMUTILN value that triggered the failure.
type UnsupportedUtility struct {
	Name string
}

func (e *UnsupportedUtility) Error() string {
	return "mvsunload: unsupported utility " + e.Name
}

func (e *UnsupportedUtility) Unwrap() error { return ErrUnsupportedUtility }

// UnsupportedFeature names a recognized but unimplemented feature, e.g. a
// HET compression flag this decoder does not implement, or PDSE fidelity
// beyond member enumeration and data extraction.
type UnsupportedFeature struct {
	Feature string
}

func (e *UnsupportedFeature) Error() string {
	return "mvsunload: unsupported feature: " + e.Feature
}

func (e *UnsupportedFeature) Unwrap() error { return ErrUnsupportedFeature }

// PolicyViolation describes which configured bound was exceeded.
type PolicyViolation struct {
	Policy string
	Limit  int
	Got    int
}

func (e *PolicyViolation) Error() string {
	return "mvsunload: policy " + e.Policy + " violated: limit " + strconv.Itoa(e.Limit) + ", got " + strconv.Itoa(e.Got)
}

func (e *PolicyViolation) Unwrap() error { return ErrPolicyViolation }

