// Package hash gives every named entity in this module (dataset names,
// member names) a stable 64-bit identifier so Archive and Dataset can index
// them in a map instead of scanning a slice.
package hash

import "github.com/cespare/xxhash/v2"

// NameID computes the xxHash64 of a dataset or member name. Names are
// compared post-trim (trailing EBCDIC spaces stripped), so callers must
// trim before hashing.
func NameID(name string) uint64 {
	return xxhash.Sum64String(name)
}
