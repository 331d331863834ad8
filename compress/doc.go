// Package compress implements the HET block codec: the pair
// of compressors an AWSTAPE/HET physical block's flag byte can name,
// NONE, ZLIB, or BZIP2, behind a small Compressor/Decompressor/Codec
// interface split sized to the small, fixed set HET actually defines on
// the wire.
package compress
