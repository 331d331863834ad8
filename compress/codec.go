package compress

import "fmt"

// BlockCodec identifies the compression algorithm an AWS/HET block's flag
// byte names.
type BlockCodec uint8

const (
	BlockCodecNone BlockCodec = iota
	BlockCodecZlib
	BlockCodecBzip2
)

func (c BlockCodec) String() string {
	switch c {
	case BlockCodecZlib:
		return "ZLIB"
	case BlockCodecBzip2:
		return "BZIP2"
	default:
		return "None"
	}
}

// Compressor compresses a single HET block payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a single HET block payload back to its
// original, uncompressed logical-record bytes.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[BlockCodec]Codec{
	BlockCodecNone:  NewNoOpCodec(),
	BlockCodecZlib:  NewZlibCodec(),
	BlockCodecBzip2: NewBzip2Codec(),
}

// GetCodec retrieves the built-in Codec for a block's compression flag.
func GetCodec(codec BlockCodec) (Codec, error) {
	c, ok := builtinCodecs[codec]
	if !ok {
		return nil, fmt.Errorf("compress: unsupported HET block codec: %s", codec)
	}
	return c, nil
}
