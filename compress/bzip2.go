package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// Bzip2Codec handles HET blocks whose compression byte is 0x02 (BZIP2).
type Bzip2Codec struct{}

var _ Codec = (*Bzip2Codec)(nil)

// NewBzip2Codec returns the BZIP2 block codec.
func NewBzip2Codec() Bzip2Codec {
	return Bzip2Codec{}
}

// Compress bzip2-compresses data at the library default level.
func (c Bzip2Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("compress: bzip2 writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress: bzip2 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress: bzip2 close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a bzip2-compressed HET block payload.
func (c Bzip2Codec) Decompress(data []byte) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("compress: bzip2 open: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("compress: bzip2 inflate: %w", err)
	}
	return out, nil
}
