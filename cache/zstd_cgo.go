//go:build cgo

package cache

import (
	"github.com/valyala/gozstd"
)

type zstdCodec struct{}

func newZstdCodec() *zstdCodec { return &zstdCodec{} }

func (z *zstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

func (z *zstdCodec) Decompress(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		return gozstd.Decompress(nil, data)
	}
	return gozstd.Decompress(make([]byte, 0, size), data)
}
