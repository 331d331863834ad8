// Package mvsunload decodes mainframe dataset-interchange containers
// (NETDATA/XMI, AWSTAPE/HET, and the IEBCOPY unload stream they carry)
// into a single in-memory Archive tree.
//
// # Core Features
//
//   - NETDATA (XMI) TRANSMIT wrapper decoding, including nested containers
//   - AWSTAPE/HET virtual tape image decoding with ZLIB/BZIP2 block codecs
//   - IEBCOPY PDS/PDSE unload stream reconstruction, member by member
//   - RECFM F/FB/V/VB/VS/VBS/U deblocking and spanned-record reassembly
//   - EBCDIC-to-Unicode transcoding via a pluggable code page table
//   - O(1) dataset and member lookup by name
//   - A dump_json projection of the decoded tree for inspection
//
// # Basic Usage
//
//	import "github.com/go-zseries/mvsunload"
//
//	data, _ := os.ReadFile("payroll.xmi")
//	archive, err := mvsunload.Decode(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ds, ok := archive.Dataset("PAYROLL.MASTER")
//	if ok {
//		fmt.Println(ds.Organization, ds.LRECL)
//	}
//
// Non-default behavior is selected with functional options:
//
//	archive, err := mvsunload.Decode(data,
//		mvsunload.WithEncoding("cp037"),
//		mvsunload.WithForceText(true),
//	)
package mvsunload

import (
	"github.com/go-zseries/mvsunload/archive"
	"github.com/go-zseries/mvsunload/config"
)

// Re-exported so callers need only import this package for the common
// path; the config package remains available directly for callers that
// build a Config once and reuse it across many Decode calls.
type (
	Config           = config.Config
	Option           = config.Option
	LogLevel         = config.LogLevel
	CacheCompression = config.CacheCompression
)

const (
	LogQuiet  = config.LogQuiet
	LogNormal = config.LogNormal
	LogDebug  = config.LogDebug

	CacheCompressionNone = config.CacheCompressionNone
	CacheCompressionZstd = config.CacheCompressionZstd
	CacheCompressionLZ4  = config.CacheCompressionLZ4
)

var (
	WithLRECLOverride      = config.WithLRECLOverride
	WithEncoding           = config.WithEncoding
	WithUnnum              = config.WithUnnum
	WithForceText          = config.WithForceText
	WithBinaryOnly         = config.WithBinaryOnly
	WithPreserveModifyDate = config.WithPreserveModifyDate
	WithMaxRecordBytes     = config.WithMaxRecordBytes
	WithMaxNested          = config.WithMaxNested
	WithLogLevel           = config.WithLogLevel
	WithCacheCompression   = config.WithCacheCompression
)

// Archive is the root of a decoded container; see package archive for
// its full shape (Datasets, Message, Warnings, Cache).
type Archive = archive.Archive

// DumpOptions controls the dump_json projection's Text field.
type DumpOptions = archive.DumpOptions

// ContainerKind identifies the root container format a payload sniffed
// to.
type ContainerKind = archive.ContainerKind

const (
	ContainerUnknown = archive.ContainerUnknown
	ContainerXMI     = archive.ContainerXMI
	ContainerAWS     = archive.ContainerAWS
	ContainerHET     = archive.ContainerHET
)

// Sniff reports which container format data begins with, without fully
// decoding it.
func Sniff(data []byte) ContainerKind {
	return archive.Sniff(data)
}

// Decode identifies data's container format (NETDATA/XMI, AWSTAPE,
// HET) and fully decodes it into an Archive, applying opts over the
// default Config.
func Decode(data []byte, opts ...Option) (*Archive, error) {
	cfg, err := config.New(opts...)
	if err != nil {
		return nil, err
	}
	return archive.Decode(data, cfg)
}

// DecodeWithConfig decodes data using a Config built and reused by the
// caller, bypassing per-call option construction.
func DecodeWithConfig(data []byte, cfg Config) (*Archive, error) {
	return archive.Decode(data, cfg)
}
