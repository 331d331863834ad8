// Package config holds the single immutable Config threaded through the
// orchestrator and every framer it calls,
// built with the same functional-options shape used for constructing
// other immutable values in this module.
package config

import (
	"github.com/go-zseries/mvsunload/errs"
	"github.com/go-zseries/mvsunload/internal/options"
)

// LogLevel is carried on Config for the external diagnostics sink. The
// decode pass records the same Warnings list on the Archive at every
// level and never writes to stdio itself; quiet/debug behavior is realized
// by the external sink choosing how much of that list to surface.
type LogLevel int

const (
	LogQuiet LogLevel = iota
	LogNormal
	LogDebug
)

// CacheCompression selects the codec used by the optional lazily-decoded
// member/dataset byte-stream cache.
// It is independent of the HET block compression the wire format defines.
type CacheCompression int

const (
	// CacheCompressionNone disables the cache; byte streams are retained
	// as plain decoded bytes (or not retained at all in streaming mode).
	CacheCompressionNone CacheCompression = iota
	CacheCompressionZstd
	CacheCompressionLZ4
)

const (
	// DefaultMaxRecordBytes bounds any single allocated buffer, guarding
	// against a corrupt or hostile length field demanding an enormous
	// allocation.
	DefaultMaxRecordBytes = 64 * 1024 * 1024

	// DefaultMaxNested bounds XMI-in-XMI (or XMI-in-AWS-in-XMI, ...)
	// recursion depth.
	DefaultMaxNested = 8

	// DefaultEncoding is the EBCDIC code page used when none is given.
	DefaultEncoding = "cp1140"
)

// Config is the immutable, by-value configuration passed to the
// orchestrator and every framer beneath it.
type Config struct {
	// LRECLOverride replaces the LRECL recovered from container metadata
	// when nonzero; zero means "use what the container reports."
	LRECLOverride int

	// Encoding names the EBCDIC code page used for every text field.
	Encoding string

	// Unnum strips the trailing 8-column sequence number from RECFM
	// F/FB LRECL=80 text streams.
	Unnum bool

	// ForceText forces text classification regardless of content
	// sniffing.
	ForceText bool

	// BinaryOnly forces binary classification regardless of content
	// sniffing.
	BinaryOnly bool

	// PreserveModifyDate disables any derived-timestamp normalization a
	// consumer might otherwise apply to ISPF stats' modified date.
	PreserveModifyDate bool

	// MaxRecordBytes bounds a single logical-record or member-stream
	// allocation.
	MaxRecordBytes int

	// MaxNested bounds nested-container recursion depth.
	MaxNested int

	// LogLevel is the verbosity handed to the diagnostics sink; it does
	// not change what the decode pass records on the Archive.
	LogLevel LogLevel

	// CacheCompression selects the optional lazy byte-stream cache codec.
	CacheCompression CacheCompression
}

// Default returns the default Config: cp1140,
// unnum enabled, force/binary off, 64MiB/depth-8 resource bounds, no
// byte-stream cache.
func Default() Config {
	return Config{
		Encoding:       DefaultEncoding,
		Unnum:          true,
		MaxRecordBytes: DefaultMaxRecordBytes,
		MaxNested:      DefaultMaxNested,
		LogLevel:       LogNormal,
	}
}

// Option configures a Config under construction. Options are applied in
// order by New, using the same generic Option[T]/Apply machinery every
// configurable type in this module builds on.
type Option = options.Option[*Config]

// New builds a Config starting from Default and applying opts in order.
func New(opts ...Option) (Config, error) {
	cfg := Default()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithLRECLOverride sets a fixed LRECL, overriding whatever the container
// metadata reports.
func WithLRECLOverride(lrecl int) Option {
	return options.New(func(c *Config) error {
		if lrecl < 0 {
			return errs.ErrInvalidConfig
		}
		c.LRECLOverride = lrecl
		return nil
	})
}

// WithEncoding selects the EBCDIC code page by name.
func WithEncoding(name string) Option {
	return options.New(func(c *Config) error {
		if name == "" {
			return errs.ErrInvalidConfig
		}
		c.Encoding = name
		return nil
	})
}

// WithUnnum enables or disables sequence-number stripping.
func WithUnnum(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.Unnum = enabled
	})
}

// WithForceText forces text classification.
func WithForceText(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.ForceText = enabled
	})
}

// WithBinaryOnly forces binary classification.
func WithBinaryOnly(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.BinaryOnly = enabled
	})
}

// WithPreserveModifyDate disables modify-date normalization.
func WithPreserveModifyDate(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.PreserveModifyDate = enabled
	})
}

// WithMaxRecordBytes sets the single-allocation bound.
func WithMaxRecordBytes(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return errs.ErrInvalidConfig
		}
		c.MaxRecordBytes = n
		return nil
	})
}

// WithMaxNested sets the nested-container recursion bound.
func WithMaxNested(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return errs.ErrInvalidConfig
		}
		c.MaxNested = n
		return nil
	})
}

// WithLogLevel sets diagnostic verbosity.
func WithLogLevel(level LogLevel) Option {
	return options.NoError(func(c *Config) {
		c.LogLevel = level
	})
}

// WithCacheCompression selects the lazy byte-stream cache codec.
func WithCacheCompression(codec CacheCompression) Option {
	return options.NoError(func(c *Config) {
		c.CacheCompression = codec
	})
}
