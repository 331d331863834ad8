package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-zseries/mvsunload/config"
)

func TestCacheNoneIsPassthrough(t *testing.T) {
	c := New(config.CacheCompressionNone)
	data := []byte("member payload bytes")
	require.NoError(t, c.Put("MEMBER1", data))

	got, ok, err := c.Get("MEMBER1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)
}

func TestCacheGetMissingReturnsNotOK(t *testing.T) {
	c := New(config.CacheCompressionNone)
	_, ok, err := c.Get("NOPE")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheLZ4RoundTrip(t *testing.T) {
	c := New(config.CacheCompressionLZ4)
	data := []byte("the quick brown fox jumps over the lazy dog, repeated for compressibility: the quick brown fox jumps over the lazy dog")
	require.NoError(t, c.Put("MEMBER1", data))

	got, ok, err := c.Get("MEMBER1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)
}

func TestCacheZstdRoundTrip(t *testing.T) {
	c := New(config.CacheCompressionZstd)
	data := []byte("the quick brown fox jumps over the lazy dog, repeated for compressibility: the quick brown fox jumps over the lazy dog")
	require.NoError(t, c.Put("MEMBER1", data))

	got, ok, err := c.Get("MEMBER1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)
}

func TestCacheLen(t *testing.T) {
	c := New(config.CacheCompressionNone)
	require.NoError(t, c.Put("A", []byte("a")))
	require.NoError(t, c.Put("B", []byte("b")))
	require.Equal(t, 2, c.Len())
}
