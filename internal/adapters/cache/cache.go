// Package cache stores rendered view bytes keyed by dataset version and view
// parameters. Keys embed the snapshot version, so a reload never serves stale
// bytes and old entries simply age out.
package cache

import (
	"context"
	"strconv"
	"strings"
)

// Backend names.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Cache is a byte cache.
type Cache interface {
	// Get returns the cached bytes and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores val under key for the backend's TTL.
	Set(ctx context.Context, key string, val []byte) error
	// Name returns the backend name used in metrics.
	Name() string
	// Close releases backend resources.
	Close() error
}

// Key builds a cache key for a view rendering at a dataset version.
func Key(version uint64, view, format string, params ...string) string {
	var b strings.Builder
	b.WriteString("nobeldash:v")
	b.WriteString(strconv.FormatUint(version, 10))
	b.WriteByte(':')
	b.WriteString(view)
	b.WriteByte(':')
	b.WriteString(format)
	for _, p := range params {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error        { return nil }
func (Nop) Name() string                                     { return BackendNone }
func (Nop) Close() error                                     { return nil }
