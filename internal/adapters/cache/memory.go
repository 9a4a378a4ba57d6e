package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/nobeldash/pkg/metrics"
)

const (
	defaultTTL        = 15 * time.Minute
	defaultMaxEntries = 1024
)

type entry struct {
	val     []byte
	expires time.Time
}

// Memory is an in-process cache with per-entry expiry.
type Memory struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-process cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		items:      make(map[string]entry),
		ttl:        defaultTTL,
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements Cache.Get.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expires) {
		metrics.RecordCacheOp(BackendMemory, "miss")
		return nil, false, nil
	}
	metrics.RecordCacheOp(BackendMemory, "hit")
	return e.val, true, nil
}

// Set implements Cache.Set. When full, expired entries are dropped first and
// then the entry closest to expiry.
func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && len(m.items) >= m.maxEntries {
		m.evictLocked(now)
	}
	m.items[key] = entry{val: val, expires: now.Add(m.ttl)}
	metrics.RecordCacheOp(BackendMemory, "set")
	return nil
}

func (m *Memory) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range m.items {
		if !now.Before(e.expires) {
			delete(m.items, k)
			continue
		}
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = k, e.expires
		}
	}
	if len(m.items) >= m.maxEntries && oldestKey != "" {
		delete(m.items, oldestKey)
	}
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Name implements Cache.Name.
func (m *Memory) Name() string { return BackendMemory }

// Close implements Cache.Close.
func (m *Memory) Close() error { return nil }
