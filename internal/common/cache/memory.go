package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value    string
	members  map[string]struct{}
	isSet    bool
	expireAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// MemoryCache is an in-process Cache for single-replica deployments and
// tests. Expired keys are dropped lazily on access.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock creates an in-process cache that reads time from now.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{entries: make(map[string]*memoryEntry), now: now}
}

// lookup returns the live entry for key, evicting it if expired.
// Callers must hold mu.
func (m *MemoryCache) lookup(key string) *memoryEntry {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return nil
	}
	return e
}

func (m *MemoryCache) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func wrongType(key string) error {
	return fmt.Errorf("WRONGTYPE operation against key %q holding the wrong kind of value", key)
}

func (m *MemoryCache) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*memoryEntry)
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		return "", nil
	}
	if e.isSet {
		return "", wrongType(key)
	}
	return e.value, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &memoryEntry{value: fmt.Sprint(value), expireAt: m.expiry(ttl)}
	return nil
}

func (m *MemoryCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookup(key) != nil {
		return false, nil
	}
	m.entries[key] = &memoryEntry{value: fmt.Sprint(value), expireAt: m.expiry(ttl)}
	return true, nil
}

func (m *MemoryCache) Del(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if m.lookup(key) != nil {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, key := range keys {
		if m.lookup(key) != nil {
			count++
		}
	}
	return count, nil
}

func (m *MemoryCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		return nil
	}
	if ttl <= 0 {
		delete(m.entries, key)
		return nil
	}
	e.expireAt = m.expiry(ttl)
	return nil
}

// TTL mirrors Redis: -2ns when the key is missing, -1ns when it has no expiry.
func (m *MemoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	switch {
	case e == nil:
		return -2, nil
	case e.expireAt.IsZero():
		return -1, nil
	}
	return e.expireAt.Sub(m.now()), nil
}

func (m *MemoryCache) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		m.entries[key] = &memoryEntry{value: "1"}
		return 1, nil
	}
	if e.isSet {
		return 0, wrongType(key)
	}
	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value is not an integer: %w", err)
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *MemoryCache) SAdd(ctx context.Context, key string, members ...interface{}) error {
	if len(members) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		e = &memoryEntry{isSet: true, members: make(map[string]struct{})}
		m.entries[key] = e
	}
	if !e.isSet {
		return wrongType(key)
	}
	for _, member := range members {
		e.members[fmt.Sprint(member)] = struct{}{}
	}
	return nil
}

func (m *MemoryCache) SRem(ctx context.Context, key string, members ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		return nil
	}
	if !e.isSet {
		return wrongType(key)
	}
	for _, member := range members {
		delete(e.members, fmt.Sprint(member))
	}
	if len(e.members) == 0 {
		delete(m.entries, key)
	}
	return nil
}

func (m *MemoryCache) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		return []string{}, nil
	}
	if !e.isSet {
		return nil, wrongType(key)
	}
	out := make([]string, 0, len(e.members))
	for member := range e.members {
		out = append(out, member)
	}
	return out, nil
}

func (m *MemoryCache) SCard(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		return 0, nil
	}
	if !e.isSet {
		return 0, wrongType(key)
	}
	return int64(len(e.members)), nil
}
