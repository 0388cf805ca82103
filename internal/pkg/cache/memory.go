package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// sweepInterval is how often Set scans the whole map for expired entries.
const sweepInterval = time.Minute

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryCache is the in-process Cache used when no Redis address is
// configured. Expired entries are dropped on read, and writes sweep the
// whole map at most once per sweepInterval so keys that are never read
// again do not pile up.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	serviceName string
	now         func() time.Time
	nextSweep   time.Time
}

// NewMemoryCache returns a process-local Cache.
func NewMemoryCache(serviceName string) Cache {
	return &memoryCache{
		entries:     make(map[string]memoryEntry),
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(key, value, ttl)
	return nil
}

func (m *memoryCache) SetIfAbsent(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && !e.expired(m.now()) {
		return false, nil
	}
	m.store(key, value, ttl)
	return true, nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return "", nil
	}
	return e.value, nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.serviceName, operation, key)
}

// store writes the entry and runs a sweep when one is due. m.mu must be held.
func (m *memoryCache) store(key string, value interface{}, ttl time.Duration) {
	now := m.now()

	e := memoryEntry{value: stringify(value)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries[key] = e

	if now.Before(m.nextSweep) {
		return
	}
	for k, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, k)
		}
	}
	m.nextSweep = now.Add(sweepInterval)
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
