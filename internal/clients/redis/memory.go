package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memEntry struct {
	raw     []byte
	expires time.Time
}

// memoryCache is the in-process Cache used when REDIS_ADDR is unset.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryCache() Cache {
	return &memoryCache{entries: map[string]memEntry{}, now: time.Now}
}

func (m *memoryCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.raw, dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memoryCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := memEntry{raw: raw}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

func (m *memoryCache) Close() error { return nil }
