package cache

import (
	"context"
	"sync"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
)

var _ application.ResultCache = (*Memory)(nil)

type entry struct {
	rec      domain.PriceRecord
	cachedAt time.Time
}

// Memory holds the most recent pipeline outcome per key for the
// freshness window. Entries are replaced wholesale, never merged.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
		entries: make(map[string]entry),
	}
}

func (m *Memory) Get(_ context.Context, key string) (domain.PriceRecord, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return domain.PriceRecord{}, false
	}
	if m.ttl > 0 && m.now().Sub(e.cachedAt) >= m.ttl {
		return domain.PriceRecord{}, false
	}
	return e.rec, true
}

func (m *Memory) Set(_ context.Context, key string, rec domain.PriceRecord) {
	m.mu.Lock()
	m.entries[key] = entry{rec: rec, cachedAt: m.now()}
	m.mu.Unlock()
}
