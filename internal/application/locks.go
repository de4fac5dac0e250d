package application

import "sync"

// keyLocks serializes history writes per product key so that a manual
// trigger overlapping a scheduled run cannot interleave appends.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[string]*sync.Mutex)}
}

func (l *keyLocks) forKey(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.m[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	l.m[key] = m
	return m
}
