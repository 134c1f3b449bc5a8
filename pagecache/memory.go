package pagecache

import (
	"sync"
	"time"
)

// MemCache is an in-memory render cache.
type MemCache struct {
	mu      *sync.RWMutex
	entries map[string]Entry
}

func NewMemCache() MemCache {
	return MemCache{
		mu:      &sync.RWMutex{},
		entries: make(map[string]Entry),
	}
}

func (m MemCache) Get(path string) (Entry, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[path]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	if time.Now().After(e.Expires) {
		m.Purge(path)
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (m MemCache) Put(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.Path] = e
	return nil
}

func (m MemCache) Oldest() (string, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var oldestPath string
	var oldest time.Time
	for path, e := range m.entries {
		if e.Expires.IsZero() {
			continue
		}
		if oldestPath == "" || e.Expires.Before(oldest) {
			oldestPath = path
			oldest = e.Expires
		}
	}
	return oldestPath, oldest, nil
}

func (m MemCache) Purge(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, path)
}

func (m MemCache) Has(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[path]
	return ok
}
