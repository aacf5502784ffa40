package cache

import (
	"sync"
	"time"

	"civicnews/internal/model"
)

// Entry is one cached article list with its provenance.
type Entry struct {
	Key       string
	Articles  []model.Article
	Source    string
	CreatedAt time.Time
}

// Memory is the in-process tier: short TTL, bounded capacity, oldest-inserted
// eviction. An entry seen expired on Get is removed on the spot.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	order    []string // insertion order, oldest first
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

func NewMemory(ttl time.Duration, capacity int) *Memory {
	return &Memory{
		entries:  make(map[string]*Entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

func (m *Memory) Get(key string) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.CreatedAt) >= m.ttl {
		m.remove(key)
		return nil, false
	}
	return e, true
}

func (m *Memory) Set(key string, articles []model.Article, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		m.remove(key)
	}
	if len(m.entries) >= m.capacity && len(m.order) > 0 {
		m.remove(m.order[0])
	}
	m.entries[key] = &Entry{Key: key, Articles: articles, Source: source, CreatedAt: m.now()}
	m.order = append(m.order, key)
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// remove expects m.mu held.
func (m *Memory) remove(key string) {
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
