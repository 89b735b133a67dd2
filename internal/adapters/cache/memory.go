package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/okian/penalty/pkg/metrics"
)

type entry struct {
	key     string
	val     []byte
	expires time.Time
}

// Memory is a bounded LRU cache. Values are copied on the way in and out.
type Memory struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an LRU cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: 512,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements Cache.
func (m *Memory) Name() string { return "memory" }

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*entry) //nolint:forcetypeassert // only *entry is stored
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.remove(el)
		return nil, false, nil
	}
	m.order.MoveToFront(el)
	return clone(e.val), true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if m.ttl > 0 {
		expires = m.now().Add(m.ttl)
	}
	if el, ok := m.items[key]; ok {
		e := el.Value.(*entry) //nolint:forcetypeassert // only *entry is stored
		e.val, e.expires = clone(val), expires
		m.order.MoveToFront(el)
		return nil
	}
	for len(m.items) >= m.maxSize {
		m.remove(m.order.Back())
	}
	m.items[key] = m.order.PushFront(&entry{key: key, val: clone(val), expires: expires})
	metrics.UpdateCacheSize(len(m.items))
	return nil
}

// Purge implements Cache.
func (m *Memory) Purge(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*list.Element)
	m.order.Init()
	metrics.UpdateCacheSize(0)
	return nil
}

// Len returns the number of live and not yet reaped entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// remove must be called with m.mu held.
func (m *Memory) remove(el *list.Element) {
	if el == nil {
		return
	}
	e := m.order.Remove(el).(*entry) //nolint:forcetypeassert // only *entry is stored
	delete(m.items, e.key)
	metrics.UpdateCacheSize(len(m.items))
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
