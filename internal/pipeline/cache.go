package pipeline

import (
	"sync"

	"github.com/couchcryptid/hechos-map-service/internal/domain"
)

// resultKey identifies a filter evaluation against one loaded collection.
// A new load ID makes every older entry unreachable.
type resultKey struct {
	loadID  string
	filters domain.Filters
}

// resultCache is a thread-safe LRU cache of filter results. Cached slices
// are shared between callers and must be treated as read-only.
type resultCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[resultKey]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   resultKey
	value []domain.Event
	prev  *entry
	next  *entry
}

func newResultCache(maxEntries int) *resultCache {
	return &resultCache{
		maxEntries: maxEntries,
		entries:    make(map[resultKey]*entry),
	}
}

func (c *resultCache) get(key resultKey) ([]domain.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *resultCache) put(key resultKey, value []domain.Event) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// purge drops every entry.
func (c *resultCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[resultKey]*entry)
	c.head, c.tail = nil, nil
}

func (c *resultCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *resultCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *resultCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *resultCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
