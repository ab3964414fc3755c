package cache

import (
	"sync"
)

// CachedQuery is a template rewritten for one dialect.
type CachedQuery struct {
	Source  string // template text
	Dialect string
	SQL     string // text with driver placeholders
}

type QueryCache interface {
	GetSQL(dialect, source string) (*CachedQuery, bool)
	SetSQL(q *CachedQuery)
}

type memQueryCache struct {
	mu   sync.RWMutex
	data map[uint64]*CachedQuery
}

func NewQueryCache() QueryCache {
	return &memQueryCache{
		data: make(map[uint64]*CachedQuery, 64),
	}
}

func queryKey(dialect, source string) uint64 {
	return Mix64(Fingerprint(dialect), Fingerprint(source))
}

func (c *memQueryCache) GetSQL(dialect, source string) (*CachedQuery, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.data[queryKey(dialect, source)]
	if !ok || q.Source != source || q.Dialect != dialect {
		return nil, false
	}
	return q, true
}

func (c *memQueryCache) SetSQL(q *CachedQuery) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[queryKey(q.Dialect, q.Source)] = q
}
