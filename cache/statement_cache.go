package cache

import (
	"context"
	"database/sql"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cachedStmt counts the callers currently using stmt. An evicted statement is
// closed once the last of them releases it.
type cachedStmt struct {
	stmt    *sql.Stmt
	refs    int
	evicted bool
}

// StatementCache keeps prepared statements by query text and closes them on
// eviction, or on release when a caller still holds them.
type StatementCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *cachedStmt]
}

func NewStatementCache(size int) (*StatementCache, error) {
	// Runs inside Add and Purge, with mu held.
	cache, err := lru.NewWithEvict(size, func(_ string, e *cachedStmt) {
		e.evicted = true
		if e.refs == 0 {
			_ = e.stmt.Close()
		}
	})
	if err != nil {
		return nil, err
	}
	return &StatementCache{cache: cache}, nil
}

// GetOrPrepare returns the statement for query, preparing it on a miss. The
// statement stays open until release is called, even if it is evicted in the
// meantime. release may be called more than once.
func (s *StatementCache) GetOrPrepare(ctx context.Context, db *sql.DB, query string) (stmt *sql.Stmt, release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Get(query)
	if !ok {
		prepared, err := db.PrepareContext(ctx, query)
		if err != nil {
			return nil, nil, err
		}
		e = &cachedStmt{stmt: prepared}
		s.cache.Add(query, e)
	}
	e.refs++
	return e.stmt, s.releaser(e), nil
}

func (s *StatementCache) releaser(e *cachedStmt) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e.refs--
			if e.evicted && e.refs == 0 {
				_ = e.stmt.Close()
			}
		})
	}
}

// Len returns the number of cached statements.
func (s *StatementCache) Len() int {
	return s.cache.Len()
}

// Close evicts every statement. Statements still in use close on release.
func (s *StatementCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge()
	return nil
}
