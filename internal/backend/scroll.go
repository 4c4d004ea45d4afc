package backend

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// scrollCursor tracks paging state for one open Scroll. Bleve has no native
// scroll primitive (unlike the distributed-search engines the interface is
// modeled on), so cursors are synthesized here as TTL-bounded paging state
// over repeated bounded Search calls.
type scrollCursor struct {
	indexName string
	query     Query
	batchSize int
	from      int
	total     int
	ttl       time.Duration
	expiresAt time.Time
}

// scrollRegistry holds open cursors, pruning expired ones lazily.
type scrollRegistry struct {
	mu      sync.Mutex
	cursors map[string]*scrollCursor
}

func newScrollRegistry() *scrollRegistry {
	return &scrollRegistry{cursors: make(map[string]*scrollCursor)}
}

func (r *scrollRegistry) open(indexName string, q Query, batchSize int, ttl time.Duration) (string, *scrollCursor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()

	id := uuid.NewString()
	c := &scrollCursor{
		indexName: indexName,
		query:     q,
		batchSize: batchSize,
		from:      0,
		ttl:       ttl,
		expiresAt: time.Now().Add(ttl),
	}
	r.cursors[id] = c
	return id, c
}

func (r *scrollRegistry) get(id string) (*scrollCursor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()

	c, ok := r.cursors[id]
	if !ok {
		return nil, false
	}
	return c, true
}

func (r *scrollRegistry) advance(id string, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cursors[id]; ok {
		c.from += c.batchSize
		c.expiresAt = time.Now().Add(ttl)
	}
}

func (r *scrollRegistry) close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cursors, id)
}

func (r *scrollRegistry) pruneLocked() {
	now := time.Now()
	for id, c := range r.cursors {
		if now.After(c.expiresAt) {
			delete(r.cursors, id)
		}
	}
}
