package resultcache

import (
	"context"
	"sync"
	"time"

	"github.com/rayzhou/text-toolkit/internal/domain/analyzer"
)

type entry struct {
	payload   analyzer.Response
	expiresAt time.Time
}

// MemoryStore is an in-memory analysis cache for tests and single-instance dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

// Get implements analyzer.Store.
func (s *MemoryStore) Get(_ context.Context, key string) (analyzer.Response, bool, error) {
	s.mu.RLock()
	record, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return analyzer.Response{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return analyzer.Response{}, false, nil
	}
	return record.payload, true, nil
}

// Set caches the response with optional TTL; zero TTL keeps it forever.
func (s *MemoryStore) Set(_ context.Context, key string, resp analyzer.Response, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry{payload: resp, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ analyzer.Store = (*MemoryStore)(nil)
