package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps windows in process memory. Suitable for tests and
// single-replica deployments; counters reset on restart, which is the
// acceptable failure direction for this limiter.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string][]time.Time)}
}

func (s *MemoryStore) Window(_ context.Context, identity string) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	window := s.windows[identity]
	out := make([]time.Time, len(window))
	copy(out, window)
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, identity string, window []time.Time, _ time.Duration) error {
	stored := make([]time.Time, len(window))
	copy(stored, window)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(stored) == 0 {
		delete(s.windows, identity)
		return nil
	}
	s.windows[identity] = stored
	return nil
}
