package store

import (
	"context"
	"sync"

	"vms/internal/activitylog"
)

// InMemory keeps entries in append order.
type InMemory struct {
	mu      sync.RWMutex
	entries []*activitylog.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, entry *activitylog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *entry
	s.entries = append(s.entries, &c)
	return nil
}

func (s *InMemory) Recent(_ context.Context, limit int) ([]*activitylog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(limit, len(s.entries))
	out := make([]*activitylog.Entry, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		c := *s.entries[i]
		out = append(out, &c)
	}
	return out, nil
}

// All returns every entry oldest first. Used by tests that assert on full narratives.
func (s *InMemory) All() []*activitylog.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*activitylog.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		c := *e
		out = append(out, &c)
	}
	return out
}
