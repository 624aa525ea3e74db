package audit

import (
	"context"
	"sync"
)

const defaultRingSize = 512

// InMemoryArchive is a bounded in-process event ring for local/dev use.
type InMemoryArchive struct {
	mu     sync.RWMutex
	events []Event
	max    int
}

func NewInMemoryArchive() *InMemoryArchive {
	return &InMemoryArchive{max: defaultRingSize}
}

func (a *InMemoryArchive) Record(_ context.Context, e Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	if len(a.events) > a.max {
		a.events = a.events[len(a.events)-a.max:]
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (a *InMemoryArchive) Recent(_ context.Context, limit int) ([]Event, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if limit <= 0 || limit > len(a.events) {
		limit = len(a.events)
	}
	out := make([]Event, 0, limit)
	for i := len(a.events) - 1; i >= len(a.events)-limit; i-- {
		out = append(out, a.events[i])
	}
	return out, nil
}

func (a *InMemoryArchive) Close() error { return nil }
