package history

import (
	"context"
	"sync"
)

// MemoryStore keeps the last size runs in a ring buffer.
type MemoryStore struct {
	mu     sync.Mutex
	runs   []Run
	next   int
	full   bool
	nextID int64
}

// NewMemoryStore creates a store holding at most size runs
func NewMemoryStore(size int) *MemoryStore {
	if size < 1 {
		size = 1
	}
	return &MemoryStore{runs: make([]Run, size)}
}

func (m *MemoryStore) Record(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	run.ID = m.nextID
	m.runs[m.next] = run
	m.next = (m.next + 1) % len(m.runs)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := m.next
	if m.full {
		count = len(m.runs)
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	out := make([]Run, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.runs)) % len(m.runs)
		out = append(out, m.runs[idx])
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
