package scheduler

import (
	"context"
	"sync"
	"time"

	"stocksignalsv1/internal/model"
)

// MemStore is an in-process Store used when Redis is not configured. State
// does not survive restarts.
type MemStore struct {
	mu       sync.Mutex
	history  map[string]memEntry
	statuses map[string]string
}

type memEntry struct {
	bars      []model.Bar
	fetchedAt time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		history:  make(map[string]memEntry),
		statuses: make(map[string]string),
	}
}

func (m *MemStore) History(ctx context.Context, ticker string) ([]model.Bar, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.history[ticker]
	if !ok {
		return nil, time.Time{}, nil
	}
	return e.bars, e.fetchedAt, nil
}

func (m *MemStore) PutHistory(ctx context.Context, ticker string, bars []model.Bar, fetchedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[ticker] = memEntry{bars: bars, fetchedAt: fetchedAt}
	return nil
}

func (m *MemStore) LastStatus(ctx context.Context, ticker string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[ticker], nil
}

func (m *MemStore) SetLastStatus(ctx context.Context, ticker, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[ticker] = status
	return nil
}
