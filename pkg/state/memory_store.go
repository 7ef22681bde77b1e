package state

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Persistence intended for tests, examples and
// single-process use. Expired records are dropped lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     Clock
}

type memoryRecord struct {
	value     string
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used for expiry.
func WithClock(clock Clock) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records: map[string]memoryRecord{},
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, ErrKeyRequired
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(record.expiresAt) {
		s.mu.Lock()
		if current, ok := s.records[key]; ok && current.expiresAt.Equal(record.expiresAt) {
			delete(s.records, key)
		}
		s.mu.Unlock()
		return "", false, nil
	}
	return record.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttlDays int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrKeyRequired
	}

	s.mu.Lock()
	s.records[key] = memoryRecord{value: value, expiresAt: ExpiresAt(s.now(), ttlDays)}
	s.mu.Unlock()
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.records, strings.TrimSpace(key))
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
