package keyedstore

import (
	"context"
	"sort"
	"sync"
)

// Status is the fetch ticket attached to an entry.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Entry is the value held for one key. Err is only set on Complete entries
// whose fetch failed.
type Entry[T any] struct {
	Data   T
	Status Status
	Err    error
}

// Listener is notified with the key that changed.
type Listener func(key string)

// Store is a keyed map of entries with synchronous change notification. It is
// safe for concurrent use.
type Store[T any] struct {
	mu        sync.Mutex
	entries   map[string]Entry[T]
	listeners []subscription
	nextID    uint64
}

type subscription struct {
	id       uint64
	listener Listener
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithEntries seeds the store with completed entries.
func WithEntries[T any](seed map[string]T) Option[T] {
	return func(s *Store[T]) {
		for key, data := range seed {
			s.entries[key] = Entry[T]{Data: data, Status: StatusComplete}
		}
	}
}

func New[T any](opts ...Option[T]) *Store[T] {
	s := &Store[T]{entries: map[string]Entry[T]{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe registers listener and returns a function removing it. Listeners
// run in subscription order on the goroutine that changed the store.
func (s *Store[T]) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, listener: listener})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Get returns the entry for key. The first access creates an Idle entry and
// notifies listeners.
func (s *Store[T]) Get(key string) Entry[T] {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if ok {
		s.mu.Unlock()
		return entry
	}
	entry = Entry[T]{Status: StatusIdle}
	s.entries[key] = entry
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, key)
	return entry
}

// Peek returns the entry for key without creating it.
func (s *Store[T]) Peek(key string) (Entry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Update replaces the entry for key and notifies listeners.
func (s *Store[T]) Update(key string, data T, status Status) {
	s.set(key, Entry[T]{Data: data, Status: status})
}

// Fail marks key as complete with err, keeping any previous data.
func (s *Store[T]) Fail(key string, err error) {
	s.mu.Lock()
	entry := s.entries[key]
	entry.Status = StatusComplete
	entry.Err = err
	s.entries[key] = entry
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, key)
}

// Remove deletes key and notifies listeners when it was present.
func (s *Store[T]) Remove(key string) {
	s.mu.Lock()
	if _, ok := s.entries[key]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.entries, key)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, key)
}

// Claim moves key from Idle to Pending. A missing key is first created
// through Get, so listeners see the Idle entry before the Pending one. The
// caller receiving true owns the fetch for this cycle.
func (s *Store[T]) Claim(key string) (Entry[T], bool) {
	s.Get(key)

	s.mu.Lock()
	entry := s.entries[key]
	if entry.Status != StatusIdle {
		s.mu.Unlock()
		return entry, false
	}
	entry.Status = StatusPending
	entry.Err = nil
	s.entries[key] = entry
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, key)
	return entry, true
}

// Reclaim starts a new fetch cycle for a completed key (Complete -> Pending).
// Previous data stays visible until the new result lands.
func (s *Store[T]) Reclaim(key string) bool {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok || entry.Status != StatusComplete {
		s.mu.Unlock()
		return false
	}
	entry.Status = StatusPending
	entry.Err = nil
	s.entries[key] = entry
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, key)
	return true
}

// Release abandons a Pending cycle and puts key back to Idle so another
// consumer can claim it. Data from earlier cycles is kept.
func (s *Store[T]) Release(key string) bool {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok || entry.Status != StatusPending {
		s.mu.Unlock()
		return false
	}
	entry.Status = StatusIdle
	s.entries[key] = entry
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, key)
	return true
}

// Await blocks while key is Pending and returns the entry once it settles
// (Complete, or Idle after a Release) or ctx is done. A missing key is
// created as Idle and returned immediately.
func (s *Store[T]) Await(ctx context.Context, key string) (Entry[T], error) {
	signal := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(func(changed string) {
		if changed != key {
			return
		}
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		entry := s.Get(key)
		if entry.Status != StatusPending {
			return entry, nil
		}
		select {
		case <-ctx.Done():
			return entry, ctx.Err()
		case <-signal:
		}
	}
}

// Keys returns the stored keys in sorted order.
func (s *Store[T]) Keys() []string {
	s.mu.Lock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	s.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store[T]) set(key string, entry Entry[T]) {
	s.mu.Lock()
	s.entries[key] = entry
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, key)
}

// snapshotListeners must be called with mu held.
func (s *Store[T]) snapshotListeners() []Listener {
	if len(s.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		out[i] = sub.listener
	}
	return out
}

func notify(listeners []Listener, key string) {
	for _, listener := range listeners {
		listener(key)
	}
}
