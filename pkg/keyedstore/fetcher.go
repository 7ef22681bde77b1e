package keyedstore

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-formsync/pkg/logging"
)

// FetchFunc loads the value for key.
type FetchFunc[T any] func(ctx context.Context, key string) (T, error)

// Fetcher is a fetch-once consumer over a Store: concurrent loads of the same
// key share a single fetch.
type Fetcher[T any] struct {
	store  *Store[T]
	fetch  FetchFunc[T]
	logger logging.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption[T any] func(*Fetcher[T])

// WithLogger records fetch outcomes.
func WithLogger[T any](logger logging.Logger) FetcherOption[T] {
	return func(f *Fetcher[T]) {
		f.logger = logging.OrNoop(logger)
	}
}

func NewFetcher[T any](store *Store[T], fetch FetchFunc[T], opts ...FetcherOption[T]) *Fetcher[T] {
	if store == nil {
		store = New[T]()
	}
	f := &Fetcher[T]{store: store, fetch: fetch, logger: logging.Noop()}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Store returns the backing store.
func (f *Fetcher[T]) Store() *Store[T] {
	return f.store
}

// Load returns the entry for key, fetching it when nobody has yet. Callers
// that find the key Pending wait for the in-flight fetch instead of issuing
// their own. Fetch failures are recorded on the entry, not returned; the
// error result only reports ctx expiry while waiting.
func (f *Fetcher[T]) Load(ctx context.Context, key string) (Entry[T], error) {
	for {
		if _, claimed := f.store.Claim(key); claimed {
			return f.perform(ctx, key), nil
		}
		entry, err := f.store.Await(ctx, key)
		if err != nil {
			return entry, err
		}
		if entry.Status == StatusComplete {
			return entry, nil
		}
		// the previous owner released the cycle; try to claim it
	}
}

// Refresh starts a new fetch cycle for a completed key, or behaves like Load
// when the key has not completed yet.
func (f *Fetcher[T]) Refresh(ctx context.Context, key string) (Entry[T], error) {
	if f.store.Reclaim(key) {
		return f.perform(ctx, key), nil
	}
	return f.Load(ctx, key)
}

func (f *Fetcher[T]) perform(ctx context.Context, key string) Entry[T] {
	if f.fetch == nil {
		err := errors.New("keyedstore: fetch function is nil")
		f.store.Fail(key, err)
		entry, _ := f.store.Peek(key)
		return entry
	}

	start := time.Now()
	data, err := f.fetch(ctx, key)
	f.logger.Log(logging.Event{
		Component: "keyedstore",
		Op:        "fetch",
		Key:       key,
		Duration:  time.Since(start),
		Err:       err,
	})

	switch {
	case err != nil && ctx.Err() != nil:
		// the owner went away; let the next consumer claim the key
		f.store.Release(key)
	case err != nil:
		f.store.Fail(key, err)
	default:
		f.store.Update(key, data, StatusComplete)
	}

	entry, _ := f.store.Peek(key)
	if err != nil && entry.Err == nil {
		entry.Err = err
	}
	return entry
}
