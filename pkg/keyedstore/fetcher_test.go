package keyedstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-formsync/pkg/logging"
)

func TestFetcherIssuesSingleFetchForConcurrentLoads(t *testing.T) {
	store := New[string]()
	var calls atomic.Int32
	started := make(chan struct{})
	gate := make(chan struct{})

	fetcher := NewFetcher(store, func(ctx context.Context, key string) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-gate
		return "X", nil
	})

	results := make([]Entry[string], 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = fetcher.Load(context.Background(), "/r")
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = fetcher.Load(context.Background(), "/r")
	}()

	time.Sleep(10 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one fetch, got %d", got)
	}
	for i, entry := range results {
		if entry.Status != StatusComplete || entry.Data != "X" {
			t.Fatalf("consumer %d expected complete X, got %+v", i, entry)
		}
	}
}

func TestFetcherRecordsFailure(t *testing.T) {
	var logged []logging.Event
	fetcher := NewFetcher(New[string](), func(context.Context, string) (string, error) {
		return "", errors.New("unavailable")
	}, WithLogger[string](logging.Func(func(e logging.Event) { logged = append(logged, e) })))

	entry, err := fetcher.Load(context.Background(), "/r")
	if err != nil {
		t.Fatalf("load should not return fetch errors, got %v", err)
	}
	if entry.Status != StatusComplete || entry.Err == nil {
		t.Fatalf("expected failed complete entry, got %+v", entry)
	}
	if len(logged) != 1 || logged[0].Err == nil || logged[0].Key != "/r" {
		t.Fatalf("expected one logged failure, got %+v", logged)
	}

	again, _ := fetcher.Load(context.Background(), "/r")
	if again.Err == nil {
		t.Fatalf("expected failure to stick until refreshed")
	}
}

func TestFetcherRefreshStartsNewCycle(t *testing.T) {
	var calls atomic.Int32
	fetcher := NewFetcher(New[int](), func(context.Context, string) (int, error) {
		return int(calls.Add(1)), nil
	})

	first, _ := fetcher.Load(context.Background(), "k")
	cached, _ := fetcher.Load(context.Background(), "k")
	refreshed, _ := fetcher.Refresh(context.Background(), "k")

	if first.Data != 1 || cached.Data != 1 {
		t.Fatalf("expected cached value 1, got %d / %d", first.Data, cached.Data)
	}
	if refreshed.Data != 2 {
		t.Fatalf("expected refreshed value 2, got %d", refreshed.Data)
	}
}

func TestFetcherReleasesWhenOwnerCancels(t *testing.T) {
	store := New[string]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewFetcher(store, func(ctx context.Context, key string) (string, error) {
		return "", ctx.Err()
	})
	entry, _ := fetcher.Load(ctx, "k")
	if entry.Err == nil {
		t.Fatalf("expected owner to see its cancellation")
	}
	if stored, _ := store.Peek("k"); stored.Status != StatusIdle {
		t.Fatalf("expected key released back to idle, got %+v", stored)
	}

	ok := NewFetcher(store, func(context.Context, string) (string, error) { return "v", nil })
	next, err := ok.Load(context.Background(), "k")
	if err != nil || next.Data != "v" {
		t.Fatalf("expected next consumer to claim and fetch, got %+v err=%v", next, err)
	}
}
