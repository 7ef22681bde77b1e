package keyedstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGetCreatesIdleEntryAndNotifiesOnce(t *testing.T) {
	store := New[string]()
	var seen []string
	store.Subscribe(func(key string) { seen = append(seen, key) })

	entry := store.Get("/r")
	if entry.Status != StatusIdle || entry.Data != "" {
		t.Fatalf("expected idle empty entry, got %+v", entry)
	}
	store.Get("/r")

	if diff := cmp.Diff([]string{"/r"}, seen); diff != "" {
		t.Fatalf("unexpected notifications (-want +got):\n%s", diff)
	}
}

func TestNotificationOrderAndUnsubscribe(t *testing.T) {
	store := New[int]()
	var order []string
	store.Subscribe(func(string) { order = append(order, "first") })
	unsubscribe := store.Subscribe(func(string) { order = append(order, "second") })
	store.Subscribe(func(string) { order = append(order, "third") })

	store.Update("k", 1, StatusComplete)
	unsubscribe()
	unsubscribe()
	store.Update("k", 2, StatusComplete)

	want := []string{"first", "second", "third", "first", "third"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestListenersMayReadStore(t *testing.T) {
	store := New[int]()
	var observed Entry[int]
	store.Subscribe(func(key string) {
		observed, _ = store.Peek(key)
	})
	store.Update("k", 7, StatusComplete)
	if observed.Data != 7 || observed.Status != StatusComplete {
		t.Fatalf("expected listener to observe update, got %+v", observed)
	}
}

func TestClaimDedupsConcurrentConsumers(t *testing.T) {
	store := New[string]()

	first := store.Get("/r")
	second := store.Get("/r")
	if first.Status != StatusIdle || second.Status != StatusIdle {
		t.Fatalf("expected both consumers to observe idle")
	}

	if _, ok := store.Claim("/r"); !ok {
		t.Fatalf("expected first claim to win")
	}
	if entry, ok := store.Claim("/r"); ok || entry.Status != StatusPending {
		t.Fatalf("expected second claim to observe pending, got %+v ok=%t", entry, ok)
	}

	store.Update("/r", "X", StatusComplete)
	for i := 0; i < 2; i++ {
		entry := store.Get("/r")
		if entry.Status != StatusComplete || entry.Data != "X" {
			t.Fatalf("consumer %d expected complete X, got %+v", i, entry)
		}
	}
	if _, ok := store.Claim("/r"); ok {
		t.Fatalf("completed entries must not be claimable without an explicit reclaim")
	}
}

func TestClaimAnnouncesIdleBeforePending(t *testing.T) {
	store := New[string]()
	var statuses []string
	store.Subscribe(func(key string) {
		entry, _ := store.Peek(key)
		statuses = append(statuses, entry.Status.String())
	})

	if _, ok := store.Claim("/r"); !ok {
		t.Fatalf("expected claim of missing key to win")
	}
	if diff := cmp.Diff([]string{"idle", "pending"}, statuses); diff != "" {
		t.Fatalf("unexpected notifications (-want +got):\n%s", diff)
	}
}

func TestReclaimReleaseAndRemove(t *testing.T) {
	store := New(WithEntries(map[string]int{"a": 1}))

	if store.Reclaim("missing") {
		t.Fatalf("expected reclaim of missing key to fail")
	}
	if !store.Reclaim("a") {
		t.Fatalf("expected reclaim of completed key")
	}
	entry, _ := store.Peek("a")
	if entry.Status != StatusPending || entry.Data != 1 {
		t.Fatalf("expected pending entry keeping data, got %+v", entry)
	}
	if !store.Release("a") {
		t.Fatalf("expected release of pending key")
	}
	if entry, _ := store.Peek("a"); entry.Status != StatusIdle {
		t.Fatalf("expected idle after release, got %+v", entry)
	}

	notified := 0
	store.Subscribe(func(string) { notified++ })
	store.Remove("a")
	store.Remove("a")
	if notified != 1 {
		t.Fatalf("expected one notification for remove, got %d", notified)
	}
	if _, ok := store.Peek("a"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestFailKeepsDataAndCompletes(t *testing.T) {
	store := New[string]()
	store.Update("k", "old", StatusComplete)
	store.Reclaim("k")
	store.Fail("k", errors.New("boom"))

	entry, _ := store.Peek("k")
	if entry.Status != StatusComplete || entry.Data != "old" || entry.Err == nil {
		t.Fatalf("unexpected failed entry %+v", entry)
	}
}

func TestAwaitWakesOnCompletion(t *testing.T) {
	store := New[string]()
	store.Claim("k")

	done := make(chan Entry[string], 1)
	go func() {
		entry, err := store.Await(context.Background(), "k")
		if err != nil {
			t.Errorf("await: %v", err)
		}
		done <- entry
	}()

	time.Sleep(10 * time.Millisecond)
	store.Update("k", "v", StatusComplete)

	select {
	case entry := <-done:
		if entry.Data != "v" || entry.Status != StatusComplete {
			t.Fatalf("unexpected awaited entry %+v", entry)
		}
	case <-time.After(time.Second):
		t.Fatalf("await did not wake up")
	}
}

func TestAwaitHonoursContext(t *testing.T) {
	store := New[string]()
	store.Claim("k")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	entry, err := store.Await(ctx, "k")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if entry.Status != StatusPending {
		t.Fatalf("expected pending entry, got %+v", entry)
	}
}

func TestKeysSorted(t *testing.T) {
	store := New[int]()
	store.Get("b")
	store.Get("a")
	if diff := cmp.Diff([]string{"a", "b"}, store.Keys()); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
	if store.Len() != 2 {
		t.Fatalf("expected two entries, got %d", store.Len())
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{StatusIdle: "idle", StatusPending: "pending", StatusComplete: "complete", Status(9): "unknown"}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}
