package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-formsync/pkg/state"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()

	if _, ok, err := store.Get(ctx, "profile"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%t err=%v", ok, err)
	}
	if err := store.Set(ctx, "profile", `{"name":"a"}`, 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "profile")
	if err != nil || !ok {
		t.Fatalf("expected stored value, got ok=%t err=%v", ok, err)
	}
	if value != `{"name":"a"}` {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestMemoryStoreExpiresRecords(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := state.NewMemoryStore(state.WithClock(clock.Now))

	if err := store.Set(ctx, "profile", "v", 2); err != nil {
		t.Fatalf("set: %v", err)
	}

	clock.now = clock.now.Add(47 * time.Hour)
	if _, ok, _ := store.Get(ctx, "profile"); !ok {
		t.Fatalf("expected value to survive before ttl")
	}

	clock.now = clock.now.Add(time.Hour)
	if _, ok, _ := store.Get(ctx, "profile"); ok {
		t.Fatalf("expected value to expire after ttl")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired record to be dropped, got %d", store.Len())
	}
}

func TestMemoryStoreDefaultTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := state.ExpiresAt(now, 0); !got.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("expected default ttl of one day, got %v", got)
	}
}

func TestMemoryStoreRequiresKey(t *testing.T) {
	store := state.NewMemoryStore()
	if err := store.Set(context.Background(), "  ", "v", 1); !errors.Is(err, state.ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
	if _, _, err := store.Get(context.Background(), ""); !errors.Is(err, state.ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}
