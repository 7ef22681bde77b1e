package formsync

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/logging"
	"github.com/goliatone/go-formsync/pkg/state"
)

type failingPersistence struct {
	getErr error
	setErr error
	sets   int
}

func (p *failingPersistence) Get(context.Context, string) (string, bool, error) {
	return "", false, p.getErr
}

func (p *failingPersistence) Set(context.Context, string, string, int) error {
	p.sets++
	return p.setErr
}

type ttlRecorder struct {
	*state.MemoryStore
	ttls []int
}

func (r *ttlRecorder) Set(ctx context.Context, key, value string, ttlDays int) error {
	r.ttls = append(r.ttls, ttlDays)
	return r.MemoryStore.Set(ctx, key, value, ttlDays)
}

func TestRememberRestoresPersistedDefaults(t *testing.T) {
	store := state.NewMemoryStore()
	if err := store.Set(context.Background(), "profile", `{"email":"saved@example.com","tags":["a"]}`, 1); err != nil {
		t.Fatalf("seed: %v", err)
	}

	form := New(context.Background(),
		WithInitialValues(FieldData{"email": "initial@example.com"}),
		WithRemember("profile", store, 0),
	)
	defer form.Close()

	want := FieldData{"email": "saved@example.com", "tags": []any{"a"}}
	if diff := cmp.Diff(want, form.Defaults()); diff != "" {
		t.Fatalf("unexpected defaults (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, form.Data()); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestRememberRoundTripsNumbersExactly(t *testing.T) {
	store := state.NewMemoryStore()
	initial := FieldData{
		"id":     int64(9007199254740993),
		"serial": uint64(18446744073709551615),
		"count":  3,
		"ratio":  0.5,
		"nested": map[string]any{"n": int64(-9007199254740993)},
	}
	first := New(context.Background(), WithInitialValues(initial), WithRemember("numbers", store, 1))
	first.Close()

	raw, _, _ := store.Get(context.Background(), "numbers")
	restored := New(context.Background(), WithRemember("numbers", store, 1))
	defer restored.Close()

	want := FieldData{
		"id":     int64(9007199254740993),
		"serial": uint64(18446744073709551615),
		"count":  int64(3),
		"ratio":  0.5,
		"nested": map[string]any{"n": int64(-9007199254740993)},
	}
	if diff := cmp.Diff(want, restored.Defaults()); diff != "" {
		t.Fatalf("restored defaults lost precision from %s (-want +got):\n%s", raw, diff)
	}
	if restored.IsDirty() {
		t.Fatalf("restored form must be clean")
	}
	if err := restored.SetData("id", int64(9007199254740992)); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if !restored.IsDirty() {
		t.Fatalf("changing a restored large id must make the form dirty")
	}
}

func TestRememberRejectsRestoredBracketKeys(t *testing.T) {
	store := state.NewMemoryStore()
	_ = store.Set(context.Background(), "profile", `{"user[0]":"x"}`, 1)
	var restoreErr error

	form := New(context.Background(),
		WithInitialValues(FieldData{"email": "initial@example.com"}),
		WithRemember("profile", store, 1),
		WithLogger(logging.Func(func(e logging.Event) {
			if e.Op == "restore" {
				restoreErr = e.Err
			}
		})),
	)
	defer form.Close()

	if !errors.Is(restoreErr, ErrInvalidFieldName) {
		t.Fatalf("expected restore to fail with ErrInvalidFieldName, got %v", restoreErr)
	}
	if diff := cmp.Diff(FieldData{"email": "initial@example.com"}, form.Data()); diff != "" {
		t.Fatalf("expected initial values (-want +got):\n%s", diff)
	}
}

type reentrantPersistence struct {
	*state.MemoryStore
	form *Form
	seen []FieldData
}

func (p *reentrantPersistence) Set(ctx context.Context, key, value string, ttlDays int) error {
	if p.form != nil {
		p.seen = append(p.seen, p.form.Defaults())
	}
	return p.MemoryStore.Set(ctx, key, value, ttlDays)
}

func TestRememberWritesOutsideFormLock(t *testing.T) {
	persistence := &reentrantPersistence{MemoryStore: state.NewMemoryStore()}
	form := New(context.Background(),
		WithTransport(&fakeTransport{}),
		WithInitialValues(FieldData{"a": "1"}),
		WithRemember("draft", persistence, 1),
	)
	defer form.Close()
	persistence.form = form

	done := make(chan struct{})
	go func() {
		defer close(done)
		form.SetDefaults(FieldData{"b": "2"})
		form.CommitDefaults()
		if _, err := form.Submit(context.Background(), "post", "/x"); err != nil {
			t.Errorf("Submit: %v", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("persistence calling back into the form deadlocked")
	}
	if len(persistence.seen) != 3 {
		t.Fatalf("expected three writes observed, got %d", len(persistence.seen))
	}
}

func TestRememberSkipsStaleSnapshots(t *testing.T) {
	store := state.NewMemoryStore()
	binding := newRememberBinding(rememberConfig{key: "k", persistence: store, ttlDays: 1}, nil)

	binding.write(context.Background(), &defaultsWrite{seq: 2, values: FieldData{"v": "new"}})
	binding.write(context.Background(), &defaultsWrite{seq: 1, values: FieldData{"v": "old"}})
	binding.write(context.Background(), nil)

	raw, _, _ := store.Get(context.Background(), "k")
	if raw != `{"v":"new"}` {
		t.Fatalf("stale snapshot overwrote a newer one, got %q", raw)
	}
}

func TestRememberAcceptsPercentEncodedValues(t *testing.T) {
	store := state.NewMemoryStore()
	_ = store.Set(context.Background(), "profile", url.QueryEscape(`{"name":"ana b"}`), 1)

	form := New(context.Background(), WithRemember("profile", store, 1))
	defer form.Close()

	if got := form.Data()["name"]; got != "ana b" {
		t.Fatalf("expected decoded name, got %v", got)
	}
}

func TestRememberFallsBackOnCorruptValue(t *testing.T) {
	store := state.NewMemoryStore()
	_ = store.Set(context.Background(), "profile", `{not json`, 1)
	var logged []logging.Event

	form := New(context.Background(),
		WithInitialValues(FieldData{"email": "initial@example.com"}),
		WithRemember("profile", store, 1),
		WithLogger(logging.Func(func(e logging.Event) { logged = append(logged, e) })),
	)
	defer form.Close()

	if got := form.Data()["email"]; got != "initial@example.com" {
		t.Fatalf("expected initial values, got %v", got)
	}
	if len(logged) == 0 || logged[0].Component != "remember" || logged[0].Op != "restore" || logged[0].Err == nil {
		t.Fatalf("expected restore failure to be logged, got %+v", logged)
	}

	raw, ok, _ := store.Get(context.Background(), "profile")
	if !ok || raw != `{"email":"initial@example.com"}` {
		t.Fatalf("expected initial defaults to overwrite corrupt slot, got %q %v", raw, ok)
	}
}

func TestRememberWritesThroughDefaultChanges(t *testing.T) {
	recorder := &ttlRecorder{MemoryStore: state.NewMemoryStore()}
	transport := &fakeTransport{}
	form := New(context.Background(),
		WithTransport(transport),
		WithInitialValues(FieldData{"a": "1"}),
		WithRemember("draft", recorder, 0),
	)
	defer form.Close()

	read := func() string {
		raw, _, err := recorder.Get(context.Background(), "draft")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		return raw
	}

	if got := read(); got != `{"a":"1"}` {
		t.Fatalf("expected initial defaults persisted, got %q", got)
	}

	form.SetDefaults(FieldData{"b": "2"})
	if got := read(); got != `{"a":"1","b":"2"}` {
		t.Fatalf("expected merged defaults persisted, got %q", got)
	}

	if err := form.SetData("a", "changed"); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if got := read(); got != `{"a":"1","b":"2"}` {
		t.Fatalf("data writes must not persist, got %q", got)
	}

	if _, err := form.Submit(context.Background(), "post", "/x"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := read(); got != `{"a":"changed"}` {
		t.Fatalf("expected submitted data persisted, got %q", got)
	}

	for _, ttl := range recorder.ttls {
		if ttl != state.DefaultTTLDays {
			t.Fatalf("expected default ttl, got %v", recorder.ttls)
		}
	}
}

func TestRememberFailuresNeverPropagate(t *testing.T) {
	persistence := &failingPersistence{getErr: errors.New("read failed"), setErr: errors.New("write failed")}
	var failures int
	form := New(context.Background(),
		WithInitialValues(FieldData{"a": "1"}),
		WithRemember("k", persistence, 3),
		WithLogger(logging.Func(func(e logging.Event) {
			if e.Component == "remember" && e.Err != nil {
				failures++
			}
		})),
	)
	defer form.Close()

	form.CommitDefaults()
	if persistence.sets != 2 {
		t.Fatalf("expected two write attempts, got %d", persistence.sets)
	}
	if failures != 3 {
		t.Fatalf("expected read and write failures logged, got %d", failures)
	}
	if diff := cmp.Diff(FieldData{"a": "1"}, form.Defaults()); diff != "" {
		t.Fatalf("form should keep working from memory (-want +got):\n%s", diff)
	}
}

func TestWithRememberIgnoresIncompleteConfig(t *testing.T) {
	cfg := applyOptions([]Option{WithRemember(" ", state.NewMemoryStore(), 1)})
	if cfg.remember != nil {
		t.Fatalf("blank key should disable remember")
	}
	cfg = applyOptions([]Option{WithRemember("k", nil, 1)})
	if cfg.remember != nil {
		t.Fatalf("nil persistence should disable remember")
	}
}
