package formsync

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %q", name)
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", path, err)
	}
	return out
}

// fakeTransport records requests and replies with a scripted result. When
// gate is set, Do blocks until it is closed or ctx ends.
type fakeTransport struct {
	mu       sync.Mutex
	requests []Request
	methods  []string
	response Response
	err      error
	gate     chan struct{}
	entered  chan struct{}
}

func (f *fakeTransport) Do(ctx context.Context, req Request) (Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate, entered := f.gate, f.entered
	response, err := f.response, f.err
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	return response, err
}

func (f *fakeTransport) Methods() []string {
	if f.methods != nil {
		return f.methods
	}
	return StandardMethods()
}

func (f *fakeTransport) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// callbackLog records callback invocations in order.
type callbackLog struct {
	mu       sync.Mutex
	calls    []string
	finishes []Finish
	errs     []error
	success  []Response
}

func (l *callbackLog) callbacks() Callbacks {
	return Callbacks{
		OnStart: func() { l.record("start") },
		OnSuccess: func(r Response) {
			l.record("success")
			l.mu.Lock()
			l.success = append(l.success, r)
			l.mu.Unlock()
		},
		OnError: func(err error) {
			l.record("error")
			l.mu.Lock()
			l.errs = append(l.errs, err)
			l.mu.Unlock()
		},
		OnFinish: func(f Finish) {
			l.record("finish")
			l.mu.Lock()
			l.finishes = append(l.finishes, f)
			l.mu.Unlock()
		},
	}
}

func (l *callbackLog) record(name string) {
	l.mu.Lock()
	l.calls = append(l.calls, name)
	l.mu.Unlock()
}

func (l *callbackLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}
