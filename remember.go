package formsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-formsync/internal/hydrate"
	"github.com/goliatone/go-formsync/layering"
	"github.com/goliatone/go-formsync/pkg/logging"
)

// rememberBinding mirrors form defaults into a persistence slot. Failures
// are logged and otherwise ignored; the form keeps working from memory.
type rememberBinding struct {
	cfg     rememberConfig
	decoder *hydrate.Decoder[FieldData]
	logger  logging.Logger

	mu      sync.Mutex
	written uint64
}

// defaultsWrite is a defaults snapshot waiting to be persisted. seq orders
// snapshots taken under the form lock.
type defaultsWrite struct {
	seq    uint64
	values FieldData
}

func newRememberBinding(cfg rememberConfig, logger logging.Logger) *rememberBinding {
	return &rememberBinding{
		cfg: cfg,
		decoder: hydrate.NewDecoder(
			hydrate.WithTextHook[FieldData](hydrate.URLUnescape),
			hydrate.WithUseNumber[FieldData](),
			hydrate.WithPostHook[FieldData](restoredFieldData),
		),
		logger: logging.OrNoop(logger),
	}
}

// restoredFieldData rejects top level keys that are not plain field names and
// turns decoded json.Number values into int64, uint64 or float64.
func restoredFieldData(_ hydrate.Context, values *FieldData) error {
	for key, value := range *values {
		base, path, err := ResolveFieldName(key)
		if err != nil || path != "" || base != key {
			return &FieldNameError{Name: key, Reason: "restored key is not a plain field name"}
		}
		(*values)[key] = layering.NativeNumbers(value)
	}
	return nil
}

func (b *rememberBinding) restore(ctx context.Context) (FieldData, bool) {
	started := time.Now()
	raw, ok, err := b.cfg.persistence.Get(ctx, b.cfg.key)
	if err != nil {
		b.log("restore", started, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	values, err := b.decoder.Decode(hydrate.Context{Key: b.cfg.key}, raw)
	if err != nil {
		b.log("restore", started, err)
		return nil, false
	}
	b.log("restore", started, nil)
	return values, true
}

// write persists w unless a newer snapshot was already written. Writes are
// serialized per binding and never run under the form lock.
func (b *rememberBinding) write(ctx context.Context, w *defaultsWrite) {
	if w == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if w.seq <= b.written {
		return
	}
	b.written = w.seq
	b.persist(ctx, w.values)
}

func (b *rememberBinding) persist(ctx context.Context, defaults FieldData) {
	started := time.Now()
	encoded, err := json.Marshal(defaults)
	if err != nil {
		b.log("persist", started, fmt.Errorf("encode defaults: %w", err))
		return
	}
	err = b.cfg.persistence.Set(ctx, b.cfg.key, string(encoded), b.cfg.ttlDays)
	b.log("persist", started, err)
}

func (b *rememberBinding) log(op string, started time.Time, err error) {
	b.logger.Log(logging.Event{
		Component: "remember",
		Op:        op,
		Key:       b.cfg.key,
		Duration:  time.Since(started),
		Err:       err,
	})
}
