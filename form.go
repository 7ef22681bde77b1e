package formsync

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Form is one logical form instance. All methods are safe for concurrent
// use; callbacks and activity hooks always run outside the internal lock.
type Form struct {
	id  string
	cfg formConfig

	mu            sync.Mutex
	fields        *FieldStore
	errors        *ErrorStore
	hasErrors     bool
	wasSuccessful bool
	processing    bool
	state         State
	transform     TransformFunc
	closed        bool

	remember    *rememberBinding
	persistCtx  context.Context
	defaultsSeq uint64
	pending     *defaultsWrite

	root   context.Context
	cancel context.CancelFunc
}

// New builds a form. ctx bounds every submission; cancelling it has the
// same effect as Close. Persistence calls carry ctx values but outlive its
// cancellation. When WithRemember is set the persisted defaults, if
// readable, replace the initial values.
func New(ctx context.Context, opts ...Option) *Form {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := applyOptions(opts)
	id := cfg.id
	if id == "" {
		id = uuid.NewString()
	}
	root, cancel := context.WithCancel(ctx)

	f := &Form{
		id:        id,
		cfg:       cfg,
		errors:    NewErrorStore(),
		transform: cfg.transform,
		root:      root,
		cancel:    cancel,
	}

	initial := cfg.initial
	if cfg.remember != nil {
		f.remember = newRememberBinding(*cfg.remember, cfg.logger)
		f.persistCtx = context.WithoutCancel(ctx)
		if restored, ok := f.remember.restore(f.persistCtx); ok {
			initial = restored
		}
	}
	f.fields = NewFieldStore(initial)
	if f.remember != nil {
		f.fields.OnDefaultsChange(f.recordDefaultsLocked)
		f.recordDefaultsLocked(f.fields.Defaults())
		f.flushDefaults(f.takeDefaultsLocked())
	}
	return f
}

// recordDefaultsLocked keeps the latest defaults snapshot for writing once
// the lock is released. Called with mu held.
func (f *Form) recordDefaultsLocked(defaults FieldData) {
	f.defaultsSeq++
	f.pending = &defaultsWrite{seq: f.defaultsSeq, values: defaults}
}

// takeDefaultsLocked hands over the snapshot recorded since the last call.
func (f *Form) takeDefaultsLocked() *defaultsWrite {
	w := f.pending
	f.pending = nil
	return w
}

// flushDefaults persists w. It must be called without mu held.
func (f *Form) flushDefaults(w *defaultsWrite) {
	if f.remember == nil || w == nil {
		return
	}
	f.remember.write(f.persistCtx, w)
}

// ID returns the form id.
func (f *Form) ID() string {
	return f.id
}

// Data returns a copy of the current values.
func (f *Form) Data() FieldData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.Data()
}

// Defaults returns a copy of the committed baseline.
func (f *Form) Defaults() FieldData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.Defaults()
}

// IsDirty reports whether data differs from defaults.
func (f *Form) IsDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.IsDirty()
}

// Errors returns a copy of the field errors.
func (f *Form) Errors() ErrorMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.Errors()
}

// HasErrors reports the form error flag. It is also set by a submission
// that failed without field errors, in which case Errors is empty.
func (f *Form) HasErrors() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasErrors
}

// WasSuccessful reports whether the last submission succeeded.
func (f *Form) WasSuccessful() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wasSuccessful
}

// Processing reports whether a submission is in flight.
func (f *Form) Processing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processing
}

// State returns the lifecycle state. Outcome states are only visible while
// the submission callbacks run.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetData writes value at a bracket field name and clears all form errors.
func (f *Form) SetData(name string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fields.SetData(name, value); err != nil {
		return err
	}
	f.clearErrorsLocked()
	return nil
}

// SetDataMap merges values into data and clears all form errors.
func (f *Form) SetDataMap(values FieldData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields.SetDataMap(values)
	f.clearErrorsLocked()
}

// SetDefault writes value at a bracket field name in defaults.
func (f *Form) SetDefault(name string, value any) error {
	f.mu.Lock()
	err := f.fields.SetDefault(name, value)
	w := f.takeDefaultsLocked()
	f.mu.Unlock()
	f.flushDefaults(w)
	return err
}

// SetDefaults merges values into defaults.
func (f *Form) SetDefaults(values FieldData) {
	f.mu.Lock()
	f.fields.SetDefaultsMap(values)
	w := f.takeDefaultsLocked()
	f.mu.Unlock()
	f.flushDefaults(w)
}

// CommitDefaults snapshots the current data as the new defaults.
func (f *Form) CommitDefaults() {
	f.mu.Lock()
	f.fields.CommitDefaults()
	w := f.takeDefaultsLocked()
	f.mu.Unlock()
	f.flushDefaults(w)
}

// Reset restores fields from defaults (all of them when none are named) and
// clears all form errors.
func (f *Form) Reset(fields ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fields.Reset(fields...); err != nil {
		return err
	}
	f.clearErrorsLocked()
	return nil
}

// Transform replaces the payload transform used by later submissions. A nil
// transform submits the data unchanged.
func (f *Form) Transform(transform TransformFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transform = transform
}

// SetError merges messages for field.
func (f *Form) SetError(field string, messages ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors.SetError(field, messages...)
	f.hasErrors = f.errors.HasErrors()
}

// SetErrors merges errs into the field errors.
func (f *Form) SetErrors(errs ErrorMap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors.SetErrors(errs)
	f.hasErrors = f.errors.HasErrors()
}

// ClearErrors removes the named fields' errors, or all of them.
func (f *Form) ClearErrors(fields ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors.ClearErrors(fields...)
	f.hasErrors = f.errors.HasErrors()
}

func (f *Form) clearErrorsLocked() {
	f.errors.ClearErrors()
	f.hasErrors = false
}

// Requests returns the verb dispatcher for this form.
func (f *Form) Requests() *Dispatcher {
	return &Dispatcher{form: f}
}

// Submit dispatches method to url and waits for the submission to settle.
func (f *Form) Submit(ctx context.Context, method, url string, opts ...RequestOption) (Result, error) {
	submission, err := f.Requests().Call(ctx, method, url, opts...)
	if err != nil {
		return Result{}, err
	}
	return submission.Wait(ctx)
}

// Close cancels in-flight submissions and rejects later ones. It is safe to
// call more than once.
func (f *Form) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()
	f.cancel()
	return nil
}
