// Package activity fans form lifecycle events out to pluggable hooks. Forms
// emit one event when a submission starts and one when it settles.
package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Submission lifecycle verbs.
const (
	VerbSubmitStarted          = "form.submit.started"
	VerbSubmitSucceeded        = "form.submit.succeeded"
	VerbSubmitValidationFailed = "form.submit.validation_failed"
	VerbSubmitFailed           = "form.submit.failed"
)

// Event describes one submission lifecycle step. IDs are strings so call
// sites do not depend on a UUID type.
type Event struct {
	Verb         string
	FormID       string
	SubmissionID string
	Method       string
	URL          string
	Status       int
	ActorID      string
	TenantID     string
	Channel      string
	Metadata     map[string]any
	OccurredAt   time.Time
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and forwards it to every hook. Events without a verb
// or form id are dropped. Hook failures are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.FormID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, lower-cases the method, clones metadata
// and stamps OccurredAt when missing.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.FormID = strings.TrimSpace(event.FormID)
	normalized.SubmissionID = strings.TrimSpace(event.SubmissionID)
	normalized.Method = strings.ToLower(strings.TrimSpace(event.Method))
	normalized.URL = strings.TrimSpace(event.URL)
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.TenantID = strings.TrimSpace(event.TenantID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
