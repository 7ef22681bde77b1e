package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Context identifies the persisted slot a payload was read from.
type Context struct {
	Key string
}

// TextHook rewrites the raw persisted text before it is parsed.
type TextHook func(Context, string) (string, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder turns persisted snapshot text into a typed value.
type Decoder[T any] struct {
	textHooks    []TextHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithTextHook applies hook to the raw text before parsing.
func WithTextHook[T any](hook TextHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.textHooks = append(d.textHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// URLUnescape is a TextHook for values written percent-encoded, the way
// cookie backed slots usually store JSON. Text that already reads as a JSON
// object is passed through untouched.
func URLUnescape(ctx Context, raw string) (string, error) {
	if !strings.Contains(raw, "%") || strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return raw, nil
	}
	out, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("unescape %q: %w", ctx.Key, err)
	}
	return out, nil
}

// Decode parses raw as a single JSON object and converts it into T applying
// the configured hooks in order: text hooks, decode, post hooks.
func (d *Decoder[T]) Decode(ctx Context, raw string) (T, error) {
	var zero T

	text := raw
	for _, hook := range d.textHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, text)
		if err != nil {
			return zero, fmt.Errorf("hydrate: text hook for key %q failed: %w", ctx.Key, err)
		}
		text = next
	}

	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return zero, fmt.Errorf("hydrate: payload is empty for key %q", ctx.Key)
	case text == "null":
		return zero, fmt.Errorf("hydrate: payload is null for key %q", ctx.Key)
	case !strings.HasPrefix(text, "{"):
		return zero, fmt.Errorf("hydrate: parse payload for key %q: not a JSON object", ctx.Key)
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: parse payload for key %q: %w", ctx.Key, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return zero, fmt.Errorf("hydrate: parse payload for key %q: trailing data", ctx.Key)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for key %q failed: %w", ctx.Key, err)
		}
	}

	return result, nil
}
