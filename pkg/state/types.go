package state

import (
	"context"
	"errors"
	"time"
)

// ErrKeyRequired is returned when a read or write targets an empty key.
var ErrKeyRequired = errors.New("state: key is required")

// DefaultTTLDays is used when a write passes a non-positive TTL.
const DefaultTTLDays = 1

// Persistence reads and writes a durable key/value slot.
type Persistence interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttlDays int) error
}

// Clock returns the current time. Stores accept one so expiry can be tested.
type Clock func() time.Time

// ExpiresAt computes the expiry instant for a write issued at now.
func ExpiresAt(now time.Time, ttlDays int) time.Time {
	if ttlDays <= 0 {
		ttlDays = DefaultTTLDays
	}
	return now.Add(time.Duration(ttlDays) * 24 * time.Hour)
}
