package repository

import (
	"context"
	"time"
)

type RateLimitRepository interface {
	// InsertIfUnder records an event for key at the given time, but only if
	// fewer than max events exist for the key since the window start. Check
	// and record happen atomically; returns whether the row was written.
	InsertIfUnder(ctx context.Context, key string, at, since time.Time, max int) (bool, error)
	CountSince(ctx context.Context, key string, since time.Time) (int64, error)
	// OldestSince returns the timestamp of the oldest in-window event for
	// key, or ErrNotFound when the window is empty.
	OldestSince(ctx context.Context, key string, since time.Time) (time.Time, error)
	// DeleteBefore removes events older than the cutoff, returning the count
	// removed. Invoked by the periodic cleanup job, never on the hot path.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
