// Package ratelimit enforces the daily per-player message quota.
//
// Each player gets a fixed number of messages per UTC day. Counters are
// persisted so restarts cannot refresh a quota, and a counter whose
// window started before the most recent reset boundary is lazily
// replaced on first read after the boundary.
package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/tengfone/deadtext/internal/game/storage"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

const limiterStripes = 64

// Decision reports the outcome of a quota check.
type Decision struct {
	Allowed   bool
	Remaining int
	NextReset time.Time
}

// Limiter is the persistent daily quota gate.
type Limiter struct {
	store     storage.RateLimitStore
	max       int
	resetHour int

	// clock is swappable in tests.
	clock func() time.Time

	stripes [limiterStripes]sync.Mutex
}

// New builds a limiter allowing max messages per day, resetting at
// resetHour UTC.
func New(store storage.RateLimitStore, max, resetHour int) *Limiter {
	return &Limiter{
		store:     store,
		max:       max,
		resetHour: resetHour,
		clock:     time.Now,
	}
}

// Check consumes one message from the player's quota. A denial does not
// mutate the counter, so peeking at a drained quota stays free.
func (l *Limiter) Check(ctx context.Context, playerID string) (Decision, error) {
	mu := l.stripe(playerID)
	mu.Lock()
	defer mu.Unlock()

	now := l.clock().UTC()
	boundary := l.lastBoundary(now)

	counter, err := l.store.GetCounter(ctx, playerID)
	if err != nil && !apperrors.IsCode(err, apperrors.CodeNotFound) {
		return Decision{}, err
	}

	fresh := apperrors.IsCode(err, apperrors.CodeNotFound) || counter.WindowStart.Before(boundary)
	if fresh {
		if err := l.store.PutCounter(ctx, storage.Counter{
			PlayerID:     playerID,
			MessageCount: 1,
			WindowStart:  now,
		}); err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: true, Remaining: l.max - 1, NextReset: boundary.AddDate(0, 0, 1)}, nil
	}

	if counter.MessageCount >= l.max {
		return Decision{Allowed: false, Remaining: 0, NextReset: boundary.AddDate(0, 0, 1)}, nil
	}

	if err := l.store.IncrementCounter(ctx, playerID); err != nil {
		return Decision{}, err
	}
	return Decision{
		Allowed:   true,
		Remaining: l.max - counter.MessageCount - 1,
		NextReset: boundary.AddDate(0, 0, 1),
	}, nil
}

// Peek reports the player's remaining quota without consuming any.
func (l *Limiter) Peek(ctx context.Context, playerID string) (Decision, error) {
	now := l.clock().UTC()
	boundary := l.lastBoundary(now)
	next := boundary.AddDate(0, 0, 1)

	counter, err := l.store.GetCounter(ctx, playerID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return Decision{Allowed: true, Remaining: l.max, NextReset: next}, nil
		}
		return Decision{}, err
	}

	if counter.WindowStart.Before(boundary) {
		return Decision{Allowed: true, Remaining: l.max, NextReset: next}, nil
	}

	remaining := l.max - counter.MessageCount
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: remaining > 0, Remaining: remaining, NextReset: next}, nil
}

// NextReset returns the first reset instant after now.
func (l *Limiter) NextReset(now time.Time) time.Time {
	return l.lastBoundary(now.UTC()).AddDate(0, 0, 1)
}

// Sweep clears every persisted counter, complementing the lazy reset so
// the table does not grow with stale rows.
func (l *Limiter) Sweep(ctx context.Context) error {
	return l.store.ClearCounters(ctx)
}

// lastBoundary returns the most recent reset instant at or before now.
func (l *Limiter) lastBoundary(now time.Time) time.Time {
	boundary := time.Date(now.Year(), now.Month(), now.Day(), l.resetHour, 0, 0, 0, time.UTC)
	if boundary.After(now) {
		boundary = boundary.AddDate(0, 0, -1)
	}
	return boundary
}

func (l *Limiter) stripe(playerID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	return &l.stripes[h.Sum32()%limiterStripes]
}
