// Package ratelimit implements sliding-window request throttling keyed
// by caller identity. The window of request instants lives behind a
// WindowStore so the backing store (in-memory for a single process,
// Redis for multi-replica deployments) is swappable without touching
// the algorithm. Losing stored windows under-throttles briefly; it
// never over-throttles.
package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	customErrors "github.com/memeboard/memeboard/internal/auth/errors"
)

// WindowStore persists the request instants for one identity. Window
// returns the stored instants in ascending order (empty slice when the
// identity has never been seen); Put replaces them. Entries may expire
// after ttl since stale windows are harmless.
type WindowStore interface {
	Window(ctx context.Context, identity string) ([]time.Time, error)
	Put(ctx context.Context, identity string, window []time.Time, ttl time.Duration) error
}

// Result is a single throttling decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

const lockStripes = 64

// Limiter caps each identity at limit requests per sliding window.
// The prune-check-append sequence for one identity is a single
// critical section; identities are striped over a fixed set of locks
// so distinct identities almost never contend.
type Limiter struct {
	store  WindowStore
	window time.Duration
	limit  int
	locks  [lockStripes]sync.Mutex
}

func New(store WindowStore, window time.Duration, limit int) *Limiter {
	return &Limiter{store: store, window: window, limit: limit}
}

// Check records a request instant for identity and decides whether it
// is within the cap. Denied results carry the delay after which the
// oldest counted request will have left the window.
func (l *Limiter) Check(ctx context.Context, identity string, now time.Time) (Result, error) {
	lock := l.lockFor(identity)
	lock.Lock()
	defer lock.Unlock()

	window, err := l.store.Window(ctx, identity)
	if err != nil {
		return Result{}, customErrors.WrapInternal(err, "load rate window")
	}

	cutoff := now.Add(-l.window)
	pruned := window[:0]
	for _, t := range window {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}

	if len(pruned) >= l.limit {
		retry := l.window
		if len(pruned) > 0 {
			retry = pruned[0].Add(l.window).Sub(now)
		}
		if retry < time.Second {
			retry = time.Second
		}
		return Result{Allowed: false, RetryAfter: retry}, nil
	}

	pruned = append(pruned, now)
	if err := l.store.Put(ctx, identity, pruned, l.window); err != nil {
		return Result{}, customErrors.WrapInternal(err, "store rate window")
	}
	return Result{Allowed: true, Remaining: l.limit - len(pruned)}, nil
}

func (l *Limiter) lockFor(identity string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return &l.locks[h.Sum32()%lockStripes]
}
