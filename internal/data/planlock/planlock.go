// Package planlock serializes concurrent Generate calls for the same
// plan date. It is the only mechanism enforcing "one FINALIZED plan per
// date unless forceRegenerate" (spec.md §4.6) — there is deliberately no
// unique database constraint behind it, since forceRegenerate must be
// able to append a second FINALIZED plan for an already-planned date
// without deleting the first, which an unconditional unique index would
// block outright (SPEC_FULL §4.8 ADDED). Without REDIS_URL this
// degrades to an in-process mutex, which cannot serialize across
// replicas; that gap is accepted, not backstopped.
package planlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochimetro/induction-engine/internal/platform/logger"
)

// Locker acquires and releases the per-plan-date advisory lock.
type Locker interface {
	// TryLock attempts to acquire the lock for planDate, returning true
	// on success. The caller must call the returned release func exactly
	// once, win or lose.
	TryLock(ctx context.Context, planDate string) (acquired bool, release func(), err error)
}

// NewLocker returns a Redis-backed Locker when redisURL is non-empty, or
// an in-process mutex-backed Locker otherwise (single-instance
// deployments, local development, tests).
func NewLocker(redisURL string, baseLog *logger.Logger) (Locker, error) {
	log := baseLog.With("component", "planlock.Locker")
	if redisURL == "" {
		log.Warn("REDIS_URL unset, using in-process plan lock")
		return newLocalLocker(), nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	return &redisLocker{client: client, log: log}, nil
}

const (
	keyPrefix = "induction-engine:plan-lock:"
	ttl       = 2 * time.Minute
)

type redisLocker struct {
	client *redis.Client
	log    *logger.Logger
}

func (l *redisLocker) TryLock(ctx context.Context, planDate string) (bool, func(), error) {
	key := keyPrefix + planDate
	ok, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, func() {}, fmt.Errorf("redis SETNX: %w", err)
	}
	release := func() {
		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			l.log.Warn("failed to release plan lock", "planDate", planDate, "error", err)
		}
	}
	if !ok {
		return false, func() {}, nil
	}
	return true, release, nil
}

type localLocker struct {
	guardMu sync.Mutex
	locked  map[string]bool
}

func newLocalLocker() *localLocker {
	return &localLocker{locked: make(map[string]bool)}
}

func (l *localLocker) TryLock(_ context.Context, planDate string) (bool, func(), error) {
	l.guardMu.Lock()
	defer l.guardMu.Unlock()

	if l.locked[planDate] {
		return false, func() {}, nil
	}
	l.locked[planDate] = true
	release := func() {
		l.guardMu.Lock()
		defer l.guardMu.Unlock()
		delete(l.locked, planDate)
	}
	return true, release, nil
}
