// Package idempotency records which request keys have already produced a
// result, so retried requests can be answered without repeating side effects.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyFormat is the storage key of a reservation: idem:{scope}:{key}.
const KeyFormat = "idem:%s:%s"

// pending marks a key whose request has not finished yet.
const pending = "\x00pending"

// PendingTTL bounds how long an unfinished reservation blocks its key, so a
// request that dies before Complete or Release frees the key soon after.
const PendingTTL = 2 * time.Minute

func pendingTTL(ttl time.Duration) time.Duration {
	if ttl < PendingTTL {
		return ttl
	}
	return PendingTTL
}

// Store reserves request keys.
//
// Reserve returns acquired=true when the caller now owns key. Otherwise result
// holds the value stored by Complete, or is empty while the owning request is
// still in flight.
type Store interface {
	Reserve(ctx context.Context, key string) (result string, acquired bool, err error)
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

// Key builds a namespaced key.
func Key(scope, key string) string {
	return fmt.Sprintf(KeyFormat, scope, key)
}

// RedisStore keeps reservations in Redis. Completed keys live for ttl,
// pending ones for at most PendingTTL.
type RedisStore struct {
	rdb        *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, pendingTTL: pendingTTL(ttl)}
}

func (s *RedisStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, pending, s.pendingTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		ok, err = s.rdb.SetNX(ctx, key, pending, s.pendingTTL).Result()
		if err != nil {
			return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		return "", ok, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == pending {
		return "", false, nil
	}
	return val, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key, result string) error {
	if err := s.rdb.Set(ctx, key, result, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

type entry struct {
	value   string
	expires time.Time
}

// MemoryStore is an in-process Store for single-instance deployments and tests.
// Expired entries are swept from Reserve at most once per PendingTTL.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	pendingTTL time.Duration
	nextSweep  time.Time
	now        func() time.Time
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]entry),
		ttl:        ttl,
		pendingTTL: pendingTTL(ttl),
		now:        time.Now,
	}
}

func (s *MemoryStore) Reserve(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		if e.value == pending {
			return "", false, nil
		}
		return e.value, false, nil
	}
	s.entries[key] = entry{value: pending, expires: now.Add(s.pendingTTL)}
	return "", true, nil
}

func (s *MemoryStore) sweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	for key, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, key)
		}
	}
	s.nextSweep = now.Add(s.pendingTTL)
}

func (s *MemoryStore) Complete(_ context.Context, key, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: result, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
