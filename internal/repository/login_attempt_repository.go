package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockoutKeyPrefix = "auth:lockout:"

// LockoutState is the failure counter kept per login key.
type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

// Locked reports whether the key is still locked at now.
func (s LockoutState) Locked(now time.Time) bool {
	return s.LockedUntil != nil && s.LockedUntil.After(now)
}

// LoginAttemptStore tracks consecutive failed logins.
type LoginAttemptStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}

type redisLoginAttemptStore struct {
	client *redis.Client
}

// NewRedisLoginAttemptStore keeps counters in Redis hashes.
func NewRedisLoginAttemptStore(client *redis.Client) LoginAttemptStore {
	return &redisLoginAttemptStore{client: client}
}

func (s *redisLoginAttemptStore) Get(ctx context.Context, key string) (LockoutState, error) {
	data, err := s.client.HGetAll(ctx, lockoutKeyPrefix+key).Result()
	if err != nil {
		return LockoutState{}, err
	}

	var state LockoutState
	if raw, ok := data["failed_count"]; ok {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			state.FailedCount = n
		}
	}
	if raw, ok := data["locked_until"]; ok && raw != "" {
		if unix, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil && unix > 0 {
			until := time.Unix(unix, 0).UTC()
			state.LockedUntil = &until
		}
	}
	return state, nil
}

func (s *redisLoginAttemptStore) RecordFailure(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (LockoutState, error) {
	redisKey := lockoutKeyPrefix + key

	count, err := s.client.HIncrBy(ctx, redisKey, "failed_count", 1).Result()
	if err != nil {
		return LockoutState{}, err
	}

	state := LockoutState{FailedCount: int(count)}
	if threshold > 0 && int(count) >= threshold {
		until := now.Add(window).UTC()
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey, "locked_until", until.Unix())
			p.Expire(ctx, redisKey, window)
			return nil
		})
		if err != nil {
			return LockoutState{}, err
		}
		state.LockedUntil = &until
		return state, nil
	}

	// The window starts at the first failure; a counter that never reaches
	// the threshold simply expires with it.
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return LockoutState{}, err
		}
	}
	return state, nil
}

func (s *redisLoginAttemptStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, lockoutKeyPrefix+key).Err()
}
