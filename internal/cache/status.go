package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SignupStatus is the lifecycle state of an async user-creation request.
type SignupStatus string

// Status values. A request moves from pending to exactly one terminal state.
const (
	SignupPending SignupStatus = "PENDING"
	SignupSuccess SignupStatus = "SUCCESS"
	SignupFailed  SignupStatus = "FAILED"
)

// signupStatusPrefix is the Redis key prefix for signup request statuses.
const signupStatusPrefix = "signup:status:"

// DefaultStatusTTL bounds how long a request outcome stays pollable.
const DefaultStatusTTL = 24 * time.Hour

// ErrStatusNotFound indicates the request ID is unknown or its entry expired.
var ErrStatusNotFound = errors.New("signup status not found")

// StatusStore tracks async signup outcomes keyed by request ID.
// It is not the system of record; entries expire after ttl.
type StatusStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewStatusStore creates a StatusStore. A non-positive ttl falls back
// to DefaultStatusTTL.
func NewStatusStore(cache *Cache, ttl time.Duration) *StatusStore {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &StatusStore{cache: cache, ttl: ttl}
}

// SetPending marks a freshly enqueued request as pending.
// Written before the message is published so a poll can never observe
// a published request with no status.
func (s *StatusStore) SetPending(ctx context.Context, requestID string) error {
	return s.set(ctx, requestID, SignupPending)
}

// SetSuccess records the terminal success state for a request.
func (s *StatusStore) SetSuccess(ctx context.Context, requestID string) error {
	return s.set(ctx, requestID, SignupSuccess)
}

// SetFailed records the terminal failure state for a request.
func (s *StatusStore) SetFailed(ctx context.Context, requestID string) error {
	return s.set(ctx, requestID, SignupFailed)
}

// Get returns the current status for a request ID.
// Returns ErrStatusNotFound for unknown or expired IDs, which callers
// must keep distinct from SignupPending.
func (s *StatusStore) Get(ctx context.Context, requestID string) (SignupStatus, error) {
	result, err := s.cache.client.Get(ctx, signupStatusKey(requestID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrStatusNotFound
		}
		return "", fmt.Errorf("failed to get signup status: %w", err)
	}

	return SignupStatus(result), nil
}

func (s *StatusStore) set(ctx context.Context, requestID string, status SignupStatus) error {
	err := s.cache.client.Set(ctx, signupStatusKey(requestID), string(status), s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set signup status %s: %w", status, err)
	}
	return nil
}

// signupStatusKey builds the Redis key for a request ID.
func signupStatusKey(requestID string) string {
	return signupStatusPrefix + requestID
}
