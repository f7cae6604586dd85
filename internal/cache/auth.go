package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/partnerhub/partnerhub/internal/auth"
)

const (
	// authCachePrefix is the Redis key prefix for verified credential cache.
	authCachePrefix = "auth:basic:"
	// authCacheTTL is the time-to-live for cached identities.
	// Argon2id verification is deliberately expensive; the cache keeps
	// repeated basic-auth requests from paying it on every call.
	authCacheTTL = 5 * time.Minute
)

// cachedIdentity is the wire form of a verified caller identity.
type cachedIdentity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// GetIdentity retrieves a cached identity by credential cache key.
// Returns nil on cache miss.
func (c *Cache) GetIdentity(ctx context.Context, cacheKey string) (*auth.Identity, error) {
	data, err := c.client.Get(ctx, authCachePrefix+cacheKey).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &auth.Identity{UserID: cached.UserID, Email: cached.Email}, nil
}

// SetIdentity caches a verified identity under the credential cache key.
// The short TTL bounds how long a deleted or disabled account can keep
// authenticating from cache; the key is derived from the credential
// pair, so precise invalidation is not possible.
func (c *Cache) SetIdentity(ctx context.Context, cacheKey string, id *auth.Identity) error {
	data, err := json.Marshal(cachedIdentity{UserID: id.UserID, Email: id.Email})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, authCachePrefix+cacheKey, data, authCacheTTL).Err()
}
