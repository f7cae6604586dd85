// Package testutil provides helpers for integration tests that run
// against real Postgres and Redis instances.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/partnerhub/partnerhub/internal/auth"
	"github.com/partnerhub/partnerhub/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates both tables for tests. Users go down
// last (projects reference them) and up first.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := applyMigration(ctx, pool, "000002_external_projects.down.sql"); err != nil {
		return err
	}
	if err := applyMigration(ctx, pool, "000001_users.down.sql"); err != nil {
		return err
	}
	if err := applyMigration(ctx, pool, "000001_users.up.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, "000002_external_projects.up.sql")
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	sql, err := os.ReadFile(filepath.Join(root, "migrations", filename))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filename, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filename, err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults. The password
// hash corresponds to "TestPass123!".
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("TestPass123!")
	if err != nil {
		t.Fatalf("hash test password: %v", err)
	}
	now := time.Now().UTC()
	return &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestProject creates a test project owned by the given user.
func NewTestProject(t testing.TB, ownerID int64, id string) *model.ExternalProject {
	t.Helper()
	now := time.Now().UTC()
	return &model.ExternalProject{
		ID:        id,
		OwnerID:   ownerID,
		Name:      "Test Project",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueProjectID generates a unique project ID for tests.
func UniqueProjectID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
