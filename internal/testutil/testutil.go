// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/migrations"
)

const advisoryLockID int64 = 731731

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

// ResetSchema drops every table and recreates it from the embedded migrations.
// Down files run newest first, then up files oldest first.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	down, err := migrationFiles(".down.sql")
	if err != nil {
		return err
	}
	slices.Reverse(down)

	up, err := migrationFiles(".up.sql")
	if err != nil {
		return err
	}

	for _, name := range append(down, up...) {
		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	// Keep golang-migrate's bookkeeping out of the way of Migrate() in other tests.
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}

	return nil
}

func migrationFiles(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates an unsaved user with a unique email.
func NewTestUser(t testing.TB, prefix string) *model.User {
	t.Helper()
	return &model.User{
		FirstName: "Test",
		LastName:  strings.ToUpper(prefix[:1]) + prefix[1:],
		Email:     UniqueEmail(prefix),
	}
}

// NewTestAPIKey creates an unsaved key expiring one month after issuedAt.
func NewTestAPIKey(t testing.TB, issuedAt time.Time) *model.APIKey {
	t.Helper()
	return &model.APIKey{
		KeyValue:  fmt.Sprintf("%0128x", issuedAt.UnixNano()),
		ExpiresAt: model.ExpiryFrom(issuedAt),
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.test", prefix, time.Now().UnixNano())
}
