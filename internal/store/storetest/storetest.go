// Package storetest opens migrated in-memory databases for tests.
package storetest

import (
	"context"
	"testing"

	"github.com/popalexr/Travel-Recommendation/internal/store"
)

// New returns a fresh, fully migrated pure-Go SQLite database that is closed
// when the test ends.
func New(t testing.TB) *store.DB {
	t.Helper()

	db, err := store.Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// User inserts a user with the given email and returns its ID.
func User(t testing.TB, db *store.DB, email string) int64 {
	t.Helper()

	u := &store.User{Email: email, PasswordHash: "x"}
	if err := store.NewUsers(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u.ID
}
