// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Store integration tests require a running PostgreSQL instance and are
// skipped when one is not reachable. Blob storage uses a temp directory.
package store

import (
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"notedeck/internal/database"
	"notedeck/internal/models"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "notedeck")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "notedeck")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testDB connects to the test database and applies migrations, skipping
// the test when no database is reachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser registers a user with a random username and removes it
// (with its categories and notes, via FK cascade) when the test ends.
func createTestUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	username := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	u, err := NewUserStore(db).Create(username, "secret")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM users WHERE id = $1`, u.ID)
	})
	return u
}

// testStores wires a NoteStore and CategoryStore over one attachment
// manager backed by a temp-dir blob store.
func testStores(t *testing.T, db *sql.DB) (*NoteStore, *CategoryStore, *Attachments) {
	t.Helper()
	attachments := NewAttachments(testBlobStore(t))
	return NewNoteStore(db, attachments), NewCategoryStore(db, attachments), attachments
}
