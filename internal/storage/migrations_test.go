/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

// seedV1Store writes a database that looks like a version 1 installation:
// bookkeeping tables, the v1 collections, and one character record.
func seedV1Store(t *testing.T, home string) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?cache=shared", filepath.ToSlash(StorePath(home)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open raw sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	ddl := []string{
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE version (
			id INTEGER PRIMARY KEY CHECK(id=1),
			schema INTEGER NOT NULL, app TEXT,
			created_at TEXT NOT NULL, updated_at TEXT NOT NULL
		);`,
	}
	for _, c := range collections {
		if c.since == 1 {
			ddl = append(ddl, c.create)
		}
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed ddl: %v", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.ExecContext(ctx,
		`INSERT INTO version (id, schema, app, created_at, updated_at) VALUES (1, 1, 'test', ?, ?)`, now, now); err != nil {
		t.Fatalf("seed version row: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO characters (id, data) VALUES ('c1', '{"id":"c1","name":"Mio"}')`); err != nil {
		t.Fatalf("seed character: %v", err)
	}
}

func TestMigrateV1ToCurrent(t *testing.T) {
	home := t.TempDir()
	seedV1Store(t, home)

	s, err := Open(home)
	if err != nil {
		t.Fatalf("Open over v1 store: %v", err)
	}
	defer func() { _ = s.Close() }()

	if got := s.Schema().Version(); got != schemaVersion {
		t.Fatalf("schema version after migration = %d, want %d", got, schemaVersion)
	}
	for _, name := range []string{"tasks", "anniversaries", "room_todos", "room_notes"} {
		if !s.Schema().Has(name) {
			t.Fatalf("collection %s missing after migration", name)
		}
	}

	// Pre-existing data survives the upgrade untouched.
	c, ok, err := s.Character(context.Background(), "c1")
	if err != nil || !ok {
		t.Fatalf("character after migration: ok=%v err=%v", ok, err)
	}
	if c.Name != "Mio" {
		t.Fatalf("migrated character name = %q", c.Name)
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	home := t.TempDir()
	seedV1Store(t, home)

	for i := 0; i < 3; i++ {
		s, err := Open(home)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if got := s.Schema().Version(); got != schemaVersion {
			t.Fatalf("open #%d: schema version = %d, want %d", i, got, schemaVersion)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("close #%d: %v", i, err)
		}
	}
}

func TestNewerSchemaIsNotDowngraded(t *testing.T) {
	home := t.TempDir()
	s, err := Open(home)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	future := schemaVersion + 5
	if _, err := s.db.Exec(`UPDATE version SET schema=? WHERE id=1`, future); err != nil {
		t.Fatalf("bump version row: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	s2, err := Open(home)
	if err != nil {
		t.Fatalf("reopen with newer schema: %v", err)
	}
	defer func() { _ = s2.Close() }()
	if got := s2.Schema().Version(); got != future {
		t.Fatalf("schema version = %d, newer on-disk version must be kept (%d)", got, future)
	}
}
