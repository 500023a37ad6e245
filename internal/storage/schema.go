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
	"errors"
	"fmt"
	"sort"
	"time"

	"companionkeeper/internal/version"
)

// schemaVersion tracks the on-disk schema. Bump it when collections or
// indexes are added and extend runMigrations with the new step. Evolution is
// additive only: collections are never dropped or renamed, which keeps every
// migration safe to replay after an interruption.
const schemaVersion = 2

// indexSpec declares a secondary index on a single column, built at creation
// time and kept consistent by SQLite.
type indexSpec struct {
	name   string
	column string
}

// collectionSpec declares one named collection. Records are stored as a JSON
// payload column next to the primary key and any indexed columns.
type collectionSpec struct {
	name    string
	keyCol  string
	create  string
	indexes []indexSpec
	since   int // schema version that introduced the collection
}

// collections is the full set of named collections. Table layout: primary
// key, extracted index columns, and the record JSON in `data`.
var collections = []collectionSpec{
	{
		name: "characters", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS characters (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "groups", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS groups (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "messages", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS messages (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			char_id  TEXT NOT NULL,
			group_id TEXT,
			data     TEXT NOT NULL
		);`,
		indexes: []indexSpec{
			{name: "idx_messages_char", column: "char_id"},
			{name: "idx_messages_group", column: "group_id"},
		},
	},
	{
		name: "gallery", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS gallery (
			id      TEXT PRIMARY KEY,
			char_id TEXT NOT NULL,
			data    TEXT NOT NULL
		);`,
		indexes: []indexSpec{{name: "idx_gallery_char", column: "char_id"}},
	},
	{
		name: "scheduled_messages", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS scheduled_messages (
			id      TEXT PRIMARY KEY,
			char_id TEXT NOT NULL,
			data    TEXT NOT NULL
		);`,
		indexes: []indexSpec{{name: "idx_scheduled_char", column: "char_id"}},
	},
	{
		name: "themes", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS themes (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "emojis", keyCol: "name", since: 1,
		create: `CREATE TABLE IF NOT EXISTS emojis (
			name TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "journal_stickers", keyCol: "name", since: 1,
		create: `CREATE TABLE IF NOT EXISTS journal_stickers (
			name TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "assets", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS assets (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "user_profile", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS user_profile (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "diaries", keyCol: "id", since: 1,
		create: `CREATE TABLE IF NOT EXISTS diaries (
			id      TEXT PRIMARY KEY,
			char_id TEXT NOT NULL,
			data    TEXT NOT NULL
		);`,
		indexes: []indexSpec{{name: "idx_diaries_char", column: "char_id"}},
	},
	{
		name: "tasks", keyCol: "id", since: 2,
		create: `CREATE TABLE IF NOT EXISTS tasks (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "anniversaries", keyCol: "id", since: 2,
		create: `CREATE TABLE IF NOT EXISTS anniversaries (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "room_todos", keyCol: "id", since: 2,
		create: `CREATE TABLE IF NOT EXISTS room_todos (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
	},
	{
		name: "room_notes", keyCol: "id", since: 2,
		create: `CREATE TABLE IF NOT EXISTS room_notes (
			id      TEXT PRIMARY KEY,
			char_id TEXT NOT NULL,
			data    TEXT NOT NULL
		);`,
		indexes: []indexSpec{{name: "idx_room_notes_char", column: "char_id"}},
	},
}

func findCollection(name string) (collectionSpec, bool) {
	for _, c := range collections {
		if c.name == name {
			return c, true
		}
	}
	return collectionSpec{}, false
}

// Handle exposes the capabilities of the installed schema. It is decided
// once when the store is opened; accessors and the restore engine consult it
// instead of probing tables per call.
type Handle struct {
	version int
	present map[string]struct{}
}

// Has reports whether the named collection exists in the installed schema.
func (h *Handle) Has(name string) bool {
	if h == nil {
		return false
	}
	_, ok := h.present[name]
	return ok
}

// Version returns the installed schema version.
func (h *Handle) Version() int { return h.version }

// Collections returns the names of all installed collections, sorted.
func (h *Handle) Collections() []string {
	out := make([]string, 0, len(h.present))
	for name := range h.present {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ensureMetaAndVersion creates the bookkeeping tables and seeds the
// single-row version record for a fresh database.
func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the recorded schema for runMigrations; only refresh app info.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureCollectionSchema creates every declared collection table and
// secondary index if missing. Re-running finds everything present and is a
// no-op, which is what makes interrupted migrations safe to replay.
func ensureCollectionSchema(ctx context.Context, db *sql.DB) error {
	for _, c := range collections {
		if _, err := db.ExecContext(ctx, c.create); err != nil {
			return fmt.Errorf("ensure collection %s: %w", c.name, err)
		}
		for _, idx := range c.indexes {
			q := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s(%s);`, idx.name, c.name, idx.column)
			if _, err := db.ExecContext(ctx, q); err != nil {
				return fmt.Errorf("ensure index %s: %w", idx.name, err)
			}
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
// Each step runs in its own transaction and bumps the version row, so a
// crash between steps resumes cleanly on the next open.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Newer on-disk schema; never downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, c := range collections {
			if c.since != next {
				continue
			}
			if _, err := tx.ExecContext(ctx, c.create); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d collection %s: %w", next, c.name, err)
			}
			for _, idx := range c.indexes {
				q := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s(%s);`, idx.name, c.name, idx.column)
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d index %s: %w", next, idx.name, err)
				}
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// buildHandle inspects sqlite_master once and records which declared
// collections are actually present on disk.
func buildHandle(ctx context.Context, db *sql.DB) (*Handle, error) {
	h := &Handle{present: make(map[string]struct{}, len(collections))}
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&h.version); err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type='table'`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if _, ok := findCollection(name); ok {
			h.present[name] = struct{}{}
		}
	}
	return h, rows.Err()
}
