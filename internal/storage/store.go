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
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	applog "companionkeeper/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	StoreFileName  = "companion.sqlite"
	BackupsDirName = "backups"
	ExportsDirName = "exports"
)

// Standard subfolders of a home directory.
var standardSubDirs = []string{
	BackupsDirName,
	ExportsDirName,
}

// StorePath returns the full path to the embedded store file inside home.
func StorePath(home string) string {
	return filepath.Join(home, StoreFileName)
}

// BackupsPath returns the backups directory inside home.
func BackupsPath(home string) string {
	return filepath.Join(home, BackupsDirName)
}

// Store is the process-wide handle to the embedded object store. It is
// acquired once at startup, reused by any number of concurrent callers, and
// released on shutdown. Every accessor takes it as an explicit dependency.
type Store struct {
	db     *sql.DB
	home   string
	path   string
	schema *Handle

	closeOnce sync.Once
}

// openStores tracks live handles per store path so Destroy can refuse to
// delete a store that is still in use within this process.
var (
	openMu     sync.Mutex
	openStores = map[string]int{}
)

func registerOpen(path string) {
	openMu.Lock()
	openStores[path]++
	openMu.Unlock()
}

func registerClose(path string) {
	openMu.Lock()
	if openStores[path] > 0 {
		openStores[path]--
	}
	openMu.Unlock()
}

func openCount(path string) int {
	openMu.Lock()
	defer openMu.Unlock()
	return openStores[path]
}

// Open creates the home directory layout if needed, opens the embedded
// store, enables WAL mode, and runs the idempotent schema ensure plus any
// pending migrations. Failures surface as *OpenError and no handle exists.
func Open(home string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(
		slog.String("home", home),
	)
	if home == "" {
		return nil, &OpenError{Path: home, Err: errors.New("home directory is required")}
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		l.Error("create home dir failed", slog.Any("err", err))
		return nil, &OpenError{Path: home, Err: fmt.Errorf("create home dir: %w", err)}
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(home, d), 0o755); err != nil {
			return nil, &OpenError{Path: home, Err: fmt.Errorf("create subdir %s: %w", d, err)}
		}
	}

	path := StorePath(home)
	// URI with shared cache and busy timeout; forward slashes for SQLite.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, &OpenError{Path: path, Err: fmt.Errorf("open sqlite: %w", err)}
	}
	// Embedded usage: a single connection serializes same-collection writers
	// and lets the engine's native isolation do the rest.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, &OpenError{Path: path, Err: fmt.Errorf("enable WAL: %w", err)}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, &OpenError{Path: path, Err: err}
	}
	if err := ensureCollectionSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure collection schema failed", slog.Any("err", err))
		return nil, &OpenError{Path: path, Err: err}
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, &OpenError{Path: path, Err: err}
	}
	h, err := buildHandle(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, &OpenError{Path: path, Err: err}
	}

	registerOpen(path)
	l.Info("store ready", slog.String("path", path), slog.Int("schema", h.Version()))
	return &Store{db: db, home: home, path: path, schema: h}, nil
}

// Home returns the home directory this store lives in.
func (s *Store) Home() string { return s.home }

// Schema returns the capability handle of the installed schema.
func (s *Store) Schema() *Handle { return s.schema }

// Close releases the store handle. Safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
		registerClose(s.path)
	})
	return err
}

// Destroy deletes the entire store under home. It refuses with a
// *BlockedError while any in-process handle is still open; callers must not
// assume the store is gone until Destroy returns nil.
func Destroy(home string) error {
	path := StorePath(home)
	if openCount(path) > 0 {
		return &BlockedError{Path: path}
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}
