/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// dbtx is the common surface of *sql.DB and *sql.Tx. Accessor bodies are
// written against it once and reused by both the store (implicit per-call
// transaction) and the restore engine (one explicit transaction).
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getAll reads every record of a collection, ordered by primary key for
// deterministic export output.
func getAll[T any](ctx context.Context, q dbtx, table, keyCol string) ([]T, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT data FROM %s ORDER BY %s`, table, keyCol))
	if err != nil {
		return nil, fmt.Errorf("%s: query all: %w", table, err)
	}
	return scanRecords[T](table, rows)
}

// getByIndex reads the records matching exactly one secondary index value.
func getByIndex[T any](ctx context.Context, q dbtx, table, keyCol, column, value string) ([]T, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE %s = ? ORDER BY %s`, table, column, keyCol)
	rows, err := q.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("%s: query by %s: %w", table, column, err)
	}
	return scanRecords[T](table, rows)
}

// getOne reads a single record by primary key. ok is false when absent.
func getOne[T any](ctx context.Context, q dbtx, table, keyCol, key string) (rec T, ok bool, err error) {
	var data string
	err = q.QueryRowContext(ctx, fmt.Sprintf(`SELECT data FROM %s WHERE %s = ?`, table, keyCol), key).Scan(&data)
	if err == sql.ErrNoRows {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("%s: query %q: %w", table, key, err)
	}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return rec, false, fmt.Errorf("%s: decode %q: %w", table, key, err)
	}
	return rec, true, nil
}

// putRecord upserts one record: the whole row is replaced when the primary
// key already exists. cols must start with the key column; data is appended.
func putRecord(ctx context.Context, q dbtx, table string, cols []string, rec any, keyArgs ...any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", table, err)
	}
	placeholders := "?"
	colList := cols[0]
	for _, c := range cols[1:] {
		colList += ", " + c
		placeholders += ", ?"
	}
	query := fmt.Sprintf(`REPLACE INTO %s(%s, data) VALUES (%s, ?)`, table, colList, placeholders)
	args := append(append([]any{}, keyArgs...), string(data))
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: save: %w", table, err)
	}
	return nil
}

// deleteKey removes a record by primary key. Deleting a missing key is a
// no-op, not an error.
func deleteKey(ctx context.Context, q dbtx, table, keyCol, key string) error {
	if _, err := q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, keyCol), key); err != nil {
		return fmt.Errorf("%s: delete %q: %w", table, key, err)
	}
	return nil
}

func scanRecords[T any](table string, rows *sql.Rows) ([]T, error) {
	defer func() { _ = rows.Close() }()
	out := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", table, err)
		}
		var rec T
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// nullable maps an empty string to NULL so partial indexes on optional
// columns (group_id) stay clean.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
