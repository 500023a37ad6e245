/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"companionkeeper/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertMessageSQL = `INSERT INTO messages(char_id, group_id, data) VALUES (?, ?, '{}')`

// language=SQL
// dialect=SQLite
const updateMessageDataSQL = `UPDATE messages SET data = ? WHERE id = ?`

// language=SQL
// dialect=SQLite
const replaceMessageSQL = `REPLACE INTO messages(id, char_id, group_id, data) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectMessageSQL = `SELECT data FROM messages WHERE id = ?`

// saveMessage upserts a message under its explicit id. Used by restore and
// by read-modify-write updates; AUTOINCREMENT keeps the append sequence
// ahead of any explicitly written id.
func saveMessage(ctx context.Context, q dbtx, m domain.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("messages: encode: %w", err)
	}
	if _, err := q.ExecContext(ctx, replaceMessageSQL, m.ID, m.CharID, nullable(m.GroupID), string(data)); err != nil {
		return fmt.Errorf("messages: save %d: %w", m.ID, err)
	}
	return nil
}

// AppendMessage inserts a message without an id and returns the stored copy
// carrying the assigned sequential id.
func (s *Store) AppendMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return m, fmt.Errorf("messages: begin append: %w", err)
	}
	res, err := tx.ExecContext(ctx, insertMessageSQL, m.CharID, nullable(m.GroupID))
	if err != nil {
		_ = tx.Rollback()
		return m, fmt.Errorf("messages: append: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return m, fmt.Errorf("messages: assigned id: %w", err)
	}
	m.ID = id
	data, err := json.Marshal(m)
	if err != nil {
		_ = tx.Rollback()
		return m, fmt.Errorf("messages: encode: %w", err)
	}
	if _, err := tx.ExecContext(ctx, updateMessageDataSQL, string(data), id); err != nil {
		_ = tx.Rollback()
		return m, fmt.Errorf("messages: write payload: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return m, fmt.Errorf("messages: commit append: %w", err)
	}
	return m, nil
}

// Messages returns every message across all venues, ordered by id.
func (s *Store) Messages(ctx context.Context) ([]domain.Message, error) {
	return getAll[domain.Message](ctx, s.db, "messages", "id")
}

// PrivateMessages returns the private-chat history with one character. The
// char_id index also matches group messages sent by that character, so
// records carrying a group id are filtered out here; they belong to the
// group venue only.
func (s *Store) PrivateMessages(ctx context.Context, charID string) ([]domain.Message, error) {
	all, err := getByIndex[domain.Message](ctx, s.db, "messages", "id", "char_id", charID)
	if err != nil {
		return nil, err
	}
	private := all[:0]
	for _, m := range all {
		if m.Private() {
			private = append(private, m)
		}
	}
	return private, nil
}

// GroupMessages returns the history of one group chat, ordered by id.
func (s *Store) GroupMessages(ctx context.Context, groupID string) ([]domain.Message, error) {
	return getByIndex[domain.Message](ctx, s.db, "messages", "id", "group_id", groupID)
}

// UpdateMessageContent amends the content of an existing message. It fails
// with *NotFoundError when the id does not exist at read time; there is no
// optimistic-concurrency check beyond that.
func (s *Store) UpdateMessageContent(ctx context.Context, id int64, content string) error {
	var data string
	err := s.db.QueryRowContext(ctx, selectMessageSQL, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Collection: "messages", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return fmt.Errorf("messages: read %d: %w", id, err)
	}
	var m domain.Message
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return fmt.Errorf("messages: decode %d: %w", id, err)
	}
	m.Content = content
	return saveMessage(ctx, s.db, m)
}

// DeleteMessage removes a message. Missing ids are a no-op.
func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("messages: delete %d: %w", id, err)
	}
	return nil
}
