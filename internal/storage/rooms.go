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

	"github.com/google/uuid"

	"companionkeeper/internal/domain"
)

// RoomTodoKey derives the storage key of a day's checklist. The key is
// computed from (charID, date), never assigned, so saving the same pair
// twice overwrites rather than duplicating.
func RoomTodoKey(charID, date string) string {
	return charID + "_" + date
}

func saveRoomTodo(ctx context.Context, q dbtx, td domain.RoomTodo) error {
	return putRecord(ctx, q, "room_todos", []string{"id"}, td, RoomTodoKey(td.CharID, td.Date))
}

func saveRoomNote(ctx context.Context, q dbtx, n domain.RoomNote) error {
	return putRecord(ctx, q, "room_notes", []string{"id", "char_id"}, n, n.ID, n.CharID)
}

// RoomTodos returns every room checklist.
func (s *Store) RoomTodos(ctx context.Context) ([]domain.RoomTodo, error) {
	return getAll[domain.RoomTodo](ctx, s.db, "room_todos", "id")
}

// RoomTodoFor reads the checklist of one character for one day; ok is false
// when none was generated.
func (s *Store) RoomTodoFor(ctx context.Context, charID, date string) (domain.RoomTodo, bool, error) {
	return getOne[domain.RoomTodo](ctx, s.db, "room_todos", "id", RoomTodoKey(charID, date))
}

// SaveRoomTodo upserts a checklist under its derived key.
func (s *Store) SaveRoomTodo(ctx context.Context, td domain.RoomTodo) error {
	return saveRoomTodo(ctx, s.db, td)
}

// DeleteRoomTodo removes the checklist of one (character, day) pair.
// Missing keys are a no-op.
func (s *Store) DeleteRoomTodo(ctx context.Context, charID, date string) error {
	return deleteKey(ctx, s.db, "room_todos", "id", RoomTodoKey(charID, date))
}

// RoomNotes returns every room note.
func (s *Store) RoomNotes(ctx context.Context) ([]domain.RoomNote, error) {
	return getAll[domain.RoomNote](ctx, s.db, "room_notes", "id")
}

// RoomNotesByChar returns the notes left in one character's room.
func (s *Store) RoomNotesByChar(ctx context.Context, charID string) ([]domain.RoomNote, error) {
	return getByIndex[domain.RoomNote](ctx, s.db, "room_notes", "id", "char_id", charID)
}

// SaveRoomNote upserts a note, assigning an id when the record has none, and
// returns the stored copy.
func (s *Store) SaveRoomNote(ctx context.Context, n domain.RoomNote) (domain.RoomNote, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return n, saveRoomNote(ctx, s.db, n)
}

// DeleteRoomNote removes a note. Missing ids are a no-op.
func (s *Store) DeleteRoomNote(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "room_notes", "id", id)
}
