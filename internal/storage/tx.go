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
	"errors"
	"fmt"

	"companionkeeper/internal/domain"
)

// Tx is a multi-collection transaction. Operations queued on it execute in
// submission order; everything commits together or not at all. It exists for
// the restore engine, which must replace several collections atomically.
type Tx struct {
	q      dbtx
	schema *Handle
}

// RunInTx runs fn inside one transaction, committing when fn returns nil and
// rolling back otherwise. The error from fn is returned unchanged so typed
// errors (TransactionError) survive.
func (s *Store) RunInTx(ctx context.Context, fn func(tx *Tx) error) error {
	stx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Tx{q: stx, schema: s.schema}); err != nil {
		_ = stx.Rollback()
		return err
	}
	if err := stx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Has reports whether the installed schema carries the named collection.
func (t *Tx) Has(name string) bool { return t.schema.Has(name) }

// Clear removes every record of one collection.
func (t *Tx) Clear(ctx context.Context, name string) error {
	if _, ok := findCollection(name); !ok {
		return fmt.Errorf("unknown collection %q", name)
	}
	if _, err := t.q.ExecContext(ctx, `DELETE FROM `+name); err != nil {
		return &TransactionError{Collection: name, Err: err}
	}
	return nil
}

// Characters reads all character profiles inside the transaction. The
// media-overlay restore needs a consistent read of the rows it patches.
func (t *Tx) Characters(ctx context.Context) ([]domain.CharacterProfile, error) {
	return getAll[domain.CharacterProfile](ctx, t.q, "characters", "id")
}

// Put operations write one record each, keeping ids exactly as given. A
// failure is reported as a *TransactionError naming the collection.

func (t *Tx) PutCharacter(ctx context.Context, c domain.CharacterProfile) error {
	return t.wrap("characters", saveCharacter(ctx, t.q, c))
}

func (t *Tx) PutGroup(ctx context.Context, g domain.GroupProfile) error {
	return t.wrap("groups", saveGroup(ctx, t.q, g))
}

func (t *Tx) PutMessage(ctx context.Context, m domain.Message) error {
	return t.wrap("messages", saveMessage(ctx, t.q, m))
}

func (t *Tx) PutGalleryImage(ctx context.Context, g domain.GalleryImage) error {
	return t.wrap("gallery", saveGalleryImage(ctx, t.q, g))
}

func (t *Tx) PutScheduledMessage(ctx context.Context, m domain.ScheduledMessage) error {
	return t.wrap("scheduled_messages", saveScheduled(ctx, t.q, m))
}

func (t *Tx) PutDiary(ctx context.Context, d domain.DiaryEntry) error {
	return t.wrap("diaries", saveDiary(ctx, t.q, d))
}

func (t *Tx) PutTask(ctx context.Context, task domain.Task) error {
	return t.wrap("tasks", saveTask(ctx, t.q, task))
}

func (t *Tx) PutAnniversary(ctx context.Context, a domain.Anniversary) error {
	return t.wrap("anniversaries", saveAnniversary(ctx, t.q, a))
}

func (t *Tx) PutRoomTodo(ctx context.Context, td domain.RoomTodo) error {
	return t.wrap("room_todos", saveRoomTodo(ctx, t.q, td))
}

func (t *Tx) PutRoomNote(ctx context.Context, n domain.RoomNote) error {
	return t.wrap("room_notes", saveRoomNote(ctx, t.q, n))
}

func (t *Tx) PutEmoji(ctx context.Context, st domain.Sticker) error {
	if st.Name == "" {
		return t.wrap("emojis", errors.New("name is required"))
	}
	return t.wrap("emojis", saveSticker(ctx, t.q, "emojis", st))
}

func (t *Tx) PutJournalSticker(ctx context.Context, st domain.Sticker) error {
	if st.Name == "" {
		return t.wrap("journal_stickers", errors.New("name is required"))
	}
	return t.wrap("journal_stickers", saveSticker(ctx, t.q, "journal_stickers", st))
}

func (t *Tx) PutTheme(ctx context.Context, th domain.Theme) error {
	return t.wrap("themes", saveTheme(ctx, t.q, th))
}

func (t *Tx) PutBlob(ctx context.Context, b domain.Blob) error {
	return t.wrap("assets", saveBlob(ctx, t.q, b))
}

func (t *Tx) PutUserProfile(ctx context.Context, p domain.UserProfile) error {
	return t.wrap("user_profile", saveUserProfile(ctx, t.q, p))
}

func (t *Tx) wrap(collection string, err error) error {
	if err != nil {
		return &TransactionError{Collection: collection, Err: err}
	}
	return nil
}
