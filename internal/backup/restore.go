/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backup

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"companionkeeper/internal/domain"
	applog "companionkeeper/internal/log"
	"companionkeeper/internal/storage"
)

// Request selects the restore mode explicitly. The caller decides; the mode
// is never inferred from document shape, so a document carrying both
// characters and mediaAssets is unambiguous.
type Request struct {
	full  *BackupDocument
	media *MediaBackupDocument
}

// FullReplace builds a request that replaces every collection named in doc
// wholesale. Destructive by design: a full restore is an exact state
// replacement, not a merge. Collections omitted from doc are left untouched.
func FullReplace(doc *BackupDocument) Request { return Request{full: doc} }

// MediaOverlay builds a request that patches only the media-bearing fields
// of existing character records, preserving everything else.
func MediaOverlay(doc *MediaBackupDocument) Request { return Request{media: doc} }

// Restore applies req under one atomic transaction spanning every collection
// the document names. All writes commit together or none do; a
// mid-transaction failure surfaces as *storage.TransactionError referencing
// the triggering collection and leaves the store at its pre-transaction
// state. Collections named in the document but absent from the installed
// schema are skipped (an older installation partially ingests a newer
// backup), each skip logged at warn level.
func Restore(ctx context.Context, st *storage.Store, req Request) error {
	switch {
	case req.full != nil:
		return restoreFull(ctx, st, req.full)
	case req.media != nil:
		return restoreMediaOverlay(ctx, st, req.media)
	default:
		return errors.New("empty restore request")
	}
}

func restoreFull(ctx context.Context, st *storage.Store, doc *BackupDocument) error {
	l := applog.WithOperation(applog.WithComponent("backup"), "restore_full")

	// A mediaAssets side-channel patches the document's character records
	// before the replace executes; media-overlay is a pre-processing step
	// nested inside full-replace, not a separate storage path. The document
	// stays the caller's: patched records get their own sprites map and room
	// item slice so no write reaches the shared backing storage.
	characters := doc.Characters
	if len(doc.MediaAssets) > 0 && characters != nil {
		byChar := mediaByChar(doc.MediaAssets)
		characters = append([]domain.CharacterProfile(nil), characters...)
		for i := range characters {
			if mb, ok := byChar[characters[i].ID]; ok {
				characters[i].Sprites = maps.Clone(characters[i].Sprites)
				characters[i].RoomItems = append([]domain.RoomItem(nil), characters[i].RoomItems...)
				characters[i].ApplyMedia(mb)
			}
		}
	}

	return st.RunInTx(ctx, func(tx *storage.Tx) error {
		skip := func(name string) bool {
			if tx.Has(name) {
				return false
			}
			l.Warn("collection not in installed schema, skipped", slog.String("collection", name))
			return true
		}
		if characters != nil && !skip("characters") {
			if err := tx.Clear(ctx, "characters"); err != nil {
				return err
			}
			for _, c := range characters {
				if err := tx.PutCharacter(ctx, c); err != nil {
					return err
				}
			}
		}
		if doc.Groups != nil && !skip("groups") {
			if err := tx.Clear(ctx, "groups"); err != nil {
				return err
			}
			for _, g := range doc.Groups {
				if err := tx.PutGroup(ctx, g); err != nil {
					return err
				}
			}
		}
		if doc.Messages != nil && !skip("messages") {
			if err := tx.Clear(ctx, "messages"); err != nil {
				return err
			}
			for _, m := range doc.Messages {
				if err := tx.PutMessage(ctx, m); err != nil {
					return err
				}
			}
		}
		if doc.CustomThemes != nil && !skip("themes") {
			if err := tx.Clear(ctx, "themes"); err != nil {
				return err
			}
			for _, th := range doc.CustomThemes {
				if err := tx.PutTheme(ctx, th); err != nil {
					return err
				}
			}
		}
		if doc.SavedEmojis != nil && !skip("emojis") {
			if err := tx.Clear(ctx, "emojis"); err != nil {
				return err
			}
			for _, e := range doc.SavedEmojis {
				if err := tx.PutEmoji(ctx, e); err != nil {
					return err
				}
			}
		}
		if doc.SavedJournalStickers != nil && !skip("journal_stickers") {
			if err := tx.Clear(ctx, "journal_stickers"); err != nil {
				return err
			}
			for _, stk := range doc.SavedJournalStickers {
				if err := tx.PutJournalSticker(ctx, stk); err != nil {
					return err
				}
			}
		}
		if doc.Assets != nil && !skip("assets") {
			if err := tx.Clear(ctx, "assets"); err != nil {
				return err
			}
			for _, b := range doc.Assets {
				if err := tx.PutBlob(ctx, b); err != nil {
					return err
				}
			}
		}
		if doc.GalleryImages != nil && !skip("gallery") {
			if err := tx.Clear(ctx, "gallery"); err != nil {
				return err
			}
			for _, g := range doc.GalleryImages {
				if err := tx.PutGalleryImage(ctx, g); err != nil {
					return err
				}
			}
		}
		if doc.Diaries != nil && !skip("diaries") {
			if err := tx.Clear(ctx, "diaries"); err != nil {
				return err
			}
			for _, d := range doc.Diaries {
				if err := tx.PutDiary(ctx, d); err != nil {
					return err
				}
			}
		}
		if doc.ScheduledMessages != nil && !skip("scheduled_messages") {
			if err := tx.Clear(ctx, "scheduled_messages"); err != nil {
				return err
			}
			for _, m := range doc.ScheduledMessages {
				if err := tx.PutScheduledMessage(ctx, m); err != nil {
					return err
				}
			}
		}
		if doc.Tasks != nil && !skip("tasks") {
			if err := tx.Clear(ctx, "tasks"); err != nil {
				return err
			}
			for _, task := range doc.Tasks {
				if err := tx.PutTask(ctx, task); err != nil {
					return err
				}
			}
		}
		if doc.Anniversaries != nil && !skip("anniversaries") {
			if err := tx.Clear(ctx, "anniversaries"); err != nil {
				return err
			}
			for _, a := range doc.Anniversaries {
				if err := tx.PutAnniversary(ctx, a); err != nil {
					return err
				}
			}
		}
		if doc.RoomTodos != nil && !skip("room_todos") {
			if err := tx.Clear(ctx, "room_todos"); err != nil {
				return err
			}
			for _, td := range doc.RoomTodos {
				if err := tx.PutRoomTodo(ctx, td); err != nil {
					return err
				}
			}
		}
		if doc.RoomNotes != nil && !skip("room_notes") {
			if err := tx.Clear(ctx, "room_notes"); err != nil {
				return err
			}
			for _, n := range doc.RoomNotes {
				if err := tx.PutRoomNote(ctx, n); err != nil {
					return err
				}
			}
		}
		if doc.UserProfile != nil && !skip("user_profile") {
			if err := tx.Clear(ctx, "user_profile"); err != nil {
				return err
			}
			if err := tx.PutUserProfile(ctx, *doc.UserProfile); err != nil {
				return err
			}
		}
		return nil
	})
}

// restoreMediaOverlay patches only the media-bearing fields of existing
// character records: per-key sprite merge, per-item-id room image patch,
// per-field background overwrite. Names, memories, prompts and room item
// metadata are preserved unchanged even though the donor document carries
// character ids.
func restoreMediaOverlay(ctx context.Context, st *storage.Store, doc *MediaBackupDocument) error {
	if !st.Schema().Has("characters") {
		return nil
	}
	byChar := mediaByChar(doc.MediaAssets)
	return st.RunInTx(ctx, func(tx *storage.Tx) error {
		characters, err := tx.Characters(ctx)
		if err != nil {
			return &storage.TransactionError{Collection: "characters", Err: err}
		}
		for _, c := range characters {
			mb, ok := byChar[c.ID]
			if !ok {
				continue
			}
			c.ApplyMedia(mb)
			if err := tx.PutCharacter(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func mediaByChar(entries []domain.MediaAssets) map[string]domain.MediaAssets {
	byChar := make(map[string]domain.MediaAssets, len(entries))
	for _, mb := range entries {
		byChar[mb.CharID] = mb
	}
	return byChar
}
