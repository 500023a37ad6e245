/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backup serializes the full collection set into a portable JSON
// document and restores such documents, either as a wholesale replacement or
// as a media-only overlay.
package backup

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"companionkeeper/internal/domain"
	"companionkeeper/internal/storage"
)

//go:embed backup.schema.json
var schemaJSON []byte

// ExportAll reads every collection in full (no pagination) and assembles one
// document mirroring the collection set one-to-one. Collections missing from
// the installed schema degrade to an empty sequence; export never fails
// solely because an optional collection is absent.
func ExportAll(ctx context.Context, st *storage.Store) (*BackupDocument, error) {
	h := st.Schema()
	doc := &BackupDocument{
		Timestamp:            time.Now().UTC(),
		Version:              DocumentVersion,
		Characters:           []domain.CharacterProfile{},
		Groups:               []domain.GroupProfile{},
		Messages:             []domain.Message{},
		CustomThemes:         []domain.Theme{},
		SavedEmojis:          []domain.Sticker{},
		SavedJournalStickers: []domain.Sticker{},
		Assets:               []domain.Blob{},
		GalleryImages:        []domain.GalleryImage{},
		Diaries:              []domain.DiaryEntry{},
		ScheduledMessages:    []domain.ScheduledMessage{},
		Tasks:                []domain.Task{},
		Anniversaries:        []domain.Anniversary{},
		RoomTodos:            []domain.RoomTodo{},
		RoomNotes:            []domain.RoomNote{},
	}

	var err error
	if h.Has("characters") {
		if doc.Characters, err = st.Characters(ctx); err != nil {
			return nil, fmt.Errorf("export characters: %w", err)
		}
	}
	if h.Has("groups") {
		if doc.Groups, err = st.Groups(ctx); err != nil {
			return nil, fmt.Errorf("export groups: %w", err)
		}
	}
	if h.Has("messages") {
		if doc.Messages, err = st.Messages(ctx); err != nil {
			return nil, fmt.Errorf("export messages: %w", err)
		}
	}
	if h.Has("themes") {
		if doc.CustomThemes, err = st.Themes(ctx); err != nil {
			return nil, fmt.Errorf("export themes: %w", err)
		}
	}
	if h.Has("emojis") {
		if doc.SavedEmojis, err = st.Emojis(ctx); err != nil {
			return nil, fmt.Errorf("export emojis: %w", err)
		}
	}
	if h.Has("journal_stickers") {
		if doc.SavedJournalStickers, err = st.JournalStickers(ctx); err != nil {
			return nil, fmt.Errorf("export journal stickers: %w", err)
		}
	}
	if h.Has("assets") {
		if doc.Assets, err = st.Blobs(ctx); err != nil {
			return nil, fmt.Errorf("export assets: %w", err)
		}
	}
	if h.Has("gallery") {
		if doc.GalleryImages, err = st.GalleryImages(ctx); err != nil {
			return nil, fmt.Errorf("export gallery: %w", err)
		}
	}
	if h.Has("diaries") {
		if doc.Diaries, err = st.Diaries(ctx); err != nil {
			return nil, fmt.Errorf("export diaries: %w", err)
		}
	}
	if h.Has("scheduled_messages") {
		if doc.ScheduledMessages, err = st.ScheduledMessages(ctx); err != nil {
			return nil, fmt.Errorf("export scheduled messages: %w", err)
		}
	}
	if h.Has("tasks") {
		if doc.Tasks, err = st.Tasks(ctx); err != nil {
			return nil, fmt.Errorf("export tasks: %w", err)
		}
	}
	if h.Has("anniversaries") {
		if doc.Anniversaries, err = st.Anniversaries(ctx); err != nil {
			return nil, fmt.Errorf("export anniversaries: %w", err)
		}
	}
	if h.Has("room_todos") {
		if doc.RoomTodos, err = st.RoomTodos(ctx); err != nil {
			return nil, fmt.Errorf("export room todos: %w", err)
		}
	}
	if h.Has("room_notes") {
		if doc.RoomNotes, err = st.RoomNotes(ctx); err != nil {
			return nil, fmt.Errorf("export room notes: %w", err)
		}
	}
	if h.Has("user_profile") {
		p, ok, err := st.UserProfile(ctx)
		if err != nil {
			return nil, fmt.Errorf("export user profile: %w", err)
		}
		if ok {
			doc.UserProfile = &p
		}
	}
	return doc, nil
}

// EncodeMediaOnly assembles a media-only document from character profiles:
// per owner id only the mutable binary/URL fields, never text or history.
// Characters without any media are left out.
func EncodeMediaOnly(characters []domain.CharacterProfile) *MediaBackupDocument {
	doc := &MediaBackupDocument{
		Timestamp:   time.Now().UTC(),
		Version:     DocumentVersion,
		MediaAssets: []domain.MediaAssets{},
	}
	for _, c := range characters {
		mb := c.ExtractMedia()
		if len(mb.Sprites) == 0 && len(mb.RoomItems) == 0 && mb.Backgrounds == nil {
			continue
		}
		doc.MediaAssets = append(doc.MediaAssets, mb)
	}
	return doc
}

// Decode validates raw document bytes against the backup schema and
// unmarshals them. Backup files are untrusted input; malformed documents are
// rejected before any record is touched.
func Decode(data []byte) (*BackupDocument, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	var doc BackupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse backup document: %w", err)
	}
	return &doc, nil
}

// DecodeMedia validates and unmarshals a media-only document.
func DecodeMedia(data []byte) (*MediaBackupDocument, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	var doc MediaBackupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse media backup document: %w", err)
	}
	return &doc, nil
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate backup document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid backup document: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// WriteFile marshals doc human-readably and writes it transactionally: to a
// temp file in the target directory, synced, then renamed over the target.
func WriteFile(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup document: %w", err)
	}
	data = append(data, '\n')
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp backup: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace backup: %w", err)
	}
	return nil
}

// writeFileSync writes data to a file and ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
