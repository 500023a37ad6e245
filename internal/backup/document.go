/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backup

import (
	"time"

	"companionkeeper/internal/domain"
)

// DocumentVersion is the backup document format version, independent of the
// store's schema version.
const DocumentVersion = 1

// BackupDocument is the portable serialization of the full collection set.
// Collection fields carry restore semantics through their presence: a nil
// slice means the collection was omitted and is left untouched on restore; a
// present empty slice means "this collection is empty" and clears it. For
// that reason collection fields deliberately have no omitempty.
type BackupDocument struct {
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`

	Characters           []domain.CharacterProfile `json:"characters"`
	Groups               []domain.GroupProfile     `json:"groups"`
	Messages             []domain.Message          `json:"messages"`
	CustomThemes         []domain.Theme            `json:"customThemes"`
	SavedEmojis          []domain.Sticker          `json:"savedEmojis"`
	SavedJournalStickers []domain.Sticker          `json:"savedJournalStickers"`
	Assets               []domain.Blob             `json:"assets"`
	GalleryImages        []domain.GalleryImage     `json:"galleryImages"`
	Diaries              []domain.DiaryEntry       `json:"diaries"`
	ScheduledMessages    []domain.ScheduledMessage `json:"scheduledMessages"`
	Tasks                []domain.Task             `json:"tasks"`
	Anniversaries        []domain.Anniversary      `json:"anniversaries"`
	RoomTodos            []domain.RoomTodo         `json:"roomTodos"`
	RoomNotes            []domain.RoomNote         `json:"roomNotes"`

	// UserProfile is denormalized from the singleton record; its storage key
	// is never part of the exported shape.
	UserProfile *domain.UserProfile `json:"userProfile,omitempty"`

	// MediaAssets is the side-channel that reunites a text-only backup with a
	// separately stored media backup; applied to Characters before a full
	// replace executes.
	MediaAssets []domain.MediaAssets `json:"mediaAssets,omitempty"`
}

// MediaBackupDocument carries only binary/URL media keyed by owner id, never
// text content, memories, or conversation history. It exists so large media
// can be redistributed without re-exporting an entire dataset.
type MediaBackupDocument struct {
	Timestamp   time.Time            `json:"timestamp"`
	Version     int                  `json:"version"`
	MediaAssets []domain.MediaAssets `json:"mediaAssets"`
}
