/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"companionkeeper/internal/backup"
)

// ArchiveOptions controls media archive export.
type ArchiveOptions struct {
	// ThumbnailSize is the max edge length in pixels of generated
	// thumbnails; 0 disables thumbnails.
	ThumbnailSize int
}

// archiveEntry describes one written media file in the manifest.
type archiveEntry struct {
	CharID string `json:"charId"`
	Kind   string `json:"kind"` // sprite, roomItem, background
	Key    string `json:"key"`
	Path   string `json:"path,omitempty"`
	// Ref is set instead of Path when the media value is an external
	// reference rather than embedded image data.
	Ref string `json:"ref,omitempty"`
}

// MediaArchive writes a media-only backup as a ZIP archive: one folder per
// character, embedded data-URL images decoded to files, external references
// listed in the manifest, and optional scaled PNG thumbnails.
func MediaArchive(doc *backup.MediaBackupDocument, outPath string, opt ArchiveOptions) error {
	if doc == nil {
		return fmt.Errorf("media document is nil")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() { _ = f.Close() }()
	zw := zip.NewWriter(f)

	var manifest []archiveEntry
	add := func(charID, kind, key, value string) error {
		img, ext, ok := decodeDataURL(value)
		if !ok {
			manifest = append(manifest, archiveEntry{CharID: charID, Kind: kind, Key: key, Ref: value})
			return nil
		}
		name := path.Join(charID, kind+"s", sanitizeName(key)+"."+ext)
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("archive %s: %w", name, err)
		}
		if _, err := w.Write(img); err != nil {
			return fmt.Errorf("archive %s: %w", name, err)
		}
		manifest = append(manifest, archiveEntry{CharID: charID, Kind: kind, Key: key, Path: name})
		if opt.ThumbnailSize > 0 {
			thumb, terr := thumbnailPNG(img, opt.ThumbnailSize)
			if terr != nil {
				// Undecodable image data; keep the original, skip the thumb.
				return nil
			}
			tname := path.Join(charID, "thumbs", sanitizeName(key)+".png")
			tw, err := zw.Create(tname)
			if err != nil {
				return fmt.Errorf("archive %s: %w", tname, err)
			}
			if _, err := tw.Write(thumb); err != nil {
				return fmt.Errorf("archive %s: %w", tname, err)
			}
		}
		return nil
	}

	// Keys are written in sorted order so the same document always yields
	// the same archive bytes and manifest.
	for _, mb := range doc.MediaAssets {
		for _, key := range sortedKeys(mb.Sprites) {
			if err := add(mb.CharID, "sprite", key, mb.Sprites[key]); err != nil {
				return err
			}
		}
		for _, id := range sortedKeys(mb.RoomItems) {
			if err := add(mb.CharID, "roomItem", id, mb.RoomItems[id]); err != nil {
				return err
			}
		}
		if bg := mb.Backgrounds; bg != nil {
			for _, b := range []struct{ key, value string }{
				{"chat", bg.Chat}, {"date", bg.Date}, {"roomFloor", bg.RoomFloor}, {"roomWall", bg.RoomWall},
			} {
				if b.value == "" {
					continue
				}
				if err := add(mb.CharID, "background", b.key, b.value); err != nil {
					return err
				}
			}
		}
	}

	mw, err := zw.Create("manifest.json")
	if err != nil {
		return fmt.Errorf("archive manifest: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Timestamp string         `json:"timestamp"`
		Version   int            `json:"version"`
		Entries   []archiveEntry `json:"entries"`
	}{doc.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"), doc.Version, manifest}); err != nil {
		return fmt.Errorf("archive manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return f.Sync()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
