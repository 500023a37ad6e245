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
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"companionkeeper/internal/backup"
	"companionkeeper/internal/domain"
)

func readArchive(t *testing.T, path string) (map[string][]byte, *zip.ReadCloser) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	files := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read member %s: %v", f.Name, err)
		}
		files[f.Name] = data
	}
	return files, zr
}

func TestMediaArchiveLayout(t *testing.T) {
	spriteURL, spriteRaw := pngDataURL(t, 120, 80)
	doc := &backup.MediaBackupDocument{
		Timestamp: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Version:   backup.DocumentVersion,
		MediaAssets: []domain.MediaAssets{{
			CharID:      "mio",
			Sprites:     map[string]string{"idle": spriteURL},
			RoomItems:   map[string]string{"lamp": "https://cdn.example.com/lamp.png"},
			Backgrounds: &domain.Backgrounds{Chat: spriteURL},
		}},
	}

	out := filepath.Join(t.TempDir(), "media.zip")
	if err := MediaArchive(doc, out, ArchiveOptions{ThumbnailSize: 32}); err != nil {
		t.Fatalf("MediaArchive error: %v", err)
	}

	files, zr := readArchive(t, out)
	defer func() { _ = zr.Close() }()

	sprite, ok := files["mio/sprites/idle.png"]
	if !ok {
		t.Fatalf("sprite member missing, have %v", keys(files))
	}
	if len(sprite) != len(spriteRaw) {
		t.Fatalf("sprite bytes differ: %d vs %d", len(sprite), len(spriteRaw))
	}
	if _, ok := files["mio/thumbs/idle.png"]; !ok {
		t.Fatalf("thumbnail missing")
	}
	if _, ok := files["mio/backgrounds/chat.png"]; !ok {
		t.Fatalf("background missing")
	}
	// External references get no file, only a manifest row.
	for name := range files {
		if name == "mio/roomItems/lamp.png" {
			t.Fatalf("external reference must not be materialized")
		}
	}

	var manifest struct {
		Version int `json:"version"`
		Entries []struct {
			CharID string `json:"charId"`
			Kind   string `json:"kind"`
			Key    string `json:"key"`
			Path   string `json:"path"`
			Ref    string `json:"ref"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(files["manifest.json"], &manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if manifest.Version != backup.DocumentVersion {
		t.Fatalf("manifest version = %d", manifest.Version)
	}
	var sawRef bool
	for _, e := range manifest.Entries {
		if e.Kind == "roomItem" && e.Key == "lamp" {
			sawRef = true
			if e.Ref == "" || e.Path != "" {
				t.Fatalf("reference entry wrong: %+v", e)
			}
		}
	}
	if !sawRef {
		t.Fatalf("external reference missing from manifest")
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestMediaArchiveWithoutThumbnails(t *testing.T) {
	url, _ := pngDataURL(t, 16, 16)
	doc := &backup.MediaBackupDocument{
		Timestamp:   time.Now().UTC(),
		Version:     backup.DocumentVersion,
		MediaAssets: []domain.MediaAssets{{CharID: "mio", Sprites: map[string]string{"idle": url}}},
	}
	out := filepath.Join(t.TempDir(), "media.zip")
	if err := MediaArchive(doc, out, ArchiveOptions{}); err != nil {
		t.Fatalf("MediaArchive error: %v", err)
	}
	files, zr := readArchive(t, out)
	defer func() { _ = zr.Close() }()
	for name := range files {
		if filepath.Dir(name) == "mio/thumbs" {
			t.Fatalf("thumbnail written with size 0: %s", name)
		}
	}
}

func TestMediaArchiveOutputIsDeterministic(t *testing.T) {
	spriteURL, _ := pngDataURL(t, 60, 40)
	doc := &backup.MediaBackupDocument{
		Timestamp: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Version:   backup.DocumentVersion,
		MediaAssets: []domain.MediaAssets{{
			CharID: "mio",
			Sprites: map[string]string{
				"idle": spriteURL, "happy": spriteURL, "sulk": spriteURL, "wave": spriteURL,
			},
			RoomItems: map[string]string{
				"lamp": spriteURL, "desk": spriteURL, "bed": spriteURL,
			},
			Backgrounds: &domain.Backgrounds{Chat: spriteURL, RoomWall: spriteURL},
		}},
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "a.zip")
	second := filepath.Join(dir, "b.zip")
	if err := MediaArchive(doc, first, ArchiveOptions{}); err != nil {
		t.Fatalf("MediaArchive error: %v", err)
	}
	if err := MediaArchive(doc, second, ArchiveOptions{}); err != nil {
		t.Fatalf("MediaArchive error: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("same document produced different archive bytes")
	}
}

func TestMediaArchiveNilDocument(t *testing.T) {
	if err := MediaArchive(nil, filepath.Join(t.TempDir(), "x.zip"), ArchiveOptions{}); err == nil {
		t.Fatalf("expected error for nil document")
	}
}
