/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"companionkeeper/internal/domain"
)

func TestDiaryPDFWritesDocument(t *testing.T) {
	c := domain.CharacterProfile{ID: "mio", Name: "Mio"}
	entries := []domain.DiaryEntry{
		{ID: "d2", CharID: "mio", Date: "2026-03-15", UserPage: "second day"},
		{ID: "d1", CharID: "mio", Date: "2026-03-14", UserPage: "first day", ReplyPage: "glad you came"},
		{ID: "dx", CharID: "ren", Date: "2026-03-14", UserPage: "someone else"},
	}
	out := filepath.Join(t.TempDir(), "diary.pdf")
	if err := DiaryPDF(c, entries, out, DiaryPDFOptions{IncludeReplies: true}); err != nil {
		t.Fatalf("DiaryPDF error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", data[:min(8, len(data))])
	}
}

func TestDiaryPDFSkipsArchivedByDefault(t *testing.T) {
	c := domain.CharacterProfile{ID: "mio", Name: "Mio"}
	entries := []domain.DiaryEntry{
		{ID: "d1", CharID: "mio", Date: "2026-03-14", UserPage: "kept"},
		{ID: "d2", CharID: "mio", Date: "2026-03-15", UserPage: "archived", Archived: true},
	}

	skip := filepath.Join(t.TempDir(), "skip.pdf")
	if err := DiaryPDF(c, entries, skip, DiaryPDFOptions{}); err != nil {
		t.Fatalf("DiaryPDF error: %v", err)
	}
	full := filepath.Join(t.TempDir(), "full.pdf")
	if err := DiaryPDF(c, entries, full, DiaryPDFOptions{IncludeArchived: true}); err != nil {
		t.Fatalf("DiaryPDF with archived error: %v", err)
	}

	a, err := os.Stat(skip)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	b, err := os.Stat(full)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	// One page versus two; the larger file must be the inclusive one.
	if b.Size() <= a.Size() {
		t.Fatalf("archived entry not adding a page: %d <= %d", b.Size(), a.Size())
	}
}

func TestDiaryPDFNoEntriesFails(t *testing.T) {
	c := domain.CharacterProfile{ID: "mio", Name: "Mio"}
	entries := []domain.DiaryEntry{{ID: "dx", CharID: "ren", Date: "2026-03-14", UserPage: "foreign"}}
	err := DiaryPDF(c, entries, filepath.Join(t.TempDir(), "empty.pdf"), DiaryPDFOptions{})
	if err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}
