/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export turns stored state into files for the user: printable diary
// PDFs and media ZIP archives. It consumes codec output and accessors only;
// nothing here writes back to the store.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"companionkeeper/internal/domain"
)

// DiaryPDFOptions controls diary export behavior. Built-in Helvetica is used
// for portability; font embedding can be added later.
type DiaryPDFOptions struct {
	IncludeArchived bool
	IncludeReplies  bool
	Title           string // optional cover title; defaults to the character name
}

// DiaryPDF exports entries as a single multi-page PDF at outPath, one page
// per entry, sorted by date. Entries not belonging to the given character
// are skipped.
func DiaryPDF(character domain.CharacterProfile, entries []domain.DiaryEntry, outPath string, opt DiaryPDFOptions) error {
	selected := make([]domain.DiaryEntry, 0, len(entries))
	for _, e := range entries {
		if e.CharID != character.ID {
			continue
		}
		if e.Archived && !opt.IncludeArchived {
			continue
		}
		selected = append(selected, e)
	}
	if len(selected) == 0 {
		return fmt.Errorf("no diary entries to export for character %q", character.ID)
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Date < selected[j].Date })

	title := opt.Title
	if title == "" {
		title = character.Name
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 20)

	for _, e := range selected {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, e.Date, "", 1, "L", false, 0, "")
		pdf.Ln(4)

		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, e.UserPage, "", "L", false)

		if opt.IncludeReplies && e.ReplyPage != "" {
			pdf.Ln(6)
			pdf.SetDrawColor(180, 180, 180)
			x, y := pdf.GetXY()
			w, _ := pdf.GetPageSize()
			pdf.Line(x, y, w-20, y)
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "I", 12)
			pdf.MultiCell(0, 6, e.ReplyPage, "", "L", false)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write diary pdf: %w", err)
	}
	return nil
}
