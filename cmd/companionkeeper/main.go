/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"companionkeeper/internal/backup"
	"companionkeeper/internal/config"
	"companionkeeper/internal/crash"
	"companionkeeper/internal/domain"
	"companionkeeper/internal/export"
	applog "companionkeeper/internal/log"
	"companionkeeper/internal/storage"
	"companionkeeper/internal/version"
)

func usage() {
	fmt.Println("Companion Keeper: persistence and backup core")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  companionkeeper version|-v|--version           Show version")
	fmt.Println("  companionkeeper init [<home>]                  Create the store at <home>")
	fmt.Println("  companionkeeper info [<home>]                  Print schema and collection counts")
	fmt.Println("  companionkeeper seed [<home>]                  Populate the store with demo data")
	fmt.Println("  companionkeeper backup <home> [<out.json>]     Export all collections")
	fmt.Println("  companionkeeper backup-media <home> [<out>]    Export media-only backup")
	fmt.Println("  companionkeeper restore <home> <file.json>     Full-replace restore from a backup")
	fmt.Println("  companionkeeper restore-media <home> <file>    Overlay media onto existing characters")
	fmt.Println("  companionkeeper archive-media <home> <out.zip> Write media backup as ZIP archive")
	fmt.Println("  companionkeeper diary-pdf <home> <charId> <out.pdf>  Export a character's diary")
	fmt.Println("  companionkeeper destroy <home>                 Delete the entire store")
}

func main() {
	cfgPath, _ := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// fall back to env-only logging; a broken config must not hide logs
		applog.Init(applog.FromEnv())
		applog.L().Warn("config load failed", slog.Any("err", err))
	} else {
		applog.Init(applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
		})
	}
	l := applog.WithComponent("cli")

	var st *storage.Store
	defer func() { crash.Recover(st) }()

	args := os.Args
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()

	homeArg := func(i int) string {
		if len(args) > i && args[i] != "" {
			return args[i]
		}
		if cfg.Home != "" {
			return cfg.Home
		}
		home, err := config.DefaultHome()
		if err != nil {
			fail(l, "resolve home", err)
		}
		return home
	}

	open := func(home string) *storage.Store {
		s, err := storage.Open(home)
		if err != nil {
			// no store handle exists; nothing can proceed
			fail(l, "open store", err)
		}
		st = s
		return s
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())

	case "init":
		home := homeArg(2)
		s := open(home)
		defer closeStore(l, s)
		fmt.Printf("Store ready at %s (schema v%d)\n", storage.StorePath(home), s.Schema().Version())

	case "info":
		home := homeArg(2)
		s := open(home)
		defer closeStore(l, s)
		doc, err := backup.ExportAll(ctx, s)
		if err != nil {
			fail(l, "read collections", err)
		}
		fmt.Printf("Store: %s (schema v%d)\n", storage.StorePath(home), s.Schema().Version())
		fmt.Printf("  collections: %s\n", strings.Join(s.Schema().Collections(), ", "))
		fmt.Printf("  characters: %d, groups: %d, messages: %d\n", len(doc.Characters), len(doc.Groups), len(doc.Messages))
		fmt.Printf("  gallery: %d, diaries: %d, scheduled: %d\n", len(doc.GalleryImages), len(doc.Diaries), len(doc.ScheduledMessages))
		fmt.Printf("  tasks: %d, anniversaries: %d, room todos: %d, room notes: %d\n",
			len(doc.Tasks), len(doc.Anniversaries), len(doc.RoomTodos), len(doc.RoomNotes))
		fmt.Printf("  themes: %d, emojis: %d, journal stickers: %d, assets: %d\n",
			len(doc.CustomThemes), len(doc.SavedEmojis), len(doc.SavedJournalStickers), len(doc.Assets))
		if doc.UserProfile != nil {
			fmt.Printf("  user: %s\n", doc.UserProfile.Name)
		}

	case "seed":
		home := homeArg(2)
		s := open(home)
		defer closeStore(l, s)
		if err := seed(ctx, s); err != nil {
			fail(l, "seed", err)
		}
		fmt.Printf("Demo data written to %s\n", storage.StorePath(home))

	case "backup":
		home := homeArg(2)
		s := open(home)
		defer closeStore(l, s)
		doc, err := backup.ExportAll(ctx, s)
		if err != nil {
			fail(l, "export", err)
		}
		out := defaultBackupPath(args, 3, home, "backup")
		if err := backup.WriteFile(out, doc); err != nil {
			fail(l, "write backup", err)
		}
		fmt.Printf("Backup written to %s\n", out)

	case "backup-media":
		home := homeArg(2)
		s := open(home)
		defer closeStore(l, s)
		characters, err := s.Characters(ctx)
		if err != nil {
			fail(l, "read characters", err)
		}
		doc := backup.EncodeMediaOnly(characters)
		out := defaultBackupPath(args, 3, home, "media-backup")
		if err := backup.WriteFile(out, doc); err != nil {
			fail(l, "write media backup", err)
		}
		fmt.Printf("Media backup written to %s (%d characters)\n", out, len(doc.MediaAssets))

	case "restore":
		if len(args) < 4 {
			fmt.Println("restore requires <home> and <file.json>")
			usage()
			os.Exit(2)
		}
		doc := decodeFull(l, args[3])
		s := open(args[2])
		defer closeStore(l, s)
		if err := backup.Restore(ctx, s, backup.FullReplace(doc)); err != nil {
			fail(l, "restore", err)
		}
		fmt.Println("Restore complete")

	case "restore-media":
		if len(args) < 4 {
			fmt.Println("restore-media requires <home> and <file.json>")
			usage()
			os.Exit(2)
		}
		doc := decodeMedia(l, args[3])
		s := open(args[2])
		defer closeStore(l, s)
		if err := backup.Restore(ctx, s, backup.MediaOverlay(doc)); err != nil {
			fail(l, "restore media", err)
		}
		fmt.Printf("Media overlay complete (%d characters in document)\n", len(doc.MediaAssets))

	case "archive-media":
		if len(args) < 4 {
			fmt.Println("archive-media requires <home> and <out.zip>")
			usage()
			os.Exit(2)
		}
		home := args[2]
		s := open(home)
		defer closeStore(l, s)
		characters, err := s.Characters(ctx)
		if err != nil {
			fail(l, "read characters", err)
		}
		doc := backup.EncodeMediaOnly(characters)
		if err := export.MediaArchive(doc, args[3], export.ArchiveOptions{ThumbnailSize: cfg.Export.ThumbnailSize}); err != nil {
			fail(l, "archive media", err)
		}
		fmt.Printf("Media archive written to %s\n", args[3])

	case "diary-pdf":
		if len(args) < 5 {
			fmt.Println("diary-pdf requires <home>, <charId> and <out.pdf>")
			usage()
			os.Exit(2)
		}
		home, charID, out := args[2], args[3], args[4]
		s := open(home)
		defer closeStore(l, s)
		c, ok, err := s.Character(ctx, charID)
		if err != nil {
			fail(l, "read character", err)
		}
		if !ok {
			fail(l, "read character", fmt.Errorf("no character with id %q", charID))
		}
		entries, err := s.DiariesByChar(ctx, charID)
		if err != nil {
			fail(l, "read diaries", err)
		}
		if err := export.DiaryPDF(c, entries, out, export.DiaryPDFOptions{IncludeReplies: true}); err != nil {
			fail(l, "export diary pdf", err)
		}
		fmt.Printf("Diary PDF written to %s\n", out)

	case "destroy":
		if len(args) < 3 {
			fmt.Println("destroy requires <home>")
			usage()
			os.Exit(2)
		}
		if err := storage.Destroy(args[2]); err != nil {
			if storage.IsBlocked(err) {
				// blocked is a warning, not success; the store is NOT gone
				fmt.Fprintf(os.Stderr, "destroy blocked: %v\n", err)
				os.Exit(1)
			}
			fail(l, "destroy", err)
		}
		fmt.Println("Store deleted")

	default:
		usage()
		os.Exit(2)
	}
}

// seed writes a small, self-consistent demo dataset. Running it twice
// overwrites the same records because every id is fixed.
func seed(ctx context.Context, s *storage.Store) error {
	now := time.Now()
	today := now.Format("2006-01-02")

	mio, err := s.SaveCharacter(ctx, domain.CharacterProfile{
		ID:           "demo-mio",
		Name:         "Mio",
		SystemPrompt: "You are Mio, a cheerful companion who loves rainy days.",
		Memories:     []string{"Met on a rainy Tuesday."},
		CreatedAt:    now,
	})
	if err != nil {
		return err
	}
	ren, err := s.SaveCharacter(ctx, domain.CharacterProfile{
		ID:        "demo-ren",
		Name:      "Ren",
		CreatedAt: now,
	})
	if err != nil {
		return err
	}
	if _, err := s.SaveGroup(ctx, domain.GroupProfile{
		ID:        "demo-trio",
		Name:      "The Trio",
		MemberIDs: []string{mio.ID, ren.ID},
	}); err != nil {
		return err
	}
	if _, err := s.AppendMessage(ctx, domain.Message{
		CharID: mio.ID, Role: domain.RoleUser, Type: domain.MessageText,
		Content: "Hello!", Timestamp: now,
	}); err != nil {
		return err
	}
	if _, err := s.AppendMessage(ctx, domain.Message{
		CharID: mio.ID, GroupID: "demo-trio", Role: domain.RoleCharacter,
		Type: domain.MessageText, Content: "Everyone's here!", Timestamp: now,
	}); err != nil {
		return err
	}
	if _, err := s.SaveDiary(ctx, domain.DiaryEntry{
		ID: "demo-diary-1", CharID: mio.ID, Date: today,
		Paper: domain.PaperLined, UserPage: "First day with the demo store.",
	}); err != nil {
		return err
	}
	if _, err := s.SaveTask(ctx, domain.Task{ID: "demo-task-1", Title: "Water the plants", DueDate: today}); err != nil {
		return err
	}
	if _, err := s.SaveAnniversary(ctx, domain.Anniversary{
		ID: "demo-anniv-1", Title: "First meeting", Date: today, CharID: mio.ID,
	}); err != nil {
		return err
	}
	return s.SaveUserProfile(ctx, domain.UserProfile{Name: "Demo User"})
}

func decodeFull(l *slog.Logger, path string) *backup.BackupDocument {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(l, "read backup file", err)
	}
	doc, err := backup.Decode(data)
	if err != nil {
		fail(l, "decode backup", err)
	}
	return doc
}

func decodeMedia(l *slog.Logger, path string) *backup.MediaBackupDocument {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(l, "read media backup file", err)
	}
	doc, err := backup.DecodeMedia(data)
	if err != nil {
		fail(l, "decode media backup", err)
	}
	return doc
}

func defaultBackupPath(args []string, i int, home, prefix string) string {
	if len(args) > i {
		return args[i]
	}
	stamp := time.Now().Format("20060102-150405")
	return filepath.Join(storage.BackupsPath(home), fmt.Sprintf("%s-%s.json", prefix, stamp))
}

func closeStore(l *slog.Logger, s *storage.Store) {
	if err := s.Close(); err != nil {
		l.Error("close store failed", slog.Any("err", err))
	}
}

func fail(l *slog.Logger, op string, err error) {
	l.Error(op+" failed", slog.Any("err", err))
	fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
	os.Exit(1)
}
