/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

// Stickers (emojis and journal stickers) are keyed by their human name;
// themes and generic blobs by generated id.

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"companionkeeper/internal/domain"
)

func saveSticker(ctx context.Context, q dbtx, table string, st domain.Sticker) error {
	return putRecord(ctx, q, table, []string{"name"}, st, st.Name)
}

func saveTheme(ctx context.Context, q dbtx, t domain.Theme) error {
	return putRecord(ctx, q, "themes", []string{"id"}, t, t.ID)
}

func saveBlob(ctx context.Context, q dbtx, b domain.Blob) error {
	return putRecord(ctx, q, "assets", []string{"id"}, b, b.ID)
}

// Emojis returns every saved emoji sticker.
func (s *Store) Emojis(ctx context.Context) ([]domain.Sticker, error) {
	return getAll[domain.Sticker](ctx, s.db, "emojis", "name")
}

// SaveEmoji upserts an emoji under its name.
func (s *Store) SaveEmoji(ctx context.Context, st domain.Sticker) error {
	if st.Name == "" {
		return errors.New("emojis: name is required")
	}
	return saveSticker(ctx, s.db, "emojis", st)
}

// DeleteEmoji removes an emoji by name. Missing names are a no-op.
func (s *Store) DeleteEmoji(ctx context.Context, name string) error {
	return deleteKey(ctx, s.db, "emojis", "name", name)
}

// JournalStickers returns every saved journal sticker.
func (s *Store) JournalStickers(ctx context.Context) ([]domain.Sticker, error) {
	return getAll[domain.Sticker](ctx, s.db, "journal_stickers", "name")
}

// SaveJournalSticker upserts a journal sticker under its name.
func (s *Store) SaveJournalSticker(ctx context.Context, st domain.Sticker) error {
	if st.Name == "" {
		return errors.New("journal_stickers: name is required")
	}
	return saveSticker(ctx, s.db, "journal_stickers", st)
}

// DeleteJournalSticker removes a journal sticker by name. Missing names are
// a no-op.
func (s *Store) DeleteJournalSticker(ctx context.Context, name string) error {
	return deleteKey(ctx, s.db, "journal_stickers", "name", name)
}

// Themes returns every saved theme.
func (s *Store) Themes(ctx context.Context) ([]domain.Theme, error) {
	return getAll[domain.Theme](ctx, s.db, "themes", "id")
}

// SaveTheme upserts a theme, assigning an id when the record has none, and
// returns the stored copy.
func (s *Store) SaveTheme(ctx context.Context, t domain.Theme) (domain.Theme, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return t, saveTheme(ctx, s.db, t)
}

// DeleteTheme removes a theme. Missing ids are a no-op.
func (s *Store) DeleteTheme(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "themes", "id", id)
}

// Blobs returns every generic stored asset.
func (s *Store) Blobs(ctx context.Context) ([]domain.Blob, error) {
	return getAll[domain.Blob](ctx, s.db, "assets", "id")
}

// SaveBlob upserts a generic asset, assigning an id when the record has
// none, and returns the stored copy.
func (s *Store) SaveBlob(ctx context.Context, b domain.Blob) (domain.Blob, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return b, saveBlob(ctx, s.db, b)
}

// DeleteBlob removes a generic asset. Missing ids are a no-op.
func (s *Store) DeleteBlob(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "assets", "id", id)
}
