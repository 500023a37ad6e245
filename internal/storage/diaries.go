/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"

	"github.com/google/uuid"

	"companionkeeper/internal/domain"
)

func saveDiary(ctx context.Context, q dbtx, d domain.DiaryEntry) error {
	return putRecord(ctx, q, "diaries", []string{"id", "char_id"}, d, d.ID, d.CharID)
}

// Diaries returns every diary entry.
func (s *Store) Diaries(ctx context.Context) ([]domain.DiaryEntry, error) {
	return getAll[domain.DiaryEntry](ctx, s.db, "diaries", "id")
}

// DiariesByChar returns the diary entries of one character.
func (s *Store) DiariesByChar(ctx context.Context, charID string) ([]domain.DiaryEntry, error) {
	return getByIndex[domain.DiaryEntry](ctx, s.db, "diaries", "id", "char_id", charID)
}

// SaveDiary upserts a diary entry, assigning an id when the record has none,
// and returns the stored copy.
func (s *Store) SaveDiary(ctx context.Context, d domain.DiaryEntry) (domain.DiaryEntry, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return d, saveDiary(ctx, s.db, d)
}

// SetDiaryReply stores the character's reply page on an existing entry;
// *NotFoundError when the id is absent at read time. The reply is opaque
// content produced by the caller.
func (s *Store) SetDiaryReply(ctx context.Context, id, reply string) error {
	d, ok, err := getOne[domain.DiaryEntry](ctx, s.db, "diaries", "id", id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Collection: "diaries", Key: id}
	}
	d.ReplyPage = reply
	return saveDiary(ctx, s.db, d)
}

// ArchiveDiary marks an existing entry archived; *NotFoundError when the id
// is absent at read time.
func (s *Store) ArchiveDiary(ctx context.Context, id string) error {
	d, ok, err := getOne[domain.DiaryEntry](ctx, s.db, "diaries", "id", id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Collection: "diaries", Key: id}
	}
	d.Archived = true
	return saveDiary(ctx, s.db, d)
}

// DeleteDiary removes an entry. Missing ids are a no-op.
func (s *Store) DeleteDiary(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "diaries", "id", id)
}
