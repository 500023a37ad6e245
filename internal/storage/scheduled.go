/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"companionkeeper/internal/domain"
)

func saveScheduled(ctx context.Context, q dbtx, m domain.ScheduledMessage) error {
	return putRecord(ctx, q, "scheduled_messages", []string{"id", "char_id"}, m, m.ID, m.CharID)
}

// ScheduledMessages returns every scheduled message.
func (s *Store) ScheduledMessages(ctx context.Context) ([]domain.ScheduledMessage, error) {
	return getAll[domain.ScheduledMessage](ctx, s.db, "scheduled_messages", "id")
}

// ScheduledByChar returns the scheduled messages of one character.
func (s *Store) ScheduledByChar(ctx context.Context, charID string) ([]domain.ScheduledMessage, error) {
	return getByIndex[domain.ScheduledMessage](ctx, s.db, "scheduled_messages", "id", "char_id", charID)
}

// DueScheduledMessages returns the messages of one character whose DueAt has
// passed at now. "Due" is evaluated at call time against the given clock,
// not a stored index.
func (s *Store) DueScheduledMessages(ctx context.Context, charID string, now time.Time) ([]domain.ScheduledMessage, error) {
	all, err := s.ScheduledByChar(ctx, charID)
	if err != nil {
		return nil, err
	}
	due := all[:0]
	for _, m := range all {
		if !m.DueAt.After(now) {
			due = append(due, m)
		}
	}
	return due, nil
}

// SaveScheduledMessage upserts a scheduled message, assigning an id when the
// record has none, and returns the stored copy.
func (s *Store) SaveScheduledMessage(ctx context.Context, m domain.ScheduledMessage) (domain.ScheduledMessage, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return m, saveScheduled(ctx, s.db, m)
}

// DeleteScheduledMessage removes a scheduled message. Missing ids are a
// no-op.
func (s *Store) DeleteScheduledMessage(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "scheduled_messages", "id", id)
}
