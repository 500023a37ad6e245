/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

// Tasks and anniversaries are independent collections with no cross-entity
// invariants.

import (
	"context"

	"github.com/google/uuid"

	"companionkeeper/internal/domain"
)

func saveTask(ctx context.Context, q dbtx, t domain.Task) error {
	return putRecord(ctx, q, "tasks", []string{"id"}, t, t.ID)
}

func saveAnniversary(ctx context.Context, q dbtx, a domain.Anniversary) error {
	return putRecord(ctx, q, "anniversaries", []string{"id"}, a, a.ID)
}

// Tasks returns every task.
func (s *Store) Tasks(ctx context.Context) ([]domain.Task, error) {
	return getAll[domain.Task](ctx, s.db, "tasks", "id")
}

// SaveTask upserts a task, assigning an id when the record has none, and
// returns the stored copy.
func (s *Store) SaveTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return t, saveTask(ctx, s.db, t)
}

// SetTaskDone toggles completion of an existing task; *NotFoundError when
// the id is absent at read time.
func (s *Store) SetTaskDone(ctx context.Context, id string, done bool) error {
	t, ok, err := getOne[domain.Task](ctx, s.db, "tasks", "id", id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Collection: "tasks", Key: id}
	}
	t.Done = done
	return saveTask(ctx, s.db, t)
}

// DeleteTask removes a task. Missing ids are a no-op.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "tasks", "id", id)
}

// Anniversaries returns every anniversary.
func (s *Store) Anniversaries(ctx context.Context) ([]domain.Anniversary, error) {
	return getAll[domain.Anniversary](ctx, s.db, "anniversaries", "id")
}

// SaveAnniversary upserts an anniversary, assigning an id when the record
// has none, and returns the stored copy.
func (s *Store) SaveAnniversary(ctx context.Context, a domain.Anniversary) (domain.Anniversary, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return a, saveAnniversary(ctx, s.db, a)
}

// DeleteAnniversary removes an anniversary. Missing ids are a no-op.
func (s *Store) DeleteAnniversary(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "anniversaries", "id", id)
}
