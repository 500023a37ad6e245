/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"

	"github.com/google/uuid"

	"companionkeeper/internal/domain"
)

func saveCharacter(ctx context.Context, q dbtx, c domain.CharacterProfile) error {
	return putRecord(ctx, q, "characters", []string{"id"}, c, c.ID)
}

func saveGroup(ctx context.Context, q dbtx, g domain.GroupProfile) error {
	return putRecord(ctx, q, "groups", []string{"id"}, g, g.ID)
}

// Characters returns every character profile.
func (s *Store) Characters(ctx context.Context) ([]domain.CharacterProfile, error) {
	return getAll[domain.CharacterProfile](ctx, s.db, "characters", "id")
}

// Character reads one profile by id; ok is false when absent.
func (s *Store) Character(ctx context.Context, id string) (domain.CharacterProfile, bool, error) {
	return getOne[domain.CharacterProfile](ctx, s.db, "characters", "id", id)
}

// SaveCharacter upserts a profile, assigning an id when the record has none,
// and returns the stored copy.
func (s *Store) SaveCharacter(ctx context.Context, c domain.CharacterProfile) (domain.CharacterProfile, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return c, saveCharacter(ctx, s.db, c)
}

// DeleteCharacter removes a profile. Missing ids are a no-op.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "characters", "id", id)
}

// Groups returns every group profile.
func (s *Store) Groups(ctx context.Context) ([]domain.GroupProfile, error) {
	return getAll[domain.GroupProfile](ctx, s.db, "groups", "id")
}

// Group reads one group by id; ok is false when absent.
func (s *Store) Group(ctx context.Context, id string) (domain.GroupProfile, bool, error) {
	return getOne[domain.GroupProfile](ctx, s.db, "groups", "id", id)
}

// SaveGroup upserts a group profile and returns the stored copy.
func (s *Store) SaveGroup(ctx context.Context, g domain.GroupProfile) (domain.GroupProfile, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return g, saveGroup(ctx, s.db, g)
}

// DeleteGroup removes a group profile. Missing ids are a no-op.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "groups", "id", id)
}
