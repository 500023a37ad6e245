/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"

	"companionkeeper/internal/domain"
)

// userProfileKey is the fixed singleton key; the record's absence means the
// user never configured a profile.
const userProfileKey = "me"

func saveUserProfile(ctx context.Context, q dbtx, p domain.UserProfile) error {
	return putRecord(ctx, q, "user_profile", []string{"id"}, p, userProfileKey)
}

// UserProfile reads the singleton user profile; ok is false when
// unconfigured.
func (s *Store) UserProfile(ctx context.Context) (domain.UserProfile, bool, error) {
	return getOne[domain.UserProfile](ctx, s.db, "user_profile", "id", userProfileKey)
}

// SaveUserProfile upserts the singleton user profile.
func (s *Store) SaveUserProfile(ctx context.Context, p domain.UserProfile) error {
	return saveUserProfile(ctx, s.db, p)
}

// DeleteUserProfile resets the user to unconfigured. A missing profile is a
// no-op.
func (s *Store) DeleteUserProfile(ctx context.Context) error {
	return deleteKey(ctx, s.db, "user_profile", "id", userProfileKey)
}
