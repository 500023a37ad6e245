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

func saveGalleryImage(ctx context.Context, q dbtx, g domain.GalleryImage) error {
	return putRecord(ctx, q, "gallery", []string{"id", "char_id"}, g, g.ID, g.CharID)
}

// GalleryImages returns every gallery image.
func (s *Store) GalleryImages(ctx context.Context) ([]domain.GalleryImage, error) {
	return getAll[domain.GalleryImage](ctx, s.db, "gallery", "id")
}

// GalleryByChar returns the images owned by one character.
func (s *Store) GalleryByChar(ctx context.Context, charID string) ([]domain.GalleryImage, error) {
	return getByIndex[domain.GalleryImage](ctx, s.db, "gallery", "id", "char_id", charID)
}

// SaveGalleryImage upserts an image, assigning an id when the record has
// none, and returns the stored copy.
func (s *Store) SaveGalleryImage(ctx context.Context, g domain.GalleryImage) (domain.GalleryImage, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return g, saveGalleryImage(ctx, s.db, g)
}

// AttachGalleryReview sets the review text and timestamp of an existing
// image; *NotFoundError when the id is absent at read time.
func (s *Store) AttachGalleryReview(ctx context.Context, id, review string, at time.Time) error {
	g, ok, err := getOne[domain.GalleryImage](ctx, s.db, "gallery", "id", id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Collection: "gallery", Key: id}
	}
	g.Review = review
	g.ReviewedAt = &at
	return saveGalleryImage(ctx, s.db, g)
}

// DeleteGalleryImage removes an image. Missing ids are a no-op.
func (s *Store) DeleteGalleryImage(ctx context.Context, id string) error {
	return deleteKey(ctx, s.db, "gallery", "id", id)
}
