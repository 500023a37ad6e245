/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"reflect"
	"testing"

	"companionkeeper/internal/domain"
)

func TestSaveCharacterAssignsID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveCharacter(ctx, domain.CharacterProfile{Name: "Mio"})
	if err != nil {
		t.Fatalf("SaveCharacter error: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("no id assigned")
	}
	got, ok, err := s.Character(ctx, saved.ID)
	if err != nil || !ok {
		t.Fatalf("Character: ok=%v err=%v", ok, err)
	}
	if got.Name != "Mio" {
		t.Fatalf("name = %q", got.Name)
	}
}

func TestSaveCharacterUpsertIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := domain.CharacterProfile{
		ID: "mio", Name: "Mio",
		Memories: []string{"rainy tuesday"},
		Sprites:  map[string]string{"idle": "sprite-idle"},
	}
	if _, err := s.SaveCharacter(ctx, c); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := s.SaveCharacter(ctx, c); err != nil {
		t.Fatalf("second save: %v", err)
	}

	all, err := s.Characters(ctx)
	if err != nil {
		t.Fatalf("Characters error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("character count = %d after double save", len(all))
	}
	if !reflect.DeepEqual(all[0], c) {
		t.Fatalf("stored record diverged:\n got %+v\nwant %+v", all[0], c)
	}
}

func TestSaveCharacterReplacesWholeRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := domain.CharacterProfile{ID: "mio", Name: "Mio", Memories: []string{"a", "b"}}
	if _, err := s.SaveCharacter(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	// An upsert is a replacement, not a field merge: dropped memories stay
	// dropped.
	second := domain.CharacterProfile{ID: "mio", Name: "Mio2"}
	if _, err := s.SaveCharacter(ctx, second); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _, err := s.Character(ctx, "mio")
	if err != nil {
		t.Fatalf("Character error: %v", err)
	}
	if got.Name != "Mio2" || len(got.Memories) != 0 {
		t.Fatalf("replace semantics violated: %+v", got)
	}
}

func TestDeleteCharacterIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.SaveCharacter(ctx, domain.CharacterProfile{ID: "mio", Name: "Mio"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteCharacter(ctx, "mio"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteCharacter(ctx, "mio"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := s.DeleteCharacter(ctx, "never-existed"); err != nil {
		t.Fatalf("delete of unknown id: %v", err)
	}
	_, ok, err := s.Character(ctx, "mio")
	if err != nil {
		t.Fatalf("Character error: %v", err)
	}
	if ok {
		t.Fatalf("character still present after delete")
	}
}

func TestDeleteCharacterLeavesReferencesAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveCharacter(ctx, domain.CharacterProfile{ID: "mio", Name: "Mio"}); err != nil {
		t.Fatalf("save character: %v", err)
	}
	if _, err := s.AppendMessage(ctx, domain.Message{
		CharID: "mio", Role: domain.RoleUser, Type: domain.MessageText, Content: "hi",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.DeleteCharacter(ctx, "mio"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// References are soft; history survives its character.
	msgs, err := s.PrivateMessages(ctx, "mio")
	if err != nil {
		t.Fatalf("PrivateMessages error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("messages deleted alongside character: %d", len(msgs))
	}
}

func TestGroupRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.SaveGroup(ctx, domain.GroupProfile{Name: "Trio", MemberIDs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("SaveGroup error: %v", err)
	}
	if g.ID == "" {
		t.Fatalf("no group id assigned")
	}
	got, ok, err := s.Group(ctx, g.ID)
	if err != nil || !ok {
		t.Fatalf("Group: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got.MemberIDs, []string{"a", "b"}) {
		t.Fatalf("member order lost: %+v", got.MemberIDs)
	}
	if err := s.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGroup error: %v", err)
	}
	if err := s.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("second DeleteGroup error: %v", err)
	}
}
