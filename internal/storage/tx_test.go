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
	"errors"
	"testing"

	"companionkeeper/internal/domain"
)

func TestRunInTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(tx *Tx) error {
		if err := tx.PutCharacter(ctx, domain.CharacterProfile{ID: "a", Name: "A"}); err != nil {
			return err
		}
		return tx.PutTask(ctx, domain.Task{ID: "t1", Title: "one"})
	})
	if err != nil {
		t.Fatalf("RunInTx error: %v", err)
	}

	chars, err := s.Characters(ctx)
	if err != nil {
		t.Fatalf("Characters error: %v", err)
	}
	tasks, err := s.Tasks(ctx)
	if err != nil {
		t.Fatalf("Tasks error: %v", err)
	}
	if len(chars) != 1 || len(tasks) != 1 {
		t.Fatalf("commit incomplete: chars=%d tasks=%d", len(chars), len(tasks))
	}
}

func TestRunInTxRollsBackEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveCharacter(ctx, domain.CharacterProfile{ID: "keep", Name: "Keep"}); err != nil {
		t.Fatalf("seed character: %v", err)
	}

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(tx *Tx) error {
		if err := tx.Clear(ctx, "characters"); err != nil {
			return err
		}
		if err := tx.PutCharacter(ctx, domain.CharacterProfile{ID: "new", Name: "New"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("fn error not returned unchanged: %v", err)
	}

	// The clear and the put must both have been undone.
	chars, err := s.Characters(ctx)
	if err != nil {
		t.Fatalf("Characters error: %v", err)
	}
	if len(chars) != 1 || chars[0].ID != "keep" {
		t.Fatalf("pre-transaction state not restored: %+v", chars)
	}
}

func TestTxClearUnknownCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.RunInTx(ctx, func(tx *Tx) error {
		return tx.Clear(ctx, "sqlite_master")
	})
	if err == nil {
		t.Fatalf("expected error clearing unknown collection")
	}
}

func TestTxPutKeepsExplicitMessageID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(tx *Tx) error {
		return tx.PutMessage(ctx, domain.Message{
			ID: 42, CharID: "mio", Role: domain.RoleUser, Type: domain.MessageText, Content: "kept",
		})
	})
	if err != nil {
		t.Fatalf("RunInTx error: %v", err)
	}
	msgs, err := s.Messages(ctx)
	if err != nil {
		t.Fatalf("Messages error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != 42 {
		t.Fatalf("explicit id not preserved: %+v", msgs)
	}
}

func TestTxHasMirrorsSchema(t *testing.T) {
	s := newTestStore(t)
	err := s.RunInTx(context.Background(), func(tx *Tx) error {
		if !tx.Has("characters") || tx.Has("no_such_collection") {
			t.Fatalf("Has inconsistent with installed schema")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx error: %v", err)
	}
}
