/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for Companion Keeper. Records are
// plain values: a caller receiving one owns its copy. The JSON tags double
// as the backup document contract, so they are part of the interface.

import "time"

// CharacterProfile is the root entity. Most other records reference it by
// CharID; references are soft, there is no cascade delete.
type CharacterProfile struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Avatar       string            `json:"avatar,omitempty"`
	SystemPrompt string            `json:"systemPrompt,omitempty"`
	Memories     []string          `json:"memories,omitempty"`
	Sprites      map[string]string `json:"sprites,omitempty"`
	RoomItems    []RoomItem        `json:"roomItems,omitempty"`
	Backgrounds  Backgrounds       `json:"backgrounds,omitempty"`
	CreatedAt    time.Time         `json:"createdAt,omitempty"`
}

// RoomItem is a piece of furniture or decoration in a character's room.
// Image is the only media-bearing field; the rest is metadata.
type RoomItem struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Image string `json:"image,omitempty"`
}

// Backgrounds holds the four scene background images of a character.
type Backgrounds struct {
	Chat      string `json:"chat,omitempty"`
	Date      string `json:"date,omitempty"`
	RoomWall  string `json:"roomWall,omitempty"`
	RoomFloor string `json:"roomFloor,omitempty"`
}

// GroupProfile is a group chat; members reference CharacterProfile ids in
// display order but do not own them.
type GroupProfile struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Avatar    string   `json:"avatar,omitempty"`
	MemberIDs []string `json:"memberIds"`
}

// MessageRole identifies who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleCharacter MessageRole = "character"
	RoleSystem    MessageRole = "system"
)

// MessageType discriminates the message payload.
type MessageType string

const (
	MessageText    MessageType = "text"
	MessageImage   MessageType = "image"
	MessageSticker MessageType = "sticker"
	MessageEvent   MessageType = "event"
)

// Message belongs to exactly one venue: private chat (GroupID empty, CharID
// is the partner) or group chat (GroupID set, CharID is the sender).
type Message struct {
	ID        int64       `json:"id"`
	CharID    string      `json:"charId"`
	GroupID   string      `json:"groupId,omitempty"`
	Role      MessageRole `json:"role"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Private reports whether the message lives in a private chat.
func (m Message) Private() bool { return m.GroupID == "" }

// GalleryImage is a picture a character keeps, optionally with a review the
// character wrote about it.
type GalleryImage struct {
	ID         string     `json:"id"`
	CharID     string     `json:"charId"`
	Image      string     `json:"image"`
	Review     string     `json:"review,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
}

// PaperStyle is the stationery a diary entry is written on.
type PaperStyle string

const (
	PaperPlain  PaperStyle = "plain"
	PaperLined  PaperStyle = "lined"
	PaperDotted PaperStyle = "dotted"
)

// DiaryEntry is one journal page pair. One entry per (character, date) is a
// UI convention, not enforced here.
type DiaryEntry struct {
	ID       string     `json:"id"`
	CharID   string     `json:"charId"`
	Date     string     `json:"date"` // YYYY-MM-DD
	Paper    PaperStyle `json:"paper,omitempty"`
	UserPage string     `json:"userPage"`
	// ReplyPage holds the character's reply, produced elsewhere and stored
	// here as opaque text.
	ReplyPage string `json:"replyPage,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
}

// ScheduledMessage is a message to be delivered once DueAt has passed.
// "Due" is a function of wall-clock time evaluated at query time.
type ScheduledMessage struct {
	ID      string    `json:"id"`
	CharID  string    `json:"charId"`
	Content string    `json:"content"`
	DueAt   time.Time `json:"dueAt"`
	Repeat  string    `json:"repeat,omitempty"` // "", "daily", "weekly"
}

// Task is a standalone to-do item.
type Task struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Done    bool   `json:"done,omitempty"`
	DueDate string `json:"dueDate,omitempty"`
}

// Anniversary is a recurring date worth remembering.
type Anniversary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"` // YYYY-MM-DD
	CharID string `json:"charId,omitempty"`
}

// TodoItem is one checklist line of a RoomTodo.
type TodoItem struct {
	Text string `json:"text"`
	Done bool   `json:"done,omitempty"`
}

// RoomTodo is the checklist a character generates for one day. Its storage
// key is derived from (CharID, Date), never assigned.
type RoomTodo struct {
	CharID      string     `json:"charId"`
	Date        string     `json:"date"` // YYYY-MM-DD
	Items       []TodoItem `json:"items"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

// NoteKind discriminates room notes.
type NoteKind string

const (
	NoteLetter NoteKind = "letter"
	NoteMemo   NoteKind = "memo"
	NoteGift   NoteKind = "gift"
)

// RoomNote is something a character left in their room for the user.
type RoomNote struct {
	ID        string    `json:"id"`
	CharID    string    `json:"charId"`
	Kind      NoteKind  `json:"kind"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Sticker is a named image used for emojis and journal stickers. The human
// name is the primary key.
type Sticker struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Theme is a saved chat color theme.
type Theme struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Colors map[string]string `json:"colors,omitempty"`
}

// Blob is a generic stored asset keyed by generated id.
type Blob struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// UserProfile describes the user. It is a singleton stored under one fixed
// key; absence means "unconfigured".
type UserProfile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty"`
}

// MediaAssets carries only the mutable binary/URL fields of one character,
// keyed by owner id. RoomItems maps room item id to its image.
type MediaAssets struct {
	CharID      string            `json:"charId"`
	Sprites     map[string]string `json:"sprites,omitempty"`
	RoomItems   map[string]string `json:"roomItems,omitempty"`
	Backgrounds *Backgrounds      `json:"backgrounds,omitempty"`
}

// ApplyMedia overlays the media-bearing fields of mb onto c, leaving every
// other field untouched. Sprites merge per key, room item images patch the
// matching item by id, backgrounds replace per field when non-empty.
func (c *CharacterProfile) ApplyMedia(mb MediaAssets) {
	if len(mb.Sprites) > 0 {
		if c.Sprites == nil {
			c.Sprites = make(map[string]string, len(mb.Sprites))
		}
		for k, v := range mb.Sprites {
			c.Sprites[k] = v
		}
	}
	if len(mb.RoomItems) > 0 {
		for i := range c.RoomItems {
			if img, ok := mb.RoomItems[c.RoomItems[i].ID]; ok {
				c.RoomItems[i].Image = img
			}
		}
	}
	if mb.Backgrounds != nil {
		if mb.Backgrounds.Chat != "" {
			c.Backgrounds.Chat = mb.Backgrounds.Chat
		}
		if mb.Backgrounds.Date != "" {
			c.Backgrounds.Date = mb.Backgrounds.Date
		}
		if mb.Backgrounds.RoomWall != "" {
			c.Backgrounds.RoomWall = mb.Backgrounds.RoomWall
		}
		if mb.Backgrounds.RoomFloor != "" {
			c.Backgrounds.RoomFloor = mb.Backgrounds.RoomFloor
		}
	}
}

// ExtractMedia returns the media-bearing fields of c as a MediaAssets record.
func (c CharacterProfile) ExtractMedia() MediaAssets {
	mb := MediaAssets{CharID: c.ID}
	if len(c.Sprites) > 0 {
		mb.Sprites = make(map[string]string, len(c.Sprites))
		for k, v := range c.Sprites {
			mb.Sprites[k] = v
		}
	}
	if len(c.RoomItems) > 0 {
		mb.RoomItems = make(map[string]string, len(c.RoomItems))
		for _, it := range c.RoomItems {
			if it.Image != "" {
				mb.RoomItems[it.ID] = it.Image
			}
		}
	}
	if c.Backgrounds != (Backgrounds{}) {
		bg := c.Backgrounds
		mb.Backgrounds = &bg
	}
	return mb
}
