// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
)

// =============================================================================
// MODE
// =============================================================================

// Mode is the conversation view the session is showing.
type Mode int

const (
	ModePublic Mode = iota
	ModePrivate
	ModeRoom
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePublic:
		return "public"
	case ModePrivate:
		return "private"
	case ModeRoom:
		return "room"
	default:
		return "unknown"
	}
}

// unseen is the counter value that never matches a real count, so the next
// successful poll of that view always renders.
const unseen = -1

// =============================================================================
// STATE
// =============================================================================

// State is the single mutable record of which view is active and what was
// last shown in each view. It is owned by the scheduler goroutine; every
// change goes through one of its methods.
type State struct {
	mode     Mode
	roomID   string
	roomName string

	lastMessageCount     int
	lastPMCount          int
	lastRoomMessageCount int

	lastRefreshAt time.Time
}

// NewState returns the initial state: the public view, nothing seen yet.
func NewState() *State {
	return &State{
		mode:                 ModePublic,
		lastMessageCount:     unseen,
		lastPMCount:          unseen,
		lastRoomMessageCount: unseen,
	}
}

// Mode returns the active view.
func (s *State) Mode() Mode { return s.mode }

// RoomID returns the current room, or "" outside the room view.
func (s *State) RoomID() string {
	if s.mode != ModeRoom {
		return ""
	}
	return s.roomID
}

// RoomName returns the display name of the current room.
func (s *State) RoomName() string {
	if s.mode != ModeRoom {
		return ""
	}
	return s.roomName
}

// Scope is the room id sent with messages and uploads: the current room,
// or the lobby outside the room view.
func (s *State) Scope() string {
	if s.mode != ModeRoom {
		return api.LobbyID
	}
	return s.roomID
}

// ToPublic enters the public view.
func (s *State) ToPublic() {
	s.mode = ModePublic
	s.roomID, s.roomName = "", ""
	s.lastMessageCount = unseen
	s.lastRefreshAt = time.Time{}
}

// ToPrivate enters the private messages view.
func (s *State) ToPrivate() {
	s.mode = ModePrivate
	s.roomID, s.roomName = "", ""
	s.lastPMCount = unseen
	s.lastRefreshAt = time.Time{}
}

// ToRoom enters the view of room id.
func (s *State) ToRoom(id, name string) {
	s.mode = ModeRoom
	s.roomID, s.roomName = id, name
	s.lastRoomMessageCount = unseen
	s.lastRefreshAt = time.Time{}
}

// SetRoomName updates the name shown for the current room.
func (s *State) SetRoomName(name string) {
	if s.mode == ModeRoom && name != "" {
		s.roomName = name
	}
}

// counter returns the active view's last-seen count.
func (s *State) counter() *int {
	switch s.mode {
	case ModePrivate:
		return &s.lastPMCount
	case ModeRoom:
		return &s.lastRoomMessageCount
	default:
		return &s.lastMessageCount
	}
}

// Count returns the active view's last-seen count (-1 before the first render).
func (s *State) Count() int { return *s.counter() }

// Observe records a successful poll of the active view that returned count
// items. It reports whether the count changed; an unchanged count leaves
// the counter as it was.
func (s *State) Observe(count int) bool {
	c := s.counter()
	if *c == count {
		return false
	}
	*c = count
	return true
}

// Invalidate forces the next tick to poll and render the active view.
func (s *State) Invalidate() {
	*s.counter() = unseen
	s.lastRefreshAt = time.Time{}
}

// MarkPolled starts a new refresh interval at now.
func (s *State) MarkPolled(now time.Time) {
	s.lastRefreshAt = now
}

// Due reports whether a refresh interval has elapsed since the last poll.
func (s *State) Due(now time.Time, interval time.Duration) bool {
	return s.lastRefreshAt.IsZero() || now.Sub(s.lastRefreshAt) >= interval
}
