// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
)

// =============================================================================
// VIEW SWITCHES
// =============================================================================

func (s *Session) switchPublic(ctx context.Context) {
	s.enterPublic()
	s.display.Notice(LevelSuccess, "Switched to PUBLIC CHAT")
	s.pause(ctx, shortPause)
}

func (s *Session) switchPrivate(ctx context.Context) {
	s.enterPrivate()
	s.display.Notice(LevelSuccess, "Switched to PRIVATE MESSAGES")
	s.pause(ctx, shortPause)
}

// =============================================================================
// MESSAGES
// =============================================================================

// send posts text to the current scope. Lines starting with @user are
// private messages; the backend routes them.
func (s *Session) send(ctx context.Context, text string) {
	err := s.backend.SendMessage(ctx, s.user, text, s.state.Scope())
	if err != nil {
		if api.IsRoomDeleted(err) && s.state.Mode() == ModeRoom {
			s.logger.Info("send rejected: room deleted", "room_id", s.state.RoomID())
			s.display.Notice(LevelError, "Room has been deleted by admin")
			s.pause(ctx, s.opts.NoticePause)
			s.enterPublic()
			return
		}
		s.logger.Warn("send failed", "error", err)
		s.display.Notice(LevelError, "Failed to send message: "+api.Describe(err))
		return
	}

	switch {
	case strings.HasPrefix(text, "@"):
		s.display.Notice(LevelSuccess, "Private message sent")
	case s.state.Mode() == ModeRoom:
		s.display.Notice(LevelSuccess, "Room message sent")
	default:
		s.display.Notice(LevelSuccess, "Message sent")
	}
	s.state.Invalidate()
}

// =============================================================================
// ROOMS
// =============================================================================

// listRooms shows the joined rooms and enters the one picked.
func (s *Session) listRooms(ctx context.Context) {
	defer s.state.Invalidate()

	rooms, err := s.backend.UserRooms(ctx, s.user)
	if err != nil {
		s.logger.Warn("user_rooms failed", "error", err)
		s.display.Notice(LevelError, "Could not load your rooms: "+api.Describe(err))
		s.pause(ctx, s.opts.NoticePause)
		return
	}

	s.display.Rooms(rooms)
	if len(rooms) == 0 {
		s.await(ctx, "Press Enter to continue...")
		return
	}

	var picked api.UserRoom
	for {
		line, ok := s.await(ctx, "Enter room number: ")
		if !ok {
			return
		}
		sel := strings.TrimSpace(line)
		if sel == "" {
			continue
		}
		if sel == "0" {
			return
		}
		n, err := strconv.Atoi(sel)
		if err != nil {
			s.display.Notice(LevelError, "Please enter a valid number")
			continue
		}
		if n < 1 || n > len(rooms) {
			s.display.Notice(LevelError, fmt.Sprintf("Invalid selection. Choose 0-%d", len(rooms)))
			continue
		}
		picked = rooms[n-1]
		break
	}

	if s.state.Mode() == ModeRoom && s.state.RoomID() == picked.ID {
		s.display.Notice(LevelInfo, "You're already in this room")
		s.pause(ctx, shortPause)
		return
	}
	name := picked.Name
	if name == "" {
		name = "Room " + picked.ID
	}
	s.display.Notice(LevelInfo, fmt.Sprintf("Joining %s...", name))
	s.enterRoom(ctx, picked.ID, name)
}

// createRoom asks for a name, creates the room and enters it.
func (s *Session) createRoom(ctx context.Context) {
	var name string
	for name == "" {
		line, ok := s.await(ctx, "Enter room name: ")
		if !ok {
			s.state.Invalidate()
			return
		}
		name = strings.TrimSpace(line)
	}

	s.display.Notice(LevelInfo, fmt.Sprintf("Creating room '%s'...", name))
	id, err := s.backend.CreateRoom(ctx, name, s.user)
	if err != nil {
		s.logger.Warn("create_room failed", "error", err)
		s.display.Notice(LevelError, "Failed to create room: "+api.Describe(err))
		s.pause(ctx, s.opts.NoticePause)
		s.state.Invalidate()
		return
	}
	s.logger.Info("room created", "room_id", id)
	s.display.Notice(LevelSuccess, "Room created! ID: "+id)
	s.display.Notice(LevelInfo, "Share this ID with others: "+id)
	s.pause(ctx, s.opts.NoticePause)

	if !s.enterRoom(ctx, id, name) {
		s.enterPublic()
	}
}

// joinRoom enters the room with id, asking for it when empty.
func (s *Session) joinRoom(ctx context.Context, id string) {
	if id == "" {
		line, ok := s.await(ctx, "Enter room ID to join: ")
		if !ok {
			s.state.Invalidate()
			return
		}
		id = strings.ToUpper(strings.TrimSpace(line))
	}
	if id == "" {
		s.display.Notice(LevelError, "Room ID cannot be empty")
		s.pause(ctx, shortPause)
		s.state.Invalidate()
		return
	}

	s.display.Notice(LevelInfo, fmt.Sprintf("Joining room %s...", id))
	s.enterRoom(ctx, id, "")
}

// enterRoom joins id on the backend and switches to its view. On failure
// the current view is kept and redrawn.
func (s *Session) enterRoom(ctx context.Context, id, name string) bool {
	info, err := s.backend.JoinRoom(ctx, id, s.user)
	if err != nil {
		msg := api.Describe(err)
		if api.IsRoomDeleted(err) {
			msg = "Room has been deleted by admin"
		}
		s.logger.Warn("join_room failed", "room_id", id, "error", err)
		s.display.Notice(LevelError, "Failed to join room: "+msg)
		s.pause(ctx, s.opts.NoticePause)
		s.state.Invalidate()
		return false
	}

	if info != nil && info.Name != "" {
		name = info.Name
	}
	if name == "" {
		name = "Room " + id
	}
	s.display.Notice(LevelSuccess, "Joined room successfully!")
	s.pause(ctx, shortPause)
	s.enterRoomView(id, name, info)
	return true
}

// leaveRoom leaves the current room and returns to the public view.
func (s *Session) leaveRoom(ctx context.Context) {
	if s.state.Mode() != ModeRoom {
		s.display.Notice(LevelInfo, "You are not in a room. Use /list or /join [ID] first.")
		return
	}

	id := s.state.RoomID()
	s.display.Notice(LevelInfo, fmt.Sprintf("Leaving room %s...", id))
	if err := s.backend.LeaveRoom(ctx, id, s.user); err != nil {
		s.logger.Warn("leave_room failed", "room_id", id, "error", err)
		s.display.Notice(LevelError, "Failed to leave room: "+api.Describe(err))
		s.pause(ctx, s.opts.NoticePause)
		s.state.Invalidate()
		return
	}
	s.display.Notice(LevelSuccess, "Left room successfully")
	s.pause(ctx, shortPause)
	s.enterPublic()
}

// =============================================================================
// HELP
// =============================================================================

func (s *Session) help(ctx context.Context) {
	s.display.Help()
	s.await(ctx, "Press Enter to return to chat...")
	s.state.Invalidate()
}
