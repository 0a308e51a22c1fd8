// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"time"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
)

// Level is the severity of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Frame is everything needed to redraw one view.
type Frame struct {
	Mode     Mode
	Username string

	// Room view only.
	RoomID   string
	RoomName string
	RoomInfo *api.RoomInfo

	// Messages holds the public or room messages in backend order.
	Messages []api.Message

	// Private holds the private messages, unsorted.
	Private []api.PrivateMessage
}

// FilesPage is one page of the /files listing.
type FilesPage struct {
	Username string
	Files    []api.FileRecord
	Page     int // 1-based
	Pages    int
	Total    int
	Now      time.Time
}

// Display draws the session. Implementations write to the terminal; tests
// record the calls.
type Display interface {
	// Render redraws the whole screen for a view.
	Render(Frame)
	// Notice prints one status line below the current screen.
	Notice(Level, string)
	// Prompt prints a question and leaves the cursor after it.
	Prompt(string)
	// Rooms draws the room picker.
	Rooms([]api.UserRoom)
	// Files draws one page of the file listing.
	Files(FilesPage)
	// Help draws the command reference.
	Help()
}

// LineSource delivers typed lines.
type LineSource interface {
	// Poll waits up to timeout for a line. ok is false when none arrived.
	// io.EOF means input has ended.
	Poll(ctx context.Context, timeout time.Duration) (line string, ok bool, err error)
	// Await blocks until a line arrives.
	Await(ctx context.Context) (string, error)
}
