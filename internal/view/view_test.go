// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
	"github.com/cyrenxxxxx/cli-chat/internal/session"
	"github.com/cyrenxxxxx/cli-chat/internal/ui/styles"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func plainRenderer(width int) *Renderer {
	r := New(styles.NewTheme(io.Discard, true), width, 20)
	r.loc = time.UTC
	return r
}

func at(minutes int) api.Timestamp { return api.At(base.Add(time.Duration(minutes) * time.Minute)) }

func TestFrame_Public(t *testing.T) {
	r := plainRenderer(80)
	out := r.Frame(session.Frame{
		Mode:     session.ModePublic,
		Username: "alice",
		Messages: []api.Message{
			{Sender: "bob", Body: "hi", Timestamp: at(0)},
			{Sender: "alice", Body: "hello", Timestamp: at(1)},
			{Sender: "Administrator", Body: "server restart at noon", Timestamp: at(2)},
		},
	})

	assert.Contains(t, out, strings.Repeat("=", 50))
	assert.Contains(t, out, "PUBLIC CHAT")
	assert.Contains(t, out, "[12:00] bob: hi")
	assert.Contains(t, out, "[12:01] You: hello")
	assert.Contains(t, out, "[12:02] Administrator: server restart at noon")
	assert.Less(t, strings.Index(out, "bob: hi"), strings.Index(out, "You: hello"), "backend order is kept")
}

func TestFrame_PublicEmpty(t *testing.T) {
	out := plainRenderer(80).Frame(session.Frame{Mode: session.ModePublic, Username: "alice"})
	assert.Contains(t, out, "No public messages yet. Start the conversation!")
}

func TestFrame_Private(t *testing.T) {
	r := plainRenderer(80)
	out := r.Frame(session.Frame{
		Mode:     session.ModePrivate,
		Username: "alice",
		Private: []api.PrivateMessage{
			{Sender: "bob", Receiver: "alice", Body: "first", Timestamp: at(0)},
			{Sender: "alice", Receiver: "bob", Body: "second", Timestamp: at(5)},
		},
	})

	assert.Contains(t, out, "PRIVATE MESSAGES")
	assert.Contains(t, out, "[12:05] To bob: second")
	assert.Contains(t, out, "[12:00] From bob: first")
	assert.Less(t, strings.Index(out, "second"), strings.Index(out, "first"), "newest first")
}

func TestFrame_PrivateEmpty(t *testing.T) {
	out := plainRenderer(80).Frame(session.Frame{Mode: session.ModePrivate, Username: "alice"})
	assert.Contains(t, out, "No private messages yet.")
	assert.Contains(t, out, "Use @username to send a private message")
}

func TestFrame_Room(t *testing.T) {
	r := plainRenderer(80)
	out := r.Frame(session.Frame{
		Mode:     session.ModeRoom,
		Username: "alice",
		RoomID:   "AB12CD",
		RoomName: "Room AB12CD",
		RoomInfo: &api.RoomInfo{
			Name:      "Launch",
			Creator:   "carol",
			CreatedAt: api.At(base),
			Users:     []string{"alice", "carol"},
		},
		Messages: []api.Message{{Sender: "carol", Body: "welcome", Timestamp: at(3)}},
	})

	assert.Contains(t, out, "ROOM: Launch")
	assert.Contains(t, out, "ID: AB12CD | Created: 2025-03-01 12:00 by carol")
	assert.Contains(t, out, "Users in room: 2")
	assert.Contains(t, out, "[12:03] carol: welcome")
}

func TestFrame_RoomWithoutInfo(t *testing.T) {
	out := plainRenderer(80).Frame(session.Frame{
		Mode:     session.ModeRoom,
		Username: "alice",
		RoomID:   "AB12CD",
		RoomName: "Team",
	})

	assert.Contains(t, out, "ROOM: Team")
	assert.Contains(t, out, "ID: AB12CD\n")
	assert.NotContains(t, out, "Users in room")
	assert.Contains(t, out, "No messages in this room yet. Start the conversation!")
}

func TestFrame_NarrowRule(t *testing.T) {
	out := plainRenderer(20).Frame(session.Frame{Mode: session.ModePublic})
	first := strings.SplitN(out, "\n", 2)[0]
	assert.Equal(t, strings.Repeat("=", 20), first)
}

func TestFrame_ZeroTimestamp(t *testing.T) {
	out := plainRenderer(80).Frame(session.Frame{
		Mode:     session.ModePublic,
		Messages: []api.Message{{Sender: "bob", Body: "x"}},
	})
	assert.Contains(t, out, "[--:--] bob: x")
}

func TestRecentPrivate(t *testing.T) {
	var msgs []api.PrivateMessage
	for i := 0; i < 25; i++ {
		msgs = append(msgs, api.PrivateMessage{Body: string(rune('a' + i)), Timestamp: at(i)})
	}

	got := RecentPrivate(msgs, 20)
	require.Len(t, got, 20)
	assert.Equal(t, "y", got[0].Body)
	assert.Equal(t, "f", got[19].Body)
	assert.Equal(t, "a", msgs[0].Body, "input is not reordered")

	assert.Len(t, RecentPrivate(msgs[:3], 20), 3)
	assert.Empty(t, RecentPrivate(nil, 20))
}

func TestRooms(t *testing.T) {
	out := plainRenderer(80).Rooms([]api.UserRoom{
		{ID: "R1", Name: "Alpha"},
		{ID: "R2"},
	})

	assert.Contains(t, out, "YOUR JOINED ROOMS")
	assert.Contains(t, out, "[1] Alpha (ID: R1)")
	assert.Contains(t, out, "[2] Room R2 (ID: R2)")
	assert.Contains(t, out, "[0] Back to Public Chat")
}

func TestRooms_Empty(t *testing.T) {
	out := plainRenderer(80).Rooms(nil)
	assert.Contains(t, out, "You haven't joined any rooms yet.")
	assert.Contains(t, out, "[0] Back to Public Chat", "header hint is always shown")
	assert.NotContains(t, out, "ROOMS YOU'VE JOINED")
	for _, line := range strings.Split(out, "\n") {
		assert.False(t, strings.HasPrefix(line, "[0] Back"), "no back row without rooms: %q", line)
	}
}

func TestRooms_LongNameTruncated(t *testing.T) {
	out := plainRenderer(30).Rooms([]api.UserRoom{{ID: "R1", Name: strings.Repeat("x", 60)}})
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "[1]") {
			assert.LessOrEqual(t, len(line), 30)
			assert.Contains(t, line, "...")
			assert.True(t, strings.HasSuffix(line, "(ID: R1)"))
		}
	}
}

func TestFiles(t *testing.T) {
	expires := api.At(base.Add(150 * time.Minute))
	out := plainRenderer(120).Files(session.FilesPage{
		Username: "alice",
		Files: []api.FileRecord{
			{
				Code:             "K7P2QX",
				OriginalFilename: "report.pdf",
				Size:             1536,
				Sender:           "bob",
				UploadedAt:       api.At(base.Add(-3 * time.Minute)),
				ExpiresAt:        &expires,
				Location:         "room:AB12CD",
				Downloads:        4,
			},
			{
				Code:             "ZZ0001",
				OriginalFilename: "notes.txt",
				Size:             10,
				Sender:           "alice",
				UploadedAt:       api.At(base),
				Location:         "private:bob",
			},
		},
		Page:  1,
		Pages: 2,
		Total: 12,
		Now:   base,
	})

	assert.Contains(t, out, "SHARED FILES (page 1/2)")
	assert.Contains(t, out, "12 file(s)")
	assert.Contains(t, out, "[K7P2QX] report.pdf (1.5 KB)")
	assert.Contains(t, out, "from bob | Room AB12CD | 3 minutes ago | expires in 2.5h | 4 download(s)")
	assert.Contains(t, out, "from you | Private to bob")
	assert.Contains(t, out, "never expires")
}

func TestFiles_Empty(t *testing.T) {
	out := plainRenderer(80).Files(session.FilesPage{Page: 1, Pages: 1, Now: base})
	assert.Contains(t, out, "SHARED FILES")
	assert.NotContains(t, out, "page 1/1")
	assert.Contains(t, out, "No files shared with you yet.")
}

func TestNotice(t *testing.T) {
	r := plainRenderer(80)
	assert.Equal(t, "✓ Message sent", r.Notice(session.LevelSuccess, "Message sent"))
	assert.Equal(t, "✗ Connection timeout", r.Notice(session.LevelError, "Connection timeout"))
	assert.Equal(t, "⚠ Server under maintenance", r.Notice(session.LevelWarning, "Server under maintenance"))
	assert.Equal(t, "Returning to public chat...", r.Notice(session.LevelInfo, "Returning to public chat..."))
	assert.Equal(t, "You: ", r.Prompt("You: "))
}

func TestHelp(t *testing.T) {
	r := plainRenderer(100)
	out := r.Help()
	for _, name := range []string{"/public", "/join", "/share", "/unshare", "!exit"} {
		assert.Contains(t, out, name)
	}
	assert.Equal(t, out, r.Help(), "cached per width")
}
