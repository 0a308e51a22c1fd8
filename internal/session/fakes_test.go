// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

// fakeBackend answers from function fields; nil fields return empty results.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	messages        func() ([]api.Message, error)
	roomMessages    func(roomID string) ([]api.Message, error)
	privateMessages func() ([]api.PrivateMessage, error)
	userRooms       func() ([]api.UserRoom, error)
	roomInfo        func(ctx context.Context, roomID string) (*api.RoomInfo, error)
	deletedRooms    func(ctx context.Context) (map[string]api.DeletedRoom, error)
	sendMessage     func(sender, text, roomID string) error
	createRoom      func(name string) (string, error)
	joinRoom        func(roomID string) (*api.RoomInfo, error)
	leaveRoom       func(roomID string) error
	uploadFile      func(up api.Upload) (string, error)
	downloadFile    func(code string) (*api.DownloadedFile, error)
	listFiles       func(roomID string) ([]api.FileRecord, error)
	deleteFile      func(code string) error
}

func (f *fakeBackend) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Messages(ctx context.Context) ([]api.Message, error) {
	f.record("messages")
	if f.messages == nil {
		return nil, nil
	}
	return f.messages()
}

func (f *fakeBackend) RoomMessages(ctx context.Context, roomID string) ([]api.Message, error) {
	f.record("room_messages %s", roomID)
	if f.roomMessages == nil {
		return nil, nil
	}
	return f.roomMessages(roomID)
}

func (f *fakeBackend) PrivateMessages(ctx context.Context, user string) ([]api.PrivateMessage, error) {
	f.record("private_messages %s", user)
	if f.privateMessages == nil {
		return nil, nil
	}
	return f.privateMessages()
}

func (f *fakeBackend) UserRooms(ctx context.Context, user string) ([]api.UserRoom, error) {
	f.record("user_rooms %s", user)
	if f.userRooms == nil {
		return nil, nil
	}
	return f.userRooms()
}

func (f *fakeBackend) RoomInfo(ctx context.Context, roomID string) (*api.RoomInfo, error) {
	f.record("room_info %s", roomID)
	if f.roomInfo == nil {
		return &api.RoomInfo{ID: roomID, Name: "Room " + roomID}, nil
	}
	return f.roomInfo(ctx, roomID)
}

func (f *fakeBackend) DeletedRooms(ctx context.Context) (map[string]api.DeletedRoom, error) {
	f.record("deleted_rooms")
	if f.deletedRooms == nil {
		return map[string]api.DeletedRoom{}, nil
	}
	return f.deletedRooms(ctx)
}

func (f *fakeBackend) SendMessage(ctx context.Context, sender, text, roomID string) error {
	f.record("send %s %q %s", sender, text, roomID)
	if f.sendMessage == nil {
		return nil
	}
	return f.sendMessage(sender, text, roomID)
}

func (f *fakeBackend) CreateRoom(ctx context.Context, name, creator string) (string, error) {
	f.record("create_room %s", name)
	if f.createRoom == nil {
		return "NEW001", nil
	}
	return f.createRoom(name)
}

func (f *fakeBackend) JoinRoom(ctx context.Context, roomID, user string) (*api.RoomInfo, error) {
	f.record("join_room %s", roomID)
	if f.joinRoom == nil {
		return &api.RoomInfo{ID: roomID}, nil
	}
	return f.joinRoom(roomID)
}

func (f *fakeBackend) LeaveRoom(ctx context.Context, roomID, user string) error {
	f.record("leave_room %s", roomID)
	if f.leaveRoom == nil {
		return nil
	}
	return f.leaveRoom(roomID)
}

func (f *fakeBackend) UploadFile(ctx context.Context, up api.Upload) (string, error) {
	f.record("upload_file %s", up.Filename)
	if f.uploadFile == nil {
		return "ABC123", nil
	}
	return f.uploadFile(up)
}

func (f *fakeBackend) DownloadFile(ctx context.Context, code, user string) (*api.DownloadedFile, error) {
	f.record("download_file %s", code)
	if f.downloadFile == nil {
		return nil, appErr("File not found")
	}
	return f.downloadFile(code)
}

func (f *fakeBackend) ListFiles(ctx context.Context, user, roomID string) ([]api.FileRecord, error) {
	f.record("list_files %s", roomID)
	if f.listFiles == nil {
		return nil, nil
	}
	return f.listFiles(roomID)
}

func (f *fakeBackend) DeleteFile(ctx context.Context, code, user string) error {
	f.record("delete_file %s", code)
	if f.deleteFile == nil {
		return nil
	}
	return f.deleteFile(code)
}

func appErr(msg string) error {
	kind := api.KindApplication
	if msg == "Server under maintenance" {
		kind = api.KindMaintenance
	}
	return &api.Error{Kind: kind, Action: "test", Message: msg}
}

func timeoutErr() error {
	return &api.Error{Kind: api.KindTimeout, Action: "test", Err: context.DeadlineExceeded}
}

// =============================================================================
// FAKE DISPLAY
// =============================================================================

type notice struct {
	Level Level
	Text  string
}

type fakeDisplay struct {
	frames  []Frame
	notices []notice
	prompts []string
	rooms   [][]api.UserRoom
	pages   []FilesPage
	helps   int
}

func (d *fakeDisplay) Render(f Frame) { d.frames = append(d.frames, f) }
func (d *fakeDisplay) Notice(l Level, s string) { d.notices = append(d.notices, notice{l, s}) }
func (d *fakeDisplay) Prompt(p string) { d.prompts = append(d.prompts, p) }
func (d *fakeDisplay) Rooms(r []api.UserRoom) { d.rooms = append(d.rooms, r) }
func (d *fakeDisplay) Files(p FilesPage) { d.pages = append(d.pages, p) }
func (d *fakeDisplay) Help() { d.helps++ }

func (d *fakeDisplay) noticeTexts() []string {
	out := make([]string, len(d.notices))
	for i, n := range d.notices {
		out[i] = n.Text
	}
	return out
}

func (d *fakeDisplay) hasNotice(level Level, text string) bool {
	for _, n := range d.notices {
		if n.Level == level && n.Text == text {
			return true
		}
	}
	return false
}

// =============================================================================
// FAKE INPUT
// =============================================================================

// fakeInput hands out queued lines. Once the queue is empty Poll reports no
// line, or io.EOF when eof is set; Await always reports io.EOF.
type fakeInput struct {
	lines []string
	eof   bool
}

func (in *fakeInput) Poll(ctx context.Context, timeout time.Duration) (string, bool, error) {
	if len(in.lines) > 0 {
		line := in.lines[0]
		in.lines = in.lines[1:]
		return line, true, nil
	}
	if in.eof {
		return "", false, io.EOF
	}
	return "", false, nil
}

func (in *fakeInput) Await(ctx context.Context) (string, error) {
	if len(in.lines) > 0 {
		line := in.lines[0]
		in.lines = in.lines[1:]
		return line, nil
	}
	return "", io.EOF
}

// =============================================================================
// HARNESS
// =============================================================================

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	sess    *Session
	backend *fakeBackend
	display *fakeDisplay
	input   *fakeInput
	clock   *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend: &fakeBackend{},
		display: &fakeDisplay{},
		input:   &fakeInput{},
		clock:   &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	opts := DefaultOptions()
	opts.DownloadDir = t.TempDir()
	h.sess = New("alice", h.backend, h.display, h.input, opts)
	h.sess.now = h.clock.Now
	h.sess.sleep = func(ctx context.Context, d time.Duration) { h.clock.Advance(d) }
	h.sess.detector.now = h.clock.Now
	return h
}

// feed queues typed lines.
func (h *harness) feed(lines ...string) { h.input.lines = append(h.input.lines, lines...) }

func msgs(n int) []api.Message {
	out := make([]api.Message, n)
	for i := range out {
		out[i] = api.Message{Sender: "bob", Body: fmt.Sprintf("m%d", i)}
	}
	return out
}
