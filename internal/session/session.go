// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
	"github.com/cyrenxxxxx/cli-chat/internal/commands"
	"github.com/cyrenxxxxx/cli-chat/internal/config"
	"github.com/cyrenxxxxx/cli-chat/internal/logging"
)

// Backend is the chat service as the session uses it. *api.Client
// implements it.
type Backend interface {
	Messages(ctx context.Context) ([]api.Message, error)
	RoomMessages(ctx context.Context, roomID string) ([]api.Message, error)
	PrivateMessages(ctx context.Context, user string) ([]api.PrivateMessage, error)
	UserRooms(ctx context.Context, user string) ([]api.UserRoom, error)
	RoomInfo(ctx context.Context, roomID string) (*api.RoomInfo, error)
	DeletedRooms(ctx context.Context) (map[string]api.DeletedRoom, error)
	SendMessage(ctx context.Context, sender, text, roomID string) error
	CreateRoom(ctx context.Context, name, creator string) (string, error)
	JoinRoom(ctx context.Context, roomID, user string) (*api.RoomInfo, error)
	LeaveRoom(ctx context.Context, roomID, user string) error
	UploadFile(ctx context.Context, up api.Upload) (string, error)
	DownloadFile(ctx context.Context, code, user string) (*api.DownloadedFile, error)
	ListFiles(ctx context.Context, user, roomID string) ([]api.FileRecord, error)
	DeleteFile(ctx context.Context, code, user string) error
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options tune the scheduler and the file handlers.
type Options struct {
	RefreshInterval time.Duration
	InputTimeout    time.Duration
	IdleQuantum     time.Duration
	NoticePause     time.Duration
	ProbeTimeout    time.Duration
	HistoryLimit    int
	DownloadDir     string
	DefaultExpire   string
	PageSize        int
}

// DefaultOptions returns the options matching config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig extracts the session options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RefreshInterval: cfg.Session.RefreshInterval.Std(),
		InputTimeout:    cfg.Session.InputTimeout.Std(),
		IdleQuantum:     cfg.Session.IdleQuantum.Std(),
		NoticePause:     cfg.Session.NoticePause.Std(),
		ProbeTimeout:    cfg.Server.ProbeTimeout.Std(),
		HistoryLimit:    cfg.Session.HistoryLimit,
		DownloadDir:     cfg.Files.DownloadDir,
		DefaultExpire:   cfg.Files.DefaultExpire,
		PageSize:        cfg.Files.PageSize,
	}
}

// shortPause is how long transient confirmations stay up before a redraw.
const shortPause = 500 * time.Millisecond

// =============================================================================
// SESSION
// =============================================================================

// Session is one logged-in chat session.
type Session struct {
	id       string
	user     string
	backend  Backend
	display  Display
	input    LineSource
	opts     Options
	state    *State
	detector *Detector
	logger   *slog.Logger

	// roomInfo is the latest header of the current room.
	roomInfo *api.RoomInfo

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a session for user.
func New(user string, backend Backend, display Display, input LineSource, opts Options) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		user:     user,
		backend:  backend,
		display:  display,
		input:    input,
		opts:     opts,
		state:    NewState(),
		detector: NewDetector(backend, opts.ProbeTimeout),
		logger:   logging.WithFields("session_id", id, "user", user),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// ID returns the session id used in logs.
func (s *Session) ID() string { return s.id }

// Run executes the refresh loop until !exit, end of input, or ctx is done.
// Network failures never end the session.
func (s *Session) Run(ctx context.Context) error {
	started := s.now()
	s.logger.Info("session started")

	if s.underMaintenance(ctx) {
		s.logger.Warn("session aborted: backend under maintenance")
		return nil
	}

	var runErr error
	for ctx.Err() == nil {
		stop, err := s.step(ctx)
		if err != nil {
			runErr = err
			break
		}
		if stop {
			break
		}
		s.sleep(ctx, s.opts.IdleQuantum)
	}

	s.display.Notice(LevelInfo, "Goodbye!")
	s.logger.Info("session ended", "duration", FormatDuration(s.now().Sub(started)))
	return runErr
}

// underMaintenance polls once before the loop and reports a maintenance
// advisory to the user.
func (s *Session) underMaintenance(ctx context.Context) bool {
	_, err := s.backend.Messages(ctx)
	if !api.IsMaintenance(err) {
		if err != nil {
			s.logger.Warn("pre-check failed", "error", err)
		}
		return false
	}
	s.display.Notice(LevelWarning, api.Describe(err))
	s.display.Notice(LevelInfo, "Please try again later.")
	s.pause(ctx, s.opts.NoticePause)
	return true
}

// step runs one loop iteration: a poll when due, then at most one line.
// A panic is logged and reported; the loop goes on.
func (s *Session) step(ctx context.Context) (stop bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session iteration panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			s.display.Notice(LevelError, fmt.Sprintf("Internal error: %v", r))
			stop, err = false, nil
		}
	}()

	if s.state.Due(s.now(), s.opts.RefreshInterval) {
		s.refresh(ctx)
	}

	line, ok, err := s.input.Poll(ctx, s.opts.InputTimeout)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return true, nil
		}
		return true, fmt.Errorf("read input: %w", err)
	}
	if !ok {
		return false, nil
	}
	return s.dispatch(ctx, line), nil
}

// =============================================================================
// POLLING
// =============================================================================

// refresh polls the active view and redraws it when its count changed.
func (s *Session) refresh(ctx context.Context) {
	s.state.MarkPolled(s.now())

	switch s.state.Mode() {
	case ModePublic:
		msgs, err := s.backend.Messages(ctx)
		if err != nil {
			s.pollFailed(err)
			return
		}
		if !s.state.Observe(len(msgs)) {
			return
		}
		s.display.Render(Frame{Mode: ModePublic, Username: s.user, Messages: msgs})

	case ModePrivate:
		pms, err := s.backend.PrivateMessages(ctx, s.user)
		if err != nil {
			s.pollFailed(err)
			return
		}
		if !s.state.Observe(len(pms)) {
			return
		}
		s.display.Render(Frame{Mode: ModePrivate, Username: s.user, Private: pms})

	case ModeRoom:
		roomID := s.state.RoomID()
		if deleted, at := s.detector.Check(ctx, roomID); deleted {
			s.roomGone(ctx, roomID, at)
			return
		}
		msgs, err := s.backend.RoomMessages(ctx, roomID)
		if err != nil {
			s.pollFailed(err)
			return
		}
		if !s.state.Observe(len(msgs)) {
			return
		}
		if info, err := s.backend.RoomInfo(ctx, roomID); err == nil {
			s.roomInfo = info
			s.state.SetRoomName(info.Name)
		} else {
			s.logger.Debug("room header refresh failed", "room_id", roomID, "error", err)
		}
		s.display.Render(Frame{
			Mode:     ModeRoom,
			Username: s.user,
			RoomID:   roomID,
			RoomName: s.state.RoomName(),
			RoomInfo: s.roomInfo,
			Messages: msgs,
		})
	}
}

// pollFailed reports a failed poll. The view and its counter are untouched.
func (s *Session) pollFailed(err error) {
	s.logger.Warn("poll failed", "mode", s.state.Mode().String(), "kind", api.KindOf(err).String(), "error", err)
	if api.IsMaintenance(err) {
		s.display.Notice(LevelWarning, api.Describe(err))
		return
	}
	s.display.Notice(LevelError, api.Describe(err))
}

// roomGone leaves a room that was deleted under us.
func (s *Session) roomGone(ctx context.Context, roomID string, at time.Time) {
	s.logger.Info("room deleted", "room_id", roomID, "deleted_at", at)
	s.display.Notice(LevelError, fmt.Sprintf("Room %s has been deleted by admin!", roomID))
	s.display.Notice(LevelInfo, "Returning to public chat...")
	s.pause(ctx, s.opts.NoticePause)
	s.enterPublic()
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func (s *Session) enterPublic() {
	s.state.ToPublic()
	s.roomInfo = nil
	s.logger.Info("view changed", "mode", ModePublic.String())
}

func (s *Session) enterPrivate() {
	s.state.ToPrivate()
	s.roomInfo = nil
	s.logger.Info("view changed", "mode", ModePrivate.String())
}

func (s *Session) enterRoomView(id, name string, info *api.RoomInfo) {
	s.state.ToRoom(id, name)
	s.roomInfo = info
	s.logger.Info("view changed", "mode", ModeRoom.String(), "room_id", id)
}

// =============================================================================
// HELPERS
// =============================================================================

// dispatch runs the handler for one typed line and reports whether the
// session should end.
func (s *Session) dispatch(ctx context.Context, line string) bool {
	cmd := commands.Parse(line)
	if cmd.Kind != commands.KindEmpty && cmd.Kind != commands.KindMessage {
		s.logger.Debug("command", "kind", cmd.Kind.String())
	}

	switch cmd.Kind {
	case commands.KindEmpty:
	case commands.KindExit:
		return true
	case commands.KindPublic:
		s.switchPublic(ctx)
	case commands.KindPrivate:
		s.switchPrivate(ctx)
	case commands.KindList:
		s.listRooms(ctx)
	case commands.KindCreate:
		s.createRoom(ctx)
	case commands.KindJoin:
		s.joinRoom(ctx, cmd.Arg)
	case commands.KindLeave:
		s.leaveRoom(ctx)
	case commands.KindShare:
		s.share(ctx, cmd.Arg)
	case commands.KindGet:
		s.get(ctx, cmd.Arg)
	case commands.KindFiles:
		s.listFiles(ctx)
	case commands.KindUnshare:
		s.unshare(ctx, cmd.Arg)
	case commands.KindHelp:
		s.help(ctx)
	case commands.KindMessage:
		s.send(ctx, cmd.Text)
	}
	return false
}

// pause waits d unless ctx ends first.
func (s *Session) pause(ctx context.Context, d time.Duration) {
	if d > 0 {
		s.sleep(ctx, d)
	}
}

// await blocks for one answer to a prompt.
func (s *Session) await(ctx context.Context, prompt string) (string, bool) {
	s.display.Prompt(prompt)
	line, err := s.input.Await(ctx)
	if err != nil {
		s.logger.Debug("prompt abandoned", "error", err)
		return "", false
	}
	return line, true
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
