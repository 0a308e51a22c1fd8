// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"io"
	"sync"

	"github.com/muesli/termenv"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
	"github.com/cyrenxxxxx/cli-chat/internal/session"
	"github.com/cyrenxxxxx/cli-chat/internal/view"
)

// chatPrompt follows every redraw of a chat view.
const chatPrompt = "You: "

// Screen draws the session on a terminal. It implements session.Display.
type Screen struct {
	mu       sync.Mutex
	out      *termenv.Output
	renderer *view.Renderer
	clear    bool
	width    func() int

	// atPrompt is set while the cursor sits after the chat prompt.
	atPrompt bool
}

// NewScreen creates a screen writing to w. clear enables clearing the
// terminal before each full redraw; it should be off when w is not a TTY.
func NewScreen(w io.Writer, renderer *view.Renderer, clear bool) *Screen {
	return &Screen{
		out:      termenv.NewOutput(w),
		renderer: renderer,
		clear:    clear,
		width:    TerminalWidth,
	}
}

// redraw starts a new full screen.
func (s *Screen) redraw() {
	if s.clear {
		s.out.ClearScreen()
	}
	s.renderer.SetWidth(s.width())
	s.atPrompt = false
}

func (s *Screen) write(text string) {
	_, _ = io.WriteString(s.out, text)
}

// Render redraws a chat view and leaves the cursor at the message prompt.
func (s *Screen) Render(f session.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.redraw()
	s.write(s.renderer.Frame(f))
	s.write("\n" + s.renderer.Prompt(chatPrompt))
	s.atPrompt = true
}

// Notice prints a status line.
func (s *Screen) Notice(level session.Level, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.atPrompt {
		s.write("\n")
		s.atPrompt = false
	}
	s.write(s.renderer.Notice(level, text) + "\n")
}

// Prompt asks a question on its own line.
func (s *Screen) Prompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.atPrompt {
		s.write("\n")
		s.atPrompt = false
	}
	s.write(s.renderer.Prompt(text))
}

// Rooms draws the room picker.
func (s *Screen) Rooms(rooms []api.UserRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.redraw()
	s.write(s.renderer.Rooms(rooms) + "\n")
}

// Files draws one page of the file listing.
func (s *Screen) Files(p session.FilesPage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.redraw()
	s.write(s.renderer.Files(p) + "\n")
}

// Help draws the command reference.
func (s *Screen) Help() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.redraw()
	s.write(s.renderer.Help() + "\n")
}
