// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
	"github.com/cyrenxxxxx/cli-chat/internal/logging"
	"github.com/cyrenxxxxx/cli-chat/internal/session"
)

// Authenticator checks credentials against the backend. *api.Client
// implements it.
type Authenticator interface {
	Login(ctx context.Context, user, password string) error
	Signup(ctx context.Context, user, password string) error
}

// Prompter asks the login questions.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

// Notifier shows status lines. *Screen implements it.
type Notifier interface {
	Notice(level session.Level, text string)
}

// IsAbort reports whether err means the user quit at a prompt: Ctrl+C,
// end of input, or cancellation.
func IsAbort(err error) bool {
	return errors.Is(err, liner.ErrPromptAborted) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled)
}

// =============================================================================
// PROMPTERS
// =============================================================================

// LinerPrompter prompts with line editing on a terminal.
type LinerPrompter struct {
	state *liner.State
}

// NewLinerPrompter takes over the terminal until Close.
func NewLinerPrompter() *LinerPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinerPrompter{state: state}
}

// Prompt reads one line.
func (p *LinerPrompter) Prompt(prompt string) (string, error) {
	return p.state.Prompt(prompt)
}

// PasswordPrompt reads one line without echo.
func (p *LinerPrompter) PasswordPrompt(prompt string) (string, error) {
	return p.state.PasswordPrompt(prompt)
}

// Close restores the terminal mode.
func (p *LinerPrompter) Close() error {
	return p.state.Close()
}

// LinePrompter answers prompts from a Lines source, for piped input.
// Passwords are read like any other line.
type LinePrompter struct {
	ctx   context.Context
	out   io.Writer
	lines *Lines
}

// NewLinePrompter creates a prompter writing questions to out.
func NewLinePrompter(ctx context.Context, out io.Writer, lines *Lines) *LinePrompter {
	return &LinePrompter{ctx: ctx, out: out, lines: lines}
}

// Prompt writes prompt and waits for a line.
func (p *LinePrompter) Prompt(prompt string) (string, error) {
	_, _ = io.WriteString(p.out, prompt)
	return p.lines.Await(p.ctx)
}

// PasswordPrompt is Prompt; there is no echo to suppress.
func (p *LinePrompter) PasswordPrompt(prompt string) (string, error) {
	return p.Prompt(prompt)
}

// =============================================================================
// LOGIN FLOW
// =============================================================================

// Login runs the login/signup menu until a user logs in. It returns the
// username, or the prompt error when the user quits. pause is how long the
// welcome line stays up.
func Login(ctx context.Context, auth Authenticator, p Prompter, n Notifier, pause time.Duration) (string, error) {
	logger := logging.FromContext(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n.Notice(session.LevelInfo, "1. Login")
		n.Notice(session.LevelInfo, "2. Signup")
		choice, err := p.Prompt("Choose an option: ")
		if err != nil {
			return "", err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			user, password, err := credentials(p)
			if err != nil {
				return "", err
			}
			if user == "" {
				n.Notice(session.LevelError, "Username cannot be empty")
				continue
			}
			if err := auth.Login(ctx, user, password); err != nil {
				logger.Info("login failed", "user", user, "kind", api.KindOf(err).String())
				authFailed(n, err)
				continue
			}
			logger.Info("login succeeded", "user", user)
			n.Notice(session.LevelSuccess, "Welcome "+user+"!")
			wait(ctx, pause)
			return user, nil

		case "2":
			user, password, err := credentials(p)
			if err != nil {
				return "", err
			}
			if user == "" {
				n.Notice(session.LevelError, "Username cannot be empty")
				continue
			}
			if err := auth.Signup(ctx, user, password); err != nil {
				logger.Info("signup failed", "user", user, "kind", api.KindOf(err).String())
				authFailed(n, err)
				continue
			}
			logger.Info("signup succeeded", "user", user)
			n.Notice(session.LevelSuccess, "Signup successful! Please login.")
			wait(ctx, pause)

		default:
			n.Notice(session.LevelError, "Invalid option. Choose 1 or 2")
		}
	}
}

func credentials(p Prompter) (user, password string, err error) {
	user, err = p.Prompt("Enter username: ")
	if err != nil {
		return "", "", err
	}
	password, err = p.PasswordPrompt("Enter password: ")
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(user), password, nil
}

func authFailed(n Notifier, err error) {
	if api.IsMaintenance(err) {
		n.Notice(session.LevelWarning, api.Describe(err))
		return
	}
	n.Notice(session.LevelError, api.Describe(err))
}

func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
