// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs a logged-in chat session.
//
// A single goroutine owns the view state. Each iteration it polls the
// backend when the refresh interval has elapsed, redraws only when the
// number of messages in the active view changed, then waits briefly for a
// typed line and dispatches it.
//
// # Key Types
//
//   - Session: the refresh loop and command handlers
//   - State: active view, current room and the per-view message counters
//   - Detector: decides whether the room being viewed was deleted
//   - Display, LineSource: the terminal as the session sees it
//
// # Usage
//
//	sess := session.New(user, client, screen, lines, session.OptionsFromConfig(cfg))
//	if err := sess.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Failure Handling
//
// A failed poll shows a notice and leaves the view and its counter alone,
// so the next successful poll decides whether to redraw. Only !exit, end
// of input or cancellation of ctx end the session.
package session
