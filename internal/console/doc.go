// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package console adapts the terminal to the chat session.
//
// It provides the non-blocking line source the refresh loop polls, the
// screen that draws rendered views, the login/signup prompts and the
// command-line arguments of the binary.
//
// # Key Types
//
//   - Lines: typed lines fed by a reader goroutine (session.LineSource)
//   - Screen: writes rendered frames and notices (session.Display)
//   - Prompter: answers login questions (liner on a TTY, Lines otherwise)
//   - Args: parsed command-line flags
//
// # Terminal Handling
//
// Stdin is read by liner during login when it is a terminal, and by the
// Lines goroutine afterwards. The two never read at the same time.
package console
