// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package view renders session frames, pickers and notices to styled text.
//
// Rendering is pure: every method returns a string and never touches the
// terminal. The console package decides when and where to write it.
//
// # Key Types
//
//   - Renderer: turns session frames, room lists and file pages into text
//
// # Usage
//
//	r := view.New(styles.NewTheme(os.Stdout, cfg.UI.NoColor), width, cfg.Session.HistoryLimit)
//	fmt.Fprint(os.Stdout, r.Frame(frame))
package view
