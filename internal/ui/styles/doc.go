// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chat client.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Blue - Public chat
  - Purple - Private messages
  - Cyan - Rooms
  - Emerald - Success notices and your own messages
  - Amber - Warnings, titles and Administrator messages
  - Rose - Errors

# Theme (theme.go)

A Theme is bound to one output through a lipgloss.Renderer, so the color
profile follows that terminal (or plain ASCII when color is disabled):

	theme := styles.NewTheme(os.Stdout, cfg.UI.NoColor)
	fmt.Println(theme.Title.Render("PUBLIC CHAT"))
*/
package styles
