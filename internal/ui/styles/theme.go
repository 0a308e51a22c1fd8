// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the chat screens.
type Theme struct {
	// Terminal capabilities
	ColorProfile termenv.Profile

	// ==========================================================================
	// VIEW FRAME STYLES
	// ==========================================================================

	PublicRule  lipgloss.Style
	PrivateRule lipgloss.Style
	RoomRule    lipgloss.Style
	PickerRule  lipgloss.Style
	Separator   lipgloss.Style
	Title       lipgloss.Style
	Hint        lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	Self        lipgloss.Style
	Admin       lipgloss.Style
	PublicPeer  lipgloss.Style
	PrivatePeer lipgloss.Style
	RoomPeer    lipgloss.Style
	Body        lipgloss.Style
	Empty       lipgloss.Style
	Prompt      lipgloss.Style

	// ==========================================================================
	// LIST STYLES
	// ==========================================================================

	Index   lipgloss.Style
	Code    lipgloss.Style
	Section lipgloss.Style

	// ==========================================================================
	// NOTICE STYLES
	// ==========================================================================

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
}

// NewTheme creates a theme rendering to out. noColor forces plain text.
func NewTheme(out io.Writer, noColor bool) *Theme {
	r := lipgloss.NewRenderer(out)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}

	t := &Theme{ColorProfile: r.ColorProfile()}
	t.initStyles(r)
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles(r *lipgloss.Renderer) {
	t.PublicRule = r.NewStyle().Foreground(Blue)
	t.PrivateRule = r.NewStyle().Foreground(Purple)
	t.RoomRule = r.NewStyle().Foreground(Cyan)
	t.PickerRule = r.NewStyle().Foreground(Amber)
	t.Separator = r.NewStyle().Foreground(Overlay)
	t.Title = r.NewStyle().Bold(true).Foreground(Amber)
	t.Hint = r.NewStyle().Foreground(TextMuted)

	t.Self = r.NewStyle().Foreground(Emerald)
	t.Admin = r.NewStyle().Bold(true).Foreground(Amber)
	t.PublicPeer = r.NewStyle().Foreground(Blue)
	t.PrivatePeer = r.NewStyle().Foreground(Purple)
	t.RoomPeer = r.NewStyle().Foreground(Cyan)
	t.Body = r.NewStyle().Foreground(TextPrimary)
	t.Empty = r.NewStyle().Foreground(TextMuted).Italic(true)
	t.Prompt = r.NewStyle().Bold(true).Foreground(Amber)

	t.Index = r.NewStyle().Bold(true).Foreground(Emerald)
	t.Code = r.NewStyle().Bold(true).Foreground(Cyan)
	t.Section = r.NewStyle().Bold(true).Foreground(Blue)

	t.Success = r.NewStyle().Foreground(Emerald)
	t.Error = r.NewStyle().Foreground(Rose)
	t.Warning = r.NewStyle().Bold(true).Foreground(Amber)
	t.Info = r.NewStyle().Foreground(TextSecondary)
}
