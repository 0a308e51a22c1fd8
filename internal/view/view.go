// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
	"github.com/cyrenxxxxx/cli-chat/internal/commands"
	"github.com/cyrenxxxxx/cli-chat/internal/files"
	"github.com/cyrenxxxxx/cli-chat/internal/session"
	"github.com/cyrenxxxxx/cli-chat/internal/ui/styles"
	"github.com/cyrenxxxxx/cli-chat/internal/util"
)

// AdminSender is the account whose public messages are highlighted.
const AdminSender = "Administrator"

// ruleWidth is the widest a header rule gets.
const ruleWidth = 50

// DefaultHistoryLimit caps the private view when no limit is given.
const DefaultHistoryLimit = 20

// =============================================================================
// RENDERER
// =============================================================================

// Renderer draws the chat screens with a theme.
type Renderer struct {
	theme        *styles.Theme
	width        int
	historyLimit int
	loc          *time.Location

	// help is the rendered command reference, cached per width.
	help      string
	helpWidth int
}

// New creates a renderer for a terminal width columns wide.
func New(theme *styles.Theme, width, historyLimit int) *Renderer {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	r := &Renderer{theme: theme, historyLimit: historyLimit, loc: time.Local}
	r.SetWidth(width)
	return r
}

// SetWidth updates the terminal width.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 {
		width = 80
	}
	r.width = width
}

func (r *Renderer) rule(style lipgloss.Style, ch string) string {
	return style.Render(strings.Repeat(ch, min(r.width, ruleWidth)))
}

// clock formats a message time as HH:MM in local time.
func (r *Renderer) clock(ts api.Timestamp) string {
	if ts.IsZero() {
		return "--:--"
	}
	return ts.In(r.loc).Format("15:04")
}

// =============================================================================
// FRAMES
// =============================================================================

// Frame renders a full view, header included.
func (r *Renderer) Frame(f session.Frame) string {
	var b strings.Builder
	switch f.Mode {
	case session.ModePrivate:
		r.privateFrame(&b, f)
	case session.ModeRoom:
		r.roomFrame(&b, f)
	default:
		r.publicFrame(&b, f)
	}
	return b.String()
}

func (r *Renderer) publicFrame(b *strings.Builder, f session.Frame) {
	t := r.theme
	r.header(b, t.PublicRule, "PUBLIC CHAT",
		"Type '/private' for Private Messages | '/create' to create room",
		"Type '/list' to view your rooms | '!exit' to exit")

	if len(f.Messages) == 0 {
		b.WriteString(t.Empty.Render("No public messages yet. Start the conversation!") + "\n")
		return
	}
	for _, m := range f.Messages {
		who := t.PublicPeer
		name := m.Sender
		switch {
		case m.Sender == f.Username:
			who, name = t.Self, "You"
		case m.Sender == AdminSender:
			who = t.Admin
		}
		r.line(b, who, fmt.Sprintf("[%s] %s: ", r.clock(m.Timestamp), name), m.Body)
	}
}

func (r *Renderer) privateFrame(b *strings.Builder, f session.Frame) {
	t := r.theme
	r.header(b, t.PrivateRule, "PRIVATE MESSAGES",
		"Type '/public' for Public Chat | '/create' to create room",
		"Type '/list' to view your rooms | '!exit' to exit")

	if len(f.Private) == 0 {
		b.WriteString(t.Empty.Render("No private messages yet.") + "\n")
		b.WriteString(t.Hint.Render("Use @username to send a private message") + "\n")
		return
	}
	for _, pm := range RecentPrivate(f.Private, r.historyLimit) {
		stamp := r.clock(pm.Timestamp)
		if pm.Sender == f.Username {
			r.line(b, t.Self, fmt.Sprintf("[%s] To %s: ", stamp, pm.Receiver), pm.Body)
			continue
		}
		r.line(b, t.PrivatePeer, fmt.Sprintf("[%s] From %s: ", stamp, pm.Sender), pm.Body)
	}
}

func (r *Renderer) roomFrame(b *strings.Builder, f session.Frame) {
	t := r.theme
	b.WriteString(r.rule(t.RoomRule, "=") + "\n")

	name := f.RoomName
	if f.RoomInfo != nil && f.RoomInfo.Name != "" {
		name = f.RoomInfo.Name
	}
	if name == "" {
		name = "Unknown Room"
	}
	b.WriteString(t.Title.Render("ROOM: "+name) + "\n")
	if info := f.RoomInfo; info != nil {
		creator := info.Creator
		if creator == "" {
			creator = "Unknown"
		}
		created := "unknown"
		if !info.CreatedAt.IsZero() {
			created = info.CreatedAt.In(r.loc).Format("2006-01-02 15:04")
		}
		b.WriteString(t.Hint.Render(fmt.Sprintf("ID: %s | Created: %s by %s", f.RoomID, created, creator)) + "\n")
		b.WriteString(t.Hint.Render(fmt.Sprintf("Users in room: %d", len(info.Users))) + "\n")
	} else {
		b.WriteString(t.Hint.Render("ID: "+f.RoomID) + "\n")
	}
	b.WriteString(t.Hint.Render("Type '/leave' to leave room | '/public' for Public Chat") + "\n")
	b.WriteString(t.Hint.Render("Type '/list' to view your rooms | '!exit' to exit") + "\n")
	b.WriteString(r.rule(t.RoomRule, "=") + "\n\n")

	if len(f.Messages) == 0 {
		b.WriteString(t.Empty.Render("No messages in this room yet. Start the conversation!") + "\n")
		return
	}
	for _, m := range f.Messages {
		who, name := t.RoomPeer, m.Sender
		if m.Sender == f.Username {
			who, name = t.Self, "You"
		}
		r.line(b, who, fmt.Sprintf("[%s] %s: ", r.clock(m.Timestamp), name), m.Body)
	}
}

func (r *Renderer) header(b *strings.Builder, rule lipgloss.Style, title string, hints ...string) {
	t := r.theme
	b.WriteString(r.rule(rule, "=") + "\n")
	b.WriteString(t.Title.Render(title) + "\n")
	for _, h := range hints {
		b.WriteString(t.Hint.Render(h) + "\n")
	}
	b.WriteString(r.rule(rule, "=") + "\n\n")
}

func (r *Renderer) line(b *strings.Builder, who lipgloss.Style, prefix, body string) {
	b.WriteString(who.Render(prefix) + r.theme.Body.Render(body) + "\n")
}

// RecentPrivate returns the newest limit messages, newest first. The input
// is left untouched.
func RecentPrivate(msgs []api.PrivateMessage, limit int) []api.PrivateMessage {
	out := make([]api.PrivateMessage, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// =============================================================================
// PROMPTS AND NOTICES
// =============================================================================

// Prompt renders a question; the caller leaves the cursor after it.
func (r *Renderer) Prompt(text string) string {
	return r.theme.Prompt.Render(text)
}

// Notice renders one status line.
func (r *Renderer) Notice(level session.Level, text string) string {
	t := r.theme
	switch level {
	case session.LevelSuccess:
		return t.Success.Render(styles.StatusIndicators.Success + " " + text)
	case session.LevelWarning:
		return t.Warning.Render(styles.StatusIndicators.Warning + " " + text)
	case session.LevelError:
		return t.Error.Render(styles.StatusIndicators.Error + " " + text)
	default:
		return t.Info.Render(text)
	}
}

// =============================================================================
// ROOM PICKER
// =============================================================================

// Rooms renders the /list picker.
func (r *Renderer) Rooms(rooms []api.UserRoom) string {
	t := r.theme
	var b strings.Builder
	r.header(&b, t.PickerRule, "YOUR JOINED ROOMS",
		"Select room number to join | [0] Back to Public Chat")

	if len(rooms) == 0 {
		b.WriteString(t.Empty.Render("You haven't joined any rooms yet.") + "\n")
		b.WriteString(t.Hint.Render("Use '/create' to make a room or '/join [ID]' to join one.") + "\n")
		return b.String()
	}

	b.WriteString(t.Section.Render("ROOMS YOU'VE JOINED:") + "\n")
	b.WriteString(r.rule(t.Separator, "-") + "\n")
	idxWidth := len(fmt.Sprintf("[%d] ", len(rooms)))
	for i, room := range rooms {
		name := room.Name
		if name == "" {
			name = "Room " + room.ID
		}
		idx := util.PadWidth(fmt.Sprintf("[%d]", i+1), idxWidth)
		suffix := fmt.Sprintf(" (ID: %s)", room.ID)
		name = util.TruncateWidth(name, r.width-util.StringWidth(idx)-util.StringWidth(suffix))
		b.WriteString(t.Index.Render(idx) + t.Body.Render(name) + t.Hint.Render(suffix) + "\n")
	}
	b.WriteString(r.rule(t.Separator, "-") + "\n")
	b.WriteString(t.Index.Render("[0] ") + t.Hint.Render("Back to Public Chat") + "\n")
	return b.String()
}

// =============================================================================
// FILE LIST
// =============================================================================

// Files renders one page of /files.
func (r *Renderer) Files(p session.FilesPage) string {
	t := r.theme
	var b strings.Builder
	title := "SHARED FILES"
	if p.Pages > 1 {
		title = fmt.Sprintf("SHARED FILES (page %d/%d)", p.Page, p.Pages)
	}
	r.header(&b, t.PickerRule, title,
		fmt.Sprintf("%d file(s) | /get CODE to download | /unshare CODE to delete yours", p.Total))

	if p.Total == 0 {
		b.WriteString(t.Empty.Render("No files shared with you yet.") + "\n")
		b.WriteString(t.Hint.Render("Use "+commands.ShareUsage+" to share one.") + "\n")
		return b.String()
	}

	for _, f := range p.Files {
		code := "[" + f.Code + "] "
		size := " (" + files.FormatSize(f.Size) + ")"
		name := util.TruncateWidth(f.OriginalFilename, r.width-util.StringWidth(code)-util.StringWidth(size))
		b.WriteString(t.Code.Render(code) + t.Body.Render(name) + t.Hint.Render(size) + "\n")

		from := f.Sender
		if from == p.Username {
			from = "you"
		}
		var expires *time.Time
		if f.ExpiresAt != nil {
			expires = &f.ExpiresAt.Time
		}
		details := []string{
			"from " + from,
			f.Location.Label(),
			files.FormatUploaded(f.UploadedAt.Time, p.Now),
			files.FormatExpiry(expires, p.Now),
			fmt.Sprintf("%d download(s)", f.Downloads),
		}
		b.WriteString(t.Hint.Render(util.TruncateWidth("    "+strings.Join(details, " | "), r.width)) + "\n")
	}
	return b.String()
}

// =============================================================================
// HELP
// =============================================================================

// Help renders the command reference. Markdown rendering falls back to
// the raw text when glamour is unavailable.
func (r *Renderer) Help() string {
	if r.help != "" && r.helpWidth == r.width {
		return r.help
	}
	source := commands.HelpMarkdown()

	style := "dark"
	if r.theme.ColorProfile == termenv.Ascii {
		style = "notty"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return source
	}
	out, err := md.Render(source)
	if err != nil {
		return source
	}
	r.help, r.helpWidth = out, r.width
	return out
}
