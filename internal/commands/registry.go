// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"
)

// Kind identifies what a parsed line asks for.
type Kind int

const (
	KindEmpty Kind = iota
	KindMessage
	KindExit
	KindPublic
	KindPrivate
	KindList
	KindCreate
	KindJoin
	KindLeave
	KindShare
	KindGet
	KindFiles
	KindUnshare
	KindHelp
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindMessage:
		return "message"
	case KindExit:
		return "exit"
	case KindPublic:
		return "public"
	case KindPrivate:
		return "private"
	case KindList:
		return "list"
	case KindCreate:
		return "create"
	case KindJoin:
		return "join"
	case KindLeave:
		return "leave"
	case KindShare:
		return "share"
	case KindGet:
		return "get"
	case KindFiles:
		return "files"
	case KindUnshare:
		return "unshare"
	case KindHelp:
		return "help"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Definition describes a slash command for dispatch and help.
type Definition struct {
	// Kind is what Parse reports for this keyword.
	Kind Kind

	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Usage shows argument syntax (e.g., "/join [ID]")
	Usage string

	// Description is shown in help
	Description string

	// Category for grouping in help display
	Category string
}

var builtins = []*Definition{
	{Kind: KindPublic, Name: "/public", Usage: "/public", Description: "Switch to the public chat", Category: "Views"},
	{Kind: KindPrivate, Name: "/private", Usage: "/private", Description: "Switch to your private messages", Category: "Views"},
	{Kind: KindList, Name: "/list", Usage: "/list", Description: "Pick one of the rooms you have joined", Category: "Rooms"},
	{Kind: KindCreate, Name: "/create", Usage: "/create", Description: "Create a room and enter it", Category: "Rooms"},
	{Kind: KindJoin, Name: "/join", Usage: "/join [ID]", Description: "Join a room by ID (asks when omitted)", Category: "Rooms"},
	{Kind: KindLeave, Name: "/leave", Usage: "/leave", Description: "Leave the current room", Category: "Rooms"},
	{Kind: KindShare, Name: "/share", Usage: ShareUsage, Description: "Upload a file (max 100 MB), optionally private to @user", Category: "Files"},
	{Kind: KindGet, Name: "/get", Usage: "/get <CODE>", Description: "Download a shared file", Category: "Files"},
	{Kind: KindFiles, Name: "/files", Usage: "/files", Description: "List the files you can download", Category: "Files"},
	{Kind: KindUnshare, Name: "/unshare", Usage: "/unshare <CODE>", Description: "Delete a file you shared", Category: "Files"},
	{Kind: KindHelp, Name: "/help", Aliases: []string{"/h", "/?"}, Usage: "/help", Description: "Show this help", Category: "General"},
}

// categoryOrder fixes the order of help sections.
var categoryOrder = []string{"Views", "Rooms", "Files", "General"}

var lookup = func() map[string]*Definition {
	m := make(map[string]*Definition)
	for _, def := range builtins {
		m[def.Name] = def
		for _, alias := range def.Aliases {
			m[alias] = def
		}
	}
	return m
}()

// Lookup retrieves a command by name or alias, ignoring case.
func Lookup(name string) *Definition {
	return lookup[strings.ToLower(name)]
}

// All returns the built-in commands in help order.
func All() []*Definition {
	out := make([]*Definition, len(builtins))
	copy(out, builtins)
	return out
}

// ByCategory returns commands grouped by category.
func ByCategory() map[string][]*Definition {
	result := make(map[string][]*Definition)
	for _, def := range builtins {
		result[def.Category] = append(result[def.Category], def)
	}
	return result
}

// HelpMarkdown renders the command reference as markdown.
func HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Commands\n")
	groups := ByCategory()
	for _, cat := range categoryOrder {
		defs := groups[cat]
		if len(defs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n| Command | Description |\n|---|---|\n", cat)
		for _, def := range defs {
			usage := def.Usage
			if len(def.Aliases) > 0 {
				usage += " (" + strings.Join(def.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&b, "| `%s` | %s |\n", usage, def.Description)
		}
	}
	b.WriteString("\n## Messages\n\n")
	b.WriteString("- Any other text is sent to the current view.\n")
	b.WriteString("- Start a line with `@user` to send a private message.\n")
	b.WriteString("- Type `!exit` to quit.\n")
	return b.String()
}
