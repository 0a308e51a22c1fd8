// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultExpire is the expiry sent with /share when --expire is absent and
// nothing else is configured.
const DefaultExpire = "24h"

// ErrUsage is wrapped by every argument error; the message carries the usage line.
var ErrUsage = errors.New("usage")

// =============================================================================
// PARSE RESULT
// =============================================================================

// Command is a parsed input line.
type Command struct {
	// Kind selects the handler.
	Kind Kind

	// Name is the keyword as typed (e.g. "/JOIN"), empty for messages.
	Name string

	// Arg is the normalized single argument: the upper-cased code or room id
	// for /join, /get and /unshare, the raw argument string for /share.
	Arg string

	// Args are the quote-aware argument tokens.
	Args []string

	// Text is the line without its trailing newline, for KindMessage.
	Text string
}

// =============================================================================
// PARSER
// =============================================================================

// Parse classifies one input line. Keywords match case-insensitively on the
// first token; arguments keep their case unless the command normalizes them.
func Parse(line string) Command {
	text := strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Command{Kind: KindEmpty}
	}

	name := ExtractCommandName(trimmed)
	if name == "" {
		if strings.EqualFold(trimmed, "!exit") {
			return Command{Kind: KindExit, Name: trimmed}
		}
		return Command{Kind: KindMessage, Text: text}
	}

	def := Lookup(name)
	if def == nil {
		// Unknown slash words are ordinary chat text.
		return Command{Kind: KindMessage, Text: text}
	}

	rawArgs := strings.TrimSpace(trimmed[len(name):])
	cmd := Command{
		Kind: def.Kind,
		Name: name,
		Args: splitCommandLine(rawArgs),
	}

	switch def.Kind {
	case KindJoin, KindGet, KindUnshare:
		if len(cmd.Args) > 0 {
			cmd.Arg = strings.ToUpper(cmd.Args[0])
		}
	case KindShare:
		cmd.Arg = rawArgs
	}
	return cmd
}

// =============================================================================
// /share ARGUMENTS
// =============================================================================

// ShareArgs are the parsed arguments of /share.
type ShareArgs struct {
	Path      string
	Recipient string // empty for a non-private share
	Expire    string // empty when --expire was not given
}

// ShareUsage is shown for malformed /share input.
const ShareUsage = "/share [@user] <path> [--expire 2h]"

// ParseShare parses the argument string of /share.
//
// --expire X is taken from anywhere in the line. Of the remaining tokens,
// a leading @user is the recipient when privateMode is set or when more
// tokens follow it; otherwise everything left is the path. A lone
// "@notes.txt" is therefore a filename in public or room views and a
// recipient with no path in the private view.
func ParseShare(raw string, privateMode bool) (ShareArgs, error) {
	var args ShareArgs

	var rest []string
	tokens := splitCommandLine(raw)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "--expire":
			if i+1 >= len(tokens) {
				return ShareArgs{}, fmt.Errorf("%w: --expire needs a value (%s)", ErrUsage, ShareUsage)
			}
			args.Expire = tokens[i+1]
			i++
		case strings.HasPrefix(tok, "--expire="):
			args.Expire = strings.TrimPrefix(tok, "--expire=")
			if args.Expire == "" {
				return ShareArgs{}, fmt.Errorf("%w: --expire needs a value (%s)", ErrUsage, ShareUsage)
			}
		default:
			rest = append(rest, tok)
		}
	}

	if len(rest) > 0 && strings.HasPrefix(rest[0], "@") && (privateMode || len(rest) > 1) {
		args.Recipient = strings.TrimPrefix(rest[0], "@")
		rest = rest[1:]
		if args.Recipient == "" {
			return ShareArgs{}, fmt.Errorf("%w: missing recipient after @ (%s)", ErrUsage, ShareUsage)
		}
	}

	args.Path = strings.Join(rest, " ")
	if args.Path == "" {
		return ShareArgs{}, fmt.Errorf("%w: missing file path (%s)", ErrUsage, ShareUsage)
	}
	return args, nil
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// splitCommandLine splits a command line into tokens, respecting quotes.
// Supports both single and double quotes for arguments with spaces.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote, quoted bool

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			quoted = true

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			quoted = true

		case char == '\\' && i+1 < len(runes) && (inDoubleQuote || inSingleQuote):
			// Escape sequence inside quotes
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && !inSingleQuote && !inDoubleQuote:
			// Space outside quotes - end current token
			if current.Len() > 0 || quoted {
				tokens = append(tokens, current.String())
				current.Reset()
				quoted = false
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 || quoted {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ExtractCommandName extracts just the command name from input.
// e.g., "/join AB12CD" -> "/join"
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}

	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return input[:end]
}
