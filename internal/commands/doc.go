// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands turns a typed line into a chat command.
//
// # Key Types
//
//   - Command: a parsed line (kind, normalized argument, tokens, message text)
//   - Definition: a built-in slash command with usage and description
//   - ShareArgs: the parsed arguments of /share
//
// # Usage
//
//	cmd := commands.Parse(line)
//	switch cmd.Kind {
//	case commands.KindJoin:
//	    join(cmd.Arg) // already upper-cased
//	case commands.KindShare:
//	    args, err := commands.ParseShare(cmd.Arg, inPrivateView)
//	}
package commands
