// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"fmt"
	"strings"
)

// Usage is printed for --help.
const Usage = `Usage: cli-chat [options]

Options:
  --config PATH    Load configuration from PATH (.toml or .json)
  --server URL     Backend endpoint, overriding the configuration
  --no-color       Disable colored output
  --version        Print the version and exit
  -h, --help       Show this help
`

// Args are the parsed command-line options.
type Args struct {
	ConfigPath string
	ServerURL  string
	NoColor    bool
	Version    bool
	Help       bool
}

// valueFlags take an argument; every other known flag is boolean.
var valueFlags = map[string]bool{"config": true, "server": true}

// ParseArgs parses the command line. Flags may be written --flag value,
// --flag=value or -flag value.
func ParseArgs(raw []string) (Args, error) {
	var args Args
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			return Args{}, fmt.Errorf("unexpected argument %q", arg)
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if valueFlags[name] && !hasValue {
			if i+1 >= len(raw) || strings.HasPrefix(raw[i+1], "-") {
				return Args{}, fmt.Errorf("flag --%s needs a value", name)
			}
			value = raw[i+1]
			i++
		}

		switch name {
		case "config":
			args.ConfigPath = value
		case "server":
			args.ServerURL = value
		case "no-color":
			args.NoColor = true
		case "version":
			args.Version = true
		case "h", "help":
			args.Help = true
		default:
			return Args{}, fmt.Errorf("unknown flag %q", arg)
		}
	}
	return args, nil
}
