// cli-chat - A terminal chat client for a polling HTTP backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
	"github.com/cyrenxxxxx/cli-chat/internal/config"
	"github.com/cyrenxxxxx/cli-chat/internal/console"
	"github.com/cyrenxxxxx/cli-chat/internal/logging"
	"github.com/cyrenxxxxx/cli-chat/internal/session"
	"github.com/cyrenxxxxx/cli-chat/internal/ui/styles"
	"github.com/cyrenxxxxx/cli-chat/internal/view"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// welcomePause keeps the login confirmation visible before the first redraw.
const welcomePause = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	args, err := console.ParseArgs(argv)
	if err != nil {
		fmt.Fprint(os.Stderr, console.Usage)
		return err
	}
	if args.Help {
		fmt.Print(console.Usage)
		return nil
	}
	if args.Version {
		fmt.Printf("cli-chat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return nil
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logPath := cfg.Log.Path
	if logPath == "" {
		if logPath, err = config.DefaultLogPath(); err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
	}
	closeLog, err := logging.Setup(logPath, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.Server.URL).
		WithTimeouts(api.Timeouts{
			Poll:   cfg.Server.PollTimeout.Std(),
			Action: cfg.Server.ActionTimeout.Std(),
			Upload: cfg.Server.UploadTimeout.Std(),
		}).
		WithRateLimit(cfg.Server.RequestsPerSecond)

	theme := styles.NewTheme(os.Stdout, !console.ColorsEnabled(cfg.UI.NoColor))
	renderer := view.New(theme, console.TerminalWidth(), cfg.Session.HistoryLimit)
	screen := console.NewScreen(os.Stdout, renderer, console.IsStdoutTTY())

	logging.Logger().Info("client started", "version", Version, "server", client.BaseURL())

	user, lines, err := login(ctx, client, screen)
	if err != nil {
		if console.IsAbort(err) {
			screen.Notice(session.LevelInfo, "Exiting... Goodbye!")
			return nil
		}
		return err
	}

	sess := session.New(user, client, screen, lines, session.OptionsFromConfig(cfg))
	return sess.Run(ctx)
}

// loadConfig reads the configuration and applies the command-line overrides.
func loadConfig(args console.Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.ServerURL != "" {
		cfg.Server.URL = args.ServerURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --server: %w", err)
		}
	}
	if args.NoColor {
		cfg.UI.NoColor = true
	}
	return cfg, nil
}

// login runs the login menu and returns the line source for the session.
// On a terminal liner owns stdin until the user is logged in; piped input
// goes through the line source from the start.
func login(ctx context.Context, client *api.Client, screen *console.Screen) (string, *console.Lines, error) {
	if console.IsTTY() {
		prompter := console.NewLinerPrompter()
		user, err := console.Login(ctx, client, prompter, screen, welcomePause)
		prompter.Close()
		if err != nil {
			return "", nil, err
		}
		return user, console.NewLines(os.Stdin), nil
	}

	lines := console.NewLines(os.Stdin)
	prompter := console.NewLinePrompter(ctx, os.Stdout, lines)
	user, err := console.Login(ctx, client, prompter, screen, welcomePause)
	if err != nil {
		return "", nil, err
	}
	return user, lines, nil
}
