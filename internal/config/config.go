// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the cli-chat client.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.cli-chat/config.toml
//   - ~/.cli-chat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	// Server holds the backend endpoint and per-call timeouts.
	Server ServerConfig `toml:"server" json:"server"`

	// Session holds the refresh scheduler cadence.
	Session SessionConfig `toml:"session" json:"session"`

	// Files holds file sharing defaults.
	Files FilesConfig `toml:"files" json:"files"`

	// Log holds structured logging settings.
	Log LogConfig `toml:"log" json:"log"`

	// UI holds display settings.
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServerConfig contains backend connection settings.
type ServerConfig struct {
	// URL is the single endpoint every action is sent to.
	URL string `toml:"url" json:"url"`
	// PollTimeout bounds the informational polls (messages, rooms, files).
	PollTimeout Duration `toml:"poll_timeout" json:"poll_timeout"`
	// ProbeTimeout bounds each deleted-room probe.
	ProbeTimeout Duration `toml:"probe_timeout" json:"probe_timeout"`
	// ActionTimeout bounds mutating calls (send, join, create, leave, delete, auth).
	ActionTimeout Duration `toml:"action_timeout" json:"action_timeout"`
	// UploadTimeout bounds file uploads and downloads.
	UploadTimeout Duration `toml:"upload_timeout" json:"upload_timeout"`
	// RequestsPerSecond throttles outbound requests (0 = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// SessionConfig contains refresh scheduler settings.
type SessionConfig struct {
	// RefreshInterval is the minimum time between two polls.
	RefreshInterval Duration `toml:"refresh_interval" json:"refresh_interval"`
	// InputTimeout is how long each loop iteration waits for a typed line.
	InputTimeout Duration `toml:"input_timeout" json:"input_timeout"`
	// IdleQuantum is the sleep at the end of every loop iteration.
	IdleQuantum Duration `toml:"idle_quantum" json:"idle_quantum"`
	// NoticePause is how long important notices stay visible before a redraw.
	NoticePause Duration `toml:"notice_pause" json:"notice_pause"`
	// HistoryLimit caps how many private messages are shown.
	HistoryLimit int `toml:"history_limit" json:"history_limit"`
}

// FilesConfig contains file sharing settings.
type FilesConfig struct {
	// DownloadDir is where /get saves files.
	DownloadDir string `toml:"download_dir" json:"download_dir"`
	// DefaultExpire is the expiry sent with /share when --expire is absent.
	DefaultExpire string `toml:"default_expire" json:"default_expire"`
	// PageSize is the number of files shown per /files page.
	PageSize int `toml:"page_size" json:"page_size"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Path is the log file (empty = ~/.cli-chat/client.log).
	Path string `toml:"path" json:"path"`
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`
}

// UIConfig contains display settings.
type UIConfig struct {
	// NoColor disables colored output regardless of terminal support.
	NoColor bool `toml:"no_color" json:"no_color"`
}

// Duration is a time.Duration that reads and writes as a string ("3s", "100ms")
// in both TOML and JSON.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               "http://127.0.0.1:8080/api.php",
			PollTimeout:       Duration(5 * time.Second),
			ProbeTimeout:      Duration(3 * time.Second),
			ActionTimeout:     Duration(5 * time.Second),
			UploadTimeout:     Duration(30 * time.Second),
			RequestsPerSecond: 20,
		},
		Session: SessionConfig{
			RefreshInterval: Duration(3 * time.Second),
			InputTimeout:    Duration(100 * time.Millisecond),
			IdleQuantum:     Duration(50 * time.Millisecond),
			NoticePause:     Duration(2 * time.Second),
			HistoryLimit:    20,
		},
		Files: FilesConfig{
			DownloadDir:   ".",
			DefaultExpire: "24h",
			PageSize:      10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the client configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cli-chat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns the log file used when log.path is empty.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "client.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	for _, candidate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := candidate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		return LoadFromPath(path)
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	// Server
	if cfg.Server.URL == "" {
		cfg.Server.URL = defaults.Server.URL
	}
	if cfg.Server.PollTimeout == 0 {
		cfg.Server.PollTimeout = defaults.Server.PollTimeout
	}
	if cfg.Server.ProbeTimeout == 0 {
		cfg.Server.ProbeTimeout = defaults.Server.ProbeTimeout
	}
	if cfg.Server.ActionTimeout == 0 {
		cfg.Server.ActionTimeout = defaults.Server.ActionTimeout
	}
	if cfg.Server.UploadTimeout == 0 {
		cfg.Server.UploadTimeout = defaults.Server.UploadTimeout
	}

	// Session
	if cfg.Session.RefreshInterval == 0 {
		cfg.Session.RefreshInterval = defaults.Session.RefreshInterval
	}
	if cfg.Session.InputTimeout == 0 {
		cfg.Session.InputTimeout = defaults.Session.InputTimeout
	}
	if cfg.Session.IdleQuantum == 0 {
		cfg.Session.IdleQuantum = defaults.Session.IdleQuantum
	}
	if cfg.Session.NoticePause == 0 {
		cfg.Session.NoticePause = defaults.Session.NoticePause
	}
	if cfg.Session.HistoryLimit == 0 {
		cfg.Session.HistoryLimit = defaults.Session.HistoryLimit
	}

	// Files
	if cfg.Files.DownloadDir == "" {
		cfg.Files.DownloadDir = defaults.Files.DownloadDir
	}
	if cfg.Files.DefaultExpire == "" {
		cfg.Files.DefaultExpire = defaults.Files.DefaultExpire
	}
	if cfg.Files.PageSize == 0 {
		cfg.Files.PageSize = defaults.Files.PageSize
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Server.URL)
	switch {
	case c.Server.URL == "":
		errs = append(errs, ValidationError{Field: "server.url", Message: "must not be empty"})
	case err != nil:
		errs = append(errs, ValidationError{Field: "server.url", Message: fmt.Sprintf("invalid URL: %v", err)})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	case u.Host == "":
		errs = append(errs, ValidationError{Field: "server.url", Message: "missing host"})
	}

	if c.Server.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "server.requests_per_second", Message: "cannot be negative"})
	}

	durations := []struct {
		field string
		value Duration
	}{
		{"server.poll_timeout", c.Server.PollTimeout},
		{"server.probe_timeout", c.Server.ProbeTimeout},
		{"server.action_timeout", c.Server.ActionTimeout},
		{"server.upload_timeout", c.Server.UploadTimeout},
		{"session.refresh_interval", c.Session.RefreshInterval},
		{"session.input_timeout", c.Session.InputTimeout},
		{"session.idle_quantum", c.Session.IdleQuantum},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, ValidationError{Field: d.field, Message: "must be positive"})
		}
	}
	if c.Session.NoticePause < 0 {
		errs = append(errs, ValidationError{Field: "session.notice_pause", Message: "cannot be negative"})
	}

	if c.Session.HistoryLimit < 1 {
		errs = append(errs, ValidationError{Field: "session.history_limit", Message: "must be at least 1"})
	}

	if c.Files.PageSize < 1 {
		errs = append(errs, ValidationError{Field: "files.page_size", Message: "must be at least 1"})
	}
	if strings.TrimSpace(c.Files.DefaultExpire) == "" {
		errs = append(errs, ValidationError{Field: "files.default_expire", Message: "must not be empty"})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CLICHAT_SERVER_URL: overrides server.url
//   - CLICHAT_REFRESH_INTERVAL: overrides session.refresh_interval ("5s")
//   - CLICHAT_DOWNLOAD_DIR: overrides files.download_dir
//   - CLICHAT_LOG_LEVEL: overrides log.level
//   - CLICHAT_LOG_PATH: overrides log.path
//   - NO_COLOR: any non-empty value sets ui.no_color
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CLICHAT_SERVER_URL"); v != "" {
		c.Server.URL = v
	}

	if v := os.Getenv("CLICHAT_REFRESH_INTERVAL"); v != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err == nil {
			c.Session.RefreshInterval = d
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring CLICHAT_REFRESH_INTERVAL: %v\n", err)
		}
	}

	if v := os.Getenv("CLICHAT_DOWNLOAD_DIR"); v != "" {
		c.Files.DownloadDir = v
	}

	if v := os.Getenv("CLICHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}

	if v := os.Getenv("CLICHAT_LOG_PATH"); v != "" {
		c.Log.Path = v
	}

	if os.Getenv("NO_COLOR") != "" {
		c.UI.NoColor = true
	}
}
