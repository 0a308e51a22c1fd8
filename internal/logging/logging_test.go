// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestFromContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")

	ctx := WithRequestID(context.Background(), "req-42")
	FromContext(ctx).Info("poll", "action", "messages")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-42", rec["request_id"])
	assert.Equal(t, "messages", rec["action"])
}

func TestSetOutput_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")

	Logger().Info("hidden")
	assert.Empty(t, buf.String())

	Logger().Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.log")
	closeFn, err := Setup(path, "info")
	require.NoError(t, err)

	WithFields("component", "test").Info("hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), `"component":"test"`)
}
