// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestNewTheme_NoColorIsPlain(t *testing.T) {
	theme := NewTheme(&bytes.Buffer{}, true)

	assert.Equal(t, termenv.Ascii, theme.ColorProfile)
	assert.Equal(t, "PUBLIC CHAT", theme.Title.Render("PUBLIC CHAT"))
	assert.Equal(t, "oops", theme.Error.Render("oops"))
}

func TestStatusIndicators_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range []string{StatusIndicators.Success, StatusIndicators.Error, StatusIndicators.Warning, StatusIndicators.Info} {
		assert.NotEmpty(t, s)
		assert.False(t, seen[s])
		seen[s] = true
	}
}
