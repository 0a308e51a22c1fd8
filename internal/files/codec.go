// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package files implements the file transfer codec: turning local files into
// transport-safe text for upload, turning downloads back into bytes, and
// choosing where downloads land without overwriting anything.
package files

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"

	"github.com/cyrenxxxxx/cli-chat/internal/util"
)

// MaxUploadSize is the hard ceiling on uploaded files (100 MiB).
const MaxUploadSize int64 = 100 * 1024 * 1024

// maxSaveAttempts bounds the name_N search in SaveDownload.
const maxSaveAttempts = 10000

var (
	// ErrNotFound is returned when the file to upload does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrTooLarge is returned when the file to upload exceeds MaxUploadSize.
	ErrTooLarge = errors.New("file too large")

	// ErrNotRegular is returned for directories and other non-regular files.
	ErrNotRegular = errors.New("not a regular file")

	// ErrCorrupt is returned when downloaded content cannot be decoded.
	ErrCorrupt = errors.New("corrupt file data")
)

// Encoded is a local file ready for upload.
type Encoded struct {
	Name string // base name of the source path
	Data string // base64 content
	Size int64  // size in bytes before encoding
}

// Encode reads the file at path and returns its transport encoding.
// Size is checked before the file is read.
func Encode(path string) (*Encoded, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, path)
	}
	if info.Size() > MaxUploadSize {
		return nil, fmt.Errorf("%w: %s is %s (max %s)", ErrTooLarge, filepath.Base(path),
			FormatSize(info.Size()), FormatSize(MaxUploadSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	// The file may have grown between stat and read.
	if int64(len(data)) > MaxUploadSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, filepath.Base(path))
	}

	return &Encoded{
		Name: filepath.Base(path),
		Data: base64.StdEncoding.EncodeToString(data),
		Size: int64(len(data)),
	}, nil
}

// Decode inverts Encode.
func Decode(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return data, nil
}

// SanitizeName reduces a server-reported file name to a safe local base name.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = norm.NFC.String(strings.TrimSpace(filepath.Base(name)))
	switch name {
	case "", ".", "..", "/":
		return "download"
	}
	return name
}

// SaveDownload writes data into dir under the sanitized name. When the name
// is taken it tries stem_1.ext, stem_2.ext, ... and never overwrites an
// existing file. It returns the path written.
func SaveDownload(dir, name string, data []byte) (string, error) {
	name = SanitizeName(name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		// dotfiles such as ".env" have no extension to keep
		stem, ext = name, ""
	}

	for i := 0; i < maxSaveAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)

		err := util.AtomicCreateFile(path, data, 0o644)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("save %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("save %s: no free name after %d attempts", name, maxSaveAttempts)
}

// =============================================================================
// FORMATTING
// =============================================================================

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders n bytes with 1024-based units up to GB, e.g. "1.5 KB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	exp := 0
	for v := n; v >= 1024 && exp < len(sizeUnits)-1; v /= 1024 {
		exp++
	}
	value := math.Round(float64(n)/math.Pow(1024, float64(exp))*100) / 100

	s := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " " + sizeUnits[exp]
}

// ExpiryRemaining returns the hours left until expiresAt, rounded to one
// decimal. ok is false once the file has expired or less than 0.05h remains.
func ExpiryRemaining(expiresAt, now time.Time) (hours float64, ok bool) {
	hours = math.Round(expiresAt.Sub(now).Hours()*10) / 10
	if hours <= 0 {
		return 0, false
	}
	return hours, true
}

// FormatExpiry renders the expiry column of a file listing.
func FormatExpiry(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil || expiresAt.IsZero() {
		return "never expires"
	}
	hours, ok := ExpiryRemaining(*expiresAt, now)
	if !ok {
		return "expired"
	}
	return "expires in " + strconv.FormatFloat(hours, 'f', 1, 64) + "h"
}

// FormatUploaded renders an upload time relative to now ("3 minutes ago").
func FormatUploaded(at, now time.Time) string {
	if at.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(at, now, "ago", "from now")
}
