// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// LobbyID is the pseudo-room meaning "no room". It is never sent to the
// backend as an explicit room id.
const LobbyID = "lobby"

// Timestamp is an epoch-seconds value. The backend emits it as an integer,
// a float, or a numeric string depending on the action.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	sec, frac := math.Modf(f)
	t.Time = time.Unix(int64(sec), int64(frac*1e9))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// At returns a Timestamp for tm.
func At(tm time.Time) Timestamp { return Timestamp{Time: tm} }

// Message is one public or room chat line.
type Message struct {
	Sender    string    `json:"sender"`
	Body      string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

// PrivateMessage is a directed message between two users.
type PrivateMessage struct {
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Body      string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

// RoomInfo describes a room for the room header.
type RoomInfo struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Creator   string    `json:"creator"`
	CreatedAt Timestamp `json:"created_at"`
	Users     Members   `json:"users"`
}

// Members is the user list of a room. The backend encodes it as an object
// keyed by index once entries have been removed from the middle.
type Members []string

// UnmarshalJSON implements json.Unmarshaler.
func (m *Members) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	switch {
	case trimmed == "null":
		*m = nil
		return nil
	case strings.HasPrefix(trimmed, "{"):
		var byKey map[string]string
		if err := json.Unmarshal(b, &byKey); err != nil {
			return err
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.Atoi(keys[i])
			b, errB := strconv.Atoi(keys[j])
			if errA == nil && errB == nil {
				return a < b
			}
			return keys[i] < keys[j]
		})
		out := make(Members, 0, len(keys))
		for _, k := range keys {
			out = append(out, byKey[k])
		}
		*m = out
		return nil
	default:
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*m = list
		return nil
	}
}

// UserRoom is an entry of the rooms a user has joined.
type UserRoom struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt Timestamp `json:"joined_at"`
}

// DeletedRoom is an entry of the deleted-rooms registry.
type DeletedRoom struct {
	DeletedAt *Timestamp `json:"deleted_at,omitempty"`
}

// Location says where a shared file is visible: "public", "room:<id>" or
// "private:<user>".
type Location string

// Room returns the room id for a room-scoped file.
func (l Location) Room() (string, bool) {
	return strings.CutPrefix(string(l), "room:")
}

// Private returns the recipient for a private file.
func (l Location) Private() (string, bool) {
	return strings.CutPrefix(string(l), "private:")
}

// Label is the human readable location.
func (l Location) Label() string {
	if id, ok := l.Room(); ok {
		return "Room " + id
	}
	if user, ok := l.Private(); ok {
		return "Private to " + user
	}
	return "Public"
}

// FileRecord describes a shared file.
type FileRecord struct {
	Code             string     `json:"code"`
	OriginalFilename string     `json:"original_filename"`
	Size             int64      `json:"size"`
	Sender           string     `json:"sender"`
	UploadedAt       Timestamp  `json:"uploaded_at"`
	ExpiresAt        *Timestamp `json:"expires_at"`
	Location         Location   `json:"location"`
	Downloads        int        `json:"downloads"`
}

// Upload is an upload_file request.
type Upload struct {
	Filename  string
	Data      string // transport-encoded content
	Size      int64
	Sender    string
	Expire    string
	RoomID    string // empty or LobbyID means not room scoped
	PrivateTo string
}

// DownloadedFile is the payload of download_file.
type DownloadedFile struct {
	Filename string `json:"filename"`
	Data     string `json:"file_data"`
	Size     int64  `json:"size"`
}

// isRoom reports whether id names a real room.
func isRoom(id string) bool {
	return id != "" && id != LobbyID
}
