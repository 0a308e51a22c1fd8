// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
)

func newTestDetector(b *fakeBackend, now time.Time) *Detector {
	d := NewDetector(b, time.Second)
	d.now = func() time.Time { return now }
	return d
}

func TestDetector_RegistryHit(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deletedAt := now.Add(-time.Minute).Truncate(time.Second)
	b := &fakeBackend{
		deletedRooms: func(ctx context.Context) (map[string]api.DeletedRoom, error) {
			ts := api.At(deletedAt)
			return map[string]api.DeletedRoom{"AB12CD": {DeletedAt: &ts}}, nil
		},
		roomInfo: func(ctx context.Context, roomID string) (*api.RoomInfo, error) {
			return nil, timeoutErr()
		},
	}

	deleted, at := newTestDetector(b, now).Check(context.Background(), "AB12CD")
	assert.True(t, deleted)
	assert.True(t, at.Equal(deletedAt))
	assert.NotContains(t, b.Calls(), "room_info AB12CD", "registry hit is conclusive")
}

func TestDetector_RegistryHitWithoutTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &fakeBackend{
		deletedRooms: func(ctx context.Context) (map[string]api.DeletedRoom, error) {
			return map[string]api.DeletedRoom{"AB12CD": {}}, nil
		},
	}

	deleted, at := newTestDetector(b, now).Check(context.Background(), "AB12CD")
	assert.True(t, deleted)
	assert.Equal(t, now, at)
}

func TestDetector_RegistryTimesOutRoomInfoRejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &fakeBackend{
		deletedRooms: func(ctx context.Context) (map[string]api.DeletedRoom, error) {
			return nil, timeoutErr()
		},
		roomInfo: func(ctx context.Context, roomID string) (*api.RoomInfo, error) {
			return nil, appErr("Room not found")
		},
	}

	deleted, at := newTestDetector(b, now).Check(context.Background(), "AB12CD")
	assert.True(t, deleted)
	assert.Equal(t, now, at)
}

func TestDetector_MaintenanceIsNotDeletion(t *testing.T) {
	b := &fakeBackend{
		roomInfo: func(ctx context.Context, roomID string) (*api.RoomInfo, error) {
			return nil, appErr("Server under maintenance")
		},
	}

	deleted, _ := newTestDetector(b, time.Now()).Check(context.Background(), "AB12CD")
	assert.False(t, deleted)
}

func TestDetector_TransportFailuresConfirmNothing(t *testing.T) {
	failures := map[string]error{
		"timeout":    timeoutErr(),
		"connection": &api.Error{Kind: api.KindConnection, Action: "test"},
		"malformed":  &api.Error{Kind: api.KindMalformed, Action: "test"},
		"http":       &api.Error{Kind: api.KindHTTPStatus, Action: "test", Status: 502},
	}
	for name, failure := range failures {
		t.Run(name, func(t *testing.T) {
			b := &fakeBackend{
				deletedRooms: func(ctx context.Context) (map[string]api.DeletedRoom, error) {
					return nil, failure
				},
				roomInfo: func(ctx context.Context, roomID string) (*api.RoomInfo, error) {
					return nil, failure
				},
			}
			deleted, at := newTestDetector(b, time.Now()).Check(context.Background(), "AB12CD")
			assert.False(t, deleted)
			assert.True(t, at.IsZero())
		})
	}
}

func TestDetector_OtherRoomsIgnored(t *testing.T) {
	b := &fakeBackend{
		deletedRooms: func(ctx context.Context) (map[string]api.DeletedRoom, error) {
			return map[string]api.DeletedRoom{"ZZ9999": {}}, nil
		},
	}

	deleted, _ := newTestDetector(b, time.Now()).Check(context.Background(), "AB12CD")
	assert.False(t, deleted)
}

func TestDetector_ProbesHaveDeadlines(t *testing.T) {
	var sawRegistry, sawInfo bool
	b := &fakeBackend{
		deletedRooms: func(ctx context.Context) (map[string]api.DeletedRoom, error) {
			_, sawRegistry = ctx.Deadline()
			return nil, nil
		},
		roomInfo: func(ctx context.Context, roomID string) (*api.RoomInfo, error) {
			_, sawInfo = ctx.Deadline()
			return &api.RoomInfo{ID: roomID}, nil
		},
	}

	deleted, _ := newTestDetector(b, time.Now()).Check(context.Background(), "AB12CD")
	require.False(t, deleted)
	assert.True(t, sawRegistry)
	assert.True(t, sawInfo)
}
