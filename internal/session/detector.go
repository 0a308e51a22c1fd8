// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"time"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
	"github.com/cyrenxxxxx/cli-chat/internal/logging"
)

// roomProber is the part of the backend the detector needs.
type roomProber interface {
	DeletedRooms(ctx context.Context) (map[string]api.DeletedRoom, error)
	RoomInfo(ctx context.Context, roomID string) (*api.RoomInfo, error)
}

// Detector decides whether the room being viewed has been deleted.
//
// Two independent probes are used: the deleted-rooms registry, then
// room_info. Only positive evidence counts; a probe that times out or
// cannot be decoded confirms nothing.
type Detector struct {
	backend roomProber
	timeout time.Duration
	now     func() time.Time
}

// NewDetector creates a detector whose probes each get timeout.
func NewDetector(backend roomProber, timeout time.Duration) *Detector {
	return &Detector{backend: backend, timeout: timeout, now: time.Now}
}

// Check reports whether roomID is gone and when it was deleted.
func (d *Detector) Check(ctx context.Context, roomID string) (bool, time.Time) {
	logger := logging.FromContext(ctx).With("room_id", roomID)

	probeCtx, cancel := context.WithTimeout(ctx, d.timeout)
	registry, err := d.backend.DeletedRooms(probeCtx)
	cancel()
	if err != nil {
		logger.Debug("deleted-rooms probe inconclusive", "error", err)
	} else if entry, ok := registry[roomID]; ok {
		at := d.now()
		if entry.DeletedAt != nil && !entry.DeletedAt.IsZero() {
			at = entry.DeletedAt.Time
		}
		logger.Info("room found in deleted-rooms registry", "deleted_at", at)
		return true, at
	}

	probeCtx, cancel = context.WithTimeout(ctx, d.timeout)
	_, err = d.backend.RoomInfo(probeCtx, roomID)
	cancel()
	// A maintenance advisory is an application error too, but says
	// nothing about the room. Unlike older clients, it is not read as a
	// deletion.
	if api.KindOf(err) == api.KindApplication {
		logger.Info("room_info rejected the room", "error", err)
		return true, d.now()
	}
	if err != nil {
		logger.Debug("room_info probe inconclusive", "error", err)
	}
	return false, time.Time{}
}
