// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindTimeout means the call exceeded its deadline.
	KindTimeout Kind = iota + 1
	// KindConnection means the request never produced a response.
	KindConnection
	// KindMalformed means the response body could not be decoded.
	KindMalformed
	// KindApplication means the backend answered with an error envelope.
	KindApplication
	// KindMaintenance is an application error announcing maintenance.
	KindMaintenance
	// KindHTTPStatus means the backend answered with a non-200 status.
	KindHTTPStatus
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindMalformed:
		return "malformed"
	case KindApplication:
		return "application"
	case KindMaintenance:
		return "maintenance"
	case KindHTTPStatus:
		return "http_status"
	default:
		return "unknown"
	}
}

// roomDeletedMarker is what the backend puts in a send/join error when the
// room was removed by an administrator.
const roomDeletedMarker = "Room has been deleted"

// Error is returned by every Client method on failure.
type Error struct {
	Kind    Kind
	Action  string
	Message string // backend message for application errors
	Status  int    // HTTP status for KindHTTPStatus
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindApplication, KindMaintenance:
		return fmt.Sprintf("%s: %s", e.Action, e.Message)
	case KindHTTPStatus:
		return fmt.Sprintf("%s: server error (HTTP %d)", e.Action, e.Status)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Action, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Action, e.Kind)
	}
}

// Unwrap returns the underlying transport or decode error.
func (e *Error) Unwrap() error { return e.Err }

// newApplicationError builds the error for an {status:"error"} envelope.
func newApplicationError(action, message string) *Error {
	kind := KindApplication
	if strings.Contains(strings.ToLower(message), "maintenance") {
		kind = KindMaintenance
	}
	return &Error{Kind: kind, Action: action, Message: message}
}

// KindOf returns the Kind of an api error, or 0 for any other error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsMaintenance reports whether err is a maintenance advisory.
func IsMaintenance(err error) bool { return KindOf(err) == KindMaintenance }

// IsTimeout reports whether err is a call that ran out of time.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsApplication reports whether the backend itself rejected the call,
// as opposed to the call failing in transit.
func IsApplication(err error) bool {
	k := KindOf(err)
	return k == KindApplication || k == KindMaintenance
}

// IsRoomDeleted reports whether the backend rejected the call because the
// target room no longer exists.
func IsRoomDeleted(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) || !IsApplication(err) {
		return false
	}
	return strings.Contains(apiErr.Message, roomDeletedMarker)
}

// Describe returns the short text shown to the user for a failed call.
func Describe(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case KindTimeout:
		return "Connection timeout"
	case KindConnection:
		return "Connection error"
	case KindMalformed:
		return "Invalid server response"
	case KindHTTPStatus:
		return fmt.Sprintf("Server error: %d", apiErr.Status)
	default:
		if apiErr.Message == "" {
			return "Request failed"
		}
		return apiErr.Message
	}
}
