// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the transport client for the chat backend.
//
// The backend exposes a single endpoint. Reads are GET requests carrying an
// action query parameter; writes are POST requests with a JSON body that
// carries an "action" field. A failed call answers with the envelope
// {"status":"error","message":"..."}; every Client method turns that, and
// every transport failure, into an *Error.
//
// # Key Types
//
//   - Client: typed methods, one per backend action
//   - Error: failure taxonomy (timeout, connection, malformed, application,
//     maintenance, non-200 status)
//
// # Usage
//
//	client := api.NewClient(cfg.Server.URL).
//	    WithTimeouts(api.Timeouts{Poll: 5 * time.Second}).
//	    WithRateLimit(20)
//	msgs, err := client.Messages(ctx)
//	if api.IsMaintenance(err) {
//	    // show the advisory
//	}
package api
