// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the cli-chat client.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth, PadWidth: display-width aware truncation and padding
//
// File Operations:
//   - AtomicCreateFile: crash-safe file creation that never overwrites
//
// # Usage
//
//	// Column-align the picker numbers
//	cell := util.PadWidth("[3]", 5)
//
//	// Save a download without clobbering an existing file
//	err := util.AtomicCreateFile(path, data, 0644)
package util
