// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across aisle.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - IsTempFile: Recognizes AtomicWriteFile temp files
//
// String Utilities:
//   - TruncateWidth, PadRight, StringWidth: Column-aware layout helpers
//   - WrapWords: Word wrapping for chat bubbles and product blurbs
//
// Text:
//   - FoldKey: Case and accent insensitive search key
//   - TitleCase: Display form of backend slugs
//
// # Usage
//
//	// Persist the cart without risking a torn write
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Fit a product name into a 24-column card
//	name := util.TruncateWidth(product.Name, 24)
package util
