// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog serves product listings with an offline fallback.
//
// Every product the backend returns is copied into a local SQLite
// database. When the backend cannot be reached, listings, searches and
// facets are answered from that copy and marked Offline.
//
// Cached search matches each query word against a folded key built from
// the product's name, brand, category and description, so "creme" finds
// "Crème".
package catalog
