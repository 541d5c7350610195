// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for aisle.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - BackendConfig: Shopping assistant API location, timeouts, retries
//   - ShopperConfig: Customer id, channel and checkout preferences
//   - StorageConfig: Where cart state, catalog cache and transcripts live
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (AISLE_*)
//   - ~/.aisle/config.toml
//   - ~/.aisle/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: cfg.Backend.URL})
package config
