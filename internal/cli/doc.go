// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive aisle
// commands.
//
// Every storefront action is also available as a one-shot command, so the
// catalog, cart and assistant can be scripted. Commands share the local
// cart snapshot with the storefront; a cart changed here shows up the next
// time the storefront starts, and live when one is running.
//
// # Key Types
//
//   - Command: Enumeration of all commands and their aliases
//   - Args: Global flags plus the raw command arguments
//   - ArgParser: Per-command flag and positional parsing
//   - Output: Text, JSON or YAML rendering of a command result
//   - Env: What a handler works with (args, app, output)
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil { ... }
//	a, err := app.New(args.AppOptions())
//	env := &cli.Env{Args: args, App: a, Out: cli.NewOutput(args)}
//	if err := cli.Dispatch(ctx, cmd, env); err != nil {
//	    cli.DisplayError(env.Out, err)
//	    os.Exit(cli.GetExitCode(err))
//	}
//
// # Output
//
// --json and --yaml wrap results in the same envelope:
//
//	{"success": true, "data": {...}, "timestamp": "...", "command": "cart"}
//
// Errors use the envelope too, with error, error_type and suggestions.
// Hints go to stderr and are silenced by --quiet.
//
// # Exit Codes
//
//	0  success
//	1  general failure (including declined payments)
//	2  invalid arguments
//	3  invalid configuration
//	4  customer id required
//	5  backend unreachable
//	7  not found
//	8  timeout
package cli
