// aisle - A terminal storefront with an AI shopping assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/aisle-tui/internal/app"
	"github.com/jeranaias/aisle-tui/internal/cli"
	"github.com/jeranaias/aisle-tui/internal/ui/shop"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code.
func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	cli.ConfigureColor(args.NoColor)
	out := cli.NewOutput(args)
	if err != nil {
		cli.DisplayError(out, err)
		return cli.GetExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &cli.Env{Args: args, Out: out}
	if !cmd.NeedsApp() {
		if err := cli.Dispatch(ctx, cmd, env); err != nil {
			cli.DisplayError(out, err)
			return cli.GetExitCode(err)
		}
		return cli.ExitSuccess
	}

	opts := args.AppOptions()
	opts.Watch = cmd == cli.CmdTUI
	a, err := app.New(opts)
	if err != nil {
		cli.DisplayError(out, err)
		return cli.GetExitCode(err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}()
	env.App = a

	if cmd == cli.CmdTUI {
		if !cli.IsTTY() {
			err = &cli.TTYRequiredError{Operation: "open the storefront (try: aisle help)"}
		} else {
			err = shop.Run(ctx, a, styles.NewTheme(a.Config.UI.Theme))
		}
	} else {
		err = cli.Dispatch(ctx, cmd, env)
	}
	if err != nil {
		cli.DisplayError(out, err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
