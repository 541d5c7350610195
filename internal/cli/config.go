// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - The "aisle config" command.
//
// Command: config [show|get|set|keys|path|reset]
//
// Examples:
//	aisle config                          Show the effective configuration
//	aisle config get shopper.channel      Print one value
//	aisle config set shopper.channel whatsapp
//	aisle config set ui.theme light
//	aisle config keys                     List every settable key
//	aisle config path                     Print the config file location
//	aisle config reset --yes              Restore defaults
//
// Config commands never contact the backend.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/aisle-tui/internal/config"
)

var configSubcommands = []string{"show", "get", "set", "keys", "path", "reset"}

// ConfigPathData is the structured output of config path.
type ConfigPathData struct {
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
}

// ConfigValue is the structured output of config get and set.
type ConfigValue struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// HandleConfig handles "config" and its subcommands.
func HandleConfig(env *Env) error {
	p := env.Args.Parser("yes", "y")
	cfg := config.Global()

	switch p.Subcommand() {
	case "", "show":
		return env.Out.Emit(cfg, func(w io.Writer) error {
			fmt.Fprintln(w, TitleStyle.Render("aisle configuration"))
			fmt.Fprintln(w, RenderSeparator(41))
			fmt.Fprintln(w, cfg.String())
			return nil
		})

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "aisle config get shopper.channel")
		}
		value, err := cfg.Get(key)
		if err != nil {
			return unknownKeyError(key, err)
		}
		return env.Out.Emit(ConfigValue{Key: key, Value: value}, func(w io.Writer) error {
			fmt.Fprintln(w, value)
			return nil
		})

	case "set":
		return handleConfigSet(env, cfg, p.Positional(1), JoinPositionalArgs(p, 2))

	case "keys":
		keys := config.AllKeys()
		return env.Out.Emit(keys, func(w io.Writer) error {
			for _, k := range keys {
				fmt.Fprintln(w, k)
			}
			return nil
		})

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		_, statErr := os.Stat(path)
		data := ConfigPathData{Path: path, Exists: statErr == nil}
		return env.Out.Emit(data, func(w io.Writer) error {
			fmt.Fprintln(w, path)
			if !data.Exists {
				env.Out.Note("Not created yet; using defaults. Create it with: aisle config set <key> <value>")
			}
			return nil
		})

	case "reset":
		ok, err := RequireConfirmation(env.Out, "reset the configuration to defaults", ConfirmationOptions{
			Yes:        p.BoolFlag("yes") || p.BoolFlag("y"),
			Structured: env.Out.Structured(),
		})
		if err != nil {
			return err
		}
		if !ok {
			ShowCancellationMessage(env.Out)
			return nil
		}
		def := config.Default()
		if err := config.Save(def); err != nil {
			return NewCommandError("config", "reset", "could not write the config file", err)
		}
		config.SetGlobal(def)
		return env.Out.Emit(def, func(w io.Writer) error {
			fmt.Fprintln(w, SuccessStyle.Render("[OK] Configuration reset to defaults"))
			return nil
		})
	}
	return ErrUnknownSubcommand("config", p.Subcommand(), configSubcommands)
}

// handleConfigSet sets one key, validates the whole config and saves it.
// The file is left untouched when validation fails.
func handleConfigSet(env *Env, cfg *config.Config, key, value string) error {
	if key == "" {
		return ErrMissingArgument("key", "aisle config set <key> <value>")
	}
	if value == "" {
		return ErrMissingArgument("value", fmt.Sprintf("aisle config set %s <value>", key))
	}

	next := cfg.Clone()
	if err := next.Set(key, value); err != nil {
		if _, getErr := next.Get(key); getErr != nil {
			return unknownKeyError(key, getErr)
		}
		return NewValidationError(key, value, err.Error())
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := config.Save(next); err != nil {
		return NewCommandError("config", "set", "could not write the config file", err)
	}
	config.SetGlobal(next)

	stored, _ := next.Get(key)
	return env.Out.Emit(ConfigValue{Key: key, Value: stored}, func(w io.Writer) error {
		fmt.Fprintf(w, "%s %s = %v\n", SuccessStyle.Render("[OK]"), key, stored)
		return nil
	})
}

func unknownKeyError(key string, err error) error {
	msg := err.Error()
	if s := suggest(key, config.AllKeys()); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return NewValidationError("key", key, msg)
}
