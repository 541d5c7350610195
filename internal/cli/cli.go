// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for aisle.
package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/app"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdProducts
	CmdSearch
	CmdFilters
	CmdProduct
	CmdCart
	CmdWishlist
	CmdCheckout
	CmdLoyalty
	CmdRecommend
	CmdInventory
	CmdChat
	CmdChannel
	CmdConversations
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// commandNames maps every accepted spelling to its command.
var commandNames = map[string]Command{
	"tui":           CmdTUI,
	"shop":          CmdTUI,
	"products":      CmdProducts,
	"ls":            CmdProducts,
	"search":        CmdSearch,
	"find":          CmdSearch,
	"filters":       CmdFilters,
	"product":       CmdProduct,
	"show":          CmdProduct,
	"cart":          CmdCart,
	"wishlist":      CmdWishlist,
	"saved":         CmdWishlist,
	"checkout":      CmdCheckout,
	"loyalty":       CmdLoyalty,
	"points":        CmdLoyalty,
	"recommend":     CmdRecommend,
	"inventory":     CmdInventory,
	"stock":         CmdInventory,
	"chat":          CmdChat,
	"ask":           CmdChat,
	"channel":       CmdChannel,
	"conversations": CmdConversations,
	"convos":        CmdConversations,
	"status":        CmdStatus,
	"s":             CmdStatus,
	"config":        CmdConfig,
	"version":       CmdVersion,
	"--version":     CmdVersion,
	"help":          CmdHelp,
	"-h":            CmdHelp,
	"--help":        CmdHelp,
}

// NeedsApp reports whether the command talks to the store or backend.
func (c Command) NeedsApp() bool {
	switch c {
	case CmdConfig, CmdVersion, CmdHelp, CmdUnknown:
		return false
	}
	return true
}

// Args holds the global flags and the command's remaining arguments.
type Args struct {
	// Command is the command word as typed, e.g. "cart".
	Command string
	// Subcommand is the first argument after the command, e.g. "add".
	Subcommand string
	// Raw is everything after the command word with global flags removed.
	Raw []string

	JSON       bool
	YAML       bool
	Quiet      bool
	Verbose    bool
	NoColor    bool
	URL        string
	CustomerID int
	Channel    string
}

// Format returns the output format the flags ask for. --yaml wins over --json.
func (a Args) Format() Format {
	switch {
	case a.YAML:
		return FormatYAML
	case a.JSON:
		return FormatJSON
	default:
		return FormatText
	}
}

// Parser parses the command's own arguments.
func (a Args) Parser(bools ...string) *ArgParser {
	return NewArgParser(a.Raw, bools...)
}

// AppOptions converts the global flags into app options.
func (a Args) AppOptions() app.Options {
	return app.Options{
		Version:    Version,
		URL:        a.URL,
		CustomerID: a.CustomerID,
		Channel:    a.Channel,
		Verbose:    a.Verbose,
	}
}

const usageText = `aisle - shop from the terminal with an AI assistant

Usage:
  aisle [global flags] [command] [arguments]

Storefront:
  aisle                          Open the storefront (same as "aisle tui")

Catalog:
  products [--category C] [--brand B] [--min N] [--max N]
           [--sort relevance|price_low|price_high|rating] [--limit N] [--in-stock]
  search <query> [same flags as products]
  filters                        Categories, brands and price range
  product <id>                   Product details

Cart:
  cart [show]                    Show the cart
  cart add <id> [qty]            Add a product
  cart remove <id>               Remove a product
  cart qty <id> <n>              Set a quantity (0 removes)
  cart clear [--yes]             Empty the cart
  cart sync                      Push the local cart to the store session
  wishlist [show|add <id>|remove <id>|move <id>]

Checkout:
  checkout [--pay card|paypal|apple_pay|google_pay|gift_card]
           [--coupon CODE] [--no-loyalty] [--reserve] [--location L] [--dry-run]
  loyalty                        Tier, points and benefits
  loyalty offers                 Personalized offers
  loyalty points <amount>        Points a purchase would earn

Discovery:
  recommend [--occasion O] [--category C] [--budget N]
  inventory <id...> [--location L] [--qty N]

Assistant:
  chat                           Interactive chat (history kept between runs)
  chat <message>                 Ask one question and exit
  chat --smart <message> [--budget N] [--category C] [--coupon CODE]
           [--pay METHOD] [--location L] [--no-loyalty]
                                 One question with budget, cart and coupon context
  channel [web|whatsapp|instore|mobile] [--save]
  conversations [list] [--search Q]  Saved transcripts
  conversations show <id|n>      Print one transcript
  conversations export <id|n> [--out FILE]
  conversations resume <id|n>    Continue a transcript in the chat REPL
  conversations delete <id|n> [--yes]
  conversations clear [--yes]

Other:
  status                         Backend, session and cart status
  config [show|get <key>|set <key> <value>|keys|path|reset]
  version
  help

Global flags:
  --json             JSON output
  --yaml             YAML output
  -q, --quiet        Only print results
  -v, --verbose      Mirror debug logs to stderr
  --url URL          Backend URL (default from config)
  --customer ID      Customer id for loyalty and checkout
  --channel NAME     Shopping channel
  --no-color         Disable colors

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses argv (without the program name) into a command and its
// arguments. No arguments opens the storefront.
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdUnknown, args, err
	}
	if len(remaining) == 0 {
		args.Command = "tui"
		return CmdTUI, args, nil
	}

	word := strings.ToLower(remaining[0])
	args.Command = word
	args.Raw = remaining[1:]
	if len(args.Raw) > 0 {
		args.Subcommand = strings.ToLower(args.Raw[0])
	}

	cmd, ok := commandNames[word]
	if !ok {
		example := "aisle help"
		if s := SuggestCommand(word); s != "" {
			example = "aisle " + s
		}
		return CmdUnknown, args, NewValidationErrorWithExample("command", word, "unknown command", example)
	}
	return cmd, args, nil
}

// parseGlobalFlags extracts global flags from anywhere in argv.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var (
		remaining []string
		args      Args
	)

	value := func(i *int, name, arg string) (string, error) {
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, nil
		}
		if *i+1 >= len(argv) {
			return "", ErrMissingArgument(name, "aisle "+name+" <value>")
		}
		*i++
		return argv[*i], nil
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		name, _, _ := strings.Cut(arg, "=")
		switch name {
		case "--json":
			args.JSON = true
		case "--yaml":
			args.YAML = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--no-color":
			args.NoColor = true
		case "--url":
			v, err := value(&i, name, arg)
			if err != nil {
				return nil, args, err
			}
			args.URL = v
		case "--channel":
			v, err := value(&i, name, arg)
			if err != nil {
				return nil, args, err
			}
			args.Channel = v
		case "--customer":
			v, err := value(&i, name, arg)
			if err != nil {
				return nil, args, err
			}
			id, err := strconv.Atoi(v)
			if err != nil || id < 0 {
				return nil, args, NewValidationErrorWithExample("--customer", v, "must be a customer number", "--customer 1001")
			}
			args.CustomerID = id
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args, nil
}

// =============================================================================
// DISPATCH
// =============================================================================

// Env is what a command handler works with. App is nil for commands that
// do not need the backend.
type Env struct {
	Args Args
	App  *app.App
	Out  *Output
}

// Dispatch runs cmd. The storefront command is handled by the caller.
func Dispatch(ctx context.Context, cmd Command, env *Env) error {
	switch cmd {
	case CmdProducts:
		return HandleProducts(ctx, env)
	case CmdSearch:
		return HandleSearch(ctx, env)
	case CmdFilters:
		return HandleFilters(ctx, env)
	case CmdProduct:
		return HandleProduct(ctx, env)
	case CmdCart:
		return HandleCart(ctx, env)
	case CmdWishlist:
		return HandleWishlist(ctx, env)
	case CmdCheckout:
		return HandleCheckout(ctx, env)
	case CmdLoyalty:
		return HandleLoyalty(ctx, env)
	case CmdRecommend:
		return HandleRecommend(ctx, env)
	case CmdInventory:
		return HandleInventory(ctx, env)
	case CmdChat:
		return HandleChat(ctx, env)
	case CmdChannel:
		return HandleChannel(ctx, env)
	case CmdConversations:
		return HandleConversations(ctx, env)
	case CmdStatus:
		return HandleStatus(ctx, env)
	case CmdConfig:
		return HandleConfig(env)
	case CmdVersion:
		return HandleVersion(env)
	case CmdHelp:
		PrintUsage(env.Out.Out)
		return nil
	}
	return NewValidationError("command", env.Args.Command, "not a command")
}

// =============================================================================
// VERSION
// =============================================================================

// VersionData is the version command's structured output.
type VersionData struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// HandleVersion handles the "version" command.
func HandleVersion(env *Env) error {
	data := VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	return env.Out.Emit(data, func(w io.Writer) error {
		fmt.Fprintf(w, "aisle version %s\n", data.Version)
		fmt.Fprintf(w, "  Git commit: %s\n", data.GitCommit)
		fmt.Fprintf(w, "  Build date: %s\n", data.BuildDate)
		fmt.Fprintf(w, "  Go:         %s\n", data.GoVersion)
		return nil
	})
}
