// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation for destructive commands.
//
// One pattern for every command that throws something away:
//  1. --yes proceeds without prompting
//  2. --json/--yaml require --yes (no prompts in structured output)
//  3. a non-TTY stdin requires --yes (can't prompt)
//  4. otherwise ask on the terminal

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// Swapped in tests.
var (
	promptIn  io.Reader = os.Stdin
	canPrompt           = CanPrompt
)

// ConfirmationOptions controls RequireConfirmation.
type ConfirmationOptions struct {
	// Yes is set when --yes was passed.
	Yes bool
	// Structured is set for --json and --yaml output.
	Structured bool
	// Details are shown before the prompt.
	Details map[string]string
}

// RequireConfirmation asks before a destructive action. It returns false
// when the shopper declines and an error when no answer is possible.
func RequireConfirmation(out *Output, action string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if opts.Structured {
		return false, NewValidationErrorWithExample("confirmation", "",
			"structured output cannot prompt; pass --yes to "+action, "--yes")
	}
	if !canPrompt() {
		return false, &TTYRequiredError{Operation: "confirm " + action + " (pass --yes)"}
	}

	if len(opts.Details) > 0 {
		keys := make([]string, 0, len(opts.Details))
		for k := range opts.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(out.Err, RenderField(k+":", opts.Details[k]))
		}
	}
	return PromptYesNo(out.Err, "Really "+action+"?"), nil
}

// PromptYesNo asks question on w and reads y/n from promptIn. Anything
// other than yes counts as no.
func PromptYesNo(w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s %s ", WarningStyle.Render(question), DimStyle.Render("[y/N]"))
	reader := bufio.NewReader(promptIn)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(w)
		return false
	}
	ok, perr := ParseBoolString(answer)
	return perr == nil && ok
}

// ShowCancellationMessage tells the shopper nothing happened.
func ShowCancellationMessage(out *Output) {
	out.Note("Cancelled.")
}
