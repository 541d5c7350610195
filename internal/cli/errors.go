// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, exit codes and error display for aisle commands.
//
// Handlers always return errors; main displays them once through
// DisplayError and exits with GetExitCode.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/app"
	"github.com/jeranaias/aisle-tui/internal/catalog"
	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/config"
	"github.com/jeranaias/aisle-tui/internal/storage"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error, including declined payments
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates the command needs a customer id
	ExitAuthError = 4
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "cart", "checkout")
	Action  string // Action being performed (e.g., "add", "sync")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "product", "conversation")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Example: example,
	}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// ErrInvalidFormat creates an error for invalid format.
func ErrInvalidFormat(field, value, expected string) error {
	return NewValidationErrorWithExample(field, value, "invalid format", expected)
}

// ErrUnknownSubcommand reports a subcommand the command does not have.
func ErrUnknownSubcommand(command, sub string, valid []string) error {
	example := fmt.Sprintf("aisle %s [%s]", command, strings.Join(valid, "|"))
	if s := suggest(sub, valid); s != "" {
		example = fmt.Sprintf("aisle %s %s", command, s)
	}
	return NewValidationErrorWithExample(command+" subcommand", sub, "unknown subcommand", example)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		configErr     config.ValidationError
		configErrs    config.ValidateErrors
		paymentErr    *checkout.PaymentError
	)
	switch {
	case errors.As(err, &validationErr):
		return ExitUsageError
	case errors.As(err, &configErr), errors.As(err, &configErrs):
		return ExitConfigError
	case errors.Is(err, app.ErrNoCustomer):
		return ExitAuthError
	case errors.As(err, &paymentErr):
		return ExitGeneralError
	case errors.Is(err, api.ErrUnreachable):
		return ExitNetworkError
	case errors.Is(err, api.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.As(err, &notFoundErr),
		errors.Is(err, api.ErrNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrNotCached),
		errors.Is(err, storage.ErrConversationNotFound):
		return ExitNotFoundError
	}
	return ExitGeneralError
}

// errorType names err's category for structured output.
func errorType(err error) string {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		commandErr    *CommandError
	)
	switch {
	case errors.As(err, &validationErr):
		return "validation_error"
	case errors.As(err, &notFoundErr):
		return "not_found_error"
	case errors.As(err, &commandErr):
		return "command_error"
	}
	if info := components.Explain(err); info.Category != components.CategoryUnknown {
		return info.Category.Slug()
	}
	return "generic_error"
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError shows err the way out's format calls for. Structured modes
// write an error envelope to stdout; text mode writes to stderr with any
// suggested next steps.
func DisplayError(out *Output, err error) {
	if err == nil {
		return
	}
	if out.Structured() {
		_ = NewJSONErrorResponse(out.Command, err).Write(out.Out, out.Format)
		return
	}
	writeErrorText(out.Err, err, out.Quiet)
}

func writeErrorText(w io.Writer, err error, quiet bool) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
	if !quiet {
		info := components.Explain(err)
		if info.Category != components.CategoryUnknown {
			for _, s := range info.Suggestions {
				fmt.Fprintf(w, "  %s %s\n", DimStyle.Render("-"), s)
			}
		}
	}
	fmt.Fprintln(w)
}
