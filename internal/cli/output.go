// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - Text, JSON and YAML output for aisle commands.
//
// Every command builds one data value and hands it to Output.Emit along
// with a text renderer. --json and --yaml wrap the value in the same
// response envelope; text mode calls the renderer. Notes and hints go to
// stderr so stdout stays parseable.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/aisle-tui/internal/ui/components"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format selects how command results are written.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// =============================================================================
// RESPONSE ENVELOPE
// =============================================================================

// JSONResponse is the envelope for --json and --yaml output.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success" yaml:"success"`

	// Data contains the command-specific response data
	Data any `json:"data" yaml:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error" yaml:"error"`

	// ErrorType categorizes the error, e.g. "offline" or "validation_error"
	ErrorType string `json:"error_type,omitempty" yaml:"error_type,omitempty"`

	// Suggestions are next steps for the error
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp" yaml:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
}

// now is replaced in tests.
var now = time.Now

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error response carrying err's category and
// suggested next steps.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Success:     false,
		Error:       &msg,
		ErrorType:   errorType(err),
		Suggestions: components.Explain(err).Suggestions,
		Timestamp:   now().UTC().Format(time.RFC3339),
		Command:     command,
	}
}

// Write encodes the response to w in format f. Text falls back to JSON.
func (r *JSONResponse) Write(w io.Writer, f Format) error {
	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// Output writes command results.
type Output struct {
	Out     io.Writer
	Err     io.Writer
	Format  Format
	Quiet   bool
	Command string
	Width   int
}

// NewOutput creates an Output on stdout and stderr for args.
func NewOutput(args Args) *Output {
	return &Output{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Format:  args.Format(),
		Quiet:   args.Quiet,
		Command: args.Command,
		Width:   GetTerminalWidth(),
	}
}

// Structured reports whether results are JSON or YAML.
func (o *Output) Structured() bool {
	return o.Format != FormatText
}

// Emit writes data. Text mode calls text; structured modes encode data
// in the response envelope.
func (o *Output) Emit(data any, text func(w io.Writer) error) error {
	if o.Structured() {
		return NewJSONResponse(o.Command, data).Write(o.Out, o.Format)
	}
	return text(o.Out)
}

// Note writes a hint to stderr unless --quiet is set.
func (o *Output) Note(format string, a ...any) {
	if o.Quiet {
		return
	}
	fmt.Fprintln(o.Err, DimStyle.Render(fmt.Sprintf(format, a...)))
}

// Warn writes a warning to stderr. Warnings are not silenced by --quiet.
func (o *Output) Warn(format string, a ...any) {
	fmt.Fprintln(o.Err, WarningStyle.Render("[!] "+fmt.Sprintf(format, a...)))
}
