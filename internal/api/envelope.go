// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// RESPONSE ENVELOPE
// =============================================================================

// envelope is the part every backend response shares. Success is a
// pointer because /health omits it.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

// text returns the most specific failure text.
func (e envelope) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// dataEnvelope wraps endpoints that nest their payload under "data".
type dataEnvelope struct {
	envelope
	Data json.RawMessage `json:"data"`
}

// errorText pulls a human-readable message out of an error body: the
// envelope's error/message, or FastAPI's "detail".
func errorText(body []byte) string {
	var parsed struct {
		envelope
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body[:min(len(body), 200)]))
	}
	if t := parsed.text(); t != "" {
		return t
	}
	switch d := parsed.Detail.(type) {
	case string:
		return d
	case nil:
		return ""
	default:
		out, _ := json.Marshal(d)
		return string(out)
	}
}

// call sends r and decodes a top-level payload into out after checking the
// envelope. out may be nil.
func (c *Client) call(ctx context.Context, r request, out any) error {
	body, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: r.op + ": failed to decode response", Cause: err}
	}
	if env.failed() {
		return backendFailure(r.op, env.text())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: r.op + ": failed to decode response", Cause: err}
	}
	return nil
}

// callData sends r and decodes the "data" payload into out. Agent payloads
// carry their own success flag; a false one fails the call too.
func (c *Client) callData(ctx context.Context, r request, out any) error {
	var env dataEnvelope
	if err := c.call(ctx, r, &env); err != nil {
		return err
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: r.op + ": response has no data"}
	}

	var inner envelope
	if err := json.Unmarshal(env.Data, &inner); err == nil && inner.failed() {
		return backendFailure(r.op, inner.text())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: fmt.Sprintf("%s: failed to decode data", r.op), Cause: err}
	}
	return nil
}
