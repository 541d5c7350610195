// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend gateway.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error

	// StatusCode is set for ErrTypeHTTPStatus and ErrTypeNotFound.
	StatusCode int
	// RetryAfter is the server's requested delay, if any.
	RetryAfter time.Duration
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinels by type, so errors.Is(err, ErrSessionNotFound)
// holds for any session-not-found error regardless of its message.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Type != ErrTypeUnknown
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeHTTPStatus
	ErrTypeNotFound
	ErrTypeInvalidResponse
	ErrTypeBackend
	ErrTypeSessionNotFound
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeHTTPStatus:
		return "http_status"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeBackend:
		return "backend"
	case ErrTypeSessionNotFound:
		return "session_not_found"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrUnreachable     = &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound        = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
	ErrSessionNotFound = &ClientError{Type: ErrTypeSessionNotFound, Message: "session not found"}
	ErrBackend         = &ClientError{Type: ErrTypeBackend, Message: "backend reported failure"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response"}
)

// sessionNotFoundText is what the session store answers for an unknown or
// expired id.
const sessionNotFoundText = "session not found"

// IsOffline reports whether err means the backend could not be reached at
// all, as opposed to the backend answering with a failure.
func IsOffline(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrTimeout)
}

// TypeOf returns the ErrorType carried by err, or ErrTypeUnknown.
func TypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// backendFailure builds the error for a success:false envelope.
func backendFailure(op, text string) *ClientError {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, sessionNotFoundText) {
		return &ClientError{Type: ErrTypeSessionNotFound, Message: op + ": " + text}
	}
	if strings.HasSuffix(strings.ToLower(text), "not found") {
		return &ClientError{Type: ErrTypeNotFound, Message: op + ": " + text}
	}
	if text == "" {
		text = "backend reported failure"
	}
	return &ClientError{Type: ErrTypeBackend, Message: op + ": " + text}
}

// statusFailure builds the error for a non-2xx response.
func statusFailure(op string, resp *http.Response, text string) *ClientError {
	retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
	msg := fmt.Sprintf("%s: %s", op, resp.Status)
	if text = strings.TrimSpace(text); text != "" {
		msg += ": " + text
	}
	e := &ClientError{
		Type:       ErrTypeHTTPStatus,
		Message:    msg,
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfter,
	}
	if resp.StatusCode == http.StatusNotFound {
		e.Type = ErrTypeNotFound
		if strings.EqualFold(text, sessionNotFoundText) {
			e.Type = ErrTypeSessionNotFound
		}
	}
	return e
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
