// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Error types accepted by /recover-error.
const (
	RecoverPaymentFailed = "payment_failed"
	RecoverOutOfStock    = "out_of_stock"
	RecoverNetworkError  = "network_error"
)

// RecoveryOption is a suggested way out of a failed flow. The checkout
// agent names the option in Option; /recover-error uses Type.
type RecoveryOption struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Option      string `json:"option,omitempty" yaml:"option,omitempty"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Action      string `json:"action,omitempty" yaml:"action,omitempty"`
}

// Kind returns the option identifier regardless of which key carried it.
func (o RecoveryOption) Kind() string {
	if o.Type != "" {
		return o.Type
	}
	return o.Option
}

// Title returns a display label, falling back to the identifier.
func (o RecoveryOption) Title() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Kind()
}

// RecoveryRequest is the /recover-error body.
type RecoveryRequest struct {
	ErrorType string         `json:"error_type"`
	Context   map[string]any `json:"context"`
	SessionID string         `json:"session_id"`
}

// RecoveryPlan is the /recover-error payload.
type RecoveryPlan struct {
	ErrorType       string           `json:"error_type" yaml:"error_type"`
	RecoveryOptions []RecoveryOption `json:"recovery_options" yaml:"recovery_options"`
	Message         string           `json:"message,omitempty" yaml:"message,omitempty"`
}
