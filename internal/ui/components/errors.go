// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/assistant"
	"github.com/jeranaias/aisle-tui/internal/catalog"
	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
)

// =============================================================================
// ERROR HINTS
// =============================================================================

// ErrorCategory groups errors by what the shopper can do about them.
type ErrorCategory string

const (
	CategoryOffline  ErrorCategory = "Offline"
	CategoryTimeout  ErrorCategory = "Timeout"
	CategorySession  ErrorCategory = "Session"
	CategoryPayment  ErrorCategory = "Payment"
	CategoryCart     ErrorCategory = "Cart"
	CategoryNotFound ErrorCategory = "Not Found"
	CategoryBackend  ErrorCategory = "Backend"
	CategoryInput    ErrorCategory = "Input"
	CategoryUnknown  ErrorCategory = "Error"
)

// Slug is the category as a lowercase identifier, e.g. "not_found".
func (c ErrorCategory) Slug() string {
	return strings.ToLower(strings.ReplaceAll(string(c), " ", "_"))
}

// ErrorInfo is an error translated for display.
type ErrorInfo struct {
	Category    ErrorCategory
	Title       string
	Message     string
	Suggestions []string
	Retryable   bool
}

// Explain maps err onto a title and next steps. Checkout refusals carry
// the backend's recovery options as suggestions.
func Explain(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}
	info := ErrorInfo{Category: CategoryUnknown, Title: "Something went wrong", Message: err.Error()}

	var pe *checkout.PaymentError
	switch {
	case errors.As(err, &pe):
		info.Category = CategoryPayment
		info.Title = "Payment declined"
		info.Retryable = pe.Retryable
		for _, opt := range pe.RecoveryOptions {
			s := opt.Title()
			if opt.Description != "" {
				s += ": " + opt.Description
			}
			info.Suggestions = append(info.Suggestions, s)
		}
		if len(pe.Alternatives) > 0 {
			alts := make([]string, len(pe.Alternatives))
			for i, m := range pe.Alternatives {
				alts[i] = string(m)
			}
			info.Suggestions = append(info.Suggestions, "Try paying with "+strings.Join(alts, ", "))
		}
	case errors.Is(err, api.ErrUnreachable):
		info.Category = CategoryOffline
		info.Title = "Store is offline"
		info.Retryable = true
		info.Suggestions = []string{
			"Check that the backend is running (backend.url in config)",
			"Browsing continues from the offline catalog",
		}
	case errors.Is(err, api.ErrTimeout):
		info.Category = CategoryTimeout
		info.Title = "Request timed out"
		info.Retryable = true
		info.Suggestions = []string{"Try again in a moment", "Raise backend.timeout_seconds if this keeps happening"}
	case errors.Is(err, api.ErrSessionNotFound):
		info.Category = CategorySession
		info.Title = "Session expired"
		info.Retryable = true
		info.Suggestions = []string{"A new session starts with your next message"}
	case errors.Is(err, checkout.ErrEmptyCart):
		info.Category = CategoryCart
		info.Title = "Cart is empty"
		info.Suggestions = []string{"Add a product from the catalog first"}
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		info.Category = CategoryInput
		info.Title = "Unsupported payment method"
		info.Suggestions = []string{"Use card, paypal, apple_pay, google_pay or gift_card"}
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrNotCached), errors.Is(err, api.ErrNotFound):
		info.Category = CategoryNotFound
		info.Title = "Not found"
	case errors.Is(err, assistant.ErrEmptyMessage):
		info.Category = CategoryInput
		info.Title = "Nothing to send"
	case errors.Is(err, assistant.ErrBusy):
		info.Category = CategoryInput
		info.Title = "Assistant is busy"
		info.Retryable = true
		info.Suggestions = []string{"Wait for the current answer or press Esc to cancel"}
	case errors.Is(err, api.ErrBackend), errors.Is(err, api.ErrInvalidResponse):
		info.Category = CategoryBackend
		info.Title = "Store reported a problem"
		info.Retryable = true
	}
	return info
}

// RenderError draws info as a bordered box no wider than width.
func RenderError(theme *styles.Theme, info ErrorInfo, width int) string {
	boxWidth := width - 4
	if boxWidth < 30 {
		boxWidth = 30
	}
	if boxWidth > 80 {
		boxWidth = 80
	}
	inner := boxWidth - 4

	// ACCESSIBILITY: icon plus text so the state does not rely on color.
	parts := []string{theme.ErrorTitle.Render(styles.StatusIndicators.Error + " " + info.Title)}
	if info.Message != "" {
		parts = append(parts, "", theme.ErrorMessage.Width(inner).Render(info.Message))
	}
	if len(info.Suggestions) > 0 {
		parts = append(parts, "", theme.InfoStyle.Bold(true).Render("Try:"))
		for _, s := range info.Suggestions {
			parts = append(parts, theme.Muted.Width(inner).Render("  - "+s))
		}
	}
	return theme.ErrorBox.Width(boxWidth).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// ErrorToastText is the one-line form used in toasts and status lines.
func ErrorToastText(err error) string {
	info := Explain(err)
	if info.Category == CategoryUnknown || info.Message == "" {
		return info.Message
	}
	return info.Title + ": " + info.Message
}
