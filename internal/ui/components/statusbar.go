// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// Status is the storefront's activity state.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusWaiting // assistant is answering
	StatusError
)

// String returns the status label.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "Loading"
	case StatusWaiting:
		return "Thinking"
	case StatusError:
		return "Error"
	default:
		return "Ready"
	}
}

// Icon returns a one-character status indicator.
func (s Status) Icon() string {
	switch s {
	case StatusLoading, StatusWaiting:
		return "~"
	case StatusError:
		return "!"
	default:
		return "*"
	}
}

// Shortcut is a key hint shown on the right of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line of the storefront.
type StatusBar struct {
	Width   int
	Status  Status
	Offline bool

	Channel    model.Channel
	SessionID  string
	CustomerID int
	Tier       model.Tier
	Points     int

	ItemCount int
	Subtotal  float64

	Shortcuts []Shortcut
	theme     *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:   80,
		Status:  StatusReady,
		Channel: model.ChannelWeb,
		theme:   theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetCart updates the cart summary.
func (s *StatusBar) SetCart(items int, subtotal float64) {
	s.ItemCount = items
	s.Subtotal = subtotal
}

// View renders the bar for the current width.
func (s *StatusBar) View() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	var left []string
	left = append(left, s.renderConnection())
	left = append(left, s.renderCart())

	if s.Width >= 60 {
		left = append(left, s.theme.Brand.Render(s.Channel.DisplayName()))
		if s.CustomerID > 0 {
			who := fmt.Sprintf("#%d", s.CustomerID)
			if s.Tier != "" {
				who += " " + string(s.Tier)
				if s.Points > 0 {
					who += fmt.Sprintf(" %s pts", fmtNumber(s.Points))
				}
			}
			left = append(left, s.theme.Brand.Render(who))
		} else {
			left = append(left, s.theme.Muted.Render("guest"))
		}
	}
	if s.Width >= 100 && s.SessionID != "" {
		left = append(left, s.theme.Muted.Render("session "+util.TruncateRunes(s.SessionID, 12)))
	}

	content := strings.Join(left, sep)
	if s.Width >= 60 && len(s.Shortcuts) > 0 {
		right := s.renderShortcuts()
		gap := s.Width - 2 - lipgloss.Width(content) - lipgloss.Width(right)
		if gap > 1 {
			content += strings.Repeat(" ", gap) + right
		}
	}

	return s.theme.StatusBar.Width(s.Width).MaxHeight(1).Render(content)
}

func (s *StatusBar) renderConnection() string {
	label := s.Status.Icon() + " " + s.Status.String()
	if s.Offline {
		return s.theme.StatusOff.Render(styles.StatusIndicators.Warning + " OFFLINE")
	}
	if s.Status == StatusError {
		return s.theme.ErrorStyle.Render(label)
	}
	return s.theme.StatusOnline.Render(label)
}

func (s *StatusBar) renderCart() string {
	if s.ItemCount == 0 {
		return s.theme.Muted.Render("cart empty")
	}
	noun := "items"
	if s.ItemCount == 1 {
		noun = "item"
	}
	return s.theme.TotalValue.Render(fmt.Sprintf("%d %s %s", s.ItemCount, noun, model.FormatPrice(s.Subtotal)))
}

func (s *StatusBar) renderShortcuts() string {
	parts := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	return strings.Join(parts, "  ")
}
