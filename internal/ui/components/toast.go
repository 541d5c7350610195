// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aisle-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose)
	ToastKindError
	// ToastKindWarning is a warning toast (amber)
	ToastKindWarning
	// ToastKindSuccess is a success toast (emerald)
	ToastKindSuccess
)

// DefaultToastDuration is how long status and success toasts stay up.
const DefaultToastDuration = 4 * time.Second

// ToastTickInterval is how often ToastTickCmd fires.
const ToastTickInterval = 250 * time.Millisecond

// maxToasts is how many toasts are visible at once.
const maxToasts = 4

// Toast is a non-blocking notification that dismisses itself after
// Duration.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// ExpiredAt reports whether the toast should be gone at now.
func (t Toast) ExpiredAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// RemainingAt returns the time left before dismissal.
func (t Toast) RemainingAt(now time.Time) time.Duration {
	return max(t.Duration-now.Sub(t.CreatedAt), 0)
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the visible toasts, newest first. Errors stay up
// twice as long as status toasts and warnings one and a half times.
type ToastManager struct {
	mu       sync.Mutex
	toasts   []Toast
	nextID   int
	duration time.Duration
	now      func() time.Time
}

// NewToastManager creates a manager whose status toasts last d; zero uses
// DefaultToastDuration.
func NewToastManager(d time.Duration) *ToastManager {
	if d <= 0 {
		d = DefaultToastDuration
	}
	return &ToastManager{nextID: 1, duration: d, now: time.Now}
}

// durationFor scales the base duration by kind.
func (m *ToastManager) durationFor(kind ToastKind) time.Duration {
	switch kind {
	case ToastKindError:
		return 2 * m.duration
	case ToastKindWarning:
		return m.duration * 3 / 2
	default:
		return m.duration
	}
}

// Add shows a toast and returns its id.
func (m *ToastManager) Add(kind ToastKind, message string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: m.now(),
		Duration:  m.durationFor(kind),
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[:maxToasts]
	}
	return t.ID
}

// AddError shows an error toast.
func (m *ToastManager) AddError(message string) int { return m.Add(ToastKindError, message) }

// AddWarning shows a warning toast.
func (m *ToastManager) AddWarning(message string) int { return m.Add(ToastKindWarning, message) }

// AddStatus shows an informational toast.
func (m *ToastManager) AddStatus(message string) int { return m.Add(ToastKindStatus, message) }

// AddSuccess shows a success toast.
func (m *ToastManager) AddSuccess(message string) int { return m.Add(ToastKindSuccess, message) }

// Remove dismisses a toast by id.
func (m *ToastManager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissNewest removes the most recent toast.
func (m *ToastManager) DismissNewest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// Tick drops expired toasts and reports whether any remain.
func (m *ToastManager) Tick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0:0]
	for _, t := range m.toasts {
		if !t.ExpiredAt(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return len(m.toasts) > 0
}

// Toasts returns a copy of the visible toasts, newest first.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// HasToasts reports whether any toast is visible.
func (m *ToastManager) HasToasts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts) > 0
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg drives toast expiry.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd schedules the next toast tick.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(ToastTickInterval, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast at most width columns wide.
func RenderToast(t Toast, width int, now time.Time) string {
	maxWidth := 56
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	maxWidth = max(maxWidth, 24)

	var color lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case ToastKindError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case ToastKindWarning:
		color, icon = styles.Amber, styles.StatusIndicators.Warning
	case ToastKindSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	body := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4 - len(icon) - 1).
		Render(t.Message)
	content := lipgloss.JoinHorizontal(lipgloss.Top, iconStyle.Render(icon+" "), body)

	if secs := int(t.RemainingAt(now).Seconds()); secs > 0 {
		hint := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
		content += "\n" + hint.Render(strings.Join([]string{"[x] dismiss", strconv.Itoa(secs) + "s"}, "  "))
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(content)
}

// RenderToastStack renders toasts stacked right-aligned, oldest on top.
func RenderToastStack(toasts []Toast, width int, now time.Time) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderToast(toasts[i], width, now))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}
