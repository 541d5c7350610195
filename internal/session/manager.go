// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/model"
)

// =============================================================================
// BACKEND
// =============================================================================

// Backend is the part of the gateway the manager needs. *api.Client
// implements it.
type Backend interface {
	CreateSession(ctx context.Context, customerID int, channel model.Channel) (*model.Session, error)
	SwitchChannel(ctx context.Context, sessionID string, channel model.Channel) (*model.ChannelSwitch, error)
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Change describes a new session identity. An empty SessionID means the
// session was dropped and the next request creates a fresh one.
type Change struct {
	SessionID  string
	Channel    model.Channel
	CustomerID int
}

// Manager owns the backend session id. Sessions are created lazily on the
// first request and replaced after the idle timeout.
type Manager struct {
	// mu is held across CreateSession so concurrent callers share one
	// in-flight creation.
	mu sync.Mutex

	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	// Session tracking
	sessionID    string
	channel      model.Channel
	customerID   int
	startTime    time.Time
	lastActivity time.Time

	idleTimeout time.Duration

	onChange func(Change)
}

// Config holds configuration for the session manager.
type Config struct {
	// IdleTimeout drops the session after this much inactivity (default: 30 minutes)
	IdleTimeout time.Duration

	// CustomerID is sent with new sessions; 0 is a guest.
	CustomerID int

	// Channel is the initial conversation channel (default: web)
	Channel model.Channel

	Logger *zap.Logger
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 30 * time.Minute,
		Channel:     model.ChannelWeb,
	}
}

// NewManager creates a session manager. No backend call is made until
// Ensure.
func NewManager(backend Backend, cfg Config) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	if cfg.Channel == "" {
		cfg.Channel = model.ChannelWeb
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		backend:     backend,
		logger:      logger.Named("session"),
		now:         time.Now,
		channel:     cfg.Channel,
		customerID:  cfg.CustomerID,
		idleTimeout: cfg.IdleTimeout,
	}
}

// OnChange registers fn to be called after the session id, channel or
// customer changes. It runs outside the manager's lock.
func (m *Manager) OnChange(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionID returns the current session id, or "" if none is live.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expiredLocked() {
		return ""
	}
	return m.sessionID
}

// Channel returns the current channel.
func (m *Manager) Channel() model.Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channel
}

// CustomerID returns the customer new sessions are created for.
func (m *Manager) CustomerID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customerID
}

// IsExpired reports whether there is no usable session.
func (m *Manager) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiredLocked()
}

func (m *Manager) expiredLocked() bool {
	return m.sessionID == "" || m.now().Sub(m.lastActivity) >= m.idleTimeout
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Ensure returns a live session id, creating one if there is none or the
// current one has been idle too long.
func (m *Manager) Ensure(ctx context.Context) (string, error) {
	m.mu.Lock()
	if !m.expiredLocked() {
		id := m.sessionID
		m.mu.Unlock()
		return id, nil
	}

	if m.sessionID != "" {
		m.logger.Debug("session idle timeout", zap.String("session_id", m.sessionID))
	}
	sess, err := m.backend.CreateSession(ctx, m.customerID, m.channel)
	if err != nil {
		m.sessionID = ""
		m.mu.Unlock()
		return "", fmt.Errorf("create session: %w", err)
	}
	if sess.ID == "" {
		m.sessionID = ""
		m.mu.Unlock()
		return "", errors.New("create session: backend returned no session id")
	}

	now := m.now()
	m.sessionID = sess.ID
	if sess.Channel != "" {
		m.channel = sess.Channel
	}
	m.startTime = now
	m.lastActivity = now
	change, notify := m.changeLocked()
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", change.SessionID),
		zap.String("channel", string(change.Channel)))
	notify(change)
	return change.SessionID, nil
}

// Touch records activity, pushing back the idle timeout.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessionID != "" {
		m.lastActivity = m.now()
	}
}

// Invalidate forgets the session; the next Ensure creates a new one.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	if m.sessionID == "" {
		m.mu.Unlock()
		return
	}
	m.logger.Debug("session invalidated", zap.String("session_id", m.sessionID))
	m.sessionID = ""
	change, notify := m.changeLocked()
	m.mu.Unlock()
	notify(change)
}

// Restore adopts a session id saved by an earlier run. It is treated as
// freshly active; the backend rejects it if it is gone, and the caller
// then invalidates.
func (m *Manager) Restore(sessionID string, channel model.Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sessionID == "" {
		return
	}
	now := m.now()
	m.sessionID = sessionID
	if channel != "" {
		m.channel = channel
	}
	m.startTime = now
	m.lastActivity = now
}

// SetCustomer changes the shopper. Sessions belong to one customer, so a
// different id drops the current session.
func (m *Manager) SetCustomer(customerID int) {
	m.mu.Lock()
	if customerID == m.customerID {
		m.mu.Unlock()
		return
	}
	m.customerID = customerID
	m.sessionID = ""
	change, notify := m.changeLocked()
	m.mu.Unlock()
	notify(change)
}

// SwitchChannel moves the conversation to ch. With a live session the
// backend carries the context over; otherwise only the local channel
// changes. The returned switch is nil when no backend call was made.
func (m *Manager) SwitchChannel(ctx context.Context, ch model.Channel) (*model.ChannelSwitch, error) {
	parsed, err := model.ParseChannel(string(ch))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if parsed == m.channel {
		m.mu.Unlock()
		return nil, nil
	}

	var result *model.ChannelSwitch
	if !m.expiredLocked() {
		result, err = m.backend.SwitchChannel(ctx, m.sessionID, parsed)
		switch {
		case errors.Is(err, api.ErrSessionNotFound):
			m.logger.Debug("session gone during channel switch", zap.String("session_id", m.sessionID))
			m.sessionID = ""
			result = nil
		case err != nil:
			m.mu.Unlock()
			return nil, fmt.Errorf("switch channel: %w", err)
		default:
			if result.SessionID != "" {
				m.sessionID = result.SessionID
			}
			m.lastActivity = m.now()
		}
	}
	m.channel = parsed
	change, notify := m.changeLocked()
	m.mu.Unlock()

	notify(change)
	return result, nil
}

// changeLocked captures the current identity and the callback to report
// it with. Callers invoke the returned func after unlocking.
func (m *Manager) changeLocked() (Change, func(Change)) {
	change := Change{SessionID: m.sessionID, Channel: m.channel, CustomerID: m.customerID}
	fn := m.onChange
	if fn == nil {
		fn = func(Change) {}
	}
	return change, fn
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status represents the current session status.
type Status struct {
	SessionID     string
	Channel       model.Channel
	CustomerID    int
	StartTime     time.Time
	Duration      time.Duration
	IdleTime      time.Duration
	RemainingTime time.Duration
	IsExpired     bool
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		SessionID:  m.sessionID,
		Channel:    m.channel,
		CustomerID: m.customerID,
		IsExpired:  m.expiredLocked(),
	}
	if m.sessionID == "" {
		return st
	}

	now := m.now()
	idle := now.Sub(m.lastActivity)
	remaining := m.idleTimeout - idle
	if remaining < 0 {
		remaining = 0
	}
	st.StartTime = m.startTime
	st.Duration = now.Sub(m.startTime)
	st.IdleTime = idle
	st.RemainingTime = remaining
	return st
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d >= time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
