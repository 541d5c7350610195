// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// =============================================================================
// HEALTH
// =============================================================================

// Health fetches /health.
func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	var h model.Health
	if err := c.call(ctx, request{op: "health", method: http.MethodGet, path: "/health"}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// SystemStatus is the /system/status payload.
type SystemStatus struct {
	Status     string            `json:"status" yaml:"status"`
	Components map[string]any    `json:"components" yaml:"components"`
	Channels   map[string]string `json:"channels" yaml:"channels"`
	Version    string            `json:"version" yaml:"version"`
	Uptime     string            `json:"uptime" yaml:"uptime"`
}

// SystemStatus fetches per-component status.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var s SystemStatus
	if err := c.call(ctx, request{op: "system status", method: http.MethodGet, path: "/system/status"}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// CreateSession opens a backend chat session. customerID 0 means a guest.
func (c *Client) CreateSession(ctx context.Context, customerID int, channel model.Channel) (*model.Session, error) {
	q := url.Values{}
	if customerID > 0 {
		q.Set("customer_id", strconv.Itoa(customerID))
	}
	if channel == "" {
		channel = model.ChannelWeb
	}
	q.Set("channel", string(channel))

	var resp struct {
		SessionID string        `json:"session_id"`
		Channel   model.Channel `json:"channel"`
	}
	r := request{op: "create session", method: http.MethodPost, path: "/session/create", query: q}
	if err := c.call(ctx, r, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "create session: response has no session_id"}
	}
	if resp.Channel == "" {
		resp.Channel = channel
	}
	return &model.Session{ID: resp.SessionID, Channel: resp.Channel, CustomerID: customerID}, nil
}

// GetSession fetches the stored context of a session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*model.SessionInfo, error) {
	var info model.SessionInfo
	r := request{op: "get session", method: http.MethodGet, path: "/session/" + url.PathEscape(sessionID)}
	if err := c.callData(ctx, r, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SwitchChannel moves a session to another channel, keeping its context.
func (c *Client) SwitchChannel(ctx context.Context, sessionID string, channel model.Channel) (*model.ChannelSwitch, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)
	q.Set("new_channel", string(channel))

	var sw model.ChannelSwitch
	r := request{op: "switch channel", method: http.MethodPost, path: "/session/switch-channel", query: q}
	if err := c.call(ctx, r, &sw); err != nil {
		return nil, err
	}
	return &sw, nil
}
