// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// Channel is the surface a conversation happens on. The backend formats
// assistant replies differently per channel.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelInStore  Channel = "instore"
	ChannelMobile   Channel = "mobile"
)

// Channels lists every supported channel.
func Channels() []Channel {
	return []Channel{ChannelWeb, ChannelWhatsApp, ChannelInStore, ChannelMobile}
}

// ParseChannel validates a channel name, case-insensitively.
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Channels() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q (want web, whatsapp, instore or mobile)", s)
}

// DisplayName returns a human-readable channel name.
func (c Channel) DisplayName() string {
	switch c {
	case ChannelWeb:
		return "Web"
	case ChannelWhatsApp:
		return "WhatsApp"
	case ChannelInStore:
		return "In-store kiosk"
	case ChannelMobile:
		return "Mobile app"
	default:
		return string(c)
	}
}

// Session is a backend chat session handle.
type Session struct {
	ID         string  `json:"session_id" yaml:"session_id"`
	Channel    Channel `json:"channel" yaml:"channel"`
	CustomerID int     `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
}

// SessionInfo is the /session/{id} payload.
type SessionInfo struct {
	ID         string           `json:"session_id" yaml:"session_id"`
	CustomerID *int             `json:"customer_id" yaml:"customer_id"`
	Channel    Channel          `json:"channel" yaml:"channel"`
	Context    map[string]any   `json:"context,omitempty" yaml:"context,omitempty"`
	Messages   []map[string]any `json:"messages,omitempty" yaml:"messages,omitempty"`
	Cart       []CartItem       `json:"cart,omitempty" yaml:"cart,omitempty"`
	IsActive   bool             `json:"is_active" yaml:"is_active"`
	CreatedAt  string           `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt  string           `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// ChannelSwitch is the /session/switch-channel payload.
type ChannelSwitch struct {
	Message          string  `json:"message,omitempty" yaml:"message,omitempty"`
	SessionID        string  `json:"session_id" yaml:"session_id"`
	NewChannel       Channel `json:"new_channel" yaml:"new_channel"`
	ContextPreserved bool    `json:"context_preserved" yaml:"context_preserved"`
	CartItems        int     `json:"cart_items" yaml:"cart_items"`
	Messages         int     `json:"conversation_messages" yaml:"conversation_messages"`
}

// Health is the /health payload.
type Health struct {
	Status    string            `json:"status" yaml:"status"`
	Timestamp string            `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Services  map[string]string `json:"services,omitempty" yaml:"services,omitempty"`
}

// Healthy reports whether the backend called itself healthy.
func (h Health) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy") || strings.EqualFold(h.Status, "ok")
}
