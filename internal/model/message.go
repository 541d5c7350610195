// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/aisle-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "Store"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in the assistant transcript.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Assistant replies only
	Channel      Channel        `json:"channel,omitempty"`
	Intent       string         `json:"intent,omitempty"`
	Cards        []ProductCard  `json:"cards,omitempty"`
	QuickReplies []QuickReply   `json:"quick_replies,omitempty"`
	Actions      []ActionButton `json:"actions,omitempty"`
	Cart         *CartWidget    `json:"cart,omitempty"`
	Badge        *LoyaltyBadge  `json:"badge,omitempty"`

	// Round-trip latency of the request that produced the reply
	Latency time.Duration `json:"latency_ns,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewSystemMessage creates a new system notice.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// NewErrorMessage records a failed request in the transcript.
func NewErrorMessage(err error) *Message {
	return NewMessage(RoleError, err.Error())
}

// NewReplyMessage converts a channel reply into a transcript message.
func NewReplyMessage(reply ChatReply) *Message {
	msg := NewMessage(RoleAssistant, reply.Body())
	msg.Channel = reply.Channel
	msg.Intent = reply.Intent
	msg.Cards = reply.Cards()
	msg.QuickReplies = reply.QuickReplies
	msg.Actions = reply.Actions()
	msg.Cart = reply.Cart()
	msg.Badge = reply.LoyaltyBadge
	return msg
}

// Preview returns a truncated single-line preview of the content.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseSpace(m.Content), maxLen)
}

// IsEmpty reports whether the message carries nothing to show.
func (m *Message) IsEmpty() bool {
	return m.Content == "" && len(m.Cards) == 0
}

// HasCards reports whether the reply recommended products.
func (m *Message) HasCards() bool {
	return len(m.Cards) > 0
}

// FormatLatency renders the request latency, e.g. "1.2s" or "340ms".
func (m *Message) FormatLatency() string {
	if m.Latency <= 0 {
		return ""
	}
	if m.Latency < time.Second {
		return m.Latency.Round(time.Millisecond).String()
	}
	return m.Latency.Round(100 * time.Millisecond).String()
}

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
