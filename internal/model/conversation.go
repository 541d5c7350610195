// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessages is the maximum number of messages kept in a transcript.
// When exceeded, the oldest non-system messages are pruned.
const MaxMessages = 500

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the assistant transcript for one backend session.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Backend session the transcript belongs to. It changes when the
	// session expires and a new one is created mid-conversation.
	SessionID  string  `json:"session_id,omitempty"`
	Channel    Channel `json:"channel,omitempty"`
	CustomerID int     `json:"customer_id,omitempty"`

	Messages []*Message `json:"messages"`
}

// NewConversation creates an empty transcript with a generated ID.
func NewConversation(channel Channel) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateConversationID(),
		CreatedAt: now,
		UpdatedAt: now,
		Channel:   channel,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message and refreshes title and timestamps.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
	c.pruneOldMessages()
}

// AddUserMessage creates and adds a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddReply creates and adds an assistant message from a channel reply.
func (c *Conversation) AddReply(reply ChatReply) *Message {
	msg := NewReplyMessage(reply)
	c.AddMessage(msg)
	return msg
}

// AddError records a failed request.
func (c *Conversation) AddError(err error) *Message {
	msg := NewErrorMessage(err)
	c.AddMessage(msg)
	return msg
}

// AddSystemMessage creates and adds a store notice.
func (c *Conversation) AddSystemMessage(content string) *Message {
	msg := NewSystemMessage(content)
	c.AddMessage(msg)
	return msg
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// LastReply returns the most recent assistant message.
func (c *Conversation) LastReply() *Message {
	return c.lastWithRole(RoleAssistant)
}

// LastUserMessage returns the most recent user message.
func (c *Conversation) LastUserMessage() *Message {
	return c.lastWithRole(RoleUser)
}

func (c *Conversation) lastWithRole(role Role) *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == role {
			return c.Messages[i]
		}
	}
	return nil
}

// QuickReplies returns the suggestions attached to the latest reply, if the
// latest message is a reply.
func (c *Conversation) QuickReplies() []QuickReply {
	last := c.LastMessage()
	if last == nil || last.Role != RoleAssistant {
		return nil
	}
	return last.QuickReplies
}

// Clear removes all messages.
func (c *Conversation) Clear() {
	c.Messages = make([]*Message, 0)
	c.UpdatedAt = time.Now()
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle takes the title from the first user message if not set.
func (c *Conversation) updateTitle() {
	if c.Title != "" {
		return
	}
	if msg := c.firstWithRole(RoleUser); msg != nil {
		c.Title = msg.Preview(50)
	}
}

func (c *Conversation) firstWithRole(role Role) *Message {
	for _, msg := range c.Messages {
		if msg.Role == role {
			return msg
		}
	}
	return nil
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New conversation"
}

// =============================================================================
// LISTING
// =============================================================================

// Preview returns a short preview of the latest user message.
func (c *Conversation) Preview() string {
	if len(c.Messages) == 0 {
		return "Empty conversation"
	}
	msg := c.LastUserMessage()
	if msg == nil {
		msg = c.Messages[0]
	}
	return msg.Preview(100)
}

// Meta returns listing metadata for the conversation.
func (c *Conversation) Meta() ConversationMeta {
	return ConversationMeta{
		ID:           c.ID,
		Title:        c.GetTitle(),
		SessionID:    c.SessionID,
		Channel:      c.Channel,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Preview:      c.Preview(),
	}
}

// ConversationMeta holds lightweight metadata for listing.
type ConversationMeta struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	SessionID    string    `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Channel      Channel   `json:"channel,omitempty" yaml:"channel,omitempty"`
	MessageCount int       `json:"message_count" yaml:"message_count"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
	Preview      string    `json:"preview" yaml:"preview"`
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func generateConversationID() string {
	return "conv_" + uuid.NewString()
}

// Clone creates a deep copy of the conversation. Message slices inside are
// shared; messages are not mutated after being added.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]*Message, len(c.Messages))
	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}
	return &clone
}

// pruneOldMessages keeps system messages and the latest MaxMessages others.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}

	var systemMessages, otherMessages []*Message
	for _, msg := range c.Messages {
		if msg.Role == RoleSystem {
			systemMessages = append(systemMessages, msg)
		} else {
			otherMessages = append(otherMessages, msg)
		}
	}
	if len(otherMessages) > MaxMessages {
		otherMessages = otherMessages[len(otherMessages)-MaxMessages:]
	}

	c.Messages = make([]*Message, 0, len(systemMessages)+len(otherMessages))
	c.Messages = append(c.Messages, systemMessages...)
	c.Messages = append(c.Messages, otherMessages...)
}
