// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// ChatRequest is one turn sent to /channel-chat.
type ChatRequest struct {
	Message    string
	Channel    model.Channel
	CustomerID int
	SessionID  string
	CartItems  []model.CartItem
}

// ChannelChat sends a message and returns the reply formatted for the
// request's channel. The message and identity travel as query parameters;
// the body is the bare cart_items array.
func (c *Client) ChannelChat(ctx context.Context, req ChatRequest) (*model.ChatReply, error) {
	channel := req.Channel
	if channel == "" {
		channel = model.ChannelWeb
	}
	q := url.Values{}
	q.Set("message", req.Message)
	q.Set("channel", string(channel))
	if req.CustomerID > 0 {
		q.Set("customer_id", strconv.Itoa(req.CustomerID))
	}
	if req.SessionID != "" {
		q.Set("session_id", req.SessionID)
	}
	items := req.CartItems
	if items == nil {
		items = []model.CartItem{}
	}

	var reply model.ChatReply
	r := request{op: "channel chat", method: http.MethodPost, path: "/channel-chat", query: q, body: items}
	if err := c.callData(ctx, r, &reply); err != nil {
		return nil, err
	}
	if reply.Channel == "" {
		reply.Channel = channel
	}
	return &reply, nil
}

// SmartChat sends a turn to the orchestrator with full shopping context.
func (c *Client) SmartChat(ctx context.Context, req model.SmartChatRequest) (*model.SmartChatResult, error) {
	if req.CartItems == nil {
		req.CartItems = []model.CartItem{}
	}
	var raw json.RawMessage
	r := request{op: "smart chat", method: http.MethodPost, path: "/smart-chat", body: req}
	if err := c.callData(ctx, r, &raw); err != nil {
		return nil, err
	}

	var result model.SmartChatResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "smart chat: failed to decode data", Cause: err}
	}
	var extra map[string]any
	if err := json.Unmarshal(raw, &extra); err == nil {
		for _, k := range []string{"message", "intent", "suggestions", "recommendations"} {
			delete(extra, k)
		}
		if len(extra) > 0 {
			result.Extra = extra
		}
	}
	return &result, nil
}
