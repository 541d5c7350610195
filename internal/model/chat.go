// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// ASSISTANT REPLY
// =============================================================================

// ChatReply is the channel-formatted assistant response from /channel-chat.
// Each channel fills a different subset of fields; the accessor methods
// flatten them so views need not care which channel produced the reply.
type ChatReply struct {
	Type      string  `json:"type" yaml:"type"`
	Channel   Channel `json:"channel" yaml:"channel"`
	Timestamp string  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Intent    string  `json:"intent,omitempty" yaml:"intent,omitempty"`

	// Message is set by web and mobile, Text by WhatsApp, DisplayText by kiosk.
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
	Text        string `json:"text,omitempty" yaml:"text,omitempty"`
	DisplayText string `json:"display_text,omitempty" yaml:"display_text,omitempty"`
	VoiceText   string `json:"voice_text,omitempty" yaml:"voice_text,omitempty"`

	QuickReplies []QuickReply `json:"quick_replies,omitempty" yaml:"quick_replies,omitempty"`

	ProductCards       []ProductCard `json:"product_cards,omitempty" yaml:"product_cards,omitempty"`
	ProductTiles       []ProductCard `json:"product_tiles,omitempty" yaml:"product_tiles,omitempty"`
	HorizontalProducts []ProductCard `json:"horizontal_products,omitempty" yaml:"horizontal_products,omitempty"`

	CartWidget *CartWidget `json:"cart_widget,omitempty" yaml:"cart_widget,omitempty"`
	CartSheet  *CartWidget `json:"cart_sheet,omitempty" yaml:"cart_sheet,omitempty"`

	LoyaltyBadge *LoyaltyBadge `json:"loyalty_badge,omitempty" yaml:"loyalty_badge,omitempty"`

	ActionButtons []ActionButton `json:"action_buttons,omitempty" yaml:"action_buttons,omitempty"`
	FabActions    []ActionButton `json:"fab_actions,omitempty" yaml:"fab_actions,omitempty"`
}

// Body returns the reply text regardless of channel.
func (r ChatReply) Body() string {
	for _, s := range []string{r.Message, r.Text, r.DisplayText, r.VoiceText} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Cards returns every product card in the reply.
func (r ChatReply) Cards() []ProductCard {
	var cards []ProductCard
	cards = append(cards, r.ProductCards...)
	cards = append(cards, r.ProductTiles...)
	cards = append(cards, r.HorizontalProducts...)
	return cards
}

// Cart returns the cart widget, if any.
func (r ChatReply) Cart() *CartWidget {
	if r.CartWidget != nil {
		return r.CartWidget
	}
	return r.CartSheet
}

// Actions returns the reply's action buttons.
func (r ChatReply) Actions() []ActionButton {
	if len(r.ActionButtons) > 0 {
		return r.ActionButtons
	}
	return r.FabActions
}

// QuickReply is a suggested follow-up message.
type QuickReply struct {
	Type    string `json:"type" yaml:"type"`
	Text    string `json:"text" yaml:"text"`
	Action  string `json:"action,omitempty" yaml:"action,omitempty"`
	Payload string `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Value is the message to send when the quick reply is chosen.
func (q QuickReply) Value() string {
	if q.Payload != "" {
		return q.Payload
	}
	return q.Text
}

// CardAction is a button on a product card or cart widget.
type CardAction struct {
	Type  string `json:"type" yaml:"type"`
	Label string `json:"label" yaml:"label"`
}

// ProductCard is a recommended product rendered inside the chat.
type ProductCard struct {
	ProductID     int           `json:"product_id" yaml:"product_id"`
	Name          string        `json:"name" yaml:"name"`
	Brand         string        `json:"brand,omitempty" yaml:"brand,omitempty"`
	Image         string        `json:"image,omitempty" yaml:"image,omitempty"`
	Price         float64       `json:"price" yaml:"price"`
	OriginalPrice float64       `json:"original_price,omitempty" yaml:"original_price,omitempty"`
	Rating        float64       `json:"rating,omitempty" yaml:"rating,omitempty"`
	Reason        string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	InStock       *Availability `json:"in_stock,omitempty" yaml:"in_stock,omitempty"`
	InStockHere   *Availability `json:"in_stock_here,omitempty" yaml:"in_stock_here,omitempty"`
	Aisle         string        `json:"aisle,omitempty" yaml:"aisle,omitempty"`
	Actions       []CardAction  `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Product converts the card into a cartable product.
func (c ProductCard) Product() Product {
	stock := c.InStock
	if stock == nil {
		stock = c.InStockHere
	}
	return Product{
		ID:            c.ProductID,
		Name:          c.Name,
		Brand:         c.Brand,
		Image:         c.Image,
		Price:         c.Price,
		OriginalPrice: c.OriginalPrice,
		Rating:        c.Rating,
		InStock:       stock,
	}
}

// CartWidget summarizes the backend session cart inside a reply.
type CartWidget struct {
	Items    []ServerCartLine `json:"items" yaml:"items"`
	Count    int              `json:"count" yaml:"count"`
	Subtotal float64          `json:"subtotal" yaml:"subtotal"`
	Actions  []CardAction     `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// LoyaltyBadge shows the shopper's tier inside a reply.
type LoyaltyBadge struct {
	Tier   string `json:"tier" yaml:"tier"`
	Points int    `json:"points" yaml:"points"`
}

// ActionButton is a reply-level call to action.
type ActionButton struct {
	Type        string `json:"type" yaml:"type"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// =============================================================================
// SMART CHAT
// =============================================================================

// SmartChatRequest is the /smart-chat body: a chat turn with shopping
// context the orchestrator can act on directly.
type SmartChatRequest struct {
	Message       string     `json:"message"`
	CustomerID    *int       `json:"customer_id,omitempty"`
	SessionID     string     `json:"session_id,omitempty"`
	CartItems     []CartItem `json:"cart_items"`
	Location      string     `json:"location,omitempty"`
	Budget        *float64   `json:"budget,omitempty"`
	Category      string     `json:"category,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	ApplyLoyalty  bool       `json:"apply_loyalty"`
	CouponCode    string     `json:"coupon_code,omitempty"`
}

// SmartChatResult is the orchestrator's raw answer. Its shape depends on
// the detected intent, so everything beyond the common fields is kept raw.
type SmartChatResult struct {
	Message         string           `json:"message" yaml:"message"`
	Intent          string           `json:"intent,omitempty" yaml:"intent,omitempty"`
	Suggestions     []string         `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	Extra           map[string]any   `json:"-" yaml:"extra,omitempty"`
}
