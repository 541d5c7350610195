// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the storefront's domain and wire types.
//
// Types mirror the backend's JSON payloads: products and search queries,
// carts, channel-formatted assistant replies, checkout results, loyalty
// status and recovery options. The assistant transcript (Conversation and
// Message) is the one type that never crosses the wire.
//
// # Key Types
//
//   - Product, SearchQuery, ProductFilters: catalog browsing
//   - CartLine, WishlistItem: the shopper's local cart state
//   - ChatReply, ProductCard, QuickReply: assistant replies on any channel
//   - CheckoutRequest, CheckoutResult, Pricing: the order flow
//   - LoyaltyStatus, Tier: the loyalty program
//   - Conversation, Message: the assistant transcript
//
// # Money
//
// Prices are float dollars on the wire. Sum them with Cents and convert
// back with FromCents:
//
//	var total int64
//	for _, l := range lines {
//	    total += l.LineCents()
//	}
//	fmt.Println(model.FormatPrice(model.FromCents(total)))
package model
