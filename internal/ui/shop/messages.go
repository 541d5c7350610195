// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shop

import (
	"github.com/jeranaias/aisle-tui/internal/app"
	"github.com/jeranaias/aisle-tui/internal/catalog"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
)

// =============================================================================
// LOADING
// =============================================================================

// HomeMsg delivers the initial products, filters and loyalty status.
type HomeMsg struct {
	Home *app.Home
	Err  error
}

// SearchMsg delivers catalog results for Query. Seq identifies the
// search so results of a superseded query are dropped.
type SearchMsg struct {
	Seq    int
	Query  model.SearchQuery
	Result catalog.Result
	Err    error
}

// =============================================================================
// STORE
// =============================================================================

// StateMsg carries the store state after a dispatch.
type StateMsg struct {
	State store.State
}

// storeClosedMsg reports that the subscription channel was closed.
type storeClosedMsg struct{}

// =============================================================================
// ASSISTANT
// =============================================================================

// AssistantOpenedMsg reports the session bootstrap after the panel opens.
type AssistantOpenedMsg struct {
	Err error
}

// ReplyMsg delivers the assistant's answer to one message.
type ReplyMsg struct {
	Message *model.Message
	Err     error
}

// =============================================================================
// CHECKOUT
// =============================================================================

// QuoteMsg delivers a local price estimate for the cart.
type QuoteMsg struct {
	Pricing model.Pricing
}

// CheckoutMsg delivers the outcome of placing an order. Result may be set
// together with Err when the payment was refused.
type CheckoutMsg struct {
	Result *model.CheckoutResult
	Err    error
}
