// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shop

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
)

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

// withTimeout derives a request context from the model's base context.
func (m Model) withTimeout() (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(m.ctx)
	}
	return context.WithTimeout(m.ctx, m.timeout)
}

// loadHomeCmd fetches the landing data.
func (m Model) loadHomeCmd() tea.Cmd {
	load := m.loadHome
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		home, err := load(ctx)
		return HomeMsg{Home: home, Err: err}
	}
}

// searchCmd runs a catalog query.
func (m Model) searchCmd(q model.SearchQuery, seq int) tea.Cmd {
	cat := m.catalog
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		res, err := cat.Search(ctx, q)
		return SearchMsg{Seq: seq, Query: q, Result: res, Err: err}
	}
}

// openAssistantCmd bootstraps the chat session.
func (m Model) openAssistantCmd() tea.Cmd {
	a := m.assistant
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		return AssistantOpenedMsg{Err: a.Open(ctx)}
	}
}

// sendCmd posts one chat message. ctx is cancelled by Esc.
func (m Model) sendCmd(ctx context.Context, text string) tea.Cmd {
	a := m.assistant
	return func() tea.Msg {
		msg, err := a.Send(ctx, text)
		return ReplyMsg{Message: msg, Err: err}
	}
}

// quoteCmd estimates pricing for the checkout tab.
func (m Model) quoteCmd() tea.Cmd {
	svc := m.checkout
	coupon, loyalty := m.coupon.Value(), m.useLoyalty
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		return QuoteMsg{Pricing: svc.Quote(ctx, coupon, loyalty)}
	}
}

// checkoutCmd places the order.
func (m Model) checkoutCmd() tea.Cmd {
	svc := m.checkout
	opts := checkout.Options{
		PaymentMethod: string(m.payment()),
		Coupon:        m.coupon.Value(),
		ApplyLoyalty:  m.useLoyalty,
		Reserve:       m.reserve,
	}
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		res, err := svc.Checkout(ctx, opts)
		return CheckoutMsg{Result: res, Err: err}
	}
}

// =============================================================================
// STORE SUBSCRIPTION
// =============================================================================

// waitForState blocks until the store publishes, then delivers the state.
// Update re-arms it after every StateMsg.
func waitForState(ch <-chan store.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return storeClosedMsg{}
		}
		return StateMsg{State: st}
	}
}
