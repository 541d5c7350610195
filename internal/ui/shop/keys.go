// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shop

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the storefront key bindings.
type KeyMap struct {
	Quit      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Assistant key.Binding
	Back      key.Binding
	Help      key.Binding
	Refresh   key.Binding
	Dismiss   key.Binding

	// Catalog
	Search   key.Binding
	Category key.Binding
	Sort     key.Binding
	InStock  key.Binding
	Open     key.Binding
	Add      key.Binding
	Save     key.Binding

	// Cart and wishlist
	Up       key.Binding
	Down     key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Remove   key.Binding
	Clear    key.Binding
	Move     key.Binding
	Checkout key.Binding

	// Checkout
	Payment key.Binding
	Coupon  key.Binding
	Loyalty key.Binding
	Reserve key.Binding
	Place   key.Binding

	// Assistant panel
	Send       key.Binding
	NewChat    key.Binding
	QuickReply key.Binding
	AddCard    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev tab"),
		),
		Assistant: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("C-a", "assistant"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reload"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Category: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "category"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort"),
		),
		InStock: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "in stock"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to cart"),
		),
		Save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "wishlist"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Inc: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more"),
		),
		Dec: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "less"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Clear: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear cart"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move to cart"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "checkout"),
		),
		Payment: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "payment"),
		),
		Coupon: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "coupon"),
		),
		Loyalty: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "use points"),
		),
		Reserve: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reserve"),
		),
		Place: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "place order"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		QuickReply: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "quick reply"),
		),
		AddCard: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"),
			key.WithHelp("M-1..9", "add card"),
		),
	}
}

// =============================================================================
// CONTEXT HELP
// =============================================================================

// contextHelp adapts the key map to what is on screen. It implements
// help.KeyMap.
type contextHelp struct {
	keys  KeyMap
	tab   Tab
	focus focus
}

// ShortHelp returns the bindings for the one-line help.
func (h contextHelp) ShortHelp() []key.Binding {
	k := h.keys
	switch h.focus {
	case focusChat:
		return []key.Binding{k.Send, k.QuickReply, k.AddCard, k.NewChat, k.Back}
	case focusSearch, focusCoupon:
		return []key.Binding{k.Send, k.Back}
	}
	switch h.tab {
	case TabCatalog:
		return []key.Binding{k.Search, k.Open, k.Add, k.Save, k.Assistant, k.Help}
	case TabCart:
		return []key.Binding{k.Inc, k.Dec, k.Remove, k.Checkout, k.Help}
	case TabWishlist:
		return []key.Binding{k.Move, k.Remove, k.Help}
	default:
		return []key.Binding{k.Place, k.Payment, k.Coupon, k.Loyalty, k.Help}
	}
}

// FullHelp returns every binding, grouped.
func (h contextHelp) FullHelp() [][]key.Binding {
	k := h.keys
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Assistant, k.Refresh, k.Dismiss, k.Quit},
		{k.Search, k.Category, k.Sort, k.InStock, k.Open, k.Add, k.Save},
		{k.Up, k.Down, k.Inc, k.Dec, k.Remove, k.Clear, k.Move, k.Checkout},
		{k.Place, k.Payment, k.Coupon, k.Loyalty, k.Reserve},
		{k.Send, k.QuickReply, k.AddCard, k.NewChat, k.Back},
	}
}
