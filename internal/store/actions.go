// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// Action is a state change request. The set is closed: only the types in
// this file implement it.
type Action interface {
	action()
}

// AddToCart adds Quantity units of Product. A product already in the cart
// has its quantity increased. Quantity <= 0 means 1.
type AddToCart struct {
	Product  model.Product
	Quantity int
}

// RemoveFromCart drops the line for ProductID. Absent ids are ignored.
type RemoveFromCart struct {
	ProductID int
}

// SetQuantity replaces a line's quantity. Quantity <= 0 removes the line.
type SetQuantity struct {
	ProductID int
	Quantity  int
}

// ClearCart empties the cart, e.g. after a successful checkout.
type ClearCart struct{}

// AddToWishlist saves Product. At stamps the entry; the Store fills a zero
// At with the current time.
type AddToWishlist struct {
	Product model.Product
	At      time.Time
}

// RemoveFromWishlist drops ProductID from the wishlist.
type RemoveFromWishlist struct {
	ProductID int
}

// ToggleWishlist saves Product, or drops it if already saved.
type ToggleWishlist struct {
	Product model.Product
	At      time.Time
}

// MoveToCart moves a wishlist entry into the cart with quantity 1.
type MoveToCart struct {
	ProductID int
}

// SetSession records the backend session and its channel. An empty
// Channel keeps the current one.
type SetSession struct {
	SessionID string
	Channel   model.Channel
}

// SetCustomer switches the signed-in customer. 0 is a guest.
type SetCustomer struct {
	CustomerID int
}

// SetChatOpen shows or hides the assistant panel.
type SetChatOpen struct {
	Open bool
}

// SetError records the latest user-facing error. A nil Err clears it.
type SetError struct {
	Err error
}

// Hydrate replaces the persisted subset with a snapshot read from disk.
type Hydrate struct {
	Snapshot Snapshot
}

func (AddToCart) action()          {}
func (RemoveFromCart) action()     {}
func (SetQuantity) action()        {}
func (ClearCart) action()          {}
func (AddToWishlist) action()      {}
func (RemoveFromWishlist) action() {}
func (ToggleWishlist) action()     {}
func (MoveToCart) action()         {}
func (SetSession) action()         {}
func (SetCustomer) action()        {}
func (SetChatOpen) action()        {}
func (SetError) action()           {}
func (Hydrate) action()            {}
