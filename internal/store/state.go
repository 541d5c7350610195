// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"reflect"
	"time"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

// State is the client-side shopping state. Values are treated as
// immutable: the reducer copies slices before changing them, so a State
// handed to a subscriber never changes underneath it.
type State struct {
	// Persisted
	Cart       []model.CartLine
	Wishlist   []model.WishlistItem
	SessionID  string
	CustomerID int
	Channel    model.Channel

	// Derived from Cart after every action
	SubtotalCents int64
	Subtotal      float64
	ItemCount     int
	LineCount     int

	// Transient, never written to disk
	ChatOpen  bool
	LastError string
}

// CartLine returns the cart line for productID.
func (s State) CartLine(productID int) (model.CartLine, bool) {
	if i := cartIndex(s.Cart, productID); i >= 0 {
		return s.Cart[i], true
	}
	return model.CartLine{}, false
}

// InCart reports whether productID is in the cart.
func (s State) InCart(productID int) bool {
	return cartIndex(s.Cart, productID) >= 0
}

// InWishlist reports whether productID is saved.
func (s State) InWishlist(productID int) bool {
	return wishlistIndex(s.Wishlist, productID) >= 0
}

// CartItems returns the cart in request form.
func (s State) CartItems() []model.CartItem {
	return model.CartItems(s.Cart)
}

// Empty reports whether the cart has no lines.
func (s State) Empty() bool {
	return len(s.Cart) == 0
}

// recompute refreshes the derived totals. Sums run in cents so the
// subtotal is exactly the sum of its lines.
func (s State) recompute() State {
	var cents int64
	items := 0
	for _, l := range s.Cart {
		cents += l.LineCents()
		items += l.Quantity
	}
	s.SubtotalCents = cents
	s.Subtotal = model.FromCents(cents)
	s.ItemCount = items
	s.LineCount = len(s.Cart)
	return s
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// SnapshotVersion is the current on-disk format.
const SnapshotVersion = 1

// Snapshot is the persisted subset of State.
type Snapshot struct {
	Version    int                  `json:"version"`
	SavedAt    time.Time            `json:"saved_at"`
	Cart       []model.CartLine     `json:"cart"`
	Wishlist   []model.WishlistItem `json:"wishlist"`
	SessionID  string               `json:"session_id,omitempty"`
	CustomerID int                  `json:"customer_id,omitempty"`
	Channel    model.Channel        `json:"channel,omitempty"`
}

// Snapshot extracts the persisted subset. Slices are always non-nil so
// an empty cart encodes as [] and compares equal to a decoded one.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Version:    SnapshotVersion,
		Cart:       append([]model.CartLine{}, s.Cart...),
		Wishlist:   append([]model.WishlistItem{}, s.Wishlist...),
		SessionID:  s.SessionID,
		CustomerID: s.CustomerID,
		Channel:    s.Channel,
	}
}

// sameContent compares two snapshots ignoring version and save time.
func (a Snapshot) sameContent(b Snapshot) bool {
	return reflect.DeepEqual(a.normalized(), b.normalized())
}

// normalized copies the content fields into a canonical form: non-nil
// slices and wall-clock UTC timestamps, as they come back from disk.
func (a Snapshot) normalized() Snapshot {
	out := Snapshot{
		Cart:       append([]model.CartLine{}, a.Cart...),
		Wishlist:   make([]model.WishlistItem, len(a.Wishlist)),
		SessionID:  a.SessionID,
		CustomerID: a.CustomerID,
		Channel:    a.Channel,
	}
	for i, w := range a.Wishlist {
		w.AddedAt = w.AddedAt.UTC().Round(0)
		out.Wishlist[i] = w
	}
	return out
}

func cartIndex(cart []model.CartLine, productID int) int {
	for i, l := range cart {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func wishlistIndex(list []model.WishlistItem, productID int) int {
	for i, w := range list {
		if w.ID == productID {
			return i
		}
	}
	return -1
}
