// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// Reduce applies a to s and returns the new state. It never mutates s.
// Actions that change nothing return s as is.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AddToCart:
		return addToCart(s, a.Product, a.Quantity).recompute()

	case RemoveFromCart:
		i := cartIndex(s.Cart, a.ProductID)
		if i < 0 {
			return s
		}
		s.Cart = without(s.Cart, i)
		return s.recompute()

	case SetQuantity:
		i := cartIndex(s.Cart, a.ProductID)
		if i < 0 {
			return s
		}
		if a.Quantity <= 0 {
			s.Cart = without(s.Cart, i)
			return s.recompute()
		}
		if s.Cart[i].Quantity == a.Quantity {
			return s
		}
		cart := append([]model.CartLine(nil), s.Cart...)
		cart[i].Quantity = a.Quantity
		s.Cart = cart
		return s.recompute()

	case ClearCart:
		if len(s.Cart) == 0 {
			return s
		}
		s.Cart = nil
		return s.recompute()

	case AddToWishlist:
		if wishlistIndex(s.Wishlist, a.Product.ID) >= 0 {
			return s
		}
		return addToWishlist(s, a.Product, a.At)

	case RemoveFromWishlist:
		i := wishlistIndex(s.Wishlist, a.ProductID)
		if i < 0 {
			return s
		}
		s.Wishlist = without(s.Wishlist, i)
		return s

	case ToggleWishlist:
		if i := wishlistIndex(s.Wishlist, a.Product.ID); i >= 0 {
			s.Wishlist = without(s.Wishlist, i)
			return s
		}
		return addToWishlist(s, a.Product, a.At)

	case MoveToCart:
		i := wishlistIndex(s.Wishlist, a.ProductID)
		if i < 0 {
			return s
		}
		product := s.Wishlist[i].Product
		s.Wishlist = without(s.Wishlist, i)
		return addToCart(s, product, 1).recompute()

	case SetSession:
		s.SessionID = a.SessionID
		if a.Channel != "" {
			s.Channel = a.Channel
		}
		return s

	case SetCustomer:
		s.CustomerID = a.CustomerID
		return s

	case SetChatOpen:
		s.ChatOpen = a.Open
		return s

	case SetError:
		if a.Err == nil {
			s.LastError = ""
		} else {
			s.LastError = a.Err.Error()
		}
		return s

	case Hydrate:
		snap := a.Snapshot
		s.Cart = append([]model.CartLine(nil), snap.Cart...)
		s.Wishlist = append([]model.WishlistItem(nil), snap.Wishlist...)
		s.SessionID = snap.SessionID
		s.CustomerID = snap.CustomerID
		if snap.Channel != "" {
			s.Channel = snap.Channel
		}
		return s.recompute()
	}
	return s
}

// addToCart merges by product id.
func addToCart(s State, p model.Product, qty int) State {
	if qty <= 0 {
		qty = 1
	}
	cart := append([]model.CartLine(nil), s.Cart...)
	if i := cartIndex(cart, p.ID); i >= 0 {
		cart[i].Quantity += qty
	} else {
		cart = append(cart, model.LineFromProduct(p, qty))
	}
	s.Cart = cart
	return s
}

func addToWishlist(s State, p model.Product, at time.Time) State {
	list := append([]model.WishlistItem(nil), s.Wishlist...)
	s.Wishlist = append(list, model.WishlistItem{Product: p, AddedAt: at})
	return s
}

// without returns a copy of list with element i removed.
func without[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
