// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CLIENT CART
// =============================================================================

// CartLine is one product in the shopper's local cart.
type CartLine struct {
	ProductID int     `json:"product_id" yaml:"product_id"`
	Name      string  `json:"name" yaml:"name"`
	Price     float64 `json:"price" yaml:"price"`
	Brand     string  `json:"brand,omitempty" yaml:"brand,omitempty"`
	Category  string  `json:"category,omitempty" yaml:"category,omitempty"`
	Image     string  `json:"image,omitempty" yaml:"image,omitempty"`
	Quantity  int     `json:"quantity" yaml:"quantity"`
}

// LineFromProduct builds a cart line for qty units of p.
func LineFromProduct(p Product, qty int) CartLine {
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Brand:     p.Brand,
		Category:  p.Category,
		Image:     p.Image,
		Quantity:  qty,
	}
}

// LineCents is price × quantity in cents.
func (l CartLine) LineCents() int64 {
	return Cents(l.Price) * int64(l.Quantity)
}

// LineTotal is price × quantity in dollars.
func (l CartLine) LineTotal() float64 {
	return FromCents(l.LineCents())
}

// Item converts the line to the cart_items shape the backend reads.
func (l CartLine) Item() CartItem {
	return CartItem{
		ProductID: l.ProductID,
		Name:      l.Name,
		Price:     l.Price,
		Quantity:  l.Quantity,
	}
}

// CartItem is an element of the cart_items array sent with chat and
// checkout requests.
type CartItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Quantity  int     `json:"quantity"`
}

// CartItems converts lines for a request body. Never returns nil so the
// body encodes as [] rather than null.
func CartItems(lines []CartLine) []CartItem {
	items := make([]CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.Item())
	}
	return items
}

// =============================================================================
// SERVER CART
// =============================================================================

// ServerCartLine is a cart line as the backend session cart reports it.
type ServerCartLine struct {
	CartLine
	Subtotal float64 `json:"subtotal,omitempty" yaml:"subtotal,omitempty"`
}

// ServerCart is the cart stored on the backend session.
type ServerCart struct {
	Cart       []ServerCartLine `json:"cart" yaml:"cart"`
	CartCount  int              `json:"cart_count" yaml:"cart_count"`
	TotalItems int              `json:"total_items" yaml:"total_items"`
	Subtotal   float64          `json:"subtotal" yaml:"subtotal"`
}

// =============================================================================
// WISHLIST
// =============================================================================

// WishlistItem is a saved product.
type WishlistItem struct {
	Product `yaml:",inline"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}
