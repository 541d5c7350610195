// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/aisle-tui/internal/model"
)

type addToCartBody struct {
	SessionID string `json:"session_id"`
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds quantity units to the session cart. The backend merges
// lines by product id.
func (c *Client) AddToCart(ctx context.Context, sessionID string, productID, quantity int) (*model.ServerCart, error) {
	if quantity <= 0 {
		quantity = 1
	}
	var cart model.ServerCart
	r := request{
		op:     "add to cart",
		method: http.MethodPost,
		path:   "/cart/add",
		body:   addToCartBody{SessionID: sessionID, ProductID: productID, Quantity: quantity},
	}
	if err := c.call(ctx, r, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart fetches the session cart with product details and subtotal.
func (c *Client) GetCart(ctx context.Context, sessionID string) (*model.ServerCart, error) {
	var cart model.ServerCart
	r := request{op: "get cart", method: http.MethodGet, path: "/cart/" + url.PathEscape(sessionID)}
	if err := c.call(ctx, r, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveFromCart drops a product from the session cart. Unlike AddToCart
// the identifiers travel as query parameters.
func (c *Client) RemoveFromCart(ctx context.Context, sessionID string, productID int) (*model.ServerCart, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)
	q.Set("product_id", strconv.Itoa(productID))

	var cart model.ServerCart
	r := request{op: "remove from cart", method: http.MethodPost, path: "/cart/remove", query: q}
	if err := c.call(ctx, r, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
