// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// =============================================================================
// INVENTORY
// =============================================================================

// CheckInventory reports availability for each product. location may be
// empty; the backend then assumes online fulfilment.
func (c *Client) CheckInventory(ctx context.Context, req model.InventoryRequest, location string) (*model.InventoryReport, error) {
	q := url.Values{}
	if location != "" {
		q.Set("customer_location", location)
	}
	if req.ProductIDs == nil {
		req.ProductIDs = []int{}
	}

	var report model.InventoryReport
	r := request{op: "check inventory", method: http.MethodPost, path: "/check-inventory", query: q, body: req}
	if err := c.callData(ctx, r, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

type reserveBody struct {
	Items           []model.ReserveItem `json:"items"`
	SessionID       string              `json:"session_id,omitempty"`
	DurationMinutes int                 `json:"duration_minutes"`
}

// ReserveItems holds stock for the duration of a checkout.
func (c *Client) ReserveItems(ctx context.Context, sessionID string, items []model.ReserveItem, minutes int) (*model.Reservation, error) {
	if minutes <= 0 {
		minutes = 30
	}
	if items == nil {
		items = []model.ReserveItem{}
	}
	var res model.Reservation
	r := request{
		op:     "reserve items",
		method: http.MethodPost,
		path:   "/reserve-items",
		body:   reserveBody{Items: items, SessionID: sessionID, DurationMinutes: minutes},
	}
	if err := c.callData(ctx, r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// =============================================================================
// CHECKOUT
// =============================================================================

// Checkout submits an order. A declined payment is not an error: the
// result comes back with Success false, an ErrorType and recovery options.
// Only a response without a result is reported as an error.
func (c *Client) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	if req.CartItems == nil {
		req.CartItems = []model.CartItem{}
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PayCard
	}
	r := request{op: "checkout", method: http.MethodPost, path: "/checkout", body: req}
	body, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}

	// The top-level success mirrors the payment outcome, so the usual
	// envelope check does not apply.
	var resp struct {
		envelope
		Data *model.CheckoutResult `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "checkout: failed to decode response", Cause: err}
	}
	if resp.Data != nil {
		return resp.Data, nil
	}
	if resp.failed() {
		return nil, backendFailure(r.op, resp.text())
	}
	return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "checkout: response has no data"}
}

// =============================================================================
// ERROR RECOVERY
// =============================================================================

// RecoverError asks which recovery options to offer for a failed flow.
func (c *Client) RecoverError(ctx context.Context, req model.RecoveryRequest) (*model.RecoveryPlan, error) {
	if req.Context == nil {
		req.Context = map[string]any{}
	}
	var plan model.RecoveryPlan
	r := request{op: "recover error", method: http.MethodPost, path: "/recover-error", body: req}
	if err := c.call(ctx, r, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
