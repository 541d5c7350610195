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

func loyaltyPath(customerID int, suffix string) string {
	return "/loyalty/" + strconv.Itoa(customerID) + suffix
}

// Loyalty fetches the customer's tier, points and benefits. An unknown
// customer yields ErrNotFound.
func (c *Client) Loyalty(ctx context.Context, customerID int) (*model.LoyaltyStatus, error) {
	var status model.LoyaltyStatus
	r := request{op: "loyalty", method: http.MethodGet, path: loyaltyPath(customerID, "")}
	if err := c.callData(ctx, r, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// LoyaltyOffers fetches the customer's personalized offers.
func (c *Client) LoyaltyOffers(ctx context.Context, customerID int) (*model.LoyaltyOffers, error) {
	var offers model.LoyaltyOffers
	r := request{op: "loyalty offers", method: http.MethodGet, path: loyaltyPath(customerID, "/offers")}
	if err := c.callData(ctx, r, &offers); err != nil {
		return nil, err
	}
	return &offers, nil
}

// CalculatePoints estimates the points a purchase would earn.
func (c *Client) CalculatePoints(ctx context.Context, customerID int, amount float64) (*model.PointsEstimate, error) {
	q := url.Values{}
	q.Set("purchase_amount", strconv.FormatFloat(amount, 'f', 2, 64))

	var est model.PointsEstimate
	r := request{op: "calculate points", method: http.MethodGet, path: loyaltyPath(customerID, "/calculate-points"), query: q}
	if err := c.callData(ctx, r, &est); err != nil {
		return nil, err
	}
	return &est, nil
}
