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

type productsResponse struct {
	Count    int             `json:"count"`
	Products []model.Product `json:"products"`
}

// ListProducts fetches the full catalog. in_stock is a unit count here.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var resp productsResponse
	if err := c.call(ctx, request{op: "list products", method: http.MethodGet, path: "/products"}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// SearchProducts runs a filtered search. The query is normalized first.
func (c *Client) SearchProducts(ctx context.Context, q model.SearchQuery) ([]model.Product, error) {
	var resp productsResponse
	r := request{op: "search products", method: http.MethodPost, path: "/products/search", body: q.Normalize()}
	if err := c.call(ctx, r, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// ProductFilters fetches the available facets.
func (c *Client) ProductFilters(ctx context.Context) (*model.ProductFilters, error) {
	var resp struct {
		Filters model.ProductFilters `json:"filters"`
	}
	if err := c.call(ctx, request{op: "product filters", method: http.MethodGet, path: "/products/filters"}, &resp); err != nil {
		return nil, err
	}
	return &resp.Filters, nil
}

// Recommendations asks the recommendation agent for picks. Zero-valued
// fields are left out of the query.
func (c *Client) Recommendations(ctx context.Context, rq model.RecommendationQuery) (*model.Recommendations, error) {
	q := url.Values{}
	q.Set("occasion", rq.Occasion)
	if rq.Category != "" {
		q.Set("category", rq.Category)
	}
	if rq.Budget > 0 {
		q.Set("budget", strconv.FormatFloat(rq.Budget, 'f', -1, 64))
	}
	if rq.CustomerID > 0 {
		q.Set("customer_id", strconv.Itoa(rq.CustomerID))
	}

	var recs model.Recommendations
	r := request{op: "recommendations", method: http.MethodPost, path: "/recommendations", query: q}
	if err := c.callData(ctx, r, &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}
