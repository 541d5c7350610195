// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// PRODUCT
// =============================================================================

// Product is a catalog entry as returned by /products and /products/search.
type Product struct {
	ID            int     `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Price         float64 `json:"price" yaml:"price"`
	OriginalPrice float64 `json:"original_price,omitempty" yaml:"original_price,omitempty"`
	Category      string  `json:"category,omitempty" yaml:"category,omitempty"`
	Brand         string  `json:"brand,omitempty" yaml:"brand,omitempty"`
	Rating        float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	Image         string  `json:"image,omitempty" yaml:"image,omitempty"`
	Description   string  `json:"description,omitempty" yaml:"description,omitempty"`

	// InStock is absent from search results; nil means unknown.
	InStock *Availability `json:"in_stock,omitempty" yaml:"in_stock,omitempty"`
}

// Available reports whether the product can be added to a cart.
// Unknown stock counts as available.
func (p Product) Available() bool {
	return p.InStock == nil || p.InStock.InStock
}

// DiscountPercent returns the markdown from OriginalPrice, or 0.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice <= 0 || p.OriginalPrice <= p.Price {
		return 0
	}
	return int((p.OriginalPrice - p.Price) / p.OriginalPrice * 100)
}

// Stars renders the rating as a five-star bar, e.g. "★★★★☆".
func (p Product) Stars() string {
	full := int(p.Rating + 0.5)
	if full < 0 {
		full = 0
	}
	if full > 5 {
		full = 5
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}

func (p Product) String() string {
	return fmt.Sprintf("#%d %s (%s)", p.ID, p.Name, FormatPrice(p.Price))
}

// =============================================================================
// SEARCH
// =============================================================================

// SortOrder is the catalog ordering accepted by /products/search.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPriceLow  SortOrder = "price_low"
	SortPriceHigh SortOrder = "price_high"
	SortRating    SortOrder = "rating"
)

// DefaultSearchLimit matches the backend default.
const DefaultSearchLimit = 20

// ParseSortOrder validates a sort name. Empty means relevance.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortRelevance:
		return SortRelevance, nil
	case SortPriceLow:
		return SortPriceLow, nil
	case SortPriceHigh:
		return SortPriceHigh, nil
	case SortRating:
		return SortRating, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want relevance, price_low, price_high or rating)", s)
}

// SearchQuery is the /products/search request body.
type SearchQuery struct {
	Query    string    `json:"query"`
	Category string    `json:"category,omitempty"`
	MinPrice *float64  `json:"min_price,omitempty"`
	MaxPrice *float64  `json:"max_price,omitempty"`
	Brand    string    `json:"brand,omitempty"`
	SortBy   SortOrder `json:"sort_by"`
	Limit    int       `json:"limit"`

	// InStockOnly is applied client-side; the backend has no such filter.
	InStockOnly bool `json:"-"`
}

// Normalize fills defaults and swaps an inverted price range.
func (q SearchQuery) Normalize() SearchQuery {
	q.Query = strings.TrimSpace(q.Query)
	if q.SortBy == "" {
		q.SortBy = SortRelevance
	}
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		q.MinPrice, q.MaxPrice = q.MaxPrice, q.MinPrice
	}
	return q
}

// Matches applies the query's structured filters to p. Text matching is
// left to the caller.
func (q SearchQuery) Matches(p Product) bool {
	if q.Category != "" && !strings.EqualFold(q.Category, p.Category) {
		return false
	}
	if q.Brand != "" && !strings.EqualFold(q.Brand, p.Brand) {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.InStockOnly && !p.Available() {
		return false
	}
	return true
}

// Price returns a pointer to v, for SearchQuery literals.
func Price(v float64) *float64 {
	return &v
}

// PriceRange is the catalog price span.
type PriceRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// ProductFilters lists the facets /products/filters offers.
type ProductFilters struct {
	Categories []string   `json:"categories" yaml:"categories"`
	Brands     []string   `json:"brands" yaml:"brands"`
	PriceRange PriceRange `json:"price_range" yaml:"price_range"`
}

// =============================================================================
// RECOMMENDATIONS AND INVENTORY
// =============================================================================

// RecommendationQuery carries the /recommendations query parameters.
type RecommendationQuery struct {
	Occasion   string
	Category   string
	Budget     float64
	CustomerID int
}

// Recommendation is one suggested product with the reason it was picked.
type Recommendation struct {
	ProductID     int           `json:"product_id" yaml:"product_id"`
	Name          string        `json:"name" yaml:"name"`
	Brand         string        `json:"brand,omitempty" yaml:"brand,omitempty"`
	Price         float64       `json:"price" yaml:"price"`
	OriginalPrice float64       `json:"original_price,omitempty" yaml:"original_price,omitempty"`
	Category      string        `json:"category,omitempty" yaml:"category,omitempty"`
	Rating        float64       `json:"rating,omitempty" yaml:"rating,omitempty"`
	Image         string        `json:"image,omitempty" yaml:"image,omitempty"`
	Reason        string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	InStock       *Availability `json:"in_stock,omitempty" yaml:"in_stock,omitempty"`
}

// Product converts a recommendation into a cartable product.
func (r Recommendation) Product() Product {
	return Product{
		ID:            r.ProductID,
		Name:          r.Name,
		Brand:         r.Brand,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Category:      r.Category,
		Rating:        r.Rating,
		Image:         r.Image,
		InStock:       r.InStock,
	}
}

// Recommendations is the /recommendations payload.
type Recommendations struct {
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	TotalItems      int              `json:"total_items,omitempty" yaml:"total_items,omitempty"`
	Reasoning       string           `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Note            string           `json:"note,omitempty" yaml:"note,omitempty"`
}

// InventoryRequest is the /check-inventory body. Quantities is keyed by
// product id as a string, the way the backend reads it.
type InventoryRequest struct {
	ProductIDs []int          `json:"product_ids"`
	Quantities map[string]int `json:"quantities,omitempty"`
}

// LocationStock is availability at one fulfilment location.
type LocationStock struct {
	Location          string   `json:"location" yaml:"location"`
	AvailableQuantity int      `json:"available_quantity" yaml:"available_quantity"`
	CanFulfill        bool     `json:"can_fulfill" yaml:"can_fulfill"`
	Fulfillment       []string `json:"fulfillment_options,omitempty" yaml:"fulfillment_options,omitempty"`
	EstimatedDelivery string   `json:"estimated_delivery,omitempty" yaml:"estimated_delivery,omitempty"`
	Reason            string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// StockLevel is per-product availability.
type StockLevel struct {
	ProductID         int              `json:"product_id" yaml:"product_id"`
	ProductName       string           `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	Available         bool             `json:"available" yaml:"available"`
	TotalStock        int              `json:"total_stock" yaml:"total_stock"`
	QuantityRequested int              `json:"quantity_requested" yaml:"quantity_requested"`
	Locations         []LocationStock  `json:"locations,omitempty" yaml:"locations,omitempty"`
	Alternatives      []Recommendation `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Reason            string           `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// InventoryReport is the /check-inventory payload, keyed by product id.
type InventoryReport struct {
	Availability map[string]StockLevel `json:"availability" yaml:"availability"`
	CheckedAt    string                `json:"checked_at,omitempty" yaml:"checked_at,omitempty"`
}

// AllAvailable reports whether every checked product can be fulfilled.
func (r InventoryReport) AllAvailable() bool {
	for _, s := range r.Availability {
		if !s.Available {
			return false
		}
	}
	return true
}

// ReserveItem is one line of a /reserve-items request.
type ReserveItem struct {
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Location  string `json:"location,omitempty"`
}

// ReservedLine is one held line in a reservation.
type ReservedLine struct {
	ProductID     int    `json:"product_id" yaml:"product_id"`
	ProductName   string `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	Quantity      int    `json:"quantity" yaml:"quantity"`
	Location      string `json:"location,omitempty" yaml:"location,omitempty"`
	ReservedUntil string `json:"reserved_until,omitempty" yaml:"reserved_until,omitempty"`
	Status        string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Reservation is the /reserve-items payload.
type Reservation struct {
	Reservations     []ReservedLine `json:"reservations" yaml:"reservations"`
	SessionID        string         `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	ExpiresInMinutes int            `json:"expires_in_minutes,omitempty" yaml:"expires_in_minutes,omitempty"`
}
