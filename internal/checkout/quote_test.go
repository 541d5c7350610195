// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aisle-tui/internal/model"
)

func line(id int, price float64, qty int) model.CartLine {
	return model.CartLine{ProductID: id, Name: "item", Price: price, Quantity: qty}
}

func TestQuoteSingleLine(t *testing.T) {
	p := Quote([]model.CartLine{line(1, 10, 1)}, QuoteOptions{})

	assert.True(t, p.Estimate)
	assert.Equal(t, 10.0, p.Subtotal)
	assert.Empty(t, p.Discounts)
	assert.Equal(t, 0.0, p.TotalDiscount)
	assert.Equal(t, 0.8, p.Tax)
	assert.Equal(t, 10.8, p.FinalTotal)
	assert.Equal(t, 10, p.Loyalty.PointsEarned)
	require.Len(t, p.Items, 1)
	assert.Equal(t, 10.0, p.Items[0].Total)
}

func TestQuoteAllDiscounts(t *testing.T) {
	lines := []model.CartLine{line(1, 19.99, 2), line(2, 5, 1), line(3, 10.01, 1)}
	p := Quote(lines, QuoteOptions{Points: 300, ApplyLoyalty: true, Coupon: "save20"})

	assert.Equal(t, 54.99, p.Subtotal)
	require.Len(t, p.Discounts, 3)
	assert.Equal(t, model.Discount{Type: model.DiscountBundle, Description: "10% off for 3+ items", Amount: 5.5}, p.Discounts[0])
	assert.Equal(t, model.Discount{Type: model.DiscountLoyalty, Description: "300 loyalty points redeemed", Amount: 3}, p.Discounts[1])
	assert.Equal(t, model.Discount{Type: model.DiscountCoupon, Description: "Coupon: SAVE20", Amount: 11}, p.Discounts[2])
	assert.Equal(t, 19.5, p.TotalDiscount)
	assert.Equal(t, p.TotalDiscount, p.Savings)
	assert.Equal(t, 2.84, p.Tax)
	assert.Equal(t, 38.33, p.FinalTotal)
	assert.Equal(t, 300, p.Loyalty.PointsUsed)
	assert.Equal(t, 3.0, p.Loyalty.DiscountApplied)
	assert.Equal(t, 38, p.Loyalty.PointsEarned)
}

func TestQuoteBundleNeedsThreeLines(t *testing.T) {
	// Quantity does not count, only distinct lines.
	p := Quote([]model.CartLine{line(1, 10, 5), line(2, 10, 5)}, QuoteOptions{})
	assert.Empty(t, p.Discounts)
	assert.Equal(t, 100.0, p.Subtotal)
}

func TestQuoteLoyaltyCappedAtSubtotal(t *testing.T) {
	p := Quote([]model.CartLine{line(1, 10, 1)}, QuoteOptions{Points: 5000, ApplyLoyalty: true})

	assert.Equal(t, 1000, p.Loyalty.PointsUsed)
	assert.Equal(t, 10.0, p.TotalDiscount)
	assert.Equal(t, 0.0, p.Tax)
	assert.Equal(t, 0.0, p.FinalTotal)
	assert.Equal(t, 0, p.Loyalty.PointsEarned)
}

func TestQuoteLoyaltyNotApplied(t *testing.T) {
	p := Quote([]model.CartLine{line(1, 10, 1)}, QuoteOptions{Points: 500})
	assert.Empty(t, p.Discounts)
	assert.Equal(t, 0, p.Loyalty.PointsUsed)
}

func TestQuoteTaxableNeverNegative(t *testing.T) {
	lines := []model.CartLine{line(1, 10, 1), line(2, 10, 1), line(3, 10, 1)}
	p := Quote(lines, QuoteOptions{Points: 100000, ApplyLoyalty: true, Coupon: "VIP25"})

	assert.Greater(t, p.TotalDiscount, p.Subtotal)
	assert.Equal(t, 0.0, p.Tax)
	assert.Equal(t, 0.0, p.FinalTotal)
}

func TestQuoteCoupons(t *testing.T) {
	tests := []struct {
		code    string
		amount  float64
		applied bool
	}{
		{"WELCOME10", 10, true},
		{" welcome10 ", 10, true},
		{"SAVE20", 20, true},
		{"Birthday", 15, true},
		{"VIP25", 25, true},
		{"FREESTUFF", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			p := Quote([]model.CartLine{line(1, 100, 1)}, QuoteOptions{Coupon: tt.code})
			if !tt.applied {
				assert.Empty(t, p.Discounts)
				return
			}
			require.Len(t, p.Discounts, 1)
			assert.Equal(t, model.DiscountCoupon, p.Discounts[0].Type)
			assert.Equal(t, tt.amount, p.Discounts[0].Amount)
		})
	}
}

func TestQuoteEmptyCart(t *testing.T) {
	p := Quote(nil, QuoteOptions{Coupon: "SAVE20"})
	assert.Equal(t, 0.0, p.FinalTotal)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Discounts)
}
