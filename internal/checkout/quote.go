// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package checkout

import (
	"fmt"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// Pricing rules the backend applies at checkout.
const (
	BundleMinLines  = 3
	BundlePercent   = 10
	TaxPercent      = 8
	PointsPerDollar = model.PointsPerDollar
)

// Coupons maps known coupon codes to their percentage off the subtotal.
var Coupons = map[string]int{
	"WELCOME10": 10,
	"SAVE20":    20,
	"BIRTHDAY":  15,
	"VIP25":     25,
}

// CouponPercent returns the discount for code, case-insensitively.
func CouponPercent(code string) (int, bool) {
	pct, ok := Coupons[strings.ToUpper(strings.TrimSpace(code))]
	return pct, ok
}

// QuoteOptions are the inputs to Quote besides the cart.
type QuoteOptions struct {
	// Points is the customer's loyalty balance; 0 for guests.
	Points       int
	ApplyLoyalty bool
	Coupon       string
}

// Quote prices lines the way the backend will, for display before the
// order is placed. All arithmetic is in cents. The result is marked as an
// estimate; the backend's own pricing is authoritative.
func Quote(lines []model.CartLine, opts QuoteOptions) model.Pricing {
	p := model.Pricing{
		Items:     make([]model.PricedItem, 0, len(lines)),
		Discounts: []model.Discount{},
		Estimate:  true,
	}

	var subtotal int64
	for _, l := range lines {
		line := l.LineCents()
		subtotal += line
		p.Items = append(p.Items, model.PricedItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Total:     model.FromCents(line),
		})
	}

	var discount int64
	add := func(kind, desc string, cents int64) {
		if cents <= 0 {
			return
		}
		discount += cents
		p.Discounts = append(p.Discounts, model.Discount{Type: kind, Description: desc, Amount: model.FromCents(cents)})
	}

	if len(lines) >= BundleMinLines {
		add(model.DiscountBundle, fmt.Sprintf("%d%% off for %d+ items", BundlePercent, BundleMinLines), percentOf(subtotal, BundlePercent))
	}

	// 100 points are worth $1, so one point is one cent.
	var pointsUsed int64
	if opts.ApplyLoyalty && opts.Points > 0 {
		pointsUsed = min(int64(opts.Points), subtotal)
		add(model.DiscountLoyalty, fmt.Sprintf("%d loyalty points redeemed", pointsUsed), pointsUsed)
	}

	if opts.Coupon != "" {
		if pct, ok := CouponPercent(opts.Coupon); ok {
			add(model.DiscountCoupon, "Coupon: "+strings.ToUpper(strings.TrimSpace(opts.Coupon)), percentOf(subtotal, pct))
		}
	}

	taxable := max(subtotal-discount, 0)
	tax := percentOf(taxable, TaxPercent)
	total := taxable + tax

	p.Subtotal = model.FromCents(subtotal)
	p.TotalDiscount = model.FromCents(discount)
	p.Savings = p.TotalDiscount
	p.Tax = model.FromCents(tax)
	p.FinalTotal = model.FromCents(total)
	p.Loyalty = model.LoyaltyApplied{
		PointsUsed:      int(pointsUsed),
		PointsEarned:    int(total / 100),
		DiscountApplied: model.FromCents(pointsUsed),
	}
	return p
}

// percentOf returns pct% of cents, rounded half up.
func percentOf(cents int64, pct int) int64 {
	return (cents*int64(pct) + 50) / 100
}
