// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// TIERS
// =============================================================================

// Tier is a loyalty program level.
type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// PointsPerDollar is the redemption rate: 100 points = $1.
const PointsPerDollar = 100

// ParseTier maps a tier name to a Tier. Unknown names are Bronze, the way
// the backend treats customers without a tier.
func ParseTier(s string) Tier {
	for _, t := range []Tier{TierBronze, TierSilver, TierGold, TierPlatinum} {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return TierBronze
}

// Next returns the following tier and the points it requires. The top
// tier returns ("", 0).
func (t Tier) Next() (Tier, int) {
	switch t {
	case TierSilver:
		return TierGold, 2500
	case TierGold:
		return TierPlatinum, 5000
	case TierPlatinum:
		return "", 0
	default:
		return TierSilver, 1000
	}
}

// Benefits returns the perks of the tier.
func (t Tier) Benefits() Benefits {
	switch t {
	case TierSilver:
		return Benefits{MemberDiscount: 0.05, PointsMultiplier: 1.5, FreeShippingThreshold: 75, EarlyAccess: true}
	case TierGold:
		return Benefits{MemberDiscount: 0.10, PointsMultiplier: 2.0, FreeShippingThreshold: 50, EarlyAccess: true}
	case TierPlatinum:
		return Benefits{MemberDiscount: 0.15, PointsMultiplier: 3.0, FreeShippingThreshold: 0, EarlyAccess: true}
	default:
		return Benefits{MemberDiscount: 0, PointsMultiplier: 1.0, FreeShippingThreshold: 100}
	}
}

// PointsValue converts points to their dollar value.
func PointsValue(points int) float64 {
	return FromCents(int64(points))
}

// =============================================================================
// LOYALTY STATUS
// =============================================================================

// Benefits are the perks of a tier.
type Benefits struct {
	MemberDiscount        float64 `json:"member_discount" yaml:"member_discount"`
	PointsMultiplier      float64 `json:"points_multiplier" yaml:"points_multiplier"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold" yaml:"free_shipping_threshold"`
	EarlyAccess           bool    `json:"early_access" yaml:"early_access"`
}

// BirthdayBonus is offered around the customer's birthday.
type BirthdayBonus struct {
	Available       bool    `json:"available" yaml:"available"`
	BonusPoints     int     `json:"bonus_points" yaml:"bonus_points"`
	SpecialDiscount float64 `json:"special_discount" yaml:"special_discount"`
	Message         string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// NextTier is progress towards the following tier. NextTier is empty at
// the top tier.
type NextTier struct {
	NextTier        Tier    `json:"next_tier" yaml:"next_tier"`
	PointsNeeded    int     `json:"points_needed,omitempty" yaml:"points_needed,omitempty"`
	ProgressPercent float64 `json:"progress_percent,omitempty" yaml:"progress_percent,omitempty"`
	Message         string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// LoyaltyStatus is the /loyalty/{id} payload.
type LoyaltyStatus struct {
	CustomerName  string         `json:"customer_name" yaml:"customer_name"`
	Tier          Tier           `json:"loyalty_tier" yaml:"loyalty_tier"`
	Points        int            `json:"loyalty_points" yaml:"loyalty_points"`
	PointsValue   float64        `json:"points_value" yaml:"points_value"`
	Benefits      Benefits       `json:"benefits" yaml:"benefits"`
	BirthdayBonus *BirthdayBonus `json:"birthday_bonus,omitempty" yaml:"birthday_bonus,omitempty"`
	NextTier      NextTier       `json:"next_tier" yaml:"next_tier"`
}

// Progress computes NextTier locally from tier and points, matching what
// the backend reports.
func Progress(tier Tier, points int) NextTier {
	next, needed := tier.Next()
	if next == "" {
		return NextTier{Message: "You're at the highest tier!"}
	}
	remaining := needed - points
	if remaining < 0 {
		remaining = 0
	}
	pct := float64(points) / float64(needed) * 100
	if pct > 100 {
		pct = 100
	}
	return NextTier{
		NextTier:        next,
		PointsNeeded:    remaining,
		ProgressPercent: float64(int(pct*10+0.5)) / 10,
	}
}

// =============================================================================
// OFFERS AND POINTS
// =============================================================================

// LoyaltyOffer is one personalized promotion. Discount is a display string
// such as "15%".
type LoyaltyOffer struct {
	Type        string `json:"type" yaml:"type"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	BonusPoints int    `json:"bonus_points,omitempty" yaml:"bonus_points,omitempty"`
	Discount    string `json:"discount,omitempty" yaml:"discount,omitempty"`
	ValidUntil  string `json:"valid_until,omitempty" yaml:"valid_until,omitempty"`
}

// LoyaltyOffers is the /loyalty/{id}/offers payload.
type LoyaltyOffers struct {
	CustomerName string         `json:"customer_name" yaml:"customer_name"`
	Tier         Tier           `json:"loyalty_tier" yaml:"loyalty_tier"`
	TotalOffers  int            `json:"total_offers" yaml:"total_offers"`
	Offers       []LoyaltyOffer `json:"offers" yaml:"offers"`
}

// PointsEstimate is the /loyalty/{id}/calculate-points payload.
type PointsEstimate struct {
	PurchaseAmount    float64 `json:"purchase_amount" yaml:"purchase_amount"`
	BasePoints        int     `json:"base_points" yaml:"base_points"`
	Multiplier        float64 `json:"multiplier" yaml:"multiplier"`
	BonusPoints       int     `json:"bonus_points" yaml:"bonus_points"`
	TotalPointsEarned int     `json:"total_points_earned" yaml:"total_points_earned"`
	BonusMessage      string  `json:"bonus_message,omitempty" yaml:"bonus_message,omitempty"`
	NewTotalPoints    int     `json:"new_total_points" yaml:"new_total_points"`
}
