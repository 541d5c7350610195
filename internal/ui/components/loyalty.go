// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
)

// RenderLoyalty renders tier, points and progress towards the next tier.
func RenderLoyalty(theme *styles.Theme, status *model.LoyaltyStatus, width int) string {
	if status == nil {
		return theme.Muted.Render("Sign in with a customer id to see loyalty points.")
	}

	var lines []string
	head := theme.TierBadge.Render(string(status.Tier)) + " " +
		theme.TotalValue.Render(fmt.Sprintf("%s points", fmtNumber(status.Points))) +
		theme.Muted.Render(" worth "+model.FormatPrice(model.PointsValue(status.Points)))
	if status.CustomerName != "" {
		head = theme.ProductName.Render(status.CustomerName) + "  " + head
	}
	lines = append(lines, head)

	next := status.NextTier
	if next.NextTier == "" && next.Message == "" {
		next = model.Progress(status.Tier, status.Points)
	}
	if next.NextTier != "" {
		barWidth := min(max(width-24, 10), 40)
		lines = append(lines, fmt.Sprintf("[%s] %.0f%%  %s more for %s",
			styles.RenderProgressBar(barWidth, next.ProgressPercent),
			next.ProgressPercent, fmtNumber(next.PointsNeeded), next.NextTier))
	} else if next.Message != "" {
		lines = append(lines, theme.Savings.Render(next.Message))
	}

	b := status.Benefits
	if b.MemberDiscount > 0 || b.PointsMultiplier > 1 {
		lines = append(lines, theme.Muted.Render(fmt.Sprintf("%.0f%% member discount, %.1fx points",
			b.MemberDiscount*100, b.PointsMultiplier)))
	}
	if bb := status.BirthdayBonus; bb != nil && bb.Available {
		lines = append(lines, theme.Rating.Render(fmt.Sprintf("Birthday bonus: %d points", bb.BonusPoints)))
	}
	return strings.Join(lines, "\n")
}

// RenderLoyaltyBadge renders the compact badge attached to replies.
func RenderLoyaltyBadge(theme *styles.Theme, badge *model.LoyaltyBadge) string {
	if badge == nil {
		return ""
	}
	return theme.TierBadge.Render(badge.Tier) + " " + theme.Muted.Render(fmtNumber(badge.Points)+" pts")
}
