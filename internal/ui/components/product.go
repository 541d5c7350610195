// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// =============================================================================
// FORMATTING
// =============================================================================

// FormatPrice renders a price, with the struck-through original and a
// discount badge when the product is marked down.
func FormatPrice(theme *styles.Theme, p model.Product) string {
	out := theme.Price.Render(model.FormatPrice(p.Price))
	if pct := p.DiscountPercent(); pct > 0 {
		out += " " + theme.OriginalPrice.Render(model.FormatPrice(p.OriginalPrice)) +
			" " + theme.DiscountBadge.Render(fmt.Sprintf("-%d%%", pct))
	}
	return out
}

// FormatRating renders a 0-5 rating as stars plus the number.
func FormatRating(theme *styles.Theme, rating float64) string {
	if rating <= 0 {
		return theme.Muted.Render("no rating")
	}
	return theme.Rating.Render(fmt.Sprintf("%s %.1f", styles.RenderStars(rating), rating))
}

// FormatStock renders availability. Unknown stock renders empty.
func FormatStock(theme *styles.Theme, a *model.Availability) string {
	if a == nil {
		return ""
	}
	if a.InStock {
		return theme.InStock.Render(a.String())
	}
	return theme.OutOfStock.Render(a.String())
}

// =============================================================================
// PRODUCT CARD
// =============================================================================

// ProductCard renders one product in the catalog, the detail view or an
// assistant reply.
type ProductCard struct {
	Product    model.Product
	Selected   bool
	InCart     int
	InWishlist bool

	// Reason is the assistant's note on why it picked the product.
	Reason string
}

// CardFromReply adapts a card sent by the assistant.
func CardFromReply(c model.ProductCard) ProductCard {
	return ProductCard{Product: c.Product(), Reason: c.Reason}
}

// Row renders the card as a single line for lists.
func (c ProductCard) Row(theme *styles.Theme, width int) string {
	marker := "  "
	if c.Selected {
		marker = theme.ShortcutKey.Render("> ")
	}

	var badges []string
	if c.InCart > 0 {
		badges = append(badges, theme.InStock.Render(fmt.Sprintf("[%d in cart]", c.InCart)))
	}
	if c.InWishlist {
		badges = append(badges, theme.Rating.Render("[saved]"))
	}
	if c.Product.InStock != nil && !c.Product.InStock.InStock {
		badges = append(badges, theme.OutOfStock.Render("[sold out]"))
	}

	right := theme.Price.Render(model.FormatPrice(c.Product.Price))
	if len(badges) > 0 {
		right = strings.Join(badges, " ") + " " + right
	}

	nameWidth := max(width-lipgloss.Width(marker)-lipgloss.Width(right)-1, 8)
	name := util.PadRight(c.Product.Name, nameWidth)
	if c.Selected {
		name = theme.ProductName.Render(name)
	}
	return marker + name + " " + right
}

// Render renders the card as a bordered block.
func (c ProductCard) Render(theme *styles.Theme, width int) string {
	inner := max(width-4, 20)
	p := c.Product

	lines := []string{theme.ProductName.Render(util.TruncateWidth(p.Name, inner))}

	var meta []string
	if p.Brand != "" {
		meta = append(meta, theme.Brand.Render(p.Brand))
	}
	if p.Category != "" {
		meta = append(meta, theme.Category.Render(p.Category))
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, theme.Muted.Render(" · ")))
	}

	lines = append(lines, FormatPrice(theme, p))
	status := FormatRating(theme, p.Rating)
	if stock := FormatStock(theme, p.InStock); stock != "" {
		status += "  " + stock
	}
	lines = append(lines, status)

	if c.InCart > 0 || c.InWishlist {
		var notes []string
		if c.InCart > 0 {
			notes = append(notes, fmt.Sprintf("%d in cart", c.InCart))
		}
		if c.InWishlist {
			notes = append(notes, "in wishlist")
		}
		lines = append(lines, theme.Savings.Render(strings.Join(notes, ", ")))
	}
	if c.Reason != "" {
		for _, l := range util.WrapWords(c.Reason, inner) {
			lines = append(lines, theme.Muted.Render(l))
		}
	}
	if p.Description != "" {
		lines = append(lines, "")
		lines = append(lines, util.WrapWords(util.CollapseSpace(p.Description), inner)...)
	}

	style := theme.Card
	if c.Selected {
		style = theme.CardSelected
	}
	return style.Width(inner).Render(strings.Join(lines, "\n"))
}
