// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// CartWidget renders cart lines with a subtotal. It draws both the local
// cart and the session cart the assistant attaches to replies.
type CartWidget struct {
	Lines    []model.CartLine
	Subtotal float64

	// Selected is the highlighted line, or -1 for none.
	Selected int
	Title    string
}

// CartFromReply adapts the cart widget of an assistant reply.
func CartFromReply(w *model.CartWidget) CartWidget {
	if w == nil {
		return CartWidget{Selected: -1}
	}
	lines := make([]model.CartLine, 0, len(w.Items))
	for _, item := range w.Items {
		lines = append(lines, item.CartLine)
	}
	return CartWidget{Lines: lines, Subtotal: w.Subtotal, Selected: -1, Title: "Session cart"}
}

// ItemCount is the total quantity across lines.
func (w CartWidget) ItemCount() int {
	n := 0
	for _, l := range w.Lines {
		n += l.Quantity
	}
	return n
}

// Render renders the widget width columns wide.
func (w CartWidget) Render(theme *styles.Theme, width int) string {
	inner := max(width-4, 24)
	title := w.Title
	if title == "" {
		title = "Cart"
	}

	if len(w.Lines) == 0 {
		return theme.CartBox.Width(inner).Render(
			theme.Title.Render(title) + "\n" + theme.Muted.Render("Your cart is empty."))
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("%s (%d items)", title, w.ItemCount())))
	b.WriteString("\n")

	for i, l := range w.Lines {
		qty := fmt.Sprintf("%dx ", l.Quantity)
		total := model.FormatPrice(l.LineTotal())
		nameWidth := max(inner-len(qty)-len(total)-3, 6)

		marker := "  "
		name := util.PadRight(l.Name, nameWidth)
		if i == w.Selected {
			marker = theme.ShortcutKey.Render("> ")
			name = theme.ProductName.Render(name)
		}
		b.WriteString(marker + qty + name + " " + theme.Price.Render(total) + "\n")
	}

	b.WriteString(theme.TotalLabel.Render("Subtotal ") + theme.TotalValue.Render(model.FormatPrice(w.Subtotal)))
	return theme.CartBox.Width(inner).Render(b.String())
}

// RenderPricing renders a checkout breakdown. Local quotes are labelled
// as estimates.
func RenderPricing(theme *styles.Theme, p model.Pricing, width int) string {
	inner := max(width-4, 28)
	row := func(label, value string) string {
		gap := max(inner-util.StringWidth(label)-util.StringWidth(value), 1)
		return theme.TotalLabel.Render(label) + strings.Repeat(" ", gap) + value
	}

	var lines []string
	lines = append(lines, row("Subtotal", model.FormatPrice(p.Subtotal)))
	for _, d := range p.Discounts {
		lines = append(lines, row(d.Description, theme.Savings.Render("-"+model.FormatPrice(d.Amount))))
	}
	lines = append(lines, row("Tax", model.FormatPrice(p.Tax)))
	lines = append(lines, row("Total", theme.TotalValue.Render(model.FormatPrice(p.FinalTotal))))
	if p.Loyalty.PointsEarned > 0 {
		lines = append(lines, theme.Muted.Render(fmt.Sprintf("Earns %d loyalty points", p.Loyalty.PointsEarned)))
	}
	if p.Estimate {
		lines = append(lines, theme.Estimate.Render("Estimate. Final total is confirmed at payment."))
	}
	return strings.Join(lines, "\n")
}
