// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shop

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the storefront.
func (m Model) View() string {
	bodyH := m.bodyHeight()
	mainW, chatW := m.panelWidths()

	var panes []string
	if mainW > 0 {
		pane := lipgloss.NewStyle().
			Width(mainW).
			Height(bodyH).
			MaxHeight(bodyH).
			PaddingLeft(1).
			Render(m.viewMain(mainW - 2))
		panes = append(panes, pane)
	}
	if chatW > 0 {
		panes = append(panes, m.viewAssistant(chatW, bodyH))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	if m.toasts.HasToasts() {
		stack := components.RenderToastStack(m.toasts.Toasts(), m.width, time.Now())
		body = overlayBottom(body, stack)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		"",
		body,
		m.help.View(m.contextHelp()),
		m.viewStatus(),
	)
}

// overlayBottom replaces the last lines of base with over.
func overlayBottom(base, over string) string {
	lines := strings.Split(base, "\n")
	top := strings.Split(over, "\n")
	start := len(lines) - len(top)
	if start < 0 {
		top = top[-start:]
		start = 0
	}
	for i, l := range top {
		lines[start+i] = l
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewHeader() string {
	tabs := []string{m.theme.HeaderBrand.Render("aisle")}
	for t := TabCatalog; t < tabCount; t++ {
		label := t.String()
		switch t {
		case TabCart:
			if m.state.ItemCount > 0 {
				label = fmt.Sprintf("%s (%d)", label, m.state.ItemCount)
			}
		case TabWishlist:
			if n := len(m.state.Wishlist); n > 0 {
				label = fmt.Sprintf("%s (%d)", label, n)
			}
		}
		style := m.theme.Tab
		if t == m.tab {
			style = m.theme.TabActive
		}
		tabs = append(tabs, style.Render(label))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.offline {
		row += "  " + m.theme.StatusOff.Render(styles.StatusIndicators.Warning+" offline")
	}
	return m.theme.Header.Width(m.width).MaxHeight(1).Render(row)
}

func (m Model) viewStatus() string {
	s := m.status
	switch {
	case m.waiting:
		s.Status = components.StatusWaiting
	case m.loading || m.placing:
		s.Status = components.StatusLoading
	case m.loadErr != nil:
		s.Status = components.StatusError
	default:
		s.Status = components.StatusReady
	}
	s.Offline = m.offline
	s.Channel = m.state.Channel
	if s.Channel == "" {
		s.Channel = model.ChannelWeb
	}
	s.SessionID = m.state.SessionID
	s.CustomerID = m.state.CustomerID
	s.Tier, s.Points = "", 0
	if m.loyalty != nil {
		s.Tier, s.Points = m.loyalty.Tier, m.loyalty.Points
	}
	s.SetCart(m.state.ItemCount, m.state.Subtotal)
	return s.View()
}

// =============================================================================
// MAIN PANE
// =============================================================================

func (m Model) viewMain(width int) string {
	switch m.tab {
	case TabCatalog:
		return m.viewCatalog(width)
	case TabCart:
		return m.viewCart(width)
	case TabWishlist:
		return m.viewWishlist(width)
	default:
		return m.viewCheckout(width)
	}
}

func (m Model) viewCatalog(width int) string {
	if m.detail != nil {
		card := m.productCard(*m.detail)
		hint := m.theme.Muted.Render("a add to cart  w wishlist  esc back")
		return card.Render(m.theme, min(width, 72)) + "\n" + hint
	}

	var top string
	if m.focus == focusSearch {
		top = m.search.View()
	} else {
		top = m.viewFilters()
	}

	switch {
	case m.loading && len(m.products.Items()) == 0:
		return top + "\n\n" + m.theme.ThinkingText.Render(m.spinner.View()+" loading products")
	case m.loadErr != nil && len(m.products.Items()) == 0:
		return top + "\n\n" + components.RenderError(m.theme, components.Explain(m.loadErr), width)
	case len(m.products.Items()) == 0:
		return top + "\n\n" + m.theme.Muted.Render("No products match. Press esc to reset the filters.")
	}
	return top + "\n" + m.products.View()
}

// viewFilters summarizes the active query.
func (m Model) viewFilters() string {
	var parts []string
	if m.query.Query != "" {
		parts = append(parts, "\""+util.TruncateRunes(m.query.Query, 30)+"\"")
	}
	cat := "all categories"
	if m.query.Category != "" {
		cat = m.query.Category
	}
	parts = append(parts, cat, "sort: "+string(m.query.SortBy))
	if m.query.InStockOnly {
		parts = append(parts, "in stock only")
	}
	line := m.theme.Muted.Render(strings.Join(parts, " · "))
	if m.loading {
		line += " " + m.theme.Spinner.Render(m.spinner.View())
	}
	return line
}

func (m Model) productCard(p model.Product) components.ProductCard {
	c := components.ProductCard{Product: p}
	if line, ok := m.state.CartLine(p.ID); ok {
		c.InCart = line.Quantity
	}
	c.InWishlist = m.state.InWishlist(p.ID)
	return c
}

func (m Model) viewCart(width int) string {
	w := components.CartWidget{
		Lines:    m.state.Cart,
		Subtotal: m.state.Subtotal,
		Selected: m.cartCursor,
	}
	out := w.Render(m.theme, min(width, 80))
	if len(m.state.Cart) > 0 {
		out += "\n" + m.theme.Muted.Render("+/- quantity  d remove  w save for later  X clear  C checkout")
	}
	return out
}

func (m Model) viewWishlist(width int) string {
	saved := m.state.Wishlist
	if len(saved) == 0 {
		return m.theme.Title.Render("Wishlist") + "\n" +
			m.theme.Muted.Render("Nothing saved yet. Press w on a product to keep it here.")
	}

	rows := []string{m.theme.Title.Render(fmt.Sprintf("Wishlist (%d)", len(saved)))}
	for i, item := range saved {
		c := m.productCard(item.Product)
		c.InWishlist = false
		c.Selected = i == m.wishCursor
		rows = append(rows, c.Row(m.theme, min(width, 80)))
	}
	rows = append(rows, m.theme.Muted.Render("m move to cart  d remove"))
	return strings.Join(rows, "\n")
}

func (m Model) viewCheckout(width int) string {
	width = min(width, 72)
	if m.order != nil && m.orderErr == nil {
		return m.viewOrder(width)
	}

	if m.state.Empty() {
		return m.theme.Title.Render("Checkout") + "\n" +
			m.theme.Muted.Render("Your cart is empty.")
	}

	pricing := checkout.Quote(m.state.Cart, checkout.QuoteOptions{Coupon: m.coupon.Value()})
	if m.quote != nil {
		pricing = *m.quote
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("Checkout (%d items)", m.state.ItemCount)))
	b.WriteString("\n\n")
	b.WriteString(components.RenderPricing(m.theme, pricing, width))
	b.WriteString("\n\n")

	onOff := func(v bool) string {
		if v {
			return m.theme.Savings.Render("on")
		}
		return m.theme.Muted.Render("off")
	}
	b.WriteString(fmt.Sprintf("%s payment  %s\n", m.theme.ShortcutKey.Render("p"), m.payment()))
	if m.focus == focusCoupon {
		b.WriteString(m.coupon.View() + "\n")
	} else {
		code := m.coupon.Value()
		if code == "" {
			code = m.theme.Muted.Render("none")
		}
		b.WriteString(fmt.Sprintf("%s coupon   %s\n", m.theme.ShortcutKey.Render("c"), code))
	}
	if m.state.CustomerID > 0 {
		b.WriteString(fmt.Sprintf("%s points   %s\n", m.theme.ShortcutKey.Render("l"), onOff(m.useLoyalty)))
	}
	b.WriteString(fmt.Sprintf("%s reserve  %s\n", m.theme.ShortcutKey.Render("r"), onOff(m.reserve)))
	b.WriteString("\n")

	switch {
	case m.placing:
		b.WriteString(m.theme.ThinkingText.Render(m.spinner.View() + " placing order"))
	case m.orderErr != nil:
		b.WriteString(components.RenderError(m.theme, components.Explain(m.orderErr), width))
	default:
		b.WriteString(m.theme.Muted.Render("enter place order  esc back to cart"))
	}
	return b.String()
}

func (m Model) viewOrder(width int) string {
	lines := []string{m.theme.SuccessStyle.Render(styles.StatusIndicators.Success + " Order placed")}
	if o := m.order.Order; o != nil {
		lines = append(lines, "", "Order  "+m.theme.ProductName.Render(o.OrderID))
		lines = append(lines, "Total  "+m.theme.TotalValue.Render(model.FormatPrice(o.Pricing.Total)))
		if o.Payment.Method != "" {
			lines = append(lines, "Paid   "+string(o.Payment.Method))
		}
		if o.Loyalty.PointsEarned > 0 {
			lines = append(lines, m.theme.Savings.Render(fmt.Sprintf("Earned %d loyalty points", o.Loyalty.PointsEarned)))
		}
		if o.EstimatedDelivery != "" {
			lines = append(lines, "Arrives "+o.EstimatedDelivery)
		}
	} else if m.order.Pricing != nil {
		lines = append(lines, "", components.RenderPricing(m.theme, *m.order.Pricing, width))
	}
	if m.order.Message != "" {
		lines = append(lines, "", m.theme.Muted.Render(m.order.Message))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// ASSISTANT PANE
// =============================================================================

func (m Model) viewAssistant(width, height int) string {
	style := m.theme.Panel
	if m.focus == focusChat {
		style = m.theme.PanelFocus
	}
	title := m.theme.Title.Render("Assistant")
	if m.waiting {
		title += " " + m.theme.Spinner.Render(m.spinner.View())
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.chatView.View(),
		m.chatInput.View(),
	)
	return style.
		Width(width - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(content)
}
