// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shop

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
)

// productItem adapts a product to list.Item.
type productItem struct {
	product model.Product
}

func (i productItem) FilterValue() string {
	return i.product.Name + " " + i.product.Brand + " " + i.product.Category
}

// rowMarks is shared by every copy of the model so rows reflect the
// latest cart and wishlist.
type rowMarks struct {
	theme   *styles.Theme
	compact bool
	state   store.State
}

// productDelegate draws catalog rows with components.ProductCard.
type productDelegate struct {
	marks *rowMarks
}

func (d productDelegate) Height() int {
	if d.marks.compact {
		return 1
	}
	return 2
}

func (d productDelegate) Spacing() int { return 0 }

func (d productDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d productDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(productItem)
	if !ok {
		return
	}
	card := d.card(it.product, index == m.Index())
	fmt.Fprint(w, card.Row(d.marks.theme, m.Width()))
	if d.marks.compact {
		return
	}

	theme := d.marks.theme
	var meta []string
	if it.product.Brand != "" {
		meta = append(meta, it.product.Brand)
	}
	if it.product.Category != "" {
		meta = append(meta, it.product.Category)
	}
	line := "    " + theme.Muted.Render(strings.Join(meta, " · "))
	if it.product.Rating > 0 {
		line += "  " + components.FormatRating(theme, it.product.Rating)
	}
	fmt.Fprint(w, "\n"+line)
}

// card builds the row card with cart and wishlist marks.
func (d productDelegate) card(p model.Product, selected bool) components.ProductCard {
	c := components.ProductCard{Product: p, Selected: selected}
	if line, ok := d.marks.state.CartLine(p.ID); ok {
		c.InCart = line.Quantity
	}
	c.InWishlist = d.marks.state.InWishlist(p.ID)
	return c
}

// productItems converts products to list items.
func productItems(products []model.Product) []list.Item {
	items := make([]list.Item, len(products))
	for i, p := range products {
		items[i] = productItem{product: p}
	}
	return items
}
