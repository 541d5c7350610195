// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface functionality.
// This file contains shared helper functions used across multiple CLI commands.
package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
)

// theme returns the storefront theme for card rendering.
func (e *Env) theme() *styles.Theme {
	mode := styles.ModeAuto
	if e.App != nil {
		mode = e.App.Config.UI.Theme
	}
	return styles.NewTheme(mode)
}

// width caps the terminal width for card layouts.
func (e *Env) width(limit int) int {
	w := e.Out.Width
	if w <= 0 {
		w = DefaultTerminalWidth
	}
	return min(w, limit)
}

// stockText renders availability as plain text for tables.
func stockText(a *model.Availability) string {
	if a == nil {
		return "-"
	}
	return a.String()
}

// ratingText renders a rating as "4.5" or "-".
func ratingText(r float64) string {
	if r <= 0 {
		return "-"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// productRows converts products to table rows.
func productRows(products []model.Product) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		price := model.FormatPrice(p.Price)
		if pct := p.DiscountPercent(); pct > 0 {
			price = fmt.Sprintf("%s (-%d%%)", price, pct)
		}
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			p.Name,
			p.Brand,
			p.Category,
			price,
			ratingText(p.Rating),
			stockText(p.InStock),
		})
	}
	return rows
}

// productColumns are the columns of every product listing.
var productColumns = []column{
	{title: "ID", right: true},
	{title: "Name", max: 40},
	{title: "Brand", max: 18},
	{title: "Category", max: 16},
	{title: "Price", right: true},
	{title: "Rating", right: true},
	{title: "Stock"},
}

// parseAmount parses a dollar amount such as "49.99" or "$50".
func parseAmount(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "$"), 64)
	if err != nil || f <= 0 {
		return 0, ErrInvalidFormat(field, s, "an amount such as 49.99")
	}
	return f, nil
}

// ValidateOutputPath cleans path for writing an export and rejects
// directories.
func ValidateOutputPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrMissingArgument("--out", "--out transcript.md")
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", NewValidationError("--out", path, err.Error())
	}
	if strings.HasSuffix(path, string(filepath.Separator)) {
		return "", NewValidationError("--out", path, "must name a file")
	}
	return abs, nil
}
