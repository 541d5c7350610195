// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Prices travel as float dollars on the wire. Totals are accumulated in
// integer cents so that a subtotal is exactly the sum of its lines.

// Cents converts a dollar amount to whole cents, rounding half away from zero.
func Cents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// FromCents converts cents back to dollars.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// priceFormat groups thousands the way US receipts do.
var priceFormat = message.NewPrinter(language.English)

// FormatPrice renders a dollar amount as "$1,234.50".
func FormatPrice(dollars float64) string {
	cents := Cents(dollars)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + priceFormat.Sprintf("$%.2f", FromCents(cents))
}
