// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Availability decodes the backend's in_stock field, which is a unit count
// on /products and a plain flag on recommendations and product cards.
type Availability struct {
	InStock bool
	// Units is the summed stock, or -1 when only a flag was sent.
	Units int
}

// InStockFlag builds a flag-only Availability.
func InStockFlag(inStock bool) *Availability {
	return &Availability{InStock: inStock, Units: -1}
}

// StockUnits builds a counted Availability.
func StockUnits(units int) *Availability {
	return &Availability{InStock: units > 0, Units: units}
}

// UnmarshalJSON accepts true/false, integers and floats.
func (a *Availability) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Availability{InStock: true, Units: -1}
		return nil
	case bytes.Equal(data, []byte("true")):
		*a = Availability{InStock: true, Units: -1}
		return nil
	case bytes.Equal(data, []byte("false")):
		*a = Availability{InStock: false, Units: -1}
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("in_stock: want bool or number, got %s", data)
	}
	*a = *StockUnits(int(f))
	return nil
}

// MarshalJSON writes the count when known, otherwise the flag.
func (a Availability) MarshalJSON() ([]byte, error) {
	if a.Units >= 0 {
		return json.Marshal(a.Units)
	}
	return json.Marshal(a.InStock)
}

// MarshalYAML mirrors MarshalJSON.
func (a Availability) MarshalYAML() (any, error) {
	if a.Units >= 0 {
		return a.Units, nil
	}
	return a.InStock, nil
}

func (a Availability) String() string {
	switch {
	case a.Units > 0:
		return fmt.Sprintf("%d in stock", a.Units)
	case a.InStock:
		return "in stock"
	default:
		return "out of stock"
	}
}
