// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// discover_cmd.go - Recommendation and inventory commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// =============================================================================
// RECOMMEND
// =============================================================================

// HandleRecommend asks the recommendation agent for suggestions.
func HandleRecommend(ctx context.Context, env *Env) error {
	p := env.Args.Parser()
	q := model.RecommendationQuery{
		Occasion:   p.Flag("occasion"),
		Category:   p.Flag("category"),
		CustomerID: env.App.CustomerID(),
	}
	if q.Occasion == "" && p.PositionalCount() > 0 {
		q.Occasion = JoinPositionalArgs(p, 0)
	}
	if b := p.Flag("budget"); b != "" {
		budget, err := parseAmount("--budget", b)
		if err != nil {
			return err
		}
		q.Budget = budget
	}

	recs, err := env.App.Client.Recommendations(ctx, q)
	if err != nil {
		return err
	}
	if recs.Recommendations == nil {
		recs.Recommendations = []model.Recommendation{}
	}

	return env.Out.Emit(recs, func(w io.Writer) error {
		if recs.Reasoning != "" {
			fmt.Fprintln(w, InfoStyle.Render(WrapText(recs.Reasoning, env.width(100))))
		}
		if len(recs.Recommendations) == 0 {
			fmt.Fprintln(w, "No recommendations for that request.")
			return nil
		}
		rows := make([][]string, 0, len(recs.Recommendations))
		for _, r := range recs.Recommendations {
			rows = append(rows, []string{
				strconv.Itoa(r.ProductID),
				r.Name,
				model.FormatPrice(r.Price),
				ratingText(r.Rating),
				r.Reason,
			})
		}
		fmt.Fprintln(w, renderTable([]column{
			{title: "ID", right: true},
			{title: "Name", max: 36},
			{title: "Price", right: true},
			{title: "Rating", right: true},
			{title: "Why", max: 40},
		}, rows))
		if recs.Note != "" {
			env.Out.Note("%s", recs.Note)
		}
		return nil
	})
}

// =============================================================================
// INVENTORY
// =============================================================================

// HandleInventory checks stock for one or more products.
func HandleInventory(ctx context.Context, env *Env) error {
	p := env.Args.Parser()
	if p.PositionalCount() == 0 {
		return ErrMissingArgument("product id", "aisle inventory 12 14 --location Mumbai")
	}

	qty, err := p.FlagInt("qty", 1)
	if err != nil {
		return err
	}
	if qty <= 0 {
		return NewValidationError("--qty", p.Flag("qty"), "must be at least 1")
	}

	req := model.InventoryRequest{Quantities: map[string]int{}}
	for _, raw := range p.PositionalFrom(0) {
		for _, part := range strings.Split(raw, ",") {
			if part == "" {
				continue
			}
			id, err := ParseID(part, "product id")
			if err != nil {
				return err
			}
			req.ProductIDs = append(req.ProductIDs, id)
			req.Quantities[strconv.Itoa(id)] = qty
		}
	}
	location := p.FlagOrDefault("location", env.App.Config.Shopper.Location)

	report, err := env.App.Client.CheckInventory(ctx, req, location)
	if err != nil {
		return err
	}

	return env.Out.Emit(report, func(w io.Writer) error {
		keys := make([]string, 0, len(report.Availability))
		for k := range report.Availability {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})

		var rows [][]string
		for _, k := range keys {
			s := report.Availability[k]
			status := "available"
			if !s.Available {
				status = "unavailable"
			}
			rows = append(rows, []string{
				k, s.ProductName, RenderStatus(status),
				strconv.Itoa(s.TotalStock), locationSummary(s), s.Reason,
			})
		}
		fmt.Fprintln(w, renderTable([]column{
			{title: "ID", right: true},
			{title: "Product", max: 32},
			{title: "Status"},
			{title: "Stock", right: true},
			{title: "Locations", max: 40},
			{title: "Note", max: 30},
		}, rows))

		if !report.AllAvailable() {
			for _, k := range keys {
				s := report.Availability[k]
				for _, alt := range s.Alternatives {
					env.Out.Note("Instead of #%s: #%d %s (%s)", k, alt.ProductID, alt.Name, model.FormatPrice(alt.Price))
				}
			}
		}
		return nil
	})
}

// locationSummary lists the locations that can fulfil s.
func locationSummary(s model.StockLevel) string {
	var parts []string
	for _, l := range s.Locations {
		if l.CanFulfill {
			parts = append(parts, fmt.Sprintf("%s (%d)", l.Location, l.AvailableQuantity))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
