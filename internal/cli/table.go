// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. max truncates cell text; zero leaves
// it unbounded.
type column struct {
	title string
	right bool
	max   int
}

// renderTable draws rows under cols with rounded borders.
func renderTable(cols []column, rows [][]string) string {
	n := len(cols)
	if n == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if !ColorsEnabled() {
		tw.Style().Format.Header = text.FormatDefault
	}

	header := make(table.Row, n)
	for i, c := range cols {
		header[i] = c.title
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, n)
		for i := 0; i < n; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, n)
	for i, c := range cols {
		align := text.AlignLeft
		if c.right {
			align = text.AlignRight
		}
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
		if c.max > 0 {
			cfg.WidthMax = c.max
			cfg.WidthMaxEnforcer = text.Trim
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
