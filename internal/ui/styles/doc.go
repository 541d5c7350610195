// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the aisle storefront.

All colors use Lip Gloss AdaptiveColor so they follow the terminal's light
or dark background. NewTheme can force either mode; "auto" asks the
terminal.

# Colors (colors.go)

  - Cyan - brand, active tab, shortcuts
  - Purple - assistant panel and selections
  - Emerald - prices, stock, savings
  - Amber - ratings, estimates, offline mode
  - Rose - errors, out of stock, discount badges

Status messages always carry an ASCII indicator ([OK], [X], [!], [i]) so
they read without color.

# Theme (theme.go)

Theme groups the lipgloss styles by area: frame, products, cart and
checkout, assistant, status bar and errors. GetLayoutMode maps the window
width to narrow, medium or wide layouts.

# Progress (progress.go)

Spinner frame sets, a text progress bar used for loyalty tier progress,
and RenderStars for product ratings.
*/
package styles
