// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable pieces of the aisle storefront.

Components are plain values rendered against a *styles.Theme; they hold no
goroutines and do no I/O. The shop model owns them and feeds them state.

  - ToastManager (toast.go) - auto-dismissing notifications driven by
    ToastTickCmd
  - ProductCard (product.go) - catalog rows, detail blocks and assistant
    cards, with price, rating and stock formatting
  - CartWidget (cart.go) - cart lines with subtotal; RenderPricing draws a
    checkout breakdown
  - StatusBar (statusbar.go) - connection, cart, channel and customer
  - RenderLoyalty (loyalty.go) - tier, points and next-tier progress
  - Explain (errors.go) - maps client, checkout and assistant errors to a
    title and next steps; RenderError draws them as a box
*/
package components
