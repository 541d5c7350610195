// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package shop is the bubbletea storefront.

The model has four tabs (Catalog, Cart, Wishlist, Checkout) and an
assistant panel that can be toggled beside them. All state that outlives a
frame lives in the store; the model keeps only view state (cursors, focus,
inputs) and the last results of backend calls.

Backend calls never run inside Update. Each one is a tea.Cmd in
commands.go that returns one of the Msg types in messages.go. Store changes
reach the model through a subscription bridged into a Cmd that is re-armed
after every state it delivers, so changes made elsewhere (the assistant
adding a card to the cart, another process editing the state file) show up
without polling.

Files:

  - model.go    - Model, Config and Run
  - keys.go     - key bindings and help
  - messages.go - Msg types
  - commands.go - backend calls as Cmds
  - update.go   - Update and per-tab key handling
  - view.go     - layout and rendering
  - delegate.go - catalog list items
  - chat.go     - assistant panel transcript
*/
package shop
