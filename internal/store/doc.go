// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store is the client-side shopping state: cart, wishlist and the
// shopper's session identity.
//
// All changes go through Reduce, a pure function of (State, Action). The
// cart merges by product id, so adding a product that is already present
// raises its quantity instead of adding a second line, and removing a
// product that is not present changes nothing. Subtotal is recomputed in
// integer cents after every action.
//
// Store wraps Reduce with locking, subscriptions and persistence. Only the
// Snapshot subset (cart, wishlist, session id, customer id, channel) is
// written to disk; panel visibility and errors are not. A Watcher picks up
// snapshots written by another aisle process.
//
//	st, err := store.Open(store.NewFileBackend(cfg.StatePath()))
//	st.Dispatch(store.AddToCart{Product: p, Quantity: 2})
//	updates, cancel := st.Subscribe()
//	defer cancel()
package store
