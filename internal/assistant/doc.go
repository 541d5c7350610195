// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant drives the shopping-assistant chat panel.
//
// A turn appends the user's message, makes sure a backend session
// exists, sends the message with the current cart to /channel-chat and
// appends the reply. Only one turn runs at a time. A session the backend
// has forgotten is replaced and the turn retried once.
//
// Product cards in replies can be added to the cart or wishlist through
// the client store.
package assistant
