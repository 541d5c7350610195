// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package checkout places orders for the cart held in the store.
//
// Service.Checkout validates the cart and tender, optionally holds stock
// through a reservation, and asks the backend's payment agent to charge.
// A paid order empties the cart. A declined one comes back as a
// *PaymentError carrying the recovery options the agent suggested, or the
// ones /recover-error offers when the agent gave none.
//
// Quote prices a cart locally with the same rules the backend applies so
// the checkout view can show a total before anything is sent.
package checkout
