// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP gateway to the storefront backend.
//
// The backend is inconsistent about where parameters go: session and
// channel-chat calls take scalars as query parameters, cart and checkout
// calls take JSON bodies, and /channel-chat takes both. Each Client method
// hides that and returns model types.
//
// Responses are unwrapped from the backend's {success, data} envelope.
// success:false, non-2xx statuses and transport failures all surface as
// *ClientError; use errors.Is with the sentinels:
//
//	reply, err := client.ChannelChat(ctx, req)
//	if errors.Is(err, api.ErrSessionNotFound) {
//	    // session expired server-side
//	}
//	if api.IsOffline(err) {
//	    // fall back to cached data
//	}
//
// Requests are rate limited client-side, carry User-Agent and X-Request-ID
// headers, and are retried with exponential backoff when safe.
package api
