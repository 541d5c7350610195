// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the backend chat session.
//
// The backend keys conversation context, server-side cart and channel on
// a session id. Manager creates that id lazily, reuses it while the
// shopper is active, and replaces it after an idle timeout or when the
// backend reports it gone.
//
// # Usage
//
//	mgr := session.NewManager(client, session.Config{
//	    IdleTimeout: 30 * time.Minute,
//	    CustomerID:  cfg.Shopper.CustomerID,
//	    Channel:     model.ChannelWeb,
//	})
//	mgr.OnChange(func(c session.Change) {
//	    st.Dispatch(store.SetSession{SessionID: c.SessionID, Channel: c.Channel})
//	})
//
//	id, err := mgr.Ensure(ctx)
//	...
//	mgr.Touch()
package session
