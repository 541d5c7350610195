// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists assistant transcripts.
//
// Each model.Conversation is written as one JSON file named after its id.
// Writes are atomic, ids are validated so they cannot escape the base
// directory, and the oldest transcripts are pruned past MaxConversations.
//
// # Usage
//
//	convs, err := storage.NewConversationStore(cfg.ConversationsDir())
//	id, err := convs.Save(conv)
//
//	metas, err := convs.List()             // newest first
//	conv, err := convs.Load(metas[0].ID)
//	hits, err := convs.SearchMessages("running shoes")
//
// # Storage Location
//
// Conversations are stored in ~/.aisle/conversations/ as JSON files.
package storage
