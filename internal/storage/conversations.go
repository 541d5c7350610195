// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// DefaultMaxConversations caps the number of stored transcripts.
const DefaultMaxConversations = 100

// maxIDLength bounds conversation ids used as file names.
const maxIDLength = 128

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore persists assistant transcripts, one JSON file each.
type ConversationStore struct {
	// BaseDir is the directory for storing conversations
	// Default: ~/.aisle/conversations/
	BaseDir string

	// MaxConversations limits stored conversations (0 = unlimited)
	MaxConversations int

	mu  sync.Mutex
	now func() time.Time
}

// NewConversationStore creates a store under dir, creating it if needed.
func NewConversationStore(dir string) (*ConversationStore, error) {
	// SECURITY: Transcripts can contain addresses and order details.
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create conversations dir: %w", err)
	}
	return &ConversationStore{
		BaseDir:          dir,
		MaxConversations: DefaultMaxConversations,
		now:              time.Now,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists conv and returns its ID. A missing ID is generated; the
// conversation's UpdatedAt is refreshed.
func (s *ConversationStore) Save(conv *model.Conversation) (string, error) {
	if conv == nil {
		return "", ErrInvalidID
	}
	if conv.ID == "" {
		conv.ID = model.NewConversation(conv.Channel).ID
	}
	if err := validateID(conv.ID); err != nil {
		return "", err
	}

	conv.UpdatedAt = s.now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode conversation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFileWithDir(s.filePath(conv.ID), data, 0600, 0700); err != nil {
		return "", err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}
	return conv.ID, nil
}

// enforceLimit removes the oldest conversations over the limit.
// Caller holds s.mu.
func (s *ConversationStore) enforceLimit() {
	metas, err := s.list()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}
	// list is newest first
	for _, meta := range metas[s.MaxConversations:] {
		os.Remove(s.filePath(meta.ID))
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by ID.
func (s *ConversationStore) Load(id string) (*model.Conversation, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("parse conversation %s: %w", id, err)
	}
	if conv.ID == "" {
		conv.ID = id
	}
	return &conv, nil
}

// LoadByIndex loads a conversation by its index in the list (0 = most recent).
func (s *ConversationStore) LoadByIndex(index int) (*model.Conversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrConversationNotFound
	}
	return s.Load(metas[index].ID)
}

// Latest returns the most recently updated conversation for sessionID,
// or ErrConversationNotFound.
func (s *ConversationStore) Latest(sessionID string) (*model.Conversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, meta := range metas {
		if sessionID == "" || meta.SessionID == sessionID {
			return s.Load(meta.ID)
		}
	}
	return nil, ErrConversationNotFound
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved conversations, most recent first.
func (s *ConversationStore) List() ([]model.ConversationMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

func (s *ConversationStore) list() ([]model.ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.ConversationMeta{}, nil
		}
		return nil, err
	}

	metas := make([]model.ConversationMeta, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || util.IsTempFile(name) {
			continue
		}
		conv, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue // Skip corrupted files
		}
		metas = append(metas, conv.Meta())
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds conversations whose title or preview contains query,
// ignoring case and accents.
func (s *ConversationStore) Search(query string) ([]model.ConversationMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	key := util.FoldKey(query)
	if key == "" {
		return all, nil
	}

	var results []model.ConversationMeta
	for _, meta := range all {
		if strings.Contains(util.FoldKey(meta.Title), key) ||
			strings.Contains(util.FoldKey(meta.Preview), key) {
			results = append(results, meta)
		}
	}
	return results, nil
}

// SearchMessages finds conversations where any message, or any product
// card in a reply, mentions query.
func (s *ConversationStore) SearchMessages(query string) ([]model.ConversationMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	key := util.FoldKey(query)
	if key == "" {
		return all, nil
	}

	var results []model.ConversationMeta
	for _, meta := range all {
		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		if conversationMentions(conv, key) {
			results = append(results, meta)
		}
	}
	return results, nil
}

func conversationMentions(conv *model.Conversation, key string) bool {
	for _, msg := range conv.Messages {
		if strings.Contains(util.FoldKey(msg.Content), key) {
			return true
		}
		for _, card := range msg.Cards {
			if strings.Contains(util.FoldKey(card.Name), key) {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID.
func (s *ConversationStore) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved conversations.
func (s *ConversationStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (s *ConversationStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// SECURITY: IDs become file names; only [A-Za-z0-9_-] is accepted so an
// id can never escape BaseDir.
func validateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return ErrInvalidID
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return ErrInvalidID
		}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

	// ErrInvalidID is returned for ids that are empty, too long or contain
	// path characters.
	ErrInvalidID = &ConversationError{Message: "invalid conversation id"}
)

// ConversationError represents a conversation-related error.
// It implements the error interface and can be compared using errors.Is.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
