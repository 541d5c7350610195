// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/aisle-tui/internal/model"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	store, err := NewConversationStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

// withClock makes each Save one minute later than the previous one so
// list ordering is deterministic.
func withClock(s *ConversationStore) {
	t := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newConv(userText string) *model.Conversation {
	conv := model.NewConversation(model.ChannelWeb)
	conv.AddUserMessage(userText)
	conv.AddReply(model.ChatReply{
		Message: "Here are some options",
		ProductCards: []model.ProductCard{
			{ProductID: 3, Name: "Café Grinder", Price: 49.99, Brand: "Brew"},
		},
		QuickReplies: []model.QuickReply{{Type: "text", Text: "Show more"}},
	})
	return conv
}

// =============================================================================
// CONVERSATION STORE TESTS
// =============================================================================

func TestNewConversationStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "conversations")
	store, err := NewConversationStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if store.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", store.BaseDir, dir)
	}
	if store.MaxConversations != DefaultMaxConversations {
		t.Errorf("MaxConversations = %d, want %d", store.MaxConversations, DefaultMaxConversations)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
}

func TestConversationStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	conv := newConv("Need a coffee grinder")
	conv.SessionID = "sess-1"

	id, err := store.Save(conv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id != conv.ID || !strings.HasPrefix(id, "conv_") {
		t.Errorf("id = %q, conv.ID = %q", id, conv.ID)
	}

	info, err := os.Stat(filepath.Join(store.BaseDir, id+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SessionID != "sess-1" || len(loaded.Messages) != 2 {
		t.Errorf("loaded = %+v", loaded)
	}
	reply := loaded.Messages[1]
	if reply.Role != model.RoleAssistant || len(reply.Cards) != 1 || reply.Cards[0].Name != "Café Grinder" {
		t.Errorf("reply = %+v", reply)
	}
	if loaded.GetTitle() != "Need a coffee grinder" {
		t.Errorf("title = %q", loaded.GetTitle())
	}
}

func TestConversationStore_SaveGeneratesID(t *testing.T) {
	store := newTestStore(t)
	conv := &model.Conversation{}
	conv.AddUserMessage("hi")

	id, err := store.Save(conv)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "conv_") || conv.CreatedAt.IsZero() {
		t.Errorf("id = %q, created = %v", id, conv.CreatedAt)
	}
}

func TestConversationStore_InvalidIDs(t *testing.T) {
	store := newTestStore(t)
	bad := []string{"../escape", "a/b", `a\b`, "with space", "dot.dot", strings.Repeat("x", maxIDLength+1)}

	for _, id := range bad {
		if _, err := store.Load(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Load(%q) err = %v, want ErrInvalidID", id, err)
		}
		if err := store.Delete(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Delete(%q) err = %v, want ErrInvalidID", id, err)
		}
		conv := newConv("x")
		conv.ID = id
		if _, err := store.Save(conv); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Save(%q) err = %v, want ErrInvalidID", id, err)
		}
	}
	if _, err := store.Save(nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Save(nil) err = %v", err)
	}
}

func TestConversationStore_LoadNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Load("nonexistent-id"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
	if err := store.Delete("nonexistent-id"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationStore_Delete(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Save(newConv("Test"))

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(id); !errors.Is(err, ErrConversationNotFound) {
		t.Error("Conversation should not exist after delete")
	}
}

// =============================================================================
// LIST TESTS
// =============================================================================

func TestConversationStore_List(t *testing.T) {
	store := newTestStore(t)
	withClock(store)

	first, _ := store.Save(newConv("first"))
	second, _ := store.Save(newConv("second"))

	// Junk that List must skip
	os.WriteFile(filepath.Join(store.BaseDir, "broken.json"), []byte("{"), 0600)
	os.WriteFile(filepath.Join(store.BaseDir, "notes.txt"), []byte("x"), 0600)

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("List returned %d, want 2", len(metas))
	}
	if metas[0].ID != second || metas[1].ID != first {
		t.Errorf("order = %s, %s; want newest first", metas[0].ID, metas[1].ID)
	}
	if metas[0].MessageCount != 2 || metas[0].Title != "second" {
		t.Errorf("meta = %+v", metas[0])
	}

	conv, err := store.LoadByIndex(1)
	if err != nil || conv.ID != first {
		t.Errorf("LoadByIndex(1) = %v, %v", conv, err)
	}
	if _, err := store.LoadByIndex(5); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("LoadByIndex(5) err = %v", err)
	}
}

func TestConversationStore_ListEmpty(t *testing.T) {
	store := &ConversationStore{BaseDir: filepath.Join(t.TempDir(), "missing"), now: time.Now}
	metas, err := store.List()
	if err != nil || len(metas) != 0 {
		t.Errorf("List = %v, %v", metas, err)
	}
}

func TestConversationStore_Latest(t *testing.T) {
	store := newTestStore(t)
	withClock(store)

	a := newConv("a")
	a.SessionID = "s1"
	b := newConv("b")
	b.SessionID = "s2"
	store.Save(a)
	store.Save(b)

	got, err := store.Latest("s1")
	if err != nil || got.ID != a.ID {
		t.Errorf("Latest(s1) = %v, %v", got, err)
	}
	got, err = store.Latest("")
	if err != nil || got.ID != b.ID {
		t.Errorf("Latest(\"\") = %v, %v", got, err)
	}
	if _, err := store.Latest("s9"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Latest(s9) err = %v", err)
	}
}

func TestConversationStore_EnforceLimit(t *testing.T) {
	store := newTestStore(t)
	withClock(store)
	store.MaxConversations = 3

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := store.Save(newConv("conv"))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	metas, _ := store.List()
	if len(metas) != 3 {
		t.Fatalf("kept %d, want 3", len(metas))
	}
	for _, old := range ids[:2] {
		if _, err := store.Load(old); !errors.Is(err, ErrConversationNotFound) {
			t.Errorf("oldest conversation %s not pruned", old)
		}
	}
}

// =============================================================================
// SEARCH TESTS
// =============================================================================

func TestConversationStore_Search(t *testing.T) {
	store := newTestStore(t)
	store.Save(newConv("Looking for a Crème brûlée torch"))
	store.Save(newConv("running shoes"))

	tests := []struct {
		query string
		want  int
	}{
		{"creme", 1},
		{"BRULEE", 1},
		{"shoes", 1},
		{"laptop", 0},
		{"", 2},
	}
	for _, tt := range tests {
		got, err := store.Search(tt.query)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("Search(%q) = %d results, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestConversationStore_SearchMessages(t *testing.T) {
	store := newTestStore(t)
	store.Save(newConv("something to grind beans"))
	store.Save(newConv("a yoga mat"))

	got, err := store.SearchMessages("cafe grinder")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("card name search = %d results, want 2", len(got))
	}

	got, _ = store.SearchMessages("yoga")
	if len(got) != 1 {
		t.Errorf("content search = %d results, want 1", len(got))
	}
}

func TestConversationStore_Clear(t *testing.T) {
	store := newTestStore(t)
	store.Save(newConv("one"))
	store.Save(newConv("two"))

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	metas, _ := store.List()
	if len(metas) != 0 {
		t.Errorf("List after Clear = %d", len(metas))
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	conv := newConv("Need a grinder")
	md := ExportMarkdown(conv)

	for _, want := range []string{
		"# Need a grinder",
		"Channel: Web",
		"Need a grinder",
		"Here are some options",
		"**Café Grinder** $49.99",
		"`Show more`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestConversationError_Is(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), ErrConversationNotFound)
	if !errors.Is(wrapped, ErrConversationNotFound) {
		t.Error("wrapped error should match")
	}
	if errors.Is(ErrInvalidID, ErrConversationNotFound) {
		t.Error("different errors should not match")
	}
}
