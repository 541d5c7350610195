// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/session"
	"github.com/jeranaias/aisle-tui/internal/store"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSessions struct {
	mu          sync.Mutex
	id          string
	created     int
	invalidated int
	touched     int
	ensureErr   error
}

func (f *fakeSessions) Ensure(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ensureErr != nil {
		return "", f.ensureErr
	}
	if f.id == "" {
		f.created++
		f.id = fmt.Sprintf("sess-%d", f.created)
	}
	return f.id, nil
}

func (f *fakeSessions) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.id = ""
}

func (f *fakeSessions) Touch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched++
}

func (f *fakeSessions) Channel() model.Channel { return model.ChannelWeb }
func (f *fakeSessions) CustomerID() int        { return 5 }

type chatFunc func(ctx context.Context, req api.ChatRequest) (*model.ChatReply, error)

func (f chatFunc) ChannelChat(ctx context.Context, req api.ChatRequest) (*model.ChatReply, error) {
	return f(ctx, req)
}

type memoryTranscripts struct {
	mu    sync.Mutex
	saved []*model.Conversation
}

func (m *memoryTranscripts) Save(conv *model.Conversation) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, conv)
	return conv.ID, nil
}

func (m *memoryTranscripts) last() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

func reply(text string, cards ...model.ProductCard) *model.ChatReply {
	return &model.ChatReply{
		Type:         "web_response",
		Channel:      model.ChannelWeb,
		Message:      text,
		Intent:       "browse",
		ProductCards: cards,
		QuickReplies: []model.QuickReply{{Type: "text", Text: "Show cheaper"}},
	}
}

func newTestAssistant(chat Chatter) (*Assistant, *fakeSessions, *store.Store, *memoryTranscripts) {
	sessions := &fakeSessions{}
	st := store.New(store.State{})
	transcripts := &memoryTranscripts{}
	a := New(Config{Chat: chat, Sessions: sessions, Store: st, Transcripts: transcripts})
	return a, sessions, st, transcripts
}

// =============================================================================
// SEND
// =============================================================================

func TestSend_Success(t *testing.T) {
	var got api.ChatRequest
	a, sessions, st, transcripts := newTestAssistant(chatFunc(func(ctx context.Context, req api.ChatRequest) (*model.ChatReply, error) {
		got = req
		return reply("Try these", model.ProductCard{ProductID: 9, Name: "Kettle", Price: 30}), nil
	}))
	st.Dispatch(store.AddToCart{Product: model.Product{ID: 1, Name: "Mug", Price: 8}, Quantity: 2})

	msg, err := a.Send(context.Background(), "  need a kettle \n")
	require.NoError(t, err)

	assert.Equal(t, "need a kettle", got.Message)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, 5, got.CustomerID)
	assert.Equal(t, model.ChannelWeb, got.Channel)
	assert.Equal(t, []model.CartItem{{ProductID: 1, Name: "Mug", Price: 8, Quantity: 2}}, got.CartItems)

	assert.Equal(t, model.RoleAssistant, msg.Role)
	assert.Equal(t, "Try these", msg.Content)
	require.Len(t, msg.Cards, 1)

	conv := a.Conversation()
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "sess-1", conv.SessionID)
	assert.Len(t, conv.QuickReplies(), 1)

	assert.Equal(t, 1, sessions.touched)
	require.NotNil(t, transcripts.last())
	assert.Len(t, transcripts.last().Messages, 2)
}

func TestSend_EmptyMessage(t *testing.T) {
	a, _, _, _ := newTestAssistant(chatFunc(func(context.Context, api.ChatRequest) (*model.ChatReply, error) {
		t.Error("backend called for empty message")
		return nil, nil
	}))
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := a.Send(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.True(t, a.Conversation().IsEmpty())
}

func TestSend_BusyWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	a, _, _, _ := newTestAssistant(chatFunc(func(ctx context.Context, req api.ChatRequest) (*model.ChatReply, error) {
		close(entered)
		<-release
		return reply("done"), nil
	}))

	errc := make(chan error, 1)
	go func() {
		_, err := a.Send(context.Background(), "first")
		errc <- err
	}()
	<-entered

	assert.True(t, a.Busy())
	_, err := a.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-errc)
	assert.False(t, a.Busy())

	conv := a.Conversation()
	assert.Len(t, conv.Messages, 2, "rejected message must not reach the transcript")
}

func TestSend_FailureKeepsUserMessage(t *testing.T) {
	a, sessions, st, transcripts := newTestAssistant(chatFunc(func(context.Context, api.ChatRequest) (*model.ChatReply, error) {
		return nil, api.ErrUnreachable
	}))

	_, err := a.Send(context.Background(), "hello")
	require.ErrorIs(t, err, api.ErrUnreachable)

	conv := a.Conversation()
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "hello", conv.Messages[0].Content)
	assert.Equal(t, model.RoleError, conv.Messages[1].Role)
	assert.NotEmpty(t, st.State().LastError)
	assert.Zero(t, sessions.touched)
	assert.NotNil(t, transcripts.last())
}

func TestSend_SessionErrorRecorded(t *testing.T) {
	a, sessions, _, _ := newTestAssistant(chatFunc(func(context.Context, api.ChatRequest) (*model.ChatReply, error) {
		t.Error("chat called without a session")
		return nil, nil
	}))
	sessions.ensureErr = api.ErrTimeout

	_, err := a.Send(context.Background(), "hi")
	assert.ErrorIs(t, err, api.ErrTimeout)
	assert.Equal(t, model.RoleError, a.Conversation().LastMessage().Role)
}

func TestSend_RetriesOnceOnLostSession(t *testing.T) {
	var calls []string
	a, sessions, _, _ := newTestAssistant(chatFunc(func(ctx context.Context, req api.ChatRequest) (*model.ChatReply, error) {
		calls = append(calls, req.SessionID)
		if len(calls) == 1 {
			return nil, api.ErrSessionNotFound
		}
		return reply("welcome back"), nil
	}))

	msg, err := a.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "welcome back", msg.Content)
	assert.Equal(t, []string{"sess-1", "sess-2"}, calls)
	assert.Equal(t, 1, sessions.invalidated)
	assert.Equal(t, "sess-2", a.Conversation().SessionID)
}

func TestSend_GivesUpAfterSecondLostSession(t *testing.T) {
	var calls atomic.Int32
	a, sessions, _, _ := newTestAssistant(chatFunc(func(context.Context, api.ChatRequest) (*model.ChatReply, error) {
		calls.Add(1)
		return nil, api.ErrSessionNotFound
	}))

	_, err := a.Send(context.Background(), "hi")
	assert.ErrorIs(t, err, api.ErrSessionNotFound)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, sessions.invalidated)
}

func TestQuickReply(t *testing.T) {
	var sent string
	a, _, _, _ := newTestAssistant(chatFunc(func(ctx context.Context, req api.ChatRequest) (*model.ChatReply, error) {
		sent = req.Message
		return reply("ok"), nil
	}))

	_, err := a.QuickReply(context.Background(), model.QuickReply{Type: "text", Text: "Show cheaper"})
	require.NoError(t, err)
	assert.Equal(t, "Show cheaper", sent)
}

// =============================================================================
// PANEL AND CARDS
// =============================================================================

func TestOpenAndClose(t *testing.T) {
	a, sessions, st, _ := newTestAssistant(chatFunc(nil))

	require.NoError(t, a.Open(context.Background()))
	assert.True(t, st.State().ChatOpen)
	assert.Equal(t, 1, sessions.created)
	assert.Equal(t, "sess-1", a.Conversation().SessionID)

	a.Close()
	assert.False(t, st.State().ChatOpen)

	sessions.ensureErr = errors.New("down")
	sessions.id = ""
	assert.Error(t, a.Open(context.Background()))
	assert.Equal(t, "down", st.State().LastError)
}

func TestCardActions(t *testing.T) {
	kettle := model.ProductCard{ProductID: 9, Name: "Kettle", Price: 30, Brand: "Boil"}
	a, _, st, _ := newTestAssistant(chatFunc(func(context.Context, api.ChatRequest) (*model.ChatReply, error) {
		return reply("here", kettle), nil
	}))
	_, err := a.Send(context.Background(), "kettle")
	require.NoError(t, err)

	card, ok := a.CardAt(0)
	require.True(t, ok)
	_, ok = a.CardAt(1)
	assert.False(t, ok)

	_, err = a.AddCardToCart(card, 0)
	require.NoError(t, err)
	s, err := a.AddCardToCart(card, 2)
	require.NoError(t, err)
	line, ok := s.CartLine(9)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "Boil", line.Brand)

	s, err = a.SaveCardToWishlist(card)
	require.NoError(t, err)
	assert.True(t, s.InWishlist(9))
	assert.True(t, st.State().InWishlist(9))

	_, err = a.AddCardToCart(model.ProductCard{Name: "ghost"}, 1)
	assert.Error(t, err)
}

func TestResetAndResume(t *testing.T) {
	a, _, _, _ := newTestAssistant(chatFunc(func(context.Context, api.ChatRequest) (*model.ChatReply, error) {
		return reply("hi"), nil
	}))
	_, err := a.Send(context.Background(), "hello")
	require.NoError(t, err)
	saved := a.Conversation()

	a.Reset()
	assert.True(t, a.Conversation().IsEmpty())
	assert.NotEqual(t, saved.ID, a.Conversation().ID)

	a.Resume(saved)
	assert.Equal(t, saved.ID, a.Conversation().ID)
	assert.Len(t, a.Conversation().Messages, 2)
}

// =============================================================================
// AGAINST THE HTTP GATEWAY
// =============================================================================

// TestSend_ThroughGateway runs a turn against an httptest backend that
// forgets the first session.
func TestSend_ThroughGateway(t *testing.T) {
	var creates atomic.Int32
	var chats atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/session/create":
			n := creates.Add(1)
			json.NewEncoder(w).Encode(map[string]any{
				"success":    true,
				"session_id": fmt.Sprintf("s%d", n),
				"channel":    "web",
			})
		case "/channel-chat":
			chats.Add(1)
			if r.URL.Query().Get("session_id") == "s1" {
				json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Session not found"})
				return
			}
			var items []model.CartItem
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&items))
			assert.Len(t, items, 1)
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": map[string]any{
					"type":    "web_response",
					"channel": "web",
					"message": "Found **2** kettles",
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL}, api.WithRateLimit(0, 0))
	mgr := session.NewManager(client, session.DefaultConfig())
	st := store.New(store.State{})
	mgr.OnChange(func(c session.Change) {
		st.Dispatch(store.SetSession{SessionID: c.SessionID, Channel: c.Channel})
	})
	st.Dispatch(store.AddToCart{Product: model.Product{ID: 4, Name: "Tea", Price: 5}})

	a := New(Config{Chat: client, Sessions: mgr, Store: st})
	msg, err := a.Send(context.Background(), "kettles?")
	require.NoError(t, err)

	assert.Equal(t, "Found **2** kettles", msg.Content)
	assert.Equal(t, int32(2), creates.Load())
	assert.Equal(t, int32(2), chats.Load())
	assert.Equal(t, "s2", st.State().SessionID)
}
