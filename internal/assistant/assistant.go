// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
)

var (
	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned while another request is in flight.
	ErrBusy = errors.New("assistant is still answering")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Chatter sends one chat turn. *api.Client implements it.
type Chatter interface {
	ChannelChat(ctx context.Context, req api.ChatRequest) (*model.ChatReply, error)
}

// Sessions provides the backend session. *session.Manager implements it.
type Sessions interface {
	Ensure(ctx context.Context) (string, error)
	Invalidate()
	Touch()
	Channel() model.Channel
	CustomerID() int
}

// Transcripts persists conversations. *storage.ConversationStore
// implements it.
type Transcripts interface {
	Save(conv *model.Conversation) (string, error)
}

// Config wires an Assistant. Transcripts and Logger are optional.
type Config struct {
	Chat        Chatter
	Sessions    Sessions
	Store       *store.Store
	Transcripts Transcripts
	Logger      *zap.Logger
}

// =============================================================================
// ASSISTANT
// =============================================================================

// Assistant sequences chat turns: one request at a time, each sent with
// the live session and the current cart.
type Assistant struct {
	chat        Chatter
	sessions    Sessions
	store       *store.Store
	transcripts Transcripts
	logger      *zap.Logger
	now         func() time.Time

	busy atomic.Bool

	mu   sync.Mutex
	conv *model.Conversation
}

// New creates an assistant with an empty transcript.
func New(cfg Config) *Assistant {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		chat:        cfg.Chat,
		sessions:    cfg.Sessions,
		store:       cfg.Store,
		transcripts: cfg.Transcripts,
		logger:      logger.Named("assistant"),
		now:         time.Now,
		conv:        model.NewConversation(cfg.Sessions.Channel()),
	}
}

// Conversation returns a copy of the transcript.
func (a *Assistant) Conversation() *model.Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conv.Clone()
}

// Busy reports whether a request is in flight.
func (a *Assistant) Busy() bool {
	return a.busy.Load()
}

// Resume continues a saved transcript.
func (a *Assistant) Resume(conv *model.Conversation) {
	if conv == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conv = conv.Clone()
}

// Reset starts a fresh transcript. The backend session is kept.
func (a *Assistant) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conv = model.NewConversation(a.sessions.Channel())
}

// =============================================================================
// PANEL
// =============================================================================

// Open shows the assistant panel and makes sure a session exists, so the
// first message does not pay for session creation.
func (a *Assistant) Open(ctx context.Context) error {
	a.store.Dispatch(store.SetChatOpen{Open: true})
	id, err := a.sessions.Ensure(ctx)
	if err != nil {
		a.store.Dispatch(store.SetError{Err: err})
		return err
	}
	a.mu.Lock()
	a.conv.SessionID = id
	a.mu.Unlock()
	return nil
}

// Close hides the assistant panel.
func (a *Assistant) Close() {
	a.store.Dispatch(store.SetChatOpen{Open: false})
}

// =============================================================================
// SENDING
// =============================================================================

// Send posts text to the assistant and returns the reply message. The
// user's message stays in the transcript even when the request fails; the
// failure is recorded as an error message.
func (a *Assistant) Send(ctx context.Context, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !a.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer a.busy.Store(false)

	a.mu.Lock()
	a.conv.AddUserMessage(text)
	a.mu.Unlock()

	start := a.now()
	reply, sessionID, err := a.exchange(ctx, text)
	if err != nil {
		a.logger.Warn("chat request failed", zap.Error(err))
		a.mu.Lock()
		a.conv.AddError(err)
		a.mu.Unlock()
		a.store.Dispatch(store.SetError{Err: err})
		a.persist()
		return nil, err
	}

	msg := model.NewReplyMessage(*reply)
	msg.Latency = a.now().Sub(start)

	a.mu.Lock()
	a.conv.SessionID = sessionID
	a.conv.Channel = reply.Channel
	a.conv.CustomerID = a.sessions.CustomerID()
	a.conv.AddMessage(msg)
	a.mu.Unlock()

	a.sessions.Touch()
	a.store.Dispatch(store.SetError{})
	a.persist()

	a.logger.Debug("chat reply",
		zap.String("session_id", sessionID),
		zap.String("intent", reply.Intent),
		zap.Int("cards", len(msg.Cards)),
		zap.Duration("latency", msg.Latency))
	return msg, nil
}

// exchange runs one request, retrying once with a new session if the
// backend no longer knows the current one.
func (a *Assistant) exchange(ctx context.Context, text string) (*model.ChatReply, string, error) {
	for attempt := 0; ; attempt++ {
		sessionID, err := a.sessions.Ensure(ctx)
		if err != nil {
			return nil, "", err
		}

		reply, err := a.chat.ChannelChat(ctx, api.ChatRequest{
			Message:    text,
			Channel:    a.sessions.Channel(),
			CustomerID: a.sessions.CustomerID(),
			SessionID:  sessionID,
			CartItems:  a.store.State().CartItems(),
		})
		if err == nil {
			return reply, sessionID, nil
		}
		if attempt == 0 && errors.Is(err, api.ErrSessionNotFound) {
			a.logger.Info("session expired on backend, starting a new one", zap.String("session_id", sessionID))
			a.sessions.Invalidate()
			continue
		}
		return nil, sessionID, err
	}
}

// QuickReply sends the text behind a suggested reply.
func (a *Assistant) QuickReply(ctx context.Context, qr model.QuickReply) (*model.Message, error) {
	return a.Send(ctx, qr.Value())
}

// persist saves the transcript if a store is configured. Failures are
// logged; the chat itself already succeeded or failed on its own.
func (a *Assistant) persist() {
	if a.transcripts == nil {
		return
	}
	a.mu.Lock()
	conv := a.conv.Clone()
	a.mu.Unlock()

	if _, err := a.transcripts.Save(conv); err != nil {
		a.logger.Warn("failed to save transcript", zap.String("id", conv.ID), zap.Error(err))
	}
}

// =============================================================================
// CARD ACTIONS
// =============================================================================

// AddCardToCart puts the product behind a reply card in the cart.
func (a *Assistant) AddCardToCart(card model.ProductCard, quantity int) (store.State, error) {
	if card.ProductID == 0 {
		return a.store.State(), fmt.Errorf("card %q has no product id", card.Name)
	}
	return a.store.Dispatch(store.AddToCart{Product: card.Product(), Quantity: quantity}), nil
}

// SaveCardToWishlist saves the product behind a reply card.
func (a *Assistant) SaveCardToWishlist(card model.ProductCard) (store.State, error) {
	if card.ProductID == 0 {
		return a.store.State(), fmt.Errorf("card %q has no product id", card.Name)
	}
	return a.store.Dispatch(store.AddToWishlist{Product: card.Product()}), nil
}

// CardAt returns the index-th product card of the latest reply.
func (a *Assistant) CardAt(index int) (model.ProductCard, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	msg := a.conv.LastReply()
	if msg == nil || index < 0 || index >= len(msg.Cards) {
		return model.ProductCard{}, false
	}
	return msg.Cards[index], true
}
