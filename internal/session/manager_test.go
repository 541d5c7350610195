// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/model"
)

// fakeBackend hands out sequential session ids.
type fakeBackend struct {
	creates  atomic.Int32
	switches atomic.Int32
	delay    time.Duration

	createErr error
	switchErr error

	mu           sync.Mutex
	lastCustomer int
	lastChannel  model.Channel
}

func (f *fakeBackend) CreateSession(ctx context.Context, customerID int, channel model.Channel) (*model.Session, error) {
	n := f.creates.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	f.lastCustomer = customerID
	f.lastChannel = channel
	f.mu.Unlock()
	return &model.Session{ID: fmt.Sprintf("sess-%d", n), Channel: channel, CustomerID: customerID}, nil
}

func (f *fakeBackend) SwitchChannel(ctx context.Context, sessionID string, channel model.Channel) (*model.ChannelSwitch, error) {
	f.switches.Add(1)
	if f.switchErr != nil {
		return nil, f.switchErr
	}
	return &model.ChannelSwitch{SessionID: sessionID, NewChannel: channel, ContextPreserved: true}, nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestManager(b *fakeBackend, cfg Config) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	m := NewManager(b, cfg)
	m.now = clock.Now
	return m, clock
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IdleTimeout != 30*time.Minute {
		t.Errorf("Default IdleTimeout = %v, want 30m", cfg.IdleTimeout)
	}
	if cfg.Channel != model.ChannelWeb {
		t.Errorf("Default Channel = %q, want web", cfg.Channel)
	}
}

func TestNewManager_FillsZeroConfig(t *testing.T) {
	m := NewManager(&fakeBackend{}, Config{})
	if m.idleTimeout != 30*time.Minute {
		t.Errorf("idleTimeout = %v", m.idleTimeout)
	}
	if m.Channel() != model.ChannelWeb {
		t.Errorf("Channel = %q", m.Channel())
	}
	if m.SessionID() != "" || !m.IsExpired() {
		t.Error("new manager should have no session")
	}
}

// =============================================================================
// ENSURE TESTS
// =============================================================================

func TestEnsure_CreatesOnceAndReuses(t *testing.T) {
	b := &fakeBackend{}
	m, _ := newTestManager(b, Config{CustomerID: 7, Channel: model.ChannelMobile})

	var changes []Change
	m.OnChange(func(c Change) { changes = append(changes, c) })

	id1, err := m.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	id2, err := m.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	if id1 != "sess-1" || id2 != id1 {
		t.Errorf("ids = %q, %q; want sess-1 twice", id1, id2)
	}
	if got := b.creates.Load(); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
	if b.lastCustomer != 7 || b.lastChannel != model.ChannelMobile {
		t.Errorf("created with %d/%q", b.lastCustomer, b.lastChannel)
	}
	want := []Change{{SessionID: "sess-1", Channel: model.ChannelMobile, CustomerID: 7}}
	if len(changes) != 1 || changes[0] != want[0] {
		t.Errorf("changes = %+v, want %+v", changes, want)
	}
}

func TestEnsure_ConcurrentCallersShareCreation(t *testing.T) {
	b := &fakeBackend{delay: 20 * time.Millisecond}
	m := NewManager(b, DefaultConfig())

	const n = 10
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := m.Ensure(context.Background())
			if err != nil {
				t.Errorf("Ensure: %v", err)
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	if got := b.creates.Load(); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
	for i, id := range ids {
		if id != "sess-1" {
			t.Errorf("caller %d got %q", i, id)
		}
	}
}

func TestEnsure_IdleTimeoutRecreates(t *testing.T) {
	b := &fakeBackend{}
	m, clock := newTestManager(b, Config{IdleTimeout: 10 * time.Minute})
	ctx := context.Background()

	if _, err := m.Ensure(ctx); err != nil {
		t.Fatal(err)
	}
	clock.Advance(9 * time.Minute)
	m.Touch()
	clock.Advance(9 * time.Minute)

	id, _ := m.Ensure(ctx)
	if id != "sess-1" {
		t.Errorf("touched session replaced early: %q", id)
	}

	clock.Advance(10 * time.Minute)
	if !m.IsExpired() {
		t.Error("session should be expired")
	}
	if m.SessionID() != "" {
		t.Errorf("SessionID() = %q for expired session", m.SessionID())
	}
	id, _ = m.Ensure(ctx)
	if id != "sess-2" {
		t.Errorf("after timeout got %q, want sess-2", id)
	}
}

func TestEnsure_Error(t *testing.T) {
	b := &fakeBackend{createErr: api.ErrUnreachable}
	m := NewManager(b, DefaultConfig())

	called := false
	m.OnChange(func(Change) { called = true })

	_, err := m.Ensure(context.Background())
	if !errors.Is(err, api.ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
	if called {
		t.Error("OnChange fired on failure")
	}

	b.createErr = nil
	if id, err := m.Ensure(context.Background()); err != nil || id == "" {
		t.Errorf("retry: %q, %v", id, err)
	}
}

// =============================================================================
// INVALIDATE / RESTORE / CUSTOMER
// =============================================================================

func TestInvalidate(t *testing.T) {
	b := &fakeBackend{}
	m := NewManager(b, DefaultConfig())
	ctx := context.Background()

	var last Change
	count := 0
	m.OnChange(func(c Change) { last = c; count++ })

	m.Invalidate()
	if count != 0 {
		t.Error("invalidating nothing should not notify")
	}

	m.Ensure(ctx)
	m.Invalidate()
	if last.SessionID != "" || count != 2 {
		t.Errorf("last change = %+v after %d notifications", last, count)
	}

	id, _ := m.Ensure(ctx)
	if id != "sess-2" {
		t.Errorf("Ensure after Invalidate = %q", id)
	}
}

func TestRestore(t *testing.T) {
	b := &fakeBackend{}
	m, clock := newTestManager(b, Config{IdleTimeout: time.Minute})

	m.Restore("", model.ChannelWhatsApp)
	if m.Channel() != model.ChannelWeb {
		t.Error("empty restore should be ignored")
	}

	m.Restore("saved-1", model.ChannelWhatsApp)
	id, err := m.Ensure(context.Background())
	if err != nil || id != "saved-1" {
		t.Fatalf("Ensure = %q, %v", id, err)
	}
	if m.Channel() != model.ChannelWhatsApp {
		t.Errorf("Channel = %q", m.Channel())
	}
	if b.creates.Load() != 0 {
		t.Error("restored session should not create")
	}

	clock.Advance(2 * time.Minute)
	id, _ = m.Ensure(context.Background())
	if id != "sess-1" {
		t.Errorf("expired restored session not replaced: %q", id)
	}
}

func TestSetCustomer_DropsSession(t *testing.T) {
	b := &fakeBackend{}
	m := NewManager(b, DefaultConfig())
	ctx := context.Background()
	m.Ensure(ctx)

	var changes []Change
	m.OnChange(func(c Change) { changes = append(changes, c) })

	m.SetCustomer(0)
	if len(changes) != 0 {
		t.Error("same customer should not notify")
	}

	m.SetCustomer(42)
	if m.CustomerID() != 42 || m.SessionID() != "" {
		t.Errorf("customer %d, session %q", m.CustomerID(), m.SessionID())
	}
	if len(changes) != 1 || changes[0].CustomerID != 42 {
		t.Errorf("changes = %+v", changes)
	}

	m.Ensure(ctx)
	if b.lastCustomer != 42 {
		t.Errorf("new session for customer %d", b.lastCustomer)
	}
}

// =============================================================================
// CHANNEL SWITCH
// =============================================================================

func TestSwitchChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid channel", func(t *testing.T) {
		m := NewManager(&fakeBackend{}, DefaultConfig())
		if _, err := m.SwitchChannel(ctx, "fax"); err == nil {
			t.Error("expected error for unknown channel")
		}
	})

	t.Run("no session changes locally", func(t *testing.T) {
		b := &fakeBackend{}
		m := NewManager(b, DefaultConfig())
		res, err := m.SwitchChannel(ctx, model.ChannelInStore)
		if err != nil || res != nil {
			t.Fatalf("SwitchChannel = %+v, %v", res, err)
		}
		if b.switches.Load() != 0 {
			t.Error("backend called without a session")
		}
		if m.Channel() != model.ChannelInStore {
			t.Errorf("Channel = %q", m.Channel())
		}
	})

	t.Run("same channel is a no-op", func(t *testing.T) {
		b := &fakeBackend{}
		m := NewManager(b, DefaultConfig())
		m.Ensure(ctx)
		if _, err := m.SwitchChannel(ctx, model.ChannelWeb); err != nil {
			t.Fatal(err)
		}
		if b.switches.Load() != 0 {
			t.Error("backend called for unchanged channel")
		}
	})

	t.Run("live session calls backend", func(t *testing.T) {
		b := &fakeBackend{}
		m := NewManager(b, DefaultConfig())
		m.Ensure(ctx)

		var got Change
		m.OnChange(func(c Change) { got = c })

		res, err := m.SwitchChannel(ctx, model.ChannelWhatsApp)
		if err != nil {
			t.Fatal(err)
		}
		if res == nil || !res.ContextPreserved || res.NewChannel != model.ChannelWhatsApp {
			t.Errorf("result = %+v", res)
		}
		if got.SessionID != "sess-1" || got.Channel != model.ChannelWhatsApp {
			t.Errorf("change = %+v", got)
		}
	})

	t.Run("session gone", func(t *testing.T) {
		b := &fakeBackend{switchErr: api.ErrSessionNotFound}
		m := NewManager(b, DefaultConfig())
		m.Ensure(ctx)

		res, err := m.SwitchChannel(ctx, model.ChannelMobile)
		if err != nil || res != nil {
			t.Fatalf("SwitchChannel = %+v, %v", res, err)
		}
		if m.SessionID() != "" || m.Channel() != model.ChannelMobile {
			t.Errorf("session %q channel %q", m.SessionID(), m.Channel())
		}
	})

	t.Run("backend error keeps channel", func(t *testing.T) {
		b := &fakeBackend{switchErr: api.ErrUnreachable}
		m := NewManager(b, DefaultConfig())
		m.Ensure(ctx)

		if _, err := m.SwitchChannel(ctx, model.ChannelMobile); !errors.Is(err, api.ErrUnreachable) {
			t.Errorf("err = %v", err)
		}
		if m.Channel() != model.ChannelWeb {
			t.Errorf("Channel = %q after failure", m.Channel())
		}
	})
}

// =============================================================================
// STATUS
// =============================================================================

func TestGetStatus(t *testing.T) {
	m, clock := newTestManager(&fakeBackend{}, Config{IdleTimeout: 10 * time.Minute})

	st := m.GetStatus()
	if !st.IsExpired || st.SessionID != "" || st.RemainingTime != 0 {
		t.Errorf("empty status = %+v", st)
	}

	m.Ensure(context.Background())
	clock.Advance(4 * time.Minute)
	st = m.GetStatus()
	if st.IsExpired || st.IdleTime != 4*time.Minute || st.RemainingTime != 6*time.Minute {
		t.Errorf("status = %+v", st)
	}
	if st.Duration != 4*time.Minute {
		t.Errorf("Duration = %v", st.Duration)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
