// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store holds the current State and applies actions through Reduce.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int
	closed  bool

	backend Backend
	saved   Snapshot
	logger  *zap.Logger
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithBackend persists the snapshot after every action that changes it.
func WithBackend(b Backend) Option {
	return func(s *Store) {
		s.backend = b
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.Named("store")
		}
	}
}

// WithClock overrides time.Now for wishlist timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store holding initial.
func New(initial State, opts ...Option) *Store {
	s := &Store{
		state:  initial.recompute(),
		subs:   make(map[int]chan State),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.saved = s.state.Snapshot()
	return s
}

// Open creates a store hydrated from the backend. A snapshot that cannot
// be read leaves the store empty and is reported; the file is not
// overwritten until the next change.
func Open(b Backend, opts ...Option) (*Store, error) {
	s := New(State{}, append(opts, WithBackend(b))...)
	snap, err := b.Load()
	if err != nil {
		return s, err
	}
	s.mu.Lock()
	s.state = Reduce(s.state, Hydrate{Snapshot: snap})
	s.saved = s.state.Snapshot()
	s.mu.Unlock()
	return s, nil
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the resulting state. Subscribers are
// notified and the snapshot is saved when the persisted subset changed.
func (s *Store) Dispatch(a Action) State {
	a = s.stamp(a)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.state, a)
	s.state = next
	if !s.closed {
		for _, ch := range s.subs {
			publish(ch, next)
		}
	}

	snap := next.Snapshot()
	if snap.sameContent(s.saved) {
		return next
	}
	if _, fromDisk := a.(Hydrate); fromDisk || s.backend == nil {
		s.saved = snap
		return next
	}
	// RELIABILITY: Save under the lock so concurrent dispatches reach the
	// disk in the order they were applied. A failed save is retried on the
	// next dispatch.
	if err := s.backend.Save(snap); err != nil {
		s.logger.Warn("failed to save cart state", zap.Error(err))
		return next
	}
	s.saved = snap
	return next
}

// stamp fills zero timestamps on wishlist actions.
func (s *Store) stamp(a Action) Action {
	switch act := a.(type) {
	case AddToWishlist:
		if act.At.IsZero() {
			act.At = s.now()
		}
		return act
	case ToggleWishlist:
		if act.At.IsZero() {
			act.At = s.now()
		}
		return act
	}
	return a
}

// publish delivers st to ch, replacing any undelivered older state.
// Only the store sends on ch, under s.mu, so the second send cannot block.
func publish(ch chan State, st State) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- st
}

// Subscribe returns a channel that receives the latest state after every
// dispatch, starting with the current one. Slow readers skip intermediate
// states. The cancel function closes the channel; it is safe to call more
// than once.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close closes every subscriber channel. Dispatch keeps working afterwards
// but notifies nobody.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// Snapshot returns the persisted subset of the current state.
func (s *Store) Snapshot() Snapshot {
	return s.State().Snapshot()
}
