// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aisle-tui/internal/model"
)

func TestWatcher_HydratesOnExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	mine := NewFileBackend(path)
	st, err := Open(mine)
	require.NoError(t, err)
	defer st.Close()

	w, err := NewWatcher(st, mine, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	// A second process writes its own cart.
	other := NewFileBackend(path)
	theirs := Reduce(State{}, AddToCart{Product: watch, Quantity: 3})
	theirs = Reduce(theirs, SetSession{SessionID: "other", Channel: model.ChannelMobile})
	require.NoError(t, other.Save(theirs.Snapshot()))

	require.Eventually(t, func() bool {
		return st.State().ItemCount == 3
	}, 3*time.Second, 20*time.Millisecond)

	s := st.State()
	assert.Equal(t, "other", s.SessionID)
	assert.Equal(t, model.ChannelMobile, s.Channel)
}

func TestWatcher_OwnWriteDoesNotRedispatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	b := NewFileBackend(path)
	st, err := Open(b)
	require.NoError(t, err)
	defer st.Close()

	w, err := NewWatcher(st, b, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	ch, cancel := st.Subscribe()
	defer cancel()
	<-ch

	st.Dispatch(AddToCart{Product: shoe})
	<-ch

	// The reload after our own save finds identical content.
	select {
	case s := <-ch:
		t.Fatalf("unexpected hydrate: %+v", s)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBackend(filepath.Join(dir, "state.json"))
	st := New(State{})
	defer st.Close()

	w, err := NewWatcher(st, b, 10*time.Millisecond, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0600))
	time.Sleep(60 * time.Millisecond)
	assert.True(t, st.State().Empty())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
