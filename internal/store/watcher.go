// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/util"
)

// DefaultDebounce coalesces the burst of events an atomic rename produces.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads the snapshot when another process rewrites it and
// hydrates the store. It watches the directory rather than the file, since
// atomic writes replace the file's inode.
type Watcher struct {
	store    *Store
	backend  *FileBackend
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWatcher starts watching backend's file on behalf of st.
func NewWatcher(st *Store, backend *FileBackend, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(backend.Path())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		store:    st,
		backend:  backend,
		fsw:      fsw,
		debounce: debounce,
		logger:   logger.Named("watcher"),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	target := filepath.Base(w.backend.Path())
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if name != target || util.IsTempFile(name) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("state watcher error", zap.Error(err))
		}
	}
}

// reload hydrates the store if the file differs from what it holds.
func (w *Watcher) reload() {
	snap, err := w.backend.Load()
	if err != nil {
		w.logger.Warn("failed to reload cart state", zap.Error(err))
		return
	}
	if snap.sameContent(w.store.Snapshot()) {
		return
	}
	w.logger.Debug("cart state changed on disk", zap.Int("lines", len(snap.Cart)))
	w.store.Dispatch(Hydrate{Snapshot: snap})
}
