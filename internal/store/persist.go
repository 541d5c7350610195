// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/jeranaias/aisle-tui/internal/util"
)

// ErrUnsupportedVersion is returned for a snapshot written by a newer build.
var ErrUnsupportedVersion = errors.New("state file written by a newer version")

// Backend persists snapshots.
type Backend interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// FileBackend stores the snapshot as JSON. Reads and writes hold an
// advisory lock on a sibling ".lock" file so two aisle processes never
// interleave; writes go through a temp file and rename.
//
// Each Load and Save opens its own lock handle; flock locks belong to the
// open file, not the process.
type FileBackend struct {
	path string
	now  func() time.Time
}

// NewFileBackend returns a backend for path. Nothing is touched on disk
// until the first Load or Save.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path: path,
		now:  time.Now,
	}
}

// Path returns the snapshot file path.
func (b *FileBackend) Path() string {
	return b.path
}

// LockPath returns the path of the advisory lock file.
func (b *FileBackend) LockPath() string {
	return b.path + ".lock"
}

// Load reads the snapshot. A missing file is an empty snapshot.
func (b *FileBackend) Load() (Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return Snapshot{}, fmt.Errorf("create state dir: %w", err)
	}
	lock := flock.New(b.LockPath())
	if err := lock.RLock(); err != nil {
		return Snapshot{}, fmt.Errorf("lock state: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{Version: SnapshotVersion}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read state: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse state %s: %w", b.path, err)
	}
	if snap.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, snap.Version)
	}
	return snap, nil
}

// Save writes snap atomically.
func (b *FileBackend) Save(snap Snapshot) error {
	snap.Version = SnapshotVersion
	snap.SavedAt = b.now().UTC()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	lock := flock.New(b.LockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock state: %w", err)
	}
	defer lock.Unlock()

	if err := util.AtomicWriteFile(b.path, data, 0600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
