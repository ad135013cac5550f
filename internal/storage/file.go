package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
)

// FileBackend stores the encoded snapshot in a single file. A sibling
// ".lock" file is held for the lifetime of the backend so two processes
// never write the same data file.
type FileBackend struct {
	path string
	lock *flock.Flock
}

func OpenFile(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &FileBackend{path: path, lock: lock}, nil
}

func (b *FileBackend) Name() string { return string(KindFile) }

func (b *FileBackend) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return EmptySnapshot(), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", b.path, err)
	}
	return Decode(raw)
}

func (b *FileBackend) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(b.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return b.lock.Unlock()
}
