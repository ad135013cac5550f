package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"

	"github.com/sandeepkv93/daytodo/internal/model"
)

// DiskvBackend keeps one key per day. Each value is a full encoded snapshot
// holding a single bucket, so the same codec validates both layouts.
type DiskvBackend struct {
	store *diskv.Diskv
}

func OpenDiskv(dir string) (*DiskvBackend, error) {
	for _, d := range []string{dir, dir + ".tmp"} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	store := diskv.New(diskv.Options{
		BasePath:     dir,
		TempDir:      dir + ".tmp",
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1 << 20,
	})
	return &DiskvBackend{store: store}, nil
}

func (b *DiskvBackend) Name() string { return string(KindDiskv) }

func (b *DiskvBackend) Load(ctx context.Context) (Snapshot, error) {
	snap := EmptySnapshot()
	for key := range b.store.Keys(ctx.Done()) {
		day := model.Day(key)
		if !day.Valid() {
			continue
		}
		raw, err := b.store.Read(key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("read %s: %w", key, err)
		}
		part, err := Decode(raw)
		if err != nil {
			return Snapshot{}, fmt.Errorf("day %s: %w", key, err)
		}
		if tasks := part.Buckets[day]; len(tasks) > 0 {
			snap.Buckets[day] = tasks
		}
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (b *DiskvBackend) Save(ctx context.Context, snap Snapshot) error {
	stale := make(map[string]struct{})
	for key := range b.store.Keys(ctx.Done()) {
		stale[key] = struct{}{}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for day, tasks := range snap.Buckets {
		if len(tasks) == 0 {
			continue
		}
		data, err := Encode(Snapshot{Version: FormatVersion, Buckets: map[model.Day][]model.Task{day: tasks}})
		if err != nil {
			return err
		}
		if err := b.store.Write(string(day), data); err != nil {
			return fmt.Errorf("write %s: %w", day, err)
		}
		delete(stale, string(day))
	}
	for key := range stale {
		if err := b.store.Erase(key); err != nil {
			return fmt.Errorf("erase %s: %w", key, err)
		}
	}
	return nil
}

func (b *DiskvBackend) Close() error { return nil }
