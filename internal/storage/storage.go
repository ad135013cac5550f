// Package storage persists the whole day-to-tasks map. Every backend reads
// and writes a complete Snapshot; there is no incremental update.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sandeepkv93/daytodo/internal/model"
)

// FormatVersion leads every encoded snapshot so older data can be detected
// and migrated.
const FormatVersion = 1

var (
	ErrCorrupt        = errors.New("storage: persisted data is malformed")
	ErrLocked         = errors.New("storage: data file is locked by another process")
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

type Snapshot struct {
	Version int
	Buckets map[model.Day][]model.Task
}

func EmptySnapshot() Snapshot {
	return Snapshot{Version: FormatVersion, Buckets: make(map[model.Day][]model.Task)}
}

// Days returns the bucket keys in calendar order.
func (s Snapshot) Days() []model.Day {
	out := make([]model.Day, 0, len(s.Buckets))
	for day := range s.Buckets {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Snapshot) Len() int {
	n := 0
	for _, tasks := range s.Buckets {
		n += len(tasks)
	}
	return n
}

type Backend interface {
	Name() string
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindDiskv  Kind = "diskv"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case "":
		return KindFile, nil
	case KindFile, KindSQLite, KindDiskv:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, raw)
	}
}

// Open creates the backend of the given kind rooted at dir.
func Open(kind Kind, dir string) (Backend, error) {
	switch kind {
	case KindFile, "":
		return OpenFile(filepath.Join(dir, "tasks.db"))
	case KindSQLite:
		return OpenSQLite(filepath.Join(dir, "tasks.sqlite"))
	case KindDiskv:
		return OpenDiskv(filepath.Join(dir, "days"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}

// normalizeBucket enforces one task per title, keeping the last one seen.
func normalizeBucket(day model.Day, tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		t.Day = day
		if t.Repeat == "" {
			t.Repeat = model.RepeatNone
		}
		for i := range out {
			if out[i].Title == t.Title {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
		out = append(out, t)
	}
	return out
}
