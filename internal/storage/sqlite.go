package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/daytodo/internal/model"
)

// SQLiteBackend keeps one row per task. Save replaces every row inside a
// single transaction so readers never observe a half-written snapshot.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// OpenSQLite opens path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	backend, err := NewSQLiteBackend(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return backend, nil
}

func (b *SQLiteBackend) Name() string { return string(KindSQLite) }

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) formatVersion(ctx context.Context) (int, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'format_version'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: missing format_version", ErrCorrupt)
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: format_version %q", ErrCorrupt, raw)
	}
	return v, nil
}

func (b *SQLiteBackend) Load(ctx context.Context) (Snapshot, error) {
	version, err := b.formatVersion(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if version != FormatVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, version)
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT day, title, done, from_clock, to_clock, deadline_day, deadline_at,
		       reminder_day, reminder_at, important, urgent, repeat
		FROM tasks ORDER BY day ASC, position ASC`)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	snap := EmptySnapshot()
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return Snapshot{}, scanErr
		}
		if err := task.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, task.Day, err)
		}
		snap.Buckets[task.Day] = append(snap.Buckets[task.Day], task)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}
	for day, tasks := range snap.Buckets {
		snap.Buckets[day] = normalizeBucket(day, tasks)
	}
	return snap, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, snap Snapshot) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (day, position, title, done, from_clock, to_clock, deadline_day, deadline_at,
		                   reminder_day, reminder_at, important, urgent, repeat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, day := range snap.Days() {
		for pos, t := range snap.Buckets[day] {
			if _, err = stmt.ExecContext(ctx,
				string(day), pos, t.Title, boolInt(t.Done), string(t.From), string(t.To),
				string(t.Deadline.Day), string(t.Deadline.At), string(t.Reminder.Day), string(t.Reminder.At),
				boolInt(t.Important), boolInt(t.Urgent), string(t.Repeat.Normalize()),
			); err != nil {
				return fmt.Errorf("insert %s/%q: %w", day, t.Title, err)
			}
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('format_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(FormatVersion),
	); err != nil {
		return fmt.Errorf("write format version: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var (
		out                     model.Task
		day, from, to, repeat   string
		deadlineDay, deadlineAt string
		reminderDay, reminderAt string
		done, important, urgent int
	)
	if err := s.Scan(&day, &out.Title, &done, &from, &to, &deadlineDay, &deadlineAt,
		&reminderDay, &reminderAt, &important, &urgent, &repeat); err != nil {
		return model.Task{}, err
	}
	parsed, err := model.ParseDay(day)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	out.Day = parsed
	out.Done = done != 0
	out.From = model.Clock(from)
	out.To = model.Clock(to)
	out.Deadline = model.Stamp{Day: model.Day(deadlineDay), At: model.Clock(deadlineAt)}
	out.Reminder = model.Stamp{Day: model.Day(reminderDay), At: model.Clock(reminderAt)}
	out.Important = important != 0
	out.Urgent = urgent != 0
	out.Repeat = model.Repeat(repeat).Normalize()
	return out, nil
}
