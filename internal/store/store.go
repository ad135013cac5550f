// Package store owns the day-to-tasks map. Every mutation updates memory
// under a mutex and hands a full snapshot to a single persistence writer
// before the lock is released, so writes land in mutation order.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/daytodo/internal/model"
	"github.com/sandeepkv93/daytodo/internal/storage"
)

// RepeatSpan is how many days past the selected day DeleteRepeatedOccurrences
// sweeps.
const RepeatSpan = 100

var (
	ErrNotFound          = errors.New("store: task not found")
	ErrPosition          = errors.New("store: position out of range")
	ErrNothingCompleted  = errors.New("store: no completed tasks on this day")
	ErrRepeatUnsupported = model.ErrRepeatUnsupported
)

// Notifier receives every task whose alarm may have changed. Schedule must
// cancel any pending alarm when the task no longer has a future trigger.
type Notifier interface {
	Schedule(task model.Task) error
	Cancel(task model.Task)
}

type nopNotifier struct{}

func (nopNotifier) Schedule(model.Task) error { return nil }
func (nopNotifier) Cancel(model.Task)         {}

type Options struct {
	Logger   *log.Logger
	Notifier Notifier
	// Now defaults to time.Now; it decides which day a dateless task lands on.
	Now func() time.Time
}

type Store struct {
	mu       sync.Mutex
	buckets  map[model.Day][]model.Task
	writer   *writer
	backend  storage.Backend
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

func New(backend storage.Backend, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		buckets:  make(map[model.Day][]model.Task),
		writer:   newWriter(backend, logger),
		backend:  backend,
		notifier: notifier,
		logger:   logger,
		now:      now,
	}
}

// SetNotifier swaps the notifier; the host wires it once the engine exists.
func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Load replaces the in-memory map with the persisted one. On failure the
// store is left empty and the error is returned as a warning.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.backend.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.buckets = make(map[model.Day][]model.Task)
		s.logger.Warn("load failed, starting empty", "backend", s.backend.Name(), "err", err)
		return fmt.Errorf("store: load %s: %w", s.backend.Name(), err)
	}
	s.buckets = make(map[model.Day][]model.Task, len(snap.Buckets))
	for day, tasks := range snap.Buckets {
		if len(tasks) > 0 {
			s.buckets[day] = append([]model.Task(nil), tasks...)
		}
	}
	s.logger.Info("loaded tasks", "backend", s.backend.Name(), "days", len(s.buckets), "tasks", snap.Len())
	return nil
}

// Close drains pending writes and releases the backend.
func (s *Store) Close(ctx context.Context) error {
	if err := s.writer.close(ctx); err != nil {
		return err
	}
	return s.backend.Close()
}

func (s *Store) today() model.Day {
	return model.DayOf(s.now())
}

// persistLocked snapshots the map and queues it. Callers hold s.mu.
func (s *Store) persistLocked(count int, warn error) Outcome {
	snap := storage.Snapshot{
		Version: storage.FormatVersion,
		Buckets: make(map[model.Day][]model.Task, len(s.buckets)),
	}
	for day, tasks := range s.buckets {
		snap.Buckets[day] = append([]model.Task(nil), tasks...)
	}
	return Outcome{Count: count, Warn: warn, write: s.writer.enqueue(snap)}
}

func (s *Store) scheduleLocked(t model.Task) error {
	if err := s.notifier.Schedule(t); err != nil {
		s.logger.Warn("schedule notification", "day", t.Day, "title", t.Title, "err", err)
		return err
	}
	return nil
}

func indexOf(tasks []model.Task, title string) int {
	for i := range tasks {
		if tasks[i].Title == title {
			return i
		}
	}
	return -1
}

func (s *Store) setBucketLocked(day model.Day, tasks []model.Task) {
	if len(tasks) == 0 {
		delete(s.buckets, day)
		return
	}
	s.buckets[day] = tasks
}

// Add inserts task on its day, replacing any task with the same title.
func (s *Store) Add(task model.Task) (Outcome, error) {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return Outcome{}, model.ErrEmptyTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.Day.IsZero() {
		task.Day = s.today()
	}
	task.Repeat = task.Repeat.Normalize()
	if err := task.Validate(); err != nil {
		return Outcome{}, err
	}

	bucket := s.buckets[task.Day]
	if i := indexOf(bucket, task.Title); i >= 0 {
		bucket = append(bucket[:i:i], bucket[i+1:]...)
	}
	s.buckets[task.Day] = append(bucket, task)

	warn := s.scheduleLocked(task)
	s.logger.Debug("added task", "day", task.Day, "title", task.Title)
	return s.persistLocked(1, warn), nil
}

// ExpandDaily copies task onto each of the DailyOccurrences days after its
// own day. A day already holding the title is left untouched.
func (s *Store) ExpandDaily(task model.Task) (Outcome, error) {
	return s.expand(task, model.RepeatDaily, func(existing model.Task) bool { return true })
}

// ExpandWeekly copies task onto the same weekday for WeeklyOccurrences
// weeks. Only an existing weekly task with the title blocks a copy.
func (s *Store) ExpandWeekly(task model.Task) (Outcome, error) {
	return s.expand(task, model.RepeatWeekly, func(existing model.Task) bool {
		return existing.Repeat == model.RepeatWeekly
	})
}

// ExpandRepeat dispatches on task.Repeat.
func (s *Store) ExpandRepeat(task model.Task) (Outcome, error) {
	switch task.Repeat.Normalize() {
	case model.RepeatDaily:
		return s.ExpandDaily(task)
	case model.RepeatWeekly:
		return s.ExpandWeekly(task)
	case model.RepeatMonthly:
		return Outcome{}, ErrRepeatUnsupported
	default:
		return Outcome{}, model.ErrNotRepeating
	}
}

func (s *Store) expand(task model.Task, kind model.Repeat, blocks func(model.Task) bool) (Outcome, error) {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return Outcome{}, model.ErrEmptyTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.Day.IsZero() {
		task.Day = s.today()
	}
	task.Repeat = task.Repeat.Normalize()
	if err := task.Validate(); err != nil {
		return Outcome{}, err
	}
	days, err := kind.Occurrences(task.Day)
	if err != nil {
		return Outcome{}, err
	}

	added := 0
	var warn error
	for _, day := range days {
		bucket := s.buckets[day]
		if i := indexOf(bucket, task.Title); i >= 0 {
			if blocks(bucket[i]) {
				continue
			}
			bucket = append(bucket[:i:i], bucket[i+1:]...)
		}
		occ := task.Occurrence(day, kind)
		s.buckets[day] = append(bucket, occ)
		if err := s.scheduleLocked(occ); err != nil && warn == nil {
			warn = err
		}
		added++
	}
	s.logger.Info("expanded repeat", "title", task.Title, "kind", kind, "from", task.Day, "added", added)
	return s.persistLocked(added, warn), nil
}

// DeleteCompleted removes the done tasks on day.
func (s *Store) DeleteCompleted(day model.Day) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	kept := make([]model.Task, 0, len(s.buckets[day]))
	for _, t := range s.buckets[day] {
		if t.Done {
			s.notifier.Cancel(t)
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.setBucketLocked(day, kept)
	s.logger.Debug("deleted completed", "day", day, "removed", removed)
	return s.persistLocked(removed, nil), nil
}

// DeleteRepeatedOccurrences takes the titles of the done tasks on day and
// removes every task carrying one of those titles from day through day+100,
// whatever its completion state.
func (s *Store) DeleteRepeatedOccurrences(day model.Day) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	titles := make(map[string]struct{})
	for _, t := range s.buckets[day] {
		if t.Done {
			titles[t.Title] = struct{}{}
		}
	}
	if len(titles) == 0 {
		return Outcome{}, ErrNothingCompleted
	}

	removed := 0
	for offset := 0; offset <= RepeatSpan; offset++ {
		d := day.AddDays(offset)
		bucket, ok := s.buckets[d]
		if !ok {
			continue
		}
		kept := make([]model.Task, 0, len(bucket))
		for _, t := range bucket {
			if _, hit := titles[t.Title]; hit {
				s.notifier.Cancel(t)
				removed++
				continue
			}
			kept = append(kept, t)
		}
		s.setBucketLocked(d, kept)
	}
	s.logger.Info("deleted repeated occurrences", "day", day, "titles", len(titles), "removed", removed)
	return s.persistLocked(removed, nil), nil
}

// QueryByDate returns a copy of day's tasks in insertion order.
func (s *Store) QueryByDate(day model.Day) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]model.Task, 0, len(s.buckets[day])), s.buckets[day]...)
}

// ToggleDone flips completion. Outcome.Count is 1 when the task is now done.
func (s *Store) ToggleDone(day model.Day, title string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[day]
	i := indexOf(bucket, title)
	if i < 0 {
		return Outcome{}, fmt.Errorf("%w: %s %q", ErrNotFound, day, title)
	}
	bucket[i].Done = !bucket[i].Done
	t := bucket[i]

	var warn error
	state := 0
	if t.Done {
		s.notifier.Cancel(t)
		state = 1
	} else {
		warn = s.scheduleLocked(t)
	}
	return s.persistLocked(state, warn), nil
}

// EditField sets one field of the task titled title on day. Renaming onto
// a title already present on the day replaces that task.
func (s *Store) EditField(day model.Day, title string, field model.Field, value string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[day]
	i := indexOf(bucket, title)
	if i < 0 {
		return Outcome{}, fmt.Errorf("%w: %s %q", ErrNotFound, day, title)
	}
	edited := bucket[i]
	if err := edited.Set(field, value); err != nil {
		return Outcome{}, err
	}
	if err := edited.Validate(); err != nil {
		return Outcome{}, err
	}

	if edited.Title != title {
		s.notifier.Cancel(bucket[i])
		if j := indexOf(bucket, edited.Title); j >= 0 {
			s.notifier.Cancel(bucket[j])
			bucket = append(bucket[:j:j], bucket[j+1:]...)
			i = indexOf(bucket, title)
		}
	}
	bucket[i] = edited
	s.buckets[day] = bucket

	warn := s.scheduleLocked(edited)
	return s.persistLocked(1, warn), nil
}

// DeleteAt removes the task at a 0-based position. It never cascades.
func (s *Store) DeleteAt(day model.Day, position int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[day]
	if position < 0 || position >= len(bucket) {
		return Outcome{}, fmt.Errorf("%w: %d of %d on %s", ErrPosition, position, len(bucket), day)
	}
	s.notifier.Cancel(bucket[position])
	s.setBucketLocked(day, append(bucket[:position:position], bucket[position+1:]...))
	return s.persistLocked(1, nil), nil
}

// Days lists the days holding at least one task, in calendar order.
func (s *Store) Days() []model.Day {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Day, 0, len(s.buckets))
	for day := range s.buckets {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// All returns a copy of every task ordered by day then insertion.
func (s *Store) All() []model.Task {
	days := s.Days()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0)
	for _, day := range days {
		out = append(out, s.buckets[day]...)
	}
	return out
}
