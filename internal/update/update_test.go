package update

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daytodo/internal/model"
	"github.com/sandeepkv93/daytodo/internal/scheduler"
	"github.com/sandeepkv93/daytodo/internal/storage"
	"github.com/sandeepkv93/daytodo/internal/store"
)

const today = model.Day("2026-10-17")

func fixedNow() time.Time {
	return time.Date(2026, time.October, 17, 14, 30, 0, 0, time.Local)
}

type fakeDesktop struct {
	available bool
	sent      []Notification
}

func (f *fakeDesktop) Send(n Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeDesktop) Available() bool { return f.available }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	backend, err := storage.OpenFile(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	s := store.New(backend, store.Options{Now: fixedNow})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(context.Background()); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func newTestModel(t *testing.T, s *store.Store) Model {
	t.Helper()
	return NewModel(Deps{Store: s, Now: fixedNow, WeekStart: time.Monday})
}

func mustAdd(t *testing.T, s *store.Store, task model.Task) {
	t.Helper()
	if _, err := s.Add(task); err != nil {
		t.Fatalf("add %q: %v", task.Title, err)
	}
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	space = tea.KeyMsg{Type: tea.KeySpace}
)

func typeCommand(t *testing.T, m Model, line string) Model {
	t.Helper()
	return press(t, m, runes("/"), runes(line), enter)
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, newTestStore(t))
	if m.Day != today || m.Today != today {
		t.Fatalf("expected day %s, got day=%s today=%s", today, m.Day, m.Today)
	}
	if m.Keys.Quit != "q" || m.Keys.Help != "?" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if len(m.Tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(m.Tasks))
	}
}

func TestNewModelShowsPersistedTasks(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "water plants", Day: today})
	mustAdd(t, s, model.Task{Title: "tomorrow", Day: today.AddDays(1)})

	m := newTestModel(t, s)
	if len(m.Tasks) != 1 || m.Tasks[0].Title != "water plants" {
		t.Fatalf("unexpected tasks: %+v", m.Tasks)
	}
}

func TestAddTaskWithKeyboard(t *testing.T) {
	s := newTestStore(t)
	m := newTestModel(t, s)

	m = press(t, m, runes("a"))
	if !m.Adding {
		t.Fatal("expected add mode")
	}
	m = press(t, m, runes("buy milk"), enter)
	if m.Adding {
		t.Fatal("expected add mode closed")
	}
	if len(m.Tasks) != 1 || m.Tasks[0].Title != "buy milk" {
		t.Fatalf("unexpected tasks: %+v", m.Tasks)
	}
	if got := s.QueryByDate(today); len(got) != 1 {
		t.Fatalf("expected task in store, got %+v", got)
	}
	if m.PendingSaves != 1 {
		t.Fatalf("expected one pending save, got %d", m.PendingSaves)
	}
}

func TestAddEscapeCancels(t *testing.T) {
	s := newTestStore(t)
	m := newTestModel(t, s)
	m = press(t, m, runes("a"), runes("nope"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Adding || len(m.Tasks) != 0 {
		t.Fatalf("expected nothing added, adding=%v tasks=%+v", m.Adding, m.Tasks)
	}
}

func TestToggleAndClearCompleted(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "first", Day: today})
	mustAdd(t, s, model.Task{Title: "second", Day: today})
	m := newTestModel(t, s)

	m = press(t, m, space)
	if !m.Tasks[0].Done {
		t.Fatalf("expected first task done, got %+v", m.Tasks[0])
	}
	if m.Status.Text != "done: first" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}

	m = press(t, m, runes("C"))
	if m.Status.Text != "deleted 1 completed task" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	if len(m.Tasks) != 1 || m.Tasks[0].Title != "second" {
		t.Fatalf("unexpected tasks after clear: %+v", m.Tasks)
	}
}

func TestPurgeWithNothingChecked(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "open", Day: today})
	m := newTestModel(t, s)

	m = press(t, m, runes("P"))
	if m.Status.Text != "no checked tasks to delete" || m.Status.IsError {
		t.Fatalf("unexpected status %+v", m.Status)
	}
	if m.PendingSaves != 0 {
		t.Fatalf("expected no save, got %d pending", m.PendingSaves)
	}
}

func TestPurgeRepeatedRemovesCopies(t *testing.T) {
	s := newTestStore(t)
	task := model.Task{Title: "stretch", Day: today, Repeat: model.RepeatDaily}
	mustAdd(t, s, task)
	if _, err := s.ExpandDaily(task); err != nil {
		t.Fatalf("expand: %v", err)
	}
	m := newTestModel(t, s)

	m = press(t, m, space, runes("P"))
	want := "deleted 91 tasks across 100 days"
	if m.Status.Text != want {
		t.Fatalf("expected %q, got %q", want, m.Status.Text)
	}
	if n := len(s.QueryByDate(today.AddDays(30))); n != 0 {
		t.Fatalf("expected copies removed, %d left", n)
	}
}

func TestCycleRepeatExpandsDaily(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "journal", Day: today})
	m := newTestModel(t, s)

	m = press(t, m, runes("r"))
	if !strings.Contains(m.Status.Text, "repeat daily, added 90 copies") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	if m.Tasks[0].Repeat != model.RepeatDaily {
		t.Fatalf("expected daily repeat, got %q", m.Tasks[0].Repeat)
	}
	next := s.QueryByDate(today.AddDays(1))
	if len(next) != 1 || next[0].Repeat != model.RepeatDaily {
		t.Fatalf("expected copy on next day, got %+v", next)
	}
}

func TestMonthlyRepeatIsSavedNotExpanded(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "rent", Day: today})
	m := newTestModel(t, s)

	m = typeCommand(t, m, "repeat 1 monthly")
	if !strings.Contains(m.Status.Text, "saved, not expanded") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	if m.Tasks[0].Repeat != model.RepeatMonthly {
		t.Fatalf("expected monthly repeat, got %q", m.Tasks[0].Repeat)
	}
	if len(s.Days()) != 1 {
		t.Fatalf("expected no copies, got days %v", s.Days())
	}
}

func TestDayNavigation(t *testing.T) {
	m := newTestModel(t, newTestStore(t))

	m = press(t, m, runes("l"))
	if m.Day != "2026-10-18" {
		t.Fatalf("expected next day, got %s", m.Day)
	}
	m = press(t, m, runes("H"))
	if m.Day != "2026-10-11" {
		t.Fatalf("expected previous week, got %s", m.Day)
	}
	m = press(t, m, runes("t"))
	if m.Day != today {
		t.Fatalf("expected today, got %s", m.Day)
	}
}

func TestTodayFollowsClockPastMidnight(t *testing.T) {
	clock := fixedNow()
	m := NewModel(Deps{Store: newTestStore(t), Now: func() time.Time { return clock }, WeekStart: time.Monday})

	clock = clock.Add(10 * time.Hour)
	next := today.AddDays(1)
	if view := m.View(); !strings.Contains(view, "today "+next.Label()) {
		t.Fatalf("expected header to show %s:\n%s", next.Label(), view)
	}
	m = press(t, m, runes("t"))
	if m.Day != next || m.Today != next {
		t.Fatalf("expected day and today %s, got day=%s today=%s", next, m.Day, m.Today)
	}
	m = press(t, m, runes("h"))
	m = typeCommand(t, m, "goto today")
	if m.Day != next {
		t.Fatalf("expected goto today to land on %s, got %s", next, m.Day)
	}
}

func TestCursorWraps(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "a", Day: today})
	mustAdd(t, s, model.Task{Title: "b", Day: today})
	m := newTestModel(t, s)

	m = press(t, m, runes("k"))
	if m.Cursor != 1 {
		t.Fatalf("expected cursor to wrap to 1, got %d", m.Cursor)
	}
	m = press(t, m, runes("j"))
	if m.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.Cursor)
	}
}

func TestFlagToggles(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "call bank", Day: today})
	m := newTestModel(t, s)

	m = press(t, m, runes("i"), runes("u"))
	if !m.Tasks[0].Important || !m.Tasks[0].Urgent {
		t.Fatalf("expected flags set, got %+v", m.Tasks[0])
	}
	m = press(t, m, runes("i"))
	if m.Tasks[0].Important {
		t.Fatal("expected important cleared")
	}
}

func TestPaletteGotoAndSet(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "dentist", Day: "2026-10-20"})
	m := newTestModel(t, s)

	m = typeCommand(t, m, "goto 2026-10-20")
	if m.Day != "2026-10-20" {
		t.Fatalf("expected goto day, got %s", m.Day)
	}
	if m.Palette.Active {
		t.Fatal("expected palette closed")
	}

	m = typeCommand(t, m, "set 1 from 09:00")
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
	got := s.QueryByDate("2026-10-20")
	if got[0].From != "09:00" {
		t.Fatalf("expected from 09:00, got %+v", got[0])
	}
}

func TestPaletteRejectsUnknownRow(t *testing.T) {
	m := newTestModel(t, newTestStore(t))
	m = typeCommand(t, m, "done 5")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task at row 5") {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}

func TestPaletteReportsStoreErrors(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "meeting", Day: today})
	m := newTestModel(t, s)

	m = typeCommand(t, m, "set 1 from 25:00")
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	if !errors.Is(m.LastError, model.ErrInvalidClock) {
		t.Fatalf("expected invalid clock error, got %v", m.LastError)
	}
}

func TestPaletteEscapeCloses(t *testing.T) {
	m := newTestModel(t, newTestStore(t))
	m = press(t, m, runes("/"), runes("add x"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || len(m.Tasks) != 0 {
		t.Fatalf("expected palette closed without effect, tasks=%+v", m.Tasks)
	}
}

func TestSavedMsgFailure(t *testing.T) {
	m := newTestModel(t, newTestStore(t))
	m.PendingSaves = 1
	updated, _ := m.Update(SavedMsg{Op: "add", Err: errors.New("disk full")})
	next := updated.(Model)
	if next.PendingSaves != 0 {
		t.Fatalf("expected no pending saves, got %d", next.PendingSaves)
	}
	if !next.Status.IsError || next.Status.Text != "add: disk full" {
		t.Fatalf("unexpected status %+v", next.Status)
	}
}

func TestAwaitSaveReportsWrite(t *testing.T) {
	s := newTestStore(t)
	out, err := s.Add(model.Task{Title: "persist me", Day: today})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	msg := awaitSaveCmd("add", out)()
	saved, ok := msg.(SavedMsg)
	if !ok {
		t.Fatalf("expected SavedMsg, got %T", msg)
	}
	if saved.Err != nil || saved.Count != 1 || saved.Op != "add" {
		t.Fatalf("unexpected saved msg %+v", saved)
	}
}

func TestAlarmMsgLogsAndRearms(t *testing.T) {
	s := newTestStore(t)
	engine := scheduler.NewEngine(4)
	desktop := &fakeDesktop{available: true}
	m := NewModel(Deps{Store: s, Engine: engine, Desktop: desktop, DesktopNotifications: true, Now: fixedNow})

	alarm := scheduler.Alarm{ID: "a1", Title: "stand-up", Message: "Reminder: stand-up", At: fixedNow()}
	updated, cmd := m.Update(AlarmMsg{Alarm: alarm})
	next := updated.(Model)
	if len(next.AlarmLog) != 1 || next.AlarmLog[0].ID != "a1" {
		t.Fatalf("unexpected alarm log %+v", next.AlarmLog)
	}
	if next.Status.Text != "Reminder: stand-up" {
		t.Fatalf("unexpected status %q", next.Status.Text)
	}
	if cmd == nil {
		t.Fatal("expected command waiting for the next alarm")
	}
	if len(desktop.sent) != 1 || desktop.sent[0].Body != "Reminder: stand-up" {
		t.Fatalf("expected desktop notification, got %+v", desktop.sent)
	}
}

func TestAlarmLogKeepsRecent(t *testing.T) {
	m := newTestModel(t, newTestStore(t))
	for i := 0; i < 25; i++ {
		updated, _ := m.Update(AlarmMsg{Alarm: scheduler.Alarm{ID: "x", Message: "Task reminder", At: fixedNow()}})
		m = updated.(Model)
	}
	if len(m.AlarmLog) != 20 {
		t.Fatalf("expected 20 alarms kept, got %d", len(m.AlarmLog))
	}
}

func TestMissingDesktopNotifierWarns(t *testing.T) {
	desktop := &fakeDesktop{available: false}
	m := NewModel(Deps{Store: newTestStore(t), Desktop: desktop, DesktopNotifications: true, Now: fixedNow})
	if m.DesktopEnabled {
		t.Fatal("expected desktop notifications disabled")
	}
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "desktop notifier not found") {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}

func TestNotifyTestRequiresScheduler(t *testing.T) {
	m := newTestModel(t, newTestStore(t))
	m = typeCommand(t, m, "notify test")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "scheduler not running") {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t, newTestStore(t))
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" || !next.Status.IsError {
		t.Fatalf("unexpected error state: %v %+v", next.LastError, next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := newTestModel(t, newTestStore(t))
	updated, cmd := m.Update(runes("q"))
	next := updated.(Model)
	if !next.Quitting || cmd == nil {
		t.Fatalf("expected quit, quitting=%v cmd=%v", next.Quitting, cmd != nil)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, model.Task{Title: "ship release", Day: today, From: "09:00", To: "10:00"})
	m := newTestModel(t, s)
	m.Status = StatusBar{Text: "all good"}

	out := m.View()
	for _, want := range []string{"daytodo", "Sat 17/10", "ship release", "@09:00-10:00", "status: all good"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view: %q", want, out)
		}
	}
}
