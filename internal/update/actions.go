package update

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daytodo/internal/model"
	"github.com/sandeepkv93/daytodo/internal/scheduler"
	"github.com/sandeepkv93/daytodo/internal/store"
)

func waitForAlarmCmd(ch <-chan scheduler.Alarm) tea.Cmd {
	return func() tea.Msg {
		alarm, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmMsg{Alarm: alarm}
	}
}

func awaitSaveCmd(op string, out store.Outcome) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return SavedMsg{Op: op, Count: out.Count, Err: out.Wait(ctx)}
	}
}

// refresh reloads the selected day from the store.
func (m *Model) refresh() {
	if m.store == nil {
		m.Tasks = nil
		return
	}
	m.Tasks = m.store.QueryByDate(m.Day)
	if m.Cursor >= len(m.Tasks) {
		m.Cursor = len(m.Tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.syncDetail()
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Tasks) {
		return model.Task{}, false
	}
	return m.Tasks[m.Cursor], true
}

func (m *Model) setStatus(text string, isErr bool) {
	m.Status = StatusBar{Text: text, IsError: isErr}
}

func (m *Model) fail(err error) {
	m.LastError = err
	m.setStatus(err.Error(), true)
	m.notify("Error", err.Error(), "error")
}

// syncToday recomputes Today from the clock so it follows midnight.
func (m *Model) syncToday() model.Day {
	m.Today = model.DayOf(m.now())
	return m.Today
}

func (m *Model) gotoDay(day model.Day) {
	if !day.Valid() {
		return
	}
	m.Day = day
	m.Cursor = 0
	m.refresh()
}

func (m *Model) moveCursor(delta int) {
	if len(m.Tasks) == 0 {
		m.Cursor = 0
		return
	}
	m.Cursor = (m.Cursor + delta + len(m.Tasks)) % len(m.Tasks)
	m.syncDetail()
}

// track registers a mutation outcome: the view reloads right away and the
// returned command reports the write once it lands.
func (m *Model) track(op string, out store.Outcome) tea.Cmd {
	m.refresh()
	if out.Warn != nil {
		m.notify("Notification", out.Warn.Error(), "warn")
	}
	m.PendingSaves++
	cmds := []tea.Cmd{awaitSaveCmd(op, out)}
	if m.PendingSaves == 1 {
		cmds = append(cmds, m.saveSpinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *Model) addTask(title string) tea.Cmd {
	out, err := m.store.Add(model.Task{Title: title, Day: m.Day})
	if err != nil {
		m.fail(err)
		return nil
	}
	m.setStatus(fmt.Sprintf("added %q", title), false)
	cmd := m.track("add", out)
	m.Cursor = len(m.Tasks) - 1
	m.syncDetail()
	return cmd
}

func (m *Model) toggleSelected() tea.Cmd {
	t, ok := m.selectedTask()
	if !ok {
		return nil
	}
	out, err := m.store.ToggleDone(m.Day, t.Title)
	if err != nil {
		m.fail(err)
		return nil
	}
	if out.Count == 1 {
		m.setStatus(fmt.Sprintf("done: %s", t.Title), false)
	} else {
		m.setStatus(fmt.Sprintf("reopened: %s", t.Title), false)
	}
	return m.track("toggle", out)
}

func (m *Model) deleteSelected() tea.Cmd {
	t, ok := m.selectedTask()
	if !ok {
		return nil
	}
	out, err := m.store.DeleteAt(m.Day, m.Cursor)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.setStatus(fmt.Sprintf("deleted %q", t.Title), false)
	return m.track("delete", out)
}

func (m *Model) clearCompleted() tea.Cmd {
	out, err := m.store.DeleteCompleted(m.Day)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.setStatus(fmt.Sprintf("deleted %d completed %s", out.Count, plural(out.Count, "task", "tasks")), false)
	return m.track("clear", out)
}

func (m *Model) purgeRepeated() tea.Cmd {
	out, err := m.store.DeleteRepeatedOccurrences(m.Day)
	if errors.Is(err, store.ErrNothingCompleted) {
		m.setStatus("no checked tasks to delete", false)
		return nil
	}
	if err != nil {
		m.fail(err)
		return nil
	}
	m.setStatus(fmt.Sprintf("deleted %d %s across %d days", out.Count, plural(out.Count, "task", "tasks"), store.RepeatSpan), false)
	return m.track("purge", out)
}

// setRepeat stores kind on the task at index and expands it forward when
// the kind supports expansion.
func (m *Model) setRepeat(index int, kind model.Repeat) tea.Cmd {
	if index < 0 || index >= len(m.Tasks) {
		m.fail(fmt.Errorf("%w: row %d", store.ErrPosition, index+1))
		return nil
	}
	t := m.Tasks[index]
	out, err := m.store.EditField(m.Day, t.Title, model.FieldRepeat, string(kind))
	if err != nil {
		m.fail(err)
		return nil
	}
	cmds := []tea.Cmd{m.track("repeat", out)}
	t.Repeat = kind.Normalize()

	if !t.Repeat.IsRepeating() {
		m.setStatus(fmt.Sprintf("%s: repeat off", t.Title), false)
		return tea.Batch(cmds...)
	}
	exp, err := m.store.ExpandRepeat(t)
	if errors.Is(err, store.ErrRepeatUnsupported) {
		m.setStatus(fmt.Sprintf("%s: repeat %s saved, not expanded", t.Title, t.Repeat), false)
		return tea.Batch(cmds...)
	}
	if err != nil {
		m.fail(err)
		return tea.Batch(cmds...)
	}
	m.setStatus(fmt.Sprintf("%s: repeat %s, added %d %s", t.Title, t.Repeat, exp.Count, plural(exp.Count, "copy", "copies")), false)
	cmds = append(cmds, m.track("expand", exp))
	return tea.Batch(cmds...)
}

func (m *Model) editSelected(field model.Field, value string) tea.Cmd {
	return m.editAt(m.Cursor, field, value)
}

func (m *Model) editAt(index int, field model.Field, value string) tea.Cmd {
	if index < 0 || index >= len(m.Tasks) {
		m.fail(fmt.Errorf("%w: row %d", store.ErrPosition, index+1))
		return nil
	}
	t := m.Tasks[index]
	out, err := m.store.EditField(m.Day, t.Title, field, value)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.setStatus(fmt.Sprintf("%s: %s updated", t.Title, field), false)
	return m.track("edit", out)
}

func (m *Model) toggleFlag(field model.Field) tea.Cmd {
	t, ok := m.selectedTask()
	if !ok {
		return nil
	}
	current := t.Important
	if field == model.FieldUrgent {
		current = t.Urgent
	}
	return m.editSelected(field, fmt.Sprintf("%t", !current))
}

func (m *Model) onAlarm(a scheduler.Alarm) {
	m.AlarmLog = append(m.AlarmLog, a)
	if len(m.AlarmLog) > 20 {
		m.AlarmLog = m.AlarmLog[len(m.AlarmLog)-20:]
	}
	m.setStatus(a.Message, false)
	m.notify(a.Title, a.Message, "alarm")
}
