package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/daytodo/internal/model"
	"github.com/sandeepkv93/daytodo/internal/views"
)

func taskRow(t model.Task) views.TaskRowData {
	row := views.TaskRowData{
		Title:     t.Title,
		Done:      t.Done,
		Important: t.Important,
		Urgent:    t.Urgent,
		Repeat:    string(t.Repeat.Normalize()),
	}
	if t.HasTimeRange() {
		row.TimeRange = fmt.Sprintf("%s-%s", t.From, t.To)
	} else if !t.From.IsZero() {
		row.TimeRange = t.From.String()
	}
	if !t.Deadline.IsZero() {
		row.Deadline = t.Deadline.String()
	}
	if !t.Reminder.IsZero() {
		row.Reminder = t.Reminder.String()
	}
	return row
}

func (m Model) renderWeekStrip() string {
	start := m.Day.WeekStart(m.weekStart)
	cells := make([]views.DayCell, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDays(i)
		count := 0
		if m.store != nil {
			count = len(m.store.QueryByDate(d))
		}
		cells = append(cells, views.DayCell{
			Label:    d.Label(),
			Count:    count,
			Selected: d == m.Day,
			Today:    d == m.Today,
		})
	}
	return views.RenderWeekStrip(cells)
}

func (m Model) renderTaskPanel() string {
	rows := make([]views.TaskRowData, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		rows = append(rows, taskRow(t))
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		Day:     m.Day.Label(),
		Rows:    rows,
		Cursor:  m.Cursor,
		AddView: m.addInput.View(),
		Adding:  m.Adding,
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) renderRightPane() string {
	parts := make([]string, 0, 3)
	if m.Palette.Active {
		parts = append(parts, m.renderCommandPalette())
	}
	if m.DetailVisible {
		parts = append(parts, m.detailView.View())
	}
	if m.HelpVisible {
		parts = append(parts, m.renderHelpView())
	}
	return strings.Join(parts, "\n\n")
}

// syncDetail renders the selected task into the detail viewport.
func (m *Model) syncDetail() {
	t, ok := m.selectedTask()
	if !ok {
		m.detailView.SetContent("(no selection)")
		return
	}
	m.detailView.SetContent(views.RenderMarkdown(views.TaskMarkdown(taskRow(t))))
	m.detailView.GotoTop()
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	if m.DesktopEnabled && level != "info" {
		if err := m.notifier.Send(n); err != nil {
			m.logger.Warn("desktop notification failed", "err", err)
		}
	}
}

func (m Model) lastAlarmLine() string {
	if len(m.AlarmLog) == 0 {
		return ""
	}
	last := m.AlarmLog[len(m.AlarmLog)-1]
	return fmt.Sprintf("last alarm: %s @ %s", last.Message, last.At.Local().Format(time.Kitchen))
}
